// Package config loads runtime settings from a TOML file and the
// environment. Environment variables win over the file, the file wins over
// defaults.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/iudanet/gophsync/internal/entity"
	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/validation"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GOPHSYNC_"

type Config struct {
	Session   Session   `toml:"session" envPrefix:"SESSION_"`
	Smoothing Smoothing `toml:"smoothing" envPrefix:"SMOOTHING_"`
	Log       Log       `toml:"log" envPrefix:"LOG_"`
	Durable   Durable   `toml:"durable" envPrefix:"DURABLE_"`
}

// Session holds entity and transport settings.
type Session struct {
	DisplayName    string             `toml:"display_name" env:"DISPLAY_NAME"`
	AdoptionWindow time.Duration      `toml:"adoption_window" env:"ADOPTION_WINDOW"`
	FrameInterval  time.Duration      `toml:"frame_interval" env:"FRAME_INTERVAL"`
	DeliveryDelay  time.Duration      `toml:"delivery_delay" env:"DELIVERY_DELAY"`
	Persistence    record.Persistence `toml:"persistence" env:"PERSISTENCE"`
	IDMode         entity.IDMode      `toml:"id_mode" env:"ID_MODE"`
	IDPrefix       string             `toml:"id_prefix" env:"ID_PREFIX"`
}

// Smoothing holds defaults for smoothed properties.
type Smoothing struct {
	BufferSize     int           `toml:"buffer_size" env:"BUFFER_SIZE"`
	Offset         time.Duration `toml:"offset" env:"OFFSET"`
	SendsPerSecond float64       `toml:"sends_per_second" env:"SENDS_PER_SECOND"`
}

// OffsetSeconds returns the look-ahead offset in server time units.
func (s Smoothing) OffsetSeconds() float64 { return s.Offset.Seconds() }

type Log struct {
	Level  slog.Level `toml:"level" env:"LEVEL"`
	Format string     `toml:"format" env:"FORMAT"`
}

// Durable configures the bbolt store backing persist-class records.
// An empty path keeps durable records in memory only.
type Durable struct {
	Path string `toml:"path" env:"PATH"`
}

func (d Durable) Enabled() bool { return d.Path != "" }

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Session: Session{
			DisplayName:    "player",
			AdoptionWindow: entity.DefaultAdoptionWindow,
			FrameInterval:  16 * time.Millisecond,
			Persistence:    record.PersistenceSession,
			IDMode:         entity.IDModeObject,
		},
		Smoothing: Smoothing{
			BufferSize:     16,
			Offset:         -250 * time.Millisecond,
			SendsPerSecond: -1,
		},
		Log: Log{
			Level:  slog.LevelInfo,
			Format: "text",
		},
	}
}

// Load reads path (optional) over the defaults, applies GOPHSYNC_*
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return Config{}, fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that the decoders cannot express.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Session.DisplayName) == "" {
		return fmt.Errorf("%w: session.display_name is empty", ErrInvalidConfig)
	}
	if c.Session.AdoptionWindow <= 0 {
		return fmt.Errorf("%w: session.adoption_window must be positive", ErrInvalidConfig)
	}
	if c.Session.FrameInterval <= 0 {
		return fmt.Errorf("%w: session.frame_interval must be positive", ErrInvalidConfig)
	}
	if c.Session.DeliveryDelay < 0 {
		return fmt.Errorf("%w: session.delivery_delay is negative", ErrInvalidConfig)
	}
	if err := validation.ValidatePrefix(c.Session.IDPrefix); err != nil {
		return fmt.Errorf("%w: session.id_prefix: %v", ErrInvalidConfig, err)
	}
	if c.Smoothing.BufferSize <= 0 {
		return fmt.Errorf("%w: smoothing.buffer_size must be positive", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (expected text or json)", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
