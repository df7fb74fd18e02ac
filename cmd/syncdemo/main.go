package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/gophsync/internal/config"
	"github.com/iudanet/gophsync/internal/logging"
	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/storage/boltdb"
	"github.com/iudanet/gophsync/internal/transport/loopback"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to TOML config file")
	dbPath := flag.String("db", "", "Path to durable record database (overrides config)")
	duration := flag.Duration("duration", 3*time.Second, "How long to run the simulation")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Durable.Path = *dbPath
	}

	logger, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, *duration, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, duration time.Duration, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hubOpts := []loopback.HubOption{
		loopback.WithDeliveryDelay(cfg.Session.DeliveryDelay),
		loopback.WithLogger(logger.With("component", "hub")),
	}

	// Открываем BoltDB storage для записей класса persist
	if cfg.Durable.Enabled() {
		store, err := boltdb.New(ctx, cfg.Durable.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}()
		hubOpts = append(hubOpts, loopback.WithStorage(store))
	}

	clock := scheduler.NewWallClock()
	hub, err := loopback.NewHub(ctx, clock, hubOpts...)
	if err != nil {
		return err
	}

	// оба участника загружают одну и ту же сцену
	sceneID := uuid.NewString()

	driver, err := newPeer(hub, clock, cfg, cfg.Session.DisplayName, sceneID, logger)
	if err != nil {
		return err
	}
	observer, err := newPeer(hub, clock, cfg, "observer", sceneID, logger)
	if err != nil {
		return err
	}
	driver.drive()
	observer.watch()

	runCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	for _, p := range []*peer{driver, observer} {
		g.Go(func() error {
			return p.loop.Run(gctx, cfg.Session.FrameInterval)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	report(hub, driver, observer)

	observer.close()
	driver.close()
	return nil
}

func report(hub *loopback.Hub, driver, observer *peer) {
	fmt.Printf("Records on hub: %v\n", hub.RecordIDs())
	if !driver.entity.IsReady() || !observer.entity.IsReady() {
		fmt.Printf("Entities not ready: driver=%s observer=%s\n", driver.entity.State(), observer.entity.State())
		return
	}
	if v, ok := hub.Value(driver.entity.NetworkID(), scoreKey); ok {
		fmt.Printf("Score on hub:   %v\n", v.Data)
	}
	fmt.Printf("Owner:          %s\n", ownerName(driver))
	fmt.Printf("Driver puck:    %+v\n", driver.puck.pos)
	fmt.Printf("Observer puck:  %+v\n", observer.puck.pos)
	fmt.Printf("Goals seen:     %d\n", observer.goals)
}

func ownerName(p *peer) string {
	owner := p.entity.Owner()
	if owner == nil {
		return "nobody"
	}
	return owner.DisplayName
}

func printVersion() {
	fmt.Printf("GophSync Demo\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
