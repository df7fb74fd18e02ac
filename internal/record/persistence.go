package record

import (
	"fmt"
	"strings"
)

// Persistence is the retention class of a record.
type Persistence int

const (
	// PersistenceSession keeps the record until the session ends.
	PersistenceSession Persistence = iota
	// PersistenceEphemeral removes the record when its creator leaves.
	PersistenceEphemeral
	// PersistenceOwner removes the record when its current owner leaves.
	PersistenceOwner
	// PersistenceDurable keeps the record across sessions.
	PersistenceDurable
)

var persistenceNames = map[Persistence]string{
	PersistenceSession:   "session",
	PersistenceEphemeral: "ephemeral",
	PersistenceOwner:     "owner",
	PersistenceDurable:   "persist",
}

func (p Persistence) String() string {
	if name, ok := persistenceNames[p]; ok {
		return name
	}
	return fmt.Sprintf("persistence(%d)", int(p))
}

// ParsePersistence parses a persistence class name.
// Accepted values: ephemeral, owner, session, persist (alias durable).
func ParsePersistence(s string) (Persistence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "session":
		return PersistenceSession, nil
	case "ephemeral":
		return PersistenceEphemeral, nil
	case "owner":
		return PersistenceOwner, nil
	case "persist", "durable":
		return PersistenceDurable, nil
	}
	return 0, fmt.Errorf("%w: %q (expected one of ephemeral, owner, session, persist)", ErrInvalidPersistence, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Persistence) MarshalText() ([]byte, error) {
	if _, ok := persistenceNames[p]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPersistence, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so config files and
// environment variables fail fast on unknown classes.
func (p *Persistence) UnmarshalText(text []byte) error {
	parsed, err := ParsePersistence(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
