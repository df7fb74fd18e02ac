package entity

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/iudanet/gophsync/internal/validation"
)

// Host is the application object an entity is attached to.
type Host interface {
	// ObjectID is a stable identifier of the object.
	ObjectID() string
	// HierarchyPath is the object's position in the scene, root first.
	HierarchyPath() []string
}

// Destroyer is implemented by hosts that can be torn down when their
// record is deleted remotely.
type Destroyer interface {
	Destroy()
}

// IDMode selects how a network id is derived.
type IDMode int

const (
	// IDModeObject uses the host object id.
	IDModeObject IDMode = iota
	// IDModeHierarchy hashes the host hierarchy path, so the id survives
	// re-creation of an object at the same place.
	IDModeHierarchy
	// IDModeCustom uses a caller supplied id.
	IDModeCustom
)

var idModeNames = map[IDMode]string{
	IDModeObject:    "object",
	IDModeHierarchy: "hierarchy",
	IDModeCustom:    "custom",
}

func (m IDMode) String() string {
	if name, ok := idModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("IDMode(%d)", int(m))
}

// ParseIDMode converts a configuration string to an IDMode.
func ParseIDMode(s string) (IDMode, error) {
	for mode, name := range idModeNames {
		if strings.EqualFold(s, name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidIDMode, s)
}

func (m IDMode) MarshalText() ([]byte, error) {
	if _, ok := idModeNames[m]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIDMode, int(m))
	}
	return []byte(m.String()), nil
}

func (m *IDMode) UnmarshalText(text []byte) error {
	parsed, err := ParseIDMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// hierarchyDigestSize is the blake2b output size in bytes for hierarchy ids.
const hierarchyDigestSize = 16

// NetworkIDOptions configures network id derivation.
type NetworkIDOptions struct {
	CustomID string
	// Prefix is prepended to the derived id in every mode.
	Prefix string
	Mode   IDMode
}

// CustomID returns options for a fixed network id.
func CustomID(id string) NetworkIDOptions {
	return NetworkIDOptions{Mode: IDModeCustom, CustomID: id}
}

// Derive computes the network id. host may be nil in custom mode.
func (o NetworkIDOptions) Derive(host Host) (string, error) {
	if err := validation.ValidatePrefix(o.Prefix); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidNetworkID, err)
	}

	var id string
	switch o.Mode {
	case IDModeObject:
		if host == nil {
			return "", fmt.Errorf("%w: object mode needs a host", ErrInvalidNetworkID)
		}
		id = host.ObjectID()
	case IDModeHierarchy:
		if host == nil {
			return "", fmt.Errorf("%w: hierarchy mode needs a host", ErrInvalidNetworkID)
		}
		path := host.HierarchyPath()
		if len(path) == 0 {
			return "", fmt.Errorf("%w: empty hierarchy path", ErrInvalidNetworkID)
		}
		digest, err := hierarchyDigest(path)
		if err != nil {
			return "", err
		}
		id = digest
	case IDModeCustom:
		id = o.CustomID
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidIDMode, o.Mode)
	}

	id = o.Prefix + id
	if err := validation.ValidateNetworkID(id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidNetworkID, err)
	}
	return id, nil
}

func hierarchyDigest(path []string) (string, error) {
	h, err := blake2b.New(hierarchyDigestSize, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	for i, segment := range path {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(segment))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
