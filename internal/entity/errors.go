package entity

import "errors"

var (
	// ErrDuplicateEntity indicates a second entity with the same network id in one runtime
	ErrDuplicateEntity = errors.New("entity with this network id already exists")

	// ErrNotReady indicates an operation that needs the entity record before it was adopted
	ErrNotReady = errors.New("entity is not ready")

	// ErrNotOwner indicates an operation that needs local ownership
	ErrNotOwner = errors.New("entity record is not owned by the local participant")

	// ErrDestroyed indicates an operation on a destroyed entity
	ErrDestroyed = errors.New("entity is destroyed")

	// ErrInvalidIDMode indicates an unknown network id derivation mode
	ErrInvalidIDMode = errors.New("invalid network id mode")

	// ErrInvalidNetworkID indicates a network id that cannot be derived or is malformed
	ErrInvalidNetworkID = errors.New("invalid network id")
)
