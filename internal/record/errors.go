package record

import "errors"

// Common record errors
var (
	// ErrUnsupportedType indicates a type tag outside the supported set
	ErrUnsupportedType = errors.New("unsupported record value type")

	// ErrTypeMismatch indicates that a value does not match its type tag
	ErrTypeMismatch = errors.New("record value does not match type tag")

	// ErrKeyNotFound indicates that the record has no value for the key
	ErrKeyNotFound = errors.New("record key not found")

	// ErrRecordExists indicates that a record with the same id already exists
	ErrRecordExists = errors.New("record already exists")

	// ErrRecordNotFound indicates that the record is unknown to the transport
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotOwner indicates a write or ownership change by a participant that may not mutate the record
	ErrNotOwner = errors.New("record is owned by another participant")

	// ErrInvalidPersistence indicates an unknown persistence class
	ErrInvalidPersistence = errors.New("invalid persistence")
)
