package storage

import "errors"

// Common storage errors
var (
	// ErrRecordNotFound indicates that no durable record exists for the id
	ErrRecordNotFound = errors.New("stored record not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
