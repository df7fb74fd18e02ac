// Package storage defines durable storage for records of the "persist"
// class.
package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/record"
)

// StoredRecord is the durable form of a record.
type StoredRecord struct {
	Values      map[string]record.Value `json:"values"`
	ID          string                  `json:"id"`
	Persistence record.Persistence      `json:"persistence"`
}

//go:generate moq -out recordstorage_mock.go . RecordStorage

// RecordStorage defines interface for storing durable records
type RecordStorage interface {
	// SaveRecord stores or replaces a record
	SaveRecord(ctx context.Context, rec *StoredRecord) error

	// GetRecord retrieves a record by ID
	// Returns ErrRecordNotFound if record doesn't exist
	GetRecord(ctx context.Context, id string) (*StoredRecord, error)

	// GetAllRecords returns all stored records ordered by ID
	GetAllRecords(ctx context.Context) ([]*StoredRecord, error)

	// DeleteRecord removes a record
	// Deleting a missing record is not an error
	DeleteRecord(ctx context.Context, id string) error

	// Clear removes all records
	Clear(ctx context.Context) error
}
