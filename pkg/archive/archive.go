// Package archive persists finished conversion documents for serve mode.
//
// Every successful request in serve mode is stored as a Record so the
// document can be fetched again by id. Two backends exist:
//   - file: JSON files in a data directory, for single-instance use
//   - mongo: a mongodb collection, for multi-instance deployments
package archive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Record is one archived conversion.
type Record struct {
	ID           string          `json:"id" bson:"_id"`
	CreatedAt    time.Time       `json:"createdAt" bson:"createdAt"`
	Algorithm    string          `json:"algorithm,omitempty" bson:"algorithm,omitempty"`
	Clusters     int             `json:"clusters" bson:"clusters"`
	Memberships  int             `json:"memberships" bson:"memberships"`
	Containments int             `json:"containments" bson:"containments"`
	Empty        bool            `json:"empty" bson:"empty"`
	Document     json.RawMessage `json:"document,omitempty" bson:"document"`
}

// NewRecord creates a record with a fresh id and timestamp.
func NewRecord(document []byte) *Record {
	return &Record{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Document:  json.RawMessage(document),
	}
}

// Store is the interface for archive backends.
type Store interface {
	// Save stores a record.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by id. Returns a NOT_FOUND coded error for
	// unknown ids.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete removes a record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all records, newest first.
	List(ctx context.Context) ([]*Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
