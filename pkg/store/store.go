// Package store persists bike definitions so a library of frames can be
// recalled, compared, and rendered by name.
//
// Two backends implement the Store interface:
//   - memory: In-memory storage for development/testing
//   - mongo: MongoDB-backed storage for the API server
//
// Documents are keyed by a generated UUID. Stored bikes carry the full
// BicycleSpec plus an optional RiderSpec, so a saved entry reproduces the
// exact layout it was created from.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cschone/bikefit/pkg/frame"
)

// Bike is a stored bicycle definition.
type Bike struct {
	ID        string            `json:"id" bson:"_id"`
	Spec      frame.BicycleSpec `json:"spec" bson:"spec"`
	Rider     *frame.RiderSpec  `json:"rider,omitempty" bson:"rider,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// NewBike wraps a spec in a Bike document with a fresh ID.
func NewBike(spec frame.BicycleSpec, rider *frame.RiderSpec) *Bike {
	now := time.Now().UTC()
	return &Bike{
		ID:        uuid.New().String(),
		Spec:      spec,
		Rider:     rider,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store is the interface for bike persistence backends.
type Store interface {
	// Get retrieves a bike by ID. Returns a NOT_FOUND error if absent.
	Get(ctx context.Context, id string) (*Bike, error)

	// List returns all stored bikes, newest first.
	List(ctx context.Context) ([]*Bike, error)

	// Put inserts or replaces a bike.
	Put(ctx context.Context, bike *Bike) error

	// Delete removes a bike. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}
