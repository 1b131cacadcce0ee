package store

import (
	"context"
	"testing"
	"time"

	"github.com/cschone/bikefit/pkg/errors"
	"github.com/cschone/bikefit/pkg/frame"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	bike := NewBike(frame.DefaultSpec(), nil)
	if bike.ID == "" {
		t.Fatal("NewBike should assign an ID")
	}
	if err := s.Put(ctx, bike); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, bike.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Spec.Name != bike.Spec.Name {
		t.Errorf("Spec.Name = %q, want %q", got.Spec.Name, bike.Spec.Name)
	}
	if got.Rider != nil {
		t.Error("Rider should be nil when not stored")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for missing bike")
	}
	if errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("code = %v, want NOT_FOUND", errors.GetCode(err))
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	old := NewBike(frame.DefaultSpec(), nil)
	old.CreatedAt = time.Now().Add(-time.Hour)
	recent := NewBike(frame.DefaultSpec(), nil)

	if err := s.Put(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, recent); err != nil {
		t.Fatal(err)
	}

	bikes, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bikes) != 2 {
		t.Fatalf("len = %d, want 2", len(bikes))
	}
	if bikes[0].ID != recent.ID {
		t.Error("List should return newest first")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	bike := NewBike(frame.DefaultSpec(), nil)
	if err := s.Put(ctx, bike); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, bike.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, bike.ID); err == nil {
		t.Error("bike should be gone after delete")
	}

	// Deleting an absent ID is not an error.
	if err := s.Delete(ctx, "nope"); err != nil {
		t.Errorf("Delete absent: %v", err)
	}
}

func TestMemoryStorePutCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	bike := NewBike(frame.DefaultSpec(), nil)
	if err := s.Put(ctx, bike); err != nil {
		t.Fatal(err)
	}
	bike.Spec.Name = "mutated"

	got, err := s.Get(ctx, bike.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Spec.Name == "mutated" {
		t.Error("store should not alias caller memory")
	}
}
