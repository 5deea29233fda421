// Package storage defines persistence contracts for actor stress.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// Actor is a character whose stress is tracked.
type Actor struct {
	ID           string
	Name         string
	Willpower    int
	Intelligence int
	Cool         int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StressRecord is the persisted stress track of one actor. Max is a cached
// copy of the last recomputation; readers recompute it from the actor.
type StressRecord struct {
	ActorID   string
	Value     int
	Max       int
	UpdatedAt time.Time
}

// ResolutionRecord is one applied test result. Records are append-only; the
// newest record for a test ID is the one a reroll replaces.
type ResolutionRecord struct {
	ID             string
	TestID         string
	ActorID        string
	Roll           int
	Target         int
	SuccessLevels  int
	Outcome        string
	RerollKind     string
	Classification string
	Delta          int
	Applied        int
	ValueBefore    int
	ValueAfter     int
	Max            int
	Afflicted      bool
	CreatedAt      time.Time
}

// ActorStore persists actors.
type ActorStore interface {
	PutActor(ctx context.Context, actor Actor) error
	GetActor(ctx context.Context, actorID string) (Actor, error)
	ListActors(ctx context.Context) ([]Actor, error)
}

// StressStore persists stress tracks.
type StressStore interface {
	GetStress(ctx context.Context, actorID string) (StressRecord, error)
	PutStress(ctx context.Context, record StressRecord) error
}

// ResolutionStore persists the resolution ledger.
type ResolutionStore interface {
	// LatestResolution returns the newest record for testID.
	LatestResolution(ctx context.Context, testID string) (ResolutionRecord, error)
	// ListResolutions returns an actor's records, newest first.
	ListResolutions(ctx context.Context, actorID string, limit int) ([]ResolutionRecord, error)
	// CommitResolution stores the new stress track and appends the record
	// atomically.
	CommitResolution(ctx context.Context, stress StressRecord, record ResolutionRecord) error
}

// Store is the full persistence surface of the stress service.
type Store interface {
	ActorStore
	StressStore
	ResolutionStore
}
