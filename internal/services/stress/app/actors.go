package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage"
	"github.com/louisbranch/wfrp-stress/internal/stress"
	"go.uber.org/zap"
)

// maxCharacteristic bounds characteristic values accepted from callers.
const maxCharacteristic = 200

// Actor is a character as callers describe it.
type Actor struct {
	ID           string
	Name         string
	Willpower    int
	Intelligence int
	Cool         int
}

// Characteristics returns the values the stress engine reads.
func (a Actor) Characteristics() stress.Characteristics {
	return stress.Characteristics{
		Willpower:    a.Willpower,
		Intelligence: a.Intelligence,
		Cool:         a.Cool,
	}
}

// StressView is an actor's current stress with max freshly derived.
type StressView struct {
	ActorID   string
	ActorName string
	Value     int
	Max       int
	Afflicted bool
}

// UpsertActor creates or updates an actor. A new actor starts at 0 stress.
func (s *Service) UpsertActor(ctx context.Context, in Actor) (StressView, error) {
	if s == nil || s.store == nil {
		return StressView{}, fmt.Errorf("stress store is not configured")
	}
	actor, err := validateActor(in)
	if err != nil {
		return StressView{}, err
	}

	unlock := s.locks.Lock(actor.ID)
	defer unlock()

	now := s.now()
	if err := s.store.PutActor(ctx, storage.Actor{
		ID:           actor.ID,
		Name:         actor.Name,
		Willpower:    actor.Willpower,
		Intelligence: actor.Intelligence,
		Cool:         actor.Cool,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return StressView{}, fmt.Errorf("put actor: %w", err)
	}

	state, err := s.loadState(ctx, actor.ID)
	if err != nil {
		return StressView{}, err
	}
	refreshed := stress.StateOrDefault(state).Refresh(actor.Characteristics().Character(actor.Name))
	if err := s.store.PutStress(ctx, storage.StressRecord{
		ActorID:   actor.ID,
		Value:     refreshed.Value,
		Max:       refreshed.Max,
		UpdatedAt: now,
	}); err != nil {
		return StressView{}, fmt.Errorf("put stress: %w", err)
	}

	s.logger.Debug("actor upserted",
		zap.String("actor_id", actor.ID),
		zap.Int("stress", refreshed.Value),
		zap.Int("max", refreshed.Max),
	)
	return newStressView(actor, refreshed), nil
}

// GetActor returns one actor.
func (s *Service) GetActor(ctx context.Context, actorID string) (Actor, error) {
	if s == nil || s.store == nil {
		return Actor{}, fmt.Errorf("stress store is not configured")
	}
	actorID = normalizeID(actorID)
	if actorID == "" {
		return Actor{}, apperrors.New(apperrors.CodeActorEmptyID, "actor id is required")
	}
	return s.loadActor(ctx, actorID)
}

// ListActors returns every actor ordered by name.
func (s *Service) ListActors(ctx context.Context) ([]Actor, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("stress store is not configured")
	}
	records, err := s.store.ListActors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	actors := make([]Actor, 0, len(records))
	for _, record := range records {
		actors = append(actors, actorFromRecord(record))
	}
	return actors, nil
}

// GetStress returns an actor's stress. Max is recomputed from the current
// characteristics, and an actor never tested reads as 0.
func (s *Service) GetStress(ctx context.Context, actorID string) (StressView, error) {
	if s == nil || s.store == nil {
		return StressView{}, fmt.Errorf("stress store is not configured")
	}
	actorID = normalizeID(actorID)
	if actorID == "" {
		return StressView{}, apperrors.New(apperrors.CodeActorEmptyID, "actor id is required")
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return StressView{}, err
	}
	state, err := s.loadState(ctx, actorID)
	if err != nil {
		return StressView{}, err
	}
	refreshed := stress.StateOrDefault(state).Refresh(actor.Characteristics().Character(actor.Name))
	return newStressView(actor, refreshed), nil
}

// SetStress overwrites an actor's stress value. Negative values are kept as
// given; the track is not clamped.
func (s *Service) SetStress(ctx context.Context, actorID string, value int) (StressView, error) {
	if s == nil || s.store == nil {
		return StressView{}, fmt.Errorf("stress store is not configured")
	}
	actorID = normalizeID(actorID)
	if actorID == "" {
		return StressView{}, apperrors.New(apperrors.CodeActorEmptyID, "actor id is required")
	}

	unlock := s.locks.Lock(actorID)
	defer unlock()

	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return StressView{}, err
	}
	state := stress.State{Value: value}.Refresh(actor.Characteristics().Character(actor.Name))
	if err := s.store.PutStress(ctx, storage.StressRecord{
		ActorID:   actorID,
		Value:     state.Value,
		Max:       state.Max,
		UpdatedAt: s.now(),
	}); err != nil {
		return StressView{}, fmt.Errorf("put stress: %w", err)
	}
	s.logger.Info("stress set",
		zap.String("actor_id", actorID),
		zap.Int("stress", state.Value),
		zap.Int("max", state.Max),
	)
	return newStressView(actor, state), nil
}

func (s *Service) loadActor(ctx context.Context, actorID string) (Actor, error) {
	record, err := s.store.GetActor(ctx, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Actor{}, actorNotFound(actorID)
		}
		return Actor{}, fmt.Errorf("get actor: %w", err)
	}
	return actorFromRecord(record), nil
}

// loadState returns nil when the actor has no stress track yet.
func (s *Service) loadState(ctx context.Context, actorID string) (*stress.State, error) {
	record, err := s.store.GetStress(ctx, actorID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stress: %w", err)
	}
	return &stress.State{Value: record.Value, Max: record.Max}, nil
}

func validateActor(in Actor) (Actor, error) {
	actor := in
	actor.ID = normalizeID(in.ID)
	actor.Name = strings.TrimSpace(in.Name)
	if actor.ID == "" {
		return Actor{}, apperrors.New(apperrors.CodeActorEmptyID, "actor id is required")
	}
	if actor.Name == "" {
		return Actor{}, apperrors.New(apperrors.CodeActorEmptyName, "actor name is required")
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"willpower", actor.Willpower},
		{"intelligence", actor.Intelligence},
		{"cool", actor.Cool},
	} {
		if field.value < 0 || field.value > maxCharacteristic {
			return Actor{}, apperrors.WithMetadata(
				apperrors.CodeActorInvalidCharacteristic,
				fmt.Sprintf("%s %d outside 0-%d", field.name, field.value, maxCharacteristic),
				map[string]string{
					"Characteristic": field.name,
					"Value":          strconv.Itoa(field.value),
				},
			)
		}
	}
	return actor, nil
}

func actorNotFound(actorID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeActorNotFound,
		"actor not found",
		map[string]string{"ActorID": actorID},
	)
}

func actorFromRecord(record storage.Actor) Actor {
	return Actor{
		ID:           record.ID,
		Name:         record.Name,
		Willpower:    record.Willpower,
		Intelligence: record.Intelligence,
		Cool:         record.Cool,
	}
}

func newStressView(actor Actor, state stress.State) StressView {
	return StressView{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Value:     state.Value,
		Max:       state.Max,
		Afflicted: state.Afflicted(),
	}
}
