package app

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// HistoryEntry is one recorded resolution.
type HistoryEntry struct {
	ResolutionID   string
	TestID         string
	Roll           int
	Target         int
	SuccessLevels  int
	Outcome        string
	RerollKind     string
	Classification string
	Delta          int
	Applied        int
	Before         int
	After          int
	Max            int
	Afflicted      bool
	CreatedAt      time.Time
}

// History returns an actor's resolutions, newest first. The limit defaults
// to 20 and is capped at 200.
func (s *Service) History(ctx context.Context, actorID string, limit int) ([]HistoryEntry, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("stress store is not configured")
	}
	actorID = normalizeID(actorID)
	if actorID == "" {
		return nil, apperrors.New(apperrors.CodeActorEmptyID, "actor id is required")
	}
	if _, err := s.loadActor(ctx, actorID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	records, err := s.store.ListResolutions(ctx, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}
	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, HistoryEntry{
			ResolutionID:   r.ID,
			TestID:         r.TestID,
			Roll:           r.Roll,
			Target:         r.Target,
			SuccessLevels:  r.SuccessLevels,
			Outcome:        r.Outcome,
			RerollKind:     r.RerollKind,
			Classification: r.Classification,
			Delta:          r.Delta,
			Applied:        r.Applied,
			Before:         r.ValueBefore,
			After:          r.ValueAfter,
			Max:            r.Max,
			Afflicted:      r.Afflicted,
			CreatedAt:      r.CreatedAt,
		})
	}
	return entries, nil
}
