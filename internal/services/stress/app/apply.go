package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/wfrp-stress/internal/core/check"
	"github.com/louisbranch/wfrp-stress/internal/core/dice"
	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage"
	"github.com/louisbranch/wfrp-stress/internal/stress"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ApplyRequest is a resolved test the host hands over for stress.
type ApplyRequest struct {
	ActorID       string
	TestID        string
	Roll          int
	Target        int
	SuccessLevels int
	Outcome       check.Outcome
	// Reroll marks the request as replacing the latest result for TestID.
	Reroll     bool
	RerollKind stress.RerollKind
}

// ApplyResult is the outcome of one applied test.
type ApplyResult struct {
	ResolutionID string
	TestID       string
	Before       int
	Stress       StressView
	Resolution   stress.Resolution
	Messages     []string
}

// ApplyTest resolves a test against the actor's stress and records it.
//
// A test ID can be applied once. Later results for the same check must set
// Reroll; the delta recorded for the previous result is then removed before
// the new one is applied.
func (s *Service) ApplyTest(ctx context.Context, in ApplyRequest) (ApplyResult, error) {
	if s == nil || s.store == nil {
		return ApplyResult{}, fmt.Errorf("stress store is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "stress.ApplyTest")
	defer span.End()

	result, err := s.applyTest(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ApplyResult{}, err
	}
	span.SetAttributes(
		attribute.String("stress.actor_id", result.Stress.ActorID),
		attribute.String("stress.test_id", result.TestID),
		attribute.String("stress.classification", result.Resolution.Classification.String()),
		attribute.Int("stress.delta", result.Resolution.Delta),
		attribute.Int("stress.value", result.Stress.Value),
		attribute.Bool("stress.afflicted", result.Resolution.Afflicted()),
	)
	return result, nil
}

func (s *Service) applyTest(ctx context.Context, in ApplyRequest) (ApplyResult, error) {
	actorID := normalizeID(in.ActorID)
	testID := normalizeID(in.TestID)
	if actorID == "" {
		return ApplyResult{}, apperrors.New(apperrors.CodeActorEmptyID, "actor id is required")
	}
	if testID == "" {
		return ApplyResult{}, apperrors.New(apperrors.CodeTestEmptyID, "test id is required")
	}
	test := stress.TestOutcome{
		Roll:          in.Roll,
		Target:        in.Target,
		SuccessLevels: in.SuccessLevels,
		Outcome:       in.Outcome,
	}
	if err := test.Validate(); err != nil {
		return ApplyResult{}, err
	}

	unlock := s.locks.Lock(actorID)
	defer unlock()

	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return ApplyResult{}, err
	}

	previous, err := s.previousResolution(ctx, actorID, testID, in.Reroll)
	if err != nil {
		return ApplyResult{}, err
	}
	rerollKind := stress.RerollKindUnspecified
	if previous != nil {
		rerollKind = in.RerollKind
		if rerollKind == stress.RerollKindUnspecified {
			rerollKind = stress.RerollKindFortune
		}
		test.Reroll = &stress.Reroll{Kind: rerollKind, PreviousDelta: previous.Delta}
	}

	state, err := s.loadState(ctx, actorID)
	if err != nil {
		return ApplyResult{}, err
	}
	before := stress.StateOrDefault(state).Value
	resolution := stress.Resolve(actor.Characteristics().Character(actor.Name), state, test)

	now := s.now()
	record := storage.ResolutionRecord{
		ID:             s.newID(),
		TestID:         testID,
		ActorID:        actorID,
		Roll:           test.Roll,
		Target:         test.Target,
		SuccessLevels:  test.SuccessLevels,
		Outcome:        test.Outcome.String(),
		Classification: resolution.Classification.String(),
		Delta:          resolution.Delta,
		Applied:        resolution.Applied,
		ValueBefore:    before,
		ValueAfter:     resolution.State.Value,
		Max:            resolution.State.Max,
		Afflicted:      resolution.Afflicted(),
		CreatedAt:      now,
	}
	if test.Reroll != nil {
		record.RerollKind = rerollKind.String()
	}
	if err := s.store.CommitResolution(ctx, storage.StressRecord{
		ActorID:   actorID,
		Value:     resolution.State.Value,
		Max:       resolution.State.Max,
		UpdatedAt: now,
	}, record); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ApplyResult{}, actorNotFound(actorID)
		}
		return ApplyResult{}, fmt.Errorf("commit resolution: %w", err)
	}

	fields := []zap.Field{
		zap.String("actor_id", actorID),
		zap.String("test_id", testID),
		zap.Int("roll", test.Roll),
		zap.Int("target", test.Target),
		zap.String("classification", record.Classification),
		zap.Int("delta", resolution.Delta),
		zap.Int("stress_before", before),
		zap.Int("stress_after", resolution.State.Value),
		zap.Int("max", resolution.State.Max),
	}
	if test.Reroll != nil {
		fields = append(fields, zap.String("reroll", record.RerollKind), zap.Int("previous_delta", previous.Delta))
	}
	if resolution.Afflicted() {
		s.logger.Warn("stress affliction", fields...)
	} else {
		s.logger.Info("stress resolved", fields...)
	}

	return ApplyResult{
		ResolutionID: record.ID,
		TestID:       testID,
		Before:       before,
		Stress:       newStressView(actor, resolution.State),
		Resolution:   resolution,
		Messages:     RenderAll(resolution.Notifications),
	}, nil
}

// previousResolution enforces the ledger rules for testID and returns the
// record a reroll replaces, or nil for a first application.
func (s *Service) previousResolution(ctx context.Context, actorID, testID string, reroll bool) (*storage.ResolutionRecord, error) {
	latest, err := s.store.LatestResolution(ctx, testID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get resolution: %w", err)
	}
	found := err == nil
	meta := map[string]string{"TestID": testID}

	switch {
	case !reroll && found:
		return nil, apperrors.WithMetadata(apperrors.CodeTestAlreadyResolved, "test already applied", meta)
	case !reroll:
		return nil, nil
	case !found:
		return nil, apperrors.WithMetadata(apperrors.CodeRerollNotFound, "no result to reroll", meta)
	case latest.ActorID != actorID:
		return nil, apperrors.WithMetadata(apperrors.CodeRerollActorMismatch, "test belongs to another actor", meta)
	}
	return &latest, nil
}

// RunRequest asks the service to roll a stress test for an actor.
type RunRequest struct {
	ActorID string
	Level   stress.Level
	// TestID defaults to a generated ID.
	TestID string
	// Seed makes the roll reproducible. Nil draws a fresh seed.
	Seed *int64
}

// RunResult is a rolled and applied stress test.
type RunResult struct {
	Seed   int64
	Dice   dice.Percentile
	Setup  stress.TestSetup
	Test   stress.TestOutcome
	Result ApplyResult
}

// RunStressTest rolls the actor's Cool (or Willpower) test at the difficulty
// of the stress level and applies the result.
func (s *Service) RunStressTest(ctx context.Context, in RunRequest) (RunResult, error) {
	if s == nil || s.store == nil {
		return RunResult{}, fmt.Errorf("stress store is not configured")
	}
	ctx, span := s.tracer.Start(ctx, "stress.RunStressTest")
	defer span.End()

	actorID := normalizeID(in.ActorID)
	if actorID == "" {
		return RunResult{}, apperrors.New(apperrors.CodeActorEmptyID, "actor id is required")
	}
	actor, err := s.GetActor(ctx, actorID)
	if err != nil {
		span.RecordError(err)
		return RunResult{}, err
	}

	seed, err := s.newSeed(in.Seed)
	if err != nil {
		span.RecordError(err)
		return RunResult{}, fmt.Errorf("resolve seed: %w", err)
	}
	setup := stress.SetupTest(actor.Characteristics(), in.Level)
	roll := dice.RollPercentileSeed(seed)
	test := setup.Outcome(roll.Value)
	span.SetAttributes(
		attribute.String("stress.level", setup.Level.String()),
		attribute.String("stress.skill", string(setup.Skill)),
		attribute.Int("stress.target", setup.Target),
		attribute.Int("stress.roll", roll.Value),
	)

	testID := normalizeID(in.TestID)
	if testID == "" {
		testID = s.newID()
	}
	applied, err := s.ApplyTest(ctx, ApplyRequest{
		ActorID:       actorID,
		TestID:        testID,
		Roll:          test.Roll,
		Target:        test.Target,
		SuccessLevels: test.SuccessLevels,
		Outcome:       test.Outcome,
	})
	if err != nil {
		span.RecordError(err)
		return RunResult{}, err
	}
	return RunResult{
		Seed:   seed,
		Dice:   roll,
		Setup:  setup,
		Test:   test,
		Result: applied,
	}, nil
}
