package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/wfrp-stress/internal/core/check"
	"github.com/louisbranch/wfrp-stress/internal/core/dice"
	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage/sqlite"
	"github.com/louisbranch/wfrp-stress/internal/stress"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "stress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	var seq int
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	}
	return NewService(store, append(base, opts...)...)
}

// gunther has WP 34 and Int 31, so his stress max is 6.
func upsertGunther(t *testing.T, svc *Service) StressView {
	t.Helper()
	view, err := svc.UpsertActor(context.Background(), Actor{
		ID:           "a-1",
		Name:         "Gunther",
		Willpower:    34,
		Intelligence: 31,
	})
	if err != nil {
		t.Fatalf("upsert actor: %v", err)
	}
	return view
}

func failure(testID string, roll, target, sl int) ApplyRequest {
	return ApplyRequest{
		ActorID:       "a-1",
		TestID:        testID,
		Roll:          roll,
		Target:        target,
		SuccessLevels: sl,
		Outcome:       check.OutcomeFailure,
	}
}

func success(testID string, roll, target, sl int) ApplyRequest {
	return ApplyRequest{
		ActorID:       "a-1",
		TestID:        testID,
		Roll:          roll,
		Target:        target,
		SuccessLevels: sl,
		Outcome:       check.OutcomeSuccess,
	}
}

func TestUpsertActorStartsAtZero(t *testing.T) {
	svc := newTestService(t)
	view := upsertGunther(t, svc)
	if view.Value != 0 || view.Max != 6 {
		t.Fatalf("stress = %d/%d, want 0/6", view.Value, view.Max)
	}
	if view.ActorName != "Gunther" {
		t.Fatalf("name = %q, want Gunther", view.ActorName)
	}
}

func TestUpsertActorValidation(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name  string
		actor Actor
		code  apperrors.Code
	}{
		{"missing id", Actor{Name: "X"}, apperrors.CodeActorEmptyID},
		{"missing name", Actor{ID: "a-1", Name: "  "}, apperrors.CodeActorEmptyName},
		{"negative willpower", Actor{ID: "a-1", Name: "X", Willpower: -1}, apperrors.CodeActorInvalidCharacteristic},
		{"huge cool", Actor{ID: "a-1", Name: "X", Cool: 201}, apperrors.CodeActorInvalidCharacteristic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpsertActor(context.Background(), tt.actor)
			if got := apperrors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestUpsertActorKeepsStressAndRefreshesMax(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.SetStress(ctx, "a-1", 5); err != nil {
		t.Fatalf("set stress: %v", err)
	}
	view, err := svc.UpsertActor(ctx, Actor{ID: "a-1", Name: "Gunther", Willpower: 52, Intelligence: 31})
	if err != nil {
		t.Fatalf("upsert actor: %v", err)
	}
	if view.Value != 5 || view.Max != 8 {
		t.Fatalf("stress = %d/%d, want 5/8", view.Value, view.Max)
	}
}

func TestGetStressUnknownActor(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetStress(context.Background(), "ghost")
	if !apperrors.IsCode(err, apperrors.CodeActorNotFound) {
		t.Fatalf("err = %v, want ACTOR_NOT_FOUND", err)
	}
	if msg := apperrors.UserMessage(err, "en-US"); msg != `actor "ghost" was not found` {
		t.Fatalf("message = %q", msg)
	}
}

func TestSetStressFlagsAffliction(t *testing.T) {
	svc := newTestService(t)
	upsertGunther(t, svc)
	view, err := svc.SetStress(context.Background(), "a-1", 7)
	if err != nil {
		t.Fatalf("set stress: %v", err)
	}
	if !view.Afflicted {
		t.Fatal("expected 7 over max 6 to read as afflicted")
	}
}

func TestApplyTestOrdinaryFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)

	result, err := svc.ApplyTest(ctx, failure("t-1", 65, 44, -2))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Resolution.Delta != 3 {
		t.Fatalf("delta = %d, want 3", result.Resolution.Delta)
	}
	if result.Before != 0 || result.Stress.Value != 3 {
		t.Fatalf("stress %d -> %d, want 0 -> 3", result.Before, result.Stress.Value)
	}
	want := []string{"Gunther failed the stress test and gains 3 stress."}
	if len(result.Messages) != 1 || result.Messages[0] != want[0] {
		t.Fatalf("messages = %q, want %q", result.Messages, want)
	}

	view, err := svc.GetStress(ctx, "a-1")
	if err != nil {
		t.Fatalf("get stress: %v", err)
	}
	if view.Value != 3 {
		t.Fatalf("stored value = %d, want 3", view.Value)
	}
}

func TestApplyTestAffliction(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.SetStress(ctx, "a-1", 6); err != nil {
		t.Fatalf("set stress: %v", err)
	}

	result, err := svc.ApplyTest(ctx, failure("t-1", 52, 44, -1))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Stress.Value != 8 {
		t.Fatalf("value = %d, want 8", result.Stress.Value)
	}
	if !result.Resolution.Afflicted() || !result.Stress.Afflicted {
		t.Fatal("expected affliction")
	}
	if len(result.Messages) != 2 {
		t.Fatalf("messages = %q, want fail then affliction", result.Messages)
	}
	if result.Messages[1] != "Gunther is overwhelmed by stress and suffers an affliction." {
		t.Fatalf("affliction message = %q", result.Messages[1])
	}
}

func TestApplyTestCriticalClearsStress(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.SetStress(ctx, "a-1", 9); err != nil {
		t.Fatalf("set stress: %v", err)
	}
	result, err := svc.ApplyTest(ctx, success("t-1", 33, 44, 1))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if result.Resolution.Classification != stress.ClassificationCritical {
		t.Fatalf("classification = %s, want critical", result.Resolution.Classification)
	}
	if result.Stress.Value != 0 || result.Stress.Afflicted {
		t.Fatalf("stress = %+v, want 0 and not afflicted", result.Stress)
	}
}

func TestApplyTestRejectsDuplicateTestID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.ApplyTest(ctx, failure("t-1", 65, 44, -2)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	_, err := svc.ApplyTest(ctx, failure("t-1", 65, 44, -2))
	if !apperrors.IsCode(err, apperrors.CodeTestAlreadyResolved) {
		t.Fatalf("err = %v, want TEST_ALREADY_RESOLVED", err)
	}
	view, err := svc.GetStress(ctx, "a-1")
	if err != nil {
		t.Fatalf("get stress: %v", err)
	}
	if view.Value != 3 {
		t.Fatalf("value = %d, want 3 after rejected duplicate", view.Value)
	}
}

func TestApplyTestRerollReplacesPreviousDelta(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.SetStress(ctx, "a-1", 1); err != nil {
		t.Fatalf("set stress: %v", err)
	}

	steps := []struct {
		name string
		req  ApplyRequest
		want int
	}{
		{"first failure", failure("t-1", 80, 44, -4), 6},
		{"fortune reroll still fails", failure("t-1", 56, 44, -1), 3},
		{"add sl", failure("t-1", 56, 44, 0), 2},
		{"another reroll passes", success("t-1", 20, 44, 2), 1},
	}
	for i, step := range steps {
		req := step.req
		if i > 0 {
			req.Reroll = true
		}
		if step.name == "add sl" {
			req.RerollKind = stress.RerollKindAddSL
		}
		result, err := svc.ApplyTest(ctx, req)
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if result.Stress.Value != step.want {
			t.Fatalf("%s: value = %d, want %d", step.name, result.Stress.Value, step.want)
		}
	}

	history, err := svc.History(ctx, "a-1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("history len = %d, want 4", len(history))
	}
	if history[0].RerollKind != "fortune" || history[1].RerollKind != "add_sl" || history[3].RerollKind != "" {
		t.Fatalf("reroll kinds = %q, %q, %q", history[0].RerollKind, history[1].RerollKind, history[3].RerollKind)
	}
	if history[0].Before != 2 || history[0].After != 1 {
		t.Fatalf("latest entry %d -> %d, want 2 -> 1", history[0].Before, history[0].After)
	}
}

func TestApplyTestRerollAfterCritical(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.SetStress(ctx, "a-1", 4); err != nil {
		t.Fatalf("set stress: %v", err)
	}
	if _, err := svc.ApplyTest(ctx, success("t-1", 22, 44, 2)); err != nil {
		t.Fatalf("critical: %v", err)
	}
	req := failure("t-1", 60, 44, -1)
	req.Reroll = true
	result, err := svc.ApplyTest(ctx, req)
	if err != nil {
		t.Fatalf("reroll: %v", err)
	}
	if result.Stress.Value != 6 {
		t.Fatalf("value = %d, want 6", result.Stress.Value)
	}
}

func TestApplyTestRerollErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.UpsertActor(ctx, Actor{ID: "a-2", Name: "Elsa", Willpower: 40, Intelligence: 40}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	req := failure("t-missing", 60, 44, -1)
	req.Reroll = true
	_, err := svc.ApplyTest(ctx, req)
	if !apperrors.IsCode(err, apperrors.CodeRerollNotFound) {
		t.Fatalf("err = %v, want REROLL_NOT_FOUND", err)
	}

	if _, err := svc.ApplyTest(ctx, failure("t-1", 60, 44, -1)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	other := failure("t-1", 60, 44, -1)
	other.ActorID = "a-2"
	other.Reroll = true
	_, err = svc.ApplyTest(ctx, other)
	if !apperrors.IsCode(err, apperrors.CodeRerollActorMismatch) {
		t.Fatalf("err = %v, want REROLL_ACTOR_MISMATCH", err)
	}
}

func TestApplyTestValidation(t *testing.T) {
	svc := newTestService(t)
	upsertGunther(t, svc)
	tests := []struct {
		name string
		req  ApplyRequest
		code apperrors.Code
	}{
		{"missing actor", ApplyRequest{TestID: "t", Roll: 10, Outcome: check.OutcomeSuccess}, apperrors.CodeActorEmptyID},
		{"missing test", ApplyRequest{ActorID: "a-1", Roll: 10, Outcome: check.OutcomeSuccess}, apperrors.CodeTestEmptyID},
		{"roll zero", failure("t-1", 0, 44, 0), apperrors.CodeTestInvalidRoll},
		{"roll 101", failure("t-1", 101, 44, 0), apperrors.CodeTestInvalidRoll},
		{"no outcome", ApplyRequest{ActorID: "a-1", TestID: "t-1", Roll: 10}, apperrors.CodeTestInvalidOutcome},
		{"unknown actor", ApplyRequest{ActorID: "ghost", TestID: "t-1", Roll: 10, Outcome: check.OutcomeSuccess}, apperrors.CodeActorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyTest(context.Background(), tt.req)
			if got := apperrors.GetCode(err); got != tt.code {
				t.Fatalf("code = %s, want %s (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestApplyTestConcurrentSameActor(t *testing.T) {
	svc := newTestService(t, WithIDGenerator(newCountingID()))
	ctx := context.Background()
	upsertGunther(t, svc)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.ApplyTest(ctx, failure(fmt.Sprintf("t-%d", i), 50, 44, 0))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	view, err := svc.GetStress(ctx, "a-1")
	if err != nil {
		t.Fatalf("get stress: %v", err)
	}
	if view.Value != workers {
		t.Fatalf("value = %d, want %d", view.Value, workers)
	}
	if n := svc.locks.size(); n != 0 {
		t.Fatalf("held locks = %d, want 0", n)
	}
}

func newCountingID() func() string {
	var (
		mu  sync.Mutex
		seq int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("c-%d", seq)
	}
}

func TestRunStressTest(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.UpsertActor(ctx, Actor{ID: "a-1", Name: "Gunther", Willpower: 34, Intelligence: 31, Cool: 42}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	seed := int64(7)

	result, err := svc.RunStressTest(ctx, RunRequest{ActorID: "a-1", Level: stress.LevelMajor, Seed: &seed})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Seed != seed {
		t.Fatalf("seed = %d, want %d", result.Seed, seed)
	}
	if result.Setup.Skill != stress.SkillCool || result.Setup.Target != 22 {
		t.Fatalf("setup = %+v, want cool vs 22", result.Setup)
	}
	want := dice.RollPercentileSeed(seed)
	if result.Dice != want {
		t.Fatalf("dice = %+v, want %+v", result.Dice, want)
	}
	if result.Test.Roll != want.Value {
		t.Fatalf("test roll = %d, want %d", result.Test.Roll, want.Value)
	}
	expected := stress.Resolve(
		stress.Character{Name: "Gunther", WillpowerBonus: 3, IntelligenceBonus: 3},
		nil,
		result.Test,
	)
	if result.Result.Stress.Value != expected.State.Value {
		t.Fatalf("value = %d, want %d", result.Result.Stress.Value, expected.State.Value)
	}
	if result.Result.TestID == "" {
		t.Fatal("expected generated test id")
	}
}

func TestRunStressTestUsesSeedFunc(t *testing.T) {
	svc := newTestService(t, WithSeedFunc(func(*int64) (int64, error) { return 99, nil }))
	upsertGunther(t, svc)
	result, err := svc.RunStressTest(context.Background(), RunRequest{ActorID: "a-1", TestID: "scene-1"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Seed != 99 {
		t.Fatalf("seed = %d, want 99", result.Seed)
	}
	if result.Setup.Skill != stress.SkillWillpower || result.Setup.Target != 54 {
		t.Fatalf("setup = %+v, want willpower vs 54", result.Setup)
	}
	if result.Result.TestID != "scene-1" {
		t.Fatalf("test id = %q, want scene-1", result.Result.TestID)
	}
}

func TestApplyTestLogsAffliction(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := newTestService(t, WithLogger(zap.New(core)))
	ctx := context.Background()
	upsertGunther(t, svc)
	if _, err := svc.SetStress(ctx, "a-1", 6); err != nil {
		t.Fatalf("set stress: %v", err)
	}
	if _, err := svc.ApplyTest(ctx, failure("t-1", 52, 44, -1)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	entries := logs.FilterMessage("stress affliction").All()
	if len(entries) != 1 {
		t.Fatalf("affliction logs = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["stress_after"]; got != int64(8) {
		t.Fatalf("stress_after = %v, want 8", got)
	}
}

func TestHistoryLimitAndUnknownActor(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	upsertGunther(t, svc)
	for i := 0; i < 3; i++ {
		if _, err := svc.ApplyTest(ctx, success(fmt.Sprintf("t-%d", i), 30, 44, 1)); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	history, err := svc.History(ctx, "a-1", 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].TestID != "t-2" {
		t.Fatalf("history = %+v, want 2 newest entries", history)
	}
	if _, err := svc.History(ctx, "ghost", 0); !apperrors.IsCode(err, apperrors.CodeActorNotFound) {
		t.Fatalf("err = %v, want ACTOR_NOT_FOUND", err)
	}
}
