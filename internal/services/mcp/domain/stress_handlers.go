package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/wfrp-stress/internal/core/check"
	apperrors "github.com/louisbranch/wfrp-stress/internal/platform/errors"
	"github.com/louisbranch/wfrp-stress/internal/platform/timeouts"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/app"
	"github.com/louisbranch/wfrp-stress/internal/stress"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ResourceUpdateNotifier announces that a resource URI changed.
type ResourceUpdateNotifier func(ctx context.Context, uri string)

// NotifyResourceUpdates calls notify for each non-empty URI.
func NotifyResourceUpdates(ctx context.Context, notify ResourceUpdateNotifier, uris ...string) {
	if notify == nil {
		return
	}
	for _, uri := range uris {
		if strings.TrimSpace(uri) == "" {
			continue
		}
		notify(ctx, uri)
	}
}

// ActorUpsertHandler creates or updates an actor.
func ActorUpsertHandler(svc StressService, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[ActorUpsertInput, StressResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActorUpsertInput) (*mcp.CallToolResult, StressResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		view, err := svc.UpsertActor(callCtx, app.Actor{
			ID:           input.ActorID,
			Name:         input.Name,
			Willpower:    input.Willpower,
			Intelligence: input.Intelligence,
			Cool:         input.Cool,
		})
		if err != nil {
			return nil, StressResult{}, toolError("actor upsert", err)
		}
		NotifyResourceUpdates(ctx, notify, ActorResourceURI(view.ActorID))
		return nil, stressResultFromView(view), nil
	}
}

// StressGetHandler reads an actor's stress.
func StressGetHandler(svc StressService) mcp.ToolHandlerFor[StressGetInput, StressResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StressGetInput) (*mcp.CallToolResult, StressResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		view, err := svc.GetStress(callCtx, input.ActorID)
		if err != nil {
			return nil, StressResult{}, toolError("stress get", err)
		}
		return nil, stressResultFromView(view), nil
	}
}

// StressSetHandler overwrites an actor's stress.
func StressSetHandler(svc StressService, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[StressSetInput, StressResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StressSetInput) (*mcp.CallToolResult, StressResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		view, err := svc.SetStress(callCtx, input.ActorID, input.Value)
		if err != nil {
			return nil, StressResult{}, toolError("stress set", err)
		}
		NotifyResourceUpdates(ctx, notify, ActorResourceURI(view.ActorID))
		return nil, stressResultFromView(view), nil
	}
}

// TestApplyHandler applies a resolved test.
func TestApplyHandler(svc StressService, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[TestApplyInput, TestApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TestApplyInput) (*mcp.CallToolResult, TestApplyResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		kind, err := parseRerollKind(input.RerollKind)
		if err != nil {
			return nil, TestApplyResult{}, err
		}
		result, err := svc.ApplyTest(callCtx, app.ApplyRequest{
			ActorID:       input.ActorID,
			TestID:        input.TestID,
			Roll:          input.Roll,
			Target:        input.Target,
			SuccessLevels: input.SuccessLevels,
			Outcome:       check.ParseOutcome(input.Outcome),
			Reroll:        input.Reroll,
			RerollKind:    kind,
		})
		if err != nil {
			return nil, TestApplyResult{}, toolError("stress test apply", err)
		}
		NotifyResourceUpdates(ctx, notify, ActorResourceURI(result.Stress.ActorID))
		return nil, testApplyResultFrom(result), nil
	}
}

// TestRollHandler rolls and applies a stress test.
func TestRollHandler(svc StressService, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[TestRollInput, TestRollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TestRollInput) (*mcp.CallToolResult, TestRollResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		level, err := stress.ParseLevelStrict(input.Level)
		if err != nil {
			return nil, TestRollResult{}, toolError("stress test roll", err)
		}
		run, err := svc.RunStressTest(callCtx, app.RunRequest{
			ActorID: input.ActorID,
			Level:   level,
			TestID:  input.TestID,
			Seed:    input.Seed,
		})
		if err != nil {
			return nil, TestRollResult{}, toolError("stress test roll", err)
		}
		NotifyResourceUpdates(ctx, notify, ActorResourceURI(run.Result.Stress.ActorID))
		return nil, TestRollResult{
			Seed:          run.Seed,
			Level:         run.Setup.Level.String(),
			Skill:         string(run.Setup.Skill),
			Base:          run.Setup.Base,
			Difficulty:    run.Setup.Difficulty.String(),
			Target:        run.Setup.Target,
			Roll:          run.Test.Roll,
			Outcome:       run.Test.Outcome.String(),
			SuccessLevels: run.Test.SuccessLevels,
			Result:        testApplyResultFrom(run.Result),
		}, nil
	}
}

// HistoryHandler lists an actor's ledger.
func HistoryHandler(svc StressService) mcp.ToolHandlerFor[HistoryInput, HistoryResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		entries, err := svc.History(callCtx, input.ActorID, input.Limit)
		if err != nil {
			return nil, HistoryResult{}, toolError("stress history", err)
		}
		result := HistoryResult{
			ActorID: strings.TrimSpace(input.ActorID),
			Entries: make([]HistoryEntryResult, 0, len(entries)),
		}
		for _, e := range entries {
			result.Entries = append(result.Entries, HistoryEntryResult{
				ResolutionID:   e.ResolutionID,
				TestID:         e.TestID,
				Roll:           e.Roll,
				Target:         e.Target,
				SuccessLevels:  e.SuccessLevels,
				Outcome:        e.Outcome,
				RerollKind:     e.RerollKind,
				Classification: e.Classification,
				Delta:          e.Delta,
				Before:         e.Before,
				After:          e.After,
				Max:            e.Max,
				Afflicted:      e.Afflicted,
				CreatedAt:      formatTimestamp(e.CreatedAt),
			})
		}
		return nil, result, nil
	}
}

func parseRerollKind(value string) (stress.RerollKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return stress.RerollKindUnspecified, nil
	case "fortune", "reroll":
		return stress.RerollKindFortune, nil
	case "add_sl":
		return stress.RerollKindAddSL, nil
	default:
		return stress.RerollKindUnspecified, fmt.Errorf("reroll_kind must be fortune or add_sl")
	}
}

// toolError keeps domain error codes visible to MCP clients.
func toolError(operation string, err error) error {
	if code := apperrors.GetCode(err); code != apperrors.CodeUnknown {
		return fmt.Errorf("%s: %s", code, apperrors.UserMessage(err, apperrors.DefaultLocale))
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

func stressResultFromView(view app.StressView) StressResult {
	return StressResult{
		ActorID:   view.ActorID,
		Name:      view.ActorName,
		Value:     view.Value,
		Max:       view.Max,
		Afflicted: view.Afflicted,
	}
}

func testApplyResultFrom(result app.ApplyResult) TestApplyResult {
	notifications := make([]NotificationResult, 0, len(result.Resolution.Notifications))
	for _, n := range result.Resolution.Notifications {
		notifications = append(notifications, NotificationResult{
			Kind:         n.Kind.String(),
			StressGained: n.StressGained,
			Message:      app.Render(n),
		})
	}
	return TestApplyResult{
		ResolutionID:   result.ResolutionID,
		TestID:         result.TestID,
		Classification: result.Resolution.Classification.String(),
		Delta:          result.Resolution.Delta,
		Applied:        result.Resolution.Applied,
		Before:         result.Before,
		Stress:         stressResultFromView(result.Stress),
		Notifications:  notifications,
	}
}
