package domain

import (
	"context"
	"time"

	"github.com/louisbranch/wfrp-stress/internal/services/stress/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StressService is the stress surface the MCP handlers call.
type StressService interface {
	UpsertActor(ctx context.Context, actor app.Actor) (app.StressView, error)
	GetActor(ctx context.Context, actorID string) (app.Actor, error)
	ListActors(ctx context.Context) ([]app.Actor, error)
	GetStress(ctx context.Context, actorID string) (app.StressView, error)
	SetStress(ctx context.Context, actorID string, value int) (app.StressView, error)
	ApplyTest(ctx context.Context, in app.ApplyRequest) (app.ApplyResult, error)
	RunStressTest(ctx context.Context, in app.RunRequest) (app.RunResult, error)
	History(ctx context.Context, actorID string, limit int) ([]app.HistoryEntry, error)
}

var _ StressService = (*app.Service)(nil)

// ActorUpsertInput represents the MCP tool input for creating or updating an actor.
type ActorUpsertInput struct {
	ActorID      string `json:"actor_id" jsonschema:"actor identifier"`
	Name         string `json:"name" jsonschema:"actor display name used in chat messages"`
	Willpower    int    `json:"willpower" jsonschema:"Willpower characteristic (0-200)"`
	Intelligence int    `json:"intelligence" jsonschema:"Intelligence characteristic (0-200)"`
	Cool         int    `json:"cool,omitempty" jsonschema:"Cool skill value; 0 when untrained"`
}

// StressResult is the MCP view of an actor's stress track.
type StressResult struct {
	ActorID   string `json:"actor_id" jsonschema:"actor identifier"`
	Name      string `json:"name" jsonschema:"actor display name"`
	Value     int    `json:"value" jsonschema:"current stress"`
	Max       int    `json:"max" jsonschema:"stress maximum (Willpower bonus + Intelligence bonus)"`
	Afflicted bool   `json:"afflicted" jsonschema:"true when stress exceeds a positive maximum"`
}

// StressGetInput represents the MCP tool input for reading stress.
type StressGetInput struct {
	ActorID string `json:"actor_id" jsonschema:"actor identifier"`
}

// StressSetInput represents the MCP tool input for a manual stress change.
type StressSetInput struct {
	ActorID string `json:"actor_id" jsonschema:"actor identifier"`
	Value   int    `json:"value" jsonschema:"new stress value"`
}

// TestApplyInput represents a resolved test handed over by the table.
type TestApplyInput struct {
	ActorID       string `json:"actor_id" jsonschema:"actor identifier"`
	TestID        string `json:"test_id" jsonschema:"identifier of the logical check; rerolls reuse it"`
	Roll          int    `json:"roll" jsonschema:"d100 result (1-100)"`
	Target        int    `json:"target" jsonschema:"target number the roll had to meet"`
	SuccessLevels int    `json:"success_levels" jsonschema:"signed success levels"`
	Outcome       string `json:"outcome" jsonschema:"success or failure"`
	Reroll        bool   `json:"reroll,omitempty" jsonschema:"true when this result replaces the previous result for test_id"`
	RerollKind    string `json:"reroll_kind,omitempty" jsonschema:"fortune (default) or add_sl"`
}

// NotificationResult is one emitted notification.
type NotificationResult struct {
	Kind         string `json:"kind" jsonschema:"fumble, critical, fail, pass, or affliction"`
	StressGained int    `json:"stress_gained,omitempty" jsonschema:"stress gained for fail notifications"`
	Message      string `json:"message" jsonschema:"rendered chat line"`
}

// TestApplyResult represents the MCP tool output for an applied test.
type TestApplyResult struct {
	ResolutionID   string               `json:"resolution_id" jsonschema:"ledger entry identifier"`
	TestID         string               `json:"test_id" jsonschema:"identifier of the logical check"`
	Classification string               `json:"classification" jsonschema:"ordinary, critical, or fumble"`
	Delta          int                  `json:"delta" jsonschema:"stress delta of this result"`
	Applied        int                  `json:"applied" jsonschema:"net change to stored stress"`
	Before         int                  `json:"before" jsonschema:"stress before this result"`
	Stress         StressResult         `json:"stress" jsonschema:"stress after this result"`
	Notifications  []NotificationResult `json:"notifications" jsonschema:"notifications in delivery order"`
}

// TestRollInput represents the MCP tool input for rolling a stress test.
type TestRollInput struct {
	ActorID string `json:"actor_id" jsonschema:"actor identifier"`
	Level   string `json:"level,omitempty" jsonschema:"minor (default), moderate, or major"`
	TestID  string `json:"test_id,omitempty" jsonschema:"optional identifier for later rerolls; generated when empty"`
	Seed    *int64 `json:"seed,omitempty" jsonschema:"optional seed for a reproducible roll"`
}

// TestRollResult represents the MCP tool output for a rolled stress test.
type TestRollResult struct {
	Seed          int64           `json:"seed" jsonschema:"seed used for the roll"`
	Level         string          `json:"level" jsonschema:"stress level"`
	Skill         string          `json:"skill" jsonschema:"cool or willpower"`
	Base          int             `json:"base" jsonschema:"skill or characteristic value tested"`
	Difficulty    string          `json:"difficulty" jsonschema:"test difficulty"`
	Target        int             `json:"target" jsonschema:"target number"`
	Roll          int             `json:"roll" jsonschema:"d100 result"`
	Outcome       string          `json:"outcome" jsonschema:"success or failure"`
	SuccessLevels int             `json:"success_levels" jsonschema:"signed success levels"`
	Result        TestApplyResult `json:"result" jsonschema:"applied stress result"`
}

// HistoryInput represents the MCP tool input for reading the ledger.
type HistoryInput struct {
	ActorID string `json:"actor_id" jsonschema:"actor identifier"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum entries (default 20, max 200)"`
}

// HistoryEntryResult is one ledger entry.
type HistoryEntryResult struct {
	ResolutionID   string `json:"resolution_id"`
	TestID         string `json:"test_id"`
	Roll           int    `json:"roll"`
	Target         int    `json:"target"`
	SuccessLevels  int    `json:"success_levels"`
	Outcome        string `json:"outcome"`
	RerollKind     string `json:"reroll_kind,omitempty"`
	Classification string `json:"classification"`
	Delta          int    `json:"delta"`
	Before         int    `json:"before"`
	After          int    `json:"after"`
	Max            int    `json:"max"`
	Afflicted      bool   `json:"afflicted"`
	CreatedAt      string `json:"created_at"`
}

// HistoryResult represents the MCP tool output for the ledger.
type HistoryResult struct {
	ActorID string               `json:"actor_id"`
	Entries []HistoryEntryResult `json:"entries"`
}

// ActorUpsertTool defines the MCP tool schema for actor upserts.
func ActorUpsertTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stress_actor_upsert",
		Description: "Creates or updates an actor's characteristics; stress starts at 0",
	}
}

// StressGetTool defines the MCP tool schema for reading stress.
func StressGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stress_get",
		Description: "Returns an actor's stress and freshly computed maximum",
	}
}

// StressSetTool defines the MCP tool schema for manual stress changes.
func StressSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stress_set",
		Description: "Overwrites an actor's stress value",
	}
}

// TestApplyTool defines the MCP tool schema for applying a resolved test.
func TestApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stress_test_apply",
		Description: "Applies a resolved test to an actor's stress; set reroll to replace an earlier result",
	}
}

// TestRollTool defines the MCP tool schema for rolling a stress test.
func TestRollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stress_test_roll",
		Description: "Rolls a Cool (or Willpower) stress test at the level's difficulty and applies it",
	}
}

// HistoryTool defines the MCP tool schema for reading the ledger.
func HistoryTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "stress_history",
		Description: "Lists an actor's applied test results, newest first",
	}
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
