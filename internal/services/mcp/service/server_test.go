package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/wfrp-stress/internal/services/mcp/domain"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/app"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage/sqlite"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func newTestStressService(t *testing.T) *app.Service {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "stress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return app.NewService(store)
}

// connectInMemory serves a fresh MCP server over in-memory transports and
// returns a connected client session. Cleanup stops the server, then closes
// the session.
func connectInMemory(t *testing.T) *mcp.ClientSession {
	t.Helper()
	server, err := New(newTestStressService(t), nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.serveWithTransport(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer connectCancel()
	session, err := client.Connect(connectCtx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect client: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serveErr:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("server did not stop after cancel")
		}
		_ = session.Close()
	})
	return session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any, out any) *mcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("call %s: %v", name, err)
	}
	if out != nil && !res.IsError {
		data, err := json.Marshal(res.StructuredContent)
		if err != nil {
			t.Fatalf("marshal structured content: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("decode structured content: %v", err)
		}
	}
	return res
}

func TestNewRequiresService(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestParseTransportKind(t *testing.T) {
	tests := []struct {
		in      string
		want    TransportKind
		wantErr bool
	}{
		{"", TransportStdio, false},
		{"stdio", TransportStdio, false},
		{" HTTP ", TransportHTTP, false},
		{"websocket", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTransportKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseTransportKind(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseTransportKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestRunUnsupportedTransport ensures Run rejects unknown transport kinds.
func TestRunUnsupportedTransport(t *testing.T) {
	err := Run(context.Background(), newTestStressService(t), Config{Transport: "websocket"})
	if err == nil {
		t.Fatal("expected error for unsupported transport")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("expected 'not supported' in error, got: %v", err)
	}
}

func TestAddMCPToolRejectsUnknownHandler(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
	err := addMCPTool(server, &mcp.Tool{Name: "bogus"}, func() {})
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("err = %v, want unsupported handler error", err)
	}
}

func TestServerListsStressTools(t *testing.T) {
	session := connectInMemory(t)
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{
		"stress_actor_upsert",
		"stress_get",
		"stress_set",
		"stress_test_apply",
		"stress_test_roll",
		"stress_history",
	} {
		if !got[name] {
			t.Errorf("missing tool %q", name)
		}
	}
}

func TestServerStressFlow(t *testing.T) {
	session := connectInMemory(t)

	var upserted domain.StressResult
	callTool(t, session, "stress_actor_upsert", map[string]any{
		"actor_id":     "a-1",
		"name":         "Gunther",
		"willpower":    34,
		"intelligence": 31,
	}, &upserted)
	if upserted.Max != 6 {
		t.Fatalf("max = %d, want 6", upserted.Max)
	}

	callTool(t, session, "stress_set", map[string]any{"actor_id": "a-1", "value": 5}, nil)

	var applied domain.TestApplyResult
	res := callTool(t, session, "stress_test_apply", map[string]any{
		"actor_id":       "a-1",
		"test_id":        "t-1",
		"roll":           47,
		"target":         34,
		"success_levels": -1,
		"outcome":        "failure",
	}, &applied)
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if applied.Stress.Value != 7 || !applied.Stress.Afflicted {
		t.Fatalf("stress = %+v, want 7 and afflicted", applied.Stress)
	}
	if len(applied.Notifications) != 2 || applied.Notifications[1].Kind != "affliction" {
		t.Fatalf("notifications = %+v, want fail then affliction", applied.Notifications)
	}

	read, err := session.ReadResource(context.Background(), &mcp.ReadResourceParams{URI: "stress://actors/a-1"})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	var payload domain.StressResult
	if err := json.Unmarshal([]byte(read.Contents[0].Text), &payload); err != nil {
		t.Fatalf("decode resource: %v", err)
	}
	if payload.Value != 7 {
		t.Fatalf("resource value = %d, want 7", payload.Value)
	}

	var history domain.HistoryResult
	callTool(t, session, "stress_history", map[string]any{"actor_id": "a-1"}, &history)
	if len(history.Entries) != 1 || history.Entries[0].TestID != "t-1" {
		t.Fatalf("history = %+v", history)
	}
}

func TestServerToolErrorsAreReported(t *testing.T) {
	session := connectInMemory(t)
	res := callTool(t, session, "stress_get", map[string]any{"actor_id": "ghost"}, nil)
	if !res.IsError {
		t.Fatal("expected tool error")
	}
	if len(res.Content) == 0 {
		t.Fatal("expected error content")
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want *mcp.TextContent", res.Content[0])
	}
	if !strings.Contains(text.Text, "ACTOR_NOT_FOUND") {
		t.Fatalf("error text = %q", text.Text)
	}
}
