package mcp

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/khanglvm/city-hub/internal/assistant"
	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/recommend"
	"github.com/khanglvm/city-hub/internal/storage"
)

type stubRecommender struct{}

func (stubRecommender) Recommend(_ context.Context, userID string) []storage.Item {
	return []storage.Item{{ID: "r1", Title: "for " + userID}}
}

type stubShowcase struct{}

func (stubShowcase) Compose(context.Context) []recommend.Section {
	return []recommend.Section{{Category: "market_jobs", Title: "Jobs", Items: []storage.Item{{ID: "j1"}}}}
}

type stubSearcher struct{ limit int }

func (s *stubSearcher) Search(_ context.Context, _, text string, limit int) ([]storage.Item, error) {
	s.limit = limit
	return []storage.Item{{ID: "s1", Title: text}}, nil
}

type stubTracker struct {
	mu     sync.Mutex
	events []learning.Event
}

func (s *stubTracker) Track(e learning.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

type stubSuggester struct{ ok bool }

func (s stubSuggester) Evaluate(context.Context) (assistant.Message, bool) {
	if !s.ok {
		return assistant.Message{}, false
	}
	return assistant.Message{Kind: assistant.KindGreeting, Link: "/places?sort=newest"}, true
}

func newTestServer() (*Server, *stubSearcher, *stubTracker) {
	search := &stubSearcher{}
	tracker := &stubTracker{}
	return NewServer(Deps{
		Recommender: stubRecommender{},
		Showcase:    stubShowcase{},
		Search:      search,
		Tracker:     tracker,
		Assistant:   stubSuggester{ok: true},
	}), search, tracker
}

func call(t *testing.T, s *Server, request string) *MCPResponse {
	t.Helper()
	resp, err := s.handleRequest(context.Background(), []byte(request))
	if err != nil {
		t.Fatalf("handleRequest failed: %v", err)
	}
	return resp
}

// toolText extracts the text content of a tools/call result.
func toolText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	data, _ := json.Marshal(resp.Result)
	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &result); err != nil || len(result.Content) != 1 {
		t.Fatalf("unexpected result %s", data)
	}
	return result.Content[0].Text
}

func TestInitialize(t *testing.T) {
	s, _, _ := newTestServer()
	resp := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	result, ok := resp.Result.(map[string]any)
	if !ok || result["protocolVersion"] == nil {
		t.Fatalf("unexpected result %+v", resp.Result)
	}
}

func TestToolsList(t *testing.T) {
	s, _, _ := newTestServer()
	resp := call(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	data, _ := json.Marshal(resp.Result)
	var result struct {
		Tools []struct {
			Name        string         `json:"name"`
			InputSchema map[string]any `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{"city_recommend": true, "city_showcase": true, "city_search": true, "city_track": true, "city_suggest": true}
	if len(result.Tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(result.Tools))
	}
	for _, tool := range result.Tools {
		if !want[tool.Name] {
			t.Errorf("unexpected tool %s", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("%s: schema type = %v", tool.Name, tool.InputSchema["type"])
		}
	}
}

func TestToolCalls(t *testing.T) {
	s, search, tracker := newTestServer()

	text := toolText(t, call(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"city_recommend","arguments":{"user_id":"u1"}}}`))
	if !strings.Contains(text, `"count":1`) || !strings.Contains(text, "for u1") {
		t.Errorf("unexpected recommend output %s", text)
	}

	text = toolText(t, call(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"city_showcase"}}`))
	if !strings.Contains(text, "market_jobs") {
		t.Errorf("unexpected showcase output %s", text)
	}

	text = toolText(t, call(t, s, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"city_search","arguments":{"query":"bike","limit":500}}}`))
	if !strings.Contains(text, "bike") || search.limit != maxSearchLimit {
		t.Errorf("unexpected search output %s (limit %d)", text, search.limit)
	}

	toolText(t, call(t, s, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"city_track","arguments":{"user_id":"u1","type":"search","query":"sushi"}}}`))
	if len(tracker.events) != 1 || tracker.events[0].Metadata[learning.MetaQuery] != "sushi" {
		t.Errorf("unexpected tracked events %+v", tracker.events)
	}

	text = toolText(t, call(t, s, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"city_suggest"}}`))
	if !strings.Contains(text, "greeting") {
		t.Errorf("unexpected suggest output %s", text)
	}
}

func TestJSONRPCErrors(t *testing.T) {
	s, _, _ := newTestServer()

	tests := []struct {
		name     string
		request  string
		wantCode int
	}{
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, codeMethodNotFound},
		{"unknown tool", `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"city_teleport"}}`, codeInvalidParams},
		{"bad params", `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":"oops"}`, codeInvalidParams},
		{"search without query", `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"city_search","arguments":{}}}`, codeToolError},
		{"track without user", `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"city_track","arguments":{"type":"view"}}}`, codeToolError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, s, tt.request)
			if resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("expected error code %d, got %+v", tt.wantCode, resp.Error)
			}
		})
	}
}

func TestUnconfiguredTool(t *testing.T) {
	s := NewServer(Deps{})
	resp := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"city_showcase"}}`)
	if resp.Error == nil || resp.Error.Code != codeToolError {
		t.Errorf("expected tool error, got %+v", resp)
	}
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s, _, _ := newTestServer()
	if resp := call(t, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`); resp != nil {
		t.Errorf("expected no response, got %+v", resp)
	}
}

func TestServeStdioLoop(t *testing.T) {
	s, _, _ := newTestServer()
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n"))
	var out bytes.Buffer

	if err := s.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 responses, got %d: %q", len(lines), out.String())
	}

	var parseErr MCPResponse
	if err := json.Unmarshal([]byte(lines[1]), &parseErr); err != nil {
		t.Fatal(err)
	}
	if parseErr.Error == nil || parseErr.Error.Code != codeParseError {
		t.Errorf("expected parse error, got %s", lines[1])
	}
}
