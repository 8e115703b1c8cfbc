package cli

import (
	"strings"
	"testing"

	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/storage"
)

func TestNewSearchCmd(t *testing.T) {
	cmd := NewSearchCmd()

	if cmd.Use != "search <query>" {
		t.Errorf("Expected Use='search <query>', got %q", cmd.Use)
	}
	for _, flag := range []string{"json", "user", "limit"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not registered", flag)
		}
	}

	if _, err := execute(t, NewSearchCmd()); err == nil {
		t.Error("search without a query should fail")
	}
}

func TestSearchRecordsEventForUser(t *testing.T) {
	setupHome(t)
	seedFile(t, []storage.Item{
		{ID: "r1", Title: "Pho Noodle House", Description: "Beef noodle soup", Category: "restaurants"},
		{ID: "m1", Title: "History Museum", Category: "museums"},
	})

	out, err := execute(t, NewSearchCmd(), "noodle", "--user", "alice", "--json")
	if err != nil {
		t.Fatalf("search failed: %v\n%s", err, out)
	}
	var items []storage.Item
	decodeJSON(t, out, &items)
	if len(items) != 1 || items[0].ID != "r1" {
		t.Fatalf("search results = %v, want [r1]", items)
	}

	out, err = execute(t, NewEventsCmd(), "list", "--user", "alice", "--json")
	if err != nil {
		t.Fatalf("events list failed: %v", err)
	}
	var events []storage.UserEvent
	decodeJSON(t, out, &events)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 search event", len(events))
	}
	if events[0].EventType != learning.EventSearch || events[0].Metadata[learning.MetaQuery] != "noodle" {
		t.Errorf("event = %+v", events[0])
	}
}

func TestSearchNoResults(t *testing.T) {
	setupHome(t)
	seedFile(t, []storage.Item{{ID: "m1", Title: "History Museum", Category: "museums"}})

	out, err := execute(t, NewSearchCmd(), "karaoke")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, `No results for "karaoke"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}
