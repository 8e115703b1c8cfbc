package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/khanglvm/city-hub/internal/storage"
)

func TestNewListCmd(t *testing.T) {
	cmd := NewListCmd()

	if cmd == nil {
		t.Fatal("NewListCmd() returned nil")
	}

	// Verify command properties
	if cmd.Use != "list" {
		t.Errorf("Expected Use='list', got %q", cmd.Use)
	}

	// Verify aliases
	aliases := cmd.Aliases
	if len(aliases) == 0 || aliases[0] != "ls" {
		t.Errorf("Expected alias 'ls', got %v", aliases)
	}

	// Verify flags are registered
	for _, flag := range []string{"json", "category", "status", "limit", "all"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not registered", flag)
		}
	}
}

func TestListCommandFlags(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantJSON     bool
		wantCategory []string
		wantLimit    int
	}{
		{
			name:      "no flags",
			args:      []string{},
			wantLimit: 20,
		},
		{
			name:      "json flag",
			args:      []string{"--json"},
			wantJSON:  true,
			wantLimit: 20,
		},
		{
			name:         "repeated categories",
			args:         []string{"--category", "cafes", "--category", "bars"},
			wantCategory: []string{"cafes", "bars"},
			wantLimit:    20,
		},
		{
			name:         "short flags",
			args:         []string{"-j", "-c", "parks", "-n", "5"},
			wantJSON:     true,
			wantCategory: []string{"parks"},
			wantLimit:    5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewListCmd()

			// Parse flags
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() failed: %v", err)
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag != tt.wantJSON {
				t.Errorf("json flag = %v, want %v", jsonFlag, tt.wantJSON)
			}

			categories, _ := cmd.Flags().GetStringSlice("category")
			if strings.Join(categories, ",") != strings.Join(tt.wantCategory, ",") {
				t.Errorf("category flag = %v, want %v", categories, tt.wantCategory)
			}

			limit, _ := cmd.Flags().GetInt("limit")
			if limit != tt.wantLimit {
				t.Errorf("limit flag = %d, want %d", limit, tt.wantLimit)
			}
		})
	}
}

func TestListEmptyCatalog(t *testing.T) {
	setupHome(t)

	out, err := execute(t, NewListCmd())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "No items found.") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = execute(t, NewListCmd(), "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty JSON list = %q, want []", out)
	}
}

func TestListFilters(t *testing.T) {
	setupHome(t)

	past := time.Now().Add(-time.Hour)
	seedFile(t, []storage.Item{
		{ID: "r1", Title: "Banh Mi Corner", Category: "restaurants"},
		{ID: "c1", Title: "Egg Coffee", Category: "cafes"},
		{ID: "a1", Title: "Closed Diner", Category: "restaurants", Status: storage.StatusArchived},
		{ID: "x1", Title: "Old Scooter", Category: "market_vehicles", ExpiresAt: &past},
	})

	tests := []struct {
		name    string
		args    []string
		wantIDs []string
	}{
		{"active only", []string{"--json"}, []string{"r1", "c1"}},
		{"by category", []string{"--json", "-c", "restaurants"}, []string{"r1"}},
		{"all", []string{"--json", "--all"}, []string{"r1", "c1", "a1", "x1"}},
		{"archived", []string{"--json", "--all", "--status", "archived"}, []string{"a1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, NewListCmd(), tt.args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			var items []storage.Item
			decodeJSON(t, out, &items)

			got := map[string]bool{}
			for _, it := range items {
				got[it.ID] = true
			}
			if len(got) != len(tt.wantIDs) {
				t.Errorf("got %v, want %v", got, tt.wantIDs)
			}
			for _, id := range tt.wantIDs {
				if !got[id] {
					t.Errorf("missing %s in %v", id, got)
				}
			}
		})
	}
}

func TestListHumanOutput(t *testing.T) {
	setupHome(t)
	seedFile(t, []storage.Item{{ID: "r1", Title: "Banh Mi Corner", Category: "restaurants"}})

	out, err := execute(t, NewListCmd())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"Catalog Items (1)", "Banh Mi Corner", "restaurants"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
