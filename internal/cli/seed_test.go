package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/khanglvm/city-hub/internal/config"
	"github.com/khanglvm/city-hub/internal/storage"
)

func TestNewSeedCmd(t *testing.T) {
	cmd := NewSeedCmd()

	if cmd.Use != "seed [items.json]" {
		t.Errorf("Expected Use='seed [items.json]', got %q", cmd.Use)
	}
	for _, flag := range []string{"demo", "seed", "owner"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not registered", flag)
		}
	}
}

func TestSeedArguments(t *testing.T) {
	setupHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"nothing to seed", []string{}, "provide an items file"},
		{"demo and file", []string{"--demo", "3", "items.json"}, "cannot be combined"},
		{"missing file", []string{"/nonexistent/items.json"}, "failed to read items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, NewSeedCmd(), tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestSeedDemo(t *testing.T) {
	setupHome(t)

	out, err := execute(t, NewSeedCmd(), "--demo", "20", "--seed", "7")
	if err != nil {
		t.Fatalf("seed failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓ Stored 20 items") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = execute(t, NewListCmd(), "--json", "--limit", "0")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var items []storage.Item
	decodeJSON(t, out, &items)
	if len(items) != 20 {
		t.Errorf("listed %d items, want 20", len(items))
	}
}

func TestSeedFileAssignsDefaults(t *testing.T) {
	setupHome(t)

	seedFile(t, []storage.Item{
		{ID: "p1", Title: "Pho Noodle House", Category: "restaurants"},
		{Title: "Riverside Park", Category: "parks"},
	})

	out, err := execute(t, NewListCmd(), "--json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var items []storage.Item
	decodeJSON(t, out, &items)

	if len(items) != 2 {
		t.Fatalf("listed %d items, want 2", len(items))
	}
	for _, it := range items {
		if it.ID == "" {
			t.Errorf("item %q has no id", it.Title)
		}
		if it.Status != storage.StatusActive {
			t.Errorf("item %q status = %q, want active", it.Title, it.Status)
		}
	}
}

func TestReadItemsValidates(t *testing.T) {
	setupHome(t)

	path := t.TempDir() + "/items.json"
	writeFile(t, path, `[{"id": "x", "category": "parks"}]`)

	if _, err := readItems(path); err == nil {
		t.Error("readItems() accepted an item without a title")
	}
}

func TestDemoItems(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	categories := config.DefaultShowcaseCategories()

	a := demoItems(categories, 30, 99, "owner-1", now)
	b := demoItems(categories, 30, 99, "owner-1", now)

	if len(a) != 30 {
		t.Fatalf("got %d items, want 30", len(a))
	}

	for i := range a {
		if a[i].Title != b[i].Title || a[i].Category != b[i].Category {
			t.Errorf("item %d differs between runs with the same seed", i)
		}
		if a[i].OwnerID != "owner-1" {
			t.Errorf("item %d owner = %q", i, a[i].OwnerID)
		}
		if !a[i].Active(now) {
			t.Errorf("item %d is not active at generation time", i)
		}

		isListing := strings.HasPrefix(a[i].Category, "market_")
		if isListing && a[i].ExpiresAt == nil {
			t.Errorf("listing %d has no expiry", i)
		}
		if !isListing && a[i].ExpiresAt != nil {
			t.Errorf("place %d should not expire", i)
		}
	}
}

func TestSingular(t *testing.T) {
	tests := map[string]string{
		"Restaurants": "Restaurant",
		"Galleries":   "Gallery",
		"Beaches":     "Beach",
		"Hiking":      "Hiking",
	}
	for in, want := range tests {
		if got := singular(in); got != want {
			t.Errorf("singular(%q) = %q, want %q", in, got, want)
		}
	}
}
