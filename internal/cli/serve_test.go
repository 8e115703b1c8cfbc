package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/khanglvm/city-hub/internal/storage"
)

func TestNewServeCmd(t *testing.T) {
	cmd := NewServeCmd()

	if cmd == nil {
		t.Fatal("NewServeCmd() returned nil")
	}

	// Verify command properties
	if cmd.Use != "serve" {
		t.Errorf("Expected Use='serve', got %q", cmd.Use)
	}
	for _, flag := range []string{"addr", "stdio"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Flag %q not registered", flag)
		}
	}
}

func TestServeCommandHelp(t *testing.T) {
	output, err := execute(t, NewServeCmd(), "--help")
	if err != nil {
		t.Fatalf("Execute() with --help failed: %v", err)
	}

	// Verify help output lists the surfaces
	expectedStrings := []string{
		"/api/recommendations",
		"/api/showcase",
		"/metrics",
		"city_recommend",
		"city_suggest",
		"--stdio",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("Help output missing %q", expected)
		}
	}
}

func TestRunRetentionPurgesOnStart(t *testing.T) {
	store := storage.NewStorage(filepath.Join(t.TempDir(), "city.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Now()
	events := []storage.UserEvent{
		{UserID: "u1", EventType: "view", Category: "parks", CreatedAt: now.Add(-100 * 24 * time.Hour)},
		{UserID: "u1", EventType: "view", Category: "cafes", CreatedAt: now.Add(-time.Hour)},
	}
	if err := store.AppendEvents(ctx, events); err != nil {
		t.Fatalf("AppendEvents() error = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	runRetention(cancelled, store, 90*24*time.Hour)

	remaining, err := store.QueryEvents(ctx, storage.EventQuery{UserID: "u1"})
	if err != nil {
		t.Fatalf("QueryEvents() error = %v", err)
	}
	if len(remaining) != 1 || remaining[0].Category != "cafes" {
		t.Errorf("remaining events = %+v, want only the recent one", remaining)
	}
}
