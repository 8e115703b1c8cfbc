package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewVerifyCmd(t *testing.T) {
	cmd := NewVerifyCmd()

	if cmd == nil {
		t.Fatal("NewVerifyCmd() returned nil")
	}

	// Verify command properties
	if cmd.Use != "verify" {
		t.Errorf("Expected Use='verify', got %q", cmd.Use)
	}
	if cmd.Flags().Lookup("init") == nil {
		t.Error("Flag 'init' not registered")
	}
}

func TestVerifyCommandHelp(t *testing.T) {
	output, err := execute(t, NewVerifyCmd(), "--help")
	if err != nil {
		t.Fatalf("Execute() with --help failed: %v", err)
	}

	// Verify help output contains expected content
	expectedStrings := []string{
		"verify",
		"Verify",
		"configuration",
		"--init",
	}

	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("Help output missing %q", expected)
		}
	}
}

func TestVerifyWithoutConfig(t *testing.T) {
	home := setupHome(t)

	out, err := execute(t, NewVerifyCmd())
	if err != nil {
		t.Fatalf("verify failed: %v\n%s", err, out)
	}

	for _, want := range []string{"not found, using defaults", "✓ Database", "✓ Search index: in-memory", "✓ Profile store: file backend"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(home, ".city-hub.json")); !os.IsNotExist(err) {
		t.Error("verify without --init wrote a config file")
	}
}

func TestVerifyInitCreatesConfig(t *testing.T) {
	home := setupHome(t)
	path := filepath.Join(home, ".city-hub.json")

	out, err := execute(t, NewVerifyCmd(), "--init")
	if err != nil {
		t.Fatalf("verify --init failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "(created)") {
		t.Errorf("output missing created marker:\n%s", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	// A second run finds the file and leaves it alone.
	out, err = execute(t, NewVerifyCmd(), "--init")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if strings.Contains(out, "(created)") || !strings.Contains(out, "✓ Config file: "+path) {
		t.Errorf("unexpected second run output:\n%s", out)
	}
}

func TestVerifyReportsBrokenConfig(t *testing.T) {
	home := setupHome(t)
	writeFile(t, filepath.Join(home, ".city-hub.json"), `{not json`)

	_, err := execute(t, NewVerifyCmd())
	if err == nil || !strings.Contains(err.Error(), "configuration error") {
		t.Errorf("Execute() error = %v, want configuration error", err)
	}
}

func TestVerifyOnDiskIndex(t *testing.T) {
	home := setupHome(t)
	t.Setenv("CITY_HUB_INDEX_PATH", filepath.Join(home, "index.bleve"))

	out, err := execute(t, NewVerifyCmd())
	if err != nil {
		t.Fatalf("verify failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "(0 documents)") {
		t.Errorf("output missing index document count:\n%s", out)
	}
}
