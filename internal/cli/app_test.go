package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/spf13/cobra"
)

// setupHome points HOME at a temp dir so the default config, database and
// profile directory are isolated per test.
func setupHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CITY_HUB_LOG_LEVEL", "disabled")
	t.Setenv("CITY_HUB_SEED", "42")
	configPath = ""
	return home
}

// execute runs cmd with args and returns the combined output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	cmd.SetArgs(args)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(new(bytes.Buffer))

	err := cmd.Execute()
	return buf.String(), err
}

// seedFile writes items to a JSON file and loads it with the seed command.
func seedFile(t *testing.T, items []storage.Item) {
	t.Helper()

	data, err := json.Marshal(items)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "items.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if out, err := execute(t, NewSeedCmd(), path); err != nil {
		t.Fatalf("seed failed: %v\n%s", err, out)
	}
}

func decodeJSON(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	home := setupHome(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	want := filepath.Join(home, ".city-hub", "city.db")
	if cfg.Storage.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.Storage.DBPath, want)
	}
	if cfg.Recommend.Seed != 42 {
		t.Errorf("Seed = %d, want 42 from the environment", cfg.Recommend.Seed)
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	setupHome(t)

	path := filepath.Join(t.TempDir(), "custom.json")
	if err := os.WriteFile(path, []byte(`{"recommend": {"targetCount": 4, "specializedLimit": 6}}`), 0644); err != nil {
		t.Fatal(err)
	}
	configPath = path
	t.Cleanup(func() { configPath = "" })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Recommend.TargetCount != 4 {
		t.Errorf("TargetCount = %d, want 4", cfg.Recommend.TargetCount)
	}
	if cfg.Showcase.TargetSections != 5 {
		t.Errorf("TargetSections = %d, want default 5", cfg.Showcase.TargetSections)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	setupHome(t)

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"storage": {"profileBackend": "redis"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	configPath = path
	t.Cleanup(func() { configPath = "" })

	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() accepted an unknown profile backend")
	}
}

func TestAppCloseIsSafeWithoutOptionalComponents(t *testing.T) {
	setupHome(t)

	a, err := openApp()
	if err != nil {
		t.Fatalf("openApp() error = %v", err)
	}
	a.Close()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
