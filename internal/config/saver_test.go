package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.json")

	// Test successful atomic write
	data := []byte(`{"test": "data"}`)
	err := atomicWrite(testPath, data)
	if err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	// Verify temp file was cleaned up
	tmpPath := testPath + ".tmp"
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Error("temp file was not cleaned up")
	}

	// Verify content
	readData, err := os.ReadFile(testPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(readData) != string(data) {
		t.Errorf("content mismatch: got %q, want %q", string(readData), string(data))
	}
}

func TestAtomicWriteCreatesDir(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "subdir", "config.json")

	data := []byte(`{"test": "data"}`)
	err := atomicWrite(testPath, data)
	if err != nil {
		t.Fatalf("atomicWrite failed: %v", err)
	}

	// Verify file was created
	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}
}

func TestBackupConfig(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.json")

	// Create original config
	originalData := []byte(`{"original": true}`)
	if err := os.WriteFile(testPath, originalData, 0644); err != nil {
		t.Fatalf("failed to create original config: %v", err)
	}

	// Create backup
	err := backupConfig(testPath)
	if err != nil {
		t.Fatalf("backupConfig failed: %v", err)
	}

	// Verify backup exists
	bakPath := testPath + ".bak"
	bakData, err := os.ReadFile(bakPath)
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}

	// Verify backup content matches original
	if string(bakData) != string(originalData) {
		t.Errorf("backup content mismatch: got %q, want %q", string(bakData), string(originalData))
	}

	// Verify backup permissions
	info, err := os.Stat(bakPath)
	if err != nil {
		t.Fatalf("failed to stat backup: %v", err)
	}
	if info.Mode().Perm() != 0644 {
		t.Errorf("backup permissions incorrect: got %v, want 0644", info.Mode().Perm())
	}
}

func TestBackupConfigFirstRun(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.json")

	// No original config - should not error
	err := backupConfig(testPath)
	if err != nil {
		t.Fatalf("backupConfig failed on first run: %v", err)
	}

	// Verify no backup was created
	bakPath := testPath + ".bak"
	if _, err := os.Stat(bakPath); !os.IsNotExist(err) {
		t.Error("backup should not exist on first run")
	}
}

func testConfig(dir string) *Config {
	cfg := NewConfig()
	cfg.Storage.DBPath = filepath.Join(dir, "city.db")
	cfg.Storage.ProfileDir = filepath.Join(dir, "profiles")
	return cfg
}

func TestSaveCreatesBackup(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.json")

	cfg := testConfig(tmpDir)
	if err := Save(cfg, testPath); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	cfg.Recommend.TargetCount = 8
	if err := Save(cfg, testPath); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	bakData, err := os.ReadFile(testPath + ".bak")
	if err != nil {
		t.Fatalf("backup not created: %v", err)
	}
	if !strings.Contains(string(bakData), `"targetCount": 10`) {
		t.Errorf("backup should hold the previous config, got:\n%s", bakData)
	}
}

func TestSaveValidatesBeforeWrite(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.json")

	cfg := testConfig(tmpDir)
	cfg.Storage.ProfileBackend = "redis"

	err := Save(cfg, testPath)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigError, got %T", err)
	}

	if _, err := os.Stat(testPath); !os.IsNotExist(err) {
		t.Error("invalid config should not be written")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.json")

	cfg := testConfig(tmpDir)
	cfg.Profile.ArchetypeThreshold = 7
	cfg.Showcase.Categories = []ShowcaseCategory{{Category: "market_pets", Title: "Pets", TypeKey: "species"}}

	if err := Save(cfg, testPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(testPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Profile.ArchetypeThreshold != 7 {
		t.Errorf("archetypeThreshold = %v, want 7", loaded.Profile.ArchetypeThreshold)
	}
	if len(loaded.Showcase.Categories) != 1 || loaded.Showcase.Categories[0].TypeKey != "species" {
		t.Errorf("showcase categories not preserved: %+v", loaded.Showcase.Categories)
	}
}

func TestSaveConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.json")

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cfg := testConfig(tmpDir)
			cfg.Recommend.TargetCount = n + 1
			cfg.Recommend.SpecializedLimit = 15
			// Save is not safe for concurrent callers on the same path.
			mu.Lock()
			defer mu.Unlock()
			if err := Save(cfg, testPath); err != nil {
				t.Errorf("concurrent save failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if _, err := LoadFrom(testPath); err != nil {
		t.Errorf("final config unreadable: %v", err)
	}
}
