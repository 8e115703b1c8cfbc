package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/khanglvm/city-hub/internal/logging"
)

// Save validates cfg and writes it to path. The previous file, if any, is
// kept as path.bak and the new content replaces it atomically.
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Check configuration values and try again",
			Err:     err,
		}
	}

	if err := ensureWritable(path); err != nil {
		return err
	}

	if err := backupConfig(path); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("config backup failed")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return atomicWrite(path, data)
}

// backupConfig copies path to path.bak. A missing file is not an error.
func backupConfig(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path+".bak", data, 0644)
}

// atomicWrite writes data to a unique sibling temp file, syncs it and
// renames it over path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// ensureWritable reports a PermissionError with a platform-specific fix
// when the config directory or an existing file cannot be written.
func ensureWritable(path string) error {
	dir := filepath.Dir(path)
	denied := func(target, details string) error {
		return &PermissionError{
			Path:    target,
			Op:      "write",
			Fix:     writeFix(target),
			Details: details,
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return denied(dir, "Cannot create config directory")
	}

	probe := filepath.Join(dir, ".probe-"+uuid.NewString()[:8])
	f, err := os.Create(probe)
	if err != nil {
		return denied(dir, "Cannot write to config directory")
	}
	f.Close()
	os.Remove(probe)

	if _, err := os.Stat(path); err == nil {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return denied(path, "Config file is read-only")
		}
		f.Close()
	}
	return nil
}

func writeFix(path string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Right-click %s → Properties → Security → Grant 'Write' permission", path)
	}
	return fmt.Sprintf("Run: chmod u+w %s", path)
}
