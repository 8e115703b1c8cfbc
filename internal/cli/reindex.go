package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

// NewReindexCmd creates the 'reindex' command.
func NewReindexCmd() *cobra.Command {
	var indexPath string

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the on-disk search index",
		Long: `Delete and rebuild the bleve index at storage.indexPath from the
catalog database.

A lock file (<index>.lock) keeps two rebuilds from running at once. With
no index path configured the index is in-memory and rebuilt on every
start, so there is nothing to do.`,
		Example: `  city-hub reindex
  city-hub reindex --index ~/.city-hub/index.bleve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReindex(cmd.OutOrStdout(), indexPath)
		},
	}

	cmd.Flags().StringVar(&indexPath, "index", "", "Index path (default: storage.indexPath)")

	return cmd
}

// runReindex rebuilds the index under an exclusive file lock.
func runReindex(out io.Writer, indexPath string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if indexPath != "" {
		a.cfg.Storage.IndexPath = indexPath
	}
	if a.cfg.Storage.IndexPath == "" {
		fmt.Fprintln(out, "Search index is in-memory (storage.indexPath is empty); nothing to rebuild.")
		return nil
	}
	path := a.cfg.Storage.IndexPath

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	lockFile, err := acquireFileLock(path)
	if err != nil {
		return err
	}
	defer releaseFileLock(lockFile)

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove old index: %w", err)
	}

	// catalog fills a fresh, empty index from storage.
	cat, err := a.catalog(context.Background())
	if err != nil {
		return err
	}

	count, err := cat.Index().Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Rebuilt %s (%d items)\n", path, count)
	return nil
}

// acquireFileLock creates and locks a file to prevent concurrent rebuilds.
func acquireFileLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire exclusive lock (non-blocking)
	err = unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock (another reindex in progress?): %w", err)
	}

	return lockFile, nil
}

// releaseFileLock releases the file lock and removes the lock file.
func releaseFileLock(lockFile *os.File) error {
	if lockFile == nil {
		return nil
	}

	lockPath := lockFile.Name()

	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	lockFile.Close()

	return os.Remove(lockPath)
}
