package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/khanglvm/city-hub/internal/config"
	"github.com/khanglvm/city-hub/internal/localstore"
	"github.com/khanglvm/city-hub/internal/search"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the 'verify' command for verifying configuration.
func NewVerifyCmd() *cobra.Command {
	var initConfig bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration and storage",
		Long: `Verify that the configuration is valid and that the catalog
database, search index and profile backend can be opened.

With --init a default configuration is written first when none exists.`,
		Example: `  city-hub verify
  city-hub verify --init`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.OutOrStdout(), initConfig)
		},
	}

	cmd.Flags().BoolVar(&initConfig, "init", false, "Write a default config file if none exists")

	return cmd
}

// runVerify validates the configuration and probes each store.
func runVerify(out io.Writer, initConfig bool) error {
	path := configPath
	if path == "" {
		p, err := config.GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	_, err := config.LoadFrom(path)
	switch {
	case err == nil:
		fmt.Fprintf(out, "✓ Config file: %s\n", path)
	case config.IsNotFound(err) && initConfig:
		if err := config.Save(config.NewConfig(), path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(out, "✓ Config file: %s (created)\n", path)
	case config.IsNotFound(err):
		fmt.Fprintf(out, "• Config file: %s not found, using defaults\n", path)
	default:
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	failed := 0
	check := func(name string, detail string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "✓ %s: %s\n", name, detail)
	}

	store := storage.NewStorage(cfg.Storage.DBPath)
	if err := store.Init(); err != nil {
		check("Database", "", err)
	} else {
		stats, err := store.Stats(context.Background())
		check("Database", fmt.Sprintf("%s (%d items, %d active, %d events, %d users)",
			cfg.Storage.DBPath, stats.Items, stats.ActiveItems, stats.Events, stats.Users), err)
	}
	store.Close()

	if cfg.Storage.IndexPath == "" {
		check("Search index", "in-memory, rebuilt on start", nil)
	} else {
		index, err := search.NewIndexerWithPath(cfg.Storage.IndexPath)
		if err != nil {
			check("Search index", "", err)
		} else {
			count, err := index.Count()
			check("Search index", fmt.Sprintf("%s (%d documents)", cfg.Storage.IndexPath, count), err)
			index.Close()
		}
	}

	backend, err := localstore.Open(cfg.Storage.ProfileBackend, cfg.Storage.ProfileDir)
	if err != nil {
		check("Profile store", "", err)
	} else {
		_, err := backend.Read(cfg.Storage.ProfileKey)
		check("Profile store", fmt.Sprintf("%s backend, key %q", cfg.Storage.ProfileBackend, cfg.Storage.ProfileKey), err)
		backend.Close()
	}

	fmt.Fprintf(out, "✓ Showcase categories: %d\n", len(cfg.Showcase.Categories))

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
