package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/khanglvm/city-hub/internal/api"
	"github.com/khanglvm/city-hub/internal/logging"
	"github.com/khanglvm/city-hub/internal/mcp"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/spf13/cobra"
)

// retentionInterval is how often the server purges expired events.
const retentionInterval = 24 * time.Hour

// NewServeCmd creates the 'serve' command for running the HTTP API or the
// MCP server.
func NewServeCmd() *cobra.Command {
	var addr string
	var stdio bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (or the MCP server with --stdio)",
		Long: `Start the city-hub HTTP API, or with --stdio the MCP server.

HTTP routes:
  • GET  /api/recommendations?user_id=ID  - personalised item list
  • GET  /api/showcase                    - marketplace sections
  • GET  /api/search?q=TEXT&user_id=ID    - full-text catalog search
  • POST /api/events                      - record a user event
  • GET  /healthz                         - storage status
  • GET  /metrics                         - Prometheus metrics (server.metricsEnabled)

MCP tools (stdio transport):
  • city_recommend, city_showcase, city_search, city_track, city_suggest

Events older than server.retentionDays are purged at startup and daily.`,
		Example: `  # Run the HTTP API on the configured address
  city-hub serve

  # Override the listen address
  city-hub serve --addr 127.0.0.1:9090

  # Run as an MCP server
  city-hub serve --stdio`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, stdio)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default: server.httpAddr)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "Serve MCP over stdin/stdout instead of HTTP")

	return cmd
}

// runServe wires every component and serves until a signal arrives.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(addr string, stdio bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if addr == "" {
		addr = a.cfg.Server.HTTPAddr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := a.catalog(ctx)
	if err != nil {
		return err
	}
	composer := a.composer()
	showcase := a.showcase()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runRetention(ctx, a.store, a.cfg.Server.Retention())
	}()
	// Storage must outlive the retention loop.
	defer func() {
		cancel()
		wg.Wait()
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	if stdio {
		presenter, err := a.presenter()
		if err != nil {
			return err
		}
		server := mcp.NewServer(mcp.Deps{
			Recommender: composer,
			Showcase:    showcase,
			Search:      catalog,
			Tracker:     a.tracker,
			Assistant:   presenter,
		})
		go func() {
			errChan <- server.Run(ctx)
		}()
	} else {
		server := api.NewServer(api.Deps{
			Recommender:    composer,
			Showcase:       showcase,
			Search:         catalog,
			Tracker:        a.tracker,
			Stats:          a.store,
			MetricsEnabled: a.cfg.Server.MetricsEnabled,
		})
		go func() {
			errChan <- server.ListenAndServe(ctx, addr)
		}()
	}

	// Wait for either signal or server error
	select {
	case sig := <-sigChan:
		logging.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
		cancel()
		// A stdio read cannot be interrupted; the process exit releases it.
		if stdio {
			return nil
		}
		if err := <-errChan; err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		logging.Info().Msg("shutdown complete")
		return nil

	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// runRetention purges events older than retention now and then every
// retentionInterval until ctx is done.
func runRetention(ctx context.Context, store storage.Storage, retention time.Duration) {
	purge := func() {
		n, err := store.Cleanup(retention)
		if err != nil {
			logging.Warn().Err(err).Msg("event retention cleanup failed")
			return
		}
		if n > 0 {
			logging.Info().Int64("deleted", n).Msg("expired events purged")
		}
	}

	purge()

	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}
