package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewCleanupCmd creates the 'cleanup' command.
func NewCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete events past the retention period",
		Long: `Delete user events older than the retention period
(server.retentionDays by default). The running server does this daily.`,
		Example: `  city-hub cleanup
  city-hub cleanup --retention-days 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			retention := a.cfg.Server.Retention()
			if days > 0 {
				retention = time.Duration(days) * 24 * time.Hour
			}

			n, err := a.store.Cleanup(retention)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d events older than %d days\n", n, int(retention.Hours()/24))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "retention-days", 0, "Retention in days (default: server.retentionDays)")

	return cmd
}
