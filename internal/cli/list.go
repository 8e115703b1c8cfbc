package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/spf13/cobra"
)

// NewListCmd creates the 'list' command for listing catalog items.
func NewListCmd() *cobra.Command {
	var jsonOutput bool
	var category []string
	var status string
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog items",
		Long: `Display catalog items, newest first.

By default only active, unexpired items are shown; --all includes pending,
archived and expired ones.`,
		Example: `  city-hub list
  city-hub ls --category restaurants --category cafes
  city-hub list --status archived --limit 50
  city-hub list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := storage.ItemFilter{CategoryIn: category, Status: status}
			if !all {
				if filter.Status == "" {
					filter.Status = storage.StatusActive
				}
				filter.ActiveAt = time.Now()
			}
			return runList(cmd.OutOrStdout(), filter, limit, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringSliceVarP(&category, "category", "c", nil, "Only these categories (repeatable)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Only items with this status")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum items to show (0 = all)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include inactive and expired items")

	return cmd
}

// runList displays items matching filter.
func runList(out io.Writer, filter storage.ItemFilter, limit int, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	items, err := a.store.FindItems(context.Background(), filter, storage.OrderNewest, limit)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	if jsonOutput {
		if items == nil {
			items = []storage.Item{}
		}
		return writeJSON(out, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, "No items found.")
		fmt.Fprintln(out, "Run 'city-hub seed --demo 100' to generate a demo catalog.")
		return nil
	}

	fmt.Fprintf(out, "Catalog Items (%d):\n\n", len(items))
	printItems(out, items)
	return nil
}
