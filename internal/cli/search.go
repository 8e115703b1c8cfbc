package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the 'search' command for full-text catalog search.
func NewSearchCmd() *cobra.Command {
	var jsonOutput bool
	var userID string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over the catalog",
		Long: `Search active catalog items by title and description (BM25).

With --user the query is recorded as a search event, so later
recommendations for that user take it into account.`,
		Example: `  city-hub search "pho noodles"
  city-hub search apartment --user alice --limit 5
  city-hub search museum --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.OutOrStdout(), strings.Join(args, " "), userID, limit, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Record the search for this user")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results")

	return cmd
}

// runSearch queries the catalog index.
func runSearch(out io.Writer, text, userID string, limit int, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	cat, err := a.catalog(ctx)
	if err != nil {
		return err
	}

	items, err := cat.Search(ctx, userID, text, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		if items == nil {
			items = []storage.Item{}
		}
		return writeJSON(out, items)
	}

	if len(items) == 0 {
		fmt.Fprintf(out, "No results for %q.\n", text)
		return nil
	}

	fmt.Fprintf(out, "Results for %q (%d):\n\n", text, len(items))
	printItems(out, items)
	return nil
}
