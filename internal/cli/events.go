package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/spf13/cobra"
)

// NewEventsCmd creates the events command group.
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Append or inspect user events",
		Long: `The event log is the server-side record of user actions that the
recommendation composer scores. Weights come from recommend.eventWeights
(contact and favorite 5, view 2, anything else 1).

Commands:
  append  Record an event for a user
  list    Show a user's recent events`,
	}

	cmd.AddCommand(newEventsAppendCmd())
	cmd.AddCommand(newEventsListCmd())

	return cmd
}

// newEventsAppendCmd records one event.
func newEventsAppendCmd() *cobra.Command {
	var userID, category, entityID, query string

	cmd := &cobra.Command{
		Use:   "append <type>",
		Short: "Record an event for a user",
		Example: `  city-hub events append view --user alice --category restaurants --entity p1
  city-hub events append search --user alice --query "rooftop bar"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventType := strings.ToLower(strings.TrimSpace(args[0]))
			if eventType == learning.EventSearch && strings.TrimSpace(query) == "" {
				return fmt.Errorf("search events need --query")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			payload := learning.Payload{Category: category, EntityID: entityID}
			if query != "" {
				payload.Metadata = map[string]string{learning.MetaQuery: query}
			}
			// Close stops the tracker, which flushes the queue.
			a.tracker.Append(userID, eventType, payload)

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %s event for %s\n", eventType, userID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category of the entity acted on")
	cmd.Flags().StringVarP(&entityID, "entity", "e", "", "Id of the entity acted on")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query (search events)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// newEventsListCmd shows a user's recent events.
func newEventsListCmd() *cobra.Command {
	var userID string
	var days, limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a user's recent events",
		Example: `  city-hub events list --user alice
  city-hub events list --user alice --days 7 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEventsList(cmd.OutOrStdout(), userID, days, limit, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	cmd.Flags().IntVar(&days, "days", 30, "Lookback window in days")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum events")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runEventsList(out io.Writer, userID string, days, limit int, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	events, err := a.store.QueryEvents(context.Background(), storage.EventQuery{
		UserID: userID,
		Since:  time.Now().Add(-time.Duration(days) * 24 * time.Hour),
		Limit:  limit,
	})
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}

	if jsonOutput {
		if events == nil {
			events = []storage.UserEvent{}
		}
		return writeJSON(out, events)
	}

	if len(events) == 0 {
		fmt.Fprintf(out, "No events for %s in the last %d days.\n", userID, days)
		return nil
	}

	fmt.Fprintf(out, "Events for %s (%d, newest first):\n\n", userID, len(events))
	for _, e := range events {
		detail := e.Category
		if q := e.Metadata[learning.MetaQuery]; q != "" {
			detail = fmt.Sprintf("%q", q)
		}
		fmt.Fprintf(out, "  %s  %-9s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.EventType, detail)
	}
	return nil
}
