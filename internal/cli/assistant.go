package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/khanglvm/city-hub/internal/assistant"
	"github.com/khanglvm/city-hub/internal/profile"
	"github.com/khanglvm/city-hub/internal/tags"
	"github.com/spf13/cobra"
)

// NewAssistantCmd creates the 'assistant' command.
func NewAssistantCmd() *cobra.Command {
	var paths []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "assistant",
		Short: "Evaluate assistant suggestions",
		Long: `Evaluate the assistant rules against the local interest profile.

Rules, first match wins:
  1. resume    - an unfinished news item links back to it
  2. interest  - a top interest at or above assistant.interestThreshold
                 links to its browse view
  3. greeting  - any place views or interests link to the newest places

With --path the given routes are replayed as navigation events: each one
is saved as the last location and re-evaluates the bubble.`,
		Example: `  city-hub assistant
  city-hub assistant --path /places?category=cafes --path /news/n7
  city-hub assistant --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssistant(cmd.OutOrStdout(), paths, jsonOutput)
		},
	}

	cmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "Replay a navigation to this route (repeatable)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// assistantOutput is the --json document.
type assistantOutput struct {
	State   assistant.State    `json:"state"`
	Message *assistant.Message `json:"message,omitempty"`
}

func runAssistant(out io.Writer, paths []string, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	presenter, err := a.presenter()
	if err != nil {
		return err
	}

	ctx := context.Background()
	result := assistantOutput{State: assistant.StateDormant}

	if len(paths) == 0 {
		if msg, ok := presenter.Evaluate(ctx); ok {
			result.State = assistant.StateVisible
			result.Message = &msg
		}
	} else {
		tracker, err := a.interestTracker("")
		if err != nil {
			return err
		}

		bus := assistant.NewNavigationBus()
		bus.Subscribe(func(ev assistant.NavigationEvent) {
			tracker.SaveState(ctx, profile.NavigationState{
				Path:      ev.Path,
				Category:  ev.Category,
				Timestamp: ev.At,
			})
		})
		unsubscribe := presenter.Attach(bus)
		defer unsubscribe()

		for _, p := range paths {
			bus.Publish(assistant.NavigationEvent{Path: p, Category: tags.FromLink(p)})
		}

		result.State = presenter.State()
		if msg, ok := presenter.Current(); ok {
			result.Message = &msg
		}
	}

	if jsonOutput {
		return writeJSON(out, result)
	}

	if result.Message == nil {
		fmt.Fprintln(out, "Assistant: dormant (nothing to suggest yet)")
		return nil
	}

	fmt.Fprintf(out, "Assistant: %s\n\n", result.State)
	fmt.Fprintf(out, "  💬 %s\n", result.Message.Text)
	fmt.Fprintf(out, "  → %s\n", result.Message.Link)
	return nil
}
