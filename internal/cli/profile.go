package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/khanglvm/city-hub/internal/profile"
	"github.com/khanglvm/city-hub/internal/tags"
	"github.com/spf13/cobra"
)

// NewProfileCmd creates the profile command group.
func NewProfileCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and update the local interest profile",
		Long: `The interest profile lives in the client-local store
(storage.profileBackend) under storage.profileKey. Scores decay by
profile.decayRate per whole day since the last decay and tags below
profile.evictBelow are dropped.

With --user, tracked actions are mirrored into the server event log.

Commands:
  status    Show ranked interests, archetypes and unfinished content
  track     Add interest in a tag
  view      Record a place view
  progress  Record reading progress for a news item
  visit     Count a site visit
  export    Write the profile as JSON
  clear     Delete the profile`,
	}

	cmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "Mirror tracked actions to this user's event log")

	cmd.AddCommand(newProfileStatusCmd())
	cmd.AddCommand(newProfileTrackCmd(&userID))
	cmd.AddCommand(newProfileViewCmd(&userID))
	cmd.AddCommand(newProfileProgressCmd())
	cmd.AddCommand(newProfileVisitCmd())
	cmd.AddCommand(newProfileExportCmd())
	cmd.AddCommand(newProfileClearCmd())

	return cmd
}

// withProfileTracker opens the app and runs fn with an interest tracker.
func withProfileTracker(userID string, fn func(ctx context.Context, t *profile.Tracker) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tracker, err := a.interestTracker(userID)
	if err != nil {
		return err
	}
	return fn(context.Background(), tracker)
}

// newProfileStatusCmd shows the decayed profile.
func newProfileStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ranked interests, archetypes and unfinished content",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withProfileTracker("", func(ctx context.Context, t *profile.Tracker) error {
				p := t.Profile(ctx)

				fmt.Fprintln(out, "Interest Profile")
				fmt.Fprintln(out, "================")
				fmt.Fprintf(out, "Visits:        %d\n", p.VisitCount)
				fmt.Fprintf(out, "Viewed places: %d\n", len(p.ViewedPlaceIDs))
				if len(p.Archetypes) > 0 {
					fmt.Fprintf(out, "Archetypes:    %v\n", p.Archetypes)
				}
				if p.LastState != nil {
					fmt.Fprintf(out, "Last location: %s\n", p.LastState.Path)
				}
				fmt.Fprintln(out)

				ranked := p.RankedInterests()
				if len(ranked) == 0 {
					fmt.Fprintln(out, "No interests yet.")
				} else {
					fmt.Fprintln(out, "Interests:")
					for _, tag := range ranked {
						rec := p.Interests[tag]
						fmt.Fprintf(out, "  %-22s %6.2f  (%d hits)\n", tags.Label(tag), rec.Score, rec.Hits)
					}
				}

				if id, c, ok := p.LatestUnfinished(); ok {
					fmt.Fprintln(out)
					fmt.Fprintf(out, "Continue reading: %s (%s, %.0f%%)\n", c.Title, id, c.Progress*100)
				}
				return nil
			})
		},
	}
}

// newProfileTrackCmd adds interest in a tag.
func newProfileTrackCmd(userID *string) *cobra.Command {
	var weight float64

	cmd := &cobra.Command{
		Use:     "track <tag>",
		Short:   "Add interest in a tag",
		Example: `  city-hub profile track restaurants --weight 3`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfileTracker(*userID, func(ctx context.Context, t *profile.Tracker) error {
				t.TrackInterest(ctx, args[0], weight)
				_, score, _ := t.Store().Load(ctx).TopInterest()
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Tracked interest in %s (top score %.2f)\n", tags.Label(args[0]), score)
				return nil
			})
		},
	}

	cmd.Flags().Float64VarP(&weight, "weight", "w", 1, "Interest weight (non-positive means 1)")
	return cmd
}

// newProfileViewCmd records a place view.
func newProfileViewCmd(userID *string) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "view <place-id>",
		Short:   "Record a place view",
		Example: `  city-hub profile view p42 --category cafes`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfileTracker(*userID, func(ctx context.Context, t *profile.Tracker) error {
				t.TrackPlaceView(ctx, args[0], category)
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded view of %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Category tag of the place")
	return cmd
}

// newProfileProgressCmd records reading progress.
func newProfileProgressCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "progress <content-id> <fraction>",
		Short: "Record reading progress for a news item",
		Long: `Record how far a news item has been read, as a fraction in [0,1].
Progress between 0.1 and 0.9 marks the item unfinished; 0.9 or more marks
it finished.`,
		Example: `  city-hub profile progress n7 0.4 --title "Night market opens"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			progress, err := strconv.ParseFloat(args[1], 64)
			if err != nil || progress < 0 || progress > 1 {
				return fmt.Errorf("progress must be a number between 0 and 1, got %q", args[1])
			}
			return withProfileTracker("", func(ctx context.Context, t *profile.Tracker) error {
				t.TrackContentProgress(ctx, args[0], title, progress)
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Recorded %.0f%% progress on %s\n", progress*100, args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Content title")
	return cmd
}

// newProfileVisitCmd counts a visit.
func newProfileVisitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visit",
		Short: "Count a site visit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfileTracker("", func(ctx context.Context, t *profile.Tracker) error {
				t.TrackVisit(ctx)
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Visit count: %d\n", t.Profile(ctx).VisitCount)
				return nil
			})
		},
	}
}

// newProfileExportCmd writes the profile as JSON.
func newProfileExportCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the profile as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfileTracker("", func(ctx context.Context, t *profile.Tracker) error {
				p := t.Profile(ctx)
				if outputFile == "" {
					return writeJSON(cmd.OutOrStdout(), p)
				}

				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outputFile, err)
				}
				defer f.Close()
				if err := writeJSON(f, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Profile exported to %s\n", outputFile)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// newProfileClearCmd deletes the profile.
func newProfileClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprint(out, "This will delete the interest profile. Continue? (y/N): ")
				var response string
				fmt.Fscanln(cmd.InOrStdin(), &response)

				if response != "y" && response != "Y" {
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			return withProfileTracker("", func(ctx context.Context, t *profile.Tracker) error {
				if err := t.Store().Clear(ctx); err != nil {
					return fmt.Errorf("failed to clear profile: %w", err)
				}
				fmt.Fprintln(out, "Profile cleared successfully")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
