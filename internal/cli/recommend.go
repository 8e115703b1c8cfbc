package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/khanglvm/city-hub/internal/learning"
	"github.com/khanglvm/city-hub/internal/storage"
	"github.com/spf13/cobra"
)

// NewRecommendCmd creates the 'recommend' command.
func NewRecommendCmd() *cobra.Command {
	var jsonOutput bool
	var explain bool
	var userID string

	cmd := &cobra.Command{
		Use:     "recommend",
		Aliases: []string{"rec"},
		Short:   "Compose recommendations for a user",
		Long: `Compose the recommendation list the API would return.

Without --user the list is anonymous: the newest active items in random
order. With --user the user's recent events are scored first; --explain
prints that recommendation context (category scores and search terms).`,
		Example: `  city-hub recommend
  city-hub recommend --user alice --explain
  city-hub rec -u alice --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd.OutOrStdout(), userID, explain, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVarP(&explain, "explain", "e", false, "Show the scored recommendation context")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User to personalise for")

	return cmd
}

// recommendOutput is the --json document.
type recommendOutput struct {
	User    string                          `json:"user,omitempty"`
	Context *learning.RecommendationContext `json:"context,omitempty"`
	Items   []storage.Item                  `json:"items"`
}

// runRecommend composes and prints recommendations.
func runRecommend(out io.Writer, userID string, explain, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	composer := a.composer()

	var rc *learning.RecommendationContext
	if explain && userID != "" {
		c, err := composer.Context(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to build recommendation context: %w", err)
		}
		rc = &c
	}

	items := composer.Recommend(ctx, userID)

	if jsonOutput {
		return writeJSON(out, recommendOutput{User: userID, Context: rc, Items: items})
	}

	if rc != nil {
		printContext(out, *rc)
	}

	who := "anonymous"
	if userID != "" {
		who = userID
	}
	if len(items) == 0 {
		fmt.Fprintf(out, "No recommendations for %s.\n", who)
		return nil
	}

	fmt.Fprintf(out, "Recommendations for %s (%d):\n\n", who, len(items))
	printItems(out, items)
	return nil
}

// printContext renders the scored context, highest category first.
func printContext(out io.Writer, rc learning.RecommendationContext) {
	fmt.Fprintln(out, "Recommendation Context")
	fmt.Fprintln(out, "======================")

	if rc.Empty() {
		fmt.Fprintln(out, "No recent activity, falling back to newest items.")
		fmt.Fprintln(out)
		return
	}

	categories := make([]string, 0, len(rc.CategoryScores))
	for c := range rc.CategoryScores {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		si, sj := rc.CategoryScores[categories[i]], rc.CategoryScores[categories[j]]
		if si != sj {
			return si > sj
		}
		return categories[i] < categories[j]
	})

	fmt.Fprintln(out, "Category scores:")
	for _, c := range categories {
		fmt.Fprintf(out, "  %-24s %6.1f\n", c, rc.CategoryScores[c])
	}
	fmt.Fprintf(out, "Top categories:   %s\n", strings.Join(rc.TopCategories, ", "))
	fmt.Fprintf(out, "Top search terms: %s\n", strings.Join(rc.TopSearchTerms, ", "))
	fmt.Fprintln(out)
}
