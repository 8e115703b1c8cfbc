package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/khanglvm/city-hub/internal/recommend"
	"github.com/spf13/cobra"
)

// NewShowcaseCmd creates the 'showcase' command.
func NewShowcaseCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "showcase",
		Short: "Compose marketplace showcase sections",
		Long: `Compose the marketplace showcase: up to showcase.targetSections
sections drawn from randomly ordered showcase.categories. A category with
a typeKey is narrowed to one randomly chosen sub-type (e.g. vehicle_type =
motorbike). Empty categories are skipped.`,
		Example: `  city-hub showcase
  city-hub showcase --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowcase(cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runShowcase composes and prints showcase sections.
func runShowcase(out io.Writer, jsonOutput bool) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sections := a.showcase().Compose(context.Background())

	if jsonOutput {
		if sections == nil {
			sections = []recommend.Section{}
		}
		return writeJSON(out, sections)
	}

	if len(sections) == 0 {
		fmt.Fprintln(out, "No showcase sections: the marketplace has no active listings.")
		return nil
	}

	for _, s := range sections {
		fmt.Fprintf(out, "┌─ %s (%d)\n", s.Title, len(s.Items))
		for _, it := range s.Items {
			fmt.Fprintf(out, "│  • %s\n", it.Title)
		}
		fmt.Fprintln(out, "└─")
	}
	return nil
}
