package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/khanglvm/city-hub/internal/benchmark"
	"github.com/spf13/cobra"
)

// NewBenchCmd creates the 'bench' command for composer latency testing.
func NewBenchCmd() *cobra.Command {
	var runs int
	var users []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure composer latency",
		Long: `Run the recommendation and showcase composers repeatedly against the
configured catalog and report latency percentiles.

Scenarios:
  recommend (anonymous)  - fallback path, newest items only
  recommend (N users)    - personalised path, cycling through --user values
  showcase               - full section composition`,
		Example: `  # Benchmark with 50 runs per scenario
  city-hub bench --runs 50

  # Include personalised recommendations
  city-hub bench --user alice --user bob

  # Output as JSON
  city-hub bench --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.OutOrStdout(), runs, users, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&runs, "runs", "r", 20, "Runs per scenario")
	cmd.Flags().StringSliceVarP(&users, "user", "u", nil, "Users for the personalised scenario (repeatable)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runBench executes the composer benchmark.
func runBench(out io.Writer, runs int, users []string, jsonOutput bool) error {
	if runs <= 0 {
		return fmt.Errorf("--runs must be positive")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results := benchmark.RunComposers(context.Background(), a.composer(), a.showcase(), users, runs)

	if jsonOutput {
		return writeJSON(out, results)
	}

	fmt.Fprint(out, benchmark.FormatResult(results))
	return nil
}
