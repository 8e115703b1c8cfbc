package cli

import (
	"github.com/khanglvm/city-hub/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the city-hub root command with every subcommand
// attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "city-hub",
		Short: "Interest scoring and recommendations for a city guide",
		Long: `city-hub learns what a visitor cares about and turns it into
recommendations, marketplace showcases and assistant suggestions.

Server side it scores recent user events (views, contacts, favorites,
searches) into a per-request recommendation context. Client side it keeps
a decaying interest profile that drives the assistant bubble.

Surfaces:
  • HTTP API    - /api/recommendations, /api/showcase, /api/search, /api/events
  • MCP (stdio) - city_recommend, city_showcase, city_search, city_track, city_suggest
  • CLI         - everything below`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.city-hub.json)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewSeedCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewRecommendCmd())
	rootCmd.AddCommand(NewShowcaseCmd())
	rootCmd.AddCommand(NewEventsCmd())
	rootCmd.AddCommand(NewProfileCmd())
	rootCmd.AddCommand(NewAssistantCmd())
	rootCmd.AddCommand(NewCleanupCmd())
	rootCmd.AddCommand(NewReindexCmd())
	rootCmd.AddCommand(NewBenchCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
