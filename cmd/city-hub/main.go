/*
Package main is the entry point for the city-hub CLI.

city-hub scores visitor interest and composes recommendations, marketplace
showcases and assistant suggestions for a city guide.

Usage:
  city-hub [command]

Available Commands:
  serve       Run the HTTP API (or the MCP server with --stdio)
  seed        Load catalog items from a file or generate demo data
  list        List catalog items
  search      Full-text search over the catalog
  recommend   Compose recommendations for a user
  showcase    Compose marketplace showcase sections
  events      Append or inspect user events
  profile     Inspect and update the local interest profile
  assistant   Evaluate assistant suggestions
  cleanup     Delete events past the retention period
  reindex     Rebuild the on-disk search index
  bench       Measure composer latency
  verify      Verify configuration and storage
  version     Show version information

Examples:
  # Generate a demo catalog and ask for recommendations
  city-hub seed --demo 200
  city-hub recommend --user alice --explain

  # Run the HTTP API
  city-hub serve --addr :8080
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/city-hub/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
