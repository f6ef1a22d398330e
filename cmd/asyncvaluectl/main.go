// Command asyncvaluectl inspects snapshots persisted by asyncvalue stores.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var backend backendOptions

	rootCmd := &cobra.Command{
		Use:   "asyncvaluectl",
		Short: "Inspect persisted asyncvalue snapshots",
		Long: `asyncvaluectl lists, shows and deletes the snapshots that
asyncvalue persistors write to a snapshot store.

Choose exactly one backend:

  --sqlite <path>     SQLite database file
  --postgres <dsn>    PostgreSQL connection string
  --redis <addr>      Redis host:port (with --redis-prefix)
  --mongo <uri>       MongoDB connection URI (with --mongo-db, --mongo-coll)
  --s3-bucket <name>  S3 bucket (with --s3-prefix, --s3-region, --s3-endpoint)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	backend.register(rootCmd)

	rootCmd.AddCommand(
		listCmd(&backend),
		showCmd(&backend),
		deleteCmd(&backend),
		versionCmd(),
	)
	return rootCmd
}
