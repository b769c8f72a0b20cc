package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

type globalFlags struct {
	configPath string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "escape-server",
		Short:         "Escape room game server",
		Long:          "escape-server runs the five-room escape game over WebSocket and manages its saved scoreboard, settings and progress.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "escape.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path (overrides the config)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log storage activity to stderr")

	rootCmd.AddCommand(
		newServeCmd(flags),
		newScoresCmd(flags),
		newSettingsCmd(flags),
		newProgressCmd(flags),
	)
	return rootCmd
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✖ "+err.Error())
		os.Exit(1)
	}
}
