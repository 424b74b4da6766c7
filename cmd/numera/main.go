package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "numera",
	Short: "Numerology readings, compatibility and personal cycles",
	Long: `numera computes numerology readings from a full name and birth date.

Readings, compatibility, cycles and interpretations run locally. The
serve command starts the HTTP API and MCP server; readings, profiles and
stats talk to a running server.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if os.Getenv("NO_COLOR") != "" {
			noColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(readingCmd)
	rootCmd.AddCommand(compatCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(interpretCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(readingsCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		printWarning("could not load .env: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
