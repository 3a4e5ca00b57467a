package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/descent-db/descent/hierarchy"
	"github.com/descent-db/descent/loader"
	"github.com/descent-db/descent/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "descent",
	Short: "Inheritance-aware schema synthesizer for PostgreSQL and SQLite",
	Long: `descent derives tables, views, foreign keys and type discriminators
from a declared class hierarchy and materializes them in the database.

Examples:

  descent init
  descent generate
  descent create
  descent load -f fixtures.yaml
`,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every executed statement")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(loadCmd)
}

func mustLoadHierarchy(file string) *hierarchy.Hierarchy {
	h, err := loader.LoadHierarchyFromYAML(file)
	if err != nil {
		fmt.Println("❌ Loading hierarchy:", err)
		os.Exit(1)
	}
	return h
}

func newLogger() *logger.Logger {
	cfg := logger.DefaultConfig()
	if verbose {
		cfg.Level = "debug"
	}
	return logger.New(cfg)
}
