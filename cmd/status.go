package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/descent-db/descent/database"
	"github.com/descent-db/descent/runner"
)

var statusFile string

func init() {
	statusCmd.Flags().StringVarP(&statusFile, "file", "f", "hierarchy.yaml", "Hierarchy YAML file to load")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the planned schema against the database",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustLoadHierarchy(statusFile)
		ctx := context.Background()

		ex, err := database.Connect(ctx)
		if err != nil {
			fmt.Println("❌ Connecting:", err)
			os.Exit(1)
		}
		defer ex.Close()

		existing, missing, err := runner.New(ex, newLogger()).Status(ctx, h)
		if err != nil {
			fmt.Println("❌ Status error:", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)

		fmt.Println("✅ Existing objects:")
		for _, name := range existing {
			green.Println("   -", name)
		}

		fmt.Println("\n🕒 Missing objects:")
		for _, name := range missing {
			red.Println("   -", name)
		}

		if len(missing) == 0 {
			fmt.Println("\n✅ Schema is fully materialized")
		}
	},
}
