package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/descent-db/descent/database"
	"github.com/descent-db/descent/runner"
)

var (
	dropFile     string
	destroyForce bool
)

func init() {
	dropCmd.Flags().StringVarP(&dropFile, "file", "f", "hierarchy.yaml", "Hierarchy YAML file to load")
	destroyCmd.Flags().BoolVar(&destroyForce, "force", false, "Confirm that the database may be destroyed")
}

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the planned tables, views and triggers",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustLoadHierarchy(dropFile)
		ctx := context.Background()

		ex, err := database.Connect(ctx)
		if err != nil {
			fmt.Println("❌ Connecting:", err)
			os.Exit(1)
		}
		defer ex.Close()

		if err := runner.New(ex, newLogger()).Drop(ctx, h); err != nil {
			fmt.Println("❌ Drop failed:", err)
			os.Exit(1)
		}
		fmt.Println("✅ Schema dropped")
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Drop everything in the database: tables, views, sequences, triggers",
	Run: func(cmd *cobra.Command, args []string) {
		if !destroyForce {
			fmt.Println("❌ Refusing to destroy without --force")
			os.Exit(1)
		}
		ctx := context.Background()

		ex, err := database.Connect(ctx)
		if err != nil {
			fmt.Println("❌ Connecting:", err)
			os.Exit(1)
		}
		defer ex.Close()

		if err := runner.New(ex, newLogger()).Destroy(ctx, destroyForce); err != nil {
			fmt.Println("❌ Destroy failed:", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database destroyed")
	},
}
