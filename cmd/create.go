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
	createFile   string
	dryRunCreate bool
)

func init() {
	createCmd.Flags().StringVarP(&createFile, "file", "f", "hierarchy.yaml", "Hierarchy YAML file to load")
	createCmd.Flags().BoolVar(&dryRunCreate, "dry-run", false, "Preview the SQL that would be executed without creating anything")
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create all tables, views and triggers for the hierarchy",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustLoadHierarchy(createFile)
		ctx := context.Background()

		if dryRunCreate {
			d, err := resolveDialect()
			if err != nil {
				fmt.Println("❌", err)
				os.Exit(1)
			}
			stmts, err := runner.Preview(h, d)
			if err != nil {
				fmt.Println("❌ Dry run failed:", err)
				os.Exit(1)
			}
			for _, s := range stmts {
				fmt.Println(s)
			}
			return
		}

		ex, err := database.Connect(ctx)
		if err != nil {
			fmt.Println("❌ Connecting:", err)
			os.Exit(1)
		}
		defer ex.Close()

		if err := runner.New(ex, newLogger()).Create(ctx, h); err != nil {
			fmt.Println("❌ Schema creation failed:", err)
			os.Exit(1)
		}
		fmt.Println("✅ Schema created")
	},
}
