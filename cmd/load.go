package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/descent-db/descent/database"
	"github.com/descent-db/descent/dataload"
)

var (
	loadHierarchyFile string
	loadDataFile      string
)

func init() {
	loadCmd.Flags().StringVarP(&loadHierarchyFile, "hierarchy", "H", "hierarchy.yaml", "Hierarchy YAML file to load")
	loadCmd.Flags().StringVarP(&loadDataFile, "file", "f", "fixtures.yaml", "Fixture YAML file to load")
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Insert fixture records from a YAML file",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustLoadHierarchy(loadHierarchyFile)
		ctx := context.Background()

		ex, err := database.Connect(ctx)
		if err != nil {
			fmt.Println("❌ Connecting:", err)
			os.Exit(1)
		}
		defer ex.Close()

		ids, err := dataload.Load(ctx, ex, h, loadDataFile)
		if err != nil {
			fmt.Println("❌ Loading fixtures:", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Loaded %d records\n", len(ids))
	},
}
