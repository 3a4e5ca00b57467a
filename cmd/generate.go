package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/descent-db/descent/database"
	"github.com/descent-db/descent/generator"
	"github.com/descent-db/descent/planner"
	"github.com/descent-db/descent/utils"
)

var (
	hierarchyFile   string
	generateDialect string
	generateDrop    bool
	generateOut     string
)

func init() {
	generateCmd.Flags().StringVarP(&hierarchyFile, "file", "f", "hierarchy.yaml", "Hierarchy YAML file to load")
	generateCmd.Flags().StringVarP(&generateDialect, "dialect", "d", "", "Target dialect: postgres or sqlite (default: inferred from DATABASE_URL)")
	generateCmd.Flags().BoolVar(&generateDrop, "drop", false, "Emit the destruction script instead of the creation script")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Write the script to a file instead of stdout")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the DDL script for the declared hierarchy",
	Run: func(cmd *cobra.Command, args []string) {
		h := mustLoadHierarchy(hierarchyFile)

		d, err := resolveDialect()
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		p, err := planner.Plan(h)
		if err != nil {
			fmt.Println("❌ Planning schema:", err)
			os.Exit(1)
		}

		var stmts []string
		if generateDrop {
			stmts, err = generator.DropScript(p, d)
		} else {
			stmts, err = generator.CreateScript(p, d)
		}
		if err != nil {
			fmt.Println("❌ Generating DDL:", err)
			os.Exit(1)
		}

		script := strings.Join(stmts, "\n")
		if generateOut != "" {
			if err := os.WriteFile(generateOut, []byte(script+"\n"), 0644); err != nil {
				fmt.Println("❌ Writing script:", err)
				os.Exit(1)
			}
			fmt.Println("✅ Script written:", generateOut)
			return
		}
		fmt.Println(script)
	},
}

func resolveDialect() (generator.Dialect, error) {
	if generateDialect != "" {
		return generator.ParseDialect(generateDialect)
	}
	utils.LoadEnv()
	if url, err := utils.DatabaseURL(); err == nil {
		return database.DialectFromURL(url), nil
	}
	return generator.Postgres, nil
}
