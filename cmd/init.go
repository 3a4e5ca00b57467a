package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example hierarchy.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat("hierarchy.yaml"); err == nil {
			fmt.Println("❌ hierarchy.yaml already exists!")
			return
		}

		content := `# Entity class hierarchy.
#
# Every class becomes a table "_class_name" and a view "class_name".
# Subclasses inherit the root's storage strategy; the default is
# joined-table (one table per class, linked on id).
classes:
  - name: User
    fields:
      - name: username
        type: text
        not_null: true

  - name: AdminUser
    parent: User
    fields:
      - name: level
        type: integer

  # single-table: the whole tree shares the root's table, subclass
  # columns must stay nullable.
  - name: Event
    inheritance: single-table
    fields:
      - name: occurred_at
        type: timestamp
        not_null: true

  - name: LoginEvent
    parent: Event
    fields:
      - name: ip_address
        type: text

  # none: a plain table, subclassing is forbidden.
  - name: AuditEntry
    inheritance: none
    fields:
      - name: message
        type: text
        not_null: true
      - name: actor
        references: User
`
		if err := os.WriteFile("hierarchy.yaml", []byte(content), 0644); err != nil {
			fmt.Println("❌ Error creating hierarchy.yaml:", err)
			return
		}
		fmt.Println("✅ Created hierarchy.yaml example file.")
		fmt.Println("📝 Edit hierarchy.yaml to declare your classes")
		fmt.Println("🚀 Run 'descent create' to materialize the schema")
	},
}
