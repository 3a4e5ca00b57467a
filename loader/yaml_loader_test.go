package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/hierarchy"
)

func writeHierarchy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hierarchy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadHierarchyFromYAML(t *testing.T) {
	h, err := LoadHierarchyFromYAML(writeHierarchy(t, `
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
`))
	require.NoError(t, err)
	assert.True(t, h.Closed())
	assert.Equal(t, 2, h.Len())

	admin, ok := h.Lookup("AdminUser")
	require.True(t, ok)
	cfg := h.Node(admin).Config
	assert.Equal(t, hierarchy.JoinedTable, cfg.Inheritance)
	assert.Equal(t, "admin_user", cfg.TypeName)

	user, ok := h.Lookup("User")
	require.True(t, ok)
	fields := h.Node(user).Fields
	require.Len(t, fields, 1)
	assert.False(t, fields[0].Nullable)
	level := h.Node(admin).Fields[0]
	assert.True(t, level.Nullable)
}

func TestLoadResolvesForwardParents(t *testing.T) {
	// A subclass declared before its parent still registers.
	h, err := LoadHierarchyFromYAML(writeHierarchy(t, `
classes:
  - name: SuperUser
    parent: AdminUser
  - name: AdminUser
    parent: User
  - name: User
`))
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	super, ok := h.Lookup("SuperUser")
	require.True(t, ok)
	admin, _ := h.Lookup("AdminUser")
	user, _ := h.Lookup("User")
	assert.Equal(t, []int{admin, user}, h.Ancestors(super))
}

func TestLoadStrategyAndTypeColumn(t *testing.T) {
	h, err := LoadHierarchyFromYAML(writeHierarchy(t, `
classes:
  - name: Event
    inheritance: single-table
    type_column: _kind
    type_name: base_event
  - name: LoginEvent
    parent: Event
    fields:
      - name: ip
        type: text
`))
	require.NoError(t, err)

	event, ok := h.Lookup("Event")
	require.True(t, ok)
	cfg := h.Node(event).Config
	assert.Equal(t, hierarchy.SingleTable, cfg.Inheritance)
	assert.Equal(t, "_kind", cfg.TypeColumn)
	assert.Equal(t, "base_event", cfg.TypeName)

	login, _ := h.Lookup("LoginEvent")
	assert.Equal(t, hierarchy.SingleTable, h.Node(login).Config.Inheritance)
}

func TestLoadReferencesAndDefaults(t *testing.T) {
	h, err := LoadHierarchyFromYAML(writeHierarchy(t, `
classes:
  - name: User
    inheritance: none
  - name: AuditEntry
    inheritance: none
    fields:
      - name: actor
        references: User
        not_null: true
      - name: note
        type: text
        default: "''"
`))
	require.NoError(t, err)

	audit, ok := h.Lookup("AuditEntry")
	require.True(t, ok)
	fields := h.Node(audit).Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "User", fields[0].References)
	assert.False(t, fields[0].Nullable)
	require.NotNil(t, fields[1].Default)
	assert.Equal(t, "''", *fields[1].Default)
}

func TestLoadUndeclaredParent(t *testing.T) {
	_, err := LoadHierarchyFromYAML(writeHierarchy(t, `
classes:
  - name: AdminUser
    parent: User
`))
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
	assert.Contains(t, err.Error(), "undeclared parent")
}

func TestLoadBadStrategy(t *testing.T) {
	_, err := LoadHierarchyFromYAML(writeHierarchy(t, `
classes:
  - name: User
    inheritance: multi-table
`))
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := LoadHierarchyFromYAML(writeHierarchy(t, "classes: []\n"))
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadHierarchyFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
