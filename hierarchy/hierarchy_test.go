package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descent-db/descent/errs"
)

func strategy(s Strategy) *Strategy { return &s }

func mustRegister(t *testing.T, h *Hierarchy, name, parent string, fields []Field, opts *Options) int {
	t.Helper()
	idx, err := h.Register(name, parent, fields, opts)
	require.NoError(t, err)
	return idx
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"":             JoinedTable,
		"joined-table": JoinedTable,
		"single-table": SingleTable,
		"none":         None,
	} {
		got, err := ParseStrategy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseStrategy("multi-table")
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestRootDefaults(t *testing.T) {
	h := New()
	idx := mustRegister(t, h, "User", "", []Field{{Name: "username", Type: "text"}}, nil)

	cfg := h.Node(idx).Config
	assert.Equal(t, JoinedTable, cfg.Inheritance)
	assert.Equal(t, "_type", cfg.TypeColumn)
	assert.Equal(t, "user", cfg.TypeName)
	assert.Equal(t, -1, cfg.Parent)
	assert.Equal(t, idx, cfg.Base)
}

func TestChildInheritsConfig(t *testing.T) {
	h := New()
	root := mustRegister(t, h, "Event", "", nil, &Options{
		Inheritance: strategy(SingleTable),
		TypeColumn:  "_kind",
	})
	child := mustRegister(t, h, "LoginEvent", "Event",
		[]Field{{Name: "ip", Type: "text", Nullable: true}}, nil)

	cfg := h.Node(child).Config
	assert.Equal(t, SingleTable, cfg.Inheritance)
	assert.Equal(t, "_kind", cfg.TypeColumn)
	assert.Equal(t, "login_event", cfg.TypeName)
	assert.Equal(t, root, cfg.Parent)
	assert.Equal(t, root, cfg.Base)
	assert.Equal(t, []int{child}, h.Node(root).Children())
}

func TestExplicitTypeName(t *testing.T) {
	h := New()
	idx := mustRegister(t, h, "User", "", nil, &Options{TypeName: "person"})
	assert.Equal(t, "person", h.Node(idx).Config.TypeName)
}

func TestChildUnderNoneFails(t *testing.T) {
	h := New()
	mustRegister(t, h, "AuditEntry", "", nil, &Options{Inheritance: strategy(None)})

	_, err := h.Register("DetailedAuditEntry", "AuditEntry", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestChildCannotChangeInheritance(t *testing.T) {
	h := New()
	mustRegister(t, h, "User", "", nil, nil)

	_, err := h.Register("AdminUser", "User", nil, &Options{Inheritance: strategy(SingleTable)})
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestChildCannotChangeTypeColumn(t *testing.T) {
	h := New()
	mustRegister(t, h, "User", "", nil, nil)

	_, err := h.Register("AdminUser", "User", nil, &Options{TypeColumn: "_kind"})
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestSingleTableSubclassRejectsNotNull(t *testing.T) {
	h := New()
	mustRegister(t, h, "User", "", nil, &Options{Inheritance: strategy(SingleTable)})

	_, err := h.Register("AdminUser", "User",
		[]Field{{Name: "level", Type: "integer"}}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))

	// The same column is fine when nullable.
	_, err = h.Register("AdminUser", "User",
		[]Field{{Name: "level", Type: "integer", Nullable: true}}, nil)
	require.NoError(t, err)
}

func TestReservedFieldNames(t *testing.T) {
	h := New()

	_, err := h.Register("User", "", []Field{{Name: "id", Type: "bigint"}}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))

	_, err = h.Register("User", "", []Field{{Name: "_type", Type: "text"}}, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestDuplicateClassFails(t *testing.T) {
	h := New()
	mustRegister(t, h, "User", "", nil, nil)

	_, err := h.Register("User", "", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestUnknownParentFails(t *testing.T) {
	h := New()
	_, err := h.Register("AdminUser", "User", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestNonInvertibleNameFails(t *testing.T) {
	h := New()
	_, err := h.Register("Admin_user", "", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsNaming(err))
}

func TestRegisterAfterCloseFails(t *testing.T) {
	h := New()
	mustRegister(t, h, "User", "", nil, nil)
	require.NoError(t, h.Close())

	_, err := h.Register("AdminUser", "User", nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))

	// Closing again is a no-op.
	require.NoError(t, h.Close())
}

func TestCloseRejectsUndeclaredReference(t *testing.T) {
	h := New()
	mustRegister(t, h, "Membership", "",
		[]Field{{Name: "user", References: "User"}}, nil)

	err := h.Close()
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestCloseRejectsDuplicateTypeName(t *testing.T) {
	h := New()
	mustRegister(t, h, "User", "", nil, nil)
	mustRegister(t, h, "AdminUser", "User", nil, &Options{TypeName: "user"})

	err := h.Close()
	require.Error(t, err)
	assert.True(t, errs.IsConfig(err))
}

func TestAncestorsAndSubtree(t *testing.T) {
	h := New()
	user := mustRegister(t, h, "User", "", nil, nil)
	admin := mustRegister(t, h, "AdminUser", "User", nil, nil)
	super := mustRegister(t, h, "SuperUser", "AdminUser", nil, nil)
	guest := mustRegister(t, h, "GuestUser", "User", nil, nil)

	assert.Equal(t, []int{admin, user}, h.Ancestors(super))
	assert.Empty(t, h.Ancestors(user))
	assert.Equal(t, []int{user, admin, guest, super}, h.Subtree(user))
	assert.Equal(t, []int{user}, h.Roots())
}
