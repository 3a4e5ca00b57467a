package dataload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/generator"
	"github.com/descent-db/descent/hierarchy"
)

type insertCall struct {
	table   string
	columns []string
	values  []any
}

// fakeExecutor records inserts and hands out sequential ids, honoring an
// explicitly provided id the way the real executors do.
type fakeExecutor struct {
	nextID  int64
	inserts []insertCall
}

func (f *fakeExecutor) Dialect() generator.Dialect { return generator.SQLite }

func (f *fakeExecutor) Exec(ctx context.Context, sql string, args ...any) error { return nil }

func (f *fakeExecutor) QueryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	return nil, nil
}

func (f *fakeExecutor) Insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	f.inserts = append(f.inserts, insertCall{table: table, columns: columns, values: values})
	for i, c := range columns {
		if c == "id" {
			return values[i].(int64), nil
		}
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeExecutor) Close() {}

func strategyPtr(s hierarchy.Strategy) *hierarchy.Strategy { return &s }

func userHierarchy(t *testing.T, root hierarchy.Strategy) *hierarchy.Hierarchy {
	t.Helper()
	h := hierarchy.New()
	_, err := h.Register("User", "",
		[]hierarchy.Field{{Name: "username", Type: "text"}},
		&hierarchy.Options{Inheritance: strategyPtr(root)})
	require.NoError(t, err)
	_, err = h.Register("AdminUser", "User",
		[]hierarchy.Field{{Name: "level", Type: "integer", Nullable: true}}, nil)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	return h
}

func TestLoadJoinedTableRecord(t *testing.T) {
	h := userHierarchy(t, hierarchy.JoinedTable)
	ex := &fakeExecutor{}

	ids, err := loadData(context.Background(), ex, h, []byte(`
AdminUser:
  alice:
    username: alice
    level: 9
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"alice": 1}, ids)

	// Root row first, carrying the discriminator; the subclass row reuses
	// the generated id.
	require.Len(t, ex.inserts, 2)
	assert.Equal(t, insertCall{
		table:   "_user",
		columns: []string{"_type", "username"},
		values:  []any{"admin_user", "alice"},
	}, ex.inserts[0])
	assert.Equal(t, insertCall{
		table:   "_admin_user",
		columns: []string{"id", "level"},
		values:  []any{int64(1), 9},
	}, ex.inserts[1])
}

func TestLoadSingleTableRecord(t *testing.T) {
	h := userHierarchy(t, hierarchy.SingleTable)
	ex := &fakeExecutor{}

	ids, err := loadData(context.Background(), ex, h, []byte(`
AdminUser:
  alice:
    username: alice
    level: 9
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"alice": 1}, ids)

	require.Len(t, ex.inserts, 1)
	assert.Equal(t, insertCall{
		table:   "_user",
		columns: []string{"_type", "username", "level"},
		values:  []any{"admin_user", "alice", 9},
	}, ex.inserts[0])
}

func TestLoadResolvesLabelReferences(t *testing.T) {
	h := hierarchy.New()
	_, err := h.Register("User", "",
		[]hierarchy.Field{{Name: "username", Type: "text"}},
		&hierarchy.Options{Inheritance: strategyPtr(hierarchy.None)})
	require.NoError(t, err)
	_, err = h.Register("AuditEntry", "",
		[]hierarchy.Field{{Name: "actor", References: "User"}},
		&hierarchy.Options{Inheritance: strategyPtr(hierarchy.None)})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	ex := &fakeExecutor{}
	// The audit record comes first in the document; the referenced user is
	// still inserted before it.
	ids, err := loadData(context.Background(), ex, h, []byte(`
AuditEntry:
  first_login:
    actor: alice
User:
  alice:
    username: alice
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"alice": 1, "first_login": 2}, ids)

	require.Len(t, ex.inserts, 2)
	assert.Equal(t, "_user", ex.inserts[0].table)
	assert.Equal(t, insertCall{
		table:   "_audit_entry",
		columns: []string{"actor"},
		values:  []any{int64(1)},
	}, ex.inserts[1])
}

func TestLoadUndeclaredLabel(t *testing.T) {
	h := hierarchy.New()
	_, err := h.Register("User", "", nil,
		&hierarchy.Options{Inheritance: strategyPtr(hierarchy.None)})
	require.NoError(t, err)
	_, err = h.Register("AuditEntry", "",
		[]hierarchy.Field{{Name: "actor", References: "User"}},
		&hierarchy.Options{Inheritance: strategyPtr(hierarchy.None)})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, loadErr := loadData(context.Background(), &fakeExecutor{}, h, []byte(`
AuditEntry:
  orphan:
    actor: nobody
`))
	require.Error(t, loadErr)
	assert.True(t, errs.IsConfig(loadErr))
	assert.Contains(t, loadErr.Error(), "undeclared label")
}

func TestLoadCircularReferences(t *testing.T) {
	h := hierarchy.New()
	_, err := h.Register("Node", "",
		[]hierarchy.Field{{Name: "peer", References: "Node", Nullable: true}},
		&hierarchy.Options{Inheritance: strategyPtr(hierarchy.None)})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	_, loadErr := loadData(context.Background(), &fakeExecutor{}, h, []byte(`
Node:
  a:
    peer: b
  b:
    peer: a
`))
	require.Error(t, loadErr)
	assert.True(t, errs.IsConfig(loadErr))
	assert.Contains(t, loadErr.Error(), "circular")
}

func TestLoadRejectsBadFixtures(t *testing.T) {
	h := userHierarchy(t, hierarchy.JoinedTable)

	for name, fixture := range map[string]string{
		"unknown class": `
Ghost:
  g1:
    username: g
`,
		"unknown field": `
User:
  alice:
    nickname: al
`,
		"duplicate label": `
User:
  alice:
    username: a
AdminUser:
  alice:
    username: b
`,
		"record is not a mapping": `
User:
  alice: 12
`,
	} {
		_, err := loadData(context.Background(), &fakeExecutor{}, h, []byte(fixture))
		require.Error(t, err, name)
		assert.True(t, errs.IsConfig(err), name)
	}
}

func TestLoadRequiresClosedHierarchy(t *testing.T) {
	h := hierarchy.New()
	_, err := h.Register("User", "", nil, nil)
	require.NoError(t, err)

	_, loadErr := loadData(context.Background(), &fakeExecutor{}, h, nil)
	require.Error(t, loadErr)
	assert.True(t, errs.IsConfig(loadErr))
}

func TestLoadFromFile(t *testing.T) {
	h := userHierarchy(t, hierarchy.JoinedTable)
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
User:
  bob:
    username: bob
`), 0o644))

	ids, err := Load(context.Background(), &fakeExecutor{}, h, path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"bob": 1}, ids)
}
