package generator

import "github.com/descent-db/descent/errs"

// Dialect identifies the target engine. It affects the storage width of the
// cross-table id type, primary key generation, view rendering, and the
// inheritance trigger syntax.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect converts a user-supplied dialect name.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", errs.New(errs.KindConfig, "unsupported dialect %q", s)
	}
}

// IDType returns the integer type backing every primary and foreign key the
// planner emits. The width is selected once per engine and applies
// uniformly to all tables: a wide integer everywhere, except on SQLite
// where the rowid machinery wants a plain INTEGER.
func IDType(d Dialect) string {
	if d == SQLite {
		return "integer"
	}
	return "bigint"
}

// serialIDType is the generated-key variant used for root primary keys.
// SQLite auto-assigns rowids to any INTEGER PRIMARY KEY; Postgres needs a
// sequence-backed column.
func serialIDType(d Dialect) string {
	if d == SQLite {
		return "integer"
	}
	return "bigserial"
}
