// Package database connects to the target engine and exposes the small
// capability set the rest of the system needs: executing statements,
// reading single-column results, and inserting rows.
//
// Planning and DDL generation never touch this package; only the runner,
// the introspection helpers and the data loader hold an Executor.
package database

import (
	"context"
	"strings"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/generator"
	"github.com/descent-db/descent/utils"
)

// Executor is the execution collaborator for generated statements.
type Executor interface {
	// Dialect identifies the engine this executor talks to.
	Dialect() generator.Dialect
	// Exec runs one statement.
	Exec(ctx context.Context, sql string, args ...any) error
	// QueryStrings runs a query returning a single string column.
	QueryStrings(ctx context.Context, sql string, args ...any) ([]string, error)
	// Insert adds one row and returns its id. When the id is among the
	// given columns the stored value is returned unchanged.
	Insert(ctx context.Context, table string, columns []string, values []any) (int64, error)
	// Close releases the underlying connections.
	Close()
}

// Open connects to the engine identified by the URL. URLs of the form
// "sqlite:path" (or "sqlite://path") open an embedded SQLite database;
// everything else is handed to pgx.
func Open(ctx context.Context, url string) (Executor, error) {
	if path, ok := sqlitePath(url); ok {
		return openSQLite(path)
	}
	return openPostgres(ctx, url)
}

// Connect opens the engine configured through DATABASE_URL.
func Connect(ctx context.Context) (Executor, error) {
	utils.LoadEnv()
	url, err := utils.DatabaseURL()
	if err != nil {
		return nil, err
	}
	return Open(ctx, url)
}

// DialectFromURL infers the dialect without connecting, for commands that
// only generate statements.
func DialectFromURL(url string) generator.Dialect {
	if _, ok := sqlitePath(url); ok {
		return generator.SQLite
	}
	return generator.Postgres
}

func sqlitePath(url string) (string, bool) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return strings.TrimPrefix(url, "sqlite://"), true
	case strings.HasPrefix(url, "sqlite:"):
		return strings.TrimPrefix(url, "sqlite:"), true
	default:
		return "", false
	}
}

func execErr(sql string, err error) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.KindExec, "executing "+firstWords(sql), err)
}

// firstWords trims a statement down to something readable in an error.
func firstWords(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}
