package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/generator"
)

type sqliteExecutor struct {
	db *sql.DB
}

func openSQLite(path string) (Executor, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindExec, "unable to open sqlite database", err)
	}
	// The embedded engine serializes writers; a single connection avoids
	// table-lock errors during schema creation.
	db.SetMaxOpenConns(1)
	return &sqliteExecutor{db: db}, nil
}

func (e *sqliteExecutor) Dialect() generator.Dialect { return generator.SQLite }

func (e *sqliteExecutor) Exec(ctx context.Context, query string, args ...any) error {
	_, err := e.db.ExecContext(ctx, query, args...)
	return execErr(query, err)
}

func (e *sqliteExecutor) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, execErr(query, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, execErr(query, err)
		}
		out = append(out, s)
	}
	return out, execErr(query, rows.Err())
}

func (e *sqliteExecutor) Insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	cols := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = fmt.Sprintf("%q", c)
		params[i] = "?"
	}
	query := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		table, strings.Join(cols, ", "), strings.Join(params, ", "))
	res, err := e.db.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, execErr(query, err)
	}
	id, err := res.LastInsertId()
	return id, execErr(query, err)
}

func (e *sqliteExecutor) Close() {
	e.db.Close()
}
