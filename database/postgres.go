package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/generator"
)

type pgExecutor struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, url string) (Executor, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errs.Wrap(errs.KindExec, "unable to create connection pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.Wrap(errs.KindExec, "unable to ping database", err)
	}
	return &pgExecutor{pool: pool}, nil
}

func (e *pgExecutor) Dialect() generator.Dialect { return generator.Postgres }

func (e *pgExecutor) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := e.pool.Exec(ctx, sql, args...)
	return execErr(sql, err)
}

func (e *pgExecutor) QueryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := e.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, execErr(sql, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, execErr(sql, err)
		}
		out = append(out, s)
	}
	return out, execErr(sql, rows.Err())
}

func (e *pgExecutor) Insert(ctx context.Context, table string, columns []string, values []any) (int64, error) {
	cols := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = fmt.Sprintf("%q", c)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s) RETURNING "id"`,
		table, strings.Join(cols, ", "), strings.Join(params, ", "))
	var id int64
	if err := e.pool.QueryRow(ctx, sql, values...).Scan(&id); err != nil {
		return 0, execErr(sql, err)
	}
	return id, nil
}

func (e *pgExecutor) Close() {
	e.pool.Close()
}
