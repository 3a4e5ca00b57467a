// Package introspect enumerates the schema objects that currently exist in
// the target engine and can destroy them wholesale.
//
// The planner never asks what exists; it only decides what should. These
// helpers serve the status command and the destroyable-gated teardown.
package introspect

import (
	"context"
	"fmt"

	"github.com/descent-db/descent/database"
	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/generator"
)

// ListTables returns the names of all base tables.
func ListTables(ctx context.Context, ex database.Executor) ([]string, error) {
	if ex.Dialect() == generator.SQLite {
		return ex.QueryStrings(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	}
	return ex.QueryStrings(ctx,
		`SELECT table_name FROM information_schema.tables `+
			`WHERE table_schema='public' AND table_type='BASE TABLE'`)
}

// ListViews returns the names of all views.
func ListViews(ctx context.Context, ex database.Executor) ([]string, error) {
	if ex.Dialect() == generator.SQLite {
		return ex.QueryStrings(ctx, `SELECT name FROM sqlite_master WHERE type = 'view'`)
	}
	return ex.QueryStrings(ctx,
		`SELECT table_name FROM information_schema.tables `+
			`WHERE table_schema='public' AND table_type='VIEW'`)
}

// ListSequences returns the names of all sequences. SQLite has none.
func ListSequences(ctx context.Context, ex database.Executor) ([]string, error) {
	if ex.Dialect() == generator.SQLite {
		return nil, nil
	}
	return ex.QueryStrings(ctx,
		`SELECT sequence_name FROM information_schema.sequences `+
			`WHERE sequence_schema='public'`)
}

// ListTriggers returns the names of all triggers. On Postgres triggers are
// dropped with their tables, so only SQLite reports them.
func ListTriggers(ctx context.Context, ex database.Executor) ([]string, error) {
	if ex.Dialect() == generator.SQLite {
		return ex.QueryStrings(ctx, `SELECT name FROM sqlite_master WHERE type = 'trigger'`)
	}
	return nil, nil
}

// ListEnumTypes returns the names of all enum types (Postgres only).
func ListEnumTypes(ctx context.Context, ex database.Executor) ([]string, error) {
	if ex.Dialect() == generator.SQLite {
		return nil, nil
	}
	return ex.QueryStrings(ctx, `SELECT typname FROM pg_type WHERE typtype = 'e'`)
}

// DestroyAll drops everything in the database: triggers, views, sequences,
// tables, enum types. The destroyable flag must be passed explicitly; it
// guards live databases against accidental teardown.
func DestroyAll(ctx context.Context, ex database.Executor, destroyable bool) error {
	if !destroyable {
		return errs.New(errs.KindConfig,
			"refusing to destroy: database is not configured as destroyable")
	}
	if ex.Dialect() == generator.SQLite {
		return destroySQLite(ctx, ex)
	}
	return destroyPostgres(ctx, ex)
}

func destroyPostgres(ctx context.Context, ex database.Executor) error {
	seqs, err := ListSequences(ctx, ex)
	if err != nil {
		return err
	}
	for _, s := range seqs {
		if err := ex.Exec(ctx, fmt.Sprintf(`DROP SEQUENCE IF EXISTS %q CASCADE`, s)); err != nil {
			return err
		}
	}
	views, err := ListViews(ctx, ex)
	if err != nil {
		return err
	}
	for _, v := range views {
		if err := ex.Exec(ctx, fmt.Sprintf(`DROP VIEW IF EXISTS %q CASCADE`, v)); err != nil {
			return err
		}
	}
	tables, err := ListTables(ctx, ex)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := ex.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q CASCADE`, t)); err != nil {
			return err
		}
	}
	enums, err := ListEnumTypes(ctx, ex)
	if err != nil {
		return err
	}
	for _, e := range enums {
		if err := ex.Exec(ctx, fmt.Sprintf(`DROP TYPE IF EXISTS %q CASCADE`, e)); err != nil {
			return err
		}
	}
	return nil
}

func destroySQLite(ctx context.Context, ex database.Executor) error {
	triggers, err := ListTriggers(ctx, ex)
	if err != nil {
		return err
	}
	for _, t := range triggers {
		if err := ex.Exec(ctx, fmt.Sprintf(`DROP TRIGGER IF EXISTS %q`, t)); err != nil {
			return err
		}
	}
	views, err := ListViews(ctx, ex)
	if err != nil {
		return err
	}
	for _, v := range views {
		if err := ex.Exec(ctx, fmt.Sprintf(`DROP VIEW IF EXISTS %q`, v)); err != nil {
			return err
		}
	}
	tables, err := ListTables(ctx, ex)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := ex.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, t)); err != nil {
			return err
		}
	}
	return ex.Exec(ctx, "VACUUM")
}
