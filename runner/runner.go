// Package runner executes generated schema scripts against the target
// engine. Schema creation is a bootstrap step: it assumes external mutual
// exclusion and a database without the planned objects.
package runner

import (
	"context"
	"time"

	"github.com/descent-db/descent/database"
	"github.com/descent-db/descent/generator"
	"github.com/descent-db/descent/hierarchy"
	"github.com/descent-db/descent/introspect"
	"github.com/descent-db/descent/logger"
	"github.com/descent-db/descent/planner"
)

// Runner applies schema scripts through an Executor.
type Runner struct {
	ex  database.Executor
	log *logger.Logger
}

func New(ex database.Executor, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.New(nil)
	}
	return &Runner{ex: ex, log: log}
}

// Create plans the hierarchy and runs the full creation script: tables,
// foreign keys, views, triggers. Nothing is executed if planning or
// emission fails.
func (r *Runner) Create(ctx context.Context, h *hierarchy.Hierarchy) error {
	p, err := planner.Plan(h)
	if err != nil {
		return err
	}
	stmts, err := generator.CreateScript(p, r.ex.Dialect())
	if err != nil {
		return err
	}
	return r.apply(ctx, stmts)
}

// Drop runs the symmetric destruction script for the planned schema,
// leaving unrelated objects untouched.
func (r *Runner) Drop(ctx context.Context, h *hierarchy.Hierarchy) error {
	p, err := planner.Plan(h)
	if err != nil {
		return err
	}
	stmts, err := generator.DropScript(p, r.ex.Dialect())
	if err != nil {
		return err
	}
	return r.apply(ctx, stmts)
}

// Destroy drops everything that exists in the database, planned or not.
// The destroyable flag must be passed explicitly.
func (r *Runner) Destroy(ctx context.Context, destroyable bool) error {
	return introspect.DestroyAll(ctx, r.ex, destroyable)
}

func (r *Runner) apply(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		start := time.Now()
		if err := r.ex.Exec(ctx, stmt); err != nil {
			r.log.Error("statement failed", err)
			return err
		}
		r.log.Statement(stmt, time.Since(start))
	}
	return nil
}

// Preview returns the creation script without executing anything.
func Preview(h *hierarchy.Hierarchy, d generator.Dialect) ([]string, error) {
	p, err := planner.Plan(h)
	if err != nil {
		return nil, err
	}
	return generator.CreateScript(p, d)
}

// Status compares the planned schema against what the engine reports.
// Returns the planned object names that exist and those that are missing.
func (r *Runner) Status(ctx context.Context, h *hierarchy.Hierarchy) (existing, missing []string, err error) {
	p, err := planner.Plan(h)
	if err != nil {
		return nil, nil, err
	}
	tables, err := introspect.ListTables(ctx, r.ex)
	if err != nil {
		return nil, nil, err
	}
	views, err := introspect.ListViews(ctx, r.ex)
	if err != nil {
		return nil, nil, err
	}
	present := map[string]bool{}
	for _, t := range tables {
		present[t] = true
	}
	for _, v := range views {
		present[v] = true
	}
	for _, t := range p.Tables {
		if present[t.Name] {
			existing = append(existing, t.Name)
		} else {
			missing = append(missing, t.Name)
		}
	}
	for _, v := range p.Views {
		if present[v.Name] {
			existing = append(existing, v.Name)
		} else {
			missing = append(missing, v.Name)
		}
	}
	return existing, missing, nil
}
