// Package generator turns planned table and view specifications into DDL
// statement sequences for a target dialect.
//
// The generator performs no I/O: it returns ordered statement lists for the
// execution collaborator to run. Creation order is all tables (in planner
// order), foreign key constraints, all views, then the inheritance
// triggers; destruction is the exact reverse.
package generator

import (
	"fmt"
	"strings"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/planner"
)

// CreateScript returns the full ordered statement sequence realizing the
// plan on the given dialect. The plan is validated first; nothing is
// emitted for a plan violating the structural invariants.
func CreateScript(p *planner.Schema, d Dialect) ([]string, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	var stmts []string
	for _, t := range p.Tables {
		stmts = append(stmts, CreateTableSQL(t, d))
	}
	if d == Postgres {
		// SQLite resolves REFERENCES clauses lazily, so those are
		// rendered inline; Postgres needs cross-tree foreign keys added
		// after every table exists.
		for _, t := range p.Tables {
			stmts = append(stmts, addForeignKeySQL(t)...)
		}
	}
	for _, v := range p.Views {
		stmts = append(stmts, CreateViewSQL(v, d))
	}
	for _, t := range p.Tables {
		if t.Parent != "" {
			stmts = append(stmts, CreateTriggerSQL(t, d))
		}
	}
	return stmts, nil
}

// DropScript returns the symmetric destruction sequence: triggers first,
// then views, then tables children-before-parents.
func DropScript(p *planner.Schema, d Dialect) ([]string, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	var stmts []string
	for i := len(p.Tables) - 1; i >= 0; i-- {
		if p.Tables[i].Parent != "" {
			stmts = append(stmts, DropTriggerSQL(p.Tables[i], d))
		}
	}
	for i := len(p.Views) - 1; i >= 0; i-- {
		stmts = append(stmts, DropViewSQL(p.Views[i]))
	}
	for i := len(p.Tables) - 1; i >= 0; i-- {
		stmts = append(stmts, DropTableSQL(p.Tables[i], d))
	}
	return stmts, nil
}

// CreateTableSQL renders one CREATE TABLE statement.
func CreateTableSQL(t planner.TableSpec, d Dialect) string {
	var cols []string
	for _, c := range t.Columns {
		cols = append(cols, columnSQL(c, d))
	}
	return fmt.Sprintf(`CREATE TABLE %q (%s);`, t.Name, strings.Join(cols, ", "))
}

func columnSQL(c planner.Column, d Dialect) string {
	typ := c.Type
	if c.IsID {
		typ = IDType(d)
		if c.PrimaryKey && c.ForeignKey == nil {
			typ = serialIDType(d)
		}
	}
	s := fmt.Sprintf("%q %s", c.Name, typ)
	if c.PrimaryKey {
		s += " PRIMARY KEY"
	} else if c.NotNull {
		s += " NOT NULL"
	}
	if c.Default != nil {
		s += " DEFAULT " + *c.Default
	}
	if fk := c.ForeignKey; fk != nil && (c.PrimaryKey || d == SQLite) {
		s += fmt.Sprintf(" REFERENCES %q (%q)", fk.ReferencesTable, fk.ReferencesColumn)
	}
	return s
}

// addForeignKeySQL renders the deferred ALTER TABLE constraints for the
// table's non-primary-key references.
func addForeignKeySQL(t planner.TableSpec) []string {
	var stmts []string
	for _, c := range t.Columns {
		if c.ForeignKey == nil || c.PrimaryKey {
			continue
		}
		stmts = append(stmts, fmt.Sprintf(
			`ALTER TABLE %q ADD CONSTRAINT "fk_%s_%s" FOREIGN KEY (%q) REFERENCES %q (%q);`,
			t.Name, strings.TrimPrefix(t.Name, "_"), c.Name, c.Name,
			c.ForeignKey.ReferencesTable, c.ForeignKey.ReferencesColumn))
	}
	return stmts
}

// CreateViewSQL renders one CREATE VIEW statement: a join chain over the
// ancestor tables under joined-table inheritance, a discriminator filter on
// the shared table under single-table inheritance.
func CreateViewSQL(v planner.ViewSpec, d Dialect) string {
	var cols []string
	for _, c := range v.Columns {
		cols = append(cols, fmt.Sprintf("%q.%q", c.Table, c.Name))
	}
	sql := fmt.Sprintf(`CREATE VIEW %q AS SELECT %s FROM %q`,
		v.Name, strings.Join(cols, ", "), v.From)
	for _, j := range v.Joins {
		sql += fmt.Sprintf(` INNER JOIN %q ON %q."id" = %q."id"`, j, j, v.From)
	}
	if f := v.Filter; f != nil {
		if len(f.Values) == 1 {
			sql += fmt.Sprintf(` WHERE %q.%q = '%s'`, v.From, f.Column, f.Values[0])
		} else {
			quoted := make([]string, len(f.Values))
			for i, val := range f.Values {
				quoted[i] = "'" + val + "'"
			}
			sql += fmt.Sprintf(` WHERE %q.%q IN (%s)`,
				v.From, f.Column, strings.Join(quoted, ", "))
		}
	}
	return sql + ";"
}

// CreateTriggerSQL renders the delete-propagation trigger for a joined
// subclass table: removing a child row also removes the parent row it
// shares its id with.
func CreateTriggerSQL(t planner.TableSpec, d Dialect) string {
	if d == SQLite {
		return fmt.Sprintf(
			"CREATE TRIGGER autodel%s AFTER DELETE ON %s\n"+
				"FOR EACH ROW BEGIN\n"+
				"  DELETE FROM %s WHERE id = OLD.id;\n"+
				"END;", t.Name, t.Name, t.Parent)
	}
	return fmt.Sprintf(
		"CREATE OR REPLACE FUNCTION autodel%s() RETURNS TRIGGER AS $_$\n"+
			"    BEGIN\n"+
			"        DELETE FROM %s WHERE id = OLD.id;\n"+
			"        RETURN OLD;\n"+
			"    END $_$ LANGUAGE 'plpgsql';\n"+
			"CREATE TRIGGER autodel%s AFTER DELETE ON %s\n"+
			"FOR EACH ROW EXECUTE PROCEDURE autodel%s();",
		t.Parent, t.Parent, t.Name, t.Name, t.Parent)
}

// DropTriggerSQL renders the matching trigger removal.
func DropTriggerSQL(t planner.TableSpec, d Dialect) string {
	if d == SQLite {
		return fmt.Sprintf("DROP TRIGGER IF EXISTS autodel%s;", t.Name)
	}
	return fmt.Sprintf("DROP TRIGGER IF EXISTS autodel%s ON %s;", t.Name, t.Name)
}

// DropViewSQL renders one DROP VIEW statement.
func DropViewSQL(v planner.ViewSpec) string {
	return fmt.Sprintf(`DROP VIEW IF EXISTS %q;`, v.Name)
}

// DropTableSQL renders one DROP TABLE statement. Postgres cascades so that
// foreign keys from sibling trees cannot block destruction.
func DropTableSQL(t planner.TableSpec, d Dialect) string {
	if d == Postgres {
		return fmt.Sprintf(`DROP TABLE IF EXISTS %q CASCADE;`, t.Name)
	}
	return fmt.Sprintf(`DROP TABLE IF EXISTS %q;`, t.Name)
}

// validate refuses structurally invalid plans: every table needs exactly
// one id primary key, foreign keys must target planned tables, parent
// tables must precede their children, and views may only read from planned
// tables.
func validate(p *planner.Schema) error {
	if p == nil {
		return errs.New(errs.KindPlan, "no plan")
	}
	position := map[string]int{}
	for i, t := range p.Tables {
		position[t.Name] = i
	}
	for i, t := range p.Tables {
		pks := 0
		for _, c := range t.Columns {
			if c.PrimaryKey {
				pks++
				if c.Name != "id" || !c.IsID {
					return errs.New(errs.KindPlan,
						"table %s: primary key must be the id column", t.Name)
				}
			}
			if c.ForeignKey != nil {
				if _, ok := position[c.ForeignKey.ReferencesTable]; !ok {
					return errs.New(errs.KindPlan,
						"table %s: column %s references unplanned table %s",
						t.Name, c.Name, c.ForeignKey.ReferencesTable)
				}
			}
		}
		if pks != 1 {
			return errs.New(errs.KindPlan, "table %s has %d primary keys", t.Name, pks)
		}
		if t.Parent != "" {
			pos, ok := position[t.Parent]
			if !ok || pos >= i {
				return errs.New(errs.KindPlan,
					"table %s: parent table %s is not planned before it", t.Name, t.Parent)
			}
		}
	}
	for _, v := range p.Views {
		sources := map[string]bool{v.From: true}
		if _, ok := position[v.From]; !ok {
			return errs.New(errs.KindPlan,
				"view %s reads from unplanned table %s", v.Name, v.From)
		}
		for _, j := range v.Joins {
			if _, ok := position[j]; !ok {
				return errs.New(errs.KindPlan,
					"view %s joins unplanned table %s", v.Name, j)
			}
			sources[j] = true
		}
		for _, c := range v.Columns {
			if !sources[c.Table] {
				return errs.New(errs.KindPlan,
					"view %s projects column %s from unjoined table %s",
					v.Name, c.Name, c.Table)
			}
		}
		if v.Filter != nil && len(v.Filter.Values) == 0 {
			return errs.New(errs.KindPlan, "view %s has an empty discriminator filter", v.Name)
		}
	}
	return nil
}
