// Package planner derives the physical schema for a closed hierarchy: one
// ordered list of table specifications and one of view specifications.
//
// Planning is a pure function of the hierarchy. Re-planning an unchanged
// hierarchy yields identical output, and no partial plan is ever returned:
// any invariant violation aborts with an error before the plan exists.
package planner

import (
	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/hierarchy"
	"github.com/descent-db/descent/naming"
)

// Column is one column of a planned table. Columns flagged IsID carry the
// uniform cross-table id type, whose storage width the generator selects
// once per dialect; all other columns use their declared type verbatim.
type Column struct {
	Name       string
	Type       string // declared column type, empty when IsID
	IsID       bool
	PrimaryKey bool
	NotNull    bool
	Default    *string
	ForeignKey *ForeignKey
}

// ForeignKey points a column at another planned table.
type ForeignKey struct {
	ReferencesTable  string
	ReferencesColumn string
}

// TableSpec is one physical table to create.
type TableSpec struct {
	Name    string // physical name, storage-prefixed
	Node    int    // arena index of the class owning the table
	Parent  string // physical parent table under joined-table, "" otherwise
	Columns []Column
}

// ProjectedColumn is one column a view exposes, qualified with the table it
// is read from.
type ProjectedColumn struct {
	Table string
	Name  string
}

// Filter restricts a shared-table view to the rows of one subtree.
type Filter struct {
	Column string
	Values []string // type names of the node and all its descendants
}

// ViewSpec is one aggregation view to create. Under joined-table
// inheritance the view joins the node's table with every ancestor table on
// id; under single-table inheritance it filters the shared table by
// discriminator value. The discriminator column is never projected.
type ViewSpec struct {
	Name    string // public name, no storage prefix
	Node    int
	From    string
	Joins   []string // ancestor tables joined on id, nearest first
	Columns []ProjectedColumn
	Filter  *Filter
}

// Schema is the full derived plan. Tables are ordered parents before
// children so foreign keys always point backwards.
type Schema struct {
	Tables []TableSpec
	Views  []ViewSpec
}

// discriminatorType mirrors the String(100) column the original mapping
// layer declares for the polymorphic type column.
const discriminatorType = "varchar(100)"

// Plan walks the hierarchy breadth-first from each root and derives the
// table and view specifications. The hierarchy must be closed.
func Plan(h *hierarchy.Hierarchy) (*Schema, error) {
	if !h.Closed() {
		return nil, errs.New(errs.KindPlan, "cannot plan an open hierarchy")
	}

	p := &Schema{}
	tableIdx := map[string]int{} // physical name -> index into p.Tables
	colOwner := map[string]int{} // "table.column" -> owning node, for conflicts

	var order []int
	for _, root := range h.Roots() {
		order = append(order, h.Subtree(root)...)
	}

	for _, i := range order {
		n := h.Node(i)
		cfg := n.Config

		if cfg.Inheritance == hierarchy.SingleTable && cfg.Parent != -1 {
			// Shares the root's table: append the locally declared
			// fields, forced nullable, to the already-planned spec.
			shared := h.Node(cfg.Base).Table()
			spec := &p.Tables[tableIdx[shared]]
			for _, f := range n.Fields {
				c := fieldColumn(h, f)
				c.NotNull = false
				if prev, ok := colOwner[shared+"."+c.Name]; ok {
					return nil, errs.New(errs.KindPlan,
						"column %s of shared table %s is declared by both %s and %s",
						c.Name, shared, h.Node(prev).Name, n.Name)
				}
				colOwner[shared+"."+c.Name] = i
				spec.Columns = append(spec.Columns, c)
			}
			continue
		}

		spec := TableSpec{Name: n.Table(), Node: i}
		id := Column{Name: "id", IsID: true, PrimaryKey: true, NotNull: true}
		if cfg.Parent != -1 {
			// Joined-table subclass: the primary key doubles as the
			// link to the parent row.
			spec.Parent = h.Node(cfg.Parent).Table()
			id.ForeignKey = &ForeignKey{ReferencesTable: spec.Parent, ReferencesColumn: "id"}
		}
		spec.Columns = append(spec.Columns, id)
		for _, f := range n.Fields {
			c := fieldColumn(h, f)
			colOwner[spec.Name+"."+c.Name] = i
			spec.Columns = append(spec.Columns, c)
		}
		tableIdx[spec.Name] = len(p.Tables)
		p.Tables = append(p.Tables, spec)
	}

	// The discriminator lives on the root table only, after every column
	// the subtree contributed.
	for _, root := range h.Roots() {
		cfg := h.Node(root).Config
		if cfg.Inheritance == hierarchy.None {
			continue
		}
		spec := &p.Tables[tableIdx[h.Node(root).Table()]]
		spec.Columns = append(spec.Columns, Column{
			Name:    cfg.TypeColumn,
			Type:    discriminatorType,
			NotNull: true,
		})
	}

	for _, i := range order {
		p.Views = append(p.Views, planView(h, i))
	}

	if err := checkCollisions(h, p); err != nil {
		return nil, err
	}
	return p, nil
}

func fieldColumn(h *hierarchy.Hierarchy, f hierarchy.Field) Column {
	c := Column{Name: f.Name, NotNull: !f.Nullable, Default: f.Default}
	if f.References != "" {
		c.IsID = true
		c.ForeignKey = &ForeignKey{
			ReferencesTable:  referenceTable(h, f.References),
			ReferencesColumn: "id",
		}
	} else {
		c.Type = f.Type
	}
	return c
}

// referenceTable resolves the physical table holding rows of the referenced
// class. Single-table subclasses have no table of their own; their rows
// live in the root's table.
func referenceTable(h *hierarchy.Hierarchy, class string) string {
	if i, ok := h.Lookup(class); ok {
		cfg := h.Node(i).Config
		if cfg.Inheritance == hierarchy.SingleTable {
			return h.Node(cfg.Base).Table()
		}
	}
	return naming.ClassToTable(class)
}

func planView(h *hierarchy.Hierarchy, i int) ViewSpec {
	n := h.Node(i)
	cfg := n.Config
	v := ViewSpec{Name: n.View(), Node: i}

	if cfg.Inheritance == hierarchy.SingleTable {
		shared := h.Node(cfg.Base).Table()
		v.From = shared
		var values []string
		for _, s := range h.Subtree(i) {
			values = append(values, h.Node(s).Config.TypeName)
		}
		v.Filter = &Filter{Column: cfg.TypeColumn, Values: values}
		// Project the node's own and inherited fields in shared-table
		// order: id, then each ancestor root-first, then the node.
		v.Columns = append(v.Columns, ProjectedColumn{Table: shared, Name: "id"})
		lineage := reverse(h.Ancestors(i))
		for _, a := range append(lineage, i) {
			for _, f := range h.Node(a).Fields {
				v.Columns = append(v.Columns, ProjectedColumn{Table: shared, Name: f.Name})
			}
		}
		return v
	}

	// Joined-table (or plain) view: the node's table joined with every
	// ancestor table on id. Columns are taken from the nearest table that
	// declares them; the discriminator is excluded.
	v.From = n.Table()
	seen := map[string]bool{cfg.TypeColumn: true}
	project := func(table string, name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		v.Columns = append(v.Columns, ProjectedColumn{Table: table, Name: name})
	}
	project(n.Table(), "id")
	for _, f := range n.Fields {
		project(n.Table(), f.Name)
	}
	for _, a := range h.Ancestors(i) {
		v.Joins = append(v.Joins, h.Node(a).Table())
		for _, f := range h.Node(a).Fields {
			project(h.Node(a).Table(), f.Name)
		}
	}
	return v
}

// checkCollisions asserts that no two tables and no two views share a name,
// and that no view name clashes with a physical table name.
func checkCollisions(h *hierarchy.Hierarchy, p *Schema) error {
	tables := map[string]int{}
	for _, t := range p.Tables {
		if prev, ok := tables[t.Name]; ok {
			return errs.New(errs.KindNaming,
				"classes %s and %s map to the same table %s",
				h.Node(prev).Name, h.Node(t.Node).Name, t.Name)
		}
		tables[t.Name] = t.Node
	}
	views := map[string]int{}
	for _, v := range p.Views {
		if prev, ok := views[v.Name]; ok {
			return errs.New(errs.KindNaming,
				"classes %s and %s map to the same view %s",
				h.Node(prev).Name, h.Node(v.Node).Name, v.Name)
		}
		views[v.Name] = v.Node
		if owner, ok := tables[v.Name]; ok {
			return errs.New(errs.KindNaming,
				"view %s of %s collides with the table of %s",
				v.Name, h.Node(v.Node).Name, h.Node(owner).Name)
		}
	}
	return nil
}

func reverse(in []int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
