// Package hierarchy holds the declared entity classes and their inheritance
// configuration.
//
// Classes are registered root-first into a single arena and reference each
// other by index. Once every class is declared the hierarchy is closed with
// Close; planning and variant resolution are only permitted on a closed
// hierarchy, and further registrations are rejected.
package hierarchy

import (
	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/naming"
)

// Strategy selects how a tree of classes maps onto physical tables.
type Strategy int

const (
	// JoinedTable stores every class in its own table, linked to the
	// parent table through a shared primary key.
	JoinedTable Strategy = iota
	// SingleTable stores an entire subtree in the root's table, with
	// nullable columns for subclass fields.
	SingleTable
	// None is a plain table without inheritance; declaring a subclass of
	// such a class is a configuration error.
	None
)

func (s Strategy) String() string {
	switch s {
	case SingleTable:
		return "single-table"
	case None:
		return "none"
	default:
		return "joined-table"
	}
}

// ParseStrategy converts the spelling used in hierarchy files. The empty
// string selects the default joined-table strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "joined-table":
		return JoinedTable, nil
	case "single-table":
		return SingleTable, nil
	case "none":
		return None, nil
	default:
		return 0, errs.New(errs.KindConfig, "invalid inheritance configuration %q", s)
	}
}

// DefaultTypeColumn is the discriminator column name used unless a root
// class overrides it.
const DefaultTypeColumn = "_type"

// Field is one declared column of a class. Fields referencing another class
// leave Type empty; their column takes the cross-table id type and a
// foreign key to the referenced class's table.
type Field struct {
	Name       string
	Type       string  // declared column type, e.g. "text", "integer"
	Nullable   bool
	Default    *string // rendered verbatim into the DDL
	References string  // class name this field points at, "" for plain fields
}

// Config is the merged inheritance configuration of one class.
type Config struct {
	Inheritance Strategy
	TypeColumn  string // discriminator column, identical across a tree
	TypeName    string // discriminator value identifying this class
	Parent      int    // arena index of the parent class, -1 for roots
	Base        int    // arena index of the tree root
}

// Options carries the per-class overrides accepted at registration time.
// Parent and Base are always computed structurally and cannot be set.
type Options struct {
	Inheritance *Strategy
	TypeColumn  string
	TypeName    string
}

// Node is one declared class. Nodes are immutable once registered.
type Node struct {
	Name     string
	Fields   []Field
	Config   Config
	children []int
}

// Children returns the arena indices of the node's direct subclasses, in
// registration order.
func (n *Node) Children() []int { return n.children }

// Table returns the node's physical table name. Under single-table
// inheritance subclasses share the root's table; Table still reports the
// node's own derived name, the planner decides placement.
func (n *Node) Table() string { return naming.ClassToTable(n.Name) }

// View returns the node's public view name.
func (n *Node) View() string { return naming.ClassToView(n.Name) }

// Hierarchy is the arena of declared classes.
type Hierarchy struct {
	nodes    []Node
	index    map[string]int
	closed   bool
	variants map[int]map[string]int // tree root -> type name -> node
}

func New() *Hierarchy {
	return &Hierarchy{index: map[string]int{}}
}

// Register declares a class. The parent class, if any, must have been
// registered before; configuration defaults are merged from it following
// the nearest-ancestor rule. Returns the arena index of the new node.
func (h *Hierarchy) Register(name, parent string, fields []Field, opts *Options) (int, error) {
	if h.closed {
		return 0, errs.New(errs.KindConfig, "cannot declare %s: hierarchy is closed", name)
	}
	if opts == nil {
		opts = &Options{}
	}
	if err := naming.CheckInvertible(name); err != nil {
		return 0, err
	}
	if _, ok := h.index[name]; ok {
		return 0, errs.New(errs.KindConfig, "class %s declared twice", name)
	}

	cfg, err := h.mergeConfig(name, parent, opts)
	if err != nil {
		return 0, err
	}
	if err := h.checkFields(name, fields, cfg); err != nil {
		return 0, err
	}

	idx := len(h.nodes)
	if cfg.Parent == -1 {
		cfg.Base = idx
	}
	h.nodes = append(h.nodes, Node{Name: name, Fields: fields, Config: cfg})
	h.index[name] = idx
	if cfg.Parent >= 0 {
		p := &h.nodes[cfg.Parent]
		p.children = append(p.children, idx)
	}
	return idx, nil
}

// mergeConfig resolves the effective configuration for a new class:
// inheritance and type column come from the nearest ancestor that set them
// (in practice the parent's already-merged values), the type name always
// defaults locally to the class's view name.
func (h *Hierarchy) mergeConfig(name, parent string, opts *Options) (Config, error) {
	cfg := Config{Parent: -1, Base: -1}
	if parent == "" {
		cfg.Inheritance = JoinedTable
		if opts.Inheritance != nil {
			cfg.Inheritance = *opts.Inheritance
		}
		cfg.TypeColumn = DefaultTypeColumn
		if opts.TypeColumn != "" {
			cfg.TypeColumn = opts.TypeColumn
		}
	} else {
		pidx, ok := h.index[parent]
		if !ok {
			return cfg, errs.New(errs.KindConfig,
				"parent class %s of %s is not declared", parent, name)
		}
		pcfg := h.nodes[pidx].Config
		if pcfg.Inheritance == None {
			return cfg, errs.New(errs.KindConfig,
				"parent class %s of %s does not support inheritance", parent, name)
		}
		if opts.Inheritance != nil && *opts.Inheritance != pcfg.Inheritance {
			return cfg, errs.New(errs.KindConfig,
				"cannot change inheritance type of %s in subclass %s", parent, name)
		}
		if opts.TypeColumn != "" && opts.TypeColumn != pcfg.TypeColumn {
			return cfg, errs.New(errs.KindConfig,
				"cannot change type column of %s in subclass %s", parent, name)
		}
		cfg.Inheritance = pcfg.Inheritance
		cfg.TypeColumn = pcfg.TypeColumn
		cfg.Parent = pidx
		cfg.Base = pcfg.Base
	}
	cfg.TypeName = opts.TypeName
	if cfg.TypeName == "" {
		cfg.TypeName = naming.ClassToView(name)
	}
	return cfg, nil
}

func (h *Hierarchy) checkFields(name string, fields []Field, cfg Config) error {
	seen := map[string]bool{}
	for _, f := range fields {
		switch {
		case f.Name == "":
			return errs.New(errs.KindConfig, "%s declares a field without a name", name)
		case f.Name == "id":
			return errs.New(errs.KindConfig,
				"%s declares a field named id: the id column is generated", name)
		case f.Name == cfg.TypeColumn:
			return errs.New(errs.KindConfig,
				"%s declares a field named like the type column %q", name, cfg.TypeColumn)
		case seen[f.Name]:
			return errs.New(errs.KindConfig, "%s declares field %s twice", name, f.Name)
		case f.Type == "" && f.References == "":
			return errs.New(errs.KindConfig, "field %s.%s has no type", name, f.Name)
		case f.Type != "" && f.References != "":
			return errs.New(errs.KindConfig,
				"field %s.%s declares both a type and a reference", name, f.Name)
		}
		seen[f.Name] = true
		// A single-table subtree shares one physical table: subclass
		// columns hold NULL for rows of other variants, so they cannot
		// be declared NOT NULL.
		if cfg.Inheritance == SingleTable && cfg.Parent != -1 && !f.Nullable {
			return errs.New(errs.KindConfig,
				"field %s.%s cannot be NOT NULL under single-table inheritance", name, f.Name)
		}
	}
	return nil
}

// Close freezes the hierarchy. It verifies that every reference field
// points at a declared class and that discriminator values are unique
// within each tree, then builds the variant lookup used by ResolveVariant.
// Closing an already-closed hierarchy is a no-op.
func (h *Hierarchy) Close() error {
	if h.closed {
		return nil
	}
	variants := map[int]map[string]int{}
	for i := range h.nodes {
		n := &h.nodes[i]
		for _, f := range n.Fields {
			if f.References == "" {
				continue
			}
			if _, ok := h.index[f.References]; !ok {
				return errs.New(errs.KindConfig,
					"field %s.%s references undeclared class %s", n.Name, f.Name, f.References)
			}
		}
		base := n.Config.Base
		if variants[base] == nil {
			variants[base] = map[string]int{}
		}
		if prev, ok := variants[base][n.Config.TypeName]; ok {
			return errs.New(errs.KindConfig,
				"type name %q is declared by both %s and %s",
				n.Config.TypeName, h.nodes[prev].Name, n.Name)
		}
		variants[base][n.Config.TypeName] = i
	}
	h.variants = variants
	h.closed = true
	return nil
}

// Closed reports whether the hierarchy has been frozen.
func (h *Hierarchy) Closed() bool { return h.closed }

// Len returns the number of declared classes.
func (h *Hierarchy) Len() int { return len(h.nodes) }

// Node returns the class at the given arena index.
func (h *Hierarchy) Node(i int) *Node { return &h.nodes[i] }

// Lookup returns the arena index of the named class.
func (h *Hierarchy) Lookup(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Roots returns the indices of all tree roots in registration order.
func (h *Hierarchy) Roots() []int {
	var roots []int
	for i := range h.nodes {
		if h.nodes[i].Config.Parent == -1 {
			roots = append(roots, i)
		}
	}
	return roots
}

// Ancestors returns the indices of the node's strict ancestors, nearest
// first, ending with the tree root.
func (h *Hierarchy) Ancestors(i int) []int {
	var out []int
	for p := h.nodes[i].Config.Parent; p != -1; p = h.nodes[p].Config.Parent {
		out = append(out, p)
	}
	return out
}

// Subtree returns the node and all its descendants in breadth-first order.
func (h *Hierarchy) Subtree(i int) []int {
	out := []int{i}
	for q := 0; q < len(out); q++ {
		out = append(out, h.nodes[out[q]].children...)
	}
	return out
}
