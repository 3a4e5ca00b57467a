// Package dataload ingests bulk record fixtures. A fixture file is keyed
// by class name, then by a caller-chosen unique label, then by field name.
// A value of a reference field names another record's label; the loader
// resolves labels to generated ids and inserts records in dependency order.
package dataload

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/descent-db/descent/database"
	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/hierarchy"
)

type record struct {
	class  string
	node   int
	label  string
	order  []string // field names in document order
	values map[string]any
}

// Load reads a fixture file and inserts every record through the executor.
// Returns the generated id for each label.
func Load(ctx context.Context, ex database.Executor, h *hierarchy.Hierarchy, filename string) (map[string]int64, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading fixture file: %w", err)
	}
	return loadData(ctx, ex, h, data)
}

func loadData(ctx context.Context, ex database.Executor, h *hierarchy.Hierarchy, data []byte) (map[string]int64, error) {
	if !h.Closed() {
		return nil, errs.New(errs.KindConfig, "cannot load data into an open hierarchy")
	}
	records, err := parseRecords(h, data)
	if err != nil {
		return nil, err
	}

	ids := map[string]int64{}
	// Insert records whose references are all resolved, repeating until
	// done. No progress with records left means a reference cycle or a
	// dangling label.
	pending := records
	for len(pending) > 0 {
		var next []*record
		progressed := false
		for _, r := range pending {
			ready, err := referencesResolved(h, r, ids, records)
			if err != nil {
				return nil, err
			}
			if !ready {
				next = append(next, r)
				continue
			}
			id, err := insert(ctx, ex, h, r, ids)
			if err != nil {
				return nil, err
			}
			ids[r.label] = id
			progressed = true
		}
		if !progressed {
			return nil, errs.New(errs.KindConfig,
				"record %q has circular label references", next[0].label)
		}
		pending = next
	}
	return ids, nil
}

// parseRecords walks the YAML document manually so that classes, labels
// and fields keep their document order; decoding into plain maps would
// make insert order nondeterministic.
func parseRecords(h *hierarchy.Hierarchy, data []byte) ([]*record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errs.New(errs.KindConfig, "fixture file must be a mapping of class names")
	}

	var records []*record
	seen := map[string]bool{}
	for i := 0; i < len(root.Content); i += 2 {
		class := root.Content[i].Value
		node, ok := h.Lookup(class)
		if !ok {
			return nil, errs.New(errs.KindConfig, "fixture declares unknown class %s", class)
		}
		labels := root.Content[i+1]
		if labels.Kind != yaml.MappingNode {
			return nil, errs.New(errs.KindConfig, "records of %s must be a mapping of labels", class)
		}
		for j := 0; j < len(labels.Content); j += 2 {
			label := labels.Content[j].Value
			if seen[label] {
				return nil, errs.New(errs.KindConfig, "label %q is used twice", label)
			}
			seen[label] = true
			r := &record{class: class, node: node, label: label, values: map[string]any{}}
			fieldsNode := labels.Content[j+1]
			if fieldsNode.Kind != yaml.MappingNode {
				return nil, errs.New(errs.KindConfig,
					"record %q must be a mapping of fields", label)
			}
			for k := 0; k < len(fieldsNode.Content); k += 2 {
				name := fieldsNode.Content[k].Value
				var value any
				if err := fieldsNode.Content[k+1].Decode(&value); err != nil {
					return nil, fmt.Errorf("decoding %s.%s: %w", label, name, err)
				}
				r.order = append(r.order, name)
				r.values[name] = value
			}
			if err := checkFields(h, r); err != nil {
				return nil, err
			}
			records = append(records, r)
		}
	}
	return records, nil
}

// lineage returns the record's classes root-first, ending with its own.
func lineage(h *hierarchy.Hierarchy, node int) []int {
	anc := h.Ancestors(node)
	out := make([]int, 0, len(anc)+1)
	for i := len(anc) - 1; i >= 0; i-- {
		out = append(out, anc[i])
	}
	return append(out, node)
}

// fieldsOf maps every settable field of the record's class, inherited ones
// included.
func fieldsOf(h *hierarchy.Hierarchy, node int) map[string]hierarchy.Field {
	out := map[string]hierarchy.Field{}
	for _, n := range lineage(h, node) {
		for _, f := range h.Node(n).Fields {
			out[f.Name] = f
		}
	}
	return out
}

func checkFields(h *hierarchy.Hierarchy, r *record) error {
	known := fieldsOf(h, r.node)
	for _, name := range r.order {
		if _, ok := known[name]; !ok {
			return errs.New(errs.KindConfig,
				"record %q sets unknown field %s of %s", r.label, name, r.class)
		}
	}
	return nil
}

func referencesResolved(h *hierarchy.Hierarchy, r *record, ids map[string]int64, all []*record) (bool, error) {
	known := fieldsOf(h, r.node)
	for _, name := range r.order {
		f := known[name]
		if f.References == "" {
			continue
		}
		label, ok := r.values[name].(string)
		if !ok {
			return false, errs.New(errs.KindConfig,
				"record %q: reference field %s needs a label", r.label, name)
		}
		if _, ok := ids[label]; ok {
			continue
		}
		if !labelDeclared(all, label) {
			return false, errs.New(errs.KindConfig,
				"record %q references undeclared label %q", r.label, label)
		}
		return false, nil
	}
	return true, nil
}

func labelDeclared(all []*record, label string) bool {
	for _, r := range all {
		if r.label == label {
			return true
		}
	}
	return false
}

// insert writes one record. Under joined-table inheritance the root table
// row is created first (carrying the discriminator), then each descendant
// table row reusing the generated id. Single-table records are one insert
// into the shared table.
func insert(ctx context.Context, ex database.Executor, h *hierarchy.Hierarchy, r *record, ids map[string]int64) (int64, error) {
	cfg := h.Node(r.node).Config
	known := fieldsOf(h, r.node)

	columnValue := func(name string) (any, error) {
		f := known[name]
		if f.References == "" {
			return r.values[name], nil
		}
		label := r.values[name].(string)
		return ids[label], nil
	}

	if cfg.Inheritance == hierarchy.SingleTable {
		shared := h.Node(cfg.Base).Table()
		columns := []string{cfg.TypeColumn}
		values := []any{cfg.TypeName}
		for _, name := range r.order {
			v, err := columnValue(name)
			if err != nil {
				return 0, err
			}
			columns = append(columns, name)
			values = append(values, v)
		}
		return ex.Insert(ctx, shared, columns, values)
	}

	var id int64
	for i, n := range lineage(h, r.node) {
		node := h.Node(n)
		var columns []string
		var values []any
		if i == 0 {
			if cfg.Inheritance != hierarchy.None {
				columns = append(columns, cfg.TypeColumn)
				values = append(values, cfg.TypeName)
			}
		} else {
			columns = append(columns, "id")
			values = append(values, id)
		}
		local := map[string]bool{}
		for _, f := range node.Fields {
			local[f.Name] = true
		}
		for _, name := range r.order {
			if !local[name] {
				continue
			}
			v, err := columnValue(name)
			if err != nil {
				return 0, err
			}
			columns = append(columns, name)
			values = append(values, v)
		}
		rowID, err := ex.Insert(ctx, node.Table(), columns, values)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			id = rowID
		}
	}
	return id, nil
}
