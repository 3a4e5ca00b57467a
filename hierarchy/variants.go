package hierarchy

import (
	"strings"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/naming"
)

// ResolveVariant determines which class a stored row represents, given the
// table or view it was read from and the row's discriminator value. The
// lookup is precomputed by Close and is the inverse of the type-name
// assignment: for every class the pair (its table, its type name) resolves
// back to that class.
//
// An unregistered discriminator value is a data-integrity fault and is
// reported as an unknown-variant error, distinct from the configuration
// errors raised for an unknown source or an open hierarchy.
func (h *Hierarchy) ResolveVariant(source, discriminator string) (*Node, error) {
	if !h.closed {
		return nil, errs.New(errs.KindConfig,
			"cannot resolve variants: hierarchy is not closed")
	}
	table := source
	if !strings.HasPrefix(source, naming.TablePrefix) {
		table = naming.TablePrefix + source
	}
	class, err := naming.TableToClass(table)
	if err != nil {
		return nil, err
	}
	idx, ok := h.index[class]
	if !ok {
		return nil, errs.New(errs.KindConfig,
			"source %q does not belong to a declared class", source)
	}
	tree := h.variants[h.nodes[idx].Config.Base]
	v, ok := tree[discriminator]
	if !ok {
		return nil, errs.New(errs.KindUnknownVariant,
			"no class with type name %q in the tree of %s", discriminator, class)
	}
	return &h.nodes[v], nil
}
