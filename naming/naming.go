// Package naming maps entity class names to the physical table namespace
// and back.
//
// A class called AdminUser is stored in the table "_admin_user" and exposed
// through the view "admin_user". The leading underscore marks the storage
// namespace: dropping it always yields the public view name, so the two
// namespaces can never collide.
package naming

import (
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/descent-db/descent/errs"
)

// TablePrefix marks physical table names, keeping them distinct from the
// view namespace.
const TablePrefix = "_"

// ClassToTable converts a CamelCase class name to its physical table name:
// "AdminUser" -> "_admin_user".
func ClassToTable(class string) string {
	return TablePrefix + inflect.Underscore(class)
}

// ClassToView converts a CamelCase class name to its public view name:
// "AdminUser" -> "admin_user". Identical to ClassToTable minus the storage
// prefix.
func ClassToView(class string) string {
	return inflect.Underscore(class)
}

// TableToClass is the inverse of ClassToTable. It fails for names that were
// not produced by this scheme: names without the storage prefix, and names
// whose reconstructed CamelCase form does not map back to the input (such
// as "_User", whose reconstruction "User" stores as "_user").
func TableToClass(table string) (string, error) {
	if !strings.HasPrefix(table, TablePrefix) {
		return "", errs.New(errs.KindNaming,
			"%q is not a physical table name: missing %q prefix", table, TablePrefix)
	}
	class := inflect.Camelize(strings.TrimPrefix(table, TablePrefix))
	if ClassToTable(class) != table {
		return "", errs.New(errs.KindNaming,
			"table name %q cannot be mapped back to a class name unambiguously", table)
	}
	return class, nil
}

// CheckInvertible reports whether a class name survives the round trip
// through its table name. Names that do not (for example Admin_user, whose
// table "_admin_user" reconstructs to AdminUser) are rejected at
// declaration time so planning never produces a non-invertible name.
func CheckInvertible(class string) error {
	round, err := TableToClass(ClassToTable(class))
	if err != nil {
		return err
	}
	if round != class {
		return errs.New(errs.KindNaming,
			"class name %q is not invertible: %q reconstructs to %q",
			class, ClassToTable(class), round)
	}
	return nil
}
