package execution

import "github.com/novasql/core/internal/types"

// isTruthy reports whether a BOOLEAN value should let a row survive a
// WHERE/JOIN predicate (spec.md §4.6: "NULL is not truthy").
func isTruthy(v types.Value) bool {
	if v.IsNull() {
		return false
	}
	return v.Equal(types.NewBoolean(true))
}
