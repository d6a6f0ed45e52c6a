// Package errs defines the statement-boundary error kinds a query can
// fail with (spec.md §7): parse, bind, plan, buffer-pool, index, type,
// tuple and execution errors. All kinds share the single *Error type,
// which carries the category in its Kind field, so callers recover it with
// errors.As into *Error and read Kind; every kind wraps its
// underlying cause via %w so the original error from internal/buffer,
// internal/index/hash, internal/types etc. is never discarded.
package errs

import "fmt"

// Kind labels an error's category for display at the statement boundary
// (spec.md §7: "errors are reported ... with a short category label").
type Kind string

const (
	Parse      Kind = "ParseError"
	Bind       Kind = "BindError"
	Plan       Kind = "PlanError"
	BufferPool Kind = "BufferPoolError"
	Index      Kind = "IndexError"
	Type       Kind = "TypeError"
	Tuple      Kind = "TupleError"
	Execution  Kind = "ExecutionError"
)

// Error is the single error type every kind above produces: a category,
// a human detail (table name, column name, offending value — whatever is
// most useful for the statement that failed) and an optional wrapped
// cause.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap builds an Error around cause, labeled with kind and detail. It
// is the usual way internal/execution turns a lower-layer error
// (internal/buffer, internal/index/hash, internal/types, ...) into the
// statement-boundary shape spec.md §7 describes.
func Wrap(kind Kind, detail string, cause error) *Error {
	if cause == nil {
		return New(kind, detail)
	}
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}
