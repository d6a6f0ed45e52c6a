// Package plan defines the physical plan nodes the executor pipeline
// consumes (spec.md's PlanNode: "output schema, children, op-specific
// params"). Building one is the planner/binder's job (spec.md §1 treats
// SQL parsing and binding as external collaborators); this package only
// carries the already-resolved tree, the same thin seam the teacher's
// internal/sql/planner.Plan interface occupies, generalized to the
// iterator-model operator set spec.md §4.6 requires instead of the
// teacher's flat CreateTablePlan/InsertPlan/SeqScanPlan switch.
package plan

import (
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/expr"
)

// Node is one physical operator. OutputSchema describes the tuples it
// produces; Children lists its inputs (empty for leaves like SeqScan,
// Values).
type Node interface {
	OutputSchema() catalog.Schema
	Children() []Node
}

type baseNode struct {
	schema   catalog.Schema
	children []Node
}

func (b *baseNode) OutputSchema() catalog.Schema { return b.schema }
func (b *baseNode) Children() []Node             { return b.children }

// SeqScan iterates every live tuple of a table, optionally pushing a
// filter predicate down so Filter doesn't need a separate pass.
type SeqScan struct {
	baseNode
	TableName string
	Predicate expr.Expression // nilable
}

func NewSeqScan(schema catalog.Schema, tableName string, predicate expr.Expression) *SeqScan {
	return &SeqScan{baseNode: baseNode{schema: schema}, TableName: tableName, Predicate: predicate}
}

// IndexScan returns the RID(s) a constant key resolves to via a named
// index, then fetches each matching tuple.
type IndexScan struct {
	baseNode
	TableName string
	IndexName string
	Key       []expr.Expression // constant key-component expressions, one per index key column
}

func NewIndexScan(schema catalog.Schema, tableName, indexName string, key []expr.Expression) *IndexScan {
	return &IndexScan{baseNode: baseNode{schema: schema}, TableName: tableName, IndexName: indexName, Key: key}
}

// Values emits literal rows carried directly in the plan (spec.md's
// `VALUES` clause and the right-hand side of a literal INSERT).
type Values struct {
	baseNode
	Rows [][]expr.Expression
}

func NewValues(schema catalog.Schema, rows [][]expr.Expression) *Values {
	return &Values{baseNode: baseNode{schema: schema}, Rows: rows}
}

// Projection applies Exprs, one per output column, to each child tuple.
type Projection struct {
	baseNode
	Child Node
	Exprs []expr.Expression
}

func NewProjection(schema catalog.Schema, child Node, exprs []expr.Expression) *Projection {
	return &Projection{baseNode: baseNode{schema: schema, children: []Node{child}}, Child: child, Exprs: exprs}
}

// Filter emits only child tuples for which Predicate is definitely true
// (spec.md §4.6: "NULL is not truthy").
type Filter struct {
	baseNode
	Child     Node
	Predicate expr.Expression
}

func NewFilter(child Node, predicate expr.Expression) *Filter {
	return &Filter{baseNode: baseNode{schema: child.OutputSchema(), children: []Node{child}}, Child: child, Predicate: predicate}
}

// Limit emits at most N tuples from Child, in order.
type Limit struct {
	baseNode
	Child Node
	Count int
}

func NewLimit(child Node, count int) *Limit {
	return &Limit{baseNode: baseNode{schema: child.OutputSchema(), children: []Node{child}}, Child: child, Count: count}
}

// Insert materializes Child's tuples into TableName, reordering/defaulting
// per ColumnMapping (spec.md §4.6: "a vector of length table_columns.len(),
// each slot either Some(index_into_values) or None"), updating every
// index registered on the table, and emitting the inserted tuple when
// Returning is set.
type Insert struct {
	baseNode
	Child         Node
	TableName     string
	ColumnMapping []int // -1 marks "use column default"
	Returning     bool
}

func NewInsert(schema catalog.Schema, child Node, tableName string, mapping []int, returning bool) *Insert {
	return &Insert{baseNode: baseNode{schema: schema, children: []Node{child}}, Child: child, TableName: tableName, ColumnMapping: mapping, Returning: returning}
}

// Delete marks every tuple Child produces as deleted in the heap and
// removes the corresponding entries from every index on the table.
type Delete struct {
	baseNode
	Child     Node
	TableName string
	Returning bool
}

func NewDelete(schema catalog.Schema, child Node, tableName string, returning bool) *Delete {
	return &Delete{baseNode: baseNode{schema: schema, children: []Node{child}}, Child: child, TableName: tableName, Returning: returning}
}

// JoinType selects HashJoin's null-extension behavior.
type JoinType uint8

const (
	InnerJoin JoinType = iota
	LeftJoin
)

// HashJoin builds an in-memory hash table on Right (the conventionally
// smaller side) keyed by RightKeys, then probes it with each Left tuple
// using LeftKeys (spec.md §4.6).
type HashJoin struct {
	baseNode
	Left, Right         Node
	LeftKeys, RightKeys []expr.Expression
	Type                JoinType
}

func NewHashJoin(schema catalog.Schema, left, right Node, leftKeys, rightKeys []expr.Expression, jt JoinType) *HashJoin {
	return &HashJoin{
		baseNode:  baseNode{schema: schema, children: []Node{left, right}},
		Left:      left,
		Right:     right,
		LeftKeys:  leftKeys,
		RightKeys: rightKeys,
		Type:      jt,
	}
}

// AggregateFunc enumerates the aggregate functions spec.md §4.6 lists.
type AggregateFunc uint8

const (
	CountStar AggregateFunc = iota
	Count
	Sum
	Min
	Max
)

func (f AggregateFunc) String() string {
	switch f {
	case CountStar:
		return "COUNT(*)"
	case Count:
		return "COUNT"
	case Sum:
		return "SUM"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	default:
		return "?"
	}
}

// AggregateExpr pairs one aggregate function with its argument
// expression (ignored for CountStar).
type AggregateExpr struct {
	Func AggregateFunc
	Arg  expr.Expression
}

// Aggregation groups Child's tuples by GroupBys and computes Aggregates
// per group, falling back to a single implicit group when GroupBys is
// empty (spec.md §4.6: "Group-by + aggregate functions ... with
// single-group fallback").
type Aggregation struct {
	baseNode
	Child      Node
	GroupBys   []expr.Expression
	Aggregates []AggregateExpr
}

func NewAggregation(schema catalog.Schema, child Node, groupBys []expr.Expression, aggregates []AggregateExpr) *Aggregation {
	return &Aggregation{
		baseNode:   baseNode{schema: schema, children: []Node{child}},
		Child:      child,
		GroupBys:   groupBys,
		Aggregates: aggregates,
	}
}
