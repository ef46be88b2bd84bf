// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package exec evaluates physical query plans against a store snapshot.
//
// Evaluation is pull-based: every operator implements queryOperator and
// produces one row per next call, doing bounded local work. A single query
// runs on one goroutine; the only materialization points are the operators
// whose semantics require consuming their whole input (sort, group, the
// hash join build side, distinct's seen-set). The resource governor is
// consulted at each of those points and once per emitted top-level row.
package exec

import (
	"context"
	"fmt"
	"strings"

	"github.com/ebay/quarry/limits"
	"github.com/ebay/quarry/query/planner/plandef"
	"github.com/ebay/quarry/rdf"
	"github.com/ebay/quarry/store"
)

// A Value is one binding slot in a result row: an RDF term plus, when the
// term came from the store, its dictionary ID. The zero Value is unbound.
type Value struct {
	// ID is the term's dictionary ID, or 0 when the value was computed by
	// an expression rather than read from the store.
	ID store.ID
	// Term is nil when the slot is unbound.
	Term rdf.Term
}

// Bound reports whether the slot holds a term.
func (v Value) Bound() bool {
	return v.Term != nil
}

func (v Value) String() string {
	if v.Term == nil {
		return "_"
	}
	return v.Term.String()
}

// key appends a canonical representation used for join keys and
// distinct/group identity. It is exact term identity, not hash identity:
// two values produce the same key iff they hold the same term.
func (v Value) key(b *strings.Builder) {
	if v.Term == nil {
		b.WriteByte(0)
		return
	}
	b.WriteString(v.Term.String())
}

// Columns describes the variables of a row, in row order.
type Columns []*plandef.Variable

// IndexOf returns the index in Columns at which the variable appears, and
// true, or (0, false) if it's not in the columns. Variables are compared by
// pointer; the planner canonicalizes them.
func (c Columns) IndexOf(v *plandef.Variable) (int, bool) {
	for i, x := range c {
		if x == v {
			return i, true
		}
	}
	return 0, false
}

// MustIndexOf is IndexOf for variables that are always present; absence is
// a planner bug.
func (c Columns) MustIndexOf(v *plandef.Variable) int {
	idx, exists := c.IndexOf(v)
	if !exists {
		panic(fmt.Sprintf("didn't find expected variable %s in columns %s", v, c))
	}
	return idx
}

// IndexOfName is IndexOf by variable name, for expressions, which refer to
// variables by name.
func (c Columns) IndexOfName(name string) (int, bool) {
	for i, x := range c {
		if x.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (c Columns) String() string {
	strs := make([]string, len(c))
	for i, v := range c {
		strs[i] = v.String()
	}
	return strings.Join(strs, " ")
}

// A row holds one value per column.
type row []Value

func (r row) key() string {
	var b strings.Builder
	for i := range r {
		if i > 0 {
			b.WriteByte(1)
		}
		r[i].key(&b)
	}
	return b.String()
}

// rowBytes approximates the memory retained by materializing the row, for
// governor accounting.
func rowBytes(r row) uint64 {
	return uint64(48*len(r) + 48)
}

// A queryOperator is one node of a running query. next returns the
// operator's rows one at a time, in the operator's defined order; the
// returned row is valid until the following next or reset. reset rewinds
// the operator so the next call starts over; loop joins use it to re-run
// their inner side per outer row.
type queryOperator interface {
	operator() plandef.Operator
	columns() Columns
	next(ctx context.Context) (row, bool, error)
	reset()
}

// evalContext carries what operators need at build time.
type evalContext struct {
	snap *store.Snapshot
	dict *store.Dictionary
	gov  *limits.Governor
	// binder supplies values for Binding terms; nil outside a loop join's
	// inner side.
	binder *binder
}

// An Evaluation is a running query: a built operator tree plus the
// governor accounting for its top-level rows.
type Evaluation struct {
	root queryOperator
	gov  *limits.Governor
}

// NewEvaluation builds the operator tree for the plan. The snapshot
// provides the data, the dictionary resolves terms, and the governor
// enforces this query's limits.
func NewEvaluation(plan *plandef.Plan, snap *store.Snapshot, dict *store.Dictionary,
	gov *limits.Governor) (*Evaluation, error) {

	root, err := buildOperator(plan, evalContext{snap: snap, dict: dict, gov: gov})
	if err != nil {
		return nil, err
	}
	return &Evaluation{root: root, gov: gov}, nil
}

// Columns returns the output columns of the query.
func (e *Evaluation) Columns() Columns {
	return e.root.columns()
}

// Next returns the next result row. It returns (nil, false, nil) when the
// results are exhausted. The returned slice is valid until the following
// call.
func (e *Evaluation) Next(ctx context.Context) ([]Value, bool, error) {
	r, ok, err := e.root.next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	if err := e.gov.AddRow(ctx); err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// buildOperator constructs the operator for one plan node, building its
// inputs first.
func buildOperator(plan *plandef.Plan, ec evalContext) (queryOperator, error) {
	switch op := plan.Operator.(type) {
	case *plandef.Lookup:
		return newLookup(op, ec), nil
	case *plandef.PathLookup:
		return newPathLookup(op, ec)
	case *plandef.LoopJoin:
		return newLoopJoin(op, plan.Inputs, ec)
	case *plandef.HashJoin:
		return newHashJoin(op, plan.Inputs, ec)
	case *plandef.Product:
		return newProduct(plan.Inputs, ec)
	case *plandef.MinusOp:
		return newMinus(op, plan.Inputs, ec)
	case *plandef.UnionOp:
		return newUnion(plan.Inputs, ec)
	case *plandef.SelectExpr:
		return newSelect(op, plan.Inputs, ec)
	case *plandef.Bind:
		return newBind(op, plan.Inputs, ec)
	case *plandef.GroupByOp:
		return newGroupBy(op, plan.Inputs, ec)
	case *plandef.OrderByOp:
		return newOrderBy(op, plan.Inputs, ec)
	case *plandef.DistinctOp:
		return newDistinct(plan.Inputs, ec)
	case *plandef.ReducedOp:
		return newReduced(plan.Inputs, ec)
	case *plandef.Projection:
		return newProjection(op, plan.Inputs, ec)
	case *plandef.LimitAndOffsetOp:
		return newLimitOffset(op, plan.Inputs, ec)
	}
	return nil, fmt.Errorf("exec: unexpected plan operator %T", plan.Operator)
}

func opInputError(op plandef.Operator, want, got int) error {
	return fmt.Errorf("exec: operator %v expects %d input(s), got %d", op, want, got)
}

// buildInput builds the single input of a one-input operator.
func buildInput(op plandef.Operator, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	if len(inputs) != 1 {
		return nil, opInputError(op, 1, len(inputs))
	}
	return buildOperator(inputs[0], ec)
}

// buildInputs builds both inputs of a two-input operator.
func buildInputs(op plandef.Operator, inputs []*plandef.Plan, ec evalContext) (left, right queryOperator, err error) {
	if len(inputs) != 2 {
		return nil, nil, opInputError(op, 2, len(inputs))
	}
	left, err = buildOperator(inputs[0], ec)
	if err != nil {
		return nil, nil, err
	}
	right, err = buildOperator(inputs[1], ec)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// mergeColumns appends the columns of b that a doesn't already have.
func mergeColumns(a, b Columns) Columns {
	out := make(Columns, len(a), len(a)+len(b))
	copy(out, a)
	for _, v := range b {
		if _, ok := out.IndexOf(v); !ok {
			out = append(out, v)
		}
	}
	return out
}

// remapRow projects a row from its own columns onto the output columns,
// leaving unmatched output columns unbound.
func remapRow(out Columns, cols Columns, r row) row {
	mapped := make(row, len(out))
	for i, v := range cols {
		if idx, ok := out.IndexOf(v); ok {
			mapped[idx] = r[i]
		}
	}
	return mapped
}
