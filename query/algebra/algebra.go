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

// Package algebra defines the query algebra tree the engine accepts as
// input. A parser (external to this module) produces these trees; the
// planner turns them into physical plans. The types here are plain data
// with no behavior beyond printing.
package algebra

import (
	"fmt"
	"strings"

	"github.com/ebay/quarry/rdf"
)

// A Term fills one position of a quad pattern: either a Var to be bound by
// matching, or a Constant that must match exactly.
type Term interface {
	fmt.Stringer
	aTerm()
}

// A Var is a named query variable, e.g. ?x.
type Var struct {
	Name string
}

func (v *Var) String() string {
	return "?" + v.Name
}

// A Constant is a concrete RDF term appearing in the query.
type Constant struct {
	Term rdf.Term
}

func (c *Constant) String() string {
	return c.Term.String()
}

func (*Var) aTerm()      {}
func (*Constant) aTerm() {}

// NewVar is a convenience constructor used heavily in tests.
func NewVar(name string) *Var {
	return &Var{Name: name}
}

// NewConstant wraps an RDF term for use in a pattern position.
func NewConstant(term rdf.Term) *Constant {
	return &Constant{Term: term}
}

// A QuadPattern matches stored quads position by position. Every position
// must be non-nil; use a Constant holding rdf.DefaultGraph to restrict a
// pattern to the default graph.
type QuadPattern struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

func (p QuadPattern) String() string {
	return fmt.Sprintf("%v %v %v %v", p.Subject, p.Predicate, p.Object, p.Graph)
}

// An Operator is a node in the algebra tree.
type Operator interface {
	fmt.Stringer
	anOperator()
}

// BGP is a basic graph pattern: the conjunction of its quad patterns,
// joined on their shared variables. The planner is free to reorder the
// patterns.
type BGP struct {
	Patterns []QuadPattern
}

func (b *BGP) String() string {
	strs := make([]string, len(b.Patterns))
	for i, p := range b.Patterns {
		strs[i] = "{" + p.String() + "}"
	}
	return "BGP(" + strings.Join(strs, " ") + ")"
}

// Path matches pairs of nodes connected by a property path expression
// within one graph.
type Path struct {
	Subject Term
	Path    PathExpr
	Object  Term
	Graph   Term
}

func (p *Path) String() string {
	return fmt.Sprintf("Path(%v %v %v %v)", p.Subject, p.Path, p.Object, p.Graph)
}

// Join is the inner join of its two inputs on their shared variables. With
// no shared variables it degenerates to a cartesian product.
type Join struct {
	Left  Operator
	Right Operator
}

func (j *Join) String() string {
	return fmt.Sprintf("Join(%v, %v)", j.Left, j.Right)
}

// LeftJoin implements OPTIONAL: every left row is emitted, merged with each
// compatible right row when one exists, unchanged otherwise. Filter, if
// non-nil, conditions the match (a right row that fails it does not count as
// a match).
type LeftJoin struct {
	Left   Operator
	Right  Operator
	Filter Expr
}

func (j *LeftJoin) String() string {
	if j.Filter != nil {
		return fmt.Sprintf("LeftJoin(%v, %v, %v)", j.Left, j.Right, j.Filter)
	}
	return fmt.Sprintf("LeftJoin(%v, %v)", j.Left, j.Right)
}

// Union concatenates its inputs, left then right, without deduplicating.
type Union struct {
	Left  Operator
	Right Operator
}

func (u *Union) String() string {
	return fmt.Sprintf("Union(%v, %v)", u.Left, u.Right)
}

// Minus emits the left rows that are incompatible with every right row on
// their shared variables. A right row sharing no bound variable with a left
// row does not exclude it.
type Minus struct {
	Left  Operator
	Right Operator
}

func (m *Minus) String() string {
	return fmt.Sprintf("Minus(%v, %v)", m.Left, m.Right)
}

// Filter keeps the input rows for which the expression evaluates to true.
// Evaluation errors count as false.
type Filter struct {
	Input Operator
	Expr  Expr
}

func (f *Filter) String() string {
	return fmt.Sprintf("Filter(%v, %v)", f.Expr, f.Input)
}

// Extend binds one new variable on each input row to the value of the
// expression. An evaluation error leaves the variable unbound.
type Extend struct {
	Input Operator
	Var   *Var
	Expr  Expr
}

func (e *Extend) String() string {
	return fmt.Sprintf("Extend(%v, %v := %v)", e.Input, e.Var, e.Expr)
}

// Group partitions the input rows by the values of the key variables and
// emits one row per group carrying the keys and the aggregate results.
type Group struct {
	Input      Operator
	Keys       []*Var
	Aggregates []AggregateBinding
}

func (g *Group) String() string {
	var b strings.Builder
	b.WriteString("Group(")
	b.WriteString(g.Input.String())
	b.WriteString(", by:[")
	for i, key := range g.Keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key.String())
	}
	b.WriteString("]")
	for _, agg := range g.Aggregates {
		fmt.Fprintf(&b, ", %v := %v", agg.Var, agg.Aggregate)
	}
	b.WriteString(")")
	return b.String()
}

// An AggregateBinding names the output variable one aggregate is bound to.
type AggregateBinding struct {
	Var       *Var
	Aggregate Aggregate
}

// AggregateOp enumerates the supported aggregate functions.
type AggregateOp int

const (
	AggCount AggregateOp = iota
	AggSum
	AggAvg
	AggMin
	AggMax
	AggSample
)

func (op AggregateOp) String() string {
	switch op {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggSample:
		return "SAMPLE"
	}
	return fmt.Sprintf("AggregateOp(%d)", int(op))
}

// An Aggregate applies one aggregate function to an expression over the rows
// of a group. A nil Expr is only valid for AggCount and counts rows.
type Aggregate struct {
	Op       AggregateOp
	Expr     Expr
	Distinct bool
}

func (a Aggregate) String() string {
	arg := "*"
	if a.Expr != nil {
		arg = a.Expr.String()
	}
	if a.Distinct {
		return fmt.Sprintf("%v(DISTINCT %s)", a.Op, arg)
	}
	return fmt.Sprintf("%v(%s)", a.Op, arg)
}

// OrderBy sorts the input by the conditions in order, stable for equal keys.
type OrderBy struct {
	Input      Operator
	Conditions []OrderCondition
}

func (o *OrderBy) String() string {
	strs := make([]string, len(o.Conditions))
	for i, c := range o.Conditions {
		strs[i] = c.String()
	}
	return fmt.Sprintf("OrderBy(%v, %v)", o.Input, strings.Join(strs, " "))
}

// An OrderCondition is one sort key.
type OrderCondition struct {
	Expr       Expr
	Descending bool
}

func (c OrderCondition) String() string {
	if c.Descending {
		return fmt.Sprintf("DESC(%v)", c.Expr)
	}
	return fmt.Sprintf("ASC(%v)", c.Expr)
}

// Project restricts the output to the named variables.
type Project struct {
	Input Operator
	Vars  []*Var
}

func (p *Project) String() string {
	strs := make([]string, len(p.Vars))
	for i, v := range p.Vars {
		strs[i] = v.String()
	}
	return fmt.Sprintf("Project(%v, [%v])", p.Input, strings.Join(strs, " "))
}

// Distinct removes duplicate rows, preserving first-occurrence order.
type Distinct struct {
	Input Operator
}

func (d *Distinct) String() string {
	return fmt.Sprintf("Distinct(%v)", d.Input)
}

// Reduced permits (but does not require) removal of duplicate rows. It is
// implemented as removal of adjacent duplicates, which is cheaper than
// Distinct and needs no unbounded state.
type Reduced struct {
	Input Operator
}

func (r *Reduced) String() string {
	return fmt.Sprintf("Reduced(%v)", r.Input)
}

// Slice skips Offset input rows and then emits at most Limit rows. A nil
// Limit means no limit.
type Slice struct {
	Input  Operator
	Offset uint64
	Limit  *uint64
}

func (s *Slice) String() string {
	if s.Limit != nil {
		return fmt.Sprintf("Slice(%v, offset:%d limit:%d)", s.Input, s.Offset, *s.Limit)
	}
	return fmt.Sprintf("Slice(%v, offset:%d)", s.Input, s.Offset)
}

func (*BGP) anOperator()      {}
func (*Path) anOperator()     {}
func (*Join) anOperator()     {}
func (*LeftJoin) anOperator() {}
func (*Union) anOperator()    {}
func (*Minus) anOperator()    {}
func (*Filter) anOperator()   {}
func (*Extend) anOperator()   {}
func (*Group) anOperator()    {}
func (*OrderBy) anOperator()  {}
func (*Project) anOperator()  {}
func (*Distinct) anOperator() {}
func (*Reduced) anOperator()  {}
func (*Slice) anOperator()    {}
