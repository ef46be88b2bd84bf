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

package plandef

import (
	"strconv"
	"strings"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/util/cmp"
)

// A UnionOp Operator concatenates its two inputs, left then right, without
// deduplicating.
type UnionOp struct {
	_ byte
}

func (*UnionOp) anOperator() {}

// Key implements cmp.Key.
func (op *UnionOp) Key(b *strings.Builder) {
	b.WriteString("Union")
}

func (op *UnionOp) String() string {
	return cmp.GetKey(op)
}

// Projection is an Operator which restricts the output rows to the selected
// variables.
type Projection struct {
	// The variables to keep, in output order.
	Select []*Variable
	// The set of variables that'll be in the output.
	Variables VarSet
}

func (*Projection) anOperator() {}

// Key implements cmp.Key.
func (p *Projection) Key(k *strings.Builder) {
	k.WriteString("Project")
	for _, item := range p.Select {
		k.WriteByte(' ')
		item.Key(k)
	}
}

func (p *Projection) String() string {
	return cmp.GetKey(p)
}

// A GroupByOp Operator partitions its input rows by the values of the key
// variables and emits one row per group. It is a materialization point: the
// whole input is consumed before the first output row.
type GroupByOp struct {
	Keys       []*Variable
	Aggregates []AggBinding
}

// An AggBinding names the output variable one aggregate is bound to.
type AggBinding struct {
	Out *Variable
	Agg algebra.Aggregate
}

func (*GroupByOp) anOperator() {}

// Key implements cmp.Key.
func (op *GroupByOp) Key(b *strings.Builder) {
	b.WriteString("GroupBy")
	for _, key := range op.Keys {
		b.WriteByte(' ')
		key.Key(b)
	}
	for _, agg := range op.Aggregates {
		b.WriteByte(' ')
		agg.Out.Key(b)
		b.WriteByte('=')
		b.WriteString(agg.Agg.String())
	}
}

func (op *GroupByOp) String() string {
	return cmp.GetKey(op)
}

// OrderByOp is an operator that will order the results based on the order
// conditions. It is a materialization point.
type OrderByOp struct {
	OrderBy []OrderCondition
}

// OrderCondition describes a single sort key.
type OrderCondition struct {
	Direction SortDirection
	On        algebra.Expr
}

// Key implements cmp.Key.
func (o *OrderCondition) Key(k *strings.Builder) {
	k.WriteString(o.Direction.String())
	k.WriteByte('(')
	k.WriteString(o.On.String())
	k.WriteByte(')')
}

func (o *OrderCondition) String() string {
	return cmp.GetKey(o)
}

// SortDirection is the direction that a sort should be in.
type SortDirection int

const (
	// SortAsc indicates an ascending sort, i.e. smaller values appear
	// before larger values.
	SortAsc SortDirection = iota
	// SortDesc indicates a descending sort, i.e. larger values appear
	// before smaller values.
	SortDesc
)

func (d SortDirection) String() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

func (*OrderByOp) anOperator() {}

// Key implements cmp.Key.
func (o *OrderByOp) Key(k *strings.Builder) {
	k.WriteString("OrderBy")
	for _, cond := range o.OrderBy {
		k.WriteByte(' ')
		cond.Key(k)
	}
}

func (o *OrderByOp) String() string {
	return cmp.GetKey(o)
}

// LimitAndOffsetOp is an operator that will paginate the results.
type LimitAndOffsetOp struct {
	Paging LimitOffset
}

// LimitOffset contains paging related values.
type LimitOffset struct {
	// Limit or Offset can be nil if not explicitly specified in the query.
	Limit  *uint64
	Offset *uint64
}

// Key implements cmp.Key.
func (l *LimitOffset) Key(k *strings.Builder) {
	if l.Limit != nil {
		k.WriteString("Lmt ")
		k.WriteString(strconv.FormatUint(*l.Limit, 10))
	}
	if l.Limit != nil && l.Offset != nil {
		k.WriteByte(' ')
	}
	if l.Offset != nil {
		k.WriteString("Off ")
		k.WriteString(strconv.FormatUint(*l.Offset, 10))
	}
}

func (l *LimitOffset) String() string {
	return cmp.GetKey(l)
}

func (*LimitAndOffsetOp) anOperator() {}

// Key implements cmp.Key.
func (lop *LimitAndOffsetOp) Key(k *strings.Builder) {
	k.WriteString("LimitOffset (")
	lop.Paging.Key(k)
	k.WriteByte(')')
}

func (lop *LimitAndOffsetOp) String() string {
	return cmp.GetKey(lop)
}

// DistinctOp is an operator that will remove the duplicate rows from the
// results, preserving first-occurrence order.
type DistinctOp struct {
	_ byte
}

func (*DistinctOp) anOperator() {}

// Key implements cmp.Key.
func (d *DistinctOp) Key(k *strings.Builder) {
	k.WriteString("Distinct")
}

func (d *DistinctOp) String() string {
	return cmp.GetKey(d)
}

// ReducedOp is an operator that removes adjacent duplicate rows. It is a
// cheaper cousin of DistinctOp that needs no unbounded seen-set.
type ReducedOp struct {
	_ byte
}

func (*ReducedOp) anOperator() {}

// Key implements cmp.Key.
func (r *ReducedOp) Key(k *strings.Builder) {
	k.WriteString("Reduced")
}

func (r *ReducedOp) String() string {
	return cmp.GetKey(r)
}
