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

package exec

import (
	"context"
	"strings"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/query/planner/plandef"
	"github.com/ebay/quarry/rdf"
)

// groupBy partitions its input by the key variables' values and folds each
// partition through the aggregate accumulators. Grouping is incremental:
// the governor's group ceiling is checked as each new group appears, not
// after materializing them all. With no key variables the whole input is
// one group, which exists even when the input is empty.
type groupBy struct {
	def    *plandef.GroupByOp
	input  queryOperator
	ec     evalContext
	cols   Columns
	keyIdx []int

	groups []*group
	built  bool
	pos    int
}

type group struct {
	keyValues []Value
	accs      []accumulator
}

func newGroupBy(def *plandef.GroupByOp, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	op := &groupBy{def: def, input: input, ec: ec}
	for _, v := range def.Keys {
		op.cols = append(op.cols, v)
		op.keyIdx = append(op.keyIdx, input.columns().MustIndexOf(v))
	}
	for _, a := range def.Aggregates {
		op.cols = append(op.cols, a.Out)
	}
	return op, nil
}

func (op *groupBy) operator() plandef.Operator { return op.def }
func (op *groupBy) columns() Columns           { return op.cols }

func (op *groupBy) reset() {
	op.input.reset()
	op.groups = nil
	op.built = false
	op.pos = 0
}

func (op *groupBy) build(ctx context.Context) error {
	index := make(map[string]*group)
	inCols := op.input.columns()
	for {
		r, ok, err := op.input.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var b strings.Builder
		for _, idx := range op.keyIdx {
			r[idx].key(&b)
			b.WriteByte(1)
		}
		key := b.String()
		grp := index[key]
		if grp == nil {
			if err := op.ec.gov.AddGroup(ctx); err != nil {
				return err
			}
			if err := op.ec.gov.Grow(ctx, rowBytes(r)); err != nil {
				return err
			}
			grp = &group{keyValues: make([]Value, len(op.keyIdx))}
			for i, idx := range op.keyIdx {
				grp.keyValues[i] = r[idx]
			}
			for _, a := range op.def.Aggregates {
				grp.accs = append(grp.accs, newAccumulator(a.Agg))
			}
			index[key] = grp
			op.groups = append(op.groups, grp)
		}
		for i, a := range op.def.Aggregates {
			grp.accs[i].add(op.evalAggInput(a.Agg, inCols, r))
		}
	}
	// Aggregates over everything produce one row even from no input.
	if len(op.groups) == 0 && len(op.def.Keys) == 0 {
		if err := op.ec.gov.AddGroup(ctx); err != nil {
			return err
		}
		grp := &group{}
		for _, a := range op.def.Aggregates {
			grp.accs = append(grp.accs, newAccumulator(a.Agg))
		}
		op.groups = append(op.groups, grp)
	}
	return nil
}

// evalAggInput computes one row's contribution to an aggregate. For
// COUNT(*), which has no expression, the contribution is the row itself,
// identified by its full key so DISTINCT still works.
func (op *groupBy) evalAggInput(agg algebra.Aggregate, cols Columns, r row) aggInput {
	if agg.Expr == nil {
		return aggInput{key: r.key(), ok: true}
	}
	term, err := evalExpr(agg.Expr, cols, r)
	if err != nil {
		return aggInput{}
	}
	return aggInput{term: term, key: term.String(), ok: true}
}

func (op *groupBy) next(ctx context.Context) (row, bool, error) {
	if !op.built {
		if err := op.build(ctx); err != nil {
			return nil, false, err
		}
		op.built = true
	}
	if op.pos >= len(op.groups) {
		return nil, false, nil
	}
	grp := op.groups[op.pos]
	op.pos++
	out := make(row, len(op.cols))
	copy(out, grp.keyValues)
	for i, acc := range grp.accs {
		if term, ok := acc.result(); ok {
			out[len(op.def.Keys)+i] = Value{Term: term}
		}
	}
	return out, true, nil
}

// An aggInput is one row's evaluated contribution to an aggregate. ok is
// false when the expression errored, which poisons value-computing
// aggregates per SPARQL's error semantics.
type aggInput struct {
	term rdf.Term
	key  string
	ok   bool
}

// An accumulator folds one group's rows into one aggregate value. result
// returns ok=false when the aggregate's output is unbound, either from an
// evaluation error or from an empty group for MIN, MAX, and SAMPLE.
type accumulator interface {
	add(in aggInput)
	result() (rdf.Term, bool)
}

func newAccumulator(agg algebra.Aggregate) accumulator {
	var acc accumulator
	switch agg.Op {
	case algebra.AggCount:
		acc = &countAcc{}
	case algebra.AggSum:
		acc = &sumAcc{}
	case algebra.AggAvg:
		acc = &avgAcc{}
	case algebra.AggMin:
		acc = &minMaxAcc{min: true}
	case algebra.AggMax:
		acc = &minMaxAcc{}
	default:
		acc = &sampleAcc{}
	}
	if agg.Distinct {
		return &distinctAcc{inner: acc, seen: make(map[string]struct{})}
	}
	return acc
}

// distinctAcc drops repeated contributions before folding.
type distinctAcc struct {
	inner accumulator
	seen  map[string]struct{}
}

func (a *distinctAcc) add(in aggInput) {
	if in.ok {
		if _, dup := a.seen[in.key]; dup {
			return
		}
		a.seen[in.key] = struct{}{}
	}
	a.inner.add(in)
}

func (a *distinctAcc) result() (rdf.Term, bool) { return a.inner.result() }

type countAcc struct {
	n int64
}

func (a *countAcc) add(in aggInput) {
	if in.ok {
		a.n++
	}
}

func (a *countAcc) result() (rdf.Term, bool) { return rdf.NewInteger(a.n), true }

// numericFold is the shared numeric accumulation for SUM and AVG: integer
// arithmetic until a non-integer shows up, poisoned by any non-numeric
// contribution.
type numericFold struct {
	intSum   int64
	floatSum float64
	isFloat  bool
	n        int64
	err      bool
}

func (f *numericFold) add(in aggInput) {
	if f.err {
		return
	}
	lit, isLit := in.term.(rdf.Literal)
	if !in.ok || !isLit || !lit.IsNumeric() {
		f.err = true
		return
	}
	f.n++
	if !f.isFloat {
		if i, ok := lit.AsInt(); ok {
			f.intSum += i
			return
		}
		f.isFloat = true
		f.floatSum = float64(f.intSum)
	}
	v, ok := lit.AsFloat()
	if !ok {
		f.err = true
		return
	}
	f.floatSum += v
}

type sumAcc struct {
	fold numericFold
}

func (a *sumAcc) add(in aggInput) { a.fold.add(in) }

func (a *sumAcc) result() (rdf.Term, bool) {
	if a.fold.err {
		return nil, false
	}
	if a.fold.isFloat {
		return rdf.NewDouble(a.fold.floatSum), true
	}
	return rdf.NewInteger(a.fold.intSum), true
}

type avgAcc struct {
	fold numericFold
}

func (a *avgAcc) add(in aggInput) { a.fold.add(in) }

func (a *avgAcc) result() (rdf.Term, bool) {
	if a.fold.err {
		return nil, false
	}
	if a.fold.n == 0 {
		return rdf.NewInteger(0), true
	}
	sum := a.fold.floatSum
	if !a.fold.isFloat {
		sum = float64(a.fold.intSum)
	}
	return rdf.NewDouble(sum / float64(a.fold.n)), true
}

type minMaxAcc struct {
	min  bool
	best rdf.Term
	err  bool
}

func (a *minMaxAcc) add(in aggInput) {
	if a.err {
		return
	}
	if !in.ok {
		a.err = true
		return
	}
	if a.best == nil {
		a.best = in.term
		return
	}
	c := rdf.Compare(in.term, a.best)
	if (a.min && c < 0) || (!a.min && c > 0) {
		a.best = in.term
	}
}

func (a *minMaxAcc) result() (rdf.Term, bool) {
	if a.err || a.best == nil {
		return nil, false
	}
	return a.best, true
}

// sampleAcc keeps the first contribution; any value from the group is a
// valid sample.
type sampleAcc struct {
	term rdf.Term
}

func (a *sampleAcc) add(in aggInput) {
	if a.term == nil && in.ok && in.term != nil {
		a.term = in.term
	}
}

func (a *sampleAcc) result() (rdf.Term, bool) {
	return a.term, a.term != nil
}
