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
	"sort"

	"github.com/ebay/quarry/query/planner/plandef"
	"github.com/ebay/quarry/rdf"
)

// orderBy materializes its input and sorts it by the order conditions.
// Each condition's sort key is computed once per row; unbound values and
// evaluation errors sort before everything else. The sort is stable, so
// rows equal under every condition keep their input order.
type orderBy struct {
	def   *plandef.OrderByOp
	input queryOperator
	ec    evalContext

	sorted []sortRow
	built  bool
	pos    int
}

type sortRow struct {
	r row
	// keys[i] is the evaluated i-th order condition; nil for unbound or
	// evaluation errors.
	keys []rdf.Term
}

func newOrderBy(def *plandef.OrderByOp, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	return &orderBy{def: def, input: input, ec: ec}, nil
}

func (op *orderBy) operator() plandef.Operator { return op.def }
func (op *orderBy) columns() Columns           { return op.input.columns() }

func (op *orderBy) reset() {
	op.input.reset()
	op.sorted = nil
	op.built = false
	op.pos = 0
}

func (op *orderBy) build(ctx context.Context) error {
	cols := op.input.columns()
	for {
		r, ok, err := op.input.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := op.ec.gov.Grow(ctx, rowBytes(r)); err != nil {
			return err
		}
		sr := sortRow{r: append(row(nil), r...)}
		for _, cond := range op.def.OrderBy {
			term, err := evalExpr(cond.On, cols, sr.r)
			if err != nil {
				term = nil
			}
			sr.keys = append(sr.keys, term)
		}
		op.sorted = append(op.sorted, sr)
	}
	sort.SliceStable(op.sorted, func(i, j int) bool {
		a, b := op.sorted[i], op.sorted[j]
		for k, cond := range op.def.OrderBy {
			c := compareSortKeys(a.keys[k], b.keys[k])
			if c == 0 {
				continue
			}
			if cond.Direction == plandef.SortDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

// compareSortKeys orders evaluated sort keys: nil (unbound or error) sorts
// lowest, then terms in their total order.
func compareSortKeys(a, b rdf.Term) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return rdf.Compare(a, b)
}

func (op *orderBy) next(ctx context.Context) (row, bool, error) {
	if !op.built {
		if err := op.build(ctx); err != nil {
			return nil, false, err
		}
		op.built = true
	}
	if op.pos >= len(op.sorted) {
		return nil, false, nil
	}
	r := op.sorted[op.pos].r
	op.pos++
	return r, true, nil
}
