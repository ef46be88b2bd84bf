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

	"github.com/ebay/quarry/query/planner/plandef"
)

// loopJoin runs its right side once per left row. The left row's values for
// the join variables are published through a binder; Binding terms in the
// right side's lookups read them when the right side is reset and re-run.
// Nothing is materialized.
type loopJoin struct {
	def    *plandef.LoopJoin
	left   queryOperator
	right  queryOperator
	ec     evalContext
	binder *binder
	cols   Columns
	// joinIdx is each join variable's column index in the left input.
	joinIdx []int

	leftRow  row
	rightRun bool
}

func newLoopJoin(def *plandef.LoopJoin, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	if len(inputs) != 2 {
		return nil, opInputError(def, 2, len(inputs))
	}
	left, err := buildOperator(inputs[0], ec)
	if err != nil {
		return nil, err
	}
	b := newBinder(ec.binder)
	innerEC := ec
	innerEC.binder = b
	right, err := buildOperator(inputs[1], innerEC)
	if err != nil {
		return nil, err
	}
	op := &loopJoin{
		def:    def,
		left:   left,
		right:  right,
		ec:     ec,
		binder: b,
		cols:   mergeColumns(left.columns(), right.columns()),
	}
	for _, v := range def.Variables {
		op.joinIdx = append(op.joinIdx, left.columns().MustIndexOf(v))
	}
	return op, nil
}

func (op *loopJoin) operator() plandef.Operator { return op.def }
func (op *loopJoin) columns() Columns           { return op.cols }

func (op *loopJoin) reset() {
	op.left.reset()
	op.right.reset()
	op.leftRow = nil
	op.rightRun = false
}

func (op *loopJoin) next(ctx context.Context) (row, bool, error) {
	for {
		if op.leftRow == nil {
			leftRow, ok, err := op.left.next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			op.leftRow = append(row(nil), leftRow...)
			for i, v := range op.def.Variables {
				op.binder.bind(v, op.leftRow[op.joinIdx[i]])
			}
			op.right.reset()
			op.rightRun = true
		}
		rightRow, ok, err := op.right.next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			op.leftRow = nil
			continue
		}
		out := remapRow(op.cols, op.left.columns(), op.leftRow)
		rightCols := op.right.columns()
		for i, v := range rightCols {
			idx := op.cols.MustIndexOf(v)
			if !out[idx].Bound() {
				out[idx] = rightRow[i]
			}
		}
		return out, true, nil
	}
}

// product emits every pairing of left and right rows. The planner only
// produces it for inputs sharing no variables, so merging is a plain
// concatenation.
type product struct {
	left  queryOperator
	right queryOperator
	ec    evalContext
	cols  Columns

	leftRow row
}

func newProduct(inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	def := new(plandef.Product)
	left, right, err := buildInputs(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	return &product{
		left:  left,
		right: right,
		ec:    ec,
		cols:  mergeColumns(left.columns(), right.columns()),
	}, nil
}

func (op *product) operator() plandef.Operator { return new(plandef.Product) }
func (op *product) columns() Columns           { return op.cols }

func (op *product) reset() {
	op.left.reset()
	op.right.reset()
	op.leftRow = nil
}

func (op *product) next(ctx context.Context) (row, bool, error) {
	for {
		if op.leftRow == nil {
			leftRow, ok, err := op.left.next(ctx)
			if err != nil || !ok {
				return nil, false, err
			}
			if err := op.ec.gov.Check(ctx); err != nil {
				return nil, false, err
			}
			op.leftRow = append(row(nil), leftRow...)
			op.right.reset()
		}
		rightRow, ok, err := op.right.next(ctx)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			op.leftRow = nil
			continue
		}
		out := remapRow(op.cols, op.left.columns(), op.leftRow)
		rightCols := op.right.columns()
		for i, v := range rightCols {
			out[op.cols.MustIndexOf(v)] = rightRow[i]
		}
		return out, true, nil
	}
}
