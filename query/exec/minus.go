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

// minus emits the left rows excluded by no right row. A right row excludes
// a left row when the two agree on every shared variable bound in both, and
// at least one shared variable is bound in both; a right row disjoint from
// the left row excludes nothing. Only the right side is materialized; left
// rows stream through.
type minus struct {
	def   *plandef.MinusOp
	left  queryOperator
	right queryOperator
	ec    evalContext
	// leftIdx and rightIdx are the shared variables' column indexes in
	// each input.
	leftIdx  []int
	rightIdx []int

	rightRows []row
	built     bool
}

func newMinus(def *plandef.MinusOp, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	left, right, err := buildInputs(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	op := &minus{def: def, left: left, right: right, ec: ec}
	for _, v := range def.Variables {
		op.leftIdx = append(op.leftIdx, left.columns().MustIndexOf(v))
		op.rightIdx = append(op.rightIdx, right.columns().MustIndexOf(v))
	}
	return op, nil
}

func (op *minus) operator() plandef.Operator { return op.def }
func (op *minus) columns() Columns           { return op.left.columns() }

func (op *minus) reset() {
	op.left.reset()
	op.right.reset()
	op.rightRows = nil
	op.built = false
}

func (op *minus) build(ctx context.Context) error {
	for {
		r, ok, err := op.right.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			op.built = true
			return nil
		}
		if err := op.ec.gov.Grow(ctx, rowBytes(r)); err != nil {
			return err
		}
		op.rightRows = append(op.rightRows, append(row(nil), r...))
	}
}

func (op *minus) next(ctx context.Context) (row, bool, error) {
	if !op.built {
		if err := op.build(ctx); err != nil {
			return nil, false, err
		}
	}
	for {
		leftRow, ok, err := op.left.next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		if !op.excluded(leftRow) {
			return leftRow, true, nil
		}
	}
}

func (op *minus) excluded(leftRow row) bool {
	for _, rightRow := range op.rightRows {
		overlap := false
		agrees := true
		for i := range op.leftIdx {
			lv := leftRow[op.leftIdx[i]]
			rv := rightRow[op.rightIdx[i]]
			if !lv.Bound() || !rv.Bound() {
				continue
			}
			overlap = true
			if lv.Term.String() != rv.Term.String() {
				agrees = false
				break
			}
		}
		if overlap && agrees {
			return true
		}
	}
	return false
}
