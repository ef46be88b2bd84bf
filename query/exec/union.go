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

// union streams the left input's rows, then the right input's. Rows are
// padded with unbound slots for columns the producing side doesn't have.
type union struct {
	left  queryOperator
	right queryOperator
	cols  Columns

	onRight bool
}

func newUnion(inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	def := new(plandef.UnionOp)
	left, right, err := buildInputs(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	return &union{
		left:  left,
		right: right,
		cols:  mergeColumns(left.columns(), right.columns()),
	}, nil
}

func (op *union) operator() plandef.Operator { return new(plandef.UnionOp) }
func (op *union) columns() Columns           { return op.cols }

func (op *union) reset() {
	op.left.reset()
	op.right.reset()
	op.onRight = false
}

func (op *union) next(ctx context.Context) (row, bool, error) {
	if !op.onRight {
		r, ok, err := op.left.next(ctx)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return remapRow(op.cols, op.left.columns(), r), true, nil
		}
		op.onRight = true
	}
	r, ok, err := op.right.next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return remapRow(op.cols, op.right.columns(), r), true, nil
}
