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

// projection narrows rows to the selected variables, in selection order. A
// selected variable the input never binds stays as an unbound column.
type projection struct {
	def   *plandef.Projection
	input queryOperator
	cols  Columns
	// srcIdx[i] is the input column feeding output column i, or -1.
	srcIdx []int
}

func newProjection(def *plandef.Projection, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	op := &projection{def: def, input: input}
	for _, v := range def.Select {
		op.cols = append(op.cols, v)
		if idx, ok := input.columns().IndexOf(v); ok {
			op.srcIdx = append(op.srcIdx, idx)
		} else {
			op.srcIdx = append(op.srcIdx, -1)
		}
	}
	return op, nil
}

func (op *projection) operator() plandef.Operator { return op.def }
func (op *projection) columns() Columns           { return op.cols }
func (op *projection) reset()                     { op.input.reset() }

func (op *projection) next(ctx context.Context) (row, bool, error) {
	r, ok, err := op.input.next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	out := make(row, len(op.cols))
	for i, idx := range op.srcIdx {
		if idx >= 0 {
			out[i] = r[idx]
		}
	}
	return out, true, nil
}
