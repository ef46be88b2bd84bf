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

// limitOffset skips the first Offset rows and passes through at most Limit
// rows. Once the limit is reached it stops pulling from its input, so an
// upstream that could produce far more work is cut short.
type limitOffset struct {
	def     *plandef.LimitAndOffsetOp
	input   queryOperator
	skipped uint64
	emitted uint64
}

func newLimitOffset(def *plandef.LimitAndOffsetOp, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	return &limitOffset{def: def, input: input}, nil
}

func (op *limitOffset) operator() plandef.Operator { return op.def }
func (op *limitOffset) columns() Columns           { return op.input.columns() }

func (op *limitOffset) reset() {
	op.input.reset()
	op.skipped = 0
	op.emitted = 0
}

func (op *limitOffset) next(ctx context.Context) (row, bool, error) {
	if limit := op.def.Paging.Limit; limit != nil && op.emitted >= *limit {
		return nil, false, nil
	}
	for {
		r, ok, err := op.input.next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		if offset := op.def.Paging.Offset; offset != nil && op.skipped < *offset {
			op.skipped++
			continue
		}
		op.emitted++
		return r, true, nil
	}
}
