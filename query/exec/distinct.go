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

// distinct drops rows whose full value tuple has been emitted before. It
// streams, but the seen-set grows with the number of distinct rows, so it
// accounts that growth against the memory ceiling.
type distinct struct {
	input queryOperator
	ec    evalContext
	seen  map[string]struct{}
}

func newDistinct(inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(new(plandef.DistinctOp), inputs, ec)
	if err != nil {
		return nil, err
	}
	return &distinct{input: input, ec: ec, seen: make(map[string]struct{})}, nil
}

func (op *distinct) operator() plandef.Operator { return new(plandef.DistinctOp) }
func (op *distinct) columns() Columns           { return op.input.columns() }

func (op *distinct) reset() {
	op.input.reset()
	op.seen = make(map[string]struct{})
}

func (op *distinct) next(ctx context.Context) (row, bool, error) {
	for {
		r, ok, err := op.input.next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		key := r.key()
		if _, dup := op.seen[key]; dup {
			continue
		}
		if err := op.ec.gov.Grow(ctx, uint64(len(key))+16); err != nil {
			return nil, false, err
		}
		op.seen[key] = struct{}{}
		return r, true, nil
	}
}

// reduced drops adjacent duplicate rows. Unlike distinct it remembers only
// the previous row, so it runs in constant memory but only deduplicates
// runs, which is exactly the latitude REDUCED semantics allow.
type reduced struct {
	input queryOperator
	last  *string
}

func newReduced(inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(new(plandef.ReducedOp), inputs, ec)
	if err != nil {
		return nil, err
	}
	return &reduced{input: input}, nil
}

func (op *reduced) operator() plandef.Operator { return new(plandef.ReducedOp) }
func (op *reduced) columns() Columns           { return op.input.columns() }

func (op *reduced) reset() {
	op.input.reset()
	op.last = nil
}

func (op *reduced) next(ctx context.Context) (row, bool, error) {
	for {
		r, ok, err := op.input.next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		key := r.key()
		if op.last != nil && key == *op.last {
			continue
		}
		op.last = &key
		return r, true, nil
	}
}
