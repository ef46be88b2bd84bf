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

	"github.com/ebay/quarry/query/planner/plandef"
)

// hashJoin materializes its right input into a table keyed on the join
// variables and streams the left input past it. Streaming the left side is
// what makes the left-join variant work: each left row knows locally
// whether any right row matched it.
//
// Join-variable values are compared as terms, so a value read from the
// store joins with an equal value computed by an expression.
type hashJoin struct {
	def   *plandef.HashJoin
	left  queryOperator
	right queryOperator
	ec    evalContext
	cols  Columns
	// leftKeyIdx and rightKeyIdx are the join variables' column indexes in
	// each input.
	leftKeyIdx  []int
	rightKeyIdx []int

	table   map[string][]row
	allRows []row
	// unkeyed holds right rows with an unbound join variable; they can be
	// compatible with any probe key and are checked per left row.
	unkeyed []row
	// pending holds merged rows for the current left row not yet emitted.
	pending []row
}

func newHashJoin(def *plandef.HashJoin, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	left, right, err := buildInputs(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	op := &hashJoin{
		def:   def,
		left:  left,
		right: right,
		ec:    ec,
		cols:  mergeColumns(left.columns(), right.columns()),
	}
	for _, v := range def.Variables {
		op.leftKeyIdx = append(op.leftKeyIdx, left.columns().MustIndexOf(v))
		op.rightKeyIdx = append(op.rightKeyIdx, right.columns().MustIndexOf(v))
	}
	return op, nil
}

func (op *hashJoin) operator() plandef.Operator { return op.def }
func (op *hashJoin) columns() Columns           { return op.cols }

func (op *hashJoin) reset() {
	op.left.reset()
	op.right.reset()
	op.table = nil
	op.allRows = nil
	op.pending = nil
}

// build drains the right input into the hash table.
func (op *hashJoin) build(ctx context.Context) error {
	op.table = make(map[string][]row)
	for {
		r, ok, err := op.right.next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := op.ec.gov.Grow(ctx, rowBytes(r)); err != nil {
			return err
		}
		stored := append(row(nil), r...)
		key, keyed := joinKey(stored, op.rightKeyIdx)
		if keyed {
			op.table[key] = append(op.table[key], stored)
		} else {
			op.unkeyed = append(op.unkeyed, stored)
		}
		op.allRows = append(op.allRows, stored)
	}
}

func (op *hashJoin) next(ctx context.Context) (row, bool, error) {
	if op.table == nil {
		if err := op.build(ctx); err != nil {
			return nil, false, err
		}
	}
	for {
		if len(op.pending) > 0 {
			out := op.pending[0]
			op.pending = op.pending[1:]
			return out, true, nil
		}
		leftRow, ok, err := op.left.next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		matches := op.probe(leftRow)
		matched := false
		for _, rightRow := range matches {
			merged := op.merge(leftRow, rightRow)
			if op.def.Filter != nil {
				pass, err := effectiveBool(op.def.Filter, op.cols, merged)
				if err != nil || !pass {
					continue
				}
			}
			matched = true
			op.pending = append(op.pending, merged)
		}
		if !matched && op.def.Kind == plandef.JoinLeft {
			op.pending = append(op.pending, remapRow(op.cols, op.left.columns(), leftRow))
		}
	}
}

// probe returns the right rows compatible with the left row on the join
// variables. The hash path covers fully bound keys; unbound join variables
// on either side fall back to a compatibility scan.
func (op *hashJoin) probe(leftRow row) []row {
	key, keyed := joinKey(leftRow, op.leftKeyIdx)
	if !keyed {
		// An unbound join variable on the probe row is compatible with any
		// value; check compatibility row by row.
		var matches []row
		for _, rightRow := range op.allRows {
			if op.compatible(leftRow, rightRow) {
				matches = append(matches, rightRow)
			}
		}
		return matches
	}
	matches := op.table[key]
	if len(op.unkeyed) > 0 {
		matches = append([]row(nil), matches...)
		for _, rightRow := range op.unkeyed {
			if op.compatible(leftRow, rightRow) {
				matches = append(matches, rightRow)
			}
		}
	}
	return matches
}

func (op *hashJoin) compatible(leftRow, rightRow row) bool {
	for i := range op.leftKeyIdx {
		lv := leftRow[op.leftKeyIdx[i]]
		rv := rightRow[op.rightKeyIdx[i]]
		if !lv.Bound() || !rv.Bound() {
			continue
		}
		if lv.Term.String() != rv.Term.String() {
			return false
		}
	}
	return true
}

func (op *hashJoin) merge(leftRow, rightRow row) row {
	out := remapRow(op.cols, op.left.columns(), leftRow)
	rightCols := op.right.columns()
	for i, v := range rightCols {
		idx := op.cols.MustIndexOf(v)
		if !out[idx].Bound() {
			out[idx] = rightRow[i]
		}
	}
	return out
}

// joinKey builds the hash key from the row's join-variable values. keyed is
// false if any of them is unbound.
func joinKey(r row, idx []int) (key string, keyed bool) {
	var b strings.Builder
	for i, colIdx := range idx {
		if !r[colIdx].Bound() {
			return "", false
		}
		if i > 0 {
			b.WriteByte(1)
		}
		r[colIdx].key(&b)
	}
	return b.String(), true
}
