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

// selectOp filters rows by an expression's effective boolean value. A row
// whose evaluation errors is dropped, not a query failure.
type selectOp struct {
	def   *plandef.SelectExpr
	input queryOperator
}

func newSelect(def *plandef.SelectExpr, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	return &selectOp{def: def, input: input}, nil
}

func (op *selectOp) operator() plandef.Operator { return op.def }
func (op *selectOp) columns() Columns           { return op.input.columns() }
func (op *selectOp) reset()                     { op.input.reset() }

func (op *selectOp) next(ctx context.Context) (row, bool, error) {
	for {
		r, ok, err := op.input.next(ctx)
		if err != nil || !ok {
			return nil, false, err
		}
		pass, err := effectiveBool(op.def.Expr, op.input.columns(), r)
		if err == nil && pass {
			return r, true, nil
		}
	}
}

// bind extends each input row with one computed column. An evaluation error
// leaves the new column unbound; the row still flows through.
type bind struct {
	def   *plandef.Bind
	input queryOperator
	cols  Columns
}

func newBind(def *plandef.Bind, inputs []*plandef.Plan, ec evalContext) (queryOperator, error) {
	input, err := buildInput(def, inputs, ec)
	if err != nil {
		return nil, err
	}
	cols := append(Columns(nil), input.columns()...)
	cols = append(cols, def.Var)
	return &bind{def: def, input: input, cols: cols}, nil
}

func (op *bind) operator() plandef.Operator { return op.def }
func (op *bind) columns() Columns           { return op.cols }
func (op *bind) reset()                     { op.input.reset() }

func (op *bind) next(ctx context.Context) (row, bool, error) {
	r, ok, err := op.input.next(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	out := make(row, len(op.cols))
	copy(out, r)
	if term, err := evalExpr(op.def.Expr, op.input.columns(), r); err == nil {
		out[len(out)-1] = Value{Term: term}
	}
	return out, true, nil
}
