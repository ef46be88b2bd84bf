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

package planner

import (
	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/query/planner/plandef"
)

// planFilter pushes a filter as close to the scans that bind its variables
// as semantics allow. Conjunctions are split so each conjunct travels
// independently. Filters never cross an OPTIONAL or MINUS boundary: doing
// so would change which left rows survive.
func (p *planner) planFilter(expr algebra.Expr, input algebra.Operator) (*plandef.Plan, error) {
	return p.planFilters(splitConjunction(expr), input)
}

func (p *planner) planFilters(filters []algebra.Expr, input algebra.Operator) (*plandef.Plan, error) {
	// Flatten stacked filters so all conjuncts push down together.
	for {
		inner, ok := input.(*algebra.Filter)
		if !ok {
			break
		}
		filters = append(filters, splitConjunction(inner.Expr)...)
		input = inner.Input
	}

	switch in := input.(type) {
	case *algebra.BGP:
		return p.planBGP(in.Patterns, filters)

	case *algebra.Union:
		// A filter over a union applies to each arm independently.
		left, err := p.planFilters(filters, in.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.planFilters(filters, in.Right)
		if err != nil {
			return nil, err
		}
		return &plandef.Plan{
			Operator:  new(plandef.UnionOp),
			Inputs:    []*plandef.Plan{left, right},
			Variables: left.Variables.Union(right.Variables),
		}, nil

	case *algebra.Join:
		// Push each conjunct into whichever side binds all its
		// variables; what's left stays above the join.
		leftVars := newStringSet(algebra.OperatorVars(in.Left))
		rightVars := newStringSet(algebra.OperatorVars(in.Right))
		var leftPush, rightPush, keep []algebra.Expr
		for _, f := range filters {
			vars := algebra.ExprVars(f)
			switch {
			case covers(leftVars, vars):
				leftPush = append(leftPush, f)
			case covers(rightVars, vars):
				rightPush = append(rightPush, f)
			default:
				keep = append(keep, f)
			}
		}
		join := &algebra.Join{
			Left:  filterOver(in.Left, leftPush),
			Right: filterOver(in.Right, rightPush),
		}
		plan, err := p.planJoin(join)
		if err != nil {
			return nil, err
		}
		for _, f := range keep {
			plan = p.above(&plandef.SelectExpr{Expr: f}, plan)
		}
		return plan, nil
	}

	// OPTIONAL, MINUS, and everything else: the filter stays put.
	plan, err := p.plan(input)
	if err != nil {
		return nil, err
	}
	for _, f := range filters {
		plan = p.above(&plandef.SelectExpr{Expr: f}, plan)
	}
	return plan, nil
}

// applyReadyFilters wraps the plan in the filters whose variables are all
// bound, returning the filters still waiting.
func (p *planner) applyReadyFilters(plan *plandef.Plan, filters []algebra.Expr,
	bound map[string]bool) (*plandef.Plan, []algebra.Expr) {

	var waiting []algebra.Expr
	for _, f := range filters {
		if covers(bound, algebra.ExprVars(f)) {
			plan = p.above(&plandef.SelectExpr{Expr: f}, plan)
		} else {
			waiting = append(waiting, f)
		}
	}
	return plan, waiting
}

// splitConjunction breaks nested ANDs into their conjuncts.
func splitConjunction(expr algebra.Expr) []algebra.Expr {
	if and, ok := expr.(*algebra.And); ok {
		return append(splitConjunction(and.Left), splitConjunction(and.Right)...)
	}
	return []algebra.Expr{expr}
}

func filterOver(op algebra.Operator, filters []algebra.Expr) algebra.Operator {
	for _, f := range filters {
		op = &algebra.Filter{Input: op, Expr: f}
	}
	return op
}

func newStringSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

func covers(set map[string]bool, names []string) bool {
	for _, name := range names {
		if !set[name] {
			return false
		}
	}
	return true
}
