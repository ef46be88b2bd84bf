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
	"fmt"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/query/planner/plandef"
	"github.com/ebay/quarry/rdf"
)

// planBGP orders the patterns of a basic graph pattern greedily by
// estimated cardinality and chains them with loop joins, which probe the
// store's indexes using the variables already bound on the left. Filters
// are applied as soon as the variables they reference are bound.
func (p *planner) planBGP(patterns []algebra.QuadPattern, filters []algebra.Expr) (*plandef.Plan, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("planner: empty basic graph pattern")
	}

	remaining := make([]algebra.QuadPattern, len(patterns))
	copy(remaining, patterns)
	bound := make(map[string]bool)

	var plan *plandef.Plan
	for len(remaining) > 0 {
		next := p.pickNext(remaining, bound)
		pattern := remaining[next]
		remaining = append(remaining[:next], remaining[next+1:]...)

		if plan == nil {
			plan = p.lookupPlan(pattern, bound)
		} else {
			lookup := p.lookupPlan(pattern, bound)
			shared := plan.Variables.Intersect(lookup.Variables)
			if len(shared) > 0 {
				// A lookup can seek on the bound variables, so a
				// nested loop that feeds them in beats building a
				// hash table.
				plan = &plandef.Plan{
					Operator:  &plandef.LoopJoin{Variables: shared, Kind: plandef.JoinInner},
					Inputs:    []*plandef.Plan{plan, lookup},
					Variables: plan.Variables.Union(lookup.Variables),
				}
			} else {
				plan = &plandef.Plan{
					Operator:  new(plandef.Product),
					Inputs:    []*plandef.Plan{plan, lookup},
					Variables: plan.Variables.Union(lookup.Variables),
				}
			}
		}
		for _, v := range patternVars(pattern) {
			bound[v] = true
		}
		plan, filters = p.applyReadyFilters(plan, filters, bound)
	}
	// Filters over variables the patterns never bind still apply (and
	// reject every row unless BOUND-style expressions save them).
	for _, f := range filters {
		plan = p.above(&plandef.SelectExpr{Expr: f}, plan)
	}
	return plan, nil
}

// pickNext returns the index of the remaining pattern to join next: the
// smallest estimated cardinality among patterns sharing a variable with
// what's bound so far, or the smallest overall when none does (or at the
// start). Index order breaks ties, keeping planning deterministic.
func (p *planner) pickNext(remaining []algebra.QuadPattern, bound map[string]bool) int {
	best, bestEst := -1, uint64(0)
	bestShares := false
	for i, pattern := range remaining {
		shares := sharesVar(pattern, bound)
		est := p.estimate(pattern, bound)
		switch {
		case best == -1,
			shares && !bestShares,
			shares == bestShares && est < bestEst:
			best, bestEst, bestShares = i, est, shares
		}
	}
	return best
}

// estimate predicts how many quads the pattern matches given the variables
// already bound. Per-predicate statistics drive the estimate when the
// predicate is a known IRI; otherwise fixed constants graduated by the
// number of bound positions stand in.
func (p *planner) estimate(q algebra.QuadPattern, bound map[string]bool) uint64 {
	isBound := func(t algebra.Term) bool {
		switch t := t.(type) {
		case *algebra.Constant:
			return true
		case *algebra.Var:
			return bound[t.Name]
		}
		return false
	}
	s, o := isBound(q.Subject), isBound(q.Object)
	if c, ok := q.Predicate.(*algebra.Constant); ok {
		if iri, ok := c.Term.(rdf.IRI); ok {
			card := uint64(p.stats.PredicateCardinality(iri))
			switch {
			case s && o:
				return 1
			case s || o:
				return card/100 + 1
			default:
				return card + 1
			}
		}
	}
	n := 0
	for _, b := range []bool{s, o, isBound(q.Predicate)} {
		if b {
			n++
		}
	}
	switch n {
	case 3:
		return 1
	case 2:
		return 10
	case 1:
		return 1000
	}
	return uint64(p.stats.TotalQuads()) + 1
}

// estimatePlan predicts the output cardinality of a planned subtree. Leaf
// lookups use the same statistics as estimate; the structural rules above
// them are crude, but they only have to rank the two sides of a join.
func (p *planner) estimatePlan(plan *plandef.Plan) uint64 {
	in := func(i int) uint64 { return p.estimatePlan(plan.Inputs[i]) }
	switch op := plan.Operator.(type) {
	case *plandef.Lookup:
		return p.estimateLookup(op)
	case *plandef.PathLookup:
		return uint64(p.stats.TotalQuads()) + 1
	case *plandef.HashJoin, *plandef.LoopJoin:
		l, r := in(0), in(1)
		if r < l {
			return r
		}
		return l
	case *plandef.Product:
		return in(0) * in(1)
	case *plandef.UnionOp:
		return in(0) + in(1)
	case *plandef.SelectExpr:
		return in(0)/2 + 1
	default:
		return in(0)
	}
}

// estimateLookup mirrors estimate for a planned lookup: constants and
// bindings count as bound positions.
func (p *planner) estimateLookup(op *plandef.Lookup) uint64 {
	fixed := func(t plandef.Term) bool {
		switch t.(type) {
		case *plandef.Constant, *plandef.Binding:
			return true
		}
		return false
	}
	s, o := fixed(op.Subject), fixed(op.Object)
	if c, ok := op.Predicate.(*plandef.Constant); ok {
		if iri, ok := c.Term.(rdf.IRI); ok {
			card := uint64(p.stats.PredicateCardinality(iri))
			switch {
			case s && o:
				return 1
			case s || o:
				return card/100 + 1
			default:
				return card + 1
			}
		}
	}
	n := 0
	for _, b := range []bool{s, o, fixed(op.Predicate)} {
		if b {
			n++
		}
	}
	switch n {
	case 3:
		return 1
	case 2:
		return 10
	case 1:
		return 1000
	}
	return uint64(p.stats.TotalQuads()) + 1
}

// lookupPlan builds the leaf Lookup for a pattern. Variables already bound
// upstream become Bindings the loop join fills in per left row.
func (p *planner) lookupPlan(pattern algebra.QuadPattern, bound map[string]bool) *plandef.Plan {
	term := func(t algebra.Term) plandef.Term {
		if v, ok := t.(*algebra.Var); ok && bound[v.Name] {
			return &plandef.Binding{Var: p.variable(v.Name)}
		}
		return p.term(t)
	}
	op := &plandef.Lookup{
		Subject:   term(pattern.Subject),
		Predicate: term(pattern.Predicate),
		Object:    term(pattern.Object),
		Graph:     term(pattern.Graph),
	}
	return &plandef.Plan{
		Operator:  op,
		Variables: p.varSet(patternVars(pattern)),
	}
}

func patternVars(q algebra.QuadPattern) []string {
	var names []string
	for _, t := range []algebra.Term{q.Subject, q.Predicate, q.Object, q.Graph} {
		if v, ok := t.(*algebra.Var); ok {
			names = append(names, v.Name)
		}
	}
	return names
}

func sharesVar(q algebra.QuadPattern, bound map[string]bool) bool {
	for _, name := range patternVars(q) {
		if bound[name] {
			return true
		}
	}
	return false
}

// planJoin joins two planned subtrees. With a shared-variable key the right
// side is materialized into a hash table and the left side streams past
// it, so the input with the smaller estimated cardinality goes on the
// right; with no key the join is an explicit cartesian product.
func (p *planner) planJoin(j *algebra.Join) (*plandef.Plan, error) {
	left, err := p.plan(j.Left)
	if err != nil {
		return nil, err
	}
	right, err := p.plan(j.Right)
	if err != nil {
		return nil, err
	}
	shared := left.Variables.Intersect(right.Variables)
	var op plandef.Operator
	if len(shared) > 0 {
		if p.estimatePlan(left) < p.estimatePlan(right) {
			left, right = right, left
		}
		op = &plandef.HashJoin{Variables: shared, Kind: plandef.JoinInner}
	} else {
		op = new(plandef.Product)
	}
	return &plandef.Plan{
		Operator:  op,
		Inputs:    []*plandef.Plan{left, right},
		Variables: left.Variables.Union(right.Variables),
	}, nil
}

// planLeftJoin plans OPTIONAL. It always uses a hash join: left join needs
// per-left-row match tracking, which the hash table gives directly.
func (p *planner) planLeftJoin(j *algebra.LeftJoin) (*plandef.Plan, error) {
	left, err := p.plan(j.Left)
	if err != nil {
		return nil, err
	}
	right, err := p.plan(j.Right)
	if err != nil {
		return nil, err
	}
	op := &plandef.HashJoin{
		Variables: left.Variables.Intersect(right.Variables),
		Kind:      plandef.JoinLeft,
		Filter:    j.Filter,
	}
	return &plandef.Plan{
		Operator:  op,
		Inputs:    []*plandef.Plan{left, right},
		Variables: left.Variables.Union(right.Variables),
	}, nil
}
