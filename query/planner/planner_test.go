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
	"testing"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats struct {
	total int
	preds map[rdf.IRI]int
}

func (s fixedStats) TotalQuads() int {
	return s.total
}

func (s fixedStats) PredicateCardinality(p rdf.IRI) int {
	return s.preds[p]
}

var testStats = fixedStats{
	total: 10000,
	preds: map[rdf.IRI]int{
		rdf.NewIRI("p:knows"): 1000,
		rdf.NewIRI("p:age"):   10,
	},
}

func v(name string) *algebra.Var {
	return algebra.NewVar(name)
}

func c(iri string) *algebra.Constant {
	return algebra.NewConstant(rdf.NewIRI(iri))
}

func pat(s, p, o algebra.Term) algebra.QuadPattern {
	return algebra.QuadPattern{
		Subject:   s,
		Predicate: p,
		Object:    o,
		Graph:     algebra.NewConstant(rdf.DefaultGraph{}),
	}
}

func Test_GreedyJoinOrdering(t *testing.T) {
	// The age pattern is far more selective than knows, so it goes first
	// even though knows is listed first.
	query := &algebra.BGP{Patterns: []algebra.QuadPattern{
		pat(v("x"), c("p:knows"), v("y")),
		pat(v("y"), c("p:age"), v("a")),
	}}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"LoopJoin (inner) ?y\n"+
			"\tLookup(?y <p:age> ?a DEFAULT)\n"+
			"\tLookup(?x <p:knows> $y DEFAULT)\n",
		plan.String())
	assert.Equal(t, "?a ?x ?y", plan.Variables.String())
}

func Test_PlanIsDeterministic(t *testing.T) {
	query := &algebra.BGP{Patterns: []algebra.QuadPattern{
		pat(v("x"), c("p:knows"), v("y")),
		pat(v("y"), c("p:age"), v("a")),
		pat(v("x"), c("p:age"), v("b")),
	}}
	first, err := Prepare(query, testStats)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Prepare(query, testStats)
		require.NoError(t, err)
		assert.Equal(t, first.String(), again.String())
	}
}

func Test_CartesianWithinBGP(t *testing.T) {
	// No shared variable between the patterns: explicit product.
	query := &algebra.BGP{Patterns: []algebra.QuadPattern{
		pat(v("x"), c("p:age"), v("a")),
		pat(v("y"), c("p:knows"), v("z")),
	}}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"Product\n"+
			"\tLookup(?x <p:age> ?a DEFAULT)\n"+
			"\tLookup(?y <p:knows> ?z DEFAULT)\n",
		plan.String())
}

func Test_FilterPushdownIntoBGP(t *testing.T) {
	// The filter on ?a applies right above the lookup that binds ?a,
	// inside the loop join.
	query := &algebra.Filter{
		Expr: &algebra.Compare{Op: algebra.OpGreater, Left: v("a"), Right: algebra.NewConstant(rdf.NewInteger(21))},
		Input: &algebra.BGP{Patterns: []algebra.QuadPattern{
			pat(v("x"), c("p:knows"), v("y")),
			pat(v("y"), c("p:age"), v("a")),
		}},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"LoopJoin (inner) ?y\n"+
			"\tSelect (?a > \"21\"^^<http://www.w3.org/2001/XMLSchema#integer>)\n"+
			"\t\tLookup(?y <p:age> ?a DEFAULT)\n"+
			"\tLookup(?x <p:knows> $y DEFAULT)\n",
		plan.String())
}

func Test_FilterDoesNotCrossOptional(t *testing.T) {
	// BOUND-style filters over an OPTIONAL must stay above the left join.
	query := &algebra.Filter{
		Expr: &algebra.Not{Expr: &algebra.Bound{Var: v("a")}},
		Input: &algebra.LeftJoin{
			Left:  &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("x"), c("p:knows"), v("y"))}},
			Right: &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("y"), c("p:age"), v("a"))}},
		},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"Select !(BOUND(?a))\n"+
			"\tHashJoin (left) ?y\n"+
			"\t\tLookup(?x <p:knows> ?y DEFAULT)\n"+
			"\t\tLookup(?y <p:age> ?a DEFAULT)\n",
		plan.String())
}

func Test_ConjunctionSplits(t *testing.T) {
	// Each conjunct pushes into the side of the join that binds it.
	knowsSide := &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("x"), c("p:knows"), v("y"))}}
	ageSide := &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("z"), c("p:age"), v("a"))}}
	query := &algebra.Filter{
		Expr: &algebra.And{
			Left:  &algebra.Bound{Var: v("x")},
			Right: &algebra.Bound{Var: v("a")},
		},
		Input: &algebra.Join{Left: knowsSide, Right: ageSide},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"Product\n"+
			"\tSelect BOUND(?x)\n"+
			"\t\tLookup(?x <p:knows> ?y DEFAULT)\n"+
			"\tSelect BOUND(?a)\n"+
			"\t\tLookup(?z <p:age> ?a DEFAULT)\n",
		plan.String())
}

func Test_HashJoinForSubtrees(t *testing.T) {
	query := &algebra.Join{
		Left: &algebra.Union{
			Left:  &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("x"), c("p:knows"), v("y"))}},
			Right: &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("y"), c("p:knows"), v("x"))}},
		},
		Right: &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("y"), c("p:age"), v("a"))}},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"HashJoin (inner) ?y\n"+
			"\tUnion\n"+
			"\t\tLookup(?x <p:knows> ?y DEFAULT)\n"+
			"\t\tLookup(?y <p:knows> ?x DEFAULT)\n"+
			"\tLookup(?y <p:age> ?a DEFAULT)\n",
		plan.String())
}

func Test_HashJoinBuildsSmallerSide(t *testing.T) {
	// The age side is far smaller, so it becomes the right (build) input
	// even though the query writes it on the left.
	query := &algebra.Join{
		Left: &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("y"), c("p:age"), v("a"))}},
		Right: &algebra.Union{
			Left:  &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("x"), c("p:knows"), v("y"))}},
			Right: &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("y"), c("p:knows"), v("x"))}},
		},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"HashJoin (inner) ?y\n"+
			"\tUnion\n"+
			"\t\tLookup(?x <p:knows> ?y DEFAULT)\n"+
			"\t\tLookup(?y <p:knows> ?x DEFAULT)\n"+
			"\tLookup(?y <p:age> ?a DEFAULT)\n",
		plan.String())
}

func Test_MinusKeepsLeftVariables(t *testing.T) {
	query := &algebra.Minus{
		Left:  &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("x"), c("p:knows"), v("y"))}},
		Right: &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("x"), c("p:age"), v("a"))}},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t, "Minus ?x", plan.Operator.String())
	assert.Equal(t, "?x ?y", plan.Variables.String())
}

func Test_SolutionModifiers(t *testing.T) {
	limit := uint64(10)
	query := &algebra.Slice{
		Offset: 5,
		Limit:  &limit,
		Input: &algebra.Distinct{
			Input: &algebra.Project{
				Vars: []*algebra.Var{v("x")},
				Input: &algebra.OrderBy{
					Conditions: []algebra.OrderCondition{{Expr: v("x")}},
					Input: &algebra.BGP{Patterns: []algebra.QuadPattern{
						pat(v("x"), c("p:knows"), v("y")),
					}},
				},
			},
		},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t,
		"LimitOffset (Lmt 10 Off 5)\n"+
			"\tDistinct\n"+
			"\t\tProject ?x\n"+
			"\t\t\tOrderBy ASC(?x)\n"+
			"\t\t\t\tLookup(?x <p:knows> ?y DEFAULT)\n",
		plan.String())
	assert.Equal(t, "?x", plan.Variables.String())
}

func Test_PathPlan(t *testing.T) {
	query := &algebra.Path{
		Subject: v("x"),
		Path:    &algebra.OneOrMore{Path: &algebra.Predicate{IRI: rdf.NewIRI("p:knows")}},
		Object:  v("y"),
		Graph:   algebra.NewConstant(rdf.DefaultGraph{}),
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t, "PathLookup(?x (<p:knows>)+ ?y DEFAULT)\n", plan.String())
	assert.Equal(t, "?x ?y", plan.Variables.String())
}

func Test_GroupPlan(t *testing.T) {
	query := &algebra.Group{
		Input: &algebra.BGP{Patterns: []algebra.QuadPattern{pat(v("x"), c("p:knows"), v("y"))}},
		Keys:  []*algebra.Var{v("x")},
		Aggregates: []algebra.AggregateBinding{
			{Var: v("n"), Aggregate: algebra.Aggregate{Op: algebra.AggCount}},
		},
	}
	plan, err := Prepare(query, testStats)
	require.NoError(t, err)
	assert.Equal(t, "GroupBy ?x ?n=COUNT(*)", plan.Operator.String())
	assert.Equal(t, "?n ?x", plan.Variables.String())
}

func Test_EmptyBGPRejected(t *testing.T) {
	_, err := Prepare(&algebra.BGP{}, testStats)
	assert.Error(t, err)
}
