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

package algebra

import (
	"testing"

	"github.com/ebay/quarry/rdf"
	"github.com/stretchr/testify/assert"
)

func pattern(s, p, o string) QuadPattern {
	term := func(str string) Term {
		if str[0] == '?' {
			return NewVar(str[1:])
		}
		return NewConstant(rdf.NewIRI("http://example.com/" + str))
	}
	return QuadPattern{
		Subject:   term(s),
		Predicate: term(p),
		Object:    term(o),
		Graph:     NewConstant(rdf.DefaultGraph{}),
	}
}

func Test_OperatorString(t *testing.T) {
	bgp := &BGP{Patterns: []QuadPattern{pattern("?x", "knows", "?y")}}
	assert.Equal(t,
		"BGP({?x <http://example.com/knows> ?y DEFAULT})",
		bgp.String())

	limit := uint64(10)
	assert.Equal(t, "Slice(Distinct(BGP({?x <http://example.com/knows> ?y DEFAULT})), offset:5 limit:10)",
		(&Slice{Input: &Distinct{Input: bgp}, Offset: 5, Limit: &limit}).String())

	filter := &Filter{
		Input: bgp,
		Expr:  &Compare{Op: OpLess, Left: NewVar("x"), Right: NewConstant(rdf.NewInteger(3))},
	}
	assert.Equal(t,
		`Filter((?x < "3"^^<http://www.w3.org/2001/XMLSchema#integer>), BGP({?x <http://example.com/knows> ?y DEFAULT}))`,
		filter.String())
}

func Test_PathString(t *testing.T) {
	knows := &Predicate{IRI: rdf.NewIRI("http://example.com/knows")}
	path := &Path{
		Subject: NewVar("x"),
		Path:    &OneOrMore{Path: knows},
		Object:  NewVar("y"),
		Graph:   NewConstant(rdf.DefaultGraph{}),
	}
	assert.Equal(t, "Path(?x (<http://example.com/knows>)+ ?y DEFAULT)", path.String())

	alt := &Alternative{Left: knows, Right: &Inverse{Path: knows}}
	assert.Equal(t,
		"(<http://example.com/knows> | ^(<http://example.com/knows>))",
		alt.String())
}

func Test_ExprVars(t *testing.T) {
	expr := &And{
		Left: &Compare{Op: OpGreater, Left: NewVar("age"), Right: NewConstant(rdf.NewInteger(21))},
		Right: &Or{
			Left:  &Bound{Var: NewVar("name")},
			Right: &Not{Expr: &Compare{Op: OpEqual, Left: NewVar("age"), Right: NewVar("limit")}},
		},
	}
	assert.Equal(t, []string{"age", "limit", "name"}, ExprVars(expr))
}

func Test_OperatorVars(t *testing.T) {
	bgp := &BGP{Patterns: []QuadPattern{pattern("?x", "knows", "?y")}}
	assert.Equal(t, []string{"x", "y"}, OperatorVars(bgp))

	// Minus right-side vars do not escape.
	minus := &Minus{Left: bgp, Right: &BGP{Patterns: []QuadPattern{pattern("?x", "age", "?z")}}}
	assert.Equal(t, []string{"x", "y"}, OperatorVars(minus))

	extend := &Extend{Input: bgp, Var: NewVar("n"), Expr: &Constant{Term: rdf.NewInteger(1)}}
	assert.Equal(t, []string{"n", "x", "y"}, OperatorVars(extend))

	group := &Group{
		Input: bgp,
		Keys:  []*Var{NewVar("x")},
		Aggregates: []AggregateBinding{
			{Var: NewVar("count"), Aggregate: Aggregate{Op: AggCount}},
		},
	}
	assert.Equal(t, []string{"count", "x"}, OperatorVars(group))
}
