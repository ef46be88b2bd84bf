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
	"fmt"
	"testing"

	"github.com/ebay/quarry/limits"
	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/rdf"
	"github.com/ebay/quarry/util/clocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupQuery(input algebra.Operator, keys []*algebra.Var, aggs ...algebra.AggregateBinding) *algebra.Group {
	return &algebra.Group{Input: input, Keys: keys, Aggregates: aggs}
}

func agg(out string, op algebra.AggregateOp, expr algebra.Expr) algebra.AggregateBinding {
	return algebra.AggregateBinding{
		Var:       v(out),
		Aggregate: algebra.Aggregate{Op: op, Expr: expr},
	}
}

func Test_GroupCount(t *testing.T) {
	f := setup(t, socialGraph()...)
	query := groupQuery(
		bgp(pat(v("x"), c(iri(knows)), v("y"))),
		[]*algebra.Var{v("x")},
		agg("n", algebra.AggCount, nil),
	)
	assert.Equal(t, []string{
		`?n="1"^^<http://www.w3.org/2001/XMLSchema#integer> ?x=<http://example.com/bob>`,
		`?n="2"^^<http://www.w3.org/2001/XMLSchema#integer> ?x=<http://example.com/alice>`,
	}, results(t, f.eval(t, query)))
}

func Test_GroupSumAvgMinMax(t *testing.T) {
	f := setup(t,
		rdf.NewTriple(iri("a"), iri("score"), rdf.NewInteger(4)),
		rdf.NewTriple(iri("a"), iri("score"), rdf.NewInteger(6)),
	)
	query := groupQuery(
		bgp(pat(v("x"), c(iri("score")), v("s"))),
		nil,
		agg("sum", algebra.AggSum, v("s")),
		agg("avg", algebra.AggAvg, v("s")),
		agg("min", algebra.AggMin, v("s")),
		agg("max", algebra.AggMax, v("s")),
	)
	assert.Equal(t, []string{
		`?avg="5"^^<http://www.w3.org/2001/XMLSchema#double>` +
			` ?max="6"^^<http://www.w3.org/2001/XMLSchema#integer>` +
			` ?min="4"^^<http://www.w3.org/2001/XMLSchema#integer>` +
			` ?sum="10"^^<http://www.w3.org/2001/XMLSchema#integer>`,
	}, results(t, f.eval(t, query)))
}

func Test_GroupCountDistinct(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("a", knows, "c"),
		tri("d", knows, "b"),
	)
	query := groupQuery(
		bgp(pat(v("x"), c(iri(knows)), v("y"))),
		nil,
		agg("all", algebra.AggCount, v("y")),
		algebra.AggregateBinding{
			Var:       v("uniq"),
			Aggregate: algebra.Aggregate{Op: algebra.AggCount, Expr: v("y"), Distinct: true},
		},
	)
	assert.Equal(t, []string{
		`?all="3"^^<http://www.w3.org/2001/XMLSchema#integer>` +
			` ?uniq="2"^^<http://www.w3.org/2001/XMLSchema#integer>`,
	}, results(t, f.eval(t, query)))
}

func Test_GroupEmptyInputStillOneGroup(t *testing.T) {
	f := setup(t, socialGraph()...)
	query := groupQuery(
		bgp(pat(v("x"), c(iri("absent")), v("y"))),
		nil,
		agg("n", algebra.AggCount, nil),
	)
	assert.Equal(t, []string{
		`?n="0"^^<http://www.w3.org/2001/XMLSchema#integer>`,
	}, results(t, f.eval(t, query)))
}

func Test_GroupEmptyInputWithKeysNoGroups(t *testing.T) {
	f := setup(t, socialGraph()...)
	query := groupQuery(
		bgp(pat(v("x"), c(iri("absent")), v("y"))),
		[]*algebra.Var{v("x")},
		agg("n", algebra.AggCount, nil),
	)
	assert.Empty(t, results(t, f.eval(t, query)))
}

func Test_GroupSumNonNumericUnbound(t *testing.T) {
	f := setup(t,
		rdf.NewTriple(iri("a"), iri("score"), rdf.NewInteger(4)),
		rdf.NewTriple(iri("a"), iri("score"), rdf.NewString("oops")),
	)
	query := groupQuery(
		bgp(pat(v("x"), c(iri("score")), v("s"))),
		nil,
		agg("sum", algebra.AggSum, v("s")),
		agg("n", algebra.AggCount, nil),
	)
	// The bad value poisons SUM but COUNT(*) is unaffected.
	assert.Equal(t, []string{
		`?n="2"^^<http://www.w3.org/2001/XMLSchema#integer> ?sum=_`,
	}, results(t, f.eval(t, query)))
}

func Test_GroupSample(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("a", knows, "c"),
	)
	query := groupQuery(
		bgp(pat(v("x"), c(iri(knows)), v("y"))),
		[]*algebra.Var{v("x")},
		agg("any", algebra.AggSample, v("y")),
	)
	got := results(t, f.eval(t, query))
	require.Len(t, got, 1)
	assert.Contains(t, []string{
		"?any=<http://example.com/b> ?x=<http://example.com/a>",
		"?any=<http://example.com/c> ?x=<http://example.com/a>",
	}, got[0])
}

func Test_GroupCeiling(t *testing.T) {
	var quads []rdf.Quad
	for i := 0; i < 200; i++ {
		quads = append(quads, rdf.NewTriple(
			iri(fmt.Sprintf("s%03d", i)), iri("score"), rdf.NewInteger(int64(i))))
	}
	f := setup(t, quads...)
	query := groupQuery(
		bgp(pat(v("x"), c(iri("score")), v("s"))),
		[]*algebra.Var{v("x")},
		agg("n", algebra.AggCount, nil),
	)
	gov := limits.NewGovernor(limits.Limits{MaxGroups: 100}, clocks.Wall)
	ev := f.evalWith(t, query, gov)

	_, _, err := ev.Next(context.Background())
	var limErr *limits.LimitError
	require.ErrorAs(t, err, &limErr)
	assert.Equal(t, limits.LimitGroups, limErr.Kind)
}
