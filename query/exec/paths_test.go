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

func path(s algebra.Term, p algebra.PathExpr, o algebra.Term) *algebra.Path {
	return &algebra.Path{
		Subject: s,
		Path:    p,
		Object:  o,
		Graph:   algebra.NewConstant(rdf.DefaultGraph{}),
	}
}

func pathIn(s algebra.Term, p algebra.PathExpr, o algebra.Term, g algebra.Term) *algebra.Path {
	return &algebra.Path{Subject: s, Path: p, Object: o, Graph: g}
}

func pred(name string) *algebra.Predicate {
	return &algebra.Predicate{IRI: iri(name)}
}

func Test_PathOneOrMore(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "c"),
	)
	ev := f.eval(t, path(v("x"), &algebra.OneOrMore{Path: pred(knows)}, v("y")))
	assert.Equal(t, []string{
		"?x=<http://example.com/a> ?y=<http://example.com/b>",
		"?x=<http://example.com/a> ?y=<http://example.com/c>",
		"?x=<http://example.com/b> ?y=<http://example.com/c>",
	}, results(t, ev))
}

func Test_PathOneOrMoreCycle(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "a"),
	)
	// The cycle leads back to each start, so every ordered pair shows up,
	// and the walk terminates despite the loop.
	ev := f.eval(t, path(v("x"), &algebra.OneOrMore{Path: pred(knows)}, v("y")))
	assert.Equal(t, []string{
		"?x=<http://example.com/a> ?y=<http://example.com/a>",
		"?x=<http://example.com/a> ?y=<http://example.com/b>",
		"?x=<http://example.com/b> ?y=<http://example.com/a>",
		"?x=<http://example.com/b> ?y=<http://example.com/b>",
	}, results(t, ev))
}

func Test_PathZeroOrMoreIncludesSelf(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
	)
	ev := f.eval(t, path(c(iri("a")), &algebra.ZeroOrMore{Path: pred(knows)}, v("y")))
	assert.Equal(t, []string{
		"?y=<http://example.com/a>",
		"?y=<http://example.com/b>",
	}, results(t, ev))
}

func Test_PathZeroOrMoreUnknownStart(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
	)
	// A zero-length path relates a term to itself even when the store has
	// never seen it.
	ev := f.eval(t, path(c(iri("stranger")), &algebra.ZeroOrMore{Path: pred(knows)}, v("y")))
	assert.Equal(t, []string{
		"?y=<http://example.com/stranger>",
	}, results(t, ev))
}

func Test_PathFixedObject(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "c"),
	)
	ev := f.eval(t, path(v("x"), &algebra.OneOrMore{Path: pred(knows)}, c(iri("c"))))
	assert.Equal(t, []string{
		"?x=<http://example.com/a>",
		"?x=<http://example.com/b>",
	}, results(t, ev))
}

func Test_PathBothFixed(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "c"),
	)
	reachable := path(c(iri("a")), &algebra.OneOrMore{Path: pred(knows)}, c(iri("c")))
	assert.Len(t, results(t, f.eval(t, reachable)), 1)

	unreachable := path(c(iri("c")), &algebra.OneOrMore{Path: pred(knows)}, c(iri("a")))
	assert.Empty(t, results(t, f.eval(t, unreachable)))
}

func Test_PathScopedToNamedGraph(t *testing.T) {
	f := setup(t,
		rdf.NewQuad(iri("a"), iri(knows), iri("b"), iri("g1")),
		tri("b", knows, "c"),
	)
	ev := f.eval(t, pathIn(v("x"), &algebra.OneOrMore{Path: pred(knows)}, v("y"), c(iri("g1"))))
	assert.Equal(t, []string{
		"?x=<http://example.com/a> ?y=<http://example.com/b>",
	}, results(t, ev))
}

func Test_PathUnknownGraphMatchesNothing(t *testing.T) {
	f := setup(t,
		rdf.NewQuad(iri("a"), iri(knows), iri("b"), iri("g1")),
		rdf.NewQuad(iri("b"), iri(knows), iri("c"), iri("g1")),
	)
	// A graph the store never interned holds no edges; the walk must not
	// widen to every graph.
	ev := f.eval(t, pathIn(v("x"), &algebra.OneOrMore{Path: pred(knows)}, v("y"), c(iri("nowhere"))))
	assert.Empty(t, results(t, ev))
}

func Test_PathInverse(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
	)
	ev := f.eval(t, path(c(iri("b")), &algebra.Inverse{Path: pred(knows)}, v("x")))
	assert.Equal(t, []string{
		"?x=<http://example.com/a>",
	}, results(t, ev))
}

func Test_PathSequence(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", "worksAt", "acme"),
	)
	expr := &algebra.Sequence{Left: pred(knows), Right: pred("worksAt")}
	ev := f.eval(t, path(c(iri("a")), expr, v("org")))
	assert.Equal(t, []string{
		"?org=<http://example.com/acme>",
	}, results(t, ev))
}

func Test_PathAlternative(t *testing.T) {
	f := setup(t,
		tri("a", "likes", "b"),
		tri("a", "admires", "c"),
	)
	expr := &algebra.Alternative{Left: pred("likes"), Right: pred("admires")}
	ev := f.eval(t, path(c(iri("a")), expr, v("y")))
	assert.Equal(t, []string{
		"?y=<http://example.com/b>",
		"?y=<http://example.com/c>",
	}, results(t, ev))
}

func Test_PathZeroOrOne(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "c"),
	)
	ev := f.eval(t, path(c(iri("a")), &algebra.ZeroOrOne{Path: pred(knows)}, v("y")))
	assert.Equal(t, []string{
		"?y=<http://example.com/a>",
		"?y=<http://example.com/b>",
	}, results(t, ev))
}

func Test_PathSameVariableBothEnds(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "a"),
		tri("c", knows, "d"),
	)
	ev := f.eval(t, path(v("x"), &algebra.OneOrMore{Path: pred(knows)}, v("x")))
	assert.Equal(t, []string{
		"?x=<http://example.com/a>",
		"?x=<http://example.com/b>",
	}, results(t, ev))
}

func Test_PathJoinsWithPattern(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "c"),
		rdf.NewTriple(iri("c"), iri(age), rdf.NewInteger(40)),
	)
	query := &algebra.Join{
		Left:  path(c(iri("a")), &algebra.OneOrMore{Path: pred(knows)}, v("y")),
		Right: bgp(pat(v("y"), c(iri(age)), v("a"))),
	}
	assert.Equal(t, []string{
		`?a="40"^^<http://www.w3.org/2001/XMLSchema#integer> ?y=<http://example.com/c>`,
	}, results(t, f.eval(t, query)))
}

func Test_PathDepthCeiling(t *testing.T) {
	var quads []rdf.Quad
	prev := "n00"
	for i := 1; i <= 20; i++ {
		next := fmt.Sprintf("n%02d", i)
		quads = append(quads, tri(prev, knows, next))
		prev = next
	}
	f := setup(t, quads...)
	gov := limits.NewGovernor(limits.Limits{MaxPropertyPathDepth: 5}, clocks.Wall)
	ev := f.evalWith(t, path(c(iri("n00")), &algebra.OneOrMore{Path: pred(knows)}, v("y")), gov)

	_, _, err := ev.Next(context.Background())
	var limErr *limits.LimitError
	require.ErrorAs(t, err, &limErr)
	assert.Equal(t, limits.LimitPathDepth, limErr.Kind)
}

func Test_PathDepthWithinCeiling(t *testing.T) {
	f := setup(t,
		tri("a", knows, "b"),
		tri("b", knows, "c"),
	)
	gov := limits.NewGovernor(limits.Limits{MaxPropertyPathDepth: 10}, clocks.Wall)
	ev := f.evalWith(t, path(c(iri("a")), &algebra.OneOrMore{Path: pred(knows)}, v("y")), gov)
	assert.Len(t, results(t, ev), 2)
}
