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

package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TermEquality(t *testing.T) {
	assert.Equal(t, NewIRI("http://example.com/a"), NewIRI("http://example.com/a"))
	assert.NotEqual(t, NewIRI("http://example.com/a"), NewIRI("http://example.com/b"))
	assert.Equal(t, NewInteger(42), NewInteger(42))
	assert.NotEqual(t, NewInteger(42), NewString("42"))
	assert.NotEqual(t, NewString("chat"), NewLangString("chat", "fr"))

	// Terms are comparable values usable as map keys.
	seen := map[Term]int{
		NewIRI("http://example.com/a"): 1,
		NewString("a"):                 2,
		NewBNode("a"):                  3,
	}
	assert.Equal(t, 1, seen[NewIRI("http://example.com/a")])
	assert.Equal(t, 2, seen[NewString("a")])
	assert.Equal(t, 3, seen[NewBNode("a")])
}

func Test_TermString(t *testing.T) {
	assert.Equal(t, "<http://example.com/a>", NewIRI("http://example.com/a").String())
	assert.Equal(t, "_:b1", NewBNode("b1").String())
	assert.Equal(t, `"hello"`, NewString("hello").String())
	assert.Equal(t, `"chat"@fr`, NewLangString("chat", "fr").String())
	assert.Equal(t, `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`, NewInteger(42).String())
	assert.Equal(t, "DEFAULT", DefaultGraph{}.String())
}

func Test_LiteralParsing(t *testing.T) {
	i, ok := NewInteger(-7).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(-7), i)

	f, ok := NewDouble(1.5).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 1.5, f)

	// Integers are numeric and parse as floats too.
	f, ok = NewInteger(3).AsFloat()
	require.True(t, ok)
	assert.Equal(t, 3.0, f)

	b, ok := NewBoolean(true).AsBool()
	require.True(t, ok)
	assert.True(t, b)

	_, ok = NewString("x").AsInt()
	assert.False(t, ok)
	_, ok = NewTypedLiteral("junk", XSDInteger).AsInt()
	assert.False(t, ok)
}

func Test_QuadValidate(t *testing.T) {
	valid := NewTriple(NewIRI("s"), NewIRI("p"), NewString("o"))
	assert.NoError(t, valid.Validate())

	assert.Error(t, Quad{}.Validate())
	assert.Error(t, NewTriple(NewString("lit"), NewIRI("p"), NewString("o")).Validate())
	assert.Error(t, NewQuad(NewIRI("s"), NewIRI("p"), DefaultGraph{}, DefaultGraph{}).Validate())
	assert.Error(t, NewQuad(NewIRI("s"), NewIRI("p"), NewString("o"), NewString("g")).Validate())

	missingPred := NewTriple(NewIRI("s"), IRI{}, NewString("o"))
	assert.Error(t, missingPred.Validate())
}

func Test_Compare(t *testing.T) {
	// Kind order: default graph < blank node < IRI < literal.
	ordered := []Term{
		DefaultGraph{},
		NewBNode("a"),
		NewBNode("b"),
		NewIRI("http://example.com/a"),
		NewIRI("http://example.com/b"),
		// Numeric literals, by value regardless of datatype.
		NewInteger(-1),
		NewDouble(0.5),
		NewInteger(2),
		// Unrecognized datatype sorts after numerics.
		NewTypedLiteral("x", NewIRI("http://example.com/custom")),
		// Strings, by value then language.
		NewString("apple"),
		NewLangString("chat", "en"),
		NewLangString("chat", "fr"),
		// Everything else.
		NewBoolean(false),
		NewBoolean(true),
	}
	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j:
				assert.Equal(t, -1, got, "%v should sort before %v", ordered[i], ordered[j])
			case i > j:
				assert.Equal(t, 1, got, "%v should sort after %v", ordered[i], ordered[j])
			default:
				assert.Equal(t, 0, got, "%v should equal itself", ordered[i])
			}
		}
	}
}

func Test_Compare_NumericTieBreak(t *testing.T) {
	a := NewInteger(1)
	b := NewTypedLiteral("1", XSDDouble)
	// Equal value, different datatypes: the tie-break keeps the order total.
	assert.NotEqual(t, 0, Compare(a, b))
	assert.Equal(t, -Compare(a, b), Compare(b, a))
	assert.Equal(t, 0, Compare(a, NewInteger(1)))
}
