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
	"testing"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalOnEmptyRow(t *testing.T, expr algebra.Expr) (rdf.Term, error) {
	t.Helper()
	return evalExpr(expr, nil, nil)
}

func Test_NumericComparisonCrossesTypes(t *testing.T) {
	// An integer and a double compare by value.
	got, err := evalOnEmptyRow(t, &algebra.Compare{
		Op:    algebra.OpEqual,
		Left:  c(rdf.NewInteger(1)),
		Right: c(rdf.NewDouble(1.0)),
	})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewBoolean(true), got)
}

func Test_StringComparison(t *testing.T) {
	got, err := evalOnEmptyRow(t, &algebra.Compare{
		Op:    algebra.OpLess,
		Left:  c(rdf.NewString("apple")),
		Right: c(rdf.NewString("banana")),
	})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewBoolean(true), got)
}

func Test_OrderingIRIsIsAnError(t *testing.T) {
	_, err := evalOnEmptyRow(t, &algebra.Compare{
		Op:    algebra.OpLess,
		Left:  c(iri("a")),
		Right: c(iri("b")),
	})
	assert.Error(t, err)
}

func Test_IRIEquality(t *testing.T) {
	got, err := evalOnEmptyRow(t, &algebra.Compare{
		Op:    algebra.OpNotEqual,
		Left:  c(iri("a")),
		Right: c(iri("b")),
	})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewBoolean(true), got)
}

func Test_UnknownDatatypeEqualityIsUnknown(t *testing.T) {
	// Same lexical form and datatype compare equal; different lexical
	// forms of an unrecognized datatype have unknown equality.
	geo := rdf.NewIRI("http://example.com/geo")
	same, err := evalOnEmptyRow(t, &algebra.Compare{
		Op:    algebra.OpEqual,
		Left:  c(rdf.NewTypedLiteral("POINT(1 2)", geo)),
		Right: c(rdf.NewTypedLiteral("POINT(1 2)", geo)),
	})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewBoolean(true), same)

	_, err = evalOnEmptyRow(t, &algebra.Compare{
		Op:    algebra.OpEqual,
		Left:  c(rdf.NewTypedLiteral("POINT(1 2)", geo)),
		Right: c(rdf.NewTypedLiteral("POINT(3 4)", geo)),
	})
	assert.Error(t, err)
}

func Test_ThreeValuedAnd(t *testing.T) {
	errExpr := &algebra.Compare{
		Op:    algebra.OpLess,
		Left:  c(iri("a")),
		Right: c(rdf.NewInteger(1)),
	}
	// false AND error is false; true AND error is an error.
	got, err := evalOnEmptyRow(t, &algebra.And{
		Left:  c(rdf.NewBoolean(false)),
		Right: errExpr,
	})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewBoolean(false), got)

	_, err = evalOnEmptyRow(t, &algebra.And{
		Left:  c(rdf.NewBoolean(true)),
		Right: errExpr,
	})
	assert.Error(t, err)
}

func Test_EffectiveBooleanValue(t *testing.T) {
	for _, tc := range []struct {
		term rdf.Term
		want bool
	}{
		{rdf.NewBoolean(true), true},
		{rdf.NewInteger(0), false},
		{rdf.NewInteger(7), true},
		{rdf.NewString(""), false},
		{rdf.NewString("x"), true},
	} {
		got, err := effectiveBool(algebra.NewConstant(tc.term), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "EBV of %v", tc.term)
	}
	_, err := effectiveBool(algebra.NewConstant(iri("a")), nil, nil)
	assert.Error(t, err)
}

func Test_ArithmeticTypes(t *testing.T) {
	sum, err := evalOnEmptyRow(t, &algebra.Arith{
		Op: algebra.OpAdd, Left: c(rdf.NewInteger(2)), Right: c(rdf.NewInteger(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewInteger(5), sum)

	quot, err := evalOnEmptyRow(t, &algebra.Arith{
		Op: algebra.OpDivide, Left: c(rdf.NewInteger(7)), Right: c(rdf.NewInteger(2)),
	})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewDouble(3.5), quot)

	_, err = evalOnEmptyRow(t, &algebra.Arith{
		Op: algebra.OpDivide, Left: c(rdf.NewInteger(1)), Right: c(rdf.NewInteger(0)),
	})
	assert.Error(t, err)
}

func Test_UnboundVariableIsError(t *testing.T) {
	_, err := evalOnEmptyRow(t, v("missing"))
	assert.Error(t, err)

	bound, err := evalOnEmptyRow(t, &algebra.Bound{Var: v("missing")})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewBoolean(false), bound)
}
