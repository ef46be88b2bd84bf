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
	"fmt"

	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/rdf"
)

// Expression evaluation follows SPARQL's three-valued logic: an expression
// yields a term, or an evaluation error. Errors are not query failures;
// filters treat them as false, binds as unbound, and logical AND/OR can
// still decide when one side errors. evalExpr is the single entry point.

func evalExpr(expr algebra.Expr, cols Columns, r row) (rdf.Term, error) {
	switch e := expr.(type) {
	case *algebra.Var:
		idx, ok := cols.IndexOfName(e.Name)
		if !ok || !r[idx].Bound() {
			return nil, fmt.Errorf("variable ?%s is not bound", e.Name)
		}
		return r[idx].Term, nil
	case *algebra.Constant:
		return e.Term, nil
	case *algebra.Compare:
		return evalCompare(e, cols, r)
	case *algebra.And:
		return evalAnd(e, cols, r)
	case *algebra.Or:
		return evalOr(e, cols, r)
	case *algebra.Not:
		val, err := effectiveBool(e.Expr, cols, r)
		if err != nil {
			return nil, err
		}
		return rdf.NewBoolean(!val), nil
	case *algebra.Arith:
		return evalArith(e, cols, r)
	case *algebra.Bound:
		idx, ok := cols.IndexOfName(e.Var.Name)
		return rdf.NewBoolean(ok && r[idx].Bound()), nil
	}
	return nil, fmt.Errorf("unexpected expression %T", expr)
}

// effectiveBool evaluates the expression and reduces the result to its
// effective boolean value: booleans are themselves, numbers are true when
// non-zero, strings when non-empty. Anything else is an error.
func effectiveBool(expr algebra.Expr, cols Columns, r row) (bool, error) {
	term, err := evalExpr(expr, cols, r)
	if err != nil {
		return false, err
	}
	lit, ok := term.(rdf.Literal)
	if !ok {
		return false, fmt.Errorf("%v has no boolean value", term)
	}
	if b, ok := lit.AsBool(); ok {
		return b, nil
	}
	if lit.IsNumeric() {
		f, ok := lit.AsFloat()
		if !ok {
			return false, fmt.Errorf("malformed numeric literal %v", lit)
		}
		return f != 0, nil
	}
	if lit.Datatype == rdf.XSDString || lit.Datatype == rdf.RDFLangString {
		return lit.Value != "", nil
	}
	return false, fmt.Errorf("%v has no boolean value", lit)
}

// evalAnd implements three-valued AND: false wins over error.
func evalAnd(e *algebra.And, cols Columns, r row) (rdf.Term, error) {
	lv, lerr := effectiveBool(e.Left, cols, r)
	rv, rerr := effectiveBool(e.Right, cols, r)
	if lerr == nil && !lv {
		return rdf.NewBoolean(false), nil
	}
	if rerr == nil && !rv {
		return rdf.NewBoolean(false), nil
	}
	if lerr != nil {
		return nil, lerr
	}
	if rerr != nil {
		return nil, rerr
	}
	return rdf.NewBoolean(true), nil
}

// evalOr implements three-valued OR: true wins over error.
func evalOr(e *algebra.Or, cols Columns, r row) (rdf.Term, error) {
	lv, lerr := effectiveBool(e.Left, cols, r)
	rv, rerr := effectiveBool(e.Right, cols, r)
	if lerr == nil && lv {
		return rdf.NewBoolean(true), nil
	}
	if rerr == nil && rv {
		return rdf.NewBoolean(true), nil
	}
	if lerr != nil {
		return nil, lerr
	}
	if rerr != nil {
		return nil, rerr
	}
	return rdf.NewBoolean(false), nil
}

func evalCompare(e *algebra.Compare, cols Columns, r row) (rdf.Term, error) {
	a, err := evalExpr(e.Left, cols, r)
	if err != nil {
		return nil, err
	}
	b, err := evalExpr(e.Right, cols, r)
	if err != nil {
		return nil, err
	}
	c, err := compareTerms(a, b, e.Op)
	if err != nil {
		return nil, err
	}
	var result bool
	switch e.Op {
	case algebra.OpEqual:
		result = c == 0
	case algebra.OpNotEqual:
		result = c != 0
	case algebra.OpLess:
		result = c < 0
	case algebra.OpLessOrEqual:
		result = c <= 0
	case algebra.OpGreater:
		result = c > 0
	case algebra.OpGreaterOrEqual:
		result = c >= 0
	default:
		return nil, fmt.Errorf("unexpected comparison op %v", e.Op)
	}
	return rdf.NewBoolean(result), nil
}

// compareTerms compares two terms by value: numerics numerically, strings
// lexically, booleans false before true. IRIs and blank nodes only support
// equality; ordering them, or comparing values of incompatible types, is an
// evaluation error.
func compareTerms(a, b rdf.Term, op algebra.CompareOp) (int, error) {
	al, aIsLit := a.(rdf.Literal)
	bl, bIsLit := b.(rdf.Literal)
	if aIsLit && bIsLit {
		switch {
		case al.IsNumeric() && bl.IsNumeric():
			av, aok := al.AsFloat()
			bv, bok := bl.AsFloat()
			if !aok || !bok {
				return 0, fmt.Errorf("malformed numeric literal")
			}
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			}
			return 0, nil
		case stringy(al) && stringy(bl):
			if al.Language != bl.Language {
				return 0, fmt.Errorf("cannot compare %v with %v", al, bl)
			}
			switch {
			case al.Value < bl.Value:
				return -1, nil
			case al.Value > bl.Value:
				return 1, nil
			}
			return 0, nil
		case al.Datatype == rdf.XSDBoolean && bl.Datatype == rdf.XSDBoolean:
			av, aok := al.AsBool()
			bv, bok := bl.AsBool()
			if !aok || !bok {
				return 0, fmt.Errorf("malformed boolean literal")
			}
			switch {
			case av == bv:
				return 0, nil
			case !av:
				return -1, nil
			}
			return 1, nil
		case al.Datatype == rdf.XSDDateTime && bl.Datatype == rdf.XSDDateTime:
			// ISO 8601 lexical forms in the same timezone order textually.
			switch {
			case al.Value < bl.Value:
				return -1, nil
			case al.Value > bl.Value:
				return 1, nil
			}
			return 0, nil
		}
	}
	// Equality tests fall back to term identity for the remaining kinds.
	if op == algebra.OpEqual || op == algebra.OpNotEqual {
		if rdf.Compare(a, b) == 0 {
			return 0, nil
		}
		if aIsLit && bIsLit && (literalUnrecognized(al) || literalUnrecognized(bl)) {
			// Distinct lexical forms of an unrecognized datatype may still
			// denote the same value; their equality is unknown.
			return 0, fmt.Errorf("cannot compare %v with %v", a, b)
		}
		return 1, nil
	}
	return 0, fmt.Errorf("cannot order %v against %v", a, b)
}

func stringy(l rdf.Literal) bool {
	return l.Datatype == rdf.XSDString || l.Datatype == rdf.RDFLangString
}

func literalUnrecognized(l rdf.Literal) bool {
	if l.IsNumeric() || stringy(l) {
		return false
	}
	switch l.Datatype {
	case rdf.XSDBoolean, rdf.XSDDateTime:
		return false
	}
	return true
}

// evalArith implements the numeric operators. Two xsd:integer operands stay
// in integer arithmetic except for division, which always produces an
// xsd:double. Non-numeric operands and division by zero are evaluation
// errors.
func evalArith(e *algebra.Arith, cols Columns, r row) (rdf.Term, error) {
	a, err := evalNumeric(e.Left, cols, r)
	if err != nil {
		return nil, err
	}
	b, err := evalNumeric(e.Right, cols, r)
	if err != nil {
		return nil, err
	}
	ai, aInt := a.AsInt()
	bi, bInt := b.AsInt()
	if aInt && bInt && e.Op != algebra.OpDivide {
		switch e.Op {
		case algebra.OpAdd:
			return rdf.NewInteger(ai + bi), nil
		case algebra.OpSubtract:
			return rdf.NewInteger(ai - bi), nil
		case algebra.OpMultiply:
			return rdf.NewInteger(ai * bi), nil
		}
	}
	af, _ := a.AsFloat()
	bf, _ := b.AsFloat()
	switch e.Op {
	case algebra.OpAdd:
		return rdf.NewDouble(af + bf), nil
	case algebra.OpSubtract:
		return rdf.NewDouble(af - bf), nil
	case algebra.OpMultiply:
		return rdf.NewDouble(af * bf), nil
	case algebra.OpDivide:
		if bf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return rdf.NewDouble(af / bf), nil
	}
	return nil, fmt.Errorf("unexpected arithmetic op %v", e.Op)
}

func evalNumeric(expr algebra.Expr, cols Columns, r row) (rdf.Literal, error) {
	term, err := evalExpr(expr, cols, r)
	if err != nil {
		return rdf.Literal{}, err
	}
	lit, ok := term.(rdf.Literal)
	if !ok || !lit.IsNumeric() {
		return rdf.Literal{}, fmt.Errorf("%v is not numeric", term)
	}
	return lit, nil
}
