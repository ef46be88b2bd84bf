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

import "fmt"

// An Expr is a scalar expression evaluated against one row. Expressions use
// three-valued logic: evaluation may yield a term, or an error standing in
// for SPARQL's "error" value; Filter treats errors as false, Extend as
// unbound.
type Expr interface {
	fmt.Stringer
	anExpr()
}

// Vars and Constants appear directly as expressions.
func (*Var) anExpr()      {}
func (*Constant) anExpr() {}

// CompareOp enumerates the comparison operators.
type CompareOp int

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpLess
	OpLessOrEqual
	OpGreater
	OpGreaterOrEqual
)

func (op CompareOp) String() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	}
	return fmt.Sprintf("CompareOp(%d)", int(op))
}

// Compare applies a comparison operator. Comparing terms of incompatible
// types is an evaluation error, not false.
type Compare struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

func (c *Compare) String() string {
	return fmt.Sprintf("(%v %v %v)", c.Left, c.Op, c.Right)
}

// And is logical conjunction under three-valued logic: false && error is
// false, true && error is an error.
type And struct {
	Left  Expr
	Right Expr
}

func (a *And) String() string {
	return fmt.Sprintf("(%v && %v)", a.Left, a.Right)
}

// Or is logical disjunction under three-valued logic: true || error is
// true, false || error is an error.
type Or struct {
	Left  Expr
	Right Expr
}

func (o *Or) String() string {
	return fmt.Sprintf("(%v || %v)", o.Left, o.Right)
}

// Not negates its operand's effective boolean value.
type Not struct {
	Expr Expr
}

func (n *Not) String() string {
	return fmt.Sprintf("!(%v)", n.Expr)
}

// ArithOp enumerates the arithmetic operators.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSubtract
	OpMultiply
	OpDivide
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	}
	return fmt.Sprintf("ArithOp(%d)", int(op))
}

// Arith applies an arithmetic operator to two numeric operands. Non-numeric
// operands and division by zero are evaluation errors.
type Arith struct {
	Op    ArithOp
	Left  Expr
	Right Expr
}

func (a *Arith) String() string {
	return fmt.Sprintf("(%v %v %v)", a.Left, a.Op, a.Right)
}

// Bound reports whether the variable is bound in the row. It never errors.
type Bound struct {
	Var *Var
}

func (b *Bound) String() string {
	return fmt.Sprintf("BOUND(%v)", b.Var)
}

func (*Compare) anExpr() {}
func (*And) anExpr()     {}
func (*Or) anExpr()      {}
func (*Not) anExpr()     {}
func (*Arith) anExpr()   {}
func (*Bound) anExpr()   {}
