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

package plandef

import (
	"strings"

	"github.com/ebay/quarry/query/algebra"
)

// A SelectExpr Operator filters its input rows by a boolean expression.
// Rows on which the expression evaluates to true pass; rows on which it
// evaluates to false or fails to evaluate are dropped.
type SelectExpr struct {
	Expr algebra.Expr
}

func (*SelectExpr) anOperator() {}

func (op *SelectExpr) String() string {
	return "Select " + op.Expr.String()
}

// Key implements cmp.Key.
func (op *SelectExpr) Key(b *strings.Builder) {
	b.WriteString("Select ")
	b.WriteString(op.Expr.String())
}

// A Bind Operator adds one new variable to each input row, bound to the
// value of the expression. A row on which the expression fails to evaluate
// passes through with the variable left unbound.
type Bind struct {
	Var  *Variable
	Expr algebra.Expr
}

func (*Bind) anOperator() {}

func (op *Bind) String() string {
	var b strings.Builder
	op.Key(&b)
	return b.String()
}

// Key implements cmp.Key.
func (op *Bind) Key(b *strings.Builder) {
	b.WriteString("Bind ")
	op.Var.Key(b)
	b.WriteString(" = ")
	b.WriteString(op.Expr.String())
}
