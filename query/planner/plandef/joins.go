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
	"fmt"
	"strings"

	"github.com/ebay/quarry/query/algebra"
)

// JoinKind says whether a join is inner or left-outer.
type JoinKind int

const (
	// JoinInner emits merged rows for matching pairs only.
	JoinInner JoinKind = iota
	// JoinLeft emits every left row, merged when a match exists and
	// unchanged otherwise.
	JoinLeft
)

func joinLabel(k JoinKind) string {
	switch k {
	case JoinInner:
		return "(inner)"
	case JoinLeft:
		return "(left)"
	}
	return fmt.Sprintf("(%d)", int(k))
}

// A HashJoin Operator takes two inputs and implements a join using a hash
// table: the right input is materialized into a table keyed on the join
// variables, and the left input streams past probing it. Filter, if
// non-nil, conditions left-join matches and is only set when Kind is
// JoinLeft.
type HashJoin struct {
	// The variables that are compared for equality in both inputs.
	Variables VarSet
	Kind      JoinKind
	Filter    algebra.Expr
}

func (op *HashJoin) anOperator() {}

func (op *HashJoin) String() string {
	return fmt.Sprintf("HashJoin %s %v", joinLabel(op.Kind), op.Variables)
}

// Key implements cmp.Key.
func (op *HashJoin) Key(b *strings.Builder) {
	b.WriteString("HashJoin ")
	b.WriteString(joinLabel(op.Kind))
	b.WriteByte(' ')
	op.Variables.Key(b)
	if op.Filter != nil {
		b.WriteString(" if ")
		b.WriteString(op.Filter.String())
	}
}

// A LoopJoin Operator takes two inputs and implements a join using a nested
// loop. It passes results from the first input into lookups on the second
// input; these appear as Binding terms in the second input.
type LoopJoin struct {
	// The variables that are compared for equality in both inputs.
	Variables VarSet
	Kind      JoinKind
}

func (op *LoopJoin) anOperator() {}

func (op *LoopJoin) String() string {
	return fmt.Sprintf("LoopJoin %s %v", joinLabel(op.Kind), op.Variables)
}

// Key implements cmp.Key.
func (op *LoopJoin) Key(b *strings.Builder) {
	b.WriteString("LoopJoin ")
	b.WriteString(joinLabel(op.Kind))
	b.WriteByte(' ')
	op.Variables.Key(b)
}

// A Product Operator takes two inputs sharing no variables and emits every
// left-right pair. This is the explicit cartesian case; the planner only
// produces it when no join key exists.
type Product struct {
	_ byte
}

func (op *Product) anOperator() {}

func (op *Product) String() string {
	return "Product"
}

// Key implements cmp.Key.
func (op *Product) Key(b *strings.Builder) {
	b.WriteString("Product")
}

// A MinusOp Operator emits the left rows that are compatible with no right
// row on the shared variables. A right row with none of the shared variables
// bound does not exclude anything.
type MinusOp struct {
	// The variables shared between the two inputs.
	Variables VarSet
}

func (op *MinusOp) anOperator() {}

func (op *MinusOp) String() string {
	return fmt.Sprintf("Minus %v", op.Variables)
}

// Key implements cmp.Key.
func (op *MinusOp) Key(b *strings.Builder) {
	b.WriteString("Minus ")
	op.Variables.Key(b)
}
