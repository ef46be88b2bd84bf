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

	"github.com/ebay/quarry/rdf"
	"github.com/ebay/quarry/util/cmp"
)

// A Term is an argument to an Operator, such as a Variable or a Constant.
// Every type of Term is either a FreeTerm or a FixedTerm.
type Term interface {
	String() string
	cmp.Key
	aTerm()
}

// A FreeTerm is a Term that has an unknown value when the operator executes.
// It represents a result from the operator.
type FreeTerm interface {
	Term
	aFreeTerm()
}

// ImplementFreeTerm is a list of types that implement FreeTerm. This serves
// as documentation and as a compile-time check.
var ImplementFreeTerm = []FreeTerm{
	new(DontCare),
	new(Variable),
}

// A FixedTerm is a Term that has a known value before the operator executes.
type FixedTerm interface {
	Term
	aFixedTerm()
}

// ImplementFixedTerm is a list of types that implement FixedTerm. This
// serves as documentation and as a compile-time check.
var ImplementFixedTerm = []FixedTerm{
	new(Binding),
	new(Constant),
}

// DontCare is a FreeTerm representing a placeholder for a result to be
// discarded.
type DontCare struct {
	// The very bottom of the Go spec
	// https://golang.org/ref/spec#Size_and_alignment_guarantees says pointers to
	// two empty structs may be the same. This byte of padding ensures that
	// pointers to distinct DontCare values will be unequal (not ==).
	_ byte
}

func (*DontCare) aTerm()     {}
func (*DontCare) aFreeTerm() {}

// String returns "_".
func (d *DontCare) String() string {
	return "_"
}

// Key implements cmp.Key.
func (d *DontCare) Key(b *strings.Builder) {
	b.WriteByte('_')
}

// A Variable is a FreeTerm representing a placeholder for a named result.
type Variable struct {
	Name string
}

func (*Variable) aTerm()     {}
func (*Variable) aFreeTerm() {}

// String returns a string like "?foo".
func (v *Variable) String() string {
	return "?" + v.Name
}

// Key implements cmp.Key.
func (v *Variable) Key(b *strings.Builder) {
	b.WriteByte('?')
	b.WriteString(v.Name)
}

// A Binding is a variable that will be filled in by values from an outer
// nested loop join. Unlike a Variable, Binding is a FixedTerm.
type Binding struct {
	Var *Variable
}

func (*Binding) aTerm()      {}
func (*Binding) aFixedTerm() {}

// String returns a string like "$foo".
func (b *Binding) String() string {
	return "$" + b.Var.Name
}

// Key implements cmp.Key.
func (b *Binding) Key(buf *strings.Builder) {
	buf.WriteByte('$')
	buf.WriteString(b.Var.Name)
}

// A Constant is a FixedTerm holding a concrete RDF term from the query.
type Constant struct {
	Term rdf.Term
}

func (*Constant) aTerm()      {}
func (*Constant) aFixedTerm() {}

func (c *Constant) String() string {
	return c.Term.String()
}

// Key implements cmp.Key.
func (c *Constant) Key(b *strings.Builder) {
	b.WriteString(c.Term.String())
}
