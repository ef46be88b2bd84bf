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

// A Lookup is a leaf operator that scans the store's pattern-matched index
// for quads matching the pattern. FreeTerm positions become newly bound
// variables in the output; FixedTerm positions constrain the scan.
type Lookup struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

func (*Lookup) anOperator() {}

// Terms returns the four pattern positions in quad order.
func (op *Lookup) Terms() [4]Term {
	return [4]Term{op.Subject, op.Predicate, op.Object, op.Graph}
}

func (op *Lookup) String() string {
	var b strings.Builder
	op.Key(&b)
	return b.String()
}

// Key implements cmp.Key.
func (op *Lookup) Key(b *strings.Builder) {
	b.WriteString("Lookup(")
	for i, term := range op.Terms() {
		if i > 0 {
			b.WriteByte(' ')
		}
		term.Key(b)
	}
	b.WriteByte(')')
}

// A PathLookup is a leaf operator that finds pairs of nodes connected by a
// property path expression, by iterative frontier expansion from the bound
// endpoint.
type PathLookup struct {
	Subject Term
	Path    algebra.PathExpr
	Object  Term
	Graph   Term
}

func (*PathLookup) anOperator() {}

func (op *PathLookup) String() string {
	var b strings.Builder
	op.Key(&b)
	return b.String()
}

// Key implements cmp.Key.
func (op *PathLookup) Key(b *strings.Builder) {
	b.WriteString("PathLookup(")
	op.Subject.Key(b)
	b.WriteByte(' ')
	b.WriteString(op.Path.String())
	b.WriteByte(' ')
	op.Object.Key(b)
	b.WriteByte(' ')
	op.Graph.Key(b)
	b.WriteByte(')')
}
