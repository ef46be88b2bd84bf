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

import (
	"fmt"

	"github.com/ebay/quarry/rdf"
)

// A PathExpr is a property path expression connecting a subject to an
// object through zero or more predicate steps.
type PathExpr interface {
	fmt.Stringer
	aPathExpr()
}

// Predicate is the trivial path: one step over the given predicate.
type Predicate struct {
	IRI rdf.IRI
}

func (p *Predicate) String() string {
	return p.IRI.String()
}

// Inverse traverses its path from object to subject.
type Inverse struct {
	Path PathExpr
}

func (i *Inverse) String() string {
	return fmt.Sprintf("^(%v)", i.Path)
}

// Sequence traverses Left, then Right from each node Left reaches.
type Sequence struct {
	Left  PathExpr
	Right PathExpr
}

func (s *Sequence) String() string {
	return fmt.Sprintf("(%v / %v)", s.Left, s.Right)
}

// Alternative traverses either branch.
type Alternative struct {
	Left  PathExpr
	Right PathExpr
}

func (a *Alternative) String() string {
	return fmt.Sprintf("(%v | %v)", a.Left, a.Right)
}

// ZeroOrMore is the reflexive transitive closure of its path.
type ZeroOrMore struct {
	Path PathExpr
}

func (z *ZeroOrMore) String() string {
	return fmt.Sprintf("(%v)*", z.Path)
}

// OneOrMore is the transitive closure of its path.
type OneOrMore struct {
	Path PathExpr
}

func (o *OneOrMore) String() string {
	return fmt.Sprintf("(%v)+", o.Path)
}

// ZeroOrOne matches a node to itself and to anything one traversal of its
// path reaches.
type ZeroOrOne struct {
	Path PathExpr
}

func (z *ZeroOrOne) String() string {
	return fmt.Sprintf("(%v)?", z.Path)
}

func (*Predicate) aPathExpr()   {}
func (*Inverse) aPathExpr()     {}
func (*Sequence) aPathExpr()    {}
func (*Alternative) aPathExpr() {}
func (*ZeroOrMore) aPathExpr()  {}
func (*OneOrMore) aPathExpr()   {}
func (*ZeroOrOne) aPathExpr()   {}
