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

// Package rdf defines the graph data model: terms, quads, and the total order
// used when sorting query results. Terms are immutable values compared by
// structural equality; every concrete term type is a comparable Go value, so
// terms can be used directly as map keys.
package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// A Kind discriminates the concrete type of a Term.
type Kind int

// The kinds of terms, in their overall sort order.
const (
	KindDefaultGraph Kind = iota
	KindBNode
	KindIRI
	KindLiteral
)

// A Term is an IRI, a blank node, a literal, or the default graph marker.
// Variables are not Terms; they belong to the query algebra, not to stored
// data.
type Term interface {
	fmt.Stringer
	Kind() Kind
	aTerm()
}

// ImplementTerm is a list of types that implement Term. This serves as
// documentation and as a compile-time check.
var ImplementTerm = []Term{
	IRI{},
	BNode{},
	Literal{},
	DefaultGraph{},
}

// An IRI identifies a resource, like <http://example.com/alice>.
type IRI struct {
	Value string
}

// NewIRI returns an IRI term for the given absolute IRI string.
func NewIRI(value string) IRI {
	return IRI{Value: value}
}

// Kind implements Term.Kind.
func (IRI) Kind() Kind { return KindIRI }
func (IRI) aTerm()     {}

// String returns a string like "<http://example.com/alice>".
func (i IRI) String() string {
	return "<" + i.Value + ">"
}

// A BNode is a blank node, an anonymous resource scoped to one store.
type BNode struct {
	ID string
}

// NewBNode returns a blank node term with the given label.
func NewBNode(id string) BNode {
	return BNode{ID: id}
}

// Kind implements Term.Kind.
func (BNode) Kind() Kind { return KindBNode }
func (BNode) aTerm()     {}

// String returns a string like "_:b1".
func (b BNode) String() string {
	return "_:" + b.ID
}

// A Literal is a data value: a lexical form plus a datatype IRI and, for
// language-tagged strings, a language tag.
type Literal struct {
	// The lexical form, like "42" or "chat".
	Value string
	// The datatype IRI. Never the zero IRI; plain strings carry XSDString.
	Datatype IRI
	// BCP 47 language tag, only set when Datatype is RDFLangString.
	Language string
}

// Kind implements Term.Kind.
func (Literal) Kind() Kind { return KindLiteral }
func (Literal) aTerm()     {}

// String returns the N-Triples style rendering of the literal.
func (l Literal) String() string {
	b := strings.Builder{}
	b.WriteString(strconv.Quote(l.Value))
	if l.Language != "" {
		b.WriteByte('@')
		b.WriteString(l.Language)
	} else if l.Datatype != XSDString {
		b.WriteString("^^")
		b.WriteString(l.Datatype.String())
	}
	return b.String()
}

// NewString returns a plain string literal.
func NewString(value string) Literal {
	return Literal{Value: value, Datatype: XSDString}
}

// NewLangString returns a language-tagged string literal.
func NewLangString(value, language string) Literal {
	return Literal{Value: value, Datatype: RDFLangString, Language: language}
}

// NewInteger returns an xsd:integer literal.
func NewInteger(value int64) Literal {
	return Literal{Value: strconv.FormatInt(value, 10), Datatype: XSDInteger}
}

// NewDouble returns an xsd:double literal.
func NewDouble(value float64) Literal {
	return Literal{Value: strconv.FormatFloat(value, 'g', -1, 64), Datatype: XSDDouble}
}

// NewBoolean returns an xsd:boolean literal.
func NewBoolean(value bool) Literal {
	return Literal{Value: strconv.FormatBool(value), Datatype: XSDBoolean}
}

// NewTypedLiteral returns a literal with an arbitrary datatype.
func NewTypedLiteral(value string, datatype IRI) Literal {
	return Literal{Value: value, Datatype: datatype}
}

// DefaultGraph is the distinguished graph name marking the default graph of a
// dataset. It is only valid in the graph position of a Quad.
type DefaultGraph struct {
	// Padding so distinct pointers to DefaultGraph values stay unequal, see
	// the bottom of the Go spec on size and alignment guarantees.
	_ byte
}

// Kind implements Term.Kind.
func (DefaultGraph) Kind() Kind { return KindDefaultGraph }
func (DefaultGraph) aTerm()     {}

// String returns "DEFAULT".
func (DefaultGraph) String() string {
	return "DEFAULT"
}

// Well-known datatype IRIs.
var (
	XSDString     = IRI{Value: "http://www.w3.org/2001/XMLSchema#string"}
	XSDInteger    = IRI{Value: "http://www.w3.org/2001/XMLSchema#integer"}
	XSDDecimal    = IRI{Value: "http://www.w3.org/2001/XMLSchema#decimal"}
	XSDDouble     = IRI{Value: "http://www.w3.org/2001/XMLSchema#double"}
	XSDBoolean    = IRI{Value: "http://www.w3.org/2001/XMLSchema#boolean"}
	XSDDateTime   = IRI{Value: "http://www.w3.org/2001/XMLSchema#dateTime"}
	RDFLangString = IRI{Value: "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"}
)

// IsNumeric reports whether the literal's datatype is one of the numeric
// types the expression evaluator understands.
func (l Literal) IsNumeric() bool {
	switch l.Datatype {
	case XSDInteger, XSDDecimal, XSDDouble:
		return true
	}
	return false
}

// AsInt returns the literal parsed as an int64. ok is false if the literal is
// not an xsd:integer or does not parse.
func (l Literal) AsInt() (val int64, ok bool) {
	if l.Datatype != XSDInteger {
		return 0, false
	}
	v, err := strconv.ParseInt(l.Value, 10, 64)
	return v, err == nil
}

// AsFloat returns the literal parsed as a float64. ok is false if the literal
// is not numeric or does not parse.
func (l Literal) AsFloat() (val float64, ok bool) {
	if !l.IsNumeric() {
		return 0, false
	}
	v, err := strconv.ParseFloat(l.Value, 64)
	return v, err == nil
}

// AsBool returns the literal parsed as a boolean. ok is false if the literal
// is not an xsd:boolean or does not parse.
func (l Literal) AsBool() (val bool, ok bool) {
	if l.Datatype != XSDBoolean {
		return false, false
	}
	v, err := strconv.ParseBool(l.Value)
	return v, err == nil
}
