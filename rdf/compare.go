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
	"sort"
	"strings"
)

// Literal value classes in their sort order. Numeric literals sort before
// literals of unrecognized datatypes, which sort before strings, which sort
// before the remaining recognized types.
const (
	classNumeric = iota
	classUnresolved
	classString
	classOther
)

func literalClass(l Literal) int {
	switch l.Datatype {
	case XSDInteger, XSDDecimal, XSDDouble:
		return classNumeric
	case XSDString, RDFLangString:
		return classString
	case XSDBoolean, XSDDateTime:
		return classOther
	}
	return classUnresolved
}

// Compare returns an integer comparing two terms in the total order used by
// ORDER BY. The result will be 0 iff a and b are structurally equal, -1 if a
// sorts before b, and +1 otherwise. The order is deterministic across runs
// and platforms: ties on value (e.g. "1"^^xsd:integer vs "1.0"^^xsd:double)
// are broken by the terms' structural content.
func Compare(a, b Term) int {
	if a.Kind() != b.Kind() {
		if a.Kind() < b.Kind() {
			return -1
		}
		return 1
	}
	switch at := a.(type) {
	case DefaultGraph:
		return 0
	case BNode:
		return strings.Compare(at.ID, b.(BNode).ID)
	case IRI:
		return strings.Compare(at.Value, b.(IRI).Value)
	case Literal:
		return compareLiterals(at, b.(Literal))
	}
	// All Term implementations are covered above.
	return 0
}

func compareLiterals(a, b Literal) int {
	ca, cb := literalClass(a), literalClass(b)
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}
	switch ca {
	case classNumeric:
		av, aok := a.AsFloat()
		bv, bok := b.AsFloat()
		if aok && bok {
			if av < bv {
				return -1
			} else if av > bv {
				return 1
			}
			return compareStructural(a, b)
		}
		// Unparsable numerics fall back to the structural order so the
		// result is still total and deterministic.
		return compareStructural(a, b)
	case classString:
		if res := strings.Compare(a.Value, b.Value); res != 0 {
			return res
		}
		return strings.Compare(a.Language, b.Language)
	default:
		return compareStructural(a, b)
	}
}

// compareStructural orders literals by datatype, then lexical form, then
// language tag. It is the deterministic tie-break for value-equal literals.
func compareStructural(a, b Literal) int {
	if res := strings.Compare(a.Datatype.Value, b.Datatype.Value); res != 0 {
		return res
	}
	if res := strings.Compare(a.Value, b.Value); res != 0 {
		return res
	}
	return strings.Compare(a.Language, b.Language)
}

// SortTerms sorts terms in place using Compare.
func SortTerms(terms []Term) {
	sort.Slice(terms, func(i, j int) bool {
		return Compare(terms[i], terms[j]) < 0
	})
}
