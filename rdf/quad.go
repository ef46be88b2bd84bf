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
	"fmt"
	"strings"
)

// A Quad is one stored statement: subject, predicate, object, and the graph
// it belongs to. Quads are the atomic unit of storage and versioning.
type Quad struct {
	// IRI or BNode.
	Subject Term
	// Always an IRI.
	Predicate IRI
	// Any term kind except DefaultGraph.
	Object Term
	// IRI, BNode, or DefaultGraph.
	Graph Term
}

// NewQuad returns a quad in the named graph.
func NewQuad(subject Term, predicate IRI, object, graph Term) Quad {
	return Quad{Subject: subject, Predicate: predicate, Object: object, Graph: graph}
}

// NewTriple returns a quad in the default graph.
func NewTriple(subject Term, predicate IRI, object Term) Quad {
	return Quad{Subject: subject, Predicate: predicate, Object: object, Graph: DefaultGraph{}}
}

// Validate returns an error if any position holds a term kind that is not
// allowed there.
func (q Quad) Validate() error {
	switch {
	case q.Subject == nil || q.Object == nil || q.Graph == nil:
		return fmt.Errorf("quad has nil term: %v", q)
	case q.Subject.Kind() != KindIRI && q.Subject.Kind() != KindBNode:
		return fmt.Errorf("quad subject must be an IRI or blank node, got %v", q.Subject)
	case q.Predicate.Value == "":
		return fmt.Errorf("quad predicate must be a non-empty IRI")
	case q.Object.Kind() == KindDefaultGraph:
		return fmt.Errorf("quad object cannot be the default graph marker")
	case q.Graph.Kind() == KindLiteral:
		return fmt.Errorf("quad graph must be an IRI, blank node, or the default graph, got %v", q.Graph)
	}
	return nil
}

// String returns a space-separated rendering of the quad's terms.
func (q Quad) String() string {
	b := strings.Builder{}
	b.WriteString(q.Subject.String())
	b.WriteByte(' ')
	b.WriteString(q.Predicate.String())
	b.WriteByte(' ')
	b.WriteString(q.Object.String())
	if q.Graph.Kind() != KindDefaultGraph {
		b.WriteByte(' ')
		b.WriteString(q.Graph.String())
	}
	return b.String()
}
