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

package store

import (
	"github.com/ebay/quarry/rdf"
)

// Stats carries the cardinality statistics the query planner uses to order
// joins. The counts reflect the latest committed state, not any particular
// snapshot's version; they are exact, not sampled, since they're maintained
// incrementally at commit.
type Stats struct {
	dict         *Dictionary
	totalQuads   int
	perPredicate map[ID]int
}

// TotalQuads returns the number of quads visible at the latest committed
// version.
func (s Stats) TotalQuads() int {
	return s.totalQuads
}

// PredicateCardinality returns the number of visible quads with the given
// predicate, or 0 for a predicate the store has never seen.
func (s Stats) PredicateCardinality(predicate rdf.IRI) int {
	id, ok := s.dict.Lookup(predicate)
	if !ok {
		return 0
	}
	return s.perPredicate[id]
}
