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

package exec

import (
	"context"

	"github.com/ebay/quarry/query/planner/plandef"
	"github.com/ebay/quarry/store"
)

// lookup scans one quad pattern against the snapshot. Constant and Binding
// terms pin positions of the scan; each Variable term becomes an output
// column. A variable repeated across positions produces a single column and
// only quads where the repeated positions hold the same term.
type lookup struct {
	def  *plandef.Lookup
	ec   evalContext
	cols Columns
	// colPos[i] is the pattern position (0..3, SPOG order) feeding cols[i].
	colPos []int
	// equalPos pairs pattern positions that must hold equal IDs, from
	// repeated variables.
	equalPos [][2]int

	it    *store.IDs
	empty bool
}

func newLookup(def *plandef.Lookup, ec evalContext) *lookup {
	op := &lookup{def: def, ec: ec}
	seen := make(map[*plandef.Variable]int)
	for pos, term := range def.Terms() {
		v, ok := term.(*plandef.Variable)
		if !ok {
			continue
		}
		if firstPos, dup := seen[v]; dup {
			op.equalPos = append(op.equalPos, [2]int{firstPos, pos})
			continue
		}
		seen[v] = pos
		op.cols = append(op.cols, v)
		op.colPos = append(op.colPos, pos)
	}
	return op
}

func (op *lookup) operator() plandef.Operator { return op.def }
func (op *lookup) columns() Columns           { return op.cols }

func (op *lookup) reset() {
	op.it = nil
	op.empty = false
}

// start resolves the pattern's fixed terms and opens the scan. A constant
// or bound value the dictionary has never seen matches nothing.
func (op *lookup) start() {
	var pattern store.IDPattern
	slots := [4]*store.ID{
		&pattern.Subject, &pattern.Predicate, &pattern.Object, &pattern.Graph,
	}
	for pos, term := range op.def.Terms() {
		id, ok := op.resolveFixed(term)
		if !ok {
			op.empty = true
			return
		}
		*slots[pos] = id
	}
	op.it = op.ec.snap.ScanIDs(pattern)
}

// resolveFixed maps a fixed pattern term to its dictionary ID. Variables
// and don't-cares resolve to the wildcard ID. ok is false when the term has
// no ID, meaning the scan is empty.
func (op *lookup) resolveFixed(term plandef.Term) (store.ID, bool) {
	switch t := term.(type) {
	case *plandef.Constant:
		return op.ec.dict.Lookup(t.Term)
	case *plandef.Binding:
		val := op.ec.binder.value(t)
		if val.ID != 0 {
			return val.ID, true
		}
		// A computed term can still name something the store knows.
		return op.ec.dict.Lookup(val.Term)
	}
	return 0, true
}

func (op *lookup) next(ctx context.Context) (row, bool, error) {
	if op.it == nil && !op.empty {
		op.start()
	}
	if op.empty {
		return nil, false, nil
	}
	if err := op.ec.gov.Check(ctx); err != nil {
		return nil, false, err
	}
	for {
		q, ok := op.it.Next()
		if !ok {
			return nil, false, nil
		}
		ids := [4]store.ID{q.Subject, q.Predicate, q.Object, q.Graph}
		if !matchesEqualPos(op.equalPos, ids) {
			continue
		}
		out := make(row, len(op.cols))
		for i, pos := range op.colPos {
			out[i] = Value{ID: ids[pos], Term: op.ec.dict.Resolve(ids[pos])}
		}
		return out, true, nil
	}
}

func matchesEqualPos(equalPos [][2]int, ids [4]store.ID) bool {
	for _, pair := range equalPos {
		if ids[pair[0]] != ids[pair[1]] {
			return false
		}
	}
	return true
}
