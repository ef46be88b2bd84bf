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
	"sync"

	"github.com/ebay/quarry/rdf"
	"github.com/google/btree"
)

// A Snapshot is an immutable read view of the store pinned to one committed
// version. Every read through the snapshot observes the same point-in-time
// state, no matter what commits happen concurrently. Snapshots must be
// closed; an open snapshot pins version history.
type Snapshot struct {
	store   *Store
	version uint64
	indexes [numOrderings]*btree.BTree

	lock   sync.Mutex
	closed bool
}

// Version returns the committed version this snapshot observes.
func (snap *Snapshot) Version() uint64 {
	return snap.version
}

// Close releases the snapshot. Closing may trigger reclamation of version
// history that no remaining snapshot can observe. Closing twice is a no-op.
func (snap *Snapshot) Close() {
	snap.lock.Lock()
	if snap.closed {
		snap.lock.Unlock()
		return
	}
	snap.closed = true
	snap.lock.Unlock()
	snap.store.releaseSnapshot(snap.version)
}

// Stats returns cardinality statistics for query planning. The counts track
// the latest committed state rather than this snapshot's version; they are
// planning estimates, not query-visible data.
func (snap *Snapshot) Stats() Stats {
	return snap.store.currentStats()
}

// A Pattern matches quads by fixing some positions to concrete terms. A nil
// term is a wildcard. The zero Pattern matches every quad.
type Pattern struct {
	Subject   rdf.Term
	Predicate rdf.Term
	Object    rdf.Term
	Graph     rdf.Term
}

// Scan returns an iterator over the quads matching the pattern that are
// visible at this snapshot's version, in the order of the index that best
// fits the pattern's bound positions. The iterator is lazy; it is cheap to
// abandon it early.
func (snap *Snapshot) Scan(p Pattern) *Quads {
	idp, ok := snap.resolvePattern(p)
	if !ok {
		// A constant the store has never seen matches nothing.
		return &Quads{}
	}
	return &Quads{
		dict:   snap.store.dict,
		cursor: snap.scanIDs(idp),
	}
}

// Contains reports whether the quad is visible at this snapshot's version.
func (snap *Snapshot) Contains(quad rdf.Quad) bool {
	idp, ok := snap.resolvePattern(Pattern{
		Subject:   quad.Subject,
		Predicate: quad.Predicate,
		Object:    quad.Object,
		Graph:     quad.Graph,
	})
	if !ok {
		return false
	}
	item := snap.indexes[orderSPOG].Get(indexItem{key: orderSPOG.permute(IDQuad(idp))})
	if item == nil {
		return false
	}
	return item.(indexItem).ent.visibleAt(snap.version)
}

// resolvePattern maps the pattern's constant terms to dictionary IDs. ok is
// false if some constant was never interned, in which case nothing matches.
func (snap *Snapshot) resolvePattern(p Pattern) (IDPattern, bool) {
	var idp IDPattern
	resolve := func(term rdf.Term, out *ID) bool {
		if term == nil {
			return true
		}
		id, ok := snap.store.dict.Lookup(term)
		*out = id
		return ok
	}
	if !resolve(p.Subject, &idp.Subject) ||
		!resolve(p.Predicate, &idp.Predicate) ||
		!resolve(p.Object, &idp.Object) ||
		!resolve(p.Graph, &idp.Graph) {
		return IDPattern{}, false
	}
	return idp, true
}

// scanIDs returns a cursor over the interned quads matching the pattern at
// this snapshot's version. The query evaluator works at this level and only
// resolves terms on output.
func (snap *Snapshot) scanIDs(p IDPattern) *cursor {
	order := chooseOrdering(p)
	return newCursor(snap.indexes[order], order, p, snap.version)
}

// ScanIDs is the interned-term counterpart of Scan. Wildcards are positions
// holding the zero ID. The query evaluator reads through this interface and
// resolves IDs back to terms only when producing output rows.
func (snap *Snapshot) ScanIDs(p IDPattern) *IDs {
	return &IDs{cursor: snap.scanIDs(p)}
}

// ContainsIDs reports whether the fully bound interned quad is visible at
// this snapshot's version.
func (snap *Snapshot) ContainsIDs(q IDQuad) bool {
	item := snap.indexes[orderSPOG].Get(indexItem{key: orderSPOG.permute(q)})
	if item == nil {
		return false
	}
	return item.(indexItem).ent.visibleAt(snap.version)
}

// IDs iterates the results of Snapshot.ScanIDs.
type IDs struct {
	cursor *cursor
}

// Next returns the next matching interned quad, or false when the scan is
// exhausted.
func (it *IDs) Next() (IDQuad, bool) {
	return it.cursor.next()
}

// Quads iterates the results of Snapshot.Scan.
type Quads struct {
	dict   *Dictionary
	cursor *cursor
}

// Next returns the next matching quad, or false when the scan is exhausted.
func (q *Quads) Next() (rdf.Quad, bool) {
	if q.cursor == nil {
		return rdf.Quad{}, false
	}
	id, ok := q.cursor.next()
	if !ok {
		return rdf.Quad{}, false
	}
	return rdf.Quad{
		Subject:   q.dict.Resolve(id.Subject),
		Predicate: q.dict.Resolve(id.Predicate).(rdf.IRI),
		Object:    q.dict.Resolve(id.Object),
		Graph:     q.dict.Resolve(id.Graph),
	}, true
}

// All drains the iterator into a slice. Intended for tests and small scans.
func (q *Quads) All() []rdf.Quad {
	var quads []rdf.Quad
	for {
		quad, ok := q.Next()
		if !ok {
			return quads
		}
		quads = append(quads, quad)
	}
}
