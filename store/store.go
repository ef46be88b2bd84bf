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

// Package store implements the versioned quad store: a multi-version
// concurrency controlled (MVCC) in-memory index over quads, plus the term
// dictionary it is built on.
//
// Every distinct quad has a single entry carrying a version range that says
// at which commit versions the quad is visible. Readers open snapshots pinned
// to a version and are never blocked by the writer; the single writer stages
// changes in a transaction log and publishes them atomically at commit by
// appending version-range information. Nothing a live snapshot depends on is
// ever rewritten.
//
// History below the oldest live snapshot is reclaimed automatically as
// snapshots close; a store under sustained write load does not grow without
// bound as long as snapshots are closed.
package store

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/btree"
)

// Store is an embeddable MVCC quad store. The zero value is not usable; call
// New.
type Store struct {
	dict *Dictionary

	// Serializes write transactions and vacuum sweeps. Held from Begin until
	// Commit or Rollback.
	writer sync.Mutex

	// Guards the fields below. Readers take it briefly to grab index
	// pointers and the current version; they never hold it while scanning.
	lock   sync.RWMutex
	locked struct {
		// The current index trees. Commits swap in copy-on-write clones;
		// a published tree's structure is never mutated.
		indexes [numOrderings]*btree.BTree
		// Last committed version. Version 0 is the empty store.
		version uint64
		// Open snapshot versions, with a refcount per version.
		snapshots map[uint64]int
		// History below this version has already been reclaimed.
		reclaimed uint64
		// Cardinality statistics, maintained at commit.
		totalQuads   int
		perPredicate map[ID]int
	}
}

// New returns an empty store with its own term dictionary.
func New() *Store {
	s := &Store{dict: NewDictionary()}
	s.locked.indexes = newIndexes()
	s.locked.snapshots = make(map[uint64]int)
	s.locked.perPredicate = make(map[ID]int)
	return s
}

// Dictionary returns the store's term dictionary. The dictionary lives
// exactly as long as the store; IDs from one store are meaningless in
// another.
func (s *Store) Dictionary() *Dictionary {
	return s.dict
}

// OpenSnapshot returns a read view pinned to the current committed version.
// It is O(1), never blocks on the writer, and must be paired with Close:
// open snapshots pin version history.
func (s *Store) OpenSnapshot() *Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()
	snap := &Snapshot{
		store:   s,
		version: s.locked.version,
		indexes: s.locked.indexes,
	}
	s.locked.snapshots[snap.version]++
	metrics.liveSnapshots.Inc()
	return snap
}

// Begin starts a write transaction. At most one write transaction is active
// at a time; Begin blocks until the previous one commits or rolls back.
// Concurrent readers are unaffected.
func (s *Store) Begin() *Transaction {
	s.writer.Lock()
	s.lock.RLock()
	base := s.locked.version
	s.lock.RUnlock()
	txn := &Transaction{
		store:  s,
		target: base + 1,
	}
	// A transaction abandoned without Commit or Rollback would block writers
	// forever; treat abandonment as an implicit rollback.
	runtime.SetFinalizer(txn, func(t *Transaction) { t.Rollback() })
	return txn
}

// releaseSnapshot drops one reference to a snapshot version and, if the
// oldest live snapshot advanced, reclaims the history nothing can see any
// more.
func (s *Store) releaseSnapshot(version uint64) {
	s.lock.Lock()
	s.locked.snapshots[version]--
	if s.locked.snapshots[version] <= 0 {
		delete(s.locked.snapshots, version)
	}
	keep := s.locked.version
	for v := range s.locked.snapshots {
		if v < keep {
			keep = v
		}
	}
	runVacuum := keep > s.locked.reclaimed
	s.lock.Unlock()
	metrics.liveSnapshots.Dec()
	if runVacuum {
		s.vacuum(keep)
	}
}

// vacuum reclaims version history that no snapshot at or above 'keep' can
// observe. It runs as a writer (swapping in cleaned index clones) but skips
// the sweep entirely if a write transaction is in flight; the next snapshot
// close will pick it up.
func (s *Store) vacuum(keep uint64) {
	if !s.writer.TryLock() {
		return
	}
	defer s.writer.Unlock()

	s.lock.RLock()
	// Re-check under the writer lock: a commit may have moved things on.
	if keep > s.locked.version {
		keep = s.locked.version
	}
	for v := range s.locked.snapshots {
		if v < keep {
			keep = v
		}
	}
	if keep <= s.locked.reclaimed {
		s.lock.RUnlock()
		return
	}
	old := s.locked.indexes
	s.lock.RUnlock()

	var clones [numOrderings]*btree.BTree
	for i, tree := range old {
		clones[i] = tree.Clone()
	}
	var dead []IDQuad
	clones[orderSPOG].Ascend(func(item btree.Item) bool {
		ent := item.(indexItem).ent
		ent.lock.Lock()
		empty := ent.rng.truncate(keep)
		ent.lock.Unlock()
		if empty {
			dead = append(dead, ent.quad)
		}
		return true
	})
	for _, quad := range dead {
		for o := orderSPOG; o < numOrderings; o++ {
			clones[o].Delete(indexItem{key: o.permute(quad)})
		}
	}

	s.lock.Lock()
	s.locked.indexes = clones
	s.locked.reclaimed = keep
	s.lock.Unlock()
	metrics.vacuumSweepsTotal.Inc()
	metrics.entriesVacuumed.Add(float64(len(dead)))
}

// currentStats copies the store's cardinality counters. Stats are estimates
// for planning: they track the latest committed state, not any particular
// snapshot's version.
func (s *Store) currentStats() Stats {
	s.lock.RLock()
	defer s.lock.RUnlock()
	per := make(map[ID]int, len(s.locked.perPredicate))
	for id, n := range s.locked.perPredicate {
		per[id] = n
	}
	return Stats{
		dict:         s.dict,
		totalQuads:   s.locked.totalQuads,
		perPredicate: per,
	}
}

// publish is called by Commit with the writer lock held. It swaps in the new
// index trees and makes 'version' visible to subsequent snapshots.
func (s *Store) publish(indexes [numOrderings]*btree.BTree, version uint64,
	statsDelta map[ID]int, inserted, deleted int, took time.Duration) {

	s.lock.Lock()
	s.locked.indexes = indexes
	s.locked.version = version
	for pred, delta := range statsDelta {
		next := s.locked.perPredicate[pred] + delta
		if next <= 0 {
			delete(s.locked.perPredicate, pred)
		} else {
			s.locked.perPredicate[pred] = next
		}
	}
	s.locked.totalQuads += inserted - deleted
	total := s.locked.totalQuads
	s.lock.Unlock()

	metrics.commitsTotal.Inc()
	metrics.quadsInsertedTotal.Add(float64(inserted))
	metrics.quadsDeletedTotal.Add(float64(deleted))
	metrics.storedQuads.Set(float64(total))
	metrics.commitApplySeconds.Observe(took.Seconds())
}
