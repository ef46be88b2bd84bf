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
	"time"

	"github.com/ebay/quarry/rdf"
	"github.com/google/btree"
)

// A Transaction stages inserts and removes and publishes them atomically at
// Commit. Until Commit returns, no snapshot - existing or new - can observe
// any of the staged changes; after Commit, snapshots opened subsequently
// observe all of them. Rollback (or abandoning the transaction) leaves the
// store exactly as it was at Begin.
//
// A Transaction is not safe for concurrent use by multiple goroutines.
type Transaction struct {
	store *Store
	// The version Commit will publish: one past the committed version at
	// Begin. Writers are serialized, so nothing else can claim it.
	target uint64

	lock sync.Mutex
	log  []logOp
	done bool
}

type logOp struct {
	insert bool
	quad   rdf.Quad
}

// Insert stages the quad for insertion. Inserting a quad that is already
// visible is a no-op, not an error. Insert returns an error only for a quad
// with term kinds that are not allowed in its positions, or for a finished
// transaction.
func (t *Transaction) Insert(quad rdf.Quad) error {
	return t.stage(quad, true)
}

// Remove stages the quad for removal. Removing an absent quad is a no-op,
// not an error.
func (t *Transaction) Remove(quad rdf.Quad) error {
	return t.stage(quad, false)
}

func (t *Transaction) stage(quad rdf.Quad, insert bool) error {
	if err := quad.Validate(); err != nil {
		return err
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.done {
		return ErrTransactionDone
	}
	t.log = append(t.log, logOp{insert: insert, quad: quad})
	return nil
}

// Commit atomically publishes every staged change at a new version. Either
// all staged changes become visible to subsequent snapshots, or none do.
// On error the log is kept intact so the caller may retry or roll back.
func (t *Transaction) Commit() error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.done {
		return ErrTransactionDone
	}
	start := time.Now()

	s := t.store
	s.lock.RLock()
	current := s.locked.indexes
	s.lock.RUnlock()
	var clones [numOrderings]*btree.BTree
	for i, tree := range current {
		clones[i] = tree.Clone()
	}

	statsDelta := make(map[ID]int)
	inserted, deleted := 0, 0
	for _, op := range t.log {
		quad := IDQuad{
			Subject:   s.dict.Intern(op.quad.Subject),
			Predicate: s.dict.Intern(op.quad.Predicate),
			Object:    s.dict.Intern(op.quad.Object),
			Graph:     s.dict.Intern(op.quad.Graph),
		}
		item := clones[orderSPOG].Get(indexItem{key: orderSPOG.permute(quad)})
		if op.insert {
			if item == nil {
				ent := &entry{quad: quad}
				ent.rng.add(t.target)
				for o := orderSPOG; o < numOrderings; o++ {
					clones[o].ReplaceOrInsert(indexItem{key: o.permute(quad), ent: ent})
				}
				statsDelta[quad.Predicate]++
				inserted++
				continue
			}
			ent := item.(indexItem).ent
			ent.lock.Lock()
			changed := ent.rng.add(t.target)
			ent.lock.Unlock()
			if changed {
				statsDelta[quad.Predicate]++
				inserted++
			}
		} else {
			if item == nil {
				continue
			}
			ent := item.(indexItem).ent
			ent.lock.Lock()
			changed := ent.rng.close(t.target)
			ent.lock.Unlock()
			if changed {
				statsDelta[quad.Predicate]--
				deleted++
			}
		}
	}

	// The version-range edits above reference t.target, which no snapshot
	// can hold until publish bumps the version counter. Swapping the index
	// pointers and bumping the version together is the atomic commit point.
	s.publish(clones, t.target, statsDelta, inserted, deleted, time.Since(start))
	t.done = true
	t.log = nil
	s.writer.Unlock()
	return nil
}

// Rollback discards the transaction log. The store is left exactly as it was
// at Begin. Rolling back a finished transaction is a no-op.
func (t *Transaction) Rollback() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.log = nil
	t.store.writer.Unlock()
	metrics.rollbacksTotal.Inc()
}
