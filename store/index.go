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

	"github.com/google/btree"
	log "github.com/sirupsen/logrus"
)

// IDQuad is a quad with all four terms interned.
type IDQuad struct {
	Subject   ID
	Predicate ID
	Object    ID
	Graph     ID
}

// IDPattern is a quad lookup pattern over interned terms; 0 marks a
// wildcard position.
type IDPattern struct {
	Subject   ID
	Predicate ID
	Object    ID
	Graph     ID
}

// An entry is the single versioned record for one distinct quad. All four
// index orderings point at the same entry, so commit-time version updates
// touch exactly one place. The lock guards rng only; quad is immutable.
type entry struct {
	quad IDQuad

	lock sync.Mutex
	rng  versionRange
}

func (e *entry) visibleAt(version uint64) bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.rng.contains(version)
}

// ordering selects one of the four index sort orders. Every ordering is a
// permutation of (subject, predicate, object, graph); between them any single
// bound position, and the common bound combinations, map to an index prefix.
type ordering int

const (
	orderSPOG ordering = iota
	orderPOSG
	orderOSPG
	orderGSPO
	numOrderings
)

func (o ordering) String() string {
	switch o {
	case orderSPOG:
		return "SPOG"
	case orderPOSG:
		return "POSG"
	case orderOSPG:
		return "OSPG"
	case orderGSPO:
		return "GSPO"
	}
	log.Panicf("Unknown ordering %d", int(o))
	return ""
}

// permute returns the quad's terms in this ordering's sort order.
func (o ordering) permute(q IDQuad) [4]ID {
	switch o {
	case orderSPOG:
		return [4]ID{q.Subject, q.Predicate, q.Object, q.Graph}
	case orderPOSG:
		return [4]ID{q.Predicate, q.Object, q.Subject, q.Graph}
	case orderOSPG:
		return [4]ID{q.Object, q.Subject, q.Predicate, q.Graph}
	case orderGSPO:
		return [4]ID{q.Graph, q.Subject, q.Predicate, q.Object}
	}
	log.Panicf("Unknown ordering %d", int(o))
	return [4]ID{}
}

// prefix returns the pattern's terms for this ordering along with the number
// of leading bound positions, which is how much of the btree key range the
// pattern can constrain.
func (o ordering) prefix(p IDPattern) (key [4]ID, bound int) {
	key = o.permute(IDQuad(p))
	for bound < 4 && key[bound] != 0 {
		bound++
	}
	return key, bound
}

// indexItem is one btree item: the permuted key plus the shared entry.
type indexItem struct {
	key [4]ID
	ent *entry
}

// Less compares the permuted keys lexicographically.
func (i indexItem) Less(other btree.Item) bool {
	o := other.(indexItem)
	for n := 0; n < 4; n++ {
		if i.key[n] != o.key[n] {
			return i.key[n] < o.key[n]
		}
	}
	return false
}

const btreeDegree = 16

func newIndexes() [numOrderings]*btree.BTree {
	var trees [numOrderings]*btree.BTree
	for i := range trees {
		trees[i] = btree.New(btreeDegree)
	}
	return trees
}

// matches reports whether the quad satisfies every bound position of the
// pattern, including the non-prefix ones the index range could not constrain.
func (p IDPattern) matches(q IDQuad) bool {
	return (p.Subject == 0 || p.Subject == q.Subject) &&
		(p.Predicate == 0 || p.Predicate == q.Predicate) &&
		(p.Object == 0 || p.Object == q.Object) &&
		(p.Graph == 0 || p.Graph == q.Graph)
}

// chooseOrdering picks the index whose sort order has the longest bound
// prefix for the pattern. Ties go to the earliest ordering, which keeps scan
// order deterministic for a given pattern.
func chooseOrdering(p IDPattern) ordering {
	best, bestBound := orderSPOG, -1
	for o := orderSPOG; o < numOrderings; o++ {
		if _, bound := o.prefix(p); bound > bestBound {
			best, bestBound = o, bound
		}
	}
	return best
}

// cursorBatch is how many items a cursor pulls out of the btree per refill.
// Refilling in batches keeps the pull-based iterator from paying an O(log n)
// descent per quad.
const cursorBatch = 64

// A cursor is a lazy iterator over the entries of one btree that match a
// pattern and are visible at a version. It does not lock the tree: the tree
// it walks is an immutable snapshot (writers swap in fresh clones, they never
// mutate a published tree's structure).
type cursor struct {
	tree    *btree.BTree
	order   ordering
	pattern IDPattern
	version uint64

	started bool
	// Resume position: the last key handed to the caller or buffered.
	last [4]ID
	// Bound prefix of the pattern under 'order'; iteration stops as soon as a
	// key leaves this prefix.
	prefixKey [4]ID
	prefixLen int
	buf       []*entry
	bufNext   int
	done      bool
}

func newCursor(tree *btree.BTree, order ordering, pattern IDPattern, version uint64) *cursor {
	key, bound := order.prefix(pattern)
	return &cursor{
		tree:      tree,
		order:     order,
		pattern:   pattern,
		version:   version,
		prefixKey: key,
		prefixLen: bound,
	}
}

// next returns the next visible matching quad, or false when exhausted.
func (c *cursor) next() (IDQuad, bool) {
	for {
		if c.bufNext < len(c.buf) {
			ent := c.buf[c.bufNext]
			c.bufNext++
			return ent.quad, true
		}
		if c.done {
			return IDQuad{}, false
		}
		c.refill()
	}
}

func (c *cursor) refill() {
	c.buf = c.buf[:0]
	c.bufNext = 0
	pivot := indexItem{key: c.prefixKey}
	skipCurrent := false
	if c.started {
		pivot = indexItem{key: c.last}
		skipCurrent = true
	}
	n := 0
	c.tree.AscendGreaterOrEqual(pivot, func(item btree.Item) bool {
		it := item.(indexItem)
		if skipCurrent && it.key == c.last {
			return true
		}
		for i := 0; i < c.prefixLen; i++ {
			if it.key[i] != c.prefixKey[i] {
				c.done = true
				return false
			}
		}
		c.last = it.key
		c.started = true
		n++
		if c.pattern.matches(it.ent.quad) && it.ent.visibleAt(c.version) {
			c.buf = append(c.buf, it.ent)
		}
		return n < cursorBatch
	})
	if n < cursorBatch {
		c.done = true
	}
}
