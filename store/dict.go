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
	log "github.com/sirupsen/logrus"
)

// An ID is the compact identifier the dictionary assigns to one distinct
// term. IDs are dense, start at 1, and stay stable for the life of the store.
// 0 is never a valid ID; it marks an unbound position in patterns and rows.
type ID uint64

// A Dictionary interns terms. Structurally equal terms always intern to the
// same ID, and every ID it has handed out resolves back to its term. The
// dictionary is owned by one Store; two stores in the same process never
// share IDs.
type Dictionary struct {
	lock  sync.RWMutex
	ids   map[rdf.Term]ID
	terms []rdf.Term
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		ids: make(map[rdf.Term]ID),
	}
}

// Intern returns the ID for the term, assigning a fresh one on first sight.
// It is safe to call concurrently.
func (d *Dictionary) Intern(term rdf.Term) ID {
	d.lock.RLock()
	id, ok := d.ids[term]
	d.lock.RUnlock()
	if ok {
		return id
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if id, ok = d.ids[term]; ok {
		return id
	}
	d.terms = append(d.terms, term)
	id = ID(len(d.terms))
	d.ids[term] = id
	return id
}

// Lookup returns the ID already assigned to the term, or false if the term
// has never been interned. Unlike Intern it never allocates an ID, which
// makes it the right call for query constants: an unknown constant means an
// empty result, not a new dictionary entry.
func (d *Dictionary) Lookup(term rdf.Term) (ID, bool) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	id, ok := d.ids[term]
	return id, ok
}

// Resolve returns the term for an ID previously returned by Intern. Passing
// any other value is a bug in the caller.
func (d *Dictionary) Resolve(id ID) rdf.Term {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if id == 0 || int(id) > len(d.terms) {
		log.Panicf("Resolve called with ID %d that was never interned (have %d terms)",
			id, len(d.terms))
	}
	return d.terms[id-1]
}

// Len returns the number of distinct terms interned so far.
func (d *Dictionary) Len() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return len(d.terms)
}
