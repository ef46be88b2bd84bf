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

// A versionRange encodes the set of commit versions at which one stored entry
// is visible. It is a list of boundaries [s1, e1, s2, e2, ...] describing the
// half-open ranges [s1, e1), [s2, e2), ...; an odd number of boundaries means
// the last range is still open. Entries that are inserted once and rarely
// deleted stay in the two-element inline array; entries that flip repeatedly
// spill to a heap-allocated list.
//
// versionRange is not safe for concurrent use; the owning entry's lock guards
// it.
type versionRange struct {
	// Number of boundaries in small. Ignored once spilled.
	n       uint8
	spilled bool
	small   [2]uint64
	spill   []uint64
}

// bounds returns the current boundary list. The returned slice aliases the
// range's storage and must not be retained.
func (r *versionRange) bounds() []uint64 {
	if r.spilled {
		return r.spill
	}
	return r.small[:r.n]
}

func (r *versionRange) setBounds(b []uint64) {
	if len(b) <= len(r.small) {
		r.n = uint8(copy(r.small[:], b))
		r.spilled = false
		r.spill = nil
		return
	}
	if !r.spilled || &r.spill[0] != &b[0] {
		r.spill = append(r.spill[:0:0], b...)
	} else {
		r.spill = b
	}
	r.spilled = true
}

func (r *versionRange) push(v uint64) {
	if !r.spilled && r.n < uint8(len(r.small)) {
		r.small[r.n] = v
		r.n++
		return
	}
	if !r.spilled {
		r.spill = append(append([]uint64(nil), r.small[:r.n]...), v)
		r.spilled = true
		return
	}
	r.spill = append(r.spill, v)
}

func (r *versionRange) pop() {
	if r.spilled {
		r.spill = r.spill[:len(r.spill)-1]
		if len(r.spill) <= len(r.small) {
			r.setBounds(r.spill)
		}
		return
	}
	r.n--
}

// open reports whether the entry is currently visible to new versions.
func (r *versionRange) open() bool {
	return len(r.bounds())%2 == 1
}

// empty reports whether no version can see the entry.
func (r *versionRange) empty() bool {
	return len(r.bounds()) == 0
}

// contains reports whether the entry is visible at version v.
func (r *versionRange) contains(v uint64) bool {
	b := r.bounds()
	for i := 0; i < len(b); i += 2 {
		if i+1 < len(b) {
			if b[i] <= v && v < b[i+1] {
				return true
			}
		} else if b[i] <= v {
			return true
		}
	}
	return false
}

// add opens the range at version v. It reports whether the range changed:
// adding to an already-open range is a no-op. Adding at the same version the
// range was last closed at merges the two ranges back together.
func (r *versionRange) add(v uint64) bool {
	b := r.bounds()
	if len(b)%2 == 1 {
		return false
	}
	if len(b) > 0 && b[len(b)-1] == v {
		r.pop()
		return true
	}
	r.push(v)
	return true
}

// close ends the open range at version v. It reports whether the range
// changed: closing a range that is not open is a no-op. Closing at the same
// version the range was opened at removes the empty range entirely.
func (r *versionRange) close(v uint64) bool {
	b := r.bounds()
	if len(b)%2 == 0 {
		return false
	}
	if b[len(b)-1] == v {
		r.pop()
		return true
	}
	r.push(v)
	return true
}

// truncate discards history that no snapshot at or above 'keep' can observe:
// every range that ended at or before 'keep'. It reports whether the range
// is empty afterwards, meaning the entry itself can be reclaimed.
func (r *versionRange) truncate(keep uint64) (empty bool) {
	b := r.bounds()
	kept := b[:0:0]
	for i := 0; i < len(b); i += 2 {
		if i+1 < len(b) {
			if b[i+1] > keep {
				kept = append(kept, b[i], b[i+1])
			}
		} else {
			kept = append(kept, b[i])
		}
	}
	r.setBounds(kept)
	return len(kept) == 0
}
