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
	log "github.com/sirupsen/logrus"

	"github.com/ebay/quarry/rdf"
)

// LoaderOptions configure bulk loading.
type LoaderOptions struct {
	// BatchSize is the number of quads committed per transaction when
	// Atomic is false. Zero selects a default of 10000.
	BatchSize int
	// Atomic loads every quad in a single transaction: either the whole
	// data set becomes visible at one version or, on error, none of it
	// does. When false the loader commits in batches, which bounds the
	// size of any one commit but leaves a prefix of the data visible if
	// the load fails partway through.
	Atomic bool
}

// Load bulk-inserts quads into the store. It is a convenience over opening
// transactions directly; see LoaderOptions for the atomicity trade-off.
func (s *Store) Load(quads []rdf.Quad, opts LoaderOptions) error {
	if opts.Atomic {
		return s.loadBatch(quads)
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 10000
	}
	for start := 0; start < len(quads); start += batch {
		end := start + batch
		if end > len(quads) {
			end = len(quads)
		}
		if err := s.loadBatch(quads[start:end]); err != nil {
			log.WithFields(log.Fields{
				"loaded": start,
				"total":  len(quads),
			}).WithError(err).Warn("bulk load failed partway; earlier batches remain committed")
			return err
		}
	}
	return nil
}

func (s *Store) loadBatch(quads []rdf.Quad) error {
	tx := s.Begin()
	for _, quad := range quads {
		if err := tx.Insert(quad); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
