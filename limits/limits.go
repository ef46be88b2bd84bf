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

// Package limits implements the resource governor that bounds query
// evaluation: a wall-clock timeout plus ceilings on result rows, aggregation
// groups, property path depth, and tracked buffer memory. The evaluator
// consults a Governor at frequent, well-defined points and halts with a
// typed error when a ceiling is hit, rather than silently truncating.
package limits

import "time"

// Limits configures the resource governor for one query. A zero value in
// any field means that limit is unlimited; the zero Limits value runs a
// query with no restrictions at all. Use Default for the standard
// protective configuration.
type Limits struct {
	// Timeout is the maximum wall-clock query execution time. Evaluation
	// past the deadline halts with a CancelledError.
	Timeout time.Duration

	// MaxResultRows caps the number of rows the query may emit.
	MaxResultRows uint64

	// MaxGroups caps the number of groups a GROUP BY may create. The cap
	// is enforced as groups are created, not after the fact.
	MaxGroups uint64

	// MaxPropertyPathDepth caps frontier expansion steps when evaluating
	// transitive property paths.
	MaxPropertyPathDepth uint64

	// MaxMemoryBytes caps the memory the query's materialization buffers
	// (sort, distinct, aggregation, hash join build side) may grow to. It
	// is a soft accounting limit over tracked buffers, not a process-wide
	// measurement.
	MaxMemoryBytes uint64
}

// Default returns the standard limits: protective enough for an untrusted
// query, roomy enough for normal workloads.
func Default() Limits {
	return Limits{
		Timeout:              30 * time.Second,
		MaxResultRows:        10000,
		MaxGroups:            1000,
		MaxPropertyPathDepth: 1000,
		MaxMemoryBytes:       1 << 30, // 1 GiB
	}
}

// Strict returns tight limits suitable for a public endpoint.
func Strict() Limits {
	return Limits{
		Timeout:              5 * time.Second,
		MaxResultRows:        1000,
		MaxGroups:            100,
		MaxPropertyPathDepth: 100,
		MaxMemoryBytes:       100 << 20, // 100 MiB
	}
}

// Permissive returns loose limits suitable for trusted internal queries.
func Permissive() Limits {
	return Limits{
		Timeout:              5 * time.Minute,
		MaxResultRows:        100000,
		MaxGroups:            10000,
		MaxPropertyPathDepth: 10000,
		MaxMemoryBytes:       10 << 30, // 10 GiB
	}
}

// Unlimited returns limits with every restriction disabled. Only for
// trusted queries or local development.
func Unlimited() Limits {
	return Limits{}
}
