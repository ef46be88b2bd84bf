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

package limits

import (
	"context"
	"time"

	"github.com/ebay/quarry/util/clocks"
)

// A Governor enforces one query's limits. It is created when evaluation
// starts (fixing the deadline) and threaded through the evaluator, which
// calls back at each enforcement point. A Governor is used by one
// evaluation goroutine only; it needs no locking.
type Governor struct {
	limits   Limits
	clock    clocks.Source
	deadline time.Time

	rows   uint64
	groups uint64
	bytes  uint64
}

// NewGovernor starts enforcing the limits now; the timeout deadline counts
// from this call. The clock is mockable for tests; pass clocks.Wall in
// production.
func NewGovernor(limits Limits, clock clocks.Source) *Governor {
	gov := &Governor{limits: limits, clock: clock}
	if limits.Timeout != 0 {
		gov.deadline = clock.Now().Add(limits.Timeout)
	}
	return gov
}

// Check returns a CancelledError if the context was cancelled or the
// wall-clock deadline has passed, nil otherwise. The evaluator calls this
// at every enforcement point; it must stay cheap.
func (gov *Governor) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &CancelledError{Cause: err}
	}
	if !gov.deadline.IsZero() && gov.clock.Now().After(gov.deadline) {
		return &CancelledError{Timeout: gov.limits.Timeout}
	}
	return nil
}

// AddRow accounts for one emitted top-level result row.
func (gov *Governor) AddRow(ctx context.Context) error {
	gov.rows++
	if max := gov.limits.MaxResultRows; max != 0 && gov.rows > max {
		return &LimitError{Kind: LimitRows, Current: gov.rows, Ceiling: max}
	}
	return gov.Check(ctx)
}

// AddGroup accounts for one newly created aggregation group. It is called
// as the group is created, so a pathological input fails at the ceiling,
// not after full consumption.
func (gov *Governor) AddGroup(ctx context.Context) error {
	gov.groups++
	if max := gov.limits.MaxGroups; max != 0 && gov.groups > max {
		return &LimitError{Kind: LimitGroups, Current: gov.groups, Ceiling: max}
	}
	return gov.Check(ctx)
}

// PathStep accounts for one property path frontier expansion step at the
// given depth.
func (gov *Governor) PathStep(ctx context.Context, depth uint64) error {
	if max := gov.limits.MaxPropertyPathDepth; max != 0 && depth > max {
		return &LimitError{Kind: LimitPathDepth, Current: depth, Ceiling: max}
	}
	return gov.Check(ctx)
}

// Grow accounts for growth of a materialization buffer (sort, distinct
// seen-set, group accumulators, hash join build side). Accounting is in
// approximate bytes; precision matters less than catching runaway growth.
func (gov *Governor) Grow(ctx context.Context, bytes uint64) error {
	gov.bytes += bytes
	if max := gov.limits.MaxMemoryBytes; max != 0 && gov.bytes > max {
		return &LimitError{Kind: LimitMemory, Current: gov.bytes, Ceiling: max}
	}
	return gov.Check(ctx)
}
