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

// Package query is the high level entry point for executing queries. It runs
// the planner and executor over a store snapshot, under the resource limits
// the caller sets.
package query

import (
	"context"
	"errors"
	"time"

	"github.com/ebay/quarry/limits"
	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/query/exec"
	"github.com/ebay/quarry/query/planner"
	"github.com/ebay/quarry/store"
	"github.com/ebay/quarry/util/clocks"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// A Value is one binding in a result row. See exec.Value.
type Value = exec.Value

// Options contains various settings that affect query processing.
type Options struct {
	// Resource ceilings for this query. If nil, limits.Default() applies;
	// pass &unlimited for no ceilings at all.
	Limits *limits.Limits
	// The clock used for timeout enforcement. Defaults to clocks.Wall;
	// tests substitute a mock to drive deadlines without sleeping.
	Clock clocks.Source
}

// Engine provides a high level interface for running queries against one
// store. An Engine can be used concurrently: each query runs against its
// own snapshot with its own governor.
type Engine struct {
	store *store.Store
}

// New creates an Engine for the store.
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// Query plans the algebra expression and starts executing it against a
// snapshot of the store's current version. Evaluation is lazy: rows are
// computed as the caller pulls them from the returned Results, and the
// caller must Close the Results to release the snapshot.
func (e *Engine) Query(ctx context.Context, query algebra.Operator, opt Options) (*Results, error) {
	metrics.queriesTotal.Inc()
	lim := limits.Default()
	if opt.Limits != nil {
		lim = *opt.Limits
	}
	clock := opt.Clock
	if clock == nil {
		clock = clocks.Wall
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "plan query")
	planStart := clock.Now()
	snap := e.store.OpenSnapshot()
	plan, err := planner.Prepare(query, snap.Stats())
	metrics.planQueryDurationSeconds.Observe(clock.Now().Sub(planStart).Seconds())
	span.Finish()
	if err != nil {
		snap.Close()
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"version": snap.Version(),
		"plan":    plan.Operator.String(),
	}).Debug("query planned")

	gov := limits.NewGovernor(lim, clock)
	ev, err := exec.NewEvaluation(plan, snap, e.store.Dictionary(), gov)
	if err != nil {
		snap.Close()
		return nil, err
	}
	execSpan, _ := opentracing.StartSpanFromContext(ctx, "execute query")
	return &Results{
		snap:  snap,
		ev:    ev,
		span:  execSpan,
		clock: clock,
		start: clock.Now(),
	}, nil
}

// Results iterates a query's result rows. It must be closed; an open
// Results pins the underlying snapshot and its version history.
type Results struct {
	snap  *store.Snapshot
	ev    *exec.Evaluation
	span  opentracing.Span
	clock clocks.Source
	start time.Time

	rows   float64
	closed bool
	done   bool
	err    error
}

// Columns returns the names of the row columns, in row order.
func (r *Results) Columns() []string {
	cols := r.ev.Columns()
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

// Next returns the next result row, aligned with Columns. It returns
// (nil, false, nil) when the results are exhausted. Any error is final:
// once Next fails, further calls return the same way.
func (r *Results) Next(ctx context.Context) ([]Value, bool, error) {
	if r.closed {
		return nil, false, store.ErrSnapshotClosed
	}
	if r.done {
		return nil, false, r.err
	}
	row, ok, err := r.ev.Next(ctx)
	if err != nil {
		r.done = true
		r.err = err
		var limErr *limits.LimitError
		var cancelled *limits.CancelledError
		if errors.As(err, &limErr) || errors.As(err, &cancelled) {
			metrics.queriesOverLimitTotal.Inc()
			logrus.WithError(err).Warn("query stopped by resource governor")
		}
		return nil, false, err
	}
	if !ok {
		r.done = true
		return nil, false, nil
	}
	r.rows++
	return row, true, nil
}

// Close releases the snapshot. Closing twice is a no-op; Next after Close
// reports store.ErrSnapshotClosed.
func (r *Results) Close() {
	if r.closed {
		return
	}
	r.closed = true
	metrics.executeQueryDurationSeconds.Observe(r.clock.Now().Sub(r.start).Seconds())
	metrics.resultRows.Observe(r.rows)
	r.span.Finish()
	r.snap.Close()
}
