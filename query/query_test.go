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

package query

import (
	"context"
	"testing"
	"time"

	"github.com/ebay/quarry/limits"
	"github.com/ebay/quarry/query/algebra"
	"github.com/ebay/quarry/rdf"
	"github.com/ebay/quarry/store"
	"github.com/ebay/quarry/util/clocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iri(name string) rdf.IRI {
	return rdf.NewIRI("http://example.com/" + name)
}

func knowsQuery() algebra.Operator {
	return &algebra.BGP{Patterns: []algebra.QuadPattern{{
		Subject:   algebra.NewVar("x"),
		Predicate: algebra.NewConstant(iri("knows")),
		Object:    algebra.NewVar("y"),
		Graph:     algebra.NewConstant(rdf.DefaultGraph{}),
	}}}
}

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	st := store.New()
	err := st.Load([]rdf.Quad{
		rdf.NewTriple(iri("alice"), iri("knows"), iri("bob")),
		rdf.NewTriple(iri("bob"), iri("knows"), iri("carol")),
	}, store.LoaderOptions{Atomic: true})
	require.NoError(t, err)
	return New(st), st
}

func drain(t *testing.T, res *Results) [][]Value {
	t.Helper()
	var rows [][]Value
	for {
		row, ok, err := res.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return rows
		}
		rows = append(rows, append([]Value(nil), row...))
	}
}

func Test_QueryRuns(t *testing.T) {
	engine, _ := newTestEngine(t)
	res, err := engine.Query(context.Background(), knowsQuery(), Options{})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, []string{"x", "y"}, res.Columns())
	assert.Len(t, drain(t, res), 2)
}

func Test_NextAfterCloseFails(t *testing.T) {
	engine, _ := newTestEngine(t)
	res, err := engine.Query(context.Background(), knowsQuery(), Options{})
	require.NoError(t, err)
	res.Close()

	_, _, err = res.Next(context.Background())
	assert.ErrorIs(t, err, store.ErrSnapshotClosed)
	// Closing again is fine.
	res.Close()
}

func Test_QueryObservesSnapshotVersion(t *testing.T) {
	engine, st := newTestEngine(t)
	res, err := engine.Query(context.Background(), knowsQuery(), Options{})
	require.NoError(t, err)
	defer res.Close()

	// A commit after the query started must not leak into its results.
	txn := st.Begin()
	require.NoError(t, txn.Insert(rdf.NewTriple(iri("carol"), iri("knows"), iri("dave"))))
	require.NoError(t, txn.Commit())

	assert.Len(t, drain(t, res), 2)
}

func Test_RowCeilingStopsQuery(t *testing.T) {
	engine, _ := newTestEngine(t)
	lim := limits.Limits{MaxResultRows: 1}
	res, err := engine.Query(context.Background(), knowsQuery(), Options{Limits: &lim})
	require.NoError(t, err)
	defer res.Close()

	_, ok, err := res.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, _, err = res.Next(context.Background())
	var limErr *limits.LimitError
	require.ErrorAs(t, err, &limErr)
	assert.Equal(t, limits.LimitRows, limErr.Kind)

	// The error is sticky.
	_, _, err2 := res.Next(context.Background())
	assert.ErrorAs(t, err2, &limErr)
}

func Test_TimeoutUsesOptionClock(t *testing.T) {
	engine, _ := newTestEngine(t)
	mock := clocks.NewMock()
	lim := limits.Limits{Timeout: time.Second}
	res, err := engine.Query(context.Background(), knowsQuery(), Options{Limits: &lim, Clock: mock})
	require.NoError(t, err)
	defer res.Close()

	_, ok, err := res.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	mock.Advance(5 * time.Second)
	_, _, err = res.Next(context.Background())
	var cancelled *limits.CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Equal(t, time.Second, cancelled.Timeout)
}

func Test_PlannerErrorClosesSnapshot(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Query(context.Background(), &algebra.BGP{}, Options{})
	assert.Error(t, err)
}
