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
	metricsutil "github.com/ebay/quarry/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type storeMetrics struct {
	commitsTotal       prometheus.Counter
	rollbacksTotal     prometheus.Counter
	quadsInsertedTotal prometheus.Counter
	quadsDeletedTotal  prometheus.Counter
	entriesVacuumed    prometheus.Counter
	liveSnapshots      prometheus.Gauge
	storedQuads        prometheus.Gauge
	commitApplySeconds prometheus.Histogram
	vacuumSweepsTotal  prometheus.Counter
}

var metrics storeMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = storeMetrics{
		commitsTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "commits_total",
			Help:      "The number of write transactions committed.",
		}),
		rollbacksTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "rollbacks_total",
			Help:      "The number of write transactions rolled back without committing.",
		}),
		quadsInsertedTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "quads_inserted_total",
			Help:      "The number of quads made visible by commits. Idempotent re-inserts are not counted.",
		}),
		quadsDeletedTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "quads_deleted_total",
			Help:      "The number of quads hidden by commits. Removes of absent quads are not counted.",
		}),
		entriesVacuumed: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "entries_vacuumed_total",
			Help: `The number of dead index entries reclaimed.

An entry is dead once every version range it carries ended below the oldest
live snapshot. If this counter stays at zero under a delete-heavy workload,
snapshots are being leaked and history will accumulate.
`,
		}),
		liveSnapshots: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "live_snapshots",
			Help:      "The number of open snapshots currently pinning history.",
		}),
		storedQuads: mr.NewGauge(prometheus.GaugeOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "stored_quads",
			Help:      "The number of quads visible at the latest committed version.",
		}),
		commitApplySeconds: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "commit_apply_seconds",
			Help:      "Time spent applying a transaction log at commit.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		vacuumSweepsTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "store",
			Name:      "vacuum_sweeps_total",
			Help:      "The number of history-reclaim sweeps run.",
		}),
	}
}
