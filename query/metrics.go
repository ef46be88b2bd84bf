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
	metricsutil "github.com/ebay/quarry/util/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type queryMetrics struct {
	queriesTotal                prometheus.Counter
	queriesOverLimitTotal       prometheus.Counter
	planQueryDurationSeconds    prometheus.Summary
	executeQueryDurationSeconds prometheus.Summary
	resultRows                  prometheus.Histogram
}

var metrics queryMetrics

func init() {
	mr := metricsutil.Registry{R: prometheus.DefaultRegisterer}
	metrics = queryMetrics{
		queriesTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "query",
			Name:      "queries_total",
			Help:      "The number of queries started.",
		}),
		queriesOverLimitTotal: mr.NewCounter(prometheus.CounterOpts{
			Namespace: "quarry",
			Subsystem: "query",
			Name:      "queries_over_limit_total",
			Help: `The number of queries stopped by a resource ceiling or timeout.

A steady rate here usually means callers should raise their Limits or narrow
their queries, not that anything is wrong with the engine.
`,
		}),
		planQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace:  "quarry",
			Subsystem:  "query",
			Name:       "planning_duration_seconds",
			Help:       `The time it takes to come up with a query plan.`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		executeQueryDurationSeconds: mr.NewSummary(prometheus.SummaryOpts{
			Namespace: "quarry",
			Subsystem: "query",
			Name:      "execute_duration_seconds",
			Help: `The time from starting execution to the results being closed.

This includes the time the caller spends between Next calls, since evaluation
is pull-based.
`,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		}),
		resultRows: mr.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quarry",
			Subsystem: "query",
			Name:      "result_rows",
			Help:      "The number of rows each query produced.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}
