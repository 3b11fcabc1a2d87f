// Package metrics は督促スイープのPrometheusメトリクスを提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// sweepRuns はスイープの実行回数。
	// Labels:
	// - status: "succeeded", "partial", "failed"
	sweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reminder",
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Number of reminder sweeps by final status",
		},
		[]string{"status"},
	)

	// sweepDuration はスイープ1回の所要時間。
	sweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reminder",
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Duration of a reminder sweep",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// transitions は請求書単位の処理結果。
	// Labels:
	// - from, to: 遷移元と遷移先の状態
	// - outcome: "advanced", "skipped", "notify_failure", "commit_failure"
	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reminder",
			Subsystem: "invoice",
			Name:      "transitions_total",
			Help:      "Per-invoice transition attempts by outcome",
		},
		[]string{"from", "to", "outcome"},
	)

	// storeQueryFailures は状態ごとの一覧取得に失敗した回数。
	storeQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reminder",
			Subsystem: "store",
			Name:      "query_failures_total",
			Help:      "Number of failed per-state batch queries",
		},
		[]string{"state"},
	)
)

// ObserveSweep はスイープの完了を記録する。
func ObserveSweep(status string, seconds float64) {
	if status == "" {
		status = "unknown"
	}
	sweepRuns.WithLabelValues(status).Inc()
	sweepDuration.Observe(seconds)
}

// IncTransition は請求書1件の処理結果を記録する。
func IncTransition(from, to, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	transitions.WithLabelValues(from, to, outcome).Inc()
}

// IncStoreQueryFailure は一覧取得の失敗を記録する。
func IncStoreQueryFailure(state string) {
	storeQueryFailures.WithLabelValues(state).Inc()
}

// Handler はメトリクス公開用のHTTPハンドラを返す。
func Handler() http.Handler {
	return promhttp.Handler()
}
