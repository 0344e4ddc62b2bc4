// internal/metrics/metrics.go
//
// Prometheus collectors：帳戶狀態轉換次數與 HTTP 請求統計。
// 使用獨立 Registry，避免測試之間互相污染預設 registry。

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeUnchanged = "unchanged"
	OutcomeInvalid   = "invalid"
	OutcomeUnknown   = "unknown"
)

// Metrics 持有本服務所有 collector。
type Metrics struct {
	Registry *prometheus.Registry

	transitions  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New 建立並註冊所有 collector。
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bank",
				Subsystem: "account",
				Name:      "transitions_total",
				Help:      "Total number of dispatched account actions by outcome.",
			},
			[]string{"action", "outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bank",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bank",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
			},
			[]string{"method", "route"},
		),
	}
	m.Registry.MustRegister(m.transitions, m.httpRequests, m.httpDuration)
	return m
}

// ObserveTransition 記錄一次 dispatch 的結果。
func (m *Metrics) ObserveTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

// ObserveHTTP 記錄一次 HTTP 請求。
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler 回傳 /metrics 端點。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
