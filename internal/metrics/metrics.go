package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FilterVerdict = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgegate_filter_verdict_total",
			Help: "Count of filter verdicts (next/done/forward)",
		},
		[]string{"filter", "verdict"},
	)
	RequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edgegate_request_duration_seconds",
			Help:    "Latency of gateway request handling",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
	SessionOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgegate_session_outcome_total",
			Help: "Session token outcomes (issued/verified/refreshed/rejected)",
		},
		[]string{"outcome"},
	)
	AssetProxy = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgegate_asset_proxy_total",
			Help: "Asset proxy results (hit/not_found/upstream_error)",
		},
		[]string{"result"},
	)
	OriginErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edgegate_origin_errors_total",
			Help: "Origin forwarding errors by kind",
		},
		[]string{"kind"},
	)
	AutomationTriggers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "edgegate_automation_triggers_total",
			Help: "Automation webhook triggers accepted",
		},
	)
	BuildInfo = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "edgegate_build_info",
			Help:        "Build info gauge with const labels",
			ConstLabels: prometheus.Labels{"version": "0.1.0"},
		},
	)
)

func MustRegister() {
	prometheus.MustRegister(FilterVerdict, RequestDuration, SessionOutcome, AssetProxy, OriginErrors, AutomationTriggers, BuildInfo)
}
