package judge

import "expvar"

var (
	metricRequestsTotal    = expvar.NewInt("judge_requests_total")
	metricFailuresTotal    = expvar.NewInt("judge_failures_total")
	metricRetryTotal       = expvar.NewInt("judge_retry_total")
	metricCircuitOpenTotal = expvar.NewInt("judge_circuit_open_total")
	metricFallbackTotal    = expvar.NewInt("judge_fallback_total")
)
