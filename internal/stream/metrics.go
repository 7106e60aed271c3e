package stream

import "expvar"

var (
	metricConnectionsOpened  = expvar.NewInt("stream_connections_opened_total")
	metricConnectionsActive  = expvar.NewInt("stream_connections_active")
	metricConnectionsReaped  = expvar.NewInt("stream_connections_reaped_total")
	metricEventsTotal        = expvar.NewInt("stream_events_total")
	metricEventsDroppedTotal = expvar.NewInt("stream_events_dropped_total")
	metricSSEActive          = expvar.NewInt("stream_sse_active")
)
