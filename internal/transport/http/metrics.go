package httptransport

import "expvar"

var (
	metricRewardEventsTotal  = expvar.NewInt("reward_events_total")
	metricRewardEventErrors  = expvar.NewInt("reward_event_errors_total")
	metricPurchasesTotal     = expvar.NewInt("reward_purchases_total")
	metricBattleCommandTotal = expvar.NewInt("battle_http_commands_total")
	metricAdminAuthFailures  = expvar.NewInt("admin_auth_failures_total")

	metricBattleSSEConnectionsTotal  = expvar.NewInt("battle_sse_connections_total")
	metricBattleSSEConnectionsActive = expvar.NewInt("battle_sse_connections_active")
)
