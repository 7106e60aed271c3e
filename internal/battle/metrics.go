package battle

import "expvar"

var (
	metricRoomsCreatedTotal  = expvar.NewInt("battle_rooms_created_total")
	metricRoomsClosedTotal   = expvar.NewInt("battle_rooms_closed_total")
	metricRoomsActive        = expvar.NewInt("battle_rooms_active")
	metricBattlesJudgedTotal = expvar.NewInt("battle_judged_total")
	metricJudgeFallbackTotal = expvar.NewInt("battle_judge_fallback_total")
	metricRoomsReapedTotal   = expvar.NewInt("battle_rooms_reaped_total")
)
