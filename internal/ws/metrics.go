package ws

import "expvar"

var (
	metricCommandsTotal      = expvar.NewInt("ws_commands_total")
	metricCommandErrorsTotal = expvar.NewInt("ws_command_errors_total")
	metricSocketsActive      = expvar.NewInt("ws_sockets_active")
	metricSocketsTotal       = expvar.NewInt("ws_sockets_total")
)
