package battle

import (
	"time"

	"byte-battle/internal/judge"
)

// Server to client event types.
const (
	EventRoomCreated     = "room_created"
	EventJoinRequest     = "join_request"
	EventJoinAccepted    = "join_accepted"
	EventJoinRejected    = "join_rejected"
	EventRoomEntered     = "room_entered"
	EventRejoined        = "rejoined"
	EventChatMessage     = "chat_message"
	EventBattleStarted   = "battle_started"
	EventBattleTimeUp    = "battle_time_up"
	EventPeerSubmitted   = "peer_submitted"
	EventStateChanged    = "state_changed"
	EventBattleResult    = "battle_result"
	EventRematchRestart  = "rematch_restart"
	EventRematchDeclined = "rematch_declined"
	EventRoomClosed      = "room_closed"
	EventError           = "error"
)

const botName = "ByteBot"

type ChatMessage struct {
	Sender  string `json:"sender"`
	ActorID string `json:"actor_id,omitempty"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

type JoinRequestPayload struct {
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name"`
}

type JoinDecisionPayload struct {
	Reason string `json:"reason,omitempty"`
}

type StatePayload struct {
	State  State  `json:"state"`
	Config Config `json:"config"`
}

type BattleStartedPayload struct {
	Problem         judge.Problem `json:"problem"`
	StartedAt       time.Time     `json:"started_at"`
	Deadline        time.Time     `json:"deadline"`
	DurationSeconds int           `json:"duration_seconds"`
	Fallback        bool          `json:"fallback,omitempty"`
}

type PeerSubmittedPayload struct {
	ActorID        string  `json:"actor_id"`
	DisplayName    string  `json:"display_name"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Received       int     `json:"received"`
	Expected       int     `json:"expected"`
}

type ResultPayload struct {
	WinnerActorID string           `json:"winner_actor_id,omitempty"`
	Winner        string           `json:"winner"`
	Reason        string           `json:"reason"`
	Draw          bool             `json:"draw"`
	Fallback      bool             `json:"fallback,omitempty"`
	Scores        map[string]int   `json:"scores"`
	XPAwarded     map[string]int64 `json:"xp_awarded"`
}

type ClosedPayload struct {
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
