package ws

import (
	"errors"

	"byte-battle/internal/battle"
	"byte-battle/internal/stream"
)

const ProtocolVersion = "1.0"

// Client to server message types.
const (
	TypeCreateRoom  = "create_room"
	TypeRequestJoin = "request_join"
	TypeRespondJoin = "respond_join"
	TypeConfirmJoin = "confirm_join"
	TypeChat        = "chat"
	TypeSubmit      = "submit"
	TypeVote        = "vote"
	TypeHeartbeat   = "heartbeat"
	TypeRejoin      = "rejoin"
	TypeLeave       = "leave"
	TypeLookup      = "lookup"
)

const maxRequestIDLen = 64

var (
	ErrInvalidMessage   = errors.New("invalid_message")
	ErrInvalidRequestID = errors.New("invalid_request_id")
	ErrUnknownCommand   = errors.New("unknown_command")
)

// ClientMessage is every client command. Fields not used by a type are ignored.
type ClientMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	RoomCode  string `json:"room_code,omitempty"`
	Accept    *bool  `json:"accept,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
	Vote      string `json:"vote,omitempty"`
}

// Ack answers one client command on the connection that sent it.
type Ack struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	RequestID       string       `json:"request_id,omitempty"`
	Command         string       `json:"command"`
	Ok              bool         `json:"ok"`
	Error           string       `json:"error,omitempty"`
	RoomCode        string       `json:"room_code,omitempty"`
	Outcome         string       `json:"outcome,omitempty"`
	View            *battle.View `json:"view,omitempty"`
}

// EventFrame carries a room event to the client.
type EventFrame struct {
	ProtocolVersion string `json:"protocol_version"`
	stream.Event
}

func newEventFrame(ev stream.Event) EventFrame {
	return EventFrame{ProtocolVersion: ProtocolVersion, Event: ev}
}
