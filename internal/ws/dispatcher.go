package ws

import (
	"context"
	"errors"
	"strings"

	"byte-battle/internal/battle"

	"github.com/rs/zerolog/log"
)

// Rooms is the battle surface the dispatcher drives.
type Rooms interface {
	CreateRoom(ctx context.Context, actor battle.Identity, conn string) (string, error)
	Lookup(ctx context.Context, code string) (battle.View, error)
	RequestJoin(ctx context.Context, code string, actor battle.Identity, conn string) (battle.JoinOutcome, error)
	RespondJoin(ctx context.Context, code, hostID string, accept bool) error
	ConfirmJoin(ctx context.Context, code, actorID, conn string) error
	Heartbeat(ctx context.Context, code, actorID, conn string) error
	Rejoin(ctx context.Context, code, actorID, conn string) (battle.View, error)
	Leave(ctx context.Context, code, actorID string) error
	Chat(ctx context.Context, code, actorID, text string) error
	Submit(ctx context.Context, code, actorID, source string) error
	Vote(ctx context.Context, code, actorID string, yes bool) error
}

// Dispatcher turns client messages into room operations. The websocket server
// and the SSE command endpoint share it.
type Dispatcher struct {
	rooms Rooms
}

func NewDispatcher(rooms Rooms) *Dispatcher {
	return &Dispatcher{rooms: rooms}
}

func (d *Dispatcher) Dispatch(ctx context.Context, actor battle.Identity, conn string, msg ClientMessage) Ack {
	ack := Ack{Type: "ack", ProtocolVersion: ProtocolVersion, RequestID: msg.RequestID, Command: msg.Type, RoomCode: msg.RoomCode}
	if len(msg.RequestID) > maxRequestIDLen {
		return fail(ack, ErrInvalidRequestID)
	}
	err := d.dispatch(ctx, actor, conn, msg, &ack)
	if err != nil {
		metricCommandErrorsTotal.Add(1)
		log.Debug().Err(err).Str("actor_id", actor.ID).Str("command", msg.Type).Str("room_code", msg.RoomCode).Msg("command_rejected")
		return fail(ack, err)
	}
	metricCommandsTotal.Add(1)
	ack.Ok = true
	return ack
}

func (d *Dispatcher) dispatch(ctx context.Context, actor battle.Identity, conn string, msg ClientMessage, ack *Ack) error {
	if msg.Type != TypeCreateRoom && strings.TrimSpace(msg.RoomCode) == "" {
		if _, known := commands[msg.Type]; known {
			return ErrInvalidMessage
		}
	}
	code := msg.RoomCode
	switch msg.Type {
	case TypeCreateRoom:
		c, err := d.rooms.CreateRoom(ctx, actor, conn)
		ack.RoomCode = c
		return err
	case TypeLookup:
		v, err := d.rooms.Lookup(ctx, code)
		if err == nil {
			ack.View = &v
		}
		return err
	case TypeRequestJoin:
		out, err := d.rooms.RequestJoin(ctx, code, actor, conn)
		ack.Outcome = string(out)
		return err
	case TypeRespondJoin:
		if msg.Accept == nil {
			return ErrInvalidMessage
		}
		return d.rooms.RespondJoin(ctx, code, actor.ID, *msg.Accept)
	case TypeConfirmJoin:
		return d.rooms.ConfirmJoin(ctx, code, actor.ID, conn)
	case TypeChat:
		return d.rooms.Chat(ctx, code, actor.ID, msg.Message)
	case TypeSubmit:
		return d.rooms.Submit(ctx, code, actor.ID, msg.Code)
	case TypeVote:
		yes, ok := parseVote(msg.Vote)
		if !ok {
			return ErrInvalidMessage
		}
		return d.rooms.Vote(ctx, code, actor.ID, yes)
	case TypeHeartbeat:
		return d.rooms.Heartbeat(ctx, code, actor.ID, conn)
	case TypeRejoin:
		v, err := d.rooms.Rejoin(ctx, code, actor.ID, conn)
		if err == nil {
			ack.View = &v
		}
		return err
	case TypeLeave:
		return d.rooms.Leave(ctx, code, actor.ID)
	default:
		return ErrUnknownCommand
	}
}

var commands = map[string]struct{}{
	TypeLookup: {}, TypeRequestJoin: {}, TypeRespondJoin: {}, TypeConfirmJoin: {}, TypeChat: {},
	TypeSubmit: {}, TypeVote: {}, TypeHeartbeat: {}, TypeRejoin: {}, TypeLeave: {},
}

func parseVote(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "y":
		return true, true
	case "no", "n":
		return false, true
	default:
		return false, false
	}
}

func fail(ack Ack, err error) Ack {
	ack.Ok = false
	ack.Error = ErrorCode(err)
	return ack
}

// ErrorCode maps an error to its wire code.
func ErrorCode(err error) string {
	for _, known := range []error{
		battle.ErrInvalidRoom, battle.ErrNotAuthorized, battle.ErrCapacityExceeded,
		battle.ErrWrongState, battle.ErrNoPendingInvite, battle.ErrInvalidInput, battle.ErrNoFreeCode,
		ErrInvalidMessage, ErrInvalidRequestID, ErrUnknownCommand,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}
	return "internal_error"
}
