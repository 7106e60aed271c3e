package battle

import (
	"context"
	"time"

	"byte-battle/internal/judge"
)

const maxMembers = 2

type Identity struct {
	ID   string `json:"actor_id"`
	Name string `json:"display_name"`
}

type member struct {
	Identity
	conn     string
	joinedAt time.Time
}

type pendingInvite struct {
	Identity
	conn        string
	requestedAt time.Time
}

type submission struct {
	code        string
	elapsed     float64
	submittedAt time.Time
}

type command struct {
	fn    func(*room) error
	reply chan error
}

// room is owned by its run goroutine. Every read or write of its fields goes
// through exec, so transitions within a room are totally ordered.
type room struct {
	reg *Registry

	code        string
	hostID      string
	members     []*member
	state       State
	config      Config
	problem     *judge.Problem
	fallback    bool
	startedAt   time.Time
	deadline    time.Time
	submissions map[string]submission
	votes       map[string]bool
	pending     *pendingInvite
	round       int
	timer       *time.Timer
	lastActive  time.Time

	inbox chan command
	done  chan struct{}
}

func newRoom(reg *Registry, code string, host Identity, conn string, now time.Time) *room {
	return &room{
		reg:         reg,
		code:        code,
		hostID:      host.ID,
		members:     []*member{{Identity: host, conn: conn, joinedAt: now}},
		state:       StateWaiting,
		submissions: map[string]submission{},
		votes:       map[string]bool{},
		lastActive:  now,
		inbox:       make(chan command),
		done:        make(chan struct{}),
	}
}

func (r *room) run() {
	for {
		select {
		case cmd := <-r.inbox:
			if r.isClosed() {
				cmd.reply <- ErrInvalidRoom
				continue
			}
			cmd.reply <- cmd.fn(r)
		case <-r.done:
			return
		}
	}
}

// exec runs fn on the room goroutine and waits for it. A room that has been
// torn down reports ErrInvalidRoom.
func (r *room) exec(ctx context.Context, fn func(*room) error) error {
	cmd := command{fn: fn, reply: make(chan error, 1)}
	select {
	case r.inbox <- cmd:
	case <-r.done:
		return ErrInvalidRoom
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *room) member(actorID string) *member {
	for _, m := range r.members {
		if m.ID == actorID {
			return m
		}
	}
	return nil
}

func (r *room) touch() {
	r.lastActive = r.reg.now()
}

func (r *room) isClosed() bool {
	return r.state == StateClosed
}

func (r *room) transition(to State) error {
	if !canTransition(r.state, to) {
		return ErrWrongState
	}
	r.state = to
	if to != StateClosed {
		r.broadcast(EventStateChanged, StatePayload{State: to, Config: r.config})
	}
	return nil
}

func (r *room) send(conn, eventType string, data any) {
	if conn == "" {
		return
	}
	r.reg.notifier.Publish(conn, eventType, r.code, data)
}

func (r *room) broadcast(eventType string, data any) {
	for _, m := range r.members {
		r.send(m.conn, eventType, data)
	}
}

func (r *room) system(message string) {
	r.broadcast(EventChatMessage, ChatMessage{Sender: botName, Message: message, Kind: "system"})
}

// teardown closes the room and drops it from the registry. Late results from
// background work find the done channel closed and are discarded.
func (r *room) teardown(reason string) {
	if r.isClosed() {
		return
	}
	r.broadcast(EventRoomClosed, ClosedPayload{Reason: reason})
	if r.pending != nil {
		r.send(r.pending.conn, EventJoinRejected, JoinDecisionPayload{Reason: reason})
		r.pending = nil
	}
	r.stopTimer()
	r.state = StateClosed
	close(r.done)
	r.reg.forget(r)
	metricRoomsClosedTotal.Add(1)
	metricRoomsActive.Add(-1)
}

func (r *room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

type MemberView struct {
	ActorID     string    `json:"actor_id"`
	DisplayName string    `json:"display_name"`
	IsHost      bool      `json:"is_host"`
	JoinedAt    time.Time `json:"joined_at"`
	Submitted   bool      `json:"submitted"`
	Vote        *bool     `json:"vote,omitempty"`
}

// View is a member's snapshot of a room.
type View struct {
	Code            string         `json:"code"`
	State           State          `json:"state"`
	HostID          string         `json:"host_id"`
	IsHost          bool           `json:"is_host"`
	Members         []MemberView   `json:"members"`
	Config          Config         `json:"config"`
	Problem         *judge.Problem `json:"problem,omitempty"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	Deadline        *time.Time     `json:"deadline,omitempty"`
	DurationSeconds int            `json:"duration_seconds"`
	PendingInvite   *Identity      `json:"pending_invite,omitempty"`
}

func (r *room) view(actorID string) View {
	v := View{
		Code:            r.code,
		State:           r.state,
		HostID:          r.hostID,
		IsHost:          actorID == r.hostID,
		Members:         make([]MemberView, 0, len(r.members)),
		Config:          r.config,
		DurationSeconds: int(r.reg.duration / time.Second),
	}
	for _, m := range r.members {
		mv := MemberView{ActorID: m.ID, DisplayName: m.Name, IsHost: m.ID == r.hostID, JoinedAt: m.joinedAt}
		_, mv.Submitted = r.submissions[m.ID]
		if vote, ok := r.votes[m.ID]; ok {
			vote := vote
			mv.Vote = &vote
		}
		v.Members = append(v.Members, mv)
	}
	if r.problem != nil && r.state != StateSetup {
		p := *r.problem
		v.Problem = &p
	}
	if !r.startedAt.IsZero() {
		started, deadline := r.startedAt, r.deadline
		v.StartedAt, v.Deadline = &started, &deadline
	}
	if v.IsHost && r.pending != nil {
		id := r.pending.Identity
		v.PendingInvite = &id
	}
	return v
}
