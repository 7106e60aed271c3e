package battle

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"byte-battle/internal/judge"
	"byte-battle/internal/reward"

	"github.com/rs/zerolog/log"
)

const (
	codeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength     = 4
	codeAttempts   = 64
	maxChatLength  = 2000
	maxCodeLength  = 64 * 1024
	defaultTimeout = 600 * time.Second
)

// Notifier delivers an event to one client connection handle.
type Notifier interface {
	Publish(handle, eventType, roomCode string, data any) bool
}

// Gateway is the problem generation and judging capability. It returns a
// usable fallback value together with any error.
type Gateway interface {
	GenerateProblem(ctx context.Context, difficulty, language string) (judge.Problem, error)
	Judge(ctx context.Context, problem judge.Problem, subs []judge.Submission) (judge.Verdict, error)
}

// Rewarder posts battle outcomes to the reward ledger.
type Rewarder interface {
	Award(ctx context.Context, actorID, source string, amount int64) (reward.Result, error)
}

type Options struct {
	// Duration of the submission window. Defaults to ten minutes.
	Duration time.Duration
	Now      func() time.Time
	// AfterFunc schedules the time-up notice. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, fn func()) *time.Timer
}

// Registry owns the live rooms. Its lock only guards the code index; room
// state is serialized by each room's own goroutine.
type Registry struct {
	notifier  Notifier
	gateway   Gateway
	rewarder  Rewarder
	duration  time.Duration
	now       func() time.Time
	afterFunc func(d time.Duration, fn func()) *time.Timer
	bg        sync.WaitGroup

	mu    sync.Mutex
	rooms map[string]*room
}

func NewRegistry(n Notifier, gw Gateway, rw Rewarder, opts Options) *Registry {
	if opts.Duration <= 0 {
		opts.Duration = defaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = time.AfterFunc
	}
	return &Registry{
		notifier:  n,
		gateway:   gw,
		rewarder:  rw,
		duration:  opts.Duration,
		now:       opts.Now,
		afterFunc: opts.AfterFunc,
		rooms:     map[string]*room{},
	}
}

func (g *Registry) get(code string) (*room, error) {
	code = normalizeCode(code)
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[code]
	if !ok {
		return nil, ErrInvalidRoom
	}
	return r, nil
}

func (g *Registry) forget(r *room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rooms[r.code] == r {
		delete(g.rooms, r.code)
	}
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

// CreateRoom opens a room hosted by actor and returns its code.
func (g *Registry) CreateRoom(ctx context.Context, actor Identity, conn string) (string, error) {
	if actor.ID == "" {
		return "", ErrInvalidInput
	}
	g.mu.Lock()
	code := ""
	for i := 0; i < codeAttempts; i++ {
		c := newCode()
		if _, taken := g.rooms[c]; !taken {
			code = c
			break
		}
	}
	if code == "" {
		g.mu.Unlock()
		return "", ErrNoFreeCode
	}
	r := newRoom(g, code, actor, conn, g.now())
	g.rooms[code] = r
	g.mu.Unlock()

	go r.run()
	metricRoomsCreatedTotal.Add(1)
	metricRoomsActive.Add(1)
	log.Info().Str("room_code", code).Str("actor_id", actor.ID).Msg("room_created")

	err := r.exec(ctx, func(r *room) error {
		r.send(conn, EventRoomCreated, r.view(actor.ID))
		return nil
	})
	return code, err
}

// Lookup returns a snapshot of the room as seen by an outsider.
func (g *Registry) Lookup(ctx context.Context, code string) (View, error) {
	r, err := g.get(code)
	if err != nil {
		return View{}, err
	}
	var v View
	err = r.exec(ctx, func(r *room) error {
		v = r.view("")
		v.Problem = nil
		return nil
	})
	return v, err
}

// View returns the room as seen by one of its members.
func (g *Registry) View(ctx context.Context, code, actorID string) (View, error) {
	r, err := g.get(code)
	if err != nil {
		return View{}, err
	}
	var v View
	err = r.exec(ctx, func(r *room) error {
		if r.member(actorID) == nil {
			return ErrNotAuthorized
		}
		v = r.view(actorID)
		return nil
	})
	return v, err
}

type JoinOutcome string

const (
	JoinPending  JoinOutcome = "pending"
	JoinRejoined JoinOutcome = "rejoined"
)

// RequestJoin asks the host to admit actor. An existing member is treated as
// reconnecting and only has its connection handle refreshed. A new request
// replaces any earlier pending one.
func (g *Registry) RequestJoin(ctx context.Context, code string, actor Identity, conn string) (JoinOutcome, error) {
	if actor.ID == "" {
		return "", ErrInvalidInput
	}
	r, err := g.get(code)
	if err != nil {
		return "", err
	}
	var out JoinOutcome
	err = r.exec(ctx, func(r *room) error {
		if m := r.member(actor.ID); m != nil {
			m.conn = conn
			r.touch()
			r.send(conn, EventRejoined, r.view(actor.ID))
			out = JoinRejoined
			return nil
		}
		if len(r.members) >= maxMembers {
			return ErrCapacityExceeded
		}
		if prev := r.pending; prev != nil && prev.ID != actor.ID {
			r.send(prev.conn, EventJoinRejected, JoinDecisionPayload{Reason: "superseded"})
		}
		r.pending = &pendingInvite{Identity: actor, conn: conn, requestedAt: g.now()}
		r.touch()
		host := r.member(r.hostID)
		r.send(host.conn, EventJoinRequest, JoinRequestPayload{ActorID: actor.ID, DisplayName: actor.Name})
		out = JoinPending
		return nil
	})
	if err == nil {
		log.Info().Str("room_code", r.code).Str("actor_id", actor.ID).Str("outcome", string(out)).Msg("join_requested")
	}
	return out, err
}

// RespondJoin lets the host accept or reject the pending invite.
func (g *Registry) RespondJoin(ctx context.Context, code, hostID string, accept bool) error {
	r, err := g.get(code)
	if err != nil {
		return err
	}
	return r.exec(ctx, func(r *room) error {
		if hostID != r.hostID {
			return ErrNotAuthorized
		}
		p := r.pending
		if p == nil {
			return ErrNoPendingInvite
		}
		r.pending = nil
		r.touch()
		if !accept {
			r.send(p.conn, EventJoinRejected, JoinDecisionPayload{Reason: "declined_by_host"})
			return nil
		}
		if len(r.members) >= maxMembers {
			r.send(p.conn, EventJoinRejected, JoinDecisionPayload{Reason: ErrCapacityExceeded.Error()})
			return ErrCapacityExceeded
		}
		r.members = append(r.members, &member{Identity: p.Identity, conn: p.conn, joinedAt: g.now()})
		r.send(p.conn, EventJoinAccepted, r.view(p.ID))
		log.Info().Str("room_code", r.code).Str("actor_id", p.ID).Msg("join_accepted")
		return nil
	})
}

// ConfirmJoin is sent by an accepted member once it has entered the room.
// With both members present the room moves from waiting to setup.
func (g *Registry) ConfirmJoin(ctx context.Context, code string, actorID, conn string) error {
	r, err := g.get(code)
	if err != nil {
		return err
	}
	return r.exec(ctx, func(r *room) error {
		m := r.member(actorID)
		if m == nil {
			return ErrNotAuthorized
		}
		if conn != "" {
			m.conn = conn
		}
		r.touch()
		r.send(m.conn, EventRoomEntered, r.view(actorID))
		if r.state != StateWaiting || len(r.members) < maxMembers {
			return nil
		}
		if err := r.transition(StateSetup); err != nil {
			return err
		}
		r.system("Welcome to the arena! Host, pick a difficulty (Easy, Medium, Hard) and a language (Python, JavaScript, Java, C++, C).")
		return nil
	})
}

// Heartbeat refreshes a member's connection handle.
func (g *Registry) Heartbeat(ctx context.Context, code, actorID, conn string) error {
	r, err := g.get(code)
	if err != nil {
		return err
	}
	return r.exec(ctx, func(r *room) error {
		m := r.member(actorID)
		if m == nil {
			return ErrNotAuthorized
		}
		if conn != "" {
			m.conn = conn
		}
		r.touch()
		return nil
	})
}

// Rejoin restores a member after a refresh and returns the current view.
func (g *Registry) Rejoin(ctx context.Context, code, actorID, conn string) (View, error) {
	r, err := g.get(code)
	if err != nil {
		return View{}, err
	}
	var v View
	err = r.exec(ctx, func(r *room) error {
		m := r.member(actorID)
		if m == nil {
			return ErrNotAuthorized
		}
		if conn != "" {
			m.conn = conn
		}
		r.touch()
		v = r.view(actorID)
		r.send(m.conn, EventRejoined, v)
		return nil
	})
	return v, err
}

// Leave abandons the room. A pending invitee leaving only clears the invite;
// a member leaving tears the room down for everyone.
func (g *Registry) Leave(ctx context.Context, code, actorID string) error {
	r, err := g.get(code)
	if err != nil {
		return err
	}
	return r.exec(ctx, func(r *room) error {
		if p := r.pending; p != nil && p.ID == actorID {
			r.pending = nil
			host := r.member(r.hostID)
			r.send(host.conn, EventChatMessage, ChatMessage{Sender: botName, Message: p.Name + " withdrew the join request.", Kind: "system"})
			return nil
		}
		m := r.member(actorID)
		if m == nil {
			return ErrNotAuthorized
		}
		log.Info().Str("room_code", r.code).Str("actor_id", actorID).Msg("room_left")
		r.teardown("member_left")
		return nil
	})
}

// Chat broadcasts a member message. While in setup, host messages also
// configure difficulty and language.
func (g *Registry) Chat(ctx context.Context, code, actorID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxChatLength {
		return ErrInvalidInput
	}
	r, err := g.get(code)
	if err != nil {
		return err
	}
	return r.exec(ctx, func(r *room) error {
		m := r.member(actorID)
		if m == nil {
			return ErrNotAuthorized
		}
		r.touch()
		r.broadcast(EventChatMessage, ChatMessage{Sender: m.Name, ActorID: m.ID, Message: text, Kind: "user"})
		if r.state != StateSetup || actorID != r.hostID {
			return nil
		}
		r.applyConfig(ParseConfigMessage(text))
		return nil
	})
}

// Submit records a member's solution. Resubmitting replaces the earlier one.
func (g *Registry) Submit(ctx context.Context, code, actorID, source string) error {
	if strings.TrimSpace(source) == "" || len(source) > maxCodeLength {
		return ErrInvalidInput
	}
	r, err := g.get(code)
	if err != nil {
		return err
	}
	return r.exec(ctx, func(r *room) error {
		m := r.member(actorID)
		if m == nil {
			return ErrNotAuthorized
		}
		if r.state != StateBattle {
			return ErrWrongState
		}
		now := g.now()
		r.touch()
		elapsed := now.Sub(r.startedAt).Seconds()
		r.submissions[actorID] = submission{code: source, elapsed: elapsed, submittedAt: now}
		r.broadcast(EventPeerSubmitted, PeerSubmittedPayload{
			ActorID:        m.ID,
			DisplayName:    m.Name,
			ElapsedSeconds: elapsed,
			Received:       len(r.submissions),
			Expected:       len(r.members),
		})
		if len(r.submissions) == len(r.members) {
			return r.startJudging()
		}
		return nil
	})
}

// Vote records a rematch vote. Any "no" ends the room; "yes" from every
// member returns it to setup.
func (g *Registry) Vote(ctx context.Context, code, actorID string, yes bool) error {
	r, err := g.get(code)
	if err != nil {
		return err
	}
	return r.exec(ctx, func(r *room) error {
		m := r.member(actorID)
		if m == nil {
			return ErrNotAuthorized
		}
		if r.state != StateResult {
			return ErrWrongState
		}
		r.touch()
		r.votes[actorID] = yes
		word := "NO"
		if yes {
			word = "YES"
		}
		r.system(m.Name + " voted: " + word)
		if !yes {
			r.broadcast(EventRematchDeclined, ClosedPayload{Reason: m.Name + " declined the rematch"})
			r.teardown("rematch_declined")
			return nil
		}
		for _, mm := range r.members {
			if !r.votes[mm.ID] {
				return nil
			}
		}
		return r.restart()
	})
}

// CloseAll tears down every room, used on shutdown.
func (g *Registry) CloseAll(ctx context.Context, reason string) {
	g.mu.Lock()
	rooms := make([]*room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.Unlock()
	for _, r := range rooms {
		_ = r.exec(ctx, func(r *room) error {
			r.teardown(reason)
			return nil
		})
	}
	g.bg.Wait()
}
