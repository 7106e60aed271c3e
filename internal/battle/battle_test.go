package battle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"byte-battle/internal/judge"
	"byte-battle/internal/reward"
	"byte-battle/internal/store"

	"github.com/stretchr/testify/require"
)

type sent struct {
	Type string
	Data any
}

type recorder struct {
	mu     sync.Mutex
	events map[string][]sent
}

func newRecorder() *recorder { return &recorder{events: map[string][]sent{}} }

func (rc *recorder) Publish(handle, eventType, _ string, data any) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.events[handle] = append(rc.events[handle], sent{Type: eventType, Data: data})
	return true
}

func (rc *recorder) last(handle, eventType string) (any, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	evs := rc.events[handle]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == eventType {
			return evs[i].Data, true
		}
	}
	return nil, false
}

func (rc *recorder) count(handle, eventType string) int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	n := 0
	for _, ev := range rc.events[handle] {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

type fakeGateway struct {
	problem    judge.Problem
	genErr     error
	verdict    func(subs []judge.Submission) judge.Verdict
	judgeErr   error
	judgeBlock chan struct{}
}

func (f *fakeGateway) GenerateProblem(_ context.Context, _, _ string) (judge.Problem, error) {
	if f.genErr != nil {
		return judge.FallbackProblem, f.genErr
	}
	return f.problem, nil
}

func (f *fakeGateway) Judge(ctx context.Context, _ judge.Problem, subs []judge.Submission) (judge.Verdict, error) {
	if f.judgeBlock != nil {
		select {
		case <-f.judgeBlock:
		case <-ctx.Done():
			return judge.DrawVerdict("cancelled"), ctx.Err()
		}
	}
	if f.judgeErr != nil {
		return judge.DrawVerdict("The judge is unavailable, so this round is a draw."), f.judgeErr
	}
	return f.verdict(subs), nil
}

type award struct {
	ActorID string
	Name    string
	Source  string
	Amount  int64
}

type fakeRewarder struct {
	mu     sync.Mutex
	awards []award
}

func (f *fakeRewarder) Award(ctx context.Context, actorID, source string, amount int64) (reward.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.awards = append(f.awards, award{ActorID: actorID, Name: reward.DisplayNameFrom(ctx), Source: source, Amount: amount})
	return reward.Result{ActorID: actorID, Source: source, Requested: amount, Applied: amount}, nil
}

func (f *fakeRewarder) snapshot() []award {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]award(nil), f.awards...)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	reg   *Registry
	rec   *recorder
	gw    *fakeGateway
	rw    *fakeRewarder
	clock *testClock

	timerMu sync.Mutex
	timers  []func()
}

var (
	ada = Identity{ID: "ada", Name: "Ada"}
	bob = Identity{ID: "bob", Name: "Bob"}
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		rec: newRecorder(),
		gw: &fakeGateway{
			problem: judge.Problem{Title: "Sum Two", Description: "Add two integers."},
			verdict: func(subs []judge.Submission) judge.Verdict {
				return judge.Verdict{
					WinnerActorID: subs[0].ActorID,
					WinnerName:    subs[0].Name,
					Reason:        "cleaner solution",
					Scores:        map[string]int{subs[0].ActorID: 9, subs[1].ActorID: 6},
				}
			},
		},
		rw:    &fakeRewarder{},
		clock: &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	h.useRewarder(t, h.rw)
	return h
}

// useRewarder rebuilds the registry around rw.
func (h *harness) useRewarder(t *testing.T, rw Rewarder) {
	t.Helper()
	reg := NewRegistry(h.rec, h.gw, rw, Options{
		Duration: 10 * time.Minute,
		Now:      h.clock.Now,
		AfterFunc: func(_ time.Duration, fn func()) *time.Timer {
			h.timerMu.Lock()
			h.timers = append(h.timers, fn)
			h.timerMu.Unlock()
			return time.NewTimer(time.Hour)
		},
	})
	h.reg = reg
	t.Cleanup(func() { reg.CloseAll(context.Background(), "test_done") })
}

// pairedRoom returns a room with ada hosting and bob admitted, in setup.
func (h *harness) pairedRoom(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	code, err := h.reg.CreateRoom(ctx, ada, "c-ada")
	require.NoError(t, err)
	out, err := h.reg.RequestJoin(ctx, code, bob, "c-bob")
	require.NoError(t, err)
	require.Equal(t, JoinPending, out)
	require.NoError(t, h.reg.RespondJoin(ctx, code, ada.ID, true))
	require.NoError(t, h.reg.ConfirmJoin(ctx, code, bob.ID, "c-bob"))
	h.requireState(t, code, StateSetup)
	return code
}

func (h *harness) requireState(t *testing.T, code string, want State) {
	t.Helper()
	require.Eventually(t, func() bool {
		v, err := h.reg.Lookup(context.Background(), code)
		return err == nil && v.State == want
	}, 2*time.Second, 5*time.Millisecond, "room %s never reached %s", code, want)
}

func (h *harness) requireClosed(t *testing.T, code string) {
	t.Helper()
	_, err := h.reg.Lookup(context.Background(), code)
	require.ErrorIs(t, err, ErrInvalidRoom)
}

func (h *harness) fireTimers() {
	h.timerMu.Lock()
	fns := h.timers
	h.timers = nil
	h.timerMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// battleRoom drives a paired room into the battle state.
func (h *harness) battleRoom(t *testing.T, message string) string {
	t.Helper()
	code := h.pairedRoom(t)
	require.NoError(t, h.reg.Chat(context.Background(), code, ada.ID, message))
	h.requireState(t, code, StateBattle)
	return code
}

func TestParseConfigMessage(t *testing.T) {
	cases := []struct {
		text string
		want ConfigUpdate
	}{
		{"Let's do hard python", ConfigUpdate{Difficulty: DifficultyHard, Language: LanguagePython}},
		{"medium, in C++ please!", ConfigUpdate{Difficulty: DifficultyMedium, Language: LanguageCPP}},
		{"JS", ConfigUpdate{Language: LanguageJavaScript}},
		{"easy... no, make it HARD", ConfigUpdate{Difficulty: DifficultyHard}},
		{"java or c", ConfigUpdate{Language: LanguageC}},
		{"javascripty hardly", ConfigUpdate{}},
		{"hello there", ConfigUpdate{}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParseConfigMessage(tc.text), tc.text)
	}
}

func TestBaseXP(t *testing.T) {
	require.EqualValues(t, 100, BaseXP(DifficultyEasy))
	require.EqualValues(t, 500, BaseXP(DifficultyMedium))
	require.EqualValues(t, 1000, BaseXP(DifficultyHard))
}

func TestCreateRoomCode(t *testing.T) {
	h := newHarness(t)
	code, err := h.reg.CreateRoom(context.Background(), ada, "c-ada")
	require.NoError(t, err)
	require.Len(t, code, codeLength)
	for _, c := range code {
		require.Contains(t, codeAlphabet, string(c))
	}
	v, err := h.reg.View(context.Background(), code, ada.ID)
	require.NoError(t, err)
	require.Equal(t, StateWaiting, v.State)
	require.True(t, v.IsHost)
	require.Len(t, v.Members, 1)
	require.Equal(t, 1, h.rec.count("c-ada", EventRoomCreated))

	_, err = h.reg.CreateRoom(context.Background(), Identity{}, "c-x")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestJoinHandshake(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code, err := h.reg.CreateRoom(ctx, ada, "c-ada")
	require.NoError(t, err)

	_, err = h.reg.RequestJoin(ctx, "ZZZZ", bob, "c-bob")
	require.ErrorIs(t, err, ErrInvalidRoom)

	out, err := h.reg.RequestJoin(ctx, code, bob, "c-bob")
	require.NoError(t, err)
	require.Equal(t, JoinPending, out)
	data, ok := h.rec.last("c-ada", EventJoinRequest)
	require.True(t, ok)
	require.Equal(t, JoinRequestPayload{ActorID: "bob", DisplayName: "Bob"}, data)

	require.ErrorIs(t, h.reg.RespondJoin(ctx, code, bob.ID, true), ErrNotAuthorized)
	require.NoError(t, h.reg.RespondJoin(ctx, code, ada.ID, true))
	require.ErrorIs(t, h.reg.RespondJoin(ctx, code, ada.ID, true), ErrNoPendingInvite)
	require.Equal(t, 1, h.rec.count("c-bob", EventJoinAccepted))

	// Admitted but not confirmed yet.
	h.requireState(t, code, StateWaiting)
	require.NoError(t, h.reg.ConfirmJoin(ctx, code, bob.ID, ""))
	h.requireState(t, code, StateSetup)
	require.Equal(t, 1, h.rec.count("c-bob", EventRoomEntered))

	_, err = h.reg.RequestJoin(ctx, code, Identity{ID: "eve", Name: "Eve"}, "c-eve")
	require.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestLowercaseCodeResolves(t *testing.T) {
	h := newHarness(t)
	code, err := h.reg.CreateRoom(context.Background(), ada, "c-ada")
	require.NoError(t, err)
	_, err = h.reg.Lookup(context.Background(), " "+strings.ToLower(code)+" ")
	require.NoError(t, err)
}

func TestRejectedJoin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code, err := h.reg.CreateRoom(ctx, ada, "c-ada")
	require.NoError(t, err)
	_, err = h.reg.RequestJoin(ctx, code, bob, "c-bob")
	require.NoError(t, err)
	require.NoError(t, h.reg.RespondJoin(ctx, code, ada.ID, false))

	data, ok := h.rec.last("c-bob", EventJoinRejected)
	require.True(t, ok)
	require.Equal(t, JoinDecisionPayload{Reason: "declined_by_host"}, data)
	v, err := h.reg.View(ctx, code, ada.ID)
	require.NoError(t, err)
	require.Len(t, v.Members, 1)
	require.Nil(t, v.PendingInvite)
}

func TestNewerInviteSupersedesPending(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code, err := h.reg.CreateRoom(ctx, ada, "c-ada")
	require.NoError(t, err)
	carol := Identity{ID: "carol", Name: "Carol"}

	_, err = h.reg.RequestJoin(ctx, code, bob, "c-bob")
	require.NoError(t, err)
	_, err = h.reg.RequestJoin(ctx, code, carol, "c-carol")
	require.NoError(t, err)

	data, ok := h.rec.last("c-bob", EventJoinRejected)
	require.True(t, ok)
	require.Equal(t, JoinDecisionPayload{Reason: "superseded"}, data)

	v, err := h.reg.View(ctx, code, ada.ID)
	require.NoError(t, err)
	require.Equal(t, &carol, v.PendingInvite)

	require.NoError(t, h.reg.RespondJoin(ctx, code, ada.ID, true))
	v, err = h.reg.View(ctx, code, carol.ID)
	require.NoError(t, err)
	require.Len(t, v.Members, 2)
}

func TestMemberReconnects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.pairedRoom(t)

	out, err := h.reg.RequestJoin(ctx, code, bob, "c-bob-2")
	require.NoError(t, err)
	require.Equal(t, JoinRejoined, out)
	require.Equal(t, 1, h.rec.count("c-bob-2", EventRejoined))

	v, err := h.reg.Rejoin(ctx, code, ada.ID, "c-ada-2")
	require.NoError(t, err)
	require.Equal(t, StateSetup, v.State)

	require.NoError(t, h.reg.Chat(ctx, code, bob.ID, "hi"))
	require.Equal(t, 1, h.rec.count("c-ada-2", EventChatMessage))
	require.Equal(t, 1, h.rec.count("c-bob-2", EventChatMessage))

	_, err = h.reg.Rejoin(ctx, code, "eve", "c-eve")
	require.ErrorIs(t, err, ErrNotAuthorized)
	require.ErrorIs(t, h.reg.Heartbeat(ctx, code, "eve", ""), ErrNotAuthorized)
	require.NoError(t, h.reg.Heartbeat(ctx, code, bob.ID, ""))
}

func TestOnlyHostConfigures(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.pairedRoom(t)

	require.NoError(t, h.reg.Chat(ctx, code, bob.ID, "hard python"))
	v, err := h.reg.View(ctx, code, ada.ID)
	require.NoError(t, err)
	require.Equal(t, Config{}, v.Config)

	require.NoError(t, h.reg.Chat(ctx, code, ada.ID, "hard"))
	v, err = h.reg.View(ctx, code, ada.ID)
	require.NoError(t, err)
	require.Equal(t, Config{Difficulty: DifficultyHard}, v.Config)
	require.Equal(t, StateSetup, v.State)

	require.ErrorIs(t, h.reg.Chat(ctx, code, ada.ID, "   "), ErrInvalidInput)
	require.ErrorIs(t, h.reg.Chat(ctx, code, "eve", "python"), ErrNotAuthorized)
}

func TestFullBattleAwardsWinner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.battleRoom(t, "hard python")

	data, ok := h.rec.last("c-bob", EventBattleStarted)
	require.True(t, ok)
	started := data.(BattleStartedPayload)
	require.Equal(t, "Sum Two", started.Problem.Title)
	require.False(t, started.Fallback)
	require.Equal(t, 600, started.DurationSeconds)
	require.Equal(t, started.StartedAt.Add(10*time.Minute), started.Deadline)

	require.ErrorIs(t, h.reg.Vote(ctx, code, ada.ID, true), ErrWrongState)
	require.ErrorIs(t, h.reg.Submit(ctx, code, ada.ID, ""), ErrInvalidInput)

	h.clock.Advance(90 * time.Second)
	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "print(sum(map(int, input().split())))"))
	data, ok = h.rec.last("c-bob", EventPeerSubmitted)
	require.True(t, ok)
	peer := data.(PeerSubmittedPayload)
	require.Equal(t, 1, peer.Received)
	require.Equal(t, 2, peer.Expected)
	require.InDelta(t, 90, peer.ElapsedSeconds, 0.001)

	require.NoError(t, h.reg.Submit(ctx, code, bob.ID, "a, b = map(int, input().split()); print(a + b)"))
	h.requireState(t, code, StateResult)

	data, ok = h.rec.last("c-ada", EventBattleResult)
	require.True(t, ok)
	res := data.(ResultPayload)
	require.Equal(t, "ada", res.WinnerActorID)
	require.False(t, res.Draw)
	require.Equal(t, map[string]int64{"ada": 1000}, res.XPAwarded)
	require.Equal(t, []award{{ActorID: "ada", Name: "Ada", Source: reward.SourceBattleWin, Amount: 1000}}, h.rw.snapshot())

	require.ErrorIs(t, h.reg.Submit(ctx, code, ada.ID, "late"), ErrWrongState)
}

func TestJudgeFailureIsDraw(t *testing.T) {
	h := newHarness(t)
	h.gw.judgeErr = errors.New("upstream down")
	ctx := context.Background()
	code := h.battleRoom(t, "medium js")

	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "a"))
	require.NoError(t, h.reg.Submit(ctx, code, bob.ID, "b"))
	h.requireState(t, code, StateResult)

	data, ok := h.rec.last("c-bob", EventBattleResult)
	require.True(t, ok)
	res := data.(ResultPayload)
	require.True(t, res.Draw)
	require.True(t, res.Fallback)
	require.Equal(t, map[string]int64{"ada": 250, "bob": 250}, res.XPAwarded)
	for _, a := range h.rw.snapshot() {
		require.Equal(t, reward.SourceBattleDraw, a.Source)
	}
}

func TestGenerationFailureUsesFallbackProblem(t *testing.T) {
	h := newHarness(t)
	h.gw.genErr = errors.New("timeout")
	h.battleRoom(t, "easy c")

	data, ok := h.rec.last("c-ada", EventBattleStarted)
	require.True(t, ok)
	started := data.(BattleStartedPayload)
	require.True(t, started.Fallback)
	require.Equal(t, judge.FallbackProblem.Title, started.Problem.Title)
}

func TestTimeUpKeepsAcceptingSubmissions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.battleRoom(t, "easy java")

	h.fireTimers()
	require.Eventually(t, func() bool { return h.rec.count("c-bob", EventBattleTimeUp) == 1 }, time.Second, 5*time.Millisecond)
	h.requireState(t, code, StateBattle)

	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "x"))
	require.NoError(t, h.reg.Submit(ctx, code, bob.ID, "y"))
	h.requireState(t, code, StateResult)
}

func TestResubmitReplacesEarlier(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.battleRoom(t, "easy py")

	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "first"))
	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "second"))
	h.requireState(t, code, StateBattle)
	v, err := h.reg.View(ctx, code, bob.ID)
	require.NoError(t, err)
	require.True(t, v.Members[0].Submitted)
	require.False(t, v.Members[1].Submitted)
}

func finishRound(t *testing.T, h *harness, code string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "a"))
	require.NoError(t, h.reg.Submit(ctx, code, bob.ID, "b"))
	h.requireState(t, code, StateResult)
}

func TestRematchUnanimousYes(t *testing.T) {
	for _, order := range [][]Identity{{ada, bob}, {bob, ada}} {
		h := newHarness(t)
		ctx := context.Background()
		code := h.battleRoom(t, "easy python")
		finishRound(t, h, code)

		require.NoError(t, h.reg.Vote(ctx, code, order[0].ID, true))
		h.requireState(t, code, StateResult)
		require.NoError(t, h.reg.Vote(ctx, code, order[1].ID, true))
		h.requireState(t, code, StateSetup)

		v, err := h.reg.View(ctx, code, ada.ID)
		require.NoError(t, err)
		require.Equal(t, Config{}, v.Config)
		require.Nil(t, v.Problem)
		require.Nil(t, v.StartedAt)
		require.Equal(t, 1, h.rec.count("c-bob", EventRematchRestart))

		// A second round runs the whole flow again.
		require.NoError(t, h.reg.Chat(ctx, code, ada.ID, "hard c++"))
		h.requireState(t, code, StateBattle)
		finishRound(t, h, code)
	}
}

func TestRematchAnyNoCloses(t *testing.T) {
	for _, order := range [][]bool{{false}, {true, false}} {
		h := newHarness(t)
		ctx := context.Background()
		code := h.battleRoom(t, "easy python")
		finishRound(t, h, code)

		voters := []Identity{ada, bob}
		for i, yes := range order {
			require.NoError(t, h.reg.Vote(ctx, code, voters[i].ID, yes))
		}
		h.requireClosed(t, code)
		require.Equal(t, 1, h.rec.count("c-ada", EventRematchDeclined))
		require.Equal(t, 1, h.rec.count("c-bob", EventRoomClosed))
	}
}

func TestLeaveClosesRoom(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code := h.pairedRoom(t)

	require.ErrorIs(t, h.reg.Leave(ctx, code, "eve"), ErrNotAuthorized)
	require.NoError(t, h.reg.Leave(ctx, code, bob.ID))
	h.requireClosed(t, code)
	data, ok := h.rec.last("c-ada", EventRoomClosed)
	require.True(t, ok)
	require.Equal(t, ClosedPayload{Reason: "member_left"}, data)
	require.ErrorIs(t, h.reg.Chat(ctx, code, ada.ID, "hello?"), ErrInvalidRoom)
	require.Equal(t, 0, h.reg.Len())
}

func TestPendingInviteeLeaving(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code, err := h.reg.CreateRoom(ctx, ada, "c-ada")
	require.NoError(t, err)
	_, err = h.reg.RequestJoin(ctx, code, bob, "c-bob")
	require.NoError(t, err)

	require.NoError(t, h.reg.Leave(ctx, code, bob.ID))
	v, err := h.reg.View(ctx, code, ada.ID)
	require.NoError(t, err)
	require.Nil(t, v.PendingInvite)
	require.Equal(t, StateWaiting, v.State)
}

func TestLeaveWhileJudgingDiscardsResult(t *testing.T) {
	h := newHarness(t)
	h.gw.judgeBlock = make(chan struct{})
	ctx := context.Background()
	code := h.battleRoom(t, "easy python")

	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "a"))
	require.NoError(t, h.reg.Submit(ctx, code, bob.ID, "b"))
	h.requireState(t, code, StateJudging)
	require.NoError(t, h.reg.Leave(ctx, code, ada.ID))
	close(h.gw.judgeBlock)

	h.reg.bg.Wait()
	require.Equal(t, 0, h.rec.count("c-bob", EventBattleResult))
	require.Equal(t, []award{{ActorID: "ada", Name: "Ada", Source: reward.SourceBattleWin, Amount: 100}}, h.rw.snapshot())
}

func TestLeaveWhileJudgingKeepsLedgerAward(t *testing.T) {
	h := newHarness(t)
	mem := store.NewMemory()
	ledger := reward.New(mem, reward.WithClock(h.clock.Now))
	h.useRewarder(t, ledger)
	h.gw.judgeBlock = make(chan struct{})
	ctx := context.Background()
	code := h.battleRoom(t, "easy python")

	require.NoError(t, h.reg.Submit(ctx, code, ada.ID, "a"))
	require.NoError(t, h.reg.Submit(ctx, code, bob.ID, "b"))
	h.requireState(t, code, StateJudging)
	require.NoError(t, h.reg.Leave(ctx, code, bob.ID))
	h.requireClosed(t, code)
	time.Sleep(50 * time.Millisecond)
	close(h.gw.judgeBlock)
	h.reg.bg.Wait()

	p, err := ledger.Progress(ctx, ada.ID)
	require.NoError(t, err)
	require.EqualValues(t, 100, p.TotalPoints)
	_, err = mem.GetActor(ctx, bob.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, 0, h.rec.count("c-ada", EventBattleResult))
}

func TestReapIdleRooms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	stale, err := h.reg.CreateRoom(ctx, ada, "c-ada")
	require.NoError(t, err)
	h.clock.Advance(20 * time.Minute)
	fresh, err := h.reg.CreateRoom(ctx, bob, "c-bob")
	require.NoError(t, err)

	require.Equal(t, 1, h.reg.reapIdle(ctx, h.clock.Now(), 15*time.Minute))
	h.requireClosed(t, stale)
	_, err = h.reg.Lookup(ctx, fresh)
	require.NoError(t, err)
	data, ok := h.rec.last("c-ada", EventRoomClosed)
	require.True(t, ok)
	require.Equal(t, ClosedPayload{Reason: "idle_timeout"}, data)
}

func TestRunJanitorDisabledBlocksUntilCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.reg.RunJanitor(ctx, 0, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
