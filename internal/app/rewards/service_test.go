package rewards

import (
	"context"
	"testing"
	"time"

	"byte-battle/internal/leaderboard"
	"byte-battle/internal/reward"
	"byte-battle/internal/store"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	l := reward.New(mem, reward.WithClock(func() time.Time { return now }))
	return NewService(l, reward.NewResolver(mem), leaderboard.New(nil, mem), mem), mem
}

func TestClampLeaderboardPage(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantOK    bool
	}{
		{name: "default limit", limit: 0, offset: 0, wantLimit: 50, wantOK: true},
		{name: "limit clipped at top100 boundary", limit: 10, offset: 95, wantLimit: 5, wantOK: true},
		{name: "offset 100 rejected", limit: 10, offset: 100, wantLimit: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLimit, gotOK := clampLeaderboardPage(tt.limit, tt.offset)
			require.Equal(t, tt.wantOK, gotOK)
			require.Equal(t, tt.wantLimit, gotLimit)
		})
	}
}

func TestRecordEventAndMe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := reward.WithDisplayName(context.Background(), "Ada")

	res, err := svc.RecordEvent(ctx, "ada", EventRequest{Type: reward.EventTaskCompleted})
	require.NoError(t, err)
	require.EqualValues(t, 10, res.Applied)

	_, err = svc.RecordEvent(ctx, "ada", EventRequest{})
	require.ErrorIs(t, err, ErrInvalidRequest)

	me, err := svc.Me(ctx, "ada")
	require.NoError(t, err)
	require.EqualValues(t, 10, me.TotalPoints)
	require.Equal(t, 1, me.Position)
	require.Equal(t, "Ada", me.DisplayName)

	fresh, err := svc.Me(ctx, "nobody")
	require.NoError(t, err)
	require.Equal(t, 1, fresh.Level)
	require.Zero(t, fresh.Position)
}

func TestAdminAwardAndDeduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Award(ctx, AwardRequest{ActorID: "bob", DisplayName: "Bob", Amount: 700})
	require.NoError(t, err)
	require.Equal(t, reward.SourceAdmin, res.Source)
	require.Equal(t, 2, res.NewLevel)

	res, err = svc.Award(ctx, AwardRequest{ActorID: "bob", Amount: -1000, Forced: true})
	require.NoError(t, err)
	require.EqualValues(t, 0, res.NewTotal)

	_, err = svc.Award(ctx, AwardRequest{ActorID: "bob"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	page, err := svc.Ledger(ctx, store.LedgerFilter{ActorID: "bob"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, 50, page.Limit)
}

func TestCatalogPurchaseAndGrant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.Catalog(ctx, "")
	require.NoError(t, err)
	require.Len(t, cat.Items, len(reward.Catalog()))
	require.EqualValues(t, 86400, cat.Items[0].DurationSeconds)

	_, err = svc.Purchase(ctx, "cy", "xp_boost")
	require.ErrorIs(t, err, reward.ErrInsufficientPoints)

	_, err = svc.Award(ctx, AwardRequest{ActorID: "cy", Amount: 600})
	require.NoError(t, err)
	act, err := svc.Purchase(ctx, "cy", "xp_boost")
	require.NoError(t, err)
	require.EqualValues(t, 500, act.Charged)

	_, err = svc.Grant(ctx, GrantRequest{ActorID: "cy", ItemID: "xp_shield", DurationSeconds: 3600})
	require.NoError(t, err)
	cat, err = svc.Catalog(ctx, "cy")
	require.NoError(t, err)
	require.Len(t, cat.Active, 2)

	_, err = svc.Grant(ctx, GrantRequest{ActorID: "cy", ItemID: "xp_shield", DurationSeconds: -1})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestLeaderboardPage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c"} {
		_, err := svc.Award(ctx, AwardRequest{ActorID: id, Amount: int64(100 * (i + 1))})
		require.NoError(t, err)
	}
	page, err := svc.Leaderboard(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, "c", page.Items[0].ActorID)
	require.Equal(t, 1, page.Items[0].Position)

	empty, err := svc.Leaderboard(ctx, 10, 100)
	require.NoError(t, err)
	require.Empty(t, empty.Items)
}
