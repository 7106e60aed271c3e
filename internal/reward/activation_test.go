package reward

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseChargesAndActivates(t *testing.T) {
	ctx := context.Background()
	l, repo, _ := newTestLedger(t)
	_, err := l.Award(ctx, "ada", SourceAdmin, 700)
	require.NoError(t, err)

	act, err := l.Purchase(ctx, "ada", "xp_boost")
	require.NoError(t, err)
	assert.Equal(t, int64(500), act.Charged)
	assert.Equal(t, int64(200), act.Result.NewTotal)
	require.NotNil(t, act.Modifier.ExpiresAt)

	mods, err := repo.ListModifiers(ctx, "ada")
	require.NoError(t, err)
	assert.Len(t, mods, 1)
}

func TestPurchaseWithoutFundsHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	l, repo, _ := newTestLedger(t)
	_, err := l.Award(ctx, "ada", SourceAdmin, 100)
	require.NoError(t, err)

	_, err = l.Purchase(ctx, "ada", "mega_xp_boost")
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	a, err := repo.GetActor(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(100), a.TotalPoints)
	mods, err := repo.ListModifiers(ctx, "ada")
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestInstantLevelCreditsPoints(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)
	_, err := l.Award(ctx, "ada", SourceAdmin, 650)
	require.NoError(t, err)

	act, err := l.Purchase(ctx, "ada", "instant_level")
	require.NoError(t, err)
	assert.Equal(t, int64(550), act.Result.NewTotal)
	assert.Equal(t, 2, act.Result.NewLevel)
	assert.Nil(t, act.Modifier.ExpiresAt)
	assert.False(t, act.Modifier.Active)
}

func TestGrantUnknownItem(t *testing.T) {
	l, _, _ := newTestLedger(t)
	_, err := l.Grant(context.Background(), "ada", "time_machine", 0, 0)
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestGrantRejectsOutOfRangeFactor(t *testing.T) {
	ctx := context.Background()
	l, repo, _ := newTestLedger(t)

	cases := []struct {
		item   string
		factor float64
	}{
		{"xp_boost", 1e30},
		{"double_time", maxMultiplierFactor + 1},
		{"xp_boost", math.NaN()},
		{"xp_boost", math.Inf(1)},
		{"instant_level", maxInstantPoints + 1},
		{"instant_level", -5},
	}
	for _, tc := range cases {
		_, err := l.Grant(ctx, "ada", tc.item, time.Hour, tc.factor)
		assert.ErrorIs(t, err, ErrInvalidAmount, "%s factor %v", tc.item, tc.factor)
	}
	mods, err := repo.ListModifiers(ctx, "ada")
	require.NoError(t, err)
	assert.Empty(t, mods)

	_, err = l.Grant(ctx, "ada", "xp_boost", time.Hour, maxMultiplierFactor)
	require.NoError(t, err)
	res, err := l.Award(ctx, "ada", SourceTask, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Applied)
}

func TestInstantLevelGrantRunsStreakAndBadges(t *testing.T) {
	ctx := context.Background()
	l, repo, _ := newTestLedger(t)

	act, err := l.Grant(ctx, "ada", "instant_level", 0, 4500)
	require.NoError(t, err)
	assert.Equal(t, int64(4500), act.Result.Applied)
	assert.Equal(t, 10, act.Result.NewLevel)
	assert.True(t, act.Result.LeveledUp)
	assert.Equal(t, []string{BadgeRisingStar}, act.Result.NewBadges)

	a, err := repo.GetActor(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 1, a.CurrentStreak)
	require.NotNil(t, a.LastActivityDate)

	badges, err := repo.ListBadges(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.Equal(t, BadgeRisingStar, badges[0].Badge)
}
