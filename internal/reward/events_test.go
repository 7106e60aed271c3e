package reward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvent(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	res, err := l.RecordEvent(ctx, "ada", Event{Type: EventTaskCompleted})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.Applied)

	res, err = l.RecordEvent(ctx, "ada", Event{Type: EventTaskReopened})
	require.NoError(t, err)
	assert.Equal(t, int64(-10), res.Applied)
	assert.Equal(t, int64(0), res.NewTotal)

	res, err = l.RecordEvent(ctx, "ada", Event{Type: EventFocusSession, Minutes: 25})
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.Applied)

	_, err = l.RecordEvent(ctx, "ada", Event{Type: "nap"})
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestRecordQuiz(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	res, err := l.RecordEvent(ctx, "ada", Event{Type: EventQuiz, Correct: 3, Total: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(60), res.Applied)
	assert.Empty(t, res.NewBadges)

	res, err = l.RecordEvent(ctx, "ada", Event{Type: EventQuiz, Correct: 5, Total: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(150), res.Applied)
	assert.Equal(t, []string{BadgeQuizMaster}, res.NewBadges)

	res, err = l.RecordEvent(ctx, "ada", Event{Type: EventQuiz, Correct: 0, Total: 5})
	require.NoError(t, err)
	assert.Equal(t, ReasonNothingEarned, res.Reason)

	_, err = l.RecordEvent(ctx, "ada", Event{Type: EventQuiz, Correct: 6, Total: 5})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestProgress(t *testing.T) {
	ctx := context.Background()
	l, _, _ := newTestLedger(t)

	p, err := l.Progress(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, int64(500), p.PointsToNext)

	_, err = l.Award(ctx, "ada", SourceAdmin, 2750)
	require.NoError(t, err)
	_, err = l.Grant(ctx, "ada", "xp_shield", 0, 0)
	require.NoError(t, err)

	p, err = l.Progress(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Level)
	assert.Equal(t, "Silver", p.Rank.Name)
	assert.Equal(t, int64(3000), p.NextLevelAt)
	assert.Equal(t, int64(250), p.PointsToNext)
	assert.Equal(t, 50, p.PercentInLevel)
	assert.True(t, p.Effects.HasProtection)
	assert.Len(t, p.ActiveModifiers, 1)
	assert.Equal(t, 1, p.CurrentStreak)
}

func TestProgressStreakLapses(t *testing.T) {
	ctx := context.Background()
	l, _, clock := newTestLedger(t)

	_, err := l.Award(ctx, "ada", SourceTask, 10)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	p, err := l.Progress(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 1, p.CurrentStreak, "yesterday's streak is still alive")

	clock.Advance(24 * time.Hour)
	p, err = l.Progress(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentStreak)
	assert.Equal(t, 1, p.LongestStreak)
}
