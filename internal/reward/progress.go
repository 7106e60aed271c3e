package reward

import (
	"context"
	"errors"

	"byte-battle/internal/store"
)

type Progress struct {
	ActorID         string           `json:"actor_id"`
	DisplayName     string           `json:"display_name"`
	TotalPoints     int64            `json:"total_points"`
	Level           int              `json:"level"`
	Rank            Rank             `json:"rank"`
	NextLevelAt     int64            `json:"next_level_at"`
	PointsToNext    int64            `json:"points_to_next"`
	PercentInLevel  int              `json:"percent_in_level"`
	CurrentStreak   int              `json:"current_streak"`
	LongestStreak   int              `json:"longest_streak"`
	Badges          []string         `json:"badges"`
	Effects         Effects          `json:"effects"`
	ActiveModifiers []store.Modifier `json:"active_modifiers"`
}

// Progress reports level, rank and streak state. Unknown actors read as a
// fresh level 1 actor.
func (l *Ledger) Progress(ctx context.Context, actorID string) (Progress, error) {
	if actorID == "" {
		return Progress{}, ErrInvalidActor
	}
	a, err := l.repo.GetActor(ctx, actorID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Progress{}, err
	}
	if errors.Is(err, store.ErrNotFound) {
		a = store.Actor{ID: actorID, DisplayName: DisplayNameFrom(ctx)}
	}

	now := l.now()
	level := LevelFor(a.TotalPoints)
	next := int64(level) * PointsPerLevel
	intoLevel := a.TotalPoints - int64(level-1)*PointsPerLevel
	p := Progress{
		ActorID:        a.ID,
		DisplayName:    a.DisplayName,
		TotalPoints:    a.TotalPoints,
		Level:          level,
		Rank:           RankFor(level),
		NextLevelAt:    next,
		PointsToNext:   next - a.TotalPoints,
		PercentInLevel: int(intoLevel * 100 / PointsPerLevel),
		CurrentStreak:  liveStreak(a, civilDate(now, l.loc)),
		LongestStreak:  a.LongestStreak,
		Badges:         []string{},
	}

	badges, err := l.repo.ListBadges(ctx, actorID)
	if err != nil {
		return Progress{}, err
	}
	for _, b := range badges {
		p.Badges = append(p.Badges, b.Badge)
	}

	mods, err := l.repo.ListModifiers(ctx, actorID)
	if err != nil {
		return Progress{}, err
	}
	p.Effects, _ = Resolve(mods, now)
	p.ActiveModifiers = []store.Modifier{}
	for _, m := range mods {
		if m.ExpiresAt != nil && now.Before(*m.ExpiresAt) {
			p.ActiveModifiers = append(p.ActiveModifiers, m)
		}
	}
	return p, nil
}
