package reward

import (
	"context"
	"errors"
	"time"

	"byte-battle/internal/store"
)

type ModifierKind string

const (
	KindPointMultiplier    ModifierKind = "point_multiplier"
	KindDurationMultiplier ModifierKind = "duration_multiplier"
	KindLossProtection     ModifierKind = "loss_protection"
	KindInstantPoints      ModifierKind = "instant_points"
)

// Effects is the resolved view of an actor's modifiers at one instant.
type Effects struct {
	PointMultiplier    float64 `json:"point_multiplier"`
	DurationMultiplier float64 `json:"duration_multiplier"`
	HasProtection      bool    `json:"has_protection"`
}

func neutralEffects() Effects {
	return Effects{PointMultiplier: 1, DurationMultiplier: 1}
}

// Multiplier returns the factor applied to an award from source. Point and
// duration multipliers stack only for duration-sensitive sources.
func (e Effects) Multiplier(source string) float64 {
	if durationSensitive(source) {
		return e.PointMultiplier * e.DurationMultiplier
	}
	return e.PointMultiplier
}

// Resolve folds modifiers into Effects. Per kind the largest factor wins.
// Modifiers without expiry were applied at activation and are skipped; those
// past expiry are skipped regardless of their stored flag and returned so the
// caller can deactivate them.
func Resolve(mods []store.Modifier, now time.Time) (Effects, []string) {
	eff := neutralEffects()
	var expired []string
	for _, m := range mods {
		if !m.Active || m.ExpiresAt == nil {
			continue
		}
		if !now.Before(*m.ExpiresAt) {
			expired = append(expired, m.ID)
			continue
		}
		switch ModifierKind(m.Kind) {
		case KindPointMultiplier:
			if m.Factor > eff.PointMultiplier {
				eff.PointMultiplier = m.Factor
			}
		case KindDurationMultiplier:
			if m.Factor > eff.DurationMultiplier {
				eff.DurationMultiplier = m.Factor
			}
		case KindLossProtection:
			eff.HasProtection = true
		}
	}
	return eff, expired
}

// resolveInTx resolves effects for the locked actor and marks expired
// modifiers inactive within the same transaction.
func resolveInTx(ctx context.Context, tx store.ActorTx, now time.Time) (Effects, error) {
	mods, err := tx.ListModifiers(ctx)
	if err != nil {
		return Effects{}, err
	}
	eff, expired := Resolve(mods, now)
	if len(expired) > 0 {
		if err := tx.DeactivateModifiers(ctx, expired); err != nil {
			return Effects{}, err
		}
	}
	return eff, nil
}

// Resolver answers which effects are active for an actor.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) ActiveEffects(ctx context.Context, actorID string, now time.Time) (Effects, error) {
	if _, err := r.repo.GetActor(ctx, actorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return neutralEffects(), nil
		}
		return Effects{}, err
	}
	var eff Effects
	err := r.repo.InActorTx(ctx, actorID, "", func(tx store.ActorTx) error {
		var err error
		eff, err = resolveInTx(ctx, tx, now)
		return err
	})
	return eff, err
}

// ActiveModifiers lists the unexpired duration-bounded modifiers of an actor.
func (r *Resolver) ActiveModifiers(ctx context.Context, actorID string, now time.Time) ([]store.Modifier, error) {
	mods, err := r.repo.ListModifiers(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := []store.Modifier{}
	for _, m := range mods {
		if m.ExpiresAt != nil && now.Before(*m.ExpiresAt) {
			out = append(out, m)
		}
	}
	return out, nil
}
