package reward

import (
	"context"
	"math"
	"time"

	"byte-battle/internal/store"

	"github.com/rs/zerolog/log"
)

type Activation struct {
	Modifier store.Modifier `json:"modifier"`
	Charged  int64          `json:"charged"`
	Result   Result         `json:"result"`
}

// Grant activates a catalog item without charge. Zero duration or factor fall
// back to the item's defaults.
func (l *Ledger) Grant(ctx context.Context, actorID, itemID string, duration time.Duration, factor float64) (Activation, error) {
	return l.activate(ctx, actorID, itemID, duration, factor, false)
}

// Purchase charges the item's price and activates it in one transaction.
func (l *Ledger) Purchase(ctx context.Context, actorID, itemID string) (Activation, error) {
	return l.activate(ctx, actorID, itemID, 0, 0, true)
}

func (l *Ledger) activate(ctx context.Context, actorID, itemID string, duration time.Duration, factor float64, charge bool) (Activation, error) {
	if actorID == "" {
		return Activation{}, ErrInvalidActor
	}
	item, err := LookupItem(itemID)
	if err != nil {
		return Activation{}, err
	}
	if duration < 0 || factor < 0 || math.IsNaN(factor) || factor > maxFactor(item.Kind) {
		return Activation{}, ErrInvalidAmount
	}
	if duration == 0 {
		duration = item.Duration
	}
	if factor == 0 {
		factor = item.Factor
	}
	now := l.now()

	var (
		out       Activation
		committed store.Actor
	)
	err = l.repo.InActorTx(ctx, actorID, DisplayNameFrom(ctx), func(tx store.ActorTx) error {
		out = Activation{}
		if charge {
			if tx.Actor().TotalPoints < item.Price {
				return ErrInsufficientPoints
			}
			if _, err := debit(ctx, tx, SourcePurchase+":"+item.ID, item.Price, now); err != nil {
				return err
			}
			out.Charged = item.Price
		}

		mod := store.Modifier{
			ID:          store.NewID(),
			ActorID:     actorID,
			ItemID:      item.ID,
			Kind:        string(item.Kind),
			Factor:      factor,
			ActivatedAt: now,
			Active:      true,
		}
		before := tx.Actor()
		if item.Kind == KindInstantPoints {
			// Applied immediately; the record stays for audit with no expiry.
			mod.Active = false
			c, err := l.credit(ctx, tx, SourceModifier+":"+item.ID, int64(factor), now, nil)
			if err != nil {
				return err
			}
			out.Result.Applied = c.applied
			out.Result.NewBadges = c.badges
		} else {
			expires := now.Add(duration)
			mod.ExpiresAt = &expires
		}
		if err := tx.InsertModifier(ctx, mod); err != nil {
			return err
		}

		committed = tx.Actor()
		out.Modifier = mod
		out.Result.ActorID = actorID
		out.Result.Source = SourceModifier + ":" + item.ID
		out.Result.Multiplier = 1
		out.Result.NewTotal = committed.TotalPoints
		out.Result.NewLevel = committed.Level
		out.Result.LeveledUp = committed.Level > LevelFor(before.TotalPoints)
		return nil
	})
	if err != nil {
		return Activation{}, err
	}
	if out.Charged > 0 || out.Result.Applied > 0 {
		l.notify(ctx, committed)
	}
	log.Info().
		Str("actor_id", actorID).
		Str("item_id", item.ID).
		Int64("charged", out.Charged).
		Msg("modifier_activated")
	return out, nil
}
