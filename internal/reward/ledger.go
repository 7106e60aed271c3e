package reward

import (
	"context"
	"math"
	"sync"
	"time"

	"byte-battle/internal/store"

	"github.com/rs/zerolog/log"
)

// Repository is the persistence the ledger needs. Both store.Store and
// store.Memory satisfy it.
type Repository interface {
	InActorTx(ctx context.Context, actorID, displayName string, fn func(store.ActorTx) error) error
	GetActor(ctx context.Context, actorID string) (store.Actor, error)
	ListBadges(ctx context.Context, actorID string) ([]store.BadgeGrant, error)
	ListModifiers(ctx context.Context, actorID string) ([]store.Modifier, error)
}

// Observer is told about every committed change to an actor's totals.
type Observer interface {
	OnActorChanged(ctx context.Context, actor store.Actor)
}

type Result struct {
	ActorID    string   `json:"actor_id"`
	Source     string   `json:"source"`
	Requested  int64    `json:"requested"`
	Applied    int64    `json:"applied_amount"`
	Multiplier float64  `json:"multiplier"`
	NewTotal   int64    `json:"new_total"`
	NewLevel   int      `json:"new_level"`
	LeveledUp  bool     `json:"leveled_up"`
	CapReached bool     `json:"cap_reached,omitempty"`
	Clamped    bool     `json:"clamped,omitempty"`
	Protected  bool     `json:"protected,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	NewBadges  []string `json:"new_badges,omitempty"`
}

type Ledger struct {
	repo Repository
	now  func() time.Time
	loc  *time.Location

	mu       sync.RWMutex
	observer Observer
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the zone that decides calendar days for streaks and caps.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func New(repo Repository, opts ...Option) *Ledger {
	l := &Ledger{repo: repo, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) SetObserver(obs Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = obs
}

func (l *Ledger) Now() time.Time { return l.now() }

func (l *Ledger) notify(ctx context.Context, actor store.Actor) {
	l.mu.RLock()
	obs := l.observer
	l.mu.RUnlock()
	if obs != nil {
		obs.OnActorChanged(ctx, actor)
	}
}

// Award credits amount from source after applying the actor's active
// multipliers and any daily cap for the source. Streaks and badges are
// updated in the same transaction as the ledger entry.
func (l *Ledger) Award(ctx context.Context, actorID, source string, amount int64) (Result, error) {
	return l.award(ctx, actorID, source, amount, nil)
}

func (l *Ledger) award(ctx context.Context, actorID, source string, amount int64, extraBadges []string) (Result, error) {
	if actorID == "" {
		return Result{}, ErrInvalidActor
	}
	if amount <= 0 {
		return Result{}, ErrInvalidAmount
	}
	now := l.now()
	res := Result{ActorID: actorID, Source: source, Requested: amount}
	var committed store.Actor
	err := l.repo.InActorTx(ctx, actorID, DisplayNameFrom(ctx), func(tx store.ActorTx) error {
		res = Result{ActorID: actorID, Source: source, Requested: amount}
		eff, err := resolveInTx(ctx, tx, now)
		if err != nil {
			return err
		}
		res.Multiplier = eff.Multiplier(source)
		applied := scalePoints(amount, res.Multiplier)

		if limit, capped := dailyCaps[source]; capped {
			used, err := tx.SumSourceSince(ctx, source, dayStart(now, l.loc))
			if err != nil {
				return err
			}
			remaining := limit - used
			switch {
			case remaining <= 0:
				a := tx.Actor()
				res.CapReached = true
				res.Reason = ReasonDailyCapReached
				res.NewTotal = a.TotalPoints
				res.NewLevel = LevelFor(a.TotalPoints)
				committed = a
				return nil
			case applied > remaining:
				applied = remaining
				res.Clamped = true
			}
		}

		c, err := l.credit(ctx, tx, source, applied, now, extraBadges)
		if err != nil {
			return err
		}
		res.Applied = c.applied
		res.NewTotal = c.after.TotalPoints
		res.NewLevel = c.after.Level
		res.LeveledUp = c.after.Level > LevelFor(c.before.TotalPoints)
		res.NewBadges = c.badges
		committed = tx.Actor()
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("actor_id", actorID).Str("source", source).Msg("award_failed")
		return Result{}, err
	}
	if res.Applied > 0 {
		l.notify(ctx, committed)
		log.Debug().
			Str("actor_id", actorID).
			Str("source", source).
			Int64("applied", res.Applied).
			Int64("total", res.NewTotal).
			Bool("leveled_up", res.LeveledUp).
			Msg("points_awarded")
	}
	return res, nil
}

type credited struct {
	applied       int64
	before, after store.Actor
	badges        []string
}

// credit adds amount to the actor inside tx, advances the streak and grants
// any badges now earned. Every positive path goes through it.
func (l *Ledger) credit(ctx context.Context, tx store.ActorTx, source string, amount int64, now time.Time, extraBadges []string) (credited, error) {
	a := tx.Actor()
	c := credited{before: a}
	total := addPoints(a.TotalPoints, amount)
	c.applied = total - a.TotalPoints
	a.TotalPoints = total
	a.Level = LevelFor(total)
	advanceStreak(&a, civilDate(now, l.loc))

	if err := tx.InsertLedgerEntry(ctx, store.LedgerEntry{Source: source, Amount: c.applied, CreatedAt: now}); err != nil {
		return credited{}, err
	}
	if err := tx.UpdateActor(ctx, a); err != nil {
		return credited{}, err
	}
	for _, b := range append(earnedBadges(a), extraBadges...) {
		granted, err := tx.GrantBadge(ctx, b, now)
		if err != nil {
			return credited{}, err
		}
		if granted {
			c.badges = append(c.badges, b)
		}
	}
	c.after = a
	return c, nil
}

// scalePoints applies a multiplier, saturating instead of overflowing.
func scalePoints(amount int64, multiplier float64) int64 {
	if multiplier == 1 {
		return amount
	}
	v := float64(amount) * multiplier
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(v)
}

func addPoints(total, delta int64) int64 {
	if delta > math.MaxInt64-total {
		return math.MaxInt64
	}
	return total + delta
}

// Penalize deducts amount. An active loss protection suppresses the deduction
// unless forced. The total never drops below zero and the entry records the
// delta actually taken.
func (l *Ledger) Penalize(ctx context.Context, actorID, source string, amount int64, forced bool) (Result, error) {
	if actorID == "" {
		return Result{}, ErrInvalidActor
	}
	if amount <= 0 {
		return Result{}, ErrInvalidAmount
	}
	now := l.now()
	var (
		res       Result
		committed store.Actor
	)
	err := l.repo.InActorTx(ctx, actorID, DisplayNameFrom(ctx), func(tx store.ActorTx) error {
		res = Result{ActorID: actorID, Source: source, Requested: -amount, Multiplier: 1}
		eff, err := resolveInTx(ctx, tx, now)
		if err != nil {
			return err
		}
		a := tx.Actor()
		if eff.HasProtection && !forced {
			res.Protected = true
			res.Reason = ReasonLossProtection
			res.NewTotal = a.TotalPoints
			res.NewLevel = LevelFor(a.TotalPoints)
			return nil
		}
		delta, err := debit(ctx, tx, source, amount, now)
		if err != nil {
			return err
		}
		committed = tx.Actor()
		res.Applied = delta
		res.NewTotal = committed.TotalPoints
		res.NewLevel = committed.Level
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("actor_id", actorID).Str("source", source).Msg("penalty_failed")
		return Result{}, err
	}
	if !res.Protected {
		l.notify(ctx, committed)
	}
	return res, nil
}

// debit lowers the locked actor's total by up to amount, floors it at zero
// and records the signed delta.
func debit(ctx context.Context, tx store.ActorTx, source string, amount int64, now time.Time) (int64, error) {
	a := tx.Actor()
	newTotal := a.TotalPoints - amount
	if newTotal < 0 {
		newTotal = 0
	}
	delta := newTotal - a.TotalPoints
	a.TotalPoints = newTotal
	a.Level = LevelFor(newTotal)
	if err := tx.InsertLedgerEntry(ctx, store.LedgerEntry{Source: source, Amount: delta, CreatedAt: now}); err != nil {
		return 0, err
	}
	if err := tx.UpdateActor(ctx, a); err != nil {
		return 0, err
	}
	return delta, nil
}
