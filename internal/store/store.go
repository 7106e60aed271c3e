package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// ActorTx is the unit of work the reward ledger runs against one actor. The
// actor row stays locked until the surrounding transaction ends, so every
// read-modify-write through it is serialized per actor.
type ActorTx interface {
	Actor() Actor
	SumSourceSince(ctx context.Context, source string, since time.Time) (int64, error)
	// ListModifiers returns the modifiers whose stored flag is still active.
	ListModifiers(ctx context.Context) ([]Modifier, error)
	DeactivateModifiers(ctx context.Context, ids []string) error
	InsertModifier(ctx context.Context, m Modifier) error
	InsertLedgerEntry(ctx context.Context, e LedgerEntry) error
	UpdateActor(ctx context.Context, a Actor) error
	// GrantBadge reports whether the badge was newly granted.
	GrantBadge(ctx context.Context, badge string, at time.Time) (bool, error)
}
