package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory keeps the reward tables in process. It honours the same contract as
// Store: one actor transaction at a time per actor, staged writes applied only
// when the callback succeeds.
type Memory struct {
	mu        sync.Mutex
	locks     map[string]*sync.Mutex
	actors    map[string]Actor
	entries   []LedgerEntry
	modifiers map[string][]Modifier
	badges    map[string][]BadgeGrant
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		locks:     map[string]*sync.Mutex{},
		actors:    map[string]Actor{},
		modifiers: map[string][]Modifier{},
		badges:    map[string][]BadgeGrant{},
		now:       time.Now,
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}

func (m *Memory) actorLock(actorID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[actorID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[actorID] = l
	}
	return l
}

func (m *Memory) InActorTx(ctx context.Context, actorID, displayName string, fn func(ActorTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := m.actorLock(actorID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	actor, ok := m.actors[actorID]
	m.mu.Unlock()
	if !ok {
		now := m.now()
		actor = Actor{ID: actorID, DisplayName: displayName, Level: 1, CreatedAt: now, UpdatedAt: now}
	}
	if displayName != "" {
		actor.DisplayName = displayName
	}

	tx := &memActorTx{store: m, actor: actor, deactivate: map[string]bool{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.commit(tx)
	return nil
}

func (m *Memory) commit(tx *memActorTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := tx.actor.ID
	m.actors[id] = tx.actor
	m.entries = append(m.entries, tx.entries...)
	mods := m.modifiers[id]
	for i := range mods {
		if tx.deactivate[mods[i].ID] {
			mods[i].Active = false
		}
	}
	m.modifiers[id] = append(mods, tx.modifiers...)
	m.badges[id] = append(m.badges[id], tx.badges...)
}

type memActorTx struct {
	store      *Memory
	actor      Actor
	entries    []LedgerEntry
	modifiers  []Modifier
	deactivate map[string]bool
	badges     []BadgeGrant
}

func (t *memActorTx) Actor() Actor { return t.actor }

func (t *memActorTx) SumSourceSince(_ context.Context, source string, since time.Time) (int64, error) {
	var total int64
	sum := func(entries []LedgerEntry) {
		for _, e := range entries {
			if e.ActorID == t.actor.ID && e.Source == source && !e.CreatedAt.Before(since) {
				total += e.Amount
			}
		}
	}
	t.store.mu.Lock()
	sum(t.store.entries)
	t.store.mu.Unlock()
	sum(t.entries)
	return total, nil
}

func (t *memActorTx) ListModifiers(context.Context) ([]Modifier, error) {
	t.store.mu.Lock()
	committed := append([]Modifier(nil), t.store.modifiers[t.actor.ID]...)
	t.store.mu.Unlock()

	out := []Modifier{}
	for _, mod := range append(committed, t.modifiers...) {
		if mod.Active && !t.deactivate[mod.ID] {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (t *memActorTx) DeactivateModifiers(_ context.Context, ids []string) error {
	for _, id := range ids {
		t.deactivate[id] = true
	}
	return nil
}

func (t *memActorTx) InsertModifier(_ context.Context, mod Modifier) error {
	if mod.ID == "" {
		mod.ID = NewID()
	}
	mod.ActorID = t.actor.ID
	t.modifiers = append(t.modifiers, mod)
	return nil
}

func (t *memActorTx) InsertLedgerEntry(_ context.Context, e LedgerEntry) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	e.ActorID = t.actor.ID
	t.entries = append(t.entries, e)
	return nil
}

func (t *memActorTx) UpdateActor(_ context.Context, a Actor) error {
	a.ID = t.actor.ID
	a.CreatedAt = t.actor.CreatedAt
	a.UpdatedAt = t.store.now()
	if a.LastActivityDate != nil {
		y, mo, d := a.LastActivityDate.Date()
		day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		a.LastActivityDate = &day
	}
	t.actor = a
	return nil
}

func (t *memActorTx) GrantBadge(_ context.Context, badge string, at time.Time) (bool, error) {
	for _, b := range t.badges {
		if b.Badge == badge {
			return false, nil
		}
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, b := range t.store.badges[t.actor.ID] {
		if b.Badge == badge {
			return false, nil
		}
	}
	t.badges = append(t.badges, BadgeGrant{ActorID: t.actor.ID, Badge: badge, GrantedAt: at})
	return true, nil
}

func (m *Memory) GetActor(_ context.Context, actorID string) (Actor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.actors[actorID]
	if !ok {
		return Actor{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) ListBadges(_ context.Context, actorID string) ([]BadgeGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BadgeGrant{}, m.badges[actorID]...), nil
}

func (m *Memory) ListModifiers(_ context.Context, actorID string) ([]Modifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Modifier{}
	for _, mod := range m.modifiers[actorID] {
		if mod.Active {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (m *Memory) ListLedgerEntries(_ context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.Lock()
	matched := []LedgerEntry{}
	for _, e := range m.entries {
		if f.ActorID != "" && e.ActorID != f.ActorID {
			continue
		}
		if f.Source != "" && e.Source != f.Source {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.CreatedAt.Before(*f.To) {
			continue
		}
		matched = append(matched, e)
	}
	m.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, limit, offset), nil
}

func (m *Memory) ListLeaderboard(_ context.Context, limit, offset int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 50
	}
	return page(m.rankedRows(), limit, offset), nil
}

func (m *Memory) ActorPosition(_ context.Context, actorID string) (int, error) {
	for i, r := range m.rankedRows() {
		if r.ActorID == actorID {
			return i + 1, nil
		}
	}
	return 0, ErrNotFound
}

func (m *Memory) rankedRows() []LeaderboardRow {
	m.mu.Lock()
	rows := make([]LeaderboardRow, 0, len(m.actors))
	for _, a := range m.actors {
		rows = append(rows, LeaderboardRow{ActorID: a.ID, DisplayName: a.DisplayName, TotalPoints: a.TotalPoints, Level: a.Level})
	}
	m.mu.Unlock()
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Level != rows[j].Level {
			return rows[i].Level > rows[j].Level
		}
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		return rows[i].ActorID < rows[j].ActorID
	})
	return rows
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T{}, items[offset:end]...)
}
