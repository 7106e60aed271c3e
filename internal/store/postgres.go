package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps DB access.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

const actorColumns = `id, display_name, total_points, level, current_streak, longest_streak, last_activity_date, created_at, updated_at`

func scanActor(row pgx.Row) (Actor, error) {
	var (
		a    Actor
		last pgtype.Date
	)
	err := row.Scan(&a.ID, &a.DisplayName, &a.TotalPoints, &a.Level, &a.CurrentStreak,
		&a.LongestStreak, &last, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Actor{}, mapNotFound(err)
	}
	a.LastActivityDate = datePtrVal(last)
	return a, nil
}

// InActorTx creates the actor on first use, locks its row and runs fn. The
// transaction commits only when fn returns nil.
func (s *Store) InActorTx(ctx context.Context, actorID, displayName string, fn func(ActorTx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO actors (id, display_name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		actorID, displayName); err != nil {
		return err
	}
	actor, err := scanActor(tx.QueryRow(ctx,
		`SELECT `+actorColumns+` FROM actors WHERE id = $1 FOR UPDATE`, actorID))
	if err != nil {
		return err
	}
	if displayName != "" && actor.DisplayName != displayName {
		actor.DisplayName = displayName
	}
	if err := fn(&pgActorTx{tx: tx, actor: actor}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgActorTx struct {
	tx    pgx.Tx
	actor Actor
}

func (t *pgActorTx) Actor() Actor { return t.actor }

func (t *pgActorTx) SumSourceSince(ctx context.Context, source string, since time.Time) (int64, error) {
	var total int64
	err := t.tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::BIGINT FROM ledger_entries
		 WHERE actor_id = $1 AND source = $2 AND created_at >= $3`,
		t.actor.ID, source, timestamptzParam(since)).Scan(&total)
	return total, err
}

func (t *pgActorTx) ListModifiers(ctx context.Context) ([]Modifier, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, actor_id, item_id, kind, factor, activated_at, expires_at, active
		 FROM modifiers WHERE actor_id = $1 AND active ORDER BY activated_at, id`, t.actor.ID)
	if err != nil {
		return nil, err
	}
	return collectModifiers(rows)
}

func (t *pgActorTx) DeactivateModifiers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`UPDATE modifiers SET active = FALSE WHERE actor_id = $1 AND id = ANY($2)`, t.actor.ID, ids)
	return err
}

func (t *pgActorTx) InsertModifier(ctx context.Context, m Modifier) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO modifiers (id, actor_id, item_id, kind, factor, activated_at, expires_at, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, t.actor.ID, m.ItemID, m.Kind, m.Factor, timestamptzParam(m.ActivatedAt), timeParam(m.ExpiresAt), m.Active)
	return err
}

func (t *pgActorTx) InsertLedgerEntry(ctx context.Context, e LedgerEntry) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO ledger_entries (id, actor_id, source, amount, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, t.actor.ID, e.Source, e.Amount, timestamptzParam(e.CreatedAt))
	return err
}

func (t *pgActorTx) UpdateActor(ctx context.Context, a Actor) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE actors SET display_name = $2, total_points = $3, level = $4, current_streak = $5,
		 longest_streak = $6, last_activity_date = $7, updated_at = now() WHERE id = $1`,
		t.actor.ID, a.DisplayName, a.TotalPoints, a.Level, a.CurrentStreak, a.LongestStreak, dateParam(a.LastActivityDate))
	if err != nil {
		return err
	}
	a.ID = t.actor.ID
	t.actor = a
	return nil
}

func (t *pgActorTx) GrantBadge(ctx context.Context, badge string, at time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`INSERT INTO badge_grants (actor_id, badge, granted_at) VALUES ($1, $2, $3)
		 ON CONFLICT (actor_id, badge) DO NOTHING`,
		t.actor.ID, badge, timestamptzParam(at))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func collectModifiers(rows pgx.Rows) ([]Modifier, error) {
	defer rows.Close()
	out := []Modifier{}
	for rows.Next() {
		var (
			m       Modifier
			expires pgtype.Timestamptz
		)
		if err := rows.Scan(&m.ID, &m.ActorID, &m.ItemID, &m.Kind, &m.Factor, &m.ActivatedAt, &expires, &m.Active); err != nil {
			return nil, err
		}
		m.ExpiresAt = timePtrVal(expires)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) GetActor(ctx context.Context, actorID string) (Actor, error) {
	return scanActor(s.Pool.QueryRow(ctx, `SELECT `+actorColumns+` FROM actors WHERE id = $1`, actorID))
}

func (s *Store) ListBadges(ctx context.Context, actorID string) ([]BadgeGrant, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT actor_id, badge, granted_at FROM badge_grants WHERE actor_id = $1 ORDER BY granted_at, badge`, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BadgeGrant{}
	for rows.Next() {
		var b BadgeGrant
		if err := rows.Scan(&b.ActorID, &b.Badge, &b.GrantedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) ListModifiers(ctx context.Context, actorID string) ([]Modifier, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, actor_id, item_id, kind, factor, activated_at, expires_at, active
		 FROM modifiers WHERE actor_id = $1 AND active ORDER BY activated_at, id`, actorID)
	if err != nil {
		return nil, err
	}
	return collectModifiers(rows)
}

func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, actor_id, source, amount, created_at FROM ledger_entries
		 WHERE ($1::TEXT IS NULL OR actor_id = $1)
		   AND ($2::TEXT IS NULL OR source = $2)
		   AND ($3::TIMESTAMPTZ IS NULL OR created_at >= $3)
		   AND ($4::TIMESTAMPTZ IS NULL OR created_at < $4)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $5 OFFSET $6`,
		textParam(f.ActorID), textParam(f.Source), timeParam(f.From), timeParam(f.To), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LedgerEntry{}
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Source, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, display_name, total_points, level FROM actors
		 ORDER BY level DESC, total_points DESC, id ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardRow{}
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.ActorID, &r.DisplayName, &r.TotalPoints, &r.Level); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ActorPosition returns the 1-based leaderboard position of an actor.
func (s *Store) ActorPosition(ctx context.Context, actorID string) (int, error) {
	if _, err := s.GetActor(ctx, actorID); err != nil {
		return 0, err
	}
	var position int
	err := s.Pool.QueryRow(ctx,
		`SELECT COUNT(*)::INT + 1 FROM actors a, actors me
		 WHERE me.id = $1 AND (a.total_points > me.total_points
		   OR (a.total_points = me.total_points AND a.id < me.id))`, actorID).Scan(&position)
	return position, err
}
