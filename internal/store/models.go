package store

import "time"

type Actor struct {
	ID               string
	DisplayName      string
	TotalPoints      int64
	Level            int
	CurrentStreak    int
	LongestStreak    int
	LastActivityDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type LedgerEntry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Source    string    `json:"source"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Modifier is a time-bounded effect owned by an actor. A nil ExpiresAt marks
// an instantaneous effect that was applied at activation.
type Modifier struct {
	ID          string     `json:"id"`
	ActorID     string     `json:"actor_id"`
	ItemID      string     `json:"item_id"`
	Kind        string     `json:"kind"`
	Factor      float64    `json:"factor"`
	ActivatedAt time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Active      bool       `json:"active"`
}

type BadgeGrant struct {
	ActorID   string    `json:"actor_id"`
	Badge     string    `json:"badge"`
	GrantedAt time.Time `json:"granted_at"`
}

type LeaderboardRow struct {
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name"`
	TotalPoints int64  `json:"total_points"`
	Level       int    `json:"level"`
}

type LedgerFilter struct {
	ActorID string
	Source  string
	From    *time.Time
	To      *time.Time
}
