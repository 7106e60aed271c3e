package rewards

import (
	"time"

	"byte-battle/internal/leaderboard"
	"byte-battle/internal/reward"
	"byte-battle/internal/store"
)

type EventRequest struct {
	Type    string `json:"type"`
	Minutes int    `json:"minutes,omitempty"`
	Correct int    `json:"correct,omitempty"`
	Total   int    `json:"total,omitempty"`
}

type AwardRequest struct {
	ActorID     string `json:"actor_id"`
	DisplayName string `json:"display_name,omitempty"`
	Source      string `json:"source"`
	Amount      int64  `json:"amount"`
	Forced      bool   `json:"forced,omitempty"`
}

type GrantRequest struct {
	ActorID         string  `json:"actor_id"`
	ItemID          string  `json:"item_id"`
	DurationSeconds int64   `json:"duration_seconds,omitempty"`
	Factor          float64 `json:"factor,omitempty"`
}

type MeResponse struct {
	reward.Progress
	Position int `json:"position,omitempty"`
}

type CatalogItem struct {
	reward.Item
	DurationSeconds int64 `json:"duration_seconds,omitempty"`
}

type CatalogResponse struct {
	Items  []CatalogItem    `json:"items"`
	Active []store.Modifier `json:"active,omitempty"`
	Now    time.Time        `json:"now"`
}

type LedgerResponse struct {
	Items  []store.LedgerEntry `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type LeaderboardResponse struct {
	Items  []leaderboard.Entry `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
