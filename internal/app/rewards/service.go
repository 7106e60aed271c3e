package rewards

import (
	"context"
	"errors"
	"time"

	"byte-battle/internal/leaderboard"
	"byte-battle/internal/reward"
	"byte-battle/internal/store"
)

// Board ranks actors by points.
type Board interface {
	Top(ctx context.Context, limit, offset int) ([]leaderboard.Entry, error)
	Position(ctx context.Context, actorID string) (int, error)
}

// History lists raw ledger entries.
type History interface {
	ListLedgerEntries(ctx context.Context, f store.LedgerFilter, limit, offset int) ([]store.LedgerEntry, error)
}

type Service struct {
	ledger   *reward.Ledger
	resolver *reward.Resolver
	board    Board
	history  History
}

const (
	leaderboardMaxRows = 100
	ledgerMaxPage      = 200
)

func NewService(ledger *reward.Ledger, resolver *reward.Resolver, board Board, history History) *Service {
	return &Service{ledger: ledger, resolver: resolver, board: board, history: history}
}

func (s *Service) RecordEvent(ctx context.Context, actorID string, req EventRequest) (reward.Result, error) {
	if actorID == "" || req.Type == "" {
		return reward.Result{}, ErrInvalidRequest
	}
	return s.ledger.RecordEvent(ctx, actorID, reward.Event{
		Type:    req.Type,
		Minutes: req.Minutes,
		Correct: req.Correct,
		Total:   req.Total,
	})
}

func (s *Service) Me(ctx context.Context, actorID string) (*MeResponse, error) {
	p, err := s.ledger.Progress(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := &MeResponse{Progress: p}
	if s.board == nil {
		return out, nil
	}
	pos, err := s.board.Position(ctx, actorID)
	switch {
	case err == nil:
		out.Position = pos
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, err
	}
	return out, nil
}

// Catalog lists purchasable items and, for a known actor, what is active now.
func (s *Service) Catalog(ctx context.Context, actorID string) (*CatalogResponse, error) {
	now := s.ledger.Now()
	items := reward.Catalog()
	out := &CatalogResponse{Items: make([]CatalogItem, 0, len(items)), Now: now}
	for _, it := range items {
		out.Items = append(out.Items, CatalogItem{Item: it, DurationSeconds: int64(it.Duration / time.Second)})
	}
	if actorID == "" || s.resolver == nil {
		return out, nil
	}
	active, err := s.resolver.ActiveModifiers(ctx, actorID, now)
	if err != nil {
		return nil, err
	}
	out.Active = active
	return out, nil
}

func (s *Service) Purchase(ctx context.Context, actorID, itemID string) (reward.Activation, error) {
	if actorID == "" || itemID == "" {
		return reward.Activation{}, ErrInvalidRequest
	}
	return s.ledger.Purchase(ctx, actorID, itemID)
}

// Award applies an operator adjustment. Negative amounts are deductions.
func (s *Service) Award(ctx context.Context, req AwardRequest) (reward.Result, error) {
	if req.ActorID == "" || req.Amount == 0 {
		return reward.Result{}, ErrInvalidRequest
	}
	if req.Source == "" {
		req.Source = reward.SourceAdmin
	}
	if req.DisplayName != "" {
		ctx = reward.WithDisplayName(ctx, req.DisplayName)
	}
	if req.Amount < 0 {
		return s.ledger.Penalize(ctx, req.ActorID, req.Source, -req.Amount, req.Forced)
	}
	return s.ledger.Award(ctx, req.ActorID, req.Source, req.Amount)
}

func (s *Service) Grant(ctx context.Context, req GrantRequest) (reward.Activation, error) {
	if req.ActorID == "" || req.ItemID == "" || req.DurationSeconds < 0 || req.Factor < 0 {
		return reward.Activation{}, ErrInvalidRequest
	}
	return s.ledger.Grant(ctx, req.ActorID, req.ItemID, time.Duration(req.DurationSeconds)*time.Second, req.Factor)
}

func (s *Service) Ledger(ctx context.Context, f store.LedgerFilter, limit, offset int) (*LedgerResponse, error) {
	if offset < 0 {
		return nil, ErrInvalidRequest
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > ledgerMaxPage {
		limit = ledgerMaxPage
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, ErrInvalidRequest
	}
	items, err := s.history.ListLedgerEntries(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	return &LedgerResponse{Items: items, Limit: limit, Offset: offset}, nil
}

func (s *Service) Leaderboard(ctx context.Context, limit, offset int) (*LeaderboardResponse, error) {
	limit, ok := clampLeaderboardPage(limit, offset)
	if !ok || offset < 0 {
		return &LeaderboardResponse{Items: []leaderboard.Entry{}, Limit: limit, Offset: offset}, nil
	}
	items, err := s.board.Top(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &LeaderboardResponse{Items: items, Limit: limit, Offset: offset}, nil
}

// clampLeaderboardPage keeps pages inside the top 100.
func clampLeaderboardPage(limit, offset int) (int, bool) {
	if offset >= leaderboardMaxRows {
		return 0, false
	}
	if limit <= 0 {
		limit = 50
	}
	remaining := leaderboardMaxRows - offset
	if limit > remaining {
		limit = remaining
	}
	return limit, true
}
