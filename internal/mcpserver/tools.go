package mcpserver

import (
	"context"

	"byte-battle/internal/app/rewards"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultPageLimit    = 50
	maxLeaderboardLimit = 100
)

func clampPagination(limit, offset, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Server) registerRewardTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_progress",
			mcp.WithDescription("Level, rank, streak, badges and active effects of an actor"),
			mcp.WithString("actor_id", mcp.Required(), mcp.Description("Actor id")),
		),
		s.handleGetProgress,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"record_event",
			mcp.WithDescription("Record a product event for an actor"),
			mcp.WithString("actor_id", mcp.Required(), mcp.Description("Actor id")),
			mcp.WithString("type", mcp.Required(), mcp.Description("task_completed|task_reopened|focus_session|session_goal|habit|quiz")),
			mcp.WithNumber("minutes", mcp.Description("Focus session minutes")),
			mcp.WithNumber("correct", mcp.Description("Correct quiz answers")),
			mcp.WithNumber("total", mcp.Description("Quiz questions")),
		),
		s.handleRecordEvent,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_leaderboard",
			mcp.WithDescription("Top actors by points"),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 100")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleGetLeaderboard,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_modifiers",
			mcp.WithDescription("Modifier catalog, with the actor's active modifiers when actor_id is given"),
			mcp.WithString("actor_id", mcp.Description("Optional actor id")),
		),
		s.handleListModifiers,
	)
}

func (s *Server) registerRoomTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"lookup_room",
			mcp.WithDescription("Snapshot of a live battle room"),
			mcp.WithString("code", mcp.Required(), mcp.Description("Four character room code")),
		),
		s.handleLookupRoom,
	)
}

func (s *Server) handleGetProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actorID, err := request.RequireString("actor_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.rewards.Me(ctx, actorID)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleRecordEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	actorID, err := request.RequireString("actor_id")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	eventType, err := request.RequireString("type")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	res, svcErr := s.rewards.RecordEvent(ctx, actorID, rewards.EventRequest{
		Type:    eventType,
		Minutes: request.GetInt("minutes", 0),
		Correct: request.GetInt("correct", 0),
		Total:   request.GetInt("total", 0),
	})
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(res), nil
}

func (s *Server) handleGetLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultPageLimit)
	offset := request.GetInt("offset", 0)
	limit, offset = clampPagination(limit, offset, maxLeaderboardLimit)
	resp, err := s.rewards.Leaderboard(ctx, limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListModifiers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.rewards.Catalog(ctx, request.GetString("actor_id", ""))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleLookupRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	view, lookupErr := s.rooms.Lookup(ctx, code)
	if lookupErr != nil {
		return mapDomainError(lookupErr), nil
	}
	return toolResult(view), nil
}
