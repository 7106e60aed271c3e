package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"byte-battle/internal/app/rewards"
	"byte-battle/internal/battle"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RoomLookup reads a room snapshot without membership.
type RoomLookup interface {
	Lookup(ctx context.Context, code string) (battle.View, error)
}

// Server exposes rewards and live rooms as MCP tools for operators.
type Server struct {
	rewards *rewards.Service
	rooms   RoomLookup

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(svc *rewards.Service, rooms RoomLookup) *Server {
	mcpSrv := server.NewMCPServer(
		"byte-battle",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		rewards:    svc,
		rooms:      rooms,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerRewardTools()
	s.registerRoomTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"room://{code}/state",
			"room_state",
			mcp.WithTemplateDescription("Live battle room snapshot by room code"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			if !strings.HasPrefix(raw, "room://") || !strings.HasSuffix(raw, "/state") {
				return nil, nil
			}
			code := strings.TrimSuffix(strings.TrimPrefix(raw, "room://"), "/state")
			if code == "" {
				return nil, nil
			}
			view, err := s.rooms.Lookup(ctx, code)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(view)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
