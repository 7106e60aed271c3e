package mcpserver

import (
	"errors"
	"fmt"

	"byte-battle/internal/app/rewards"
	"byte-battle/internal/battle"
	"byte-battle/internal/reward"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

var domainErrs = []error{
	rewards.ErrInvalidRequest,
	rewards.ErrActorNotFound,
	reward.ErrInvalidAmount,
	reward.ErrInvalidActor,
	reward.ErrUnknownSource,
	reward.ErrUnknownItem,
	reward.ErrInsufficientPoints,
	battle.ErrInvalidRoom,
}

func mapDomainError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError("internal_error", "unknown error")
	}
	for _, known := range domainErrs {
		if errors.Is(err, known) {
			return toolError(known.Error(), err.Error())
		}
	}
	return toolError("internal_error", err.Error())
}
