package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxLoggedPayload caps each logged payload. An xlsx export_report result is
// a base64 workbook and would otherwise flood the debug log.
const maxLoggedPayload = 2048

// trafficLoggingMiddleware logs every MCP message at debug level, tagged with
// the session and, for tool calls, the project command being run.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			sessionID := getSessionID(ctx)
			if sessionID == "" {
				sessionID = safeSessionID(req)
			}
			params := safeParams(req)
			attrs := []any{"direction", direction, "method", method, "session_id", sessionID}
			if tool := toolName(params); tool != "" {
				attrs = append(attrs, "tool", tool)
			}
			logger.Debug("mcp traffic", append(attrs, "stage", "request", "params", formatPayload(params))...)

			result, err := next(ctx, method, req)
			if !strings.HasPrefix(method, "notifications/") {
				attrs = append(attrs, "stage", "response", "result", formatPayload(result))
				if err != nil {
					attrs = append(attrs, "error", err)
				}
				logger.Debug("mcp traffic", attrs...)
			}

			return result, err
		}
	}
}

// toolName returns the command named by a tools/call request.
func toolName(params any) string {
	switch p := params.(type) {
	case *sdkmcp.CallToolParamsRaw:
		if p != nil {
			return p.Name
		}
	case *sdkmcp.CallToolParams:
		if p != nil {
			return p.Name
		}
	}
	return ""
}

func safeSessionID(req sdkmcp.Request) string {
	if req == nil {
		return ""
	}
	defer func() { recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) any {
	if req == nil {
		return nil
	}
	defer func() { recover() }()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > maxLoggedPayload {
		return fmt.Sprintf("%s... (%d bytes)", data[:maxLoggedPayload], len(data))
	}
	return string(data)
}
