package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const sessionIDKey contextKey = iota

// getSessionID extracts the client session ID from context.
func getSessionID(ctx context.Context) string {
	v, _ := ctx.Value(sessionIDKey).(string)
	return v
}

// sessionMiddleware records the client session in context so log lines from
// one client can be correlated. HTTP clients send Mcp-Session-Id; stdio has
// a single implicit session.
func sessionMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var sessionID string
			if extra := safeExtra(req); extra != nil && extra.Header != nil {
				sessionID = extra.Header.Get("Mcp-Session-Id")
			}
			if sessionID == "" {
				sessionID = safeSessionID(req)
			}
			if sessionID != "" {
				ctx = context.WithValue(ctx, sessionIDKey, sessionID)
			}
			return next(ctx, method, req)
		}
	}
}

// recoverMiddleware turns a panicking method into an error so one bad call
// cannot take down a long-running stdio server.
func recoverMiddleware(logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (result sdkmcp.Result, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("mcp method panicked", "method", method, "panic", r)
					result, err = nil, fmt.Errorf("internal error in %s", method)
				}
			}()
			return next(ctx, method, req)
		}
	}
}

func safeExtra(req sdkmcp.Request) (extra *sdkmcp.RequestExtra) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			extra = nil
		}
	}()
	return req.GetExtra()
}
