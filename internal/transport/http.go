package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/sitetrack/internal/mcp"
)

// CommandHandler runs a named project command, as mcp.Handler does.
type CommandHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// Server serves project commands over JSON-RPC.
type Server struct {
	handler CommandHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP router serving JSON-RPC on /rpc.
func NewServer(handler CommandHandler, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	srv := &Server{handler: handler, logger: logger}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", srv.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		code := ErrInvalidReq
		if errors.Is(err, ErrParse) {
			code = ErrParseCode
		}
		WriteError(w, nil, code, err.Error(), nil)
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		apiErr := mcp.AsAPIError(err)
		if apiErr.Code == mcp.CodeInternal {
			s.logger.Error("rpc failed", "method", req.Method, "request_id", middleware.GetReqID(r.Context()), "error", err)
		}
		WriteAPIError(w, req.ID, apiErr)
		return
	}

	WriteResult(w, req.ID, result)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
