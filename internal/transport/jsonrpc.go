package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rpggio/sitetrack/internal/mcp"
)

// maxRequestBytes bounds a command body. Ledger entries and project patches
// are small; exports travel in the response, never the request.
const maxRequestBytes = 1 << 20

var (
	// ErrParse indicates the body is not valid JSON.
	ErrParse = errors.New("parse error")
	// ErrInvalidRequest indicates valid JSON that is not a JSON-RPC 2.0 request.
	ErrInvalidRequest = errors.New("invalid request")
)

// JSON-RPC 2.0 error codes.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
	// ErrApplication carries project store errors such as NOT_FOUND or
	// CONFIRMATION_REQUIRED; Data holds the API error.
	ErrApplication = -32000
)

// Request is one command call. Method is a command name such as
// "create_project" or "add_labour"; Params is that command's argument object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response carries either a command result or an Error.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error is the JSON-RPC error object. For command failures Data is the
// *mcp.APIError with its code and recovery hint.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ParseRequest decodes a command call and checks the envelope. Command
// params are left raw for the handler to decode.
func ParseRequest(body io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if req.JSONRPC != "2.0" {
		return Request{}, fmt.Errorf("%w: jsonrpc must be \"2.0\"", ErrInvalidRequest)
	}
	if req.Method == "" {
		return Request{}, fmt.Errorf("%w: method required", ErrInvalidRequest)
	}
	return req, nil
}

// CodeFor maps an API error code onto the JSON-RPC code space. Input and
// dispatch failures use the standard codes; the rest are application errors.
func CodeFor(code string) int {
	switch code {
	case mcp.CodeInvalidInput:
		return ErrInvalidParams
	case mcp.CodeUnknownMethod:
		return ErrMethodNotFound
	case mcp.CodeInternal:
		return ErrInternal
	default:
		return ErrApplication
	}
}

// WriteResult writes a command result.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// WriteAPIError writes a failed command, keeping the API error as data.
func WriteAPIError(w http.ResponseWriter, id any, apiErr *mcp.APIError) {
	WriteError(w, id, CodeFor(apiErr.Code), apiErr.Message, apiErr)
}

// WriteError writes a JSON-RPC error response. Errors still use status 200;
// the outcome is in the body.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

func writeJSON(w http.ResponseWriter, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
