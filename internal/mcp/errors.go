package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/sitetrack/internal/domain/project"
	"github.com/rpggio/sitetrack/internal/export"
)

var (
	// ErrConfirmationRequired is returned by destructive commands called
	// without confirm=true.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrUnknownMethod is returned for methods outside the dispatch table.
	ErrUnknownMethod = errors.New("unknown method")
)

// Error codes reported to clients.
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeNotFound             = "NOT_FOUND"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeNothingToExport      = "NOTHING_TO_EXPORT"
	CodeUnknownMethod        = "UNKNOWN_METHOD"
	CodeInternal             = "INTERNAL"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to client-facing error codes. It returns nil
// for errors it does not recognise.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: CodeInvalidInput, Message: err.Error(), RecoveryHint: "Fix the named field and retry"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: CodeNotFound, Message: "project not found", RecoveryHint: "Call list_projects for valid ids"}
	case errors.Is(err, project.ErrEntryNotFound):
		return &APIError{Code: CodeNotFound, Message: "entry not found", RecoveryHint: "Call get_project for valid entry ids"}
	case errors.Is(err, ErrConfirmationRequired):
		return &APIError{Code: CodeConfirmationRequired, Message: err.Error(), RecoveryHint: "Repeat the call with confirm=true"}
	case errors.Is(err, export.ErrNothingToExport):
		return &APIError{Code: CodeNothingToExport, Message: err.Error(), RecoveryHint: "Widen the state or date range"}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: CodeUnknownMethod, Message: err.Error()}
	default:
		return nil
	}
}

// AsAPIError is MapError with a fallback to CodeInternal.
func AsAPIError(err error) *APIError {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return &APIError{Code: CodeInternal, Message: err.Error()}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func invalidParams(err error) error {
	return fmt.Errorf("%w: %w", project.ErrInvalidInput, err)
}
