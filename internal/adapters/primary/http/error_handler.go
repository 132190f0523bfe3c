package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/asset-desk-backend/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorHandler maps errors to JSON responses and logs them.
type ErrorHandler struct {
	logger *slog.Logger
}

func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, err)
		WriteJSON(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: validationErrs.Errors,
		})
		return
	}

	statusCode, response := mapDomainError(err)
	h.logError(r, statusCode, err)
	WriteJSON(w, statusCode, response)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func mapDomainError(err error) (int, ErrorResponse) {
	switch {
	// Authentication & Authorization
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Authentication required",
			Code:  "UNAUTHORIZED",
		}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{
			Error: "You do not have permission to perform this action",
			Code:  "FORBIDDEN",
		}

	// Not Found errors
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "User not found",
			Code:  "USER_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrTicketNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Ticket not found",
			Code:  "TICKET_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrAssetNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Asset not found",
			Code:  "ASSET_NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrUnknownCollection):
		return http.StatusNotFound, ErrorResponse{
			Error: "Unknown report type",
			Code:  "UNKNOWN_COLLECTION",
		}
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Resource not found",
			Code:  "NOT_FOUND",
		}

	// Report criteria
	case errors.Is(err, apperrors.ErrUnknownColumn):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "UNKNOWN_COLUMN",
		}
	case errors.Is(err, apperrors.ErrInvalidDateRange):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_DATE_RANGE",
		}
	case errors.Is(err, apperrors.ErrInvalidCriteria):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_CRITERIA",
		}
	case errors.Is(err, apperrors.ErrUnsupportedFormat):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "UNSUPPORTED_FORMAT",
		}

	// Validation errors
	case errors.Is(err, apperrors.ErrTitleRequired),
		errors.Is(err, apperrors.ErrTitleTooLong),
		errors.Is(err, apperrors.ErrNameRequired),
		errors.Is(err, apperrors.ErrNameTooLong),
		errors.Is(err, apperrors.ErrDescriptionTooLong),
		errors.Is(err, apperrors.ErrInvalidPriority),
		errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrInvalidAssetStatus),
		errors.Is(err, apperrors.ErrInvalidRole),
		errors.Is(err, apperrors.ErrDueBeforeCreation):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		}

	// Business rule violations
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		return http.StatusBadRequest, ErrorResponse{
			Error: "Invalid status transition",
			Code:  "INVALID_STATUS_TRANSITION",
		}
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, ErrorResponse{
			Error: "Resource conflict",
			Code:  "CONFLICT",
		}

	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
			Code:  "RATE_LIMITED",
		}

	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// logError logs at a level matching the status code. The logger picks up
// the request id from the request context.
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(r.Context(), "server error", attrs...)
	case statusCode >= 400:
		h.logger.WarnContext(r.Context(), "client error", attrs...)
	default:
		h.logger.InfoContext(r.Context(), "request error", attrs...)
	}
}

// HandleError handles err inline and reports whether there was one.
// Usage: if HandleError(w, r, err, h.errorHandler) { return }
func HandleError(w http.ResponseWriter, r *http.Request, err error, handler *ErrorHandler) bool {
	if err != nil {
		handler.Handle(w, r, err)
		return true
	}
	return false
}
