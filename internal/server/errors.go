package server

import (
	"errors"
	"net/http"

	countdomain "github.com/smallbiznis/stocktake/internal/count/domain"
	"github.com/gin-gonic/gin"
	itemdomain "github.com/smallbiznis/stocktake/internal/item/domain"
	roomdomain "github.com/smallbiznis/stocktake/internal/room/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type      string            `json:"type"`
	Message   string            `json:"message"`
	Retryable bool              `json:"retryable,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    err.Error(),
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, countdomain.ErrNoActiveSession):
		return http.StatusConflict, errorPayload{
			Type:    "no_active_session",
			Message: "room has no active count session; hydrate first",
		}
	case errors.Is(err, countdomain.ErrCommitFailed):
		// The room's committed state is unknown; the operator must
		// retry, never assume the save landed.
		return http.StatusConflict, errorPayload{
			Type:      "commit_failed",
			Message:   "room commit failed; counts were not saved, retry",
			Retryable: true,
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:      "service_unavailable",
			Message:   "service unavailable",
			Retryable: true,
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:      "internal_error",
			Message:   "internal server error",
			Retryable: true,
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErrs *ValidationErrors
	if errors.As(err, &vErrs) {
		return vErrs
	}
	var vErrsValue ValidationErrors
	if errors.As(err, &vErrsValue) {
		return &vErrsValue
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, roomdomain.ErrInvalidOrganization),
		errors.Is(err, roomdomain.ErrInvalidID),
		errors.Is(err, itemdomain.ErrInvalidOrganization),
		errors.Is(err, itemdomain.ErrInvalidID),
		errors.Is(err, countdomain.ErrInvalidOrganization),
		errors.Is(err, countdomain.ErrInvalidID),
		errors.Is(err, countdomain.ErrInvalidDelta),
		errors.Is(err, ErrInvalidRequest):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, roomdomain.ErrNotFound),
		errors.Is(err, itemdomain.ErrNotFound),
		errors.Is(err, countdomain.ErrRoomNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case asValidationErrors(err) != nil, isValidationError(err):
		return "validation_error", "invalid_request"
	case errors.Is(err, ErrUnauthorized):
		return "auth_error", "unauthorized"
	case isNotFoundError(err):
		return "not_found", "not_found"
	case errors.Is(err, countdomain.ErrCommitFailed):
		return "commit_error", "commit_failed"
	case errors.Is(err, countdomain.ErrNoActiveSession):
		return "conflict", "no_active_session"
	default:
		return "internal_error", "internal"
	}
}
