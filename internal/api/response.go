package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/dmitrymomot/bizdesk/pkg/access"
	"github.com/dmitrymomot/bizdesk/pkg/jwt"
	"github.com/dmitrymomot/bizdesk/pkg/logger"
	"github.com/dmitrymomot/bizdesk/pkg/media"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/requestid"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
	"github.com/dmitrymomot/bizdesk/pkg/validator"
)

// Response is the envelope of every JSON body.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request. Code is stable, Message is for humans.
type ErrorDetail struct {
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Details   map[string][]string `json:"details,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

var (
	// errBadRequest marks malformed input that never reached a domain service.
	errBadRequest       = errors.New("api: malformed request")
	errNotFound         = errors.New("api: route not found")
	errMethodNotAllowed = errors.New("api: method not allowed")
	errTooManyRequests  = errors.New("api: too many requests")
)

type httpError struct {
	status  int
	code    string
	message string
}

// classify maps domain errors to HTTP. Order matters: joined errors match the first rule.
func classify(err error) httpError {
	switch {
	case errors.Is(err, errBadRequest):
		return httpError{http.StatusBadRequest, "bad_request", "malformed request"}
	case errors.Is(err, errNotFound):
		return httpError{http.StatusNotFound, "route_not_found", "route not found"}
	case errors.Is(err, errMethodNotAllowed):
		return httpError{http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"}
	case errors.Is(err, errTooManyRequests):
		return httpError{http.StatusTooManyRequests, "too_many_requests", "too many attempts, try again later"}
	case errors.Is(err, jwt.ErrTokenExpired):
		return httpError{http.StatusUnauthorized, "token_expired", "token expired"}
	case errors.Is(err, jwt.ErrMissingToken),
		errors.Is(err, jwt.ErrTokenInvalid),
		errors.Is(err, access.ErrUnauthenticated):
		return httpError{http.StatusUnauthorized, "unauthorized", "authentication required"}
	case errors.Is(err, principal.ErrInvalidCredentials):
		return httpError{http.StatusUnauthorized, "invalid_credentials", "invalid email or password"}
	case errors.Is(err, access.ErrPremiumRequired):
		return httpError{http.StatusForbidden, "premium_required", "an active subscription is required"}
	case errors.Is(err, access.ErrForbidden):
		return httpError{http.StatusForbidden, "forbidden", "forbidden"}
	case errors.Is(err, media.ErrFileTooLarge):
		return httpError{http.StatusRequestEntityTooLarge, "file_too_large", "screenshot is too large"}
	case errors.Is(err, media.ErrContentTypeDenied):
		return httpError{http.StatusUnsupportedMediaType, "unsupported_media_type", "screenshot must be an image"}
	case errors.Is(err, media.ErrEmptyFile):
		return httpError{http.StatusBadRequest, "empty_file", "screenshot is empty"}
	case errors.Is(err, payment.ErrScreenshotsDisabled):
		return httpError{http.StatusBadRequest, "screenshots_disabled", "screenshot uploads are not available"}
	case errors.Is(err, payment.ErrInvalidRequest),
		errors.Is(err, subscription.ErrUnknownPlan),
		errors.Is(err, subscription.ErrPlanNotPurchasable):
		return httpError{http.StatusBadRequest, "invalid_request", "request is invalid"}
	case errors.Is(err, payment.ErrInvalidStateTransition):
		return httpError{http.StatusConflict, "invalid_state_transition", "payment request was already decided"}
	case errors.Is(err, payment.ErrRequestNotFound):
		return httpError{http.StatusNotFound, "not_found", "payment request not found"}
	case errors.Is(err, subscription.ErrAccountNotFound):
		return httpError{http.StatusNotFound, "not_found", "account not found"}
	case errors.Is(err, principal.ErrPrincipalNotFound):
		return httpError{http.StatusNotFound, "not_found", "principal not found"}
	default:
		return httpError{http.StatusInternalServerError, "internal_error", "internal server error"}
	}
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	render.Status(r, status)
	render.JSON(w, r, Response{Data: data})
}

// errorResponder writes classified errors and logs them at a level matching the status class.
type errorResponder struct {
	logger *slog.Logger
}

func (e errorResponder) respond(w http.ResponseWriter, r *http.Request, err error) {
	he := classify(err)
	detail := &ErrorDetail{
		Code:      he.code,
		Message:   he.message,
		RequestID: requestid.FromContext(r.Context()),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		detail.Details = verrs.Map()
	}

	level := slog.LevelDebug
	switch {
	case he.status >= http.StatusInternalServerError:
		level = slog.LevelError
	case he.status == http.StatusConflict || he.status == http.StatusForbidden:
		level = slog.LevelInfo
	}
	e.logger.Log(r.Context(), level, "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", he.status),
		slog.String("code", he.code),
		logger.Error(err),
	)

	render.Status(r, he.status)
	render.JSON(w, r, Response{Error: detail})
}
