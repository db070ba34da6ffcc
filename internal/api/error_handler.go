package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/infrastructure/metrics"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes.
//   - Logs unexpected errors and reports them to Sentry without leaking
//     details to the client.
//   - Renders a consistent JSON envelope: {"error": "...", "fields": {...}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, 429 from the limiter).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorResponse{Error: domain.ErrValidation.Error(), Fields: verr.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicateReview),
		errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrSlugExists),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: rootMessage(err)}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: rootMessage(err)}
	case errors.Is(err, domain.ErrUnauthenticated):
		metrics.AuthorizationDeniedTotal.WithLabelValues("unauthenticated").Inc()
		return http.StatusUnauthorized, errorResponse{Error: domain.ErrUnauthenticated.Error()}
	case errors.Is(err, domain.ErrForbidden):
		metrics.AuthorizationDeniedTotal.WithLabelValues("forbidden").Inc()
		return http.StatusForbidden, errorResponse{Error: domain.ErrForbidden.Error()}
	case errors.Is(err, domain.ErrDelivery):
		log.Warn().Err(err).Str("path", c.Path()).Msg("confirmation delivery failed")
		return http.StatusBadGateway, errorResponse{Error: domain.ErrDelivery.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
	captureException(c, err)

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// rootMessage returns the message of the innermost wrapped error, which is
// the domain sentinel rather than the operation context around it.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func captureException(c echo.Context, err error) {
	hub := sentry.GetHubFromContext(c.Request().Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("path", c.Path())
		scope.SetTag("method", c.Request().Method)
		hub.CaptureException(err)
	})
}
