package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
	"github.com/yamdb/reviewhub/internal/infrastructure/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup gets or creates the account and mails it a confirmation code.
//
// @Summary      Request a confirmation code
// @Description  Creates the account on first use. Repeating the request for the same username and email sends a new code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Username and email"
// @Success      200   {object}  signupResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	user, err := h.authService.RequestConfirmation(c.Request().Context(), req.Username, req.Email)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues(signupResult(err)).Inc()
		return err
	}

	metrics.SignupsTotal.WithLabelValues("sent").Inc()
	return c.JSON(http.StatusOK, signupResponse{Username: user.Username, Email: user.Email})
}

func signupResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrDelivery):
		return "delivery_failed"
	default:
		return "error"
	}
}

// Token redeems a confirmation code for a bearer token.
//
// @Summary      Obtain an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Username and confirmation code"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := h.authService.ObtainToken(c.Request().Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCode):
			metrics.TokensTotal.WithLabelValues("invalid_code").Inc()
		case errors.Is(err, domain.ErrNotFound):
			metrics.TokensTotal.WithLabelValues("not_found").Inc()
		default:
			metrics.TokensTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.TokensTotal.WithLabelValues("issued").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}
