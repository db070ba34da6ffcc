package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

type stubAuth struct {
	authenticateFn func(ctx context.Context, token string) (domain.Actor, error)
}

func (s *stubAuth) RequestConfirmation(ctx context.Context, username, email string) (*domain.User, error) {
	return nil, errors.New("not used")
}

func (s *stubAuth) ObtainToken(ctx context.Context, username, code string) (string, error) {
	return "", errors.New("not used")
}

func (s *stubAuth) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	return s.authenticateFn(ctx, token)
}

func runAuth(t *testing.T, header string, stub *stubAuth) (*httptest.ResponseRecorder, *domain.Actor) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Actor
	handler := Authenticate(stub)(func(c echo.Context) error {
		actor := ActorFrom(c)
		seen = &actor
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, seen
}

func TestAuthenticate_ValidToken(t *testing.T) {
	stub := &stubAuth{authenticateFn: func(ctx context.Context, token string) (domain.Actor, error) {
		if token != "good" {
			t.Fatalf("unexpected token %q", token)
		}
		return domain.Actor{UserID: 7, Username: "alice", Role: domain.RoleModerator}, nil
	}}

	rec, actor := runAuth(t, "Bearer good", stub)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if actor == nil || actor.UserID != 7 || actor.Role != domain.RoleModerator {
		t.Fatalf("actor not set: %+v", actor)
	}
}

func TestAuthenticate_MissingHeaderIsAnonymous(t *testing.T) {
	stub := &stubAuth{authenticateFn: func(ctx context.Context, token string) (domain.Actor, error) {
		t.Fatalf("should not verify without a header")
		return domain.Actor{}, nil
	}}

	rec, actor := runAuth(t, "", stub)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if actor == nil || actor.Authenticated() {
		t.Fatalf("expected anonymous actor, got %+v", actor)
	}
}

func TestAuthenticate_InvalidHeaderFormat(t *testing.T) {
	stub := &stubAuth{}

	rec, actor := runAuth(t, "Token abc", stub)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if actor != nil {
		t.Fatalf("next must not run")
	}
}

func TestAuthenticate_RejectedToken(t *testing.T) {
	stub := &stubAuth{authenticateFn: func(ctx context.Context, token string) (domain.Actor, error) {
		return domain.Actor{}, domain.ErrUnauthenticated
	}}

	rec, _ := runAuth(t, "Bearer expired", stub)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticate_StoreFailureIsNotAuthError(t *testing.T) {
	stub := &stubAuth{authenticateFn: func(ctx context.Context, token string) (domain.Actor, error) {
		return domain.Actor{}, errors.New("db down")
	}}

	rec, _ := runAuth(t, "Bearer good", stub)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
