package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

type stubAuthService struct {
	requestFn func(ctx context.Context, username, email string) (*domain.User, error)
	tokenFn   func(ctx context.Context, username, code string) (string, error)
}

func (s *stubAuthService) RequestConfirmation(ctx context.Context, username, email string) (*domain.User, error) {
	return s.requestFn(ctx, username, email)
}

func (s *stubAuthService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	return s.tokenFn(ctx, username, code)
}

func (s *stubAuthService) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	return domain.Actor{}, domain.ErrUnauthenticated
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubAuthService{
		requestFn: func(ctx context.Context, username, email string) (*domain.User, error) {
			if username != "alice" || email != "alice@example.com" {
				t.Fatalf("unexpected args: %s %s", username, email)
			}
			return &domain.User{ID: 1, Username: username, Email: email, Role: domain.RoleUser}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/signup", `{"username":"alice","email":"alice@example.com"}`)
	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["email"] != "alice@example.com" || len(resp) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Signup_ReservedUsername(t *testing.T) {
	stub := &stubAuthService{
		requestFn: func(ctx context.Context, username, email string) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/signup", `{"username":"me","email":"me@example.com"}`)
	err := handler.Signup(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["username"]; !ok {
		t.Fatalf("expected username field error, got %+v", verr.Fields)
	}
}

func TestAuthHandler_Signup_InvalidEmail(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/signup", `{"username":"alice","email":"nope"}`)
	err := handler.Signup(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["email"] == "" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestAuthHandler_Signup_Conflict(t *testing.T) {
	stub := &stubAuthService{
		requestFn: func(ctx context.Context, username, email string) (*domain.User, error) {
			return nil, fmt.Errorf("signup: %w", domain.ErrConflict)
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/signup", `{"username":"alice","email":"other@example.com"}`)
	if err := handler.Signup(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthHandler_Signup_InvalidPayload(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/signup", `{"username":`)
	err := handler.Signup(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Token_Success(t *testing.T) {
	stub := &stubAuthService{
		tokenFn: func(ctx context.Context, username, code string) (string, error) {
			if username != "alice" || code != "abc-123" {
				t.Fatalf("unexpected args: %s %s", username, code)
			}
			return "jwt-token", nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/v1/auth/token", `{"username":"alice","confirmation_code":"abc-123"}`)
	if err := handler.Token(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
}

func TestAuthHandler_Token_MissingCode(t *testing.T) {
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/token", `{"username":"alice"}`)
	err := handler.Token(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["confirmation_code"] == "" {
		t.Fatalf("expected confirmation_code error, got %v", err)
	}
}

func TestAuthHandler_Token_InvalidCode(t *testing.T) {
	stub := &stubAuthService{
		tokenFn: func(ctx context.Context, username, code string) (string, error) {
			return "", domain.ErrInvalidCode
		},
	}
	handler := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/api/v1/auth/token", `{"username":"alice","confirmation_code":"bad"}`)
	if err := handler.Token(c); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected invalid code, got %v", err)
	}
}
