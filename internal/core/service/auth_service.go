package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

const (
	confirmationSubject = "Your confirmation code"
	confirmationBody    = "Use this code to obtain your access token: %s"
)

// AuthService implements signup by confirmation code and token issuance.
type AuthService struct {
	users    ports.UserRepository
	codes    ports.CodeGenerator
	tokens   ports.TokenIssuer
	notifier ports.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	codes ports.CodeGenerator,
	tokens ports.TokenIssuer,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		codes:    codes,
		tokens:   tokens,
		notifier: notifier,
		logger:   logger,
		now:      domain.Now,
	}
}

// RequestConfirmation gets or creates the account for the exact (username,
// email) pair and mails it a confirmation code. Asking again for the same pair
// resends a code. The account is persisted before delivery; a delivery failure
// is reported as domain.ErrDelivery together with the account.
func (s *AuthService) RequestConfirmation(ctx context.Context, username, email string) (*domain.User, error) {
	verr := &domain.ValidationError{}
	mergeValidation(verr, domain.ValidateUsername(username))
	mergeValidation(verr, domain.ValidateEmail(email))
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, created, err := s.getOrCreate(ctx, username, email)
	if err != nil {
		return nil, err
	}

	code := s.codes.Make(user, s.now())
	if err := s.notifier.Send(ctx, user.Email, confirmationSubject, fmt.Sprintf(confirmationBody, code)); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("confirmation delivery failed")
		return user, fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}

	s.logger.Info().
		Str("username", user.Username).
		Int64("user_id", user.ID).
		Bool("created", created).
		Msg("confirmation code sent")
	return user, nil
}

// getOrCreate returns the account owning the pair, creating it when neither
// the username nor the email is taken. A concurrent signup for the same pair
// surfaces as ErrUserExists from the store and is resolved by a second lookup.
func (s *AuthService) getOrCreate(ctx context.Context, username, email string) (*domain.User, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.matchPair(ctx, username, email)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}

		now := domain.Now()
		created, err := s.users.Create(ctx, &domain.User{
			Username:  username,
			Email:     email,
			Role:      domain.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err == nil {
			return created, true, nil
		}
		if !errors.Is(err, domain.ErrUserExists) {
			return nil, false, fmt.Errorf("create user: %w", err)
		}
	}
	return nil, false, domain.ErrConflict
}

// matchPair returns the user owning exactly (username, email), nil when both
// are free, or ErrConflict when either belongs to a different pairing.
func (s *AuthService) matchPair(ctx context.Context, username, email string) (*domain.User, error) {
	byEmail, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if byEmail.Username != username {
			return nil, domain.ErrConflict
		}
		return byEmail, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	_, err = s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		// byUsername.Email != email, otherwise the email lookup would have hit.
		return nil, domain.ErrConflict
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return nil, nil
}

// ObtainToken redeems a confirmation code. Redeeming stamps last_login, which
// is part of the code's state snapshot, so each code works once.
func (s *AuthService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	if username == "" {
		return "", domain.NewValidationError("username", "this field is required")
	}
	if code == "" {
		return "", domain.NewValidationError("confirmation_code", "this field is required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if !s.codes.Check(user, code, s.now()) {
		s.logger.Warn().Str("username", username).Msg("confirmation code rejected")
		return "", domain.ErrInvalidCode
	}

	loginAt := domain.Now()
	if !loginAt.After(user.LastLogin) {
		loginAt = user.LastLogin.Add(time.Millisecond)
	}
	if err := s.users.RecordLogin(ctx, user.ID, user.LastLogin, loginAt); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(ports.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("username", user.Username).Int64("user_id", user.ID).Msg("access token issued")
	return token, nil
}

// Authenticate resolves a bearer token. The role comes from the store on
// every call so role changes apply to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	user, err := s.users.FindByID(ctx, id.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.Actor{}, fmt.Errorf("load user: %w", err)
	}
	return domain.ActorFor(user), nil
}
