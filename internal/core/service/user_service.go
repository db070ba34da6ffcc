package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviewhub/internal/core/domain"
	"github.com/yamdb/reviewhub/internal/core/policy"
	"github.com/yamdb/reviewhub/internal/core/ports"
)

// UserService implements account management and the self profile.
type UserService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) List(ctx context.Context, actor domain.Actor, filter ports.UserFilter) (ports.Page[*domain.User], error) {
	if err := policy.Authorize(actor, policy.Read, policy.Resource{Kind: policy.KindUser}); err != nil {
		return ports.Page[*domain.User]{}, err
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return ports.Page[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return newPage(users, total, filter.Page, filter.Limit), nil
}

func (s *UserService) Create(ctx context.Context, actor domain.Actor, in ports.CreateUserInput) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.Create, policy.Resource{Kind: policy.KindUser}); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	now := domain.Now()
	u := &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("username", created.Username).Str("role", string(created.Role)).Str("by", actor.Username).Msg("user created")
	return created, nil
}

func (s *UserService) Get(ctx context.Context, actor domain.Actor, username string) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Resource{Kind: policy.KindUser}); err != nil {
		return nil, err
	}
	return s.users.FindByUsername(ctx, username)
}

func (s *UserService) Update(ctx context.Context, actor domain.Actor, username string, patch ports.UserPatch) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.Update, policy.Resource{Kind: policy.KindUser}); err != nil {
		return nil, err
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	prevRole := u.Role
	updated, err := s.save(ctx, u, patch)
	if err != nil {
		return nil, err
	}
	if updated.Role != prevRole {
		s.logger.Info().Str("username", updated.Username).Str("from", string(prevRole)).Str("to", string(updated.Role)).Str("by", actor.Username).Msg("role changed")
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, actor domain.Actor, username string) error {
	if err := policy.Authorize(actor, policy.Delete, policy.Resource{Kind: policy.KindUser}); err != nil {
		return err
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, u.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.logger.Info().Str("username", username).Str("by", actor.Username).Msg("user deleted")
	return nil
}

func (s *UserService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.Read, policy.Resource{Kind: policy.KindProfile, OwnerID: actor.UserID}); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, actor.UserID)
}

// UpdateMe edits the caller's own profile. Whatever role the patch carries is
// dropped and the stored role is kept.
func (s *UserService) UpdateMe(ctx context.Context, actor domain.Actor, patch ports.UserPatch) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.Update, policy.Resource{Kind: policy.KindProfile, OwnerID: actor.UserID}); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	patch.Role = nil
	return s.save(ctx, u, patch)
}

func (s *UserService) save(ctx context.Context, u *domain.User, patch ports.UserPatch) (*domain.User, error) {
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	u.UpdatedAt = domain.Now()
	return s.users.Update(ctx, u)
}
