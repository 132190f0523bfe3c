package services

import (
	"context"
	"errors"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// ProfileService keeps a local profile for every authenticated user.
type ProfileService struct {
	userRepo ports.UserRepository
	clock    Clock
}

var _ ports.ProfileService = (*ProfileService)(nil)

func NewProfileService(userRepo ports.UserRepository, clock Clock) ports.ProfileService {
	return &ProfileService{userRepo: userRepo, clock: clock}
}

// GetOrCreateProfile returns the caller's profile, creating it with the
// token's role on first sight.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, actor domain.Identity, params ports.ProfileParams) (*domain.User, error) {
	if actor.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	role := actor.Role
	if !role.IsValid() {
		role = domain.RoleUser
	}

	newUser, err := domain.NewUser(domain.UserParams{
		ID:       actor.UserID,
		FullName: params.FullName,
		Email:    params.Email,
		Role:     role,
	}, s.clock())
	if err != nil {
		return nil, err
	}

	return s.userRepo.Create(ctx, newUser)
}
