package services

import (
	"context"
	"errors"
	"slices"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

// AuthorizationService implements role based access checks. The role
// stored on the user's profile wins over the one carried by the token, so
// a role change takes effect before the token expires.
type AuthorizationService struct {
	userRepo ports.UserRepository
}

// Ensure implementation matches the interface.
var _ ports.AuthorizationService = (*AuthorizationService)(nil)

// NewAuthorizationService creates a new service for authorization logic.
func NewAuthorizationService(userRepo ports.UserRepository) ports.AuthorizationService {
	return &AuthorizationService{
		userRepo: userRepo,
	}
}

// Can checks if a user has a specific permission.
func (s *AuthorizationService) Can(ctx context.Context, actor domain.Identity, permission string) (bool, error) {
	permissions, err := s.GetPermissions(ctx, actor)
	if err != nil {
		// If there's an error fetching the profile (e.g., db down), deny access.
		return false, err
	}
	return slices.Contains(permissions, permission), nil
}

// GetPermissions returns all permissions for a user.
func (s *AuthorizationService) GetPermissions(ctx context.Context, actor domain.Identity) ([]string, error) {
	if actor.UserID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	role, err := s.effectiveRole(ctx, actor)
	if err != nil {
		return nil, err
	}
	return role.Permissions(), nil
}

func (s *AuthorizationService) effectiveRole(ctx context.Context, actor domain.Identity) (domain.Role, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	switch {
	case err == nil:
		if !user.IsActive {
			return "", apperrors.ErrForbidden
		}
		return user.Role, nil
	case errors.Is(err, apperrors.ErrUserNotFound):
		// No profile yet: trust the verified token.
		return actor.Role, nil
	default:
		return "", err
	}
}

// requirePermission returns ErrForbidden unless actor holds permission.
func requirePermission(ctx context.Context, authz ports.AuthorizationService, actor domain.Identity, permission string) error {
	allowed, err := authz.Can(ctx, actor, permission)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}
