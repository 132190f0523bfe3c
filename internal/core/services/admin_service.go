package services

import (
	"context"
	"log/slog"

	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

type AdminService struct {
	userRepo ports.UserRepository
	authzSvc ports.AuthorizationService
	logger   *slog.Logger
}

var _ ports.AdminService = (*AdminService)(nil)

func NewAdminService(
	userRepo ports.UserRepository,
	authzSvc ports.AuthorizationService,
	logger *slog.Logger,
) ports.AdminService {
	return &AdminService{
		userRepo: userRepo,
		authzSvc: authzSvc,
		logger:   logger.With("service", "admin"),
	}
}

func (s *AdminService) ListUsers(ctx context.Context, actor domain.Identity) ([]*domain.User, error) {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermUsersManage); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// UpdateUserRole assigns a role. Admins cannot demote themselves.
func (s *AdminService) UpdateUserRole(ctx context.Context, actor domain.Identity, userID string, role domain.Role) error {
	if err := requirePermission(ctx, s.authzSvc, actor, domain.PermUsersManage); err != nil {
		return err
	}
	if !role.IsValid() {
		return apperrors.ErrInvalidRole
	}
	if userID == actor.UserID && role != domain.RoleAdmin {
		return apperrors.ErrForbidden
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return err
	}

	s.logger.Info("user role updated",
		"actor_id", actor.UserID,
		"user_id", userID,
		"role", role,
	)
	return nil
}
