package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"expenseflow/internal/apperrors"
	"expenseflow/internal/authz"
	"expenseflow/internal/model"
	"expenseflow/internal/repository"
)

// UserService covers the user directory and the role-assignment workflow.
type UserService interface {
	ListPendingUsers(ctx context.Context, actor *model.User) ([]model.User, error)
	AssignRole(ctx context.Context, actor *model.User, targetID uint, role authz.Role, managerID *uint) (*model.User, error)
	ListManagers(ctx context.Context, actor *model.User) ([]model.User, error)
	ListUsers(ctx context.Context, actor *model.User) ([]model.User, error)
	UpdateProfile(ctx context.Context, actor *model.User, name, email string) (*model.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
		now:      time.Now,
	}
}

// ListPendingUsers returns the company's users still awaiting a role,
// newest-registered-first. Admin only.
func (s *userService) ListPendingUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if authz.ScopeOf(actor.Role, authz.ActionListPendingUsers) != authz.ScopeAny {
		return nil, apperrors.ErrForbidden
	}
	users, err := s.userRepo.ListPendingByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return users, nil
}

// AssignRole promotes a pending user to Employee, Manager, or Admin,
// optionally binding a manager relationship. The pending-role guard is part
// of the update statement, so a concurrent assignment cannot double-apply.
func (s *userService) AssignRole(ctx context.Context, actor *model.User, targetID uint, role authz.Role, managerID *uint) (*model.User, error) {
	if authz.ScopeOf(actor.Role, authz.ActionAssignRole) != authz.ScopeAny {
		return nil, apperrors.ErrForbidden
	}
	if !role.IsValid() || role == authz.RolePending {
		return nil, fmt.Errorf("%w: role must be one of Employee, Manager, Admin", apperrors.ErrValidation)
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	// Admins only manage their own company's users.
	if target.CompanyID != actor.CompanyID {
		return nil, apperrors.ErrUserNotFound
	}
	if target.Role != authz.RolePending {
		return nil, apperrors.ErrRoleAlreadyAssigned
	}

	// Manager binding only applies to Employee and Manager assignments.
	if role == authz.RoleAdmin {
		managerID = nil
	}
	if managerID != nil {
		if *managerID == targetID {
			return nil, apperrors.ErrInvalidManager
		}
		manager, err := s.userRepo.FindByID(ctx, *managerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrInvalidManager
			}
			return nil, fmt.Errorf("find manager: %w", err)
		}
		if !manager.Role.IsApprover() || manager.CompanyID != actor.CompanyID {
			return nil, apperrors.ErrInvalidManager
		}
	}

	rows, err := s.userRepo.AssignRole(ctx, targetID, role, actor.ID, managerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	if rows == 0 {
		return nil, apperrors.ErrRoleAlreadyAssigned
	}

	s.logger.Info("role assigned",
		zap.Uint("user_id", targetID),
		zap.String("role", string(role)),
		zap.Uint("assigned_by", actor.ID))

	updated, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return updated, nil
}

// ListManagers returns the company's Manager and Admin users, name ascending.
// Admin only; feeds the role-assignment manager dropdown.
func (s *userService) ListManagers(ctx context.Context, actor *model.User) ([]model.User, error) {
	if authz.ScopeOf(actor.Role, authz.ActionListManagers) != authz.ScopeAny {
		return nil, apperrors.ErrForbidden
	}
	users, err := s.userRepo.ListManagersByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	return users, nil
}

// ListUsers returns the whole company directory for an admin, or a manager's
// own team (plus themselves). Everyone else is denied.
func (s *userService) ListUsers(ctx context.Context, actor *model.User) ([]model.User, error) {
	var (
		users []model.User
		err   error
	)
	switch authz.ScopeOf(actor.Role, authz.ActionListUsers) {
	case authz.ScopeAny:
		users, err = s.userRepo.ListByCompany(ctx, actor.CompanyID)
	case authz.ScopeTeamOrSelf:
		users, err = s.userRepo.ListTeam(ctx, actor.ID)
	default:
		return nil, apperrors.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateProfile lets a user change their own name and email.
func (s *userService) UpdateProfile(ctx context.Context, actor *model.User, name, email string) (*model.User, error) {
	if !authz.Can(actor.Authz(), authz.ActionUpdateProfile, actor.AsTarget()) {
		return nil, apperrors.ErrForbidden
	}

	taken, err := s.userRepo.EmailTakenByOther(ctx, email, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, apperrors.ErrEmailTaken
	}

	if err := s.userRepo.UpdateProfile(ctx, actor.ID, name, email); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.Info("profile updated",
		zap.Uint("user_id", actor.ID),
		zap.String("email", email))

	updated, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	return updated, nil
}
