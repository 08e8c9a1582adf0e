package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"expenseflow/internal/authz"
	"expenseflow/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	EmailTakenByOther(ctx context.Context, email string, excludeID uint) (bool, error)
	UpdateProfile(ctx context.Context, id uint, name, email string) error
	// AssignRole promotes a pending user. The role guard lives in the WHERE
	// clause so two concurrent assignments cannot both succeed; the returned
	// count is the number of rows actually updated.
	AssignRole(ctx context.Context, id uint, role authz.Role, assignedBy uint, managerID *uint, at time.Time) (int64, error)
	ListPendingByCompany(ctx context.Context, companyID uint) ([]model.User, error)
	ListManagersByCompany(ctx context.Context, companyID uint) ([]model.User, error)
	ListByCompany(ctx context.Context, companyID uint) ([]model.User, error)
	ListTeam(ctx context.Context, managerID uint) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailTakenByOther(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, name, email string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "email": email}).Error
}

func (r *userRepository) AssignRole(ctx context.Context, id uint, role authz.Role, assignedBy uint, managerID *uint, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"role":             role,
		"assigned_by":      assignedBy,
		"role_assigned_at": at,
	}
	if managerID != nil {
		updates["manager_id"] = *managerID
	}
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND role = ?", id, authz.RolePending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *userRepository) ListPendingByCompany(ctx context.Context, companyID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND role = ?", companyID, authz.RolePending).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) ListManagersByCompany(ctx context.Context, companyID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND role IN ?", companyID, []authz.Role{authz.RoleManager, authz.RoleAdmin}).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) ListByCompany(ctx context.Context, companyID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepository) ListTeam(ctx context.Context, managerID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Where("manager_id = ? OR id = ?", managerID, managerID).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}
