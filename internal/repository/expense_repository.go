package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"expenseflow/internal/model"
)

// ExpenseRepository defines expense persistence operations.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id uint) (*model.Expense, error)
	ListByOwner(ctx context.Context, ownerID uint, status *model.ExpenseStatus, limit, offset int) ([]model.Expense, error)
	ListPendingByManager(ctx context.Context, managerID uint) ([]model.Expense, error)
	ListPendingByCompany(ctx context.Context, companyID uint) ([]model.Expense, error)
	// Decide finalizes a pending expense in a single conditional update. The
	// status guard lives in the WHERE clause: of two concurrent decisions on
	// the same expense exactly one sees RowsAffected == 1.
	Decide(ctx context.Context, id uint, status model.ExpenseStatus, approverID uint, reason string, at time.Time) (int64, error)
	Stats(ctx context.Context, ownerID uint) (*model.ExpenseStats, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository.
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uint) (*model.Expense, error) {
	var expense model.Expense
	if err := r.db.WithContext(ctx).Preload("User").First(&expense, id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) ListByOwner(ctx context.Context, ownerID uint, status *model.ExpenseStatus, limit, offset int) ([]model.Expense, error) {
	q := r.db.WithContext(ctx).
		Preload("Approver").
		Where("user_id = ?", ownerID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var expenses []model.Expense
	err := q.Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) ListPendingByManager(ctx context.Context, managerID uint) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = expenses.user_id").
		Where("expenses.status = ? AND users.manager_id = ?", model.ExpenseStatusPending, managerID).
		Order("expenses.submitted_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) ListPendingByCompany(ctx context.Context, companyID uint) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = expenses.user_id").
		Where("expenses.status = ? AND users.company_id = ?", model.ExpenseStatusPending, companyID).
		Order("expenses.submitted_at DESC").
		Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) Decide(ctx context.Context, id uint, status model.ExpenseStatus, approverID uint, reason string, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":      status,
		"approved_by": approverID,
	}
	switch status {
	case model.ExpenseStatusApproved:
		updates["approved_at"] = at
	case model.ExpenseStatusRejected:
		updates["rejected_at"] = at
		updates["rejection_reason"] = reason
	}
	res := r.db.WithContext(ctx).Model(&model.Expense{}).
		Where("id = ? AND status = ?", id, model.ExpenseStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *expenseRepository) Stats(ctx context.Context, ownerID uint) (*model.ExpenseStats, error) {
	var stats model.ExpenseStats
	err := r.db.WithContext(ctx).Model(&model.Expense{}).
		Select(`COUNT(*) AS total_expenses,
			COALESCE(SUM(CASE WHEN status = 'approved' THEN amount ELSE 0 END), 0) AS approved_amount,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN amount ELSE 0 END), 0) AS pending_amount,
			COUNT(CASE WHEN status = 'approved' THEN 1 END) AS approved_count,
			COUNT(CASE WHEN status = 'pending' THEN 1 END) AS pending_count,
			COUNT(CASE WHEN status = 'rejected' THEN 1 END) AS rejected_count`).
		Where("user_id = ?", ownerID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
