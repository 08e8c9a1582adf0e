package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"expenseflow/internal/apperrors"
	"expenseflow/internal/authz"
	"expenseflow/internal/cache"
	"expenseflow/internal/model"
	"expenseflow/internal/repository"
)

const (
	// DefaultPageSize is applied when the caller does not supply a limit.
	DefaultPageSize = 50

	statsCacheTTL = 5 * time.Minute
)

// SubmitInput carries a new expense submission. ReceiptURL is the opaque URI
// the upload collaborator handed back, empty when no receipt was attached.
type SubmitInput struct {
	Description string
	Amount      decimal.Decimal
	Category    string
	ExpenseDate time.Time
	ReceiptURL  string
	Notes       string
}

// ExpenseService governs the expense lifecycle: submission, listing,
// approval decisions, and read-side aggregation.
type ExpenseService interface {
	Submit(ctx context.Context, actor *model.User, in SubmitInput) (*model.Expense, error)
	ListOwn(ctx context.Context, actor *model.User, status *model.ExpenseStatus, limit, offset int) ([]model.Expense, error)
	ListPendingForApprover(ctx context.Context, actor *model.User) ([]model.Expense, error)
	Decide(ctx context.Context, actor *model.User, expenseID uint, action model.DecisionAction, rejectionReason string) (*model.Expense, error)
	Stats(ctx context.Context, actor *model.User) (*model.ExpenseStats, error)
}

// statsCache is the slice of cache.Client the stats read path needs.
type statsCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	cache       statsCache
	logger      *zap.Logger
	now         func() time.Time
}

// NewExpenseService creates a new expense service.
func NewExpenseService(expenseRepo repository.ExpenseRepository, cache *cache.Client, logger *zap.Logger) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// Stats cache entries are keyed by a per-owner version that every write bumps.
// A raced re-cache of pre-write aggregates lands on the old version's key,
// which no later reader consults.
func (s *expenseService) statsCacheKey(ownerID uint, version int64) string {
	return fmt.Sprintf("expense_stats:%d:%d", ownerID, version)
}

func (s *expenseService) statsVersionKey(ownerID uint) string {
	return fmt.Sprintf("expense_stats_ver:%d", ownerID)
}

func (s *expenseService) statsVersion(ctx context.Context, ownerID uint) int64 {
	data, _ := s.cache.Get(ctx, s.statsVersionKey(ownerID))
	if data == nil {
		return 0
	}
	ver, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0
	}
	return ver
}

// Submit creates a new expense in the pending state, owned by the caller.
// It never auto-approves, regardless of amount.
func (s *expenseService) Submit(ctx context.Context, actor *model.User, in SubmitInput) (*model.Expense, error) {
	if !authz.Can(actor.Authz(), authz.ActionSubmitExpense, actor.AsTarget()) {
		return nil, apperrors.ErrForbidden
	}
	if in.Description == "" {
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}
	if in.Category == "" {
		return nil, fmt.Errorf("%w: category is required", apperrors.ErrValidation)
	}
	if in.ExpenseDate.IsZero() {
		return nil, fmt.Errorf("%w: valid expense date is required", apperrors.ErrValidation)
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.ErrInvalidAmount
	}

	expense := &model.Expense{
		UserID:      actor.ID,
		Description: in.Description,
		Amount:      in.Amount.Round(2),
		Category:    in.Category,
		ExpenseDate: in.ExpenseDate,
		ReceiptURL:  in.ReceiptURL,
		Notes:       in.Notes,
		Status:      model.ExpenseStatusPending,
	}
	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	_, _ = s.cache.Incr(ctx, s.statsVersionKey(actor.ID))

	s.logger.Info("expense submitted",
		zap.Uint("expense_id", expense.ID),
		zap.Uint("user_id", actor.ID),
		zap.String("amount", expense.Amount.String()),
		zap.String("category", expense.Category))

	return expense, nil
}

// ListOwn returns the caller's expenses, newest-submitted-first, optionally
// filtered by status. Limit defaults to DefaultPageSize when not positive.
func (s *expenseService) ListOwn(ctx context.Context, actor *model.User, status *model.ExpenseStatus, limit, offset int) ([]model.Expense, error) {
	if !authz.Can(actor.Authz(), authz.ActionListOwnExpenses, actor.AsTarget()) {
		return nil, apperrors.ErrForbidden
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	expenses, err := s.expenseRepo.ListByOwner(ctx, actor.ID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// ListPendingForApprover returns the pending expenses the caller may decide:
// a manager's direct reports, or the whole company for an admin.
func (s *expenseService) ListPendingForApprover(ctx context.Context, actor *model.User) ([]model.Expense, error) {
	var (
		expenses []model.Expense
		err      error
	)
	switch authz.ScopeOf(actor.Role, authz.ActionListPendingApprovals) {
	case authz.ScopeAny:
		expenses, err = s.expenseRepo.ListPendingByCompany(ctx, actor.CompanyID)
	case authz.ScopeTeam:
		expenses, err = s.expenseRepo.ListPendingByManager(ctx, actor.ID)
	default:
		return nil, apperrors.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("list pending approvals: %w", err)
	}
	return expenses, nil
}

// Decide finalizes a pending expense. The status transition happens in one
// conditional update: of two concurrent decisions exactly one succeeds and
// the other observes a conflict.
func (s *expenseService) Decide(ctx context.Context, actor *model.User, expenseID uint, action model.DecisionAction, rejectionReason string) (*model.Expense, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: action must be either approve or reject", apperrors.ErrValidation)
	}

	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("find expense: %w", err)
	}

	// Approvers only see their own company's expenses.
	if expense.User.CompanyID != actor.CompanyID {
		return nil, apperrors.ErrExpenseNotFound
	}

	target := authz.Target{OwnerID: expense.UserID, OwnerManagerID: expense.User.ManagerID}
	if !authz.Can(actor.Authz(), authz.ActionDecideExpense, target) {
		return nil, apperrors.ErrForbidden
	}
	if expense.Status.IsTerminal() {
		return nil, apperrors.ErrExpenseProcessed
	}

	status := model.ExpenseStatusApproved
	if action == model.DecisionReject {
		status = model.ExpenseStatusRejected
	}
	rows, err := s.expenseRepo.Decide(ctx, expenseID, status, actor.ID, rejectionReason, s.now())
	if err != nil {
		return nil, fmt.Errorf("decide expense: %w", err)
	}
	if rows == 0 {
		// A concurrent approver got there first.
		return nil, apperrors.ErrExpenseProcessed
	}

	_, _ = s.cache.Incr(ctx, s.statsVersionKey(expense.UserID))

	s.logger.Info("expense decided",
		zap.Uint("expense_id", expenseID),
		zap.Uint("approver_id", actor.ID),
		zap.String("status", string(status)),
		zap.String("amount", expense.Amount.String()))

	updated, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("reload expense: %w", err)
	}
	return updated, nil
}

// Stats aggregates the caller's expenses per status. Cached per owner under
// the current stats version, so reads still reflect the latest committed state.
func (s *expenseService) Stats(ctx context.Context, actor *model.User) (*model.ExpenseStats, error) {
	if !authz.Can(actor.Authz(), authz.ActionViewStats, actor.AsTarget()) {
		return nil, apperrors.ErrForbidden
	}

	key := s.statsCacheKey(actor.ID, s.statsVersion(ctx, actor.ID))
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached model.ExpenseStats
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.expenseRepo.Stats(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("expense stats: %w", err)
	}

	if payload, err := json.Marshal(stats); err == nil {
		_ = s.cache.Set(ctx, key, payload, statsCacheTTL)
	}
	return stats, nil
}
