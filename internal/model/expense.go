package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus represents the lifecycle state of an expense.
// An expense starts pending and moves exactly once to approved or rejected.
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusRejected ExpenseStatus = "rejected"
)

// IsValid checks if the status is one of the known states.
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusRejected
}

// Expense represents a reimbursement claim submitted by a user.
type Expense struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"not null;index"`
	Description     string          `json:"description" gorm:"size:500;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Category        string          `json:"category" gorm:"size:100;not null"`
	ExpenseDate     time.Time       `json:"expense_date" gorm:"type:date;not null"`
	ReceiptURL      string          `json:"receipt_url,omitempty" gorm:"size:512"`
	Notes           string          `json:"notes,omitempty" gorm:"type:text"`
	Status          ExpenseStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ApprovedBy      *uint           `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty" gorm:"type:text"`
	SubmittedAt     time.Time       `json:"submitted_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Relations
	User     User  `json:"-" gorm:"foreignKey:UserID"`
	Approver *User `json:"-" gorm:"foreignKey:ApprovedBy"`
}

// DecisionAction is the approver's verdict on a pending expense.
type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

// IsValid checks if the action is approve or reject.
func (a DecisionAction) IsValid() bool {
	return a == DecisionApprove || a == DecisionReject
}

// ExpenseStats aggregates an owner's expenses per status. Rejected expenses
// count toward RejectedCount but never toward an amount total.
type ExpenseStats struct {
	TotalExpenses  int64           `json:"total_expenses"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	ApprovedCount  int64           `json:"approved_count"`
	PendingCount   int64           `json:"pending_count"`
	RejectedCount  int64           `json:"rejected_count"`
}
