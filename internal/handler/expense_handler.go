package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"expenseflow/internal/apperrors"
	"expenseflow/internal/model"
	"expenseflow/internal/service"
	"expenseflow/internal/storage"
)

const expenseDateLayout = "2006-01-02"

// ExpenseHandler handles expense endpoints.
type ExpenseHandler struct {
	expenseService service.ExpenseService
	receipts       storage.ReceiptStore
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(expenseService service.ExpenseService, receipts storage.ReceiptStore) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		receipts:       receipts,
	}
}

// SubmitExpenseRequest represents an expense submission. Amount travels as a
// string to avoid float parsing on the wire. A receipt file may accompany the
// request as the multipart field "receipt".
type SubmitExpenseRequest struct {
	Description string `json:"description" form:"description" validate:"required"`
	Amount      string `json:"amount" form:"amount" validate:"required"`
	Category    string `json:"category" form:"category" validate:"required"`
	ExpenseDate string `json:"expenseDate" form:"expenseDate" validate:"required,datetime=2006-01-02"`
	Notes       string `json:"notes" form:"notes"`
}

// DecideExpenseRequest carries an approver's verdict.
type DecideExpenseRequest struct {
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejectionReason"`
}

// ExpenseView decorates an expense with the owner and approver display fields
// the dashboards render.
type ExpenseView struct {
	model.Expense
	EmployeeName  string `json:"employee_name,omitempty"`
	EmployeeEmail string `json:"employee_email,omitempty"`
	ApproverName  string `json:"approver_name,omitempty"`
}

// ExpenseListResponse wraps a page of expenses.
type ExpenseListResponse struct {
	Expenses []ExpenseView `json:"expenses"`
	Count    int           `json:"count"`
}

func expenseViews(expenses []model.Expense) []ExpenseView {
	views := make([]ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		v := ExpenseView{Expense: e}
		if e.User.ID != 0 {
			v.EmployeeName = e.User.Name
			v.EmployeeEmail = e.User.Email
		}
		if e.Approver != nil {
			v.ApproverName = e.Approver.Name
		}
		views = append(views, v)
	}
	return views
}

// Submit godoc
// @Summary Submit a new expense
// @Tags expenses
// @Accept mpfd
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param description formData string true "Description"
// @Param amount formData string true "Amount"
// @Param category formData string true "Category"
// @Param expenseDate formData string true "Expense date (YYYY-MM-DD)"
// @Param notes formData string false "Notes"
// @Param receipt formData file false "Receipt (JPEG/PNG/PDF, max 5MB)"
// @Success 201 {object} model.Expense
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /expenses/submit [post]
func (h *ExpenseHandler) Submit(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	var req SubmitExpenseRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return respondError(c, apperrors.ErrInvalidAmount)
	}
	expenseDate, err := time.Parse(expenseDateLayout, req.ExpenseDate)
	if err != nil {
		return validationError(c, err)
	}

	var receiptURL string
	if file, ferr := c.FormFile("receipt"); ferr == nil && file != nil {
		receiptURL, err = h.receipts.Save(file)
		if err != nil {
			return respondError(c, err)
		}
	}

	expense, err := h.expenseService.Submit(c.Request().Context(), user, service.SubmitInput{
		Description: req.Description,
		Amount:      amount,
		Category:    req.Category,
		ExpenseDate: expenseDate,
		ReceiptURL:  receiptURL,
		Notes:       req.Notes,
	})
	if err != nil {
		// No expense row was written, so the stored receipt is an orphan.
		if receiptURL != "" {
			_ = h.receipts.Remove(receiptURL)
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, expense)
}

// MyExpenses godoc
// @Summary List the caller's expenses
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending/approved/rejected/all)"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {object} ExpenseListResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /expenses/my-expenses [get]
func (h *ExpenseHandler) MyExpenses(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	var status *model.ExpenseStatus
	if raw := c.QueryParam("status"); raw != "" && raw != "all" {
		parsed := model.ExpenseStatus(raw)
		if !parsed.IsValid() {
			return validationError(c, echo.NewHTTPError(http.StatusBadRequest, "unknown status"))
		}
		status = &parsed
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	expenses, err := h.expenseService.ListOwn(c.Request().Context(), user, status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	views := expenseViews(expenses)
	return c.JSON(http.StatusOK, ExpenseListResponse{Expenses: views, Count: len(views)})
}

// PendingApprovals godoc
// @Summary List pending expenses awaiting the caller's decision
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ExpenseListResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /expenses/pending-approvals [get]
func (h *ExpenseHandler) PendingApprovals(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	expenses, err := h.expenseService.ListPendingForApprover(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}

	views := expenseViews(expenses)
	return c.JSON(http.StatusOK, ExpenseListResponse{Expenses: views, Count: len(views)})
}

// Decide godoc
// @Summary Approve or reject a pending expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Param request body DecideExpenseRequest true "Decision"
// @Success 200 {object} model.Expense
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /expenses/{id}/approve [put]
func (h *ExpenseHandler) Decide(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return validationError(c, echo.NewHTTPError(http.StatusBadRequest, "invalid expense id"))
	}

	var req DecideExpenseRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(c, err)
	}

	expense, err := h.expenseService.Decide(
		c.Request().Context(), user, uint(id), model.DecisionAction(req.Action), req.RejectionReason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, expense)
}

// Stats godoc
// @Summary Get the caller's expense statistics
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ExpenseStats
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 500 {object} apperrors.ErrorResponse
// @Router /expenses/stats [get]
func (h *ExpenseHandler) Stats(c echo.Context) error {
	user, err := userFrom(c)
	if err != nil {
		return err
	}

	stats, err := h.expenseService.Stats(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, stats)
}
