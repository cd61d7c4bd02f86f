package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	ResponsibleID string `json:"responsible_id" binding:"required"`
	SupplierID    string `json:"supplier_id"`

	ExpenseDate   string `json:"expense_date" binding:"required"` // YYYY-MM-DD
	PaymentMethod string `json:"payment_method" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Amount        string `json:"amount" binding:"required"` // Decimal string
	Category      string `json:"category" binding:"required"`

	InvoiceNumber string `json:"invoice_number"`
	ReceiptPath   string `json:"receipt_path"`
	Notes         string `json:"notes"`
}

// UpdateExpenseRequest patches a pending or rejected expense. Nil fields are
// left untouched.
type UpdateExpenseRequest struct {
	SupplierID    *string `json:"supplier_id"`
	ExpenseDate   *string `json:"expense_date"`
	PaymentMethod *string `json:"payment_method"`
	Description   *string `json:"description"`
	Amount        *string `json:"amount"`
	Category      *string `json:"category"`
	InvoiceNumber *string `json:"invoice_number"`
	ReceiptPath   *string `json:"receipt_path"`
	Notes         *string `json:"notes"`
}

type ExpenseResponse struct {
	ID              string  `json:"id"`
	ResponsibleID   string  `json:"responsible_id"`
	ResponsibleName string  `json:"responsible_name,omitempty"`
	SupplierID      *string `json:"supplier_id"`
	SupplierName    string  `json:"supplier_name,omitempty"`

	ExpenseDate   string `json:"expense_date"`
	PaymentMethod string `json:"payment_method"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Status        string `json:"status"`

	InvoiceNumber string `json:"invoice_number"`
	ReceiptPath   string `json:"receipt_path"`
	Notes         string `json:"notes"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type ExpenseSummaryResponse struct {
	TotalPending  string            `json:"total_pending"`
	TotalApproved string            `json:"total_approved"`
	TotalPaid     string            `json:"total_paid"`
	TotalRejected string            `json:"total_rejected"`
	CountPending  int64             `json:"count_pending"`
	CountApproved int64             `json:"count_approved"`
	CountPaid     int64             `json:"count_paid"`
	CountRejected int64             `json:"count_rejected"`
	ByCategory    map[string]string `json:"by_category"`
}

type ListExpensesQuery struct {
	Status        string
	Category      string
	SupplierID    string
	ResponsibleID string
	Search        string
	Page          int
	Limit         int
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (ExpenseResponse, error)
	GetExpense(ctx context.Context, id string) (ExpenseResponse, error)
	ListExpenses(ctx context.Context, q ListExpensesQuery) ([]ExpenseResponse, int64, error)
	UpdateExpense(ctx context.Context, userID, id string, req UpdateExpenseRequest) (ExpenseResponse, error)
	ApproveExpense(ctx context.Context, userID, id string) (ExpenseResponse, error)
	RejectExpense(ctx context.Context, userID, id string) (ExpenseResponse, error)
	PayExpense(ctx context.Context, userID, id string) (ExpenseResponse, error)
	DeleteExpense(ctx context.Context, userID, id string) error
	GetExpenseSummary(ctx context.Context) (ExpenseSummaryResponse, error)
}

type expenseService struct {
	expenseRepo  repository.ExpenseRepository
	supplierRepo repository.SupplierRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	supplierRepo repository.SupplierRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ExpenseService {
	return &expenseService{
		expenseRepo:  expenseRepo,
		supplierRepo: supplierRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, userID string, req CreateExpenseRequest) (ExpenseResponse, error) {
	responsibleID, err := parseUUID("responsible_id", req.ResponsibleID)
	if err != nil {
		return ExpenseResponse{}, err
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return ExpenseResponse{}, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ExpenseResponse{}, apperr.Validation("amount must be greater than 0")
	}

	category := model.ExpenseCategory(req.Category)
	if !category.Valid() {
		return ExpenseResponse{}, apperr.Validation("invalid category: %q", req.Category)
	}

	expenseDate, err := parseDate("expense_date", req.ExpenseDate)
	if err != nil {
		return ExpenseResponse{}, err
	}

	responsible, err := s.userRepo.FindByID(ctx, responsibleID)
	if err != nil {
		return ExpenseResponse{}, notFoundOr(err, "responsible user")
	}

	var supplierID *uuid.UUID
	var supplier *model.Supplier
	if req.SupplierID != "" {
		parsed, parseErr := parseUUID("supplier_id", req.SupplierID)
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		supplier, err = s.supplierRepo.FindByID(ctx, parsed)
		if err != nil {
			return ExpenseResponse{}, notFoundOr(err, "supplier")
		}
		if !supplier.IsActive() {
			return ExpenseResponse{}, apperr.State("supplier %s is not active", supplier.Name)
		}
		supplierID = &parsed
	}

	expense := model.Expense{
		ResponsibleID: responsibleID,
		SupplierID:    supplierID,
		ExpenseDate:   expenseDate,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		Amount:        amount,
		Category:      category,
		Status:        model.ExpensePending,
		InvoiceNumber: req.InvoiceNumber,
		ReceiptPath:   req.ReceiptPath,
		Notes:         req.Notes,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.expenseRepo.Create(txCtx, &expense); createErr != nil {
			return fmt.Errorf("failed to create expense: %w", createErr)
		}
		return s.audit(txCtx, userID, model.ActionCreateExpense, &expense)
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	expense.Responsible = responsible
	expense.Supplier = supplier
	return toExpenseResponse(expense), nil
}

func (s *expenseService) GetExpense(ctx context.Context, id string) (ExpenseResponse, error) {
	expenseID, err := parseUUID("expense id", id)
	if err != nil {
		return ExpenseResponse{}, err
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return ExpenseResponse{}, notFoundOr(err, "expense")
	}
	return toExpenseResponse(*expense), nil
}

func (s *expenseService) ListExpenses(ctx context.Context, q ListExpensesQuery) ([]ExpenseResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := repository.ExpenseFilter{Search: q.Search, Page: page, Limit: limit}
	if q.Status != "" {
		status := model.ExpenseStatus(q.Status)
		if !status.Valid() {
			return nil, 0, apperr.Validation("invalid status: %q", q.Status)
		}
		filter.Status = status
	}
	if q.Category != "" {
		category := model.ExpenseCategory(q.Category)
		if !category.Valid() {
			return nil, 0, apperr.Validation("invalid category: %q", q.Category)
		}
		filter.Category = category
	}
	if q.SupplierID != "" {
		supplierID, err := parseUUID("supplier_id", q.SupplierID)
		if err != nil {
			return nil, 0, err
		}
		filter.SupplierID = &supplierID
	}
	if q.ResponsibleID != "" {
		responsibleID, err := parseUUID("responsible_id", q.ResponsibleID)
		if err != nil {
			return nil, 0, err
		}
		filter.ResponsibleID = &responsibleID
	}

	expenses, total, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	result := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		result = append(result, toExpenseResponse(e))
	}
	return result, total, nil
}

func (s *expenseService) UpdateExpense(ctx context.Context, userID, id string, req UpdateExpenseRequest) (ExpenseResponse, error) {
	expenseID, err := parseUUID("expense id", id)
	if err != nil {
		return ExpenseResponse{}, err
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return ExpenseResponse{}, notFoundOr(err, "expense")
	}
	if !expense.Editable() {
		return ExpenseResponse{}, apperr.State("expense is %s, only pending or rejected expenses can be edited", expense.Status)
	}

	if req.SupplierID != nil {
		if *req.SupplierID == "" {
			expense.SupplierID = nil
			expense.Supplier = nil
		} else {
			parsed, parseErr := parseUUID("supplier_id", *req.SupplierID)
			if parseErr != nil {
				return ExpenseResponse{}, parseErr
			}
			supplier, findErr := s.supplierRepo.FindByID(ctx, parsed)
			if findErr != nil {
				return ExpenseResponse{}, notFoundOr(findErr, "supplier")
			}
			if !supplier.IsActive() {
				return ExpenseResponse{}, apperr.State("supplier %s is not active", supplier.Name)
			}
			expense.SupplierID = &parsed
			expense.Supplier = supplier
		}
	}
	if req.ExpenseDate != nil {
		expenseDate, parseErr := parseDate("expense_date", *req.ExpenseDate)
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		expense.ExpenseDate = expenseDate
	}
	if req.Amount != nil {
		amount, parseErr := parseDecimal("amount", *req.Amount)
		if parseErr != nil {
			return ExpenseResponse{}, parseErr
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return ExpenseResponse{}, apperr.Validation("amount must be greater than 0")
		}
		expense.Amount = amount
	}
	if req.Category != nil {
		category := model.ExpenseCategory(*req.Category)
		if !category.Valid() {
			return ExpenseResponse{}, apperr.Validation("invalid category: %q", *req.Category)
		}
		expense.Category = category
	}
	if req.PaymentMethod != nil {
		expense.PaymentMethod = *req.PaymentMethod
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.InvoiceNumber != nil {
		expense.InvoiceNumber = *req.InvoiceNumber
	}
	if req.ReceiptPath != nil {
		expense.ReceiptPath = *req.ReceiptPath
	}
	if req.Notes != nil {
		expense.Notes = *req.Notes
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.expenseRepo.Update(txCtx, expense); updateErr != nil {
			return fmt.Errorf("failed to update expense: %w", updateErr)
		}
		return s.audit(txCtx, userID, model.ActionUpdateExpense, expense)
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(*expense), nil
}

func (s *expenseService) ApproveExpense(ctx context.Context, userID, id string) (ExpenseResponse, error) {
	return s.transition(ctx, userID, id, model.ExpenseApproved, model.ActionApproveExpense,
		func(e *model.Expense) error {
			if e.Status != model.ExpensePending {
				return apperr.State("expense is %s, only pending expenses can be approved", e.Status)
			}
			return nil
		})
}

func (s *expenseService) RejectExpense(ctx context.Context, userID, id string) (ExpenseResponse, error) {
	return s.transition(ctx, userID, id, model.ExpenseRejected, model.ActionRejectExpense,
		func(e *model.Expense) error {
			if e.Status != model.ExpensePending && e.Status != model.ExpenseApproved {
				return apperr.State("expense is %s, only pending or approved expenses can be rejected", e.Status)
			}
			return nil
		})
}

func (s *expenseService) PayExpense(ctx context.Context, userID, id string) (ExpenseResponse, error) {
	return s.transition(ctx, userID, id, model.ExpensePaid, model.ActionPayExpense,
		func(e *model.Expense) error {
			if e.Status != model.ExpenseApproved {
				return apperr.State("expense is %s, only approved expenses can be paid", e.Status)
			}
			return nil
		})
}

func (s *expenseService) transition(ctx context.Context, userID, id string, target model.ExpenseStatus, action string, guard func(*model.Expense) error) (ExpenseResponse, error) {
	expenseID, err := parseUUID("expense id", id)
	if err != nil {
		return ExpenseResponse{}, err
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return ExpenseResponse{}, notFoundOr(err, "expense")
	}
	if guardErr := guard(expense); guardErr != nil {
		return ExpenseResponse{}, guardErr
	}

	expense.Status = target
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.expenseRepo.Update(txCtx, expense); updateErr != nil {
			return fmt.Errorf("failed to update expense: %w", updateErr)
		}
		return s.audit(txCtx, userID, action, expense)
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(*expense), nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, userID, id string) error {
	expenseID, err := parseUUID("expense id", id)
	if err != nil {
		return err
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return notFoundOr(err, "expense")
	}
	if expense.Status == model.ExpenseApproved || expense.Status == model.ExpensePaid {
		return apperr.State("expense is %s, approved or paid expenses cannot be deleted", expense.Status)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.expenseRepo.Delete(txCtx, expenseID); deleteErr != nil {
			return fmt.Errorf("failed to delete expense: %w", deleteErr)
		}
		return s.audit(txCtx, userID, model.ActionDeleteExpense, expense)
	})
}

func (s *expenseService) GetExpenseSummary(ctx context.Context) (ExpenseSummaryResponse, error) {
	summary, err := s.expenseRepo.Summary(ctx)
	if err != nil {
		return ExpenseSummaryResponse{}, fmt.Errorf("failed to build expense summary: %w", err)
	}

	byCategory := make(map[string]string, len(summary.ByCategory))
	for category, total := range summary.ByCategory {
		byCategory[category] = total.StringFixed(2)
	}

	return ExpenseSummaryResponse{
		TotalPending:  summary.TotalPending.StringFixed(2),
		TotalApproved: summary.TotalApproved.StringFixed(2),
		TotalPaid:     summary.TotalPaid.StringFixed(2),
		TotalRejected: summary.TotalRejected.StringFixed(2),
		CountPending:  summary.CountPending,
		CountApproved: summary.CountApproved,
		CountPaid:     summary.CountPaid,
		CountRejected: summary.CountRejected,
		ByCategory:    byCategory,
	}, nil
}

// --- Helpers ---

func (s *expenseService) audit(ctx context.Context, userID, action string, expense *model.Expense) error {
	details, _ := json.Marshal(map[string]interface{}{
		"amount":   expense.Amount.String(),
		"category": expense.Category,
		"status":   expense.Status,
	})
	entry := &model.AuditLog{
		UserID:     auditUserID(userID),
		Action:     action,
		EntityID:   expense.ID.String(),
		EntityName: expense.Description,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toExpenseResponse(e model.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:            e.ID.String(),
		ResponsibleID: e.ResponsibleID.String(),
		ExpenseDate:   e.ExpenseDate.Format(DateLayout),
		PaymentMethod: e.PaymentMethod,
		Description:   e.Description,
		Amount:        e.Amount.StringFixed(2),
		Category:      string(e.Category),
		Status:        string(e.Status),
		InvoiceNumber: e.InvoiceNumber,
		ReceiptPath:   e.ReceiptPath,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
	}
	if e.SupplierID != nil {
		id := e.SupplierID.String()
		resp.SupplierID = &id
	}
	if e.Responsible != nil {
		resp.ResponsibleName = e.Responsible.FullName()
	}
	if e.Supplier != nil {
		resp.SupplierName = e.Supplier.Name
	}
	return resp
}
