package service

import (
	"context"
	"testing"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExpenseFixture(t *testing.T) (*expenseService, *fakeExpenseRepo, *fakeSupplierRepo, *fakeUserRepo, *fakeAuditRepo) {
	t.Helper()
	expenseRepo := newFakeExpenseRepo()
	supplierRepo := newFakeSupplierRepo()
	userRepo := newFakeUserRepo()
	auditRepo := &fakeAuditRepo{}
	svc := &expenseService{
		expenseRepo:  expenseRepo,
		supplierRepo: supplierRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
		txManager:    fakeTxManager{},
	}
	return svc, expenseRepo, supplierRepo, userRepo, auditRepo
}

func seedExpense(repo *fakeExpenseRepo, status model.ExpenseStatus) *model.Expense {
	e := &model.Expense{
		ResponsibleID: uuid.New(),
		ExpenseDate:   time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "cash",
		Description:   "printer toner",
		Amount:        decimal.NewFromInt(80),
		Category:      model.CategoryOfficeSupplies,
		Status:        status,
	}
	_ = repo.Create(context.Background(), e)
	return e
}

func TestCreateExpense(t *testing.T) {
	svc, expenseRepo, _, userRepo, auditRepo := newExpenseFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	resp, err := svc.CreateExpense(context.Background(), employee.ID.String(), CreateExpenseRequest{
		ResponsibleID: employee.ID.String(),
		ExpenseDate:   "2026-02-15",
		PaymentMethod: "cash",
		Description:   "printer toner",
		Amount:        "80.00",
		Category:      "office_supplies",
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.ExpensePending), resp.Status)
	assert.Equal(t, "80.00", resp.Amount)
	assert.Nil(t, resp.SupplierID)
	assert.Len(t, expenseRepo.expenses, 1)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreateExpense, auditRepo.entries[0].Action)
}

func TestCreateExpenseValidation(t *testing.T) {
	svc, _, _, userRepo, _ := newExpenseFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	base := CreateExpenseRequest{
		ResponsibleID: employee.ID.String(),
		ExpenseDate:   "2026-02-15",
		PaymentMethod: "cash",
		Description:   "toner",
		Amount:        "80",
		Category:      "office_supplies",
	}

	for _, tt := range []struct {
		name   string
		mutate func(*CreateExpenseRequest)
	}{
		{"zero amount", func(r *CreateExpenseRequest) { r.Amount = "0" }},
		{"unknown category", func(r *CreateExpenseRequest) { r.Category = "snacks" }},
		{"malformed date", func(r *CreateExpenseRequest) { r.ExpenseDate = "15/02/2026" }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.CreateExpense(context.Background(), employee.ID.String(), req)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestExpenseLifecycle(t *testing.T) {
	svc, expenseRepo, _, _, auditRepo := newExpenseFixture(t)
	expense := seedExpense(expenseRepo, model.ExpensePending)

	resp, err := svc.ApproveExpense(context.Background(), "", expense.ID.String())
	require.NoError(t, err)
	assert.Equal(t, string(model.ExpenseApproved), resp.Status)

	resp, err = svc.PayExpense(context.Background(), "", expense.ID.String())
	require.NoError(t, err)
	assert.Equal(t, string(model.ExpensePaid), resp.Status)

	require.Len(t, auditRepo.entries, 2)
	assert.Equal(t, model.ActionApproveExpense, auditRepo.entries[0].Action)
	assert.Equal(t, model.ActionPayExpense, auditRepo.entries[1].Action)
}

func TestExpenseIllegalTransitions(t *testing.T) {
	svc, expenseRepo, _, _, _ := newExpenseFixture(t)

	// Pay requires approval first
	pending := seedExpense(expenseRepo, model.ExpensePending)
	_, err := svc.PayExpense(context.Background(), "", pending.ID.String())
	assert.True(t, apperr.IsState(err))

	// Approve is only legal from pending
	paid := seedExpense(expenseRepo, model.ExpensePaid)
	_, err = svc.ApproveExpense(context.Background(), "", paid.ID.String())
	assert.True(t, apperr.IsState(err))

	// Reject is legal from pending or approved, nothing else
	_, err = svc.RejectExpense(context.Background(), "", paid.ID.String())
	assert.True(t, apperr.IsState(err))

	approved := seedExpense(expenseRepo, model.ExpenseApproved)
	resp, err := svc.RejectExpense(context.Background(), "", approved.ID.String())
	require.NoError(t, err)
	assert.Equal(t, string(model.ExpenseRejected), resp.Status)
}

func TestUpdateExpenseEditableStatuses(t *testing.T) {
	svc, expenseRepo, _, _, _ := newExpenseFixture(t)
	desc := "new description"

	rejected := seedExpense(expenseRepo, model.ExpenseRejected)
	resp, err := svc.UpdateExpense(context.Background(), "", rejected.ID.String(), UpdateExpenseRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, resp.Description)
	// Editing a rejected expense does not move it back to pending
	assert.Equal(t, string(model.ExpenseRejected), resp.Status)

	approved := seedExpense(expenseRepo, model.ExpenseApproved)
	_, err = svc.UpdateExpense(context.Background(), "", approved.ID.String(), UpdateExpenseRequest{Description: &desc})
	assert.True(t, apperr.IsState(err))
}

func TestDeleteExpenseGuards(t *testing.T) {
	svc, expenseRepo, _, _, _ := newExpenseFixture(t)

	for _, tt := range []struct {
		status model.ExpenseStatus
		wantOK bool
	}{
		{model.ExpensePending, true},
		{model.ExpenseRejected, true},
		{model.ExpenseApproved, false},
		{model.ExpensePaid, false},
	} {
		expense := seedExpense(expenseRepo, tt.status)
		err := svc.DeleteExpense(context.Background(), "", expense.ID.String())
		if tt.wantOK {
			assert.NoError(t, err, "status %s", tt.status)
		} else {
			assert.True(t, apperr.IsState(err), "status %s", tt.status)
		}
	}
}

func TestGetExpenseSummary(t *testing.T) {
	svc, expenseRepo, _, _, _ := newExpenseFixture(t)
	expenseRepo.summary = model.ExpenseSummary{
		TotalPending: decimal.NewFromInt(120),
		TotalPaid:    decimal.NewFromFloat(999.9),
		CountPending: 2,
		CountPaid:    4,
		ByCategory: map[string]decimal.Decimal{
			"rent":      decimal.NewFromInt(700),
			"utilities": decimal.NewFromFloat(299.9),
		},
	}

	resp, err := svc.GetExpenseSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "120.00", resp.TotalPending)
	assert.Equal(t, "999.90", resp.TotalPaid)
	assert.Equal(t, "700.00", resp.ByCategory["rent"])
	assert.Equal(t, "299.90", resp.ByCategory["utilities"])
}
