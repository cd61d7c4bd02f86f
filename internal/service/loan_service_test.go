package service

import (
	"context"
	"testing"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoanFixture(t *testing.T) (*loanService, *fakeLoanRepo, *fakeClientRepo, *fakeUserRepo, *fakeAuditRepo, *recordingPublisher) {
	t.Helper()
	loanRepo := newFakeLoanRepo()
	clientRepo := newFakeClientRepo()
	userRepo := newFakeUserRepo()
	auditRepo := &fakeAuditRepo{}
	events := &recordingPublisher{}
	svc := &loanService{
		loanRepo:   loanRepo,
		clientRepo: clientRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		txManager:  fakeTxManager{},
		events:     events,
		now:        func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	}
	return svc, loanRepo, clientRepo, userRepo, auditRepo, events
}

func TestCreateLoanComputesDerivedAmounts(t *testing.T) {
	svc, loanRepo, clientRepo, userRepo, auditRepo, _ := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	resp, err := svc.CreateLoan(context.Background(), admin.ID.String(), CreateLoanRequest{
		ClientID:         client.ID.String(),
		AuthorizerID:     admin.ID.String(),
		Amount:           "1000.00",
		PaymentCount:     10,
		InterestRate:     "0.20",
		PaymentStartDate: "2026-03-15",
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.LoanPendingApproval), resp.Status)
	assert.Equal(t, "1200.00", resp.TotalAmount)
	assert.Equal(t, "1200.00", resp.RemainingAmount)
	assert.Equal(t, "120.00", resp.PaymentAmount)
	assert.Equal(t, client.FullName(), resp.ClientName)

	assert.Len(t, loanRepo.loans, 1)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreateLoan, auditRepo.entries[0].Action)
}

func TestCreateLoanValidation(t *testing.T) {
	svc, _, clientRepo, userRepo, _, _ := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	base := CreateLoanRequest{
		ClientID:         client.ID.String(),
		AuthorizerID:     admin.ID.String(),
		Amount:           "1000",
		PaymentCount:     10,
		InterestRate:     "0.2",
		PaymentStartDate: "2026-03-15",
	}

	tests := []struct {
		name   string
		mutate func(*CreateLoanRequest)
	}{
		{"zero amount", func(r *CreateLoanRequest) { r.Amount = "0" }},
		{"negative amount", func(r *CreateLoanRequest) { r.Amount = "-50" }},
		{"zero payment count", func(r *CreateLoanRequest) { r.PaymentCount = 0 }},
		{"payment count over cap", func(r *CreateLoanRequest) { r.PaymentCount = model.MaxLoanPaymentCount + 1 }},
		{"interest rate above 1", func(r *CreateLoanRequest) { r.InterestRate = "1.5" }},
		{"negative interest rate", func(r *CreateLoanRequest) { r.InterestRate = "-0.1" }},
		{"late interest above 1", func(r *CreateLoanRequest) { r.LateInterest = "2" }},
		{"start date in the past", func(r *CreateLoanRequest) { r.PaymentStartDate = "2026-02-01" }},
		{"malformed start date", func(r *CreateLoanRequest) { r.PaymentStartDate = "15/03/2026" }},
		{"malformed client id", func(r *CreateLoanRequest) { r.ClientID = "not-a-uuid" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.CreateLoan(context.Background(), admin.ID.String(), req)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreateLoanRequiresActiveParties(t *testing.T) {
	svc, _, clientRepo, userRepo, _, _ := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	client.Status = model.ClientBadDebtor
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	req := CreateLoanRequest{
		ClientID:         client.ID.String(),
		AuthorizerID:     admin.ID.String(),
		Amount:           "500",
		PaymentCount:     5,
		InterestRate:     "0.1",
		PaymentStartDate: "2026-04-01",
	}

	_, err := svc.CreateLoan(context.Background(), admin.ID.String(), req)
	assert.True(t, apperr.IsState(err))

	client.Status = model.ClientActive
	admin.Status = model.UserInactive
	_, err = svc.CreateLoan(context.Background(), admin.ID.String(), req)
	assert.True(t, apperr.IsState(err))
}

func TestUpdateLoanRecomputesOnTermsChange(t *testing.T) {
	svc, loanRepo, clientRepo, userRepo, _, _ := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	loan := &model.Loan{
		ClientID:     client.ID,
		AuthorizerID: admin.ID,
		Amount:       decimal.NewFromInt(1000),
		PaymentCount: 10,
		InterestRate: decimal.NewFromFloat(0.2),
		Status:       model.LoanPendingApproval,
	}
	loan.RecomputeDerived()
	require.NoError(t, loanRepo.Create(context.Background(), loan))

	amount := "2000"
	resp, err := svc.UpdateLoan(context.Background(), admin.ID.String(), loan.ID.String(), UpdateLoanRequest{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "2400.00", resp.TotalAmount)
	assert.Equal(t, "2400.00", resp.RemainingAmount)

	// Non-term fields leave totals alone
	count := 12
	resp, err = svc.UpdateLoan(context.Background(), admin.ID.String(), loan.ID.String(), UpdateLoanRequest{PaymentCount: &count})
	require.NoError(t, err)
	assert.Equal(t, "2400.00", resp.TotalAmount)
	assert.Equal(t, "200.00", resp.PaymentAmount)
}

func TestUpdateLoanRejectsNonPending(t *testing.T) {
	svc, loanRepo, clientRepo, userRepo, _, _ := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	loan := &model.Loan{
		ClientID:     client.ID,
		AuthorizerID: admin.ID,
		Amount:       decimal.NewFromInt(1000),
		PaymentCount: 10,
		InterestRate: decimal.NewFromFloat(0.2),
		Status:       model.LoanActive,
	}
	require.NoError(t, loanRepo.Create(context.Background(), loan))

	amount := "2000"
	_, err := svc.UpdateLoan(context.Background(), admin.ID.String(), loan.ID.String(), UpdateLoanRequest{Amount: &amount})
	assert.True(t, apperr.IsState(err))
}

func TestApproveLoanPublishesEvent(t *testing.T) {
	svc, loanRepo, clientRepo, userRepo, auditRepo, events := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	loan := &model.Loan{
		ClientID:     client.ID,
		AuthorizerID: admin.ID,
		Amount:       decimal.NewFromInt(1000),
		PaymentCount: 10,
		InterestRate: decimal.NewFromFloat(0.2),
		Status:       model.LoanPendingApproval,
	}
	loan.RecomputeDerived()
	require.NoError(t, loanRepo.Create(context.Background(), loan))

	resp, err := svc.ApproveLoan(context.Background(), admin.ID.String(), loan.ID.String())
	require.NoError(t, err)
	assert.Equal(t, string(model.LoanActive), resp.Status)
	assert.Equal(t, []string{"loan.approved"}, events.events)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionApproveLoan, auditRepo.entries[0].Action)

	// A second approval is an illegal transition
	_, err = svc.ApproveLoan(context.Background(), admin.ID.String(), loan.ID.String())
	assert.True(t, apperr.IsState(err))
}

func TestRejectLoanCancels(t *testing.T) {
	svc, loanRepo, clientRepo, userRepo, _, events := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	loan := &model.Loan{
		ClientID:     client.ID,
		AuthorizerID: admin.ID,
		Amount:       decimal.NewFromInt(500),
		PaymentCount: 5,
		InterestRate: decimal.NewFromFloat(0.1),
		Status:       model.LoanPendingApproval,
	}
	require.NoError(t, loanRepo.Create(context.Background(), loan))

	resp, err := svc.RejectLoan(context.Background(), admin.ID.String(), loan.ID.String())
	require.NoError(t, err)
	assert.Equal(t, string(model.LoanCancelled), resp.Status)
	assert.Empty(t, events.events)
}

func TestDeleteLoanStatusGuard(t *testing.T) {
	svc, loanRepo, clientRepo, userRepo, _, _ := newLoanFixture(t)
	client := seedActiveClient(clientRepo)
	admin := seedActiveUser(userRepo, model.RoleAdmin)

	for _, tt := range []struct {
		status model.LoanStatus
		wantOK bool
	}{
		{model.LoanPendingApproval, true},
		{model.LoanCancelled, true},
		{model.LoanActive, false},
		{model.LoanCompleted, false},
		{model.LoanDefaulted, false},
	} {
		loan := &model.Loan{
			ClientID:     client.ID,
			AuthorizerID: admin.ID,
			Amount:       decimal.NewFromInt(100),
			PaymentCount: 2,
			InterestRate: decimal.Zero,
			Status:       tt.status,
		}
		require.NoError(t, loanRepo.Create(context.Background(), loan))

		err := svc.DeleteLoan(context.Background(), admin.ID.String(), loan.ID.String())
		if tt.wantOK {
			assert.NoError(t, err, "status %s", tt.status)
		} else {
			assert.True(t, apperr.IsState(err), "status %s", tt.status)
		}
	}
}

func TestGetLoanNotFound(t *testing.T) {
	svc, _, _, _, _, _ := newLoanFixture(t)
	_, err := svc.GetLoan(context.Background(), "6c1a2b7e-0000-4000-8000-000000000001")
	assert.True(t, apperr.IsNotFound(err))
}
