package service

import (
	"context"
	"testing"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCutoffFixture(t *testing.T) (*dailyCutoffService, *fakeCutoffRepo, *fakeUserRepo, *fakeAuditRepo, *recordingPublisher) {
	t.Helper()
	cutoffRepo := newFakeCutoffRepo()
	userRepo := newFakeUserRepo()
	auditRepo := &fakeAuditRepo{}
	events := &recordingPublisher{}
	svc := &dailyCutoffService{
		cutoffRepo: cutoffRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		txManager:  fakeTxManager{},
		events:     events,
		now:        func() time.Time { return time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC) },
	}
	return svc, cutoffRepo, userRepo, auditRepo, events
}

func TestCreateCutoffComputesTotals(t *testing.T) {
	svc, cutoffRepo, userRepo, auditRepo, _ := newCutoffFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	resp, err := svc.CreateCutoff(context.Background(), employee.ID.String(), CreateCutoffRequest{
		CutoffDate:    "2026-03-01",
		ResponsibleID: employee.ID.String(),

		PaymentsReceived:  "1000",
		InterestCollected: "200",
		LateFeesCollected: "50",
		OtherIncome:       "25",

		OperationalExpenses: "300",
		SalaryPayments:      "400",
		LoanDisbursements:   "100",
		OtherExpenses:       "75",

		InitialCash: "500",
		FinalCash:   "900",

		TotalTransactions: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "1275.00", resp.TotalIncome)
	assert.Equal(t, "875.00", resp.TotalExpenses)
	assert.Equal(t, "400.00", resp.Profit)
	// Expected drawer: 500 + 1275 - 875 = 900, so the count is clean
	assert.Equal(t, "0.00", resp.CashDifference)
	assert.False(t, resp.HasDiscrepancies)
	assert.Equal(t, "400.00", resp.NetCashFlow)
	assert.Equal(t, "31.37", resp.ProfitMargin)
	assert.Equal(t, "106.25", resp.AverageTransactionAmount)
	assert.False(t, resp.IsClosed)

	assert.Len(t, cutoffRepo.cutoffs, 1)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreateCutoff, auditRepo.entries[0].Action)
}

func TestCreateCutoffDuplicateDayConflicts(t *testing.T) {
	svc, _, userRepo, _, _ := newCutoffFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	req := CreateCutoffRequest{
		CutoffDate:    "2026-03-01",
		ResponsibleID: employee.ID.String(),
	}
	_, err := svc.CreateCutoff(context.Background(), employee.ID.String(), req)
	require.NoError(t, err)

	_, err = svc.CreateCutoff(context.Background(), employee.ID.String(), req)
	assert.True(t, apperr.IsConflict(err))

	// Same employee, different day is fine
	req.CutoffDate = "2026-03-02"
	_, err = svc.CreateCutoff(context.Background(), employee.ID.String(), req)
	assert.NoError(t, err)

	// Same day, different employee is fine too
	other := seedActiveUser(userRepo, model.RoleEmployee)
	_, err = svc.CreateCutoff(context.Background(), other.ID.String(), CreateCutoffRequest{
		CutoffDate:    "2026-03-01",
		ResponsibleID: other.ID.String(),
	})
	assert.NoError(t, err)
}

func TestCreateCutoffRejectsNegativeAmounts(t *testing.T) {
	svc, _, userRepo, _, _ := newCutoffFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	_, err := svc.CreateCutoff(context.Background(), employee.ID.String(), CreateCutoffRequest{
		CutoffDate:       "2026-03-01",
		ResponsibleID:    employee.ID.String(),
		PaymentsReceived: "-10",
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateCutoffRecomputesAndReportsDiscrepancy(t *testing.T) {
	svc, _, userRepo, _, _ := newCutoffFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	created, err := svc.CreateCutoff(context.Background(), employee.ID.String(), CreateCutoffRequest{
		CutoffDate:       "2026-03-01",
		ResponsibleID:    employee.ID.String(),
		PaymentsReceived: "1000",
		InitialCash:      "500",
		FinalCash:        "1500",
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", created.CashDifference)

	finalCash := "1450"
	updated, err := svc.UpdateCutoff(context.Background(), employee.ID.String(), created.ID, UpdateCutoffRequest{
		FinalCash: &finalCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "-50.00", updated.CashDifference)
	assert.True(t, updated.HasDiscrepancies)
}

func TestCloseCutoffLocksRecord(t *testing.T) {
	svc, _, userRepo, _, events := newCutoffFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	created, err := svc.CreateCutoff(context.Background(), employee.ID.String(), CreateCutoffRequest{
		CutoffDate:    "2026-03-01",
		ResponsibleID: employee.ID.String(),
	})
	require.NoError(t, err)

	closed, err := svc.CloseCutoff(context.Background(), employee.ID.String(), created.ID)
	require.NoError(t, err)
	assert.True(t, closed.IsClosed)
	require.NotNil(t, closed.ClosureTime)
	assert.Equal(t, []string{"cutoff.closed"}, events.events)

	// Closed cutoffs refuse everything but reads
	_, err = svc.CloseCutoff(context.Background(), employee.ID.String(), created.ID)
	assert.True(t, apperr.IsState(err))

	notes := "late edit"
	_, err = svc.UpdateCutoff(context.Background(), employee.ID.String(), created.ID, UpdateCutoffRequest{Notes: &notes})
	assert.True(t, apperr.IsState(err))

	err = svc.DeleteCutoff(context.Background(), employee.ID.String(), created.ID)
	assert.True(t, apperr.IsState(err))
}

func TestDeleteOpenCutoff(t *testing.T) {
	svc, cutoffRepo, userRepo, _, _ := newCutoffFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	created, err := svc.CreateCutoff(context.Background(), employee.ID.String(), CreateCutoffRequest{
		CutoffDate:    "2026-03-01",
		ResponsibleID: employee.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCutoff(context.Background(), employee.ID.String(), created.ID))
	assert.Empty(t, cutoffRepo.cutoffs)
}
