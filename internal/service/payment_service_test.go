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

func newPaymentFixture(t *testing.T) (*paymentService, *fakePaymentRepo, *fakeClientRepo, *fakeUserRepo, *fakeAuditRepo, *recordingPublisher) {
	t.Helper()
	paymentRepo := newFakePaymentRepo()
	clientRepo := newFakeClientRepo()
	userRepo := newFakeUserRepo()
	auditRepo := &fakeAuditRepo{}
	events := &recordingPublisher{}
	svc := &paymentService{
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   fakeTxManager{},
		events:      events,
		now:         func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	return svc, paymentRepo, clientRepo, userRepo, auditRepo, events
}

func seedPayment(repo *fakePaymentRepo, status model.PaymentStatus) *model.Payment {
	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	p := &model.Payment{
		ClientID:       uuid.New(),
		ResponsibleID:  uuid.New(),
		Amount:         decimal.NewFromInt(300),
		InterestAmount: decimal.NewFromInt(30),
		Method:         model.MethodCash,
		Status:         status,
		DueDate:        &due,
	}
	_ = repo.Create(context.Background(), p)
	return p
}

func TestCreatePayment(t *testing.T) {
	svc, paymentRepo, clientRepo, userRepo, auditRepo, _ := newPaymentFixture(t)
	client := seedActiveClient(clientRepo)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	resp, err := svc.CreatePayment(context.Background(), employee.ID.String(), CreatePaymentRequest{
		ClientID:       client.ID.String(),
		ResponsibleID:  employee.ID.String(),
		Amount:         "300.00",
		InterestAmount: "30.00",
		Method:         "cash",
		DueDate:        "2026-03-20",
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.PaymentPending), resp.Status)
	assert.Equal(t, "330.00", resp.TotalAmount)
	assert.Equal(t, 0, resp.DaysOverdue)
	assert.Len(t, paymentRepo.payments, 1)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionCreatePayment, auditRepo.entries[0].Action)
}

func TestCreatePaymentValidation(t *testing.T) {
	svc, _, clientRepo, userRepo, _, _ := newPaymentFixture(t)
	client := seedActiveClient(clientRepo)
	employee := seedActiveUser(userRepo, model.RoleEmployee)

	base := CreatePaymentRequest{
		ClientID:      client.ID.String(),
		ResponsibleID: employee.ID.String(),
		Amount:        "100",
		Method:        "transfer",
	}

	for _, tt := range []struct {
		name   string
		mutate func(*CreatePaymentRequest)
	}{
		{"zero amount", func(r *CreatePaymentRequest) { r.Amount = "0" }},
		{"negative interest", func(r *CreatePaymentRequest) { r.InterestAmount = "-1" }},
		{"unknown method", func(r *CreatePaymentRequest) { r.Method = "crypto" }},
		{"malformed due date", func(r *CreatePaymentRequest) { r.DueDate = "20-03-2026" }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.CreatePayment(context.Background(), employee.ID.String(), req)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestProcessPaymentMarksPaid(t *testing.T) {
	svc, paymentRepo, _, _, auditRepo, events := newPaymentFixture(t)
	payment := seedPayment(paymentRepo, model.PaymentPending)

	resp, err := svc.ProcessPayment(context.Background(), "", payment.ID.String(), ProcessPaymentRequest{PaymentDate: "2026-03-10"})
	require.NoError(t, err)
	assert.Equal(t, string(model.PaymentPaid), resp.Status)
	require.NotNil(t, resp.PaymentDate)
	assert.Equal(t, "2026-03-10", *resp.PaymentDate)
	assert.Equal(t, 0, resp.DaysOverdue)
	assert.Equal(t, []string{"payment.processed"}, events.events)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionProcessPayment, auditRepo.entries[0].Action)
}

func TestProcessPaymentGuards(t *testing.T) {
	svc, paymentRepo, _, _, _, _ := newPaymentFixture(t)

	paid := seedPayment(paymentRepo, model.PaymentPaid)
	_, err := svc.ProcessPayment(context.Background(), "", paid.ID.String(), ProcessPaymentRequest{PaymentDate: "2026-03-10"})
	assert.True(t, apperr.IsState(err))

	cancelled := seedPayment(paymentRepo, model.PaymentCancelled)
	_, err = svc.ProcessPayment(context.Background(), "", cancelled.ID.String(), ProcessPaymentRequest{PaymentDate: "2026-03-10"})
	assert.True(t, apperr.IsState(err))

	pending := seedPayment(paymentRepo, model.PaymentPending)
	_, err = svc.ProcessPayment(context.Background(), "", pending.ID.String(), ProcessPaymentRequest{})
	assert.True(t, apperr.IsValidation(err))
}

func TestPaidPaymentIsTerminal(t *testing.T) {
	svc, paymentRepo, _, _, _, _ := newPaymentFixture(t)
	paid := seedPayment(paymentRepo, model.PaymentPaid)

	notes := "late note"
	_, err := svc.UpdatePayment(context.Background(), "", paid.ID.String(), UpdatePaymentRequest{Notes: &notes})
	assert.True(t, apperr.IsState(err))

	_, err = svc.CancelPayment(context.Background(), "", paid.ID.String())
	assert.True(t, apperr.IsState(err))

	_, err = svc.MarkPaymentOverdue(context.Background(), "", paid.ID.String())
	assert.True(t, apperr.IsState(err))

	err = svc.DeletePayment(context.Background(), "", paid.ID.String())
	assert.True(t, apperr.IsState(err))
}

func TestOverdueAndCancelledStayMutable(t *testing.T) {
	svc, paymentRepo, _, _, _, _ := newPaymentFixture(t)
	payment := seedPayment(paymentRepo, model.PaymentOverdue)

	resp, err := svc.CancelPayment(context.Background(), "", payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, string(model.PaymentCancelled), resp.Status)

	resp, err = svc.MarkPaymentOverdue(context.Background(), "", payment.ID.String())
	require.NoError(t, err)
	assert.Equal(t, string(model.PaymentOverdue), resp.Status)
}

func TestPaymentDaysOverdueInResponse(t *testing.T) {
	svc, paymentRepo, _, _, _, _ := newPaymentFixture(t)
	payment := seedPayment(paymentRepo, model.PaymentOverdue)

	resp, err := svc.GetPayment(context.Background(), payment.ID.String())
	require.NoError(t, err)
	// Due 2026-03-05, now pinned at 2026-03-10 noon
	assert.Equal(t, 5, resp.DaysOverdue)
}

func TestGetPaymentSummary(t *testing.T) {
	svc, paymentRepo, _, _, _, _ := newPaymentFixture(t)
	paymentRepo.summary = model.PaymentSummary{
		TotalPending: decimal.NewFromInt(500),
		TotalPaid:    decimal.NewFromFloat(1250.5),
		TotalOverdue: decimal.NewFromInt(75),
		CountPending: 3,
		CountPaid:    7,
		CountOverdue: 1,
	}

	resp, err := svc.GetPaymentSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "500.00", resp.TotalPending)
	assert.Equal(t, "1250.50", resp.TotalPaid)
	assert.Equal(t, "75.00", resp.TotalOverdue)
	assert.Equal(t, int64(7), resp.CountPaid)
}
