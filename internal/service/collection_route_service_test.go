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

func newRouteFixture(t *testing.T) (*collectionRouteService, *fakeRouteRepo, *fakeUserRepo, *fakeLoanRepo) {
	t.Helper()
	routeRepo := newFakeRouteRepo()
	userRepo := newFakeUserRepo()
	loanRepo := newFakeLoanRepo()
	svc := &collectionRouteService{
		routeRepo: routeRepo,
		userRepo:  userRepo,
		loanRepo:  loanRepo,
		now:       func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) },
	}
	return svc, routeRepo, userRepo, loanRepo
}

func seedLoan(repo *fakeLoanRepo) *model.Loan {
	loan := &model.Loan{
		Amount:       decimal.NewFromInt(1000),
		PaymentCount: 10,
		InterestRate: decimal.NewFromFloat(0.2),
		Status:       model.LoanActive,
	}
	_ = repo.Create(context.Background(), loan)
	return loan
}

func TestCreateRouteDefaults(t *testing.T) {
	svc, _, userRepo, loanRepo := newRouteFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)
	loan := seedLoan(loanRepo)

	resp, err := svc.CreateRoute(context.Background(), CreateRouteRequest{
		EmployeeID:     employee.ID.String(),
		LoanID:         loan.ID.String(),
		AssignmentDate: "2026-03-08",
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.RouteAssigned), resp.Status)
	assert.Equal(t, string(model.PriorityNormal), resp.Priority)
	assert.Equal(t, 2, resp.DaysSinceAssignment)
	assert.False(t, resp.IsOverdue)
	assert.Equal(t, employee.FullName(), resp.EmployeeName)
}

func TestCreateRouteGuards(t *testing.T) {
	svc, _, userRepo, loanRepo := newRouteFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)
	loan := seedLoan(loanRepo)

	_, err := svc.CreateRoute(context.Background(), CreateRouteRequest{
		EmployeeID:     employee.ID.String(),
		LoanID:         loan.ID.String(),
		AssignmentDate: "2026-03-08",
		Priority:       "whenever",
	})
	assert.True(t, apperr.IsValidation(err))

	employee.Status = model.UserInactive
	_, err = svc.CreateRoute(context.Background(), CreateRouteRequest{
		EmployeeID:     employee.ID.String(),
		LoanID:         loan.ID.String(),
		AssignmentDate: "2026-03-08",
	})
	assert.True(t, apperr.IsState(err))

	other := seedActiveUser(userRepo, model.RoleEmployee)
	_, err = svc.CreateRoute(context.Background(), CreateRouteRequest{
		EmployeeID:     other.ID.String(),
		LoanID:         "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed",
		AssignmentDate: "2026-03-08",
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateRouteCompletionStampsDate(t *testing.T) {
	svc, _, userRepo, loanRepo := newRouteFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)
	loan := seedLoan(loanRepo)

	created, err := svc.CreateRoute(context.Background(), CreateRouteRequest{
		EmployeeID:     employee.ID.String(),
		LoanID:         loan.ID.String(),
		AssignmentDate: "2026-03-08",
	})
	require.NoError(t, err)

	status := string(model.RouteCompleted)
	amount := "250.75"
	resp, err := svc.UpdateRoute(context.Background(), created.ID, UpdateRouteRequest{
		Status:          &status,
		AmountCollected: &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.RouteCompleted), resp.Status)
	require.NotNil(t, resp.CompletedDate)
	assert.Equal(t, "2026-03-10", *resp.CompletedDate)
	require.NotNil(t, resp.AmountCollected)
	assert.Equal(t, "250.75", *resp.AmountCollected)
}

func TestRouteOverdueFlag(t *testing.T) {
	svc, _, userRepo, loanRepo := newRouteFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)
	loan := seedLoan(loanRepo)

	created, err := svc.CreateRoute(context.Background(), CreateRouteRequest{
		EmployeeID:     employee.ID.String(),
		LoanID:         loan.ID.String(),
		AssignmentDate: "2026-03-01",
		ScheduledDate:  "2026-03-05",
	})
	require.NoError(t, err)
	assert.True(t, created.IsOverdue)

	// Cancelled routes stop counting as overdue
	status := string(model.RouteCancelled)
	resp, err := svc.UpdateRoute(context.Background(), created.ID, UpdateRouteRequest{Status: &status})
	require.NoError(t, err)
	assert.False(t, resp.IsOverdue)
}

func TestUpdateRouteValidation(t *testing.T) {
	svc, _, userRepo, loanRepo := newRouteFixture(t)
	employee := seedActiveUser(userRepo, model.RoleEmployee)
	loan := seedLoan(loanRepo)

	created, err := svc.CreateRoute(context.Background(), CreateRouteRequest{
		EmployeeID:     employee.ID.String(),
		LoanID:         loan.ID.String(),
		AssignmentDate: "2026-03-08",
	})
	require.NoError(t, err)

	negative := -1
	_, err = svc.UpdateRoute(context.Background(), created.ID, UpdateRouteRequest{VisitAttempts: &negative})
	assert.True(t, apperr.IsValidation(err))

	badAmount := "-5"
	_, err = svc.UpdateRoute(context.Background(), created.ID, UpdateRouteRequest{AmountCollected: &badAmount})
	assert.True(t, apperr.IsValidation(err))
}
