package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentTotalAmount(t *testing.T) {
	p := Payment{
		Amount:         decimal.NewFromInt(300),
		InterestAmount: decimal.NewFromFloat(45.5),
	}
	assert.Equal(t, "345.50", p.TotalAmount().StringFixed(2))
}

func TestPaymentDaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	p := Payment{Status: PaymentPending, DueDate: &due}
	assert.Equal(t, 5, p.DaysOverdue(now))

	// No due date, nothing to count
	p.DueDate = nil
	assert.Equal(t, 0, p.DaysOverdue(now))

	// Paid payments never report as overdue
	p.DueDate = &due
	p.Status = PaymentPaid
	assert.Equal(t, 0, p.DaysOverdue(now))

	// Not yet due
	future := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	p.Status = PaymentPending
	p.DueDate = &future
	assert.Equal(t, 0, p.DaysOverdue(now))
}
