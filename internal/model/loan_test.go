package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoanComputeTotal(t *testing.T) {
	loan := Loan{
		Amount:       decimal.NewFromInt(1000),
		InterestRate: decimal.NewFromFloat(0.25),
	}
	assert.True(t, loan.ComputeTotal().Equal(decimal.NewFromInt(1250)))

	loan.InterestRate = decimal.Zero
	assert.True(t, loan.ComputeTotal().Equal(decimal.NewFromInt(1000)))
}

func TestLoanPaymentAmount(t *testing.T) {
	loan := Loan{
		Amount:       decimal.NewFromInt(1000),
		InterestRate: decimal.NewFromFloat(0.2),
		PaymentCount: 12,
	}
	assert.Equal(t, "100.00", loan.PaymentAmount().StringFixed(2))

	loan.PaymentCount = 0
	assert.True(t, loan.PaymentAmount().IsZero())
}

func TestLoanRecomputeDerived(t *testing.T) {
	loan := Loan{
		Amount:       decimal.NewFromInt(500),
		InterestRate: decimal.NewFromFloat(0.1),
		Status:       LoanPendingApproval,
	}
	loan.RecomputeDerived()
	assert.Equal(t, "550.00", loan.TotalAmount.StringFixed(2))
	assert.Equal(t, "550.00", loan.RemainingAmount.StringFixed(2))

	// Once approved the remaining balance belongs to payment application
	loan.Status = LoanActive
	loan.RemainingAmount = decimal.NewFromInt(300)
	loan.Amount = decimal.NewFromInt(600)
	loan.RecomputeDerived()
	assert.Equal(t, "660.00", loan.TotalAmount.StringFixed(2))
	assert.Equal(t, "300.00", loan.RemainingAmount.StringFixed(2))
}
