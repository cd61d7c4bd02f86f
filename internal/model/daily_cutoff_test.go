package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCutoffNetCashFlow(t *testing.T) {
	c := DailyCutoff{
		TotalIncome:   decimal.NewFromInt(1200),
		TotalExpenses: decimal.NewFromInt(800),
	}
	assert.Equal(t, "400.00", c.NetCashFlow().StringFixed(2))
}

func TestCutoffProfitMargin(t *testing.T) {
	c := DailyCutoff{
		TotalIncome: decimal.NewFromInt(1000),
		Profit:      decimal.NewFromInt(250),
	}
	assert.Equal(t, "25.00", c.ProfitMargin().StringFixed(2))

	c.TotalIncome = decimal.Zero
	assert.True(t, c.ProfitMargin().IsZero())
}

func TestCutoffAverageTransactionAmount(t *testing.T) {
	c := DailyCutoff{
		TotalIncome:       decimal.NewFromInt(1200),
		TotalTransactions: 8,
	}
	assert.Equal(t, "150.00", c.AverageTransactionAmount().StringFixed(2))

	c.TotalTransactions = 0
	assert.True(t, c.AverageTransactionAmount().IsZero())
}

func TestCutoffHasDiscrepancies(t *testing.T) {
	c := DailyCutoff{}
	assert.False(t, c.HasDiscrepancies())

	c.CashDifference = decimal.NewFromInt(-50)
	assert.True(t, c.HasDiscrepancies())

	c.CashDifference = decimal.Zero
	c.Discrepancies = "drawer short 50"
	assert.True(t, c.HasDiscrepancies())
}
