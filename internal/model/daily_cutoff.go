package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyCutoff is the end-of-day cash reconciliation for one employee.
// A (cutoff_date, responsible_id) pair is unique: opening a second cutoff for
// the same employee and day is a conflict.
type DailyCutoff struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	CutoffDate    time.Time `gorm:"type:date;not null;uniqueIndex:idx_cutoff_date_responsible" json:"cutoff_date"`
	ResponsibleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cutoff_date_responsible" json:"responsible_id"`
	Responsible   *User     `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`

	TotalIncome   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_income"`
	TotalExpenses decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_expenses"`
	Profit        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"profit"`

	// Income breakdown
	PaymentsReceived  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"payments_received"`
	InterestCollected decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"interest_collected"`
	LateFeesCollected decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"late_fees_collected"`
	OtherIncome       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"other_income"`

	// Expense breakdown
	OperationalExpenses decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"operational_expenses"`
	SalaryPayments      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"salary_payments"`
	LoanDisbursements   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"loan_disbursements"`
	OtherExpenses       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"other_expenses"`

	// Cash drawer
	InitialCash    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"initial_cash"`
	FinalCash      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"final_cash"`
	CashDifference decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"cash_difference"`

	// Day counters
	TotalTransactions int `gorm:"default:0" json:"total_transactions"`
	LoansGranted      int `gorm:"default:0" json:"loans_granted"`
	PaymentsCollected int `gorm:"default:0" json:"payments_collected"`

	IsClosed      bool       `gorm:"default:false;index" json:"is_closed"`
	ClosureTime   *time.Time `json:"closure_time,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes"`
	Discrepancies string     `gorm:"type:text" json:"discrepancies"`

	// Banking
	BankDeposits    decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"bank_deposits"`
	BankWithdrawals decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"bank_withdrawals"`
	BankBalance     *decimal.Decimal `gorm:"type:decimal(18,2)" json:"bank_balance,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NetCashFlow is income minus expenses
func (d DailyCutoff) NetCashFlow() decimal.Decimal {
	return d.TotalIncome.Sub(d.TotalExpenses)
}

// ProfitMargin is profit as a percentage of income, zero when there is no income
func (d DailyCutoff) ProfitMargin() decimal.Decimal {
	if d.TotalIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return d.Profit.Div(d.TotalIncome).Mul(decimal.NewFromInt(100))
}

// AverageTransactionAmount is income per transaction, zero when no transactions
func (d DailyCutoff) AverageTransactionAmount() decimal.Decimal {
	if d.TotalTransactions <= 0 {
		return decimal.Zero
	}
	return d.TotalIncome.Div(decimal.NewFromInt(int64(d.TotalTransactions)))
}

// HasDiscrepancies reports whether the drawer did not balance
func (d DailyCutoff) HasDiscrepancies() bool {
	return !d.CashDifference.IsZero() || d.Discrepancies != ""
}
