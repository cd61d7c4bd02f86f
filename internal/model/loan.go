package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LoanStatus enum
type LoanStatus string

const (
	LoanPendingApproval LoanStatus = "pending_approval"
	LoanActive          LoanStatus = "active"
	LoanCompleted       LoanStatus = "completed"
	LoanDefaulted       LoanStatus = "defaulted"
	LoanCancelled       LoanStatus = "cancelled"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanPendingApproval, LoanActive, LoanCompleted, LoanDefaulted, LoanCancelled:
		return true
	}
	return false
}

// MaxLoanPaymentCount caps the number of scheduled payments per loan
const MaxLoanPaymentCount = 60

// Loan represents a loan granted to a client. TotalAmount and RemainingAmount
// are derived: total = amount * (1 + interest_rate), and remaining tracks the
// unpaid balance. Both are recomputed only while the loan is pending approval;
// once active, remaining changes only through payment application, which is
// handled by the reconciliation side of the system.
type Loan struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	ClientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client       *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	AuthorizerID uuid.UUID `gorm:"type:uuid;not null;index" json:"authorizer_id"`
	Authorizer   *User     `gorm:"foreignKey:AuthorizerID" json:"authorizer,omitempty"`

	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentCount     int             `gorm:"not null" json:"payment_count"`
	InterestRate     decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"interest_rate"`
	PaymentStartDate time.Time       `gorm:"type:date;not null" json:"payment_start_date"`
	LateInterest     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"late_interest"`

	Status LoanStatus `gorm:"type:varchar(20);not null;default:'pending_approval';index" json:"status"`

	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"remaining_amount"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ComputeTotal returns amount * (1 + interest_rate)
func (l Loan) ComputeTotal() decimal.Decimal {
	return l.Amount.Mul(decimal.NewFromInt(1).Add(l.InterestRate))
}

// RecomputeDerived refreshes TotalAmount and, while the loan has not been
// approved yet, resets RemainingAmount to the new total.
func (l *Loan) RecomputeDerived() {
	l.TotalAmount = l.ComputeTotal()
	if l.Status == LoanPendingApproval {
		l.RemainingAmount = l.TotalAmount
	}
}

// PaymentAmount is the per-installment amount: total / payment_count.
// Returns zero when payment_count is zero.
func (l Loan) PaymentAmount() decimal.Decimal {
	if l.PaymentCount <= 0 {
		return decimal.Zero
	}
	return l.ComputeTotal().Div(decimal.NewFromInt(int64(l.PaymentCount)))
}

// IsActive reports whether the loan is approved and not deleted
func (l Loan) IsActive() bool {
	return l.Status == LoanActive
}

// IsCompleted reports whether the loan has been fully paid
func (l Loan) IsCompleted() bool {
	return l.Status == LoanCompleted
}

// IsDefaulted reports whether the loan is in arrears
func (l Loan) IsDefaulted() bool {
	return l.Status == LoanDefaulted
}
