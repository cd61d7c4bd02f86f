package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus enum
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentPartial, PaymentCancelled:
		return true
	}
	return false
}

// PaymentMethod enum
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCard     PaymentMethod = "card"
	MethodCheck    PaymentMethod = "check"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard, MethodCheck:
		return true
	}
	return false
}

// Payment is a collection from a client. Paid is terminal: no edits, no
// further transitions. Overdue and cancelled remain mutually reachable,
// matching how collectors actually flip payments in the field.
type Payment struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	ClientID      uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client        *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ResponsibleID uuid.UUID `gorm:"type:uuid;not null;index" json:"responsible_id"`
	Responsible   *User     `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`

	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	InterestAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"interest_amount"`
	Method         PaymentMethod   `gorm:"column:payment_method;type:varchar(20);not null" json:"payment_method"`
	Status         PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`

	Notes     string `gorm:"type:text" json:"notes"`
	Reference string `gorm:"type:varchar(100);index" json:"reference"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TotalAmount is principal plus interest
func (p Payment) TotalAmount() decimal.Decimal {
	return p.Amount.Add(p.InterestAmount)
}

// IsPaid reports whether the payment has been processed
func (p Payment) IsPaid() bool {
	return p.Status == PaymentPaid
}

// DaysOverdue counts whole days past the due date. Zero for paid payments
// and payments without a due date.
func (p Payment) DaysOverdue(now time.Time) int {
	if p.DueDate == nil || p.IsPaid() {
		return 0
	}
	if !now.After(*p.DueDate) {
		return 0
	}
	return int(now.Sub(*p.DueDate).Hours() / 24)
}
