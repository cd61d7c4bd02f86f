package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseStatus enum
type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpensePaid     ExpenseStatus = "paid"
	ExpenseRejected ExpenseStatus = "rejected"
)

func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpensePending, ExpenseApproved, ExpensePaid, ExpenseRejected:
		return true
	}
	return false
}

// ExpenseCategory enum
type ExpenseCategory string

const (
	CategoryOfficeSupplies ExpenseCategory = "office_supplies"
	CategoryMaintenance    ExpenseCategory = "maintenance"
	CategoryServices       ExpenseCategory = "services"
	CategoryRent           ExpenseCategory = "rent"
	CategoryUtilities      ExpenseCategory = "utilities"
	CategorySalaries       ExpenseCategory = "salaries"
	CategoryMarketing      ExpenseCategory = "marketing"
	CategoryTravel         ExpenseCategory = "travel"
	CategoryOther          ExpenseCategory = "other"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryOfficeSupplies, CategoryMaintenance, CategoryServices, CategoryRent,
		CategoryUtilities, CategorySalaries, CategoryMarketing, CategoryTravel, CategoryOther:
		return true
	}
	return false
}

// Expense is an outgoing cost. Lifecycle: pending -> approved -> paid, with
// reject legal from pending or approved. Rejected expenses stay editable,
// unlike paid payments.
type Expense struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	ResponsibleID uuid.UUID  `gorm:"type:uuid;not null;index" json:"responsible_id"`
	Responsible   *User      `gorm:"foreignKey:ResponsibleID" json:"responsible,omitempty"`
	SupplierID    *uuid.UUID `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Supplier      *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`

	ExpenseDate   time.Time       `gorm:"type:date;not null" json:"expense_date"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`

	Category ExpenseCategory `gorm:"type:varchar(30);not null;default:'other';index" json:"category"`
	Status   ExpenseStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	InvoiceNumber string `gorm:"type:varchar(100)" json:"invoice_number"`
	ReceiptPath   string `gorm:"type:text" json:"receipt_path"`
	Notes         string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPaid reports whether the expense has been disbursed
func (e Expense) IsPaid() bool {
	return e.Status == ExpensePaid
}

// IsPending reports whether the expense awaits approval
func (e Expense) IsPending() bool {
	return e.Status == ExpensePending
}

// Editable reports whether field updates are allowed in the current status
func (e Expense) Editable() bool {
	return e.Status == ExpensePending || e.Status == ExpenseRejected
}
