package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateLoan  = "CREATE_LOAN"
	ActionUpdateLoan  = "UPDATE_LOAN"
	ActionApproveLoan = "APPROVE_LOAN"
	ActionRejectLoan  = "REJECT_LOAN"
	ActionDeleteLoan  = "DELETE_LOAN"

	ActionCreatePayment      = "CREATE_PAYMENT"
	ActionUpdatePayment      = "UPDATE_PAYMENT"
	ActionProcessPayment     = "PROCESS_PAYMENT"
	ActionCancelPayment      = "CANCEL_PAYMENT"
	ActionMarkPaymentOverdue = "MARK_PAYMENT_OVERDUE"
	ActionDeletePayment      = "DELETE_PAYMENT"

	ActionCreateExpense  = "CREATE_EXPENSE"
	ActionUpdateExpense  = "UPDATE_EXPENSE"
	ActionApproveExpense = "APPROVE_EXPENSE"
	ActionRejectExpense  = "REJECT_EXPENSE"
	ActionPayExpense     = "PAY_EXPENSE"
	ActionDeleteExpense  = "DELETE_EXPENSE"

	ActionCreateCutoff = "CREATE_CUTOFF"
	ActionUpdateCutoff = "UPDATE_CUTOFF"
	ActionCloseCutoff  = "CLOSE_CUTOFF"
	ActionDeleteCutoff = "DELETE_CUTOFF"
)

// AuditLog tracks who did what and when for critical money movements
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for automated jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
