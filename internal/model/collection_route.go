package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RouteStatus enum
type RouteStatus string

const (
	RouteAssigned   RouteStatus = "assigned"
	RoutePending    RouteStatus = "pending"
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
	RouteCancelled  RouteStatus = "cancelled"
)

func (s RouteStatus) Valid() bool {
	switch s {
	case RouteAssigned, RoutePending, RouteInProgress, RouteCompleted, RouteCancelled:
		return true
	}
	return false
}

// RoutePriority enum
type RoutePriority string

const (
	PriorityLow    RoutePriority = "low"
	PriorityNormal RoutePriority = "normal"
	PriorityHigh   RoutePriority = "high"
	PriorityUrgent RoutePriority = "urgent"
)

func (p RoutePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// CollectionRoute assigns an employee to collect on a loan
type CollectionRoute struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	Employee   *User     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	LoanID     uuid.UUID `gorm:"type:uuid;not null;index" json:"loan_id"`
	Loan       *Loan     `gorm:"foreignKey:LoanID" json:"loan,omitempty"`

	AssignmentDate time.Time  `gorm:"type:date;not null" json:"assignment_date"`
	ScheduledDate  *time.Time `gorm:"type:date" json:"scheduled_date,omitempty"`
	CompletedDate  *time.Time `gorm:"type:date" json:"completed_date,omitempty"`

	Status   RouteStatus   `gorm:"type:varchar(20);not null;default:'assigned';index" json:"status"`
	Priority RoutePriority `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`

	Notes           string `gorm:"type:text" json:"notes"`
	VisitAttempts   int    `gorm:"default:0" json:"visit_attempts"`
	ContactAttempts int    `gorm:"default:0" json:"contact_attempts"`

	AmountCollected *decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount_collected,omitempty"`
	CollectionNotes string           `gorm:"type:text" json:"collection_notes"`

	ClientAddress  string `gorm:"type:text" json:"client_address"`
	GPSCoordinates string `gorm:"column:gps_coordinates;type:varchar(100)" json:"gps_coordinates"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsCompleted reports whether the route has been worked to completion
func (r CollectionRoute) IsCompleted() bool {
	return r.Status == RouteCompleted
}

// IsOverdue reports whether the route blew past its scheduled date without
// reaching a final status.
func (r CollectionRoute) IsOverdue(now time.Time) bool {
	if r.ScheduledDate == nil {
		return false
	}
	if r.Status == RouteCompleted || r.Status == RouteCancelled {
		return false
	}
	return now.After(*r.ScheduledDate)
}

// DaysSinceAssignment counts whole days since the route was assigned
func (r CollectionRoute) DaysSinceAssignment(now time.Time) int {
	d := int(now.Sub(r.AssignmentDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
