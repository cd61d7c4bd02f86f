package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRole enum
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleEmployee UserRole = "employee"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// UserStatus enum
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserActive, UserInactive:
		return true
	}
	return false
}

// User represents an employee or administrator of the back office
type User struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Role UserRole  `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`

	Name            string `gorm:"type:varchar(255);not null" json:"name"`
	PaternalSurname string `gorm:"type:varchar(255);not null" json:"paternal_surname"`
	MaternalSurname string `gorm:"type:varchar(255);not null" json:"maternal_surname"`
	NationalID      string `gorm:"type:varchar(50);not null" json:"national_id"`
	Phone           string `gorm:"type:varchar(20);not null" json:"phone"`
	Address         string `gorm:"type:text" json:"address"`

	// Employee payroll data, unused for admins
	Salary *decimal.Decimal `gorm:"type:decimal(18,2)" json:"salary,omitempty"`

	Status UserStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	Email      string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string `gorm:"type:varchar(255);not null" json:"-"` // Omit password hash from JSON
	IsVerified bool   `gorm:"default:false" json:"is_verified"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName joins name and both surnames
func (u User) FullName() string {
	return joinName(u.Name, u.PaternalSurname, u.MaternalSurname)
}

// IsActive reports whether the user can authenticate and be referenced
func (u User) IsActive() bool {
	return u.Status == UserActive
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// VerificationCode is a short-lived code mailed to a user to verify their email
type VerificationCode struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Code      string    `gorm:"type:varchar(10);not null" json:"code"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func joinName(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
