package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientStatus enum
type ClientStatus string

const (
	ClientActive     ClientStatus = "active"
	ClientInactive   ClientStatus = "inactive"
	ClientPaysOnTime ClientStatus = "pays_on_time"
	ClientBadDebtor  ClientStatus = "bad_debtor"
)

func (s ClientStatus) Valid() bool {
	switch s {
	case ClientActive, ClientInactive, ClientPaysOnTime, ClientBadDebtor:
		return true
	}
	return false
}

// Client is a borrower. Loans and payments reference clients, and creation
// rules require the client to be active.
type Client struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	PaternalSurname string    `gorm:"type:varchar(255);not null" json:"paternal_surname"`
	MaternalSurname string    `gorm:"type:varchar(255);not null" json:"maternal_surname"`
	Occupation      string    `gorm:"type:varchar(255)" json:"occupation"`
	NationalID      string    `gorm:"type:varchar(50);not null;index" json:"national_id"`
	Address         string    `gorm:"type:text" json:"address"`
	Phone           string    `gorm:"type:varchar(20)" json:"phone"`
	BirthDate       time.Time `gorm:"type:date" json:"birth_date"`

	Status ClientStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Notes  string       `gorm:"type:text" json:"notes"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FullName joins name and both surnames
func (c Client) FullName() string {
	return joinName(c.Name, c.PaternalSurname, c.MaternalSurname)
}

// IsActive reports whether new loans and payments may reference this client
func (c Client) IsActive() bool {
	return c.Status == ClientActive
}

// IsBadDebtor reports whether the client is flagged as a bad payer
func (c Client) IsBadDebtor() bool {
	return c.Status == ClientBadDebtor
}
