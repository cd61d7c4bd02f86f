package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierStatus enum
type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
)

func (s SupplierStatus) Valid() bool {
	switch s {
	case SupplierActive, SupplierInactive:
		return true
	}
	return false
}

// SupplierType enum
type SupplierType string

const (
	SupplierService     SupplierType = "service"
	SupplierProduct     SupplierType = "product"
	SupplierMaintenance SupplierType = "maintenance"
	SupplierOffice      SupplierType = "office"
	SupplierOther       SupplierType = "other"
)

func (t SupplierType) Valid() bool {
	switch t {
	case SupplierService, SupplierProduct, SupplierMaintenance, SupplierOffice, SupplierOther:
		return true
	}
	return false
}

// Supplier is a vendor that expenses may reference
type Supplier struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Phone       string `gorm:"type:varchar(20)" json:"phone"`
	Contact     string `gorm:"type:varchar(255)" json:"contact"`
	Description string `gorm:"type:text" json:"description"`
	Folio       string `gorm:"type:varchar(50)" json:"folio"`
	Address     string `gorm:"type:text" json:"address"`

	Type   SupplierType   `gorm:"type:varchar(20);not null;index" json:"type"`
	Status SupplierStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	Email   string `gorm:"type:varchar(255)" json:"email"`
	Website string `gorm:"type:varchar(255)" json:"website"`
	TaxID   string `gorm:"type:varchar(50)" json:"tax_id"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive reports whether new expenses may reference this supplier
func (s Supplier) IsActive() bool {
	return s.Status == SupplierActive
}
