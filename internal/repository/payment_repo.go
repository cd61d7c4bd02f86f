package repository

import (
	"context"

	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	Status        model.PaymentStatus
	Method        model.PaymentMethod
	ClientID      *uuid.UUID
	ResponsibleID *uuid.UUID
	Search        string // matches client name fields and payment reference
	Page          int
	Limit         int
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error)
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context) (model.PaymentSummary, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	var payment model.Payment
	if err := GetDB(ctx, r.db).Preload("Client").Preload("Responsible").
		First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]model.Payment, int64, error) {
	var payments []model.Payment
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Payment{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Joins("JOIN clients ON clients.id = payments.client_id").
			Where(
				"clients.name ILIKE ? OR clients.paternal_surname ILIKE ? OR clients.maternal_surname ILIKE ? OR clients.national_id ILIKE ? OR payments.reference ILIKE ?",
				like, like, like, like, like,
			)
	}
	if filter.Status != "" {
		query = query.Where("payments.status = ?", filter.Status)
	}
	if filter.Method != "" {
		query = query.Where("payments.payment_method = ?", filter.Method)
	}
	if filter.ClientID != nil {
		query = query.Where("payments.client_id = ?", *filter.ClientID)
	}
	if filter.ResponsibleID != nil {
		query = query.Where("payments.responsible_id = ?", *filter.ResponsibleID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Client").Preload("Responsible").
		Order("payments.created_at desc").Offset(offset).Limit(filter.Limit).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Payment{}, "id = ?", id).Error
}

// Summary rolls up amount+interest and counts per status in a single scan.
// COALESCE keeps empty groups at zero.
func (r *paymentRepository) Summary(ctx context.Context) (model.PaymentSummary, error) {
	var rows []struct {
		Status model.PaymentStatus
		Total  decimal.Decimal
		Count  int64
	}

	err := GetDB(ctx, r.db).Model(&model.Payment{}).
		Select("status, COALESCE(SUM(amount + interest_amount), 0) as total, COUNT(*) as count").
		Where("status IN ?", []model.PaymentStatus{model.PaymentPending, model.PaymentPaid, model.PaymentOverdue}).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return model.PaymentSummary{}, err
	}

	summary := model.PaymentSummary{
		TotalPending: decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalOverdue: decimal.Zero,
	}
	for _, row := range rows {
		switch row.Status {
		case model.PaymentPending:
			summary.TotalPending = row.Total
			summary.CountPending = row.Count
		case model.PaymentPaid:
			summary.TotalPaid = row.Total
			summary.CountPaid = row.Count
		case model.PaymentOverdue:
			summary.TotalOverdue = row.Total
			summary.CountOverdue = row.Count
		}
	}
	return summary, nil
}
