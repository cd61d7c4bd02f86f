package repository

import (
	"context"
	"time"

	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CutoffFilter narrows daily cutoff listings
type CutoffFilter struct {
	ResponsibleID *uuid.UUID
	CutoffDate    *time.Time
	DateFrom      *time.Time
	DateTo        *time.Time
	Closed        *bool
	Page          int
	Limit         int
}

type DailyCutoffRepository interface {
	Create(ctx context.Context, cutoff *model.DailyCutoff) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DailyCutoff, error)
	FindByDateAndResponsible(ctx context.Context, date time.Time, responsibleID uuid.UUID) (*model.DailyCutoff, error)
	List(ctx context.Context, filter CutoffFilter) ([]model.DailyCutoff, int64, error)
	Update(ctx context.Context, cutoff *model.DailyCutoff) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type dailyCutoffRepository struct {
	db *gorm.DB
}

func NewDailyCutoffRepository(db *gorm.DB) DailyCutoffRepository {
	return &dailyCutoffRepository{db: db}
}

func (r *dailyCutoffRepository) Create(ctx context.Context, cutoff *model.DailyCutoff) error {
	return GetDB(ctx, r.db).Create(cutoff).Error
}

func (r *dailyCutoffRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DailyCutoff, error) {
	var cutoff model.DailyCutoff
	if err := GetDB(ctx, r.db).Preload("Responsible").First(&cutoff, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cutoff, nil
}

func (r *dailyCutoffRepository) FindByDateAndResponsible(ctx context.Context, date time.Time, responsibleID uuid.UUID) (*model.DailyCutoff, error) {
	var cutoff model.DailyCutoff
	if err := GetDB(ctx, r.db).
		First(&cutoff, "cutoff_date = ? AND responsible_id = ?", date, responsibleID).Error; err != nil {
		return nil, err
	}
	return &cutoff, nil
}

func (r *dailyCutoffRepository) List(ctx context.Context, filter CutoffFilter) ([]model.DailyCutoff, int64, error) {
	var cutoffs []model.DailyCutoff
	var total int64

	query := GetDB(ctx, r.db).Model(&model.DailyCutoff{})
	if filter.ResponsibleID != nil {
		query = query.Where("responsible_id = ?", *filter.ResponsibleID)
	}
	if filter.CutoffDate != nil {
		query = query.Where("cutoff_date = ?", *filter.CutoffDate)
	}
	if filter.DateFrom != nil {
		query = query.Where("cutoff_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("cutoff_date <= ?", *filter.DateTo)
	}
	if filter.Closed != nil {
		query = query.Where("is_closed = ?", *filter.Closed)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Responsible").
		Order("cutoff_date desc").Offset(offset).Limit(filter.Limit).
		Find(&cutoffs).Error; err != nil {
		return nil, 0, err
	}

	return cutoffs, total, nil
}

func (r *dailyCutoffRepository) Update(ctx context.Context, cutoff *model.DailyCutoff) error {
	return GetDB(ctx, r.db).Save(cutoff).Error
}

func (r *dailyCutoffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.DailyCutoff{}, "id = ?", id).Error
}
