package repository

import (
	"context"

	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RouteFilter narrows collection route listings
type RouteFilter struct {
	Status     model.RouteStatus
	Priority   model.RoutePriority
	EmployeeID *uuid.UUID
	LoanID     *uuid.UUID
	Page       int
	Limit      int
}

type CollectionRouteRepository interface {
	Create(ctx context.Context, route *model.CollectionRoute) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CollectionRoute, error)
	List(ctx context.Context, filter RouteFilter) ([]model.CollectionRoute, int64, error)
	Update(ctx context.Context, route *model.CollectionRoute) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type collectionRouteRepository struct {
	db *gorm.DB
}

func NewCollectionRouteRepository(db *gorm.DB) CollectionRouteRepository {
	return &collectionRouteRepository{db: db}
}

func (r *collectionRouteRepository) Create(ctx context.Context, route *model.CollectionRoute) error {
	return GetDB(ctx, r.db).Create(route).Error
}

func (r *collectionRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CollectionRoute, error) {
	var route model.CollectionRoute
	if err := GetDB(ctx, r.db).Preload("Employee").Preload("Loan").
		First(&route, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *collectionRouteRepository) List(ctx context.Context, filter RouteFilter) ([]model.CollectionRoute, int64, error) {
	var routes []model.CollectionRoute
	var total int64

	query := GetDB(ctx, r.db).Model(&model.CollectionRoute{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.LoanID != nil {
		query = query.Where("loan_id = ?", *filter.LoanID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Employee").Preload("Loan").
		Order("assignment_date desc").Offset(offset).Limit(filter.Limit).
		Find(&routes).Error; err != nil {
		return nil, 0, err
	}

	return routes, total, nil
}

func (r *collectionRouteRepository) Update(ctx context.Context, route *model.CollectionRoute) error {
	return GetDB(ctx, r.db).Save(route).Error
}

func (r *collectionRouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.CollectionRoute{}, "id = ?", id).Error
}
