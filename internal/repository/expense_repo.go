package repository

import (
	"context"

	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	Status        model.ExpenseStatus
	Category      model.ExpenseCategory
	SupplierID    *uuid.UUID
	ResponsibleID *uuid.UUID
	Search        string // matches description and invoice number
	Page          int
	Limit         int
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context) (model.ExpenseSummary, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Create(expense).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var expense model.Expense
	if err := GetDB(ctx, r.db).Preload("Responsible").Preload("Supplier").
		First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Expense{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("description ILIKE ? OR invoice_number ILIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ResponsibleID != nil {
		query = query.Where("responsible_id = ?", *filter.ResponsibleID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Responsible").Preload("Supplier").
		Order("created_at desc").Offset(offset).Limit(filter.Limit).
		Find(&expenses).Error; err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *model.Expense) error {
	return GetDB(ctx, r.db).Save(expense).Error
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Expense{}, "id = ?", id).Error
}

// Summary rolls up amounts and counts per status plus paid totals by category
func (r *expenseRepository) Summary(ctx context.Context) (model.ExpenseSummary, error) {
	db := GetDB(ctx, r.db)

	var rows []struct {
		Status model.ExpenseStatus
		Total  decimal.Decimal
		Count  int64
	}
	err := db.Model(&model.Expense{}).
		Select("status, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return model.ExpenseSummary{}, err
	}

	summary := model.ExpenseSummary{
		TotalPending:  decimal.Zero,
		TotalApproved: decimal.Zero,
		TotalPaid:     decimal.Zero,
		TotalRejected: decimal.Zero,
		ByCategory:    map[string]decimal.Decimal{},
	}
	for _, row := range rows {
		switch row.Status {
		case model.ExpensePending:
			summary.TotalPending = row.Total
			summary.CountPending = row.Count
		case model.ExpenseApproved:
			summary.TotalApproved = row.Total
			summary.CountApproved = row.Count
		case model.ExpensePaid:
			summary.TotalPaid = row.Total
			summary.CountPaid = row.Count
		case model.ExpenseRejected:
			summary.TotalRejected = row.Total
			summary.CountRejected = row.Count
		}
	}

	var catRows []struct {
		Category string
		Total    decimal.Decimal
	}
	err = db.Model(&model.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) as total").
		Where("status = ?", model.ExpensePaid).
		Group("category").
		Scan(&catRows).Error
	if err != nil {
		return model.ExpenseSummary{}, err
	}
	for _, row := range catRows {
		summary.ByCategory[row.Category] = row.Total
	}

	return summary, nil
}
