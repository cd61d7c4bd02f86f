package repository

import (
	"context"

	"github.com/paytrack/paytrack-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanFilter narrows loan listings
type LoanFilter struct {
	Status       model.LoanStatus
	ClientID     *uuid.UUID
	AuthorizerID *uuid.UUID
	Search       string // matches client name fields and national id
	Page         int
	Limit        int
}

type LoanRepository interface {
	Create(ctx context.Context, loan *model.Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]model.Loan, int64, error)
	Update(ctx context.Context, loan *model.Loan) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *model.Loan) error {
	return GetDB(ctx, r.db).Create(loan).Error
}

func (r *loanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	var loan model.Loan
	if err := GetDB(ctx, r.db).Preload("Client").Preload("Authorizer").
		First(&loan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, filter LoanFilter) ([]model.Loan, int64, error) {
	var loans []model.Loan
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Loan{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Joins("JOIN clients ON clients.id = loans.client_id").
			Where(
				"clients.name ILIKE ? OR clients.paternal_surname ILIKE ? OR clients.maternal_surname ILIKE ? OR clients.national_id ILIKE ?",
				like, like, like, like,
			)
	}
	if filter.Status != "" {
		query = query.Where("loans.status = ?", filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("loans.client_id = ?", *filter.ClientID)
	}
	if filter.AuthorizerID != nil {
		query = query.Where("loans.authorizer_id = ?", *filter.AuthorizerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Client").Preload("Authorizer").
		Order("loans.created_at desc").Offset(offset).Limit(filter.Limit).
		Find(&loans).Error; err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *model.Loan) error {
	return GetDB(ctx, r.db).Save(loan).Error
}

func (r *loanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Delete(&model.Loan{}, "id = ?", id).Error
}
