package service

import (
	"context"
	"fmt"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/repository"
)

// --- DTOs ---

type CreateSupplierRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	Folio       string `json:"folio"`
	Address     string `json:"address"`
	Type        string `json:"type" binding:"required"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	TaxID       string `json:"tax_id"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Contact     *string `json:"contact"`
	Description *string `json:"description"`
	Folio       *string `json:"folio"`
	Address     *string `json:"address"`
	Type        *string `json:"type"`
	Status      *string `json:"status"`
	Email       *string `json:"email"`
	Website     *string `json:"website"`
	TaxID       *string `json:"tax_id"`
}

type SupplierResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Contact     string `json:"contact"`
	Description string `json:"description"`
	Folio       string `json:"folio"`
	Address     string `json:"address"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	TaxID       string `json:"tax_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ListSuppliersQuery struct {
	Type   string
	Status string
	Search string
	Page   int
	Limit  int
}

// --- Interface ---

type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error)
	GetSupplier(ctx context.Context, id string) (SupplierResponse, error)
	ListSuppliers(ctx context.Context, q ListSuppliersQuery) ([]SupplierResponse, int64, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error)
	DeleteSupplier(ctx context.Context, id string) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

// --- Implementation ---

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (SupplierResponse, error) {
	supplierType := model.SupplierType(req.Type)
	if !supplierType.Valid() {
		return SupplierResponse{}, apperr.Validation("invalid type: %q", req.Type)
	}

	supplier := model.Supplier{
		Name:        req.Name,
		Phone:       req.Phone,
		Contact:     req.Contact,
		Description: req.Description,
		Folio:       req.Folio,
		Address:     req.Address,
		Type:        supplierType,
		Status:      model.SupplierActive,
		Email:       req.Email,
		Website:     req.Website,
		TaxID:       req.TaxID,
	}

	if err := s.repo.Create(ctx, &supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to create supplier: %w", err)
	}
	return toSupplierResponse(supplier), nil
}

func (s *supplierService) GetSupplier(ctx context.Context, id string) (SupplierResponse, error) {
	supplierID, err := parseUUID("supplier id", id)
	if err != nil {
		return SupplierResponse{}, err
	}
	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return SupplierResponse{}, notFoundOr(err, "supplier")
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) ListSuppliers(ctx context.Context, q ListSuppliersQuery) ([]SupplierResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := repository.SupplierFilter{Search: q.Search, Page: page, Limit: limit}
	if q.Type != "" {
		supplierType := model.SupplierType(q.Type)
		if !supplierType.Valid() {
			return nil, 0, apperr.Validation("invalid type: %q", q.Type)
		}
		filter.Type = supplierType
	}
	if q.Status != "" {
		status := model.SupplierStatus(q.Status)
		if !status.Valid() {
			return nil, 0, apperr.Validation("invalid status: %q", q.Status)
		}
		filter.Status = status
	}

	suppliers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch suppliers: %w", err)
	}

	result := make([]SupplierResponse, 0, len(suppliers))
	for _, sp := range suppliers {
		result = append(result, toSupplierResponse(sp))
	}
	return result, total, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest) (SupplierResponse, error) {
	supplierID, err := parseUUID("supplier id", id)
	if err != nil {
		return SupplierResponse{}, err
	}
	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return SupplierResponse{}, notFoundOr(err, "supplier")
	}

	if req.Type != nil {
		supplierType := model.SupplierType(*req.Type)
		if !supplierType.Valid() {
			return SupplierResponse{}, apperr.Validation("invalid type: %q", *req.Type)
		}
		supplier.Type = supplierType
	}
	if req.Status != nil {
		status := model.SupplierStatus(*req.Status)
		if !status.Valid() {
			return SupplierResponse{}, apperr.Validation("invalid status: %q", *req.Status)
		}
		supplier.Status = status
	}
	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Contact != nil {
		supplier.Contact = *req.Contact
	}
	if req.Description != nil {
		supplier.Description = *req.Description
	}
	if req.Folio != nil {
		supplier.Folio = *req.Folio
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Website != nil {
		supplier.Website = *req.Website
	}
	if req.TaxID != nil {
		supplier.TaxID = *req.TaxID
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("failed to update supplier: %w", err)
	}
	return toSupplierResponse(*supplier), nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id string) error {
	supplierID, err := parseUUID("supplier id", id)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, supplierID); err != nil {
		return notFoundOr(err, "supplier")
	}
	if err := s.repo.Delete(ctx, supplierID); err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}
	return nil
}

// --- Helpers ---

func toSupplierResponse(sp model.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:          sp.ID.String(),
		Name:        sp.Name,
		Phone:       sp.Phone,
		Contact:     sp.Contact,
		Description: sp.Description,
		Folio:       sp.Folio,
		Address:     sp.Address,
		Type:        string(sp.Type),
		Status:      string(sp.Status),
		Email:       sp.Email,
		Website:     sp.Website,
		TaxID:       sp.TaxID,
		CreatedAt:   sp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   sp.UpdatedAt.Format(time.RFC3339),
	}
}
