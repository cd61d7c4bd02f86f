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

type CreateClientRequest struct {
	Name            string `json:"name" binding:"required"`
	PaternalSurname string `json:"paternal_surname" binding:"required"`
	MaternalSurname string `json:"maternal_surname" binding:"required"`
	Occupation      string `json:"occupation"`
	NationalID      string `json:"national_id" binding:"required"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	BirthDate       string `json:"birth_date"` // YYYY-MM-DD
	Notes           string `json:"notes"`
}

type UpdateClientRequest struct {
	Name            *string `json:"name"`
	PaternalSurname *string `json:"paternal_surname"`
	MaternalSurname *string `json:"maternal_surname"`
	Occupation      *string `json:"occupation"`
	NationalID      *string `json:"national_id"`
	Address         *string `json:"address"`
	Phone           *string `json:"phone"`
	BirthDate       *string `json:"birth_date"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

type ClientResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PaternalSurname string `json:"paternal_surname"`
	MaternalSurname string `json:"maternal_surname"`
	FullName        string `json:"full_name"`
	Occupation      string `json:"occupation"`
	NationalID      string `json:"national_id"`
	Address         string `json:"address"`
	Phone           string `json:"phone"`
	BirthDate       string `json:"birth_date,omitempty"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type ListClientsQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	ListClients(ctx context.Context, q ListClientsQuery) ([]ClientResponse, int64, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error)
	DeleteClient(ctx context.Context, id string) error
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error) {
	client := model.Client{
		Name:            req.Name,
		PaternalSurname: req.PaternalSurname,
		MaternalSurname: req.MaternalSurname,
		Occupation:      req.Occupation,
		NationalID:      req.NationalID,
		Address:         req.Address,
		Phone:           req.Phone,
		Status:          model.ClientActive,
		Notes:           req.Notes,
	}
	if req.BirthDate != "" {
		birthDate, err := parseDate("birth_date", req.BirthDate)
		if err != nil {
			return ClientResponse{}, err
		}
		client.BirthDate = birthDate
	}

	if err := s.repo.Create(ctx, &client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}
	return toClientResponse(client), nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	clientID, err := parseUUID("client id", id)
	if err != nil {
		return ClientResponse{}, err
	}
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return ClientResponse{}, notFoundOr(err, "client")
	}
	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, q ListClientsQuery) ([]ClientResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := repository.ClientFilter{Search: q.Search, Page: page, Limit: limit}
	if q.Status != "" {
		status := model.ClientStatus(q.Status)
		if !status.Valid() {
			return nil, 0, apperr.Validation("invalid status: %q", q.Status)
		}
		filter.Status = status
	}

	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		result = append(result, toClientResponse(c))
	}
	return result, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error) {
	clientID, err := parseUUID("client id", id)
	if err != nil {
		return ClientResponse{}, err
	}
	client, err := s.repo.FindByID(ctx, clientID)
	if err != nil {
		return ClientResponse{}, notFoundOr(err, "client")
	}

	if req.Status != nil {
		status := model.ClientStatus(*req.Status)
		if !status.Valid() {
			return ClientResponse{}, apperr.Validation("invalid status: %q", *req.Status)
		}
		client.Status = status
	}
	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.PaternalSurname != nil {
		client.PaternalSurname = *req.PaternalSurname
	}
	if req.MaternalSurname != nil {
		client.MaternalSurname = *req.MaternalSurname
	}
	if req.Occupation != nil {
		client.Occupation = *req.Occupation
	}
	if req.NationalID != nil {
		client.NationalID = *req.NationalID
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.BirthDate != nil {
		birthDate, parseErr := parseDate("birth_date", *req.BirthDate)
		if parseErr != nil {
			return ClientResponse{}, parseErr
		}
		client.BirthDate = birthDate
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	clientID, err := parseUUID("client id", id)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, clientID); err != nil {
		return notFoundOr(err, "client")
	}
	if err := s.repo.Delete(ctx, clientID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// --- Helpers ---

func toClientResponse(c model.Client) ClientResponse {
	resp := ClientResponse{
		ID:              c.ID.String(),
		Name:            c.Name,
		PaternalSurname: c.PaternalSurname,
		MaternalSurname: c.MaternalSurname,
		FullName:        c.FullName(),
		Occupation:      c.Occupation,
		NationalID:      c.NationalID,
		Address:         c.Address,
		Phone:           c.Phone,
		Status:          string(c.Status),
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.Format(time.RFC3339),
	}
	if !c.BirthDate.IsZero() {
		resp.BirthDate = c.BirthDate.Format(DateLayout)
	}
	return resp
}
