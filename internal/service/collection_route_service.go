package service

import (
	"context"
	"fmt"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateRouteRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	LoanID     string `json:"loan_id" binding:"required"`

	AssignmentDate string `json:"assignment_date" binding:"required"` // YYYY-MM-DD
	ScheduledDate  string `json:"scheduled_date"`
	Priority       string `json:"priority"`
	Notes          string `json:"notes"`
	ClientAddress  string `json:"client_address"`
	GPSCoordinates string `json:"gps_coordinates"`
}

type UpdateRouteRequest struct {
	Status          *string `json:"status"`
	Priority        *string `json:"priority"`
	ScheduledDate   *string `json:"scheduled_date"`
	CompletedDate   *string `json:"completed_date"`
	Notes           *string `json:"notes"`
	VisitAttempts   *int    `json:"visit_attempts"`
	ContactAttempts *int    `json:"contact_attempts"`
	AmountCollected *string `json:"amount_collected"`
	CollectionNotes *string `json:"collection_notes"`
	ClientAddress   *string `json:"client_address"`
	GPSCoordinates  *string `json:"gps_coordinates"`
}

type RouteResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	LoanID       string `json:"loan_id"`

	AssignmentDate string  `json:"assignment_date"`
	ScheduledDate  *string `json:"scheduled_date"`
	CompletedDate  *string `json:"completed_date"`

	Status   string `json:"status"`
	Priority string `json:"priority"`

	Notes           string  `json:"notes"`
	VisitAttempts   int     `json:"visit_attempts"`
	ContactAttempts int     `json:"contact_attempts"`
	AmountCollected *string `json:"amount_collected"`
	CollectionNotes string  `json:"collection_notes"`
	ClientAddress   string  `json:"client_address"`
	GPSCoordinates  string  `json:"gps_coordinates"`

	IsOverdue           bool   `json:"is_overdue"`
	DaysSinceAssignment int    `json:"days_since_assignment"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

type ListRoutesQuery struct {
	Status     string
	Priority   string
	EmployeeID string
	LoanID     string
	Page       int
	Limit      int
}

// --- Interface ---

type CollectionRouteService interface {
	CreateRoute(ctx context.Context, req CreateRouteRequest) (RouteResponse, error)
	GetRoute(ctx context.Context, id string) (RouteResponse, error)
	ListRoutes(ctx context.Context, q ListRoutesQuery) ([]RouteResponse, int64, error)
	UpdateRoute(ctx context.Context, id string, req UpdateRouteRequest) (RouteResponse, error)
	DeleteRoute(ctx context.Context, id string) error
}

type collectionRouteService struct {
	routeRepo repository.CollectionRouteRepository
	userRepo  repository.UserRepository
	loanRepo  repository.LoanRepository
	now       clock
}

func NewCollectionRouteService(
	routeRepo repository.CollectionRouteRepository,
	userRepo repository.UserRepository,
	loanRepo repository.LoanRepository,
) CollectionRouteService {
	return &collectionRouteService{
		routeRepo: routeRepo,
		userRepo:  userRepo,
		loanRepo:  loanRepo,
		now:       time.Now,
	}
}

// --- Implementation ---

func (s *collectionRouteService) CreateRoute(ctx context.Context, req CreateRouteRequest) (RouteResponse, error) {
	employeeID, err := parseUUID("employee_id", req.EmployeeID)
	if err != nil {
		return RouteResponse{}, err
	}
	loanID, err := parseUUID("loan_id", req.LoanID)
	if err != nil {
		return RouteResponse{}, err
	}

	assignmentDate, err := parseDate("assignment_date", req.AssignmentDate)
	if err != nil {
		return RouteResponse{}, err
	}
	var scheduledDate *time.Time
	if req.ScheduledDate != "" {
		parsed, parseErr := parseDate("scheduled_date", req.ScheduledDate)
		if parseErr != nil {
			return RouteResponse{}, parseErr
		}
		scheduledDate = &parsed
	}

	priority := model.PriorityNormal
	if req.Priority != "" {
		priority = model.RoutePriority(req.Priority)
		if !priority.Valid() {
			return RouteResponse{}, apperr.Validation("invalid priority: %q", req.Priority)
		}
	}

	employee, err := s.userRepo.FindByID(ctx, employeeID)
	if err != nil {
		return RouteResponse{}, notFoundOr(err, "employee")
	}
	if !employee.IsActive() {
		return RouteResponse{}, apperr.State("employee is not active")
	}
	if _, err := s.loanRepo.FindByID(ctx, loanID); err != nil {
		return RouteResponse{}, notFoundOr(err, "loan")
	}

	route := model.CollectionRoute{
		EmployeeID:     employeeID,
		LoanID:         loanID,
		AssignmentDate: assignmentDate,
		ScheduledDate:  scheduledDate,
		Status:         model.RouteAssigned,
		Priority:       priority,
		Notes:          req.Notes,
		ClientAddress:  req.ClientAddress,
		GPSCoordinates: req.GPSCoordinates,
	}

	if err := s.routeRepo.Create(ctx, &route); err != nil {
		return RouteResponse{}, fmt.Errorf("failed to create collection route: %w", err)
	}

	route.Employee = employee
	return s.toResponse(route), nil
}

func (s *collectionRouteService) GetRoute(ctx context.Context, id string) (RouteResponse, error) {
	routeID, err := parseUUID("route id", id)
	if err != nil {
		return RouteResponse{}, err
	}
	route, err := s.routeRepo.FindByID(ctx, routeID)
	if err != nil {
		return RouteResponse{}, notFoundOr(err, "collection route")
	}
	return s.toResponse(*route), nil
}

func (s *collectionRouteService) ListRoutes(ctx context.Context, q ListRoutesQuery) ([]RouteResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := repository.RouteFilter{Page: page, Limit: limit}
	if q.Status != "" {
		status := model.RouteStatus(q.Status)
		if !status.Valid() {
			return nil, 0, apperr.Validation("invalid status: %q", q.Status)
		}
		filter.Status = status
	}
	if q.Priority != "" {
		priority := model.RoutePriority(q.Priority)
		if !priority.Valid() {
			return nil, 0, apperr.Validation("invalid priority: %q", q.Priority)
		}
		filter.Priority = priority
	}
	if q.EmployeeID != "" {
		employeeID, err := parseUUID("employee_id", q.EmployeeID)
		if err != nil {
			return nil, 0, err
		}
		filter.EmployeeID = &employeeID
	}
	if q.LoanID != "" {
		loanID, err := parseUUID("loan_id", q.LoanID)
		if err != nil {
			return nil, 0, err
		}
		filter.LoanID = &loanID
	}

	routes, total, err := s.routeRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch collection routes: %w", err)
	}

	result := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		result = append(result, s.toResponse(r))
	}
	return result, total, nil
}

func (s *collectionRouteService) UpdateRoute(ctx context.Context, id string, req UpdateRouteRequest) (RouteResponse, error) {
	routeID, err := parseUUID("route id", id)
	if err != nil {
		return RouteResponse{}, err
	}
	route, err := s.routeRepo.FindByID(ctx, routeID)
	if err != nil {
		return RouteResponse{}, notFoundOr(err, "collection route")
	}

	if req.Status != nil {
		status := model.RouteStatus(*req.Status)
		if !status.Valid() {
			return RouteResponse{}, apperr.Validation("invalid status: %q", *req.Status)
		}
		route.Status = status
		// Completion stamps the date unless the caller supplies one
		if status == model.RouteCompleted && route.CompletedDate == nil && req.CompletedDate == nil {
			completed := s.now()
			route.CompletedDate = &completed
		}
	}
	if req.Priority != nil {
		priority := model.RoutePriority(*req.Priority)
		if !priority.Valid() {
			return RouteResponse{}, apperr.Validation("invalid priority: %q", *req.Priority)
		}
		route.Priority = priority
	}
	if req.ScheduledDate != nil {
		if *req.ScheduledDate == "" {
			route.ScheduledDate = nil
		} else {
			parsed, parseErr := parseDate("scheduled_date", *req.ScheduledDate)
			if parseErr != nil {
				return RouteResponse{}, parseErr
			}
			route.ScheduledDate = &parsed
		}
	}
	if req.CompletedDate != nil {
		if *req.CompletedDate == "" {
			route.CompletedDate = nil
		} else {
			parsed, parseErr := parseDate("completed_date", *req.CompletedDate)
			if parseErr != nil {
				return RouteResponse{}, parseErr
			}
			route.CompletedDate = &parsed
		}
	}
	if req.VisitAttempts != nil {
		if *req.VisitAttempts < 0 {
			return RouteResponse{}, apperr.Validation("visit_attempts cannot be negative")
		}
		route.VisitAttempts = *req.VisitAttempts
	}
	if req.ContactAttempts != nil {
		if *req.ContactAttempts < 0 {
			return RouteResponse{}, apperr.Validation("contact_attempts cannot be negative")
		}
		route.ContactAttempts = *req.ContactAttempts
	}
	if req.AmountCollected != nil {
		if *req.AmountCollected == "" {
			route.AmountCollected = nil
		} else {
			amount, parseErr := parseDecimal("amount_collected", *req.AmountCollected)
			if parseErr != nil {
				return RouteResponse{}, parseErr
			}
			if amount.LessThan(decimal.Zero) {
				return RouteResponse{}, apperr.Validation("amount_collected cannot be negative")
			}
			route.AmountCollected = &amount
		}
	}
	if req.Notes != nil {
		route.Notes = *req.Notes
	}
	if req.CollectionNotes != nil {
		route.CollectionNotes = *req.CollectionNotes
	}
	if req.ClientAddress != nil {
		route.ClientAddress = *req.ClientAddress
	}
	if req.GPSCoordinates != nil {
		route.GPSCoordinates = *req.GPSCoordinates
	}

	if err := s.routeRepo.Update(ctx, route); err != nil {
		return RouteResponse{}, fmt.Errorf("failed to update collection route: %w", err)
	}
	return s.toResponse(*route), nil
}

func (s *collectionRouteService) DeleteRoute(ctx context.Context, id string) error {
	routeID, err := parseUUID("route id", id)
	if err != nil {
		return err
	}
	if _, err := s.routeRepo.FindByID(ctx, routeID); err != nil {
		return notFoundOr(err, "collection route")
	}
	if err := s.routeRepo.Delete(ctx, routeID); err != nil {
		return fmt.Errorf("failed to delete collection route: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *collectionRouteService) toResponse(r model.CollectionRoute) RouteResponse {
	now := s.now()
	resp := RouteResponse{
		ID:                  r.ID.String(),
		EmployeeID:          r.EmployeeID.String(),
		LoanID:              r.LoanID.String(),
		AssignmentDate:      r.AssignmentDate.Format(DateLayout),
		Status:              string(r.Status),
		Priority:            string(r.Priority),
		Notes:               r.Notes,
		VisitAttempts:       r.VisitAttempts,
		ContactAttempts:     r.ContactAttempts,
		CollectionNotes:     r.CollectionNotes,
		ClientAddress:       r.ClientAddress,
		GPSCoordinates:      r.GPSCoordinates,
		IsOverdue:           r.IsOverdue(now),
		DaysSinceAssignment: r.DaysSinceAssignment(now),
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ScheduledDate != nil {
		d := r.ScheduledDate.Format(DateLayout)
		resp.ScheduledDate = &d
	}
	if r.CompletedDate != nil {
		d := r.CompletedDate.Format(DateLayout)
		resp.CompletedDate = &d
	}
	if r.AmountCollected != nil {
		a := r.AmountCollected.StringFixed(2)
		resp.AmountCollected = &a
	}
	if r.Employee != nil {
		resp.EmployeeName = r.Employee.FullName()
	}
	return resp
}
