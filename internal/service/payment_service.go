package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreatePaymentRequest struct {
	ClientID      string `json:"client_id" binding:"required"`
	ResponsibleID string `json:"responsible_id" binding:"required"`

	Amount         string `json:"amount" binding:"required"` // Decimal string
	InterestAmount string `json:"interest_amount"`
	Method         string `json:"payment_method" binding:"required"`
	DueDate        string `json:"due_date"` // YYYY-MM-DD
	Notes          string `json:"notes"`
	Reference      string `json:"reference"`
}

// UpdatePaymentRequest patches an unpaid payment. Nil fields are left untouched.
type UpdatePaymentRequest struct {
	Amount         *string `json:"amount"`
	InterestAmount *string `json:"interest_amount"`
	Method         *string `json:"payment_method"`
	DueDate        *string `json:"due_date"`
	Notes          *string `json:"notes"`
	Reference      *string `json:"reference"`
}

type ProcessPaymentRequest struct {
	PaymentDate string `json:"payment_date" binding:"required"` // YYYY-MM-DD
}

type PaymentResponse struct {
	ID              string `json:"id"`
	ClientID        string `json:"client_id"`
	ClientName      string `json:"client_name,omitempty"`
	ResponsibleID   string `json:"responsible_id"`
	ResponsibleName string `json:"responsible_name,omitempty"`

	Amount         string  `json:"amount"`
	InterestAmount string  `json:"interest_amount"`
	TotalAmount    string  `json:"total_amount"`
	Method         string  `json:"payment_method"`
	Status         string  `json:"status"`
	DueDate        *string `json:"due_date"`
	PaymentDate    *string `json:"payment_date"`
	DaysOverdue    int     `json:"days_overdue"`

	Notes     string `json:"notes"`
	Reference string `json:"reference"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type PaymentSummaryResponse struct {
	TotalPending string `json:"total_pending"`
	TotalPaid    string `json:"total_paid"`
	TotalOverdue string `json:"total_overdue"`
	CountPending int64  `json:"count_pending"`
	CountPaid    int64  `json:"count_paid"`
	CountOverdue int64  `json:"count_overdue"`
}

type ListPaymentsQuery struct {
	Status        string
	Method        string
	ClientID      string
	ResponsibleID string
	Search        string
	Page          int
	Limit         int
}

// --- Interface ---

type PaymentService interface {
	CreatePayment(ctx context.Context, userID string, req CreatePaymentRequest) (PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (PaymentResponse, error)
	ListPayments(ctx context.Context, q ListPaymentsQuery) ([]PaymentResponse, int64, error)
	UpdatePayment(ctx context.Context, userID, id string, req UpdatePaymentRequest) (PaymentResponse, error)
	ProcessPayment(ctx context.Context, userID, id string, req ProcessPaymentRequest) (PaymentResponse, error)
	CancelPayment(ctx context.Context, userID, id string) (PaymentResponse, error)
	MarkPaymentOverdue(ctx context.Context, userID, id string) (PaymentResponse, error)
	DeletePayment(ctx context.Context, userID, id string) error
	GetPaymentSummary(ctx context.Context) (PaymentSummaryResponse, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	events      EventPublisher
	now         clock
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		events:      events,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *paymentService) CreatePayment(ctx context.Context, userID string, req CreatePaymentRequest) (PaymentResponse, error) {
	clientID, err := parseUUID("client_id", req.ClientID)
	if err != nil {
		return PaymentResponse{}, err
	}
	responsibleID, err := parseUUID("responsible_id", req.ResponsibleID)
	if err != nil {
		return PaymentResponse{}, err
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return PaymentResponse{}, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return PaymentResponse{}, apperr.Validation("amount must be greater than 0")
	}

	interest := decimal.Zero
	if req.InterestAmount != "" {
		interest, err = parseDecimal("interest_amount", req.InterestAmount)
		if err != nil {
			return PaymentResponse{}, err
		}
		if interest.IsNegative() {
			return PaymentResponse{}, apperr.Validation("interest_amount cannot be negative")
		}
	}

	method := model.PaymentMethod(req.Method)
	if !method.Valid() {
		return PaymentResponse{}, apperr.Validation("invalid payment_method: %q", req.Method)
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, parseErr := parseDate("due_date", req.DueDate)
		if parseErr != nil {
			return PaymentResponse{}, parseErr
		}
		dueDate = &parsed
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return PaymentResponse{}, notFoundOr(err, "client")
	}
	if !client.IsActive() {
		return PaymentResponse{}, apperr.State("client %s is not active", client.FullName())
	}

	responsible, err := s.userRepo.FindByID(ctx, responsibleID)
	if err != nil {
		return PaymentResponse{}, notFoundOr(err, "responsible user")
	}

	payment := model.Payment{
		ClientID:       clientID,
		ResponsibleID:  responsibleID,
		Amount:         amount,
		InterestAmount: interest,
		Method:         method,
		Status:         model.PaymentPending,
		DueDate:        dueDate,
		Notes:          req.Notes,
		Reference:      req.Reference,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to create payment: %w", createErr)
		}
		return s.audit(txCtx, userID, model.ActionCreatePayment, &payment, client.FullName())
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	payment.Client = client
	payment.Responsible = responsible
	return s.toResponse(payment), nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (PaymentResponse, error) {
	paymentID, err := parseUUID("payment id", id)
	if err != nil {
		return PaymentResponse{}, err
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return PaymentResponse{}, notFoundOr(err, "payment")
	}
	return s.toResponse(*payment), nil
}

func (s *paymentService) ListPayments(ctx context.Context, q ListPaymentsQuery) ([]PaymentResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := repository.PaymentFilter{Search: q.Search, Page: page, Limit: limit}
	if q.Status != "" {
		status := model.PaymentStatus(q.Status)
		if !status.Valid() {
			return nil, 0, apperr.Validation("invalid status: %q", q.Status)
		}
		filter.Status = status
	}
	if q.Method != "" {
		method := model.PaymentMethod(q.Method)
		if !method.Valid() {
			return nil, 0, apperr.Validation("invalid payment_method: %q", q.Method)
		}
		filter.Method = method
	}
	if q.ClientID != "" {
		clientID, err := parseUUID("client_id", q.ClientID)
		if err != nil {
			return nil, 0, err
		}
		filter.ClientID = &clientID
	}
	if q.ResponsibleID != "" {
		responsibleID, err := parseUUID("responsible_id", q.ResponsibleID)
		if err != nil {
			return nil, 0, err
		}
		filter.ResponsibleID = &responsibleID
	}

	payments, total, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, s.toResponse(p))
	}
	return result, total, nil
}

func (s *paymentService) UpdatePayment(ctx context.Context, userID, id string, req UpdatePaymentRequest) (PaymentResponse, error) {
	paymentID, err := parseUUID("payment id", id)
	if err != nil {
		return PaymentResponse{}, err
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return PaymentResponse{}, notFoundOr(err, "payment")
	}
	if payment.IsPaid() {
		return PaymentResponse{}, apperr.State("paid payments cannot be edited")
	}

	if req.Amount != nil {
		amount, parseErr := parseDecimal("amount", *req.Amount)
		if parseErr != nil {
			return PaymentResponse{}, parseErr
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return PaymentResponse{}, apperr.Validation("amount must be greater than 0")
		}
		payment.Amount = amount
	}
	if req.InterestAmount != nil {
		interest, parseErr := parseDecimal("interest_amount", *req.InterestAmount)
		if parseErr != nil {
			return PaymentResponse{}, parseErr
		}
		if interest.IsNegative() {
			return PaymentResponse{}, apperr.Validation("interest_amount cannot be negative")
		}
		payment.InterestAmount = interest
	}
	if req.Method != nil {
		method := model.PaymentMethod(*req.Method)
		if !method.Valid() {
			return PaymentResponse{}, apperr.Validation("invalid payment_method: %q", *req.Method)
		}
		payment.Method = method
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			payment.DueDate = nil
		} else {
			parsed, parseErr := parseDate("due_date", *req.DueDate)
			if parseErr != nil {
				return PaymentResponse{}, parseErr
			}
			payment.DueDate = &parsed
		}
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	if req.Reference != nil {
		payment.Reference = *req.Reference
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.paymentRepo.Update(txCtx, payment); updateErr != nil {
			return fmt.Errorf("failed to update payment: %w", updateErr)
		}
		return s.audit(txCtx, userID, model.ActionUpdatePayment, payment, paymentClientName(payment))
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	return s.toResponse(*payment), nil
}

func (s *paymentService) ProcessPayment(ctx context.Context, userID, id string, req ProcessPaymentRequest) (PaymentResponse, error) {
	if req.PaymentDate == "" {
		return PaymentResponse{}, apperr.Validation("payment_date is required to process a payment")
	}
	paymentDate, err := parseDate("payment_date", req.PaymentDate)
	if err != nil {
		return PaymentResponse{}, err
	}

	paymentID, err := parseUUID("payment id", id)
	if err != nil {
		return PaymentResponse{}, err
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return PaymentResponse{}, notFoundOr(err, "payment")
	}
	if payment.IsPaid() {
		return PaymentResponse{}, apperr.State("payment is already paid")
	}
	if payment.Status == model.PaymentCancelled {
		return PaymentResponse{}, apperr.State("cancelled payments cannot be processed")
	}

	payment.Status = model.PaymentPaid
	payment.PaymentDate = &paymentDate

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.paymentRepo.Update(txCtx, payment); updateErr != nil {
			return fmt.Errorf("failed to process payment: %w", updateErr)
		}
		return s.audit(txCtx, userID, model.ActionProcessPayment, payment, paymentClientName(payment))
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	publish(s.events, "payment.processed", s.toResponse(*payment))
	return s.toResponse(*payment), nil
}

func (s *paymentService) CancelPayment(ctx context.Context, userID, id string) (PaymentResponse, error) {
	return s.flip(ctx, userID, id, model.PaymentCancelled, model.ActionCancelPayment)
}

func (s *paymentService) MarkPaymentOverdue(ctx context.Context, userID, id string) (PaymentResponse, error) {
	return s.flip(ctx, userID, id, model.PaymentOverdue, model.ActionMarkPaymentOverdue)
}

// flip moves an unpaid payment between the non-terminal statuses. Collectors
// routinely bounce payments between overdue and cancelled, so neither is
// treated as final; only paid locks the record.
func (s *paymentService) flip(ctx context.Context, userID, id string, target model.PaymentStatus, action string) (PaymentResponse, error) {
	paymentID, err := parseUUID("payment id", id)
	if err != nil {
		return PaymentResponse{}, err
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return PaymentResponse{}, notFoundOr(err, "payment")
	}
	if payment.IsPaid() {
		return PaymentResponse{}, apperr.State("paid payments cannot change status")
	}

	payment.Status = target
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.paymentRepo.Update(txCtx, payment); updateErr != nil {
			return fmt.Errorf("failed to update payment: %w", updateErr)
		}
		return s.audit(txCtx, userID, action, payment, paymentClientName(payment))
	})
	if err != nil {
		return PaymentResponse{}, err
	}

	return s.toResponse(*payment), nil
}

func (s *paymentService) DeletePayment(ctx context.Context, userID, id string) error {
	paymentID, err := parseUUID("payment id", id)
	if err != nil {
		return err
	}
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return notFoundOr(err, "payment")
	}
	if payment.IsPaid() {
		return apperr.State("paid payments cannot be deleted")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.paymentRepo.Delete(txCtx, paymentID); deleteErr != nil {
			return fmt.Errorf("failed to delete payment: %w", deleteErr)
		}
		return s.audit(txCtx, userID, model.ActionDeletePayment, payment, paymentClientName(payment))
	})
}

func (s *paymentService) GetPaymentSummary(ctx context.Context) (PaymentSummaryResponse, error) {
	summary, err := s.paymentRepo.Summary(ctx)
	if err != nil {
		return PaymentSummaryResponse{}, fmt.Errorf("failed to build payment summary: %w", err)
	}
	return PaymentSummaryResponse{
		TotalPending: summary.TotalPending.StringFixed(2),
		TotalPaid:    summary.TotalPaid.StringFixed(2),
		TotalOverdue: summary.TotalOverdue.StringFixed(2),
		CountPending: summary.CountPending,
		CountPaid:    summary.CountPaid,
		CountOverdue: summary.CountOverdue,
	}, nil
}

// --- Helpers ---

func (s *paymentService) audit(ctx context.Context, userID, action string, payment *model.Payment, entityName string) error {
	details, _ := json.Marshal(map[string]interface{}{
		"client_id":       payment.ClientID.String(),
		"amount":          payment.Amount.String(),
		"interest_amount": payment.InterestAmount.String(),
		"payment_method":  payment.Method,
		"status":          payment.Status,
	})
	entry := &model.AuditLog{
		UserID:     auditUserID(userID),
		Action:     action,
		EntityID:   payment.ID.String(),
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func paymentClientName(p *model.Payment) string {
	if p.Client != nil {
		return p.Client.FullName()
	}
	return ""
}

func (s *paymentService) toResponse(p model.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:             p.ID.String(),
		ClientID:       p.ClientID.String(),
		ResponsibleID:  p.ResponsibleID.String(),
		Amount:         p.Amount.StringFixed(2),
		InterestAmount: p.InterestAmount.StringFixed(2),
		TotalAmount:    p.TotalAmount().StringFixed(2),
		Method:         string(p.Method),
		Status:         string(p.Status),
		DaysOverdue:    p.DaysOverdue(s.now()),
		Notes:          p.Notes,
		Reference:      p.Reference,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      p.UpdatedAt.Format(time.RFC3339),
	}
	if p.DueDate != nil {
		d := p.DueDate.Format(DateLayout)
		resp.DueDate = &d
	}
	if p.PaymentDate != nil {
		d := p.PaymentDate.Format(DateLayout)
		resp.PaymentDate = &d
	}
	if p.Client != nil {
		resp.ClientName = p.Client.FullName()
	}
	if p.Responsible != nil {
		resp.ResponsibleName = p.Responsible.FullName()
	}
	return resp
}
