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

type CreateLoanRequest struct {
	ClientID     string `json:"client_id" binding:"required"`
	AuthorizerID string `json:"authorizer_id" binding:"required"`

	Amount           string `json:"amount" binding:"required"` // Decimal string
	PaymentCount     int    `json:"payment_count" binding:"required"`
	InterestRate     string `json:"interest_rate" binding:"required"`
	PaymentStartDate string `json:"payment_start_date" binding:"required"` // YYYY-MM-DD
	LateInterest     string `json:"late_interest"`
}

// UpdateLoanRequest patches a pending loan. Nil fields are left untouched.
type UpdateLoanRequest struct {
	Amount           *string `json:"amount"`
	PaymentCount     *int    `json:"payment_count"`
	InterestRate     *string `json:"interest_rate"`
	PaymentStartDate *string `json:"payment_start_date"`
	LateInterest     *string `json:"late_interest"`
}

type LoanResponse struct {
	ID             string `json:"id"`
	ClientID       string `json:"client_id"`
	ClientName     string `json:"client_name,omitempty"`
	AuthorizerID   string `json:"authorizer_id"`
	AuthorizerName string `json:"authorizer_name,omitempty"`

	Amount           string `json:"amount"`
	PaymentCount     int    `json:"payment_count"`
	InterestRate     string `json:"interest_rate"`
	PaymentStartDate string `json:"payment_start_date"`
	LateInterest     string `json:"late_interest"`

	Status          string `json:"status"`
	TotalAmount     string `json:"total_amount"`
	RemainingAmount string `json:"remaining_amount"`
	PaymentAmount   string `json:"payment_amount"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListLoansQuery struct {
	Status       string
	ClientID     string
	AuthorizerID string
	Search       string
	Page         int
	Limit        int
}

// --- Interface ---

type LoanService interface {
	CreateLoan(ctx context.Context, userID string, req CreateLoanRequest) (LoanResponse, error)
	GetLoan(ctx context.Context, id string) (LoanResponse, error)
	ListLoans(ctx context.Context, q ListLoansQuery) ([]LoanResponse, int64, error)
	UpdateLoan(ctx context.Context, userID, id string, req UpdateLoanRequest) (LoanResponse, error)
	ApproveLoan(ctx context.Context, userID, id string) (LoanResponse, error)
	RejectLoan(ctx context.Context, userID, id string) (LoanResponse, error)
	DeleteLoan(ctx context.Context, userID, id string) error
}

type loanService struct {
	loanRepo   repository.LoanRepository
	clientRepo repository.ClientRepository
	userRepo   repository.UserRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	events     EventPublisher
	now        clock
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) LoanService {
	return &loanService{
		loanRepo:   loanRepo,
		clientRepo: clientRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		events:     events,
		now:        time.Now,
	}
}

// --- Implementation ---

func (s *loanService) CreateLoan(ctx context.Context, userID string, req CreateLoanRequest) (LoanResponse, error) {
	clientID, err := parseUUID("client_id", req.ClientID)
	if err != nil {
		return LoanResponse{}, err
	}
	authorizerID, err := parseUUID("authorizer_id", req.AuthorizerID)
	if err != nil {
		return LoanResponse{}, err
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return LoanResponse{}, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return LoanResponse{}, apperr.Validation("amount must be greater than 0")
	}

	if req.PaymentCount <= 0 || req.PaymentCount > model.MaxLoanPaymentCount {
		return LoanResponse{}, apperr.Validation("payment_count must be between 1 and %d", model.MaxLoanPaymentCount)
	}

	interestRate, err := parseDecimal("interest_rate", req.InterestRate)
	if err != nil {
		return LoanResponse{}, err
	}
	if interestRate.IsNegative() || interestRate.GreaterThan(decimal.NewFromInt(1)) {
		return LoanResponse{}, apperr.Validation("interest_rate must be between 0 and 1")
	}

	lateInterest := decimal.Zero
	if req.LateInterest != "" {
		lateInterest, err = parseDecimal("late_interest", req.LateInterest)
		if err != nil {
			return LoanResponse{}, err
		}
		if lateInterest.IsNegative() || lateInterest.GreaterThan(decimal.NewFromInt(1)) {
			return LoanResponse{}, apperr.Validation("late_interest must be between 0 and 1")
		}
	}

	startDate, err := parseDate("payment_start_date", req.PaymentStartDate)
	if err != nil {
		return LoanResponse{}, err
	}
	today := s.now().Truncate(24 * time.Hour)
	if startDate.Before(today) {
		return LoanResponse{}, apperr.Validation("payment_start_date cannot be in the past")
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return LoanResponse{}, notFoundOr(err, "client")
	}
	if !client.IsActive() {
		return LoanResponse{}, apperr.State("client %s is not active", client.FullName())
	}

	authorizer, err := s.userRepo.FindByID(ctx, authorizerID)
	if err != nil {
		return LoanResponse{}, notFoundOr(err, "authorizer")
	}
	if !authorizer.IsActive() {
		return LoanResponse{}, apperr.State("authorizer is not active")
	}

	loan := model.Loan{
		ClientID:         clientID,
		AuthorizerID:     authorizerID,
		Amount:           amount,
		PaymentCount:     req.PaymentCount,
		InterestRate:     interestRate,
		PaymentStartDate: startDate,
		LateInterest:     lateInterest,
		Status:           model.LoanPendingApproval,
	}
	loan.RecomputeDerived()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.loanRepo.Create(txCtx, &loan); createErr != nil {
			return fmt.Errorf("failed to create loan: %w", createErr)
		}
		return s.audit(txCtx, userID, model.ActionCreateLoan, &loan, client.FullName())
	})
	if err != nil {
		return LoanResponse{}, err
	}

	loan.Client = client
	loan.Authorizer = authorizer
	return toLoanResponse(loan), nil
}

func (s *loanService) GetLoan(ctx context.Context, id string) (LoanResponse, error) {
	loanID, err := parseUUID("loan id", id)
	if err != nil {
		return LoanResponse{}, err
	}
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return LoanResponse{}, notFoundOr(err, "loan")
	}
	return toLoanResponse(*loan), nil
}

func (s *loanService) ListLoans(ctx context.Context, q ListLoansQuery) ([]LoanResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := repository.LoanFilter{Search: q.Search, Page: page, Limit: limit}
	if q.Status != "" {
		status := model.LoanStatus(q.Status)
		if !status.Valid() {
			return nil, 0, apperr.Validation("invalid status: %q", q.Status)
		}
		filter.Status = status
	}
	if q.ClientID != "" {
		clientID, err := parseUUID("client_id", q.ClientID)
		if err != nil {
			return nil, 0, err
		}
		filter.ClientID = &clientID
	}
	if q.AuthorizerID != "" {
		authorizerID, err := parseUUID("authorizer_id", q.AuthorizerID)
		if err != nil {
			return nil, 0, err
		}
		filter.AuthorizerID = &authorizerID
	}

	loans, total, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch loans: %w", err)
	}

	result := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		result = append(result, toLoanResponse(l))
	}
	return result, total, nil
}

func (s *loanService) UpdateLoan(ctx context.Context, userID, id string, req UpdateLoanRequest) (LoanResponse, error) {
	loanID, err := parseUUID("loan id", id)
	if err != nil {
		return LoanResponse{}, err
	}
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return LoanResponse{}, notFoundOr(err, "loan")
	}
	if loan.Status != model.LoanPendingApproval {
		return LoanResponse{}, apperr.State("only loans pending approval can be edited")
	}

	termsChanged := false

	if req.Amount != nil {
		amount, parseErr := parseDecimal("amount", *req.Amount)
		if parseErr != nil {
			return LoanResponse{}, parseErr
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return LoanResponse{}, apperr.Validation("amount must be greater than 0")
		}
		loan.Amount = amount
		termsChanged = true
	}
	if req.InterestRate != nil {
		rate, parseErr := parseDecimal("interest_rate", *req.InterestRate)
		if parseErr != nil {
			return LoanResponse{}, parseErr
		}
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return LoanResponse{}, apperr.Validation("interest_rate must be between 0 and 1")
		}
		loan.InterestRate = rate
		termsChanged = true
	}
	if req.PaymentCount != nil {
		if *req.PaymentCount <= 0 || *req.PaymentCount > model.MaxLoanPaymentCount {
			return LoanResponse{}, apperr.Validation("payment_count must be between 1 and %d", model.MaxLoanPaymentCount)
		}
		loan.PaymentCount = *req.PaymentCount
	}
	if req.PaymentStartDate != nil {
		startDate, parseErr := parseDate("payment_start_date", *req.PaymentStartDate)
		if parseErr != nil {
			return LoanResponse{}, parseErr
		}
		loan.PaymentStartDate = startDate
	}
	if req.LateInterest != nil {
		late, parseErr := parseDecimal("late_interest", *req.LateInterest)
		if parseErr != nil {
			return LoanResponse{}, parseErr
		}
		if late.IsNegative() || late.GreaterThan(decimal.NewFromInt(1)) {
			return LoanResponse{}, apperr.Validation("late_interest must be between 0 and 1")
		}
		loan.LateInterest = late
	}

	// Totals track the amount and the rate; other fields never move them
	if termsChanged {
		loan.RecomputeDerived()
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.loanRepo.Update(txCtx, loan); updateErr != nil {
			return fmt.Errorf("failed to update loan: %w", updateErr)
		}
		return s.audit(txCtx, userID, model.ActionUpdateLoan, loan, clientName(loan))
	})
	if err != nil {
		return LoanResponse{}, err
	}

	return toLoanResponse(*loan), nil
}

func (s *loanService) ApproveLoan(ctx context.Context, userID, id string) (LoanResponse, error) {
	loan, err := s.transition(ctx, userID, id, model.LoanActive, model.ActionApproveLoan)
	if err != nil {
		return LoanResponse{}, err
	}
	publish(s.events, "loan.approved", toLoanResponse(*loan))
	return toLoanResponse(*loan), nil
}

func (s *loanService) RejectLoan(ctx context.Context, userID, id string) (LoanResponse, error) {
	loan, err := s.transition(ctx, userID, id, model.LoanCancelled, model.ActionRejectLoan)
	if err != nil {
		return LoanResponse{}, err
	}
	return toLoanResponse(*loan), nil
}

// transition moves a pending loan to its approval verdict. Approve and
// reject share the same guard: anything past pending_approval refuses.
func (s *loanService) transition(ctx context.Context, userID, id string, target model.LoanStatus, action string) (*model.Loan, error) {
	loanID, err := parseUUID("loan id", id)
	if err != nil {
		return nil, err
	}
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, notFoundOr(err, "loan")
	}
	if loan.Status != model.LoanPendingApproval {
		return nil, apperr.State("loan is %s, only loans pending approval can be resolved", loan.Status)
	}

	loan.Status = target
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.loanRepo.Update(txCtx, loan); updateErr != nil {
			return fmt.Errorf("failed to update loan: %w", updateErr)
		}
		return s.audit(txCtx, userID, action, loan, clientName(loan))
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) DeleteLoan(ctx context.Context, userID, id string) error {
	loanID, err := parseUUID("loan id", id)
	if err != nil {
		return err
	}
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return notFoundOr(err, "loan")
	}
	if loan.Status != model.LoanPendingApproval && loan.Status != model.LoanCancelled {
		return apperr.State("loan is %s, only pending or cancelled loans can be deleted", loan.Status)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.loanRepo.Delete(txCtx, loanID); deleteErr != nil {
			return fmt.Errorf("failed to delete loan: %w", deleteErr)
		}
		return s.audit(txCtx, userID, model.ActionDeleteLoan, loan, clientName(loan))
	})
}

// --- Helpers ---

func (s *loanService) audit(ctx context.Context, userID, action string, loan *model.Loan, entityName string) error {
	details, _ := json.Marshal(map[string]interface{}{
		"client_id":     loan.ClientID.String(),
		"amount":        loan.Amount.String(),
		"interest_rate": loan.InterestRate.String(),
		"payment_count": loan.PaymentCount,
		"total_amount":  loan.TotalAmount.String(),
		"status":        loan.Status,
	})
	entry := &model.AuditLog{
		UserID:     auditUserID(userID),
		Action:     action,
		EntityID:   loan.ID.String(),
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func clientName(loan *model.Loan) string {
	if loan.Client != nil {
		return loan.Client.FullName()
	}
	return ""
}

func toLoanResponse(l model.Loan) LoanResponse {
	resp := LoanResponse{
		ID:               l.ID.String(),
		ClientID:         l.ClientID.String(),
		AuthorizerID:     l.AuthorizerID.String(),
		Amount:           l.Amount.StringFixed(2),
		PaymentCount:     l.PaymentCount,
		InterestRate:     l.InterestRate.String(),
		PaymentStartDate: l.PaymentStartDate.Format(DateLayout),
		LateInterest:     l.LateInterest.String(),
		Status:           string(l.Status),
		TotalAmount:      l.TotalAmount.StringFixed(2),
		RemainingAmount:  l.RemainingAmount.StringFixed(2),
		PaymentAmount:    l.PaymentAmount().StringFixed(2),
		CreatedAt:        l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        l.UpdatedAt.Format(time.RFC3339),
	}
	if l.Client != nil {
		resp.ClientName = l.Client.FullName()
	}
	if l.Authorizer != nil {
		resp.AuthorizerName = l.Authorizer.FullName()
	}
	return resp
}
