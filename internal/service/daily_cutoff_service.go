package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"
	"github.com/paytrack/paytrack-api/internal/model"
	"github.com/paytrack/paytrack-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateCutoffRequest struct {
	CutoffDate    string `json:"cutoff_date" binding:"required"` // YYYY-MM-DD
	ResponsibleID string `json:"responsible_id" binding:"required"`

	PaymentsReceived  string `json:"payments_received"`
	InterestCollected string `json:"interest_collected"`
	LateFeesCollected string `json:"late_fees_collected"`
	OtherIncome       string `json:"other_income"`

	OperationalExpenses string `json:"operational_expenses"`
	SalaryPayments      string `json:"salary_payments"`
	LoanDisbursements   string `json:"loan_disbursements"`
	OtherExpenses       string `json:"other_expenses"`

	InitialCash string `json:"initial_cash"`
	FinalCash   string `json:"final_cash"`

	TotalTransactions int `json:"total_transactions"`
	LoansGranted      int `json:"loans_granted"`
	PaymentsCollected int `json:"payments_collected"`

	BankDeposits    string `json:"bank_deposits"`
	BankWithdrawals string `json:"bank_withdrawals"`
	BankBalance     string `json:"bank_balance"`

	Notes         string `json:"notes"`
	Discrepancies string `json:"discrepancies"`
}

// UpdateCutoffRequest patches an open cutoff. Nil fields are left untouched.
type UpdateCutoffRequest struct {
	PaymentsReceived  *string `json:"payments_received"`
	InterestCollected *string `json:"interest_collected"`
	LateFeesCollected *string `json:"late_fees_collected"`
	OtherIncome       *string `json:"other_income"`

	OperationalExpenses *string `json:"operational_expenses"`
	SalaryPayments      *string `json:"salary_payments"`
	LoanDisbursements   *string `json:"loan_disbursements"`
	OtherExpenses       *string `json:"other_expenses"`

	InitialCash *string `json:"initial_cash"`
	FinalCash   *string `json:"final_cash"`

	TotalTransactions *int `json:"total_transactions"`
	LoansGranted      *int `json:"loans_granted"`
	PaymentsCollected *int `json:"payments_collected"`

	BankDeposits    *string `json:"bank_deposits"`
	BankWithdrawals *string `json:"bank_withdrawals"`
	BankBalance     *string `json:"bank_balance"`

	Notes         *string `json:"notes"`
	Discrepancies *string `json:"discrepancies"`
}

type CutoffResponse struct {
	ID              string `json:"id"`
	CutoffDate      string `json:"cutoff_date"`
	ResponsibleID   string `json:"responsible_id"`
	ResponsibleName string `json:"responsible_name,omitempty"`

	TotalIncome   string `json:"total_income"`
	TotalExpenses string `json:"total_expenses"`
	Profit        string `json:"profit"`

	PaymentsReceived  string `json:"payments_received"`
	InterestCollected string `json:"interest_collected"`
	LateFeesCollected string `json:"late_fees_collected"`
	OtherIncome       string `json:"other_income"`

	OperationalExpenses string `json:"operational_expenses"`
	SalaryPayments      string `json:"salary_payments"`
	LoanDisbursements   string `json:"loan_disbursements"`
	OtherExpenses       string `json:"other_expenses"`

	InitialCash    string `json:"initial_cash"`
	FinalCash      string `json:"final_cash"`
	CashDifference string `json:"cash_difference"`

	TotalTransactions int `json:"total_transactions"`
	LoansGranted      int `json:"loans_granted"`
	PaymentsCollected int `json:"payments_collected"`

	IsClosed    bool    `json:"is_closed"`
	ClosureTime *string `json:"closure_time"`

	Notes         string `json:"notes"`
	Discrepancies string `json:"discrepancies"`

	BankDeposits    string  `json:"bank_deposits"`
	BankWithdrawals string  `json:"bank_withdrawals"`
	BankBalance     *string `json:"bank_balance"`

	NetCashFlow              string `json:"net_cash_flow"`
	ProfitMargin             string `json:"profit_margin"`
	AverageTransactionAmount string `json:"average_transaction_amount"`
	HasDiscrepancies         bool   `json:"has_discrepancies"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListCutoffsQuery struct {
	ResponsibleID string
	CutoffDate    string
	DateFrom      string
	DateTo        string
	Closed        *bool
	Page          int
	Limit         int
}

// --- Interface ---

type DailyCutoffService interface {
	CreateCutoff(ctx context.Context, userID string, req CreateCutoffRequest) (CutoffResponse, error)
	GetCutoff(ctx context.Context, id string) (CutoffResponse, error)
	ListCutoffs(ctx context.Context, q ListCutoffsQuery) ([]CutoffResponse, int64, error)
	UpdateCutoff(ctx context.Context, userID, id string, req UpdateCutoffRequest) (CutoffResponse, error)
	CloseCutoff(ctx context.Context, userID, id string) (CutoffResponse, error)
	DeleteCutoff(ctx context.Context, userID, id string) error
}

type dailyCutoffService struct {
	cutoffRepo repository.DailyCutoffRepository
	userRepo   repository.UserRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	events     EventPublisher
	now        clock
}

func NewDailyCutoffService(
	cutoffRepo repository.DailyCutoffRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) DailyCutoffService {
	return &dailyCutoffService{
		cutoffRepo: cutoffRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		events:     events,
		now:        time.Now,
	}
}

// --- Implementation ---

func (s *dailyCutoffService) CreateCutoff(ctx context.Context, userID string, req CreateCutoffRequest) (CutoffResponse, error) {
	responsibleID, err := parseUUID("responsible_id", req.ResponsibleID)
	if err != nil {
		return CutoffResponse{}, err
	}
	cutoffDate, err := parseDate("cutoff_date", req.CutoffDate)
	if err != nil {
		return CutoffResponse{}, err
	}

	responsible, err := s.userRepo.FindByID(ctx, responsibleID)
	if err != nil {
		return CutoffResponse{}, notFoundOr(err, "responsible user")
	}

	// One cutoff per employee per day
	if _, err := s.cutoffRepo.FindByDateAndResponsible(ctx, cutoffDate, responsibleID); err == nil {
		return CutoffResponse{}, apperr.Conflict("a cutoff already exists for %s on %s",
			responsible.FullName(), cutoffDate.Format(DateLayout))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return CutoffResponse{}, fmt.Errorf("failed to check existing cutoff: %w", err)
	}

	cutoff := model.DailyCutoff{
		CutoffDate:    cutoffDate,
		ResponsibleID: responsibleID,
		Notes:         req.Notes,
		Discrepancies: req.Discrepancies,

		TotalTransactions: req.TotalTransactions,
		LoansGranted:      req.LoansGranted,
		PaymentsCollected: req.PaymentsCollected,
	}

	fields := []struct {
		name  string
		value string
		dst   *decimal.Decimal
	}{
		{"payments_received", req.PaymentsReceived, &cutoff.PaymentsReceived},
		{"interest_collected", req.InterestCollected, &cutoff.InterestCollected},
		{"late_fees_collected", req.LateFeesCollected, &cutoff.LateFeesCollected},
		{"other_income", req.OtherIncome, &cutoff.OtherIncome},
		{"operational_expenses", req.OperationalExpenses, &cutoff.OperationalExpenses},
		{"salary_payments", req.SalaryPayments, &cutoff.SalaryPayments},
		{"loan_disbursements", req.LoanDisbursements, &cutoff.LoanDisbursements},
		{"other_expenses", req.OtherExpenses, &cutoff.OtherExpenses},
		{"initial_cash", req.InitialCash, &cutoff.InitialCash},
		{"final_cash", req.FinalCash, &cutoff.FinalCash},
		{"bank_deposits", req.BankDeposits, &cutoff.BankDeposits},
		{"bank_withdrawals", req.BankWithdrawals, &cutoff.BankWithdrawals},
	}
	for _, f := range fields {
		if f.value == "" {
			*f.dst = decimal.Zero
			continue
		}
		parsed, parseErr := parseDecimal(f.name, f.value)
		if parseErr != nil {
			return CutoffResponse{}, parseErr
		}
		if parsed.IsNegative() {
			return CutoffResponse{}, apperr.Validation("%s cannot be negative", f.name)
		}
		*f.dst = parsed
	}
	if req.BankBalance != "" {
		balance, parseErr := parseDecimal("bank_balance", req.BankBalance)
		if parseErr != nil {
			return CutoffResponse{}, parseErr
		}
		cutoff.BankBalance = &balance
	}

	recomputeCutoffTotals(&cutoff)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.cutoffRepo.Create(txCtx, &cutoff); createErr != nil {
			return fmt.Errorf("failed to create cutoff: %w", createErr)
		}
		return s.audit(txCtx, userID, model.ActionCreateCutoff, &cutoff)
	})
	if err != nil {
		return CutoffResponse{}, err
	}

	cutoff.Responsible = responsible
	return toCutoffResponse(cutoff), nil
}

func (s *dailyCutoffService) GetCutoff(ctx context.Context, id string) (CutoffResponse, error) {
	cutoffID, err := parseUUID("cutoff id", id)
	if err != nil {
		return CutoffResponse{}, err
	}
	cutoff, err := s.cutoffRepo.FindByID(ctx, cutoffID)
	if err != nil {
		return CutoffResponse{}, notFoundOr(err, "cutoff")
	}
	return toCutoffResponse(*cutoff), nil
}

func (s *dailyCutoffService) ListCutoffs(ctx context.Context, q ListCutoffsQuery) ([]CutoffResponse, int64, error) {
	page, limit := normalizePage(q.Page, q.Limit)

	filter := repository.CutoffFilter{Closed: q.Closed, Page: page, Limit: limit}
	if q.ResponsibleID != "" {
		responsibleID, err := parseUUID("responsible_id", q.ResponsibleID)
		if err != nil {
			return nil, 0, err
		}
		filter.ResponsibleID = &responsibleID
	}
	if q.CutoffDate != "" {
		date, err := parseDate("cutoff_date", q.CutoffDate)
		if err != nil {
			return nil, 0, err
		}
		filter.CutoffDate = &date
	}
	if q.DateFrom != "" {
		from, err := parseDate("date_from", q.DateFrom)
		if err != nil {
			return nil, 0, err
		}
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, err := parseDate("date_to", q.DateTo)
		if err != nil {
			return nil, 0, err
		}
		filter.DateTo = &to
	}

	cutoffs, total, err := s.cutoffRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cutoffs: %w", err)
	}

	result := make([]CutoffResponse, 0, len(cutoffs))
	for _, c := range cutoffs {
		result = append(result, toCutoffResponse(c))
	}
	return result, total, nil
}

func (s *dailyCutoffService) UpdateCutoff(ctx context.Context, userID, id string, req UpdateCutoffRequest) (CutoffResponse, error) {
	cutoffID, err := parseUUID("cutoff id", id)
	if err != nil {
		return CutoffResponse{}, err
	}
	cutoff, err := s.cutoffRepo.FindByID(ctx, cutoffID)
	if err != nil {
		return CutoffResponse{}, notFoundOr(err, "cutoff")
	}
	if cutoff.IsClosed {
		return CutoffResponse{}, apperr.State("closed cutoffs cannot be edited")
	}

	fields := []struct {
		name  string
		value *string
		dst   *decimal.Decimal
	}{
		{"payments_received", req.PaymentsReceived, &cutoff.PaymentsReceived},
		{"interest_collected", req.InterestCollected, &cutoff.InterestCollected},
		{"late_fees_collected", req.LateFeesCollected, &cutoff.LateFeesCollected},
		{"other_income", req.OtherIncome, &cutoff.OtherIncome},
		{"operational_expenses", req.OperationalExpenses, &cutoff.OperationalExpenses},
		{"salary_payments", req.SalaryPayments, &cutoff.SalaryPayments},
		{"loan_disbursements", req.LoanDisbursements, &cutoff.LoanDisbursements},
		{"other_expenses", req.OtherExpenses, &cutoff.OtherExpenses},
		{"initial_cash", req.InitialCash, &cutoff.InitialCash},
		{"final_cash", req.FinalCash, &cutoff.FinalCash},
		{"bank_deposits", req.BankDeposits, &cutoff.BankDeposits},
		{"bank_withdrawals", req.BankWithdrawals, &cutoff.BankWithdrawals},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		parsed, parseErr := parseDecimal(f.name, *f.value)
		if parseErr != nil {
			return CutoffResponse{}, parseErr
		}
		if parsed.IsNegative() {
			return CutoffResponse{}, apperr.Validation("%s cannot be negative", f.name)
		}
		*f.dst = parsed
	}
	if req.BankBalance != nil {
		if *req.BankBalance == "" {
			cutoff.BankBalance = nil
		} else {
			balance, parseErr := parseDecimal("bank_balance", *req.BankBalance)
			if parseErr != nil {
				return CutoffResponse{}, parseErr
			}
			cutoff.BankBalance = &balance
		}
	}
	if req.TotalTransactions != nil {
		cutoff.TotalTransactions = *req.TotalTransactions
	}
	if req.LoansGranted != nil {
		cutoff.LoansGranted = *req.LoansGranted
	}
	if req.PaymentsCollected != nil {
		cutoff.PaymentsCollected = *req.PaymentsCollected
	}
	if req.Notes != nil {
		cutoff.Notes = *req.Notes
	}
	if req.Discrepancies != nil {
		cutoff.Discrepancies = *req.Discrepancies
	}

	recomputeCutoffTotals(cutoff)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.cutoffRepo.Update(txCtx, cutoff); updateErr != nil {
			return fmt.Errorf("failed to update cutoff: %w", updateErr)
		}
		return s.audit(txCtx, userID, model.ActionUpdateCutoff, cutoff)
	})
	if err != nil {
		return CutoffResponse{}, err
	}

	return toCutoffResponse(*cutoff), nil
}

func (s *dailyCutoffService) CloseCutoff(ctx context.Context, userID, id string) (CutoffResponse, error) {
	cutoffID, err := parseUUID("cutoff id", id)
	if err != nil {
		return CutoffResponse{}, err
	}
	cutoff, err := s.cutoffRepo.FindByID(ctx, cutoffID)
	if err != nil {
		return CutoffResponse{}, notFoundOr(err, "cutoff")
	}
	if cutoff.IsClosed {
		return CutoffResponse{}, apperr.State("cutoff is already closed")
	}

	closure := s.now()
	cutoff.IsClosed = true
	cutoff.ClosureTime = &closure

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.cutoffRepo.Update(txCtx, cutoff); updateErr != nil {
			return fmt.Errorf("failed to close cutoff: %w", updateErr)
		}
		return s.audit(txCtx, userID, model.ActionCloseCutoff, cutoff)
	})
	if err != nil {
		return CutoffResponse{}, err
	}

	publish(s.events, "cutoff.closed", toCutoffResponse(*cutoff))
	return toCutoffResponse(*cutoff), nil
}

func (s *dailyCutoffService) DeleteCutoff(ctx context.Context, userID, id string) error {
	cutoffID, err := parseUUID("cutoff id", id)
	if err != nil {
		return err
	}
	cutoff, err := s.cutoffRepo.FindByID(ctx, cutoffID)
	if err != nil {
		return notFoundOr(err, "cutoff")
	}
	if cutoff.IsClosed {
		return apperr.State("closed cutoffs cannot be deleted")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.cutoffRepo.Delete(txCtx, cutoffID); deleteErr != nil {
			return fmt.Errorf("failed to delete cutoff: %w", deleteErr)
		}
		return s.audit(txCtx, userID, model.ActionDeleteCutoff, cutoff)
	})
}

// --- Helpers ---

// recomputeCutoffTotals rebuilds totals, profit and the drawer difference
// from the breakdown fields.
func recomputeCutoffTotals(c *model.DailyCutoff) {
	c.TotalIncome = c.PaymentsReceived.
		Add(c.InterestCollected).
		Add(c.LateFeesCollected).
		Add(c.OtherIncome)
	c.TotalExpenses = c.OperationalExpenses.
		Add(c.SalaryPayments).
		Add(c.LoanDisbursements).
		Add(c.OtherExpenses)
	c.Profit = c.TotalIncome.Sub(c.TotalExpenses)

	expected := c.InitialCash.Add(c.TotalIncome).Sub(c.TotalExpenses)
	c.CashDifference = c.FinalCash.Sub(expected)
}

func (s *dailyCutoffService) audit(ctx context.Context, userID, action string, cutoff *model.DailyCutoff) error {
	details, _ := json.Marshal(map[string]interface{}{
		"cutoff_date":    cutoff.CutoffDate.Format(DateLayout),
		"responsible_id": cutoff.ResponsibleID.String(),
		"total_income":   cutoff.TotalIncome.String(),
		"total_expenses": cutoff.TotalExpenses.String(),
		"is_closed":      cutoff.IsClosed,
	})
	entry := &model.AuditLog{
		UserID:     auditUserID(userID),
		Action:     action,
		EntityID:   cutoff.ID.String(),
		EntityName: cutoff.CutoffDate.Format(DateLayout),
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toCutoffResponse(c model.DailyCutoff) CutoffResponse {
	resp := CutoffResponse{
		ID:            c.ID.String(),
		CutoffDate:    c.CutoffDate.Format(DateLayout),
		ResponsibleID: c.ResponsibleID.String(),

		TotalIncome:   c.TotalIncome.StringFixed(2),
		TotalExpenses: c.TotalExpenses.StringFixed(2),
		Profit:        c.Profit.StringFixed(2),

		PaymentsReceived:  c.PaymentsReceived.StringFixed(2),
		InterestCollected: c.InterestCollected.StringFixed(2),
		LateFeesCollected: c.LateFeesCollected.StringFixed(2),
		OtherIncome:       c.OtherIncome.StringFixed(2),

		OperationalExpenses: c.OperationalExpenses.StringFixed(2),
		SalaryPayments:      c.SalaryPayments.StringFixed(2),
		LoanDisbursements:   c.LoanDisbursements.StringFixed(2),
		OtherExpenses:       c.OtherExpenses.StringFixed(2),

		InitialCash:    c.InitialCash.StringFixed(2),
		FinalCash:      c.FinalCash.StringFixed(2),
		CashDifference: c.CashDifference.StringFixed(2),

		TotalTransactions: c.TotalTransactions,
		LoansGranted:      c.LoansGranted,
		PaymentsCollected: c.PaymentsCollected,

		IsClosed:      c.IsClosed,
		Notes:         c.Notes,
		Discrepancies: c.Discrepancies,

		BankDeposits:    c.BankDeposits.StringFixed(2),
		BankWithdrawals: c.BankWithdrawals.StringFixed(2),

		NetCashFlow:              c.NetCashFlow().StringFixed(2),
		ProfitMargin:             c.ProfitMargin().StringFixed(2),
		AverageTransactionAmount: c.AverageTransactionAmount().StringFixed(2),
		HasDiscrepancies:         c.HasDiscrepancies(),

		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
	if c.ClosureTime != nil {
		t := c.ClosureTime.Format(time.RFC3339)
		resp.ClosureTime = &t
	}
	if c.BankBalance != nil {
		b := c.BankBalance.StringFixed(2)
		resp.BankBalance = &b
	}
	if c.Responsible != nil {
		resp.ResponsibleName = c.Responsible.FullName()
	}
	return resp
}
