package model

import "github.com/shopspring/decimal"

// PaymentSummary rolls up payment totals (amount + interest) and counts per
// status. Empty groups report zero, never null.
type PaymentSummary struct {
	TotalPending decimal.Decimal `json:"total_pending"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalOverdue decimal.Decimal `json:"total_overdue"`
	CountPending int64           `json:"count_pending"`
	CountPaid    int64           `json:"count_paid"`
	CountOverdue int64           `json:"count_overdue"`
}

// ExpenseSummary rolls up expense amounts and counts per status, plus paid
// totals grouped by category.
type ExpenseSummary struct {
	TotalPending  decimal.Decimal            `json:"total_pending"`
	TotalApproved decimal.Decimal            `json:"total_approved"`
	TotalPaid     decimal.Decimal            `json:"total_paid"`
	TotalRejected decimal.Decimal            `json:"total_rejected"`
	CountPending  int64                      `json:"count_pending"`
	CountApproved int64                      `json:"count_approved"`
	CountPaid     int64                      `json:"count_paid"`
	CountRejected int64                      `json:"count_rejected"`
	ByCategory    map[string]decimal.Decimal `json:"by_category"`
}
