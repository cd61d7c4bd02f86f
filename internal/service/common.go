package service

import (
	"errors"
	"time"

	"github.com/paytrack/paytrack-api/internal/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateLayout is the wire format for date-only fields
const DateLayout = "2006-01-02"

const defaultPageSize = 20

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	return page, limit
}

func parseUUID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s: %q", field, value)
	}
	return id, nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid %s: expected YYYY-MM-DD, got %q", field, value)
	}
	return t, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, apperr.Validation("invalid %s: %q", field, value)
	}
	return d, nil
}

// notFoundOr converts gorm's missing-record error into a NotFound of the
// given entity, passing every other error through untouched.
func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", entity)
	}
	return err
}

// auditUserID parses the acting user's id for audit entries. Empty or
// malformed ids degrade to a nil user, never to a failed operation.
func auditUserID(userID string) *uuid.UUID {
	if userID == "" {
		return nil
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &parsed
}

// EventPublisher pushes lifecycle events to connected dashboard clients.
// The websocket hub implements it; a nil publisher disables events.
type EventPublisher interface {
	Publish(event string, payload any)
}

// publish is a nil-safe event send
func publish(p EventPublisher, event string, payload any) {
	if p != nil {
		p.Publish(event, payload)
	}
}

// clock lets tests pin "now" for date comparisons
type clock func() time.Time
