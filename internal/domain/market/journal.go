package market

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus is the lifecycle state of a journaled buy order
type JournalStatus string

const (
	JournalOpen         JournalStatus = "OPEN"
	JournalCancelled    JournalStatus = "CANCELLED"
	JournalCancelFailed JournalStatus = "CANCEL_FAILED"
)

// ParseJournalStatus validates a status string
func ParseJournalStatus(s string) (JournalStatus, error) {
	switch JournalStatus(s) {
	case JournalOpen, JournalCancelled, JournalCancelFailed:
		return JournalStatus(s), nil
	default:
		return "", fmt.Errorf("invalid journal status: %s", s)
	}
}

// IsOutstanding reports whether the order may still exist on the marketplace
func (s JournalStatus) IsOutstanding() bool {
	return s == JournalOpen || s == JournalCancelFailed
}

// JournalEntry is the persisted history of one live buy order
type JournalEntry struct {
	OrderID     string
	RunID       string
	ItemName    string
	Quantity    int
	UnitPrice   decimal.Decimal
	Status      JournalStatus
	PlacedAt    time.Time
	CancelledAt *time.Time
	LastError   string
}
