package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger entry. A positive amount is a deposit,
// a negative amount a withdrawal. IsInterest marks system-generated interest
// and fee postings; those are excluded from rate-limit counting.
type Transaction struct {
	ID            string
	AccountNumber int64
	Amount        decimal.Decimal
	Date          time.Time
	IsInterest    bool
}
