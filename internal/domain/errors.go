package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrUnknownAccountKind = errors.New("unknown account kind")
)

// OverdrawError rejects a transaction that would drive the balance negative.
type OverdrawError struct{}

func (e *OverdrawError) Error() string {
	return "this transaction could not be completed due to an insufficient account balance"
}

// LimitKind tags which savings rate limit was exceeded.
type LimitKind string

const (
	LimitDaily   LimitKind = "daily"
	LimitMonthly LimitKind = "monthly"
)

// TransactionLimitError rejects a savings transaction that would exceed the
// daily or monthly cap on non-interest transactions.
type TransactionLimitError struct {
	Limit LimitKind
}

func (e *TransactionLimitError) Error() string {
	switch e.Limit {
	case LimitDaily:
		return "this transaction could not be completed because this account already has 2 transactions in this day"
	case LimitMonthly:
		return "this transaction could not be completed because this account already has 5 transactions in this month"
	}
	return "transaction limit exceeded"
}

// TransactionSequenceError rejects a transaction dated before the latest
// recorded one, or a repeat interest accrual within the same activity month.
// Latest is the boundary date front ends should render.
type TransactionSequenceError struct {
	Latest  time.Time
	Accrual bool
}

func (e *TransactionSequenceError) Error() string {
	if e.Accrual {
		return fmt.Sprintf("cannot apply interest and fees again in the month of %s", e.Latest.Format("January"))
	}
	return fmt.Sprintf("new transactions must be from %s onward", e.Latest.Format(DateLayout))
}
