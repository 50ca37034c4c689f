package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the account variants. The variants share the same
// transaction engine and differ only in the policy table below.
type Kind string

const (
	KindChecking Kind = "checking"
	KindSavings  Kind = "savings"
)

// ParseKind validates an account-type string supplied by a front end.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindChecking, KindSavings:
		return Kind(s), nil
	}
	return "", ErrUnknownAccountKind
}

const (
	maxDailyTransactions   = 2
	maxMonthlyTransactions = 5
)

type policy struct {
	rateLimited  bool
	interestRate decimal.Decimal
	feeThreshold decimal.Decimal
	fee          decimal.Decimal
}

var policies = map[Kind]policy{
	KindSavings: {
		rateLimited:  true,
		interestRate: decimal.RequireFromString("0.0041"),
	},
	KindChecking: {
		interestRate: decimal.RequireFromString("0.0008"),
		feeThreshold: decimal.RequireFromString("100.00"),
		fee:          decimal.RequireFromString("5.44"),
	},
}

// Account owns an ordered, append-only transaction history and a balance
// kept equal to the sum of all transaction amounts. All mutations go through
// AddTransaction and ApplyInterestAndFees; callers must not modify the
// history directly.
type Account struct {
	Number       int64
	Kind         Kind
	Balance      decimal.Decimal
	Transactions []Transaction
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount returns an empty account of the given kind.
func NewAccount(number int64, kind Kind) *Account {
	return &Account{Number: number, Kind: kind, Balance: decimal.Zero}
}

// AddTransaction appends a user-initiated transaction after running the full
// rule chain: chronological order first, then (savings only) the daily and
// monthly rate limits, then the overdraft check.
func (a *Account) AddTransaction(amount decimal.Decimal, date time.Time) (Transaction, error) {
	return a.post(amount, date, false, false)
}

func (a *Account) post(amount decimal.Decimal, date time.Time, bypassLimits, isInterest bool) (Transaction, error) {
	date = Day(date)
	if last, ok := a.LastTransactionDate(); ok && date.Before(last) {
		return Transaction{}, &TransactionSequenceError{Latest: last}
	}
	if !bypassLimits {
		if policies[a.Kind].rateLimited {
			if err := a.checkLimits(date); err != nil {
				return Transaction{}, err
			}
		}
		if a.Balance.Add(amount).IsNegative() {
			return Transaction{}, &OverdrawError{}
		}
	}
	t := Transaction{
		AccountNumber: a.Number,
		Amount:        amount,
		Date:          date,
		IsInterest:    isInterest,
	}
	a.Transactions = append(a.Transactions, t)
	a.Balance = a.Balance.Add(amount)
	return t, nil
}

// checkLimits counts existing non-interest transactions around the proposed
// date. The daily limit is checked before the monthly one.
func (a *Account) checkLimits(date time.Time) error {
	var day, month int
	for _, t := range a.Transactions {
		if t.IsInterest || !sameMonth(t.Date, date) {
			continue
		}
		month++
		if sameDay(t.Date, date) {
			day++
		}
	}
	if day >= maxDailyTransactions {
		return &TransactionLimitError{Limit: LimitDaily}
	}
	if month >= maxMonthlyTransactions {
		return &TransactionLimitError{Limit: LimitMonthly}
	}
	return nil
}

// LastTransactionDate reports the most recent transaction's date. The second
// result is false for an empty account.
func (a *Account) LastTransactionDate() (time.Time, bool) {
	if len(a.Transactions) == 0 {
		return time.Time{}, false
	}
	return a.Transactions[len(a.Transactions)-1].Date, true
}

func (a *Account) lastDateWhere(interest bool) (time.Time, bool) {
	for i := len(a.Transactions) - 1; i >= 0; i-- {
		if a.Transactions[i].IsInterest == interest {
			return a.Transactions[i].Date, true
		}
	}
	return time.Time{}, false
}

// CanApplyInterest reports whether interest may be accrued: at most one
// accrual per calendar month relative to the latest user activity. Accounts
// with no user transactions or no prior accrual are always eligible.
func (a *Account) CanApplyInterest() bool {
	user, ok := a.lastDateWhere(false)
	if !ok {
		return true
	}
	paid, ok := a.lastDateWhere(true)
	if !ok {
		return true
	}
	return !sameMonth(user, paid)
}

// ApplyInterestAndFees posts the variant's monthly interest, and for checking
// accounts a low-balance fee, as interest-flagged bypass transactions dated
// at the end of the month of the latest transaction. It returns the postings
// in the order they were applied.
func (a *Account) ApplyInterestAndFees() ([]Transaction, error) {
	if !a.CanApplyInterest() {
		user, _ := a.lastDateWhere(false)
		return nil, &TransactionSequenceError{Latest: user, Accrual: true}
	}

	when := EndOfMonth(time.Now().UTC())
	if last, ok := a.LastTransactionDate(); ok {
		when = EndOfMonth(last)
	}

	p := policies[a.Kind]
	interest := a.Balance.Mul(p.interestRate)
	posted := make([]Transaction, 0, 2)

	t, err := a.post(interest, when, true, true)
	if err != nil {
		return nil, err
	}
	posted = append(posted, t)

	// Fee is evaluated against the balance after the interest posting and
	// shares its date and interest flag.
	if p.fee.IsPositive() && a.Balance.LessThan(p.feeThreshold) {
		t, err := a.post(p.fee.Neg(), when, true, true)
		if err != nil {
			return nil, err
		}
		posted = append(posted, t)
	}
	return posted, nil
}
