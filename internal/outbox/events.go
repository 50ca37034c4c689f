package outbox

import (
	"encoding/json"
	"time"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

const (
	AggregateAccount = "account"

	MessageAccountOpened     = "account.opened"
	MessageTransactionPosted = "transaction.posted"
	MessageInterestAccrued   = "interest.accrued"
)

type AccountOpenedEvent struct {
	AccountNumber int64     `json:"account_number"`
	Kind          string    `json:"kind"`
	Timestamp     time.Time `json:"timestamp"`
}

type PostingEvent struct {
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	IsInterest bool   `json:"is_interest"`
}

type TransactionPostedEvent struct {
	AccountNumber int64        `json:"account_number"`
	Posting       PostingEvent `json:"posting"`
	Balance       string       `json:"balance"`
	Timestamp     time.Time    `json:"timestamp"`
}

type InterestAccruedEvent struct {
	AccountNumber int64          `json:"account_number"`
	Postings      []PostingEvent `json:"postings"`
	Balance       string         `json:"balance"`
	Timestamp     time.Time      `json:"timestamp"`
}

func posting(t domain.Transaction) PostingEvent {
	return PostingEvent{
		Amount:     t.Amount.StringFixed(2),
		Date:       t.Date.Format(domain.DateLayout),
		IsInterest: t.IsInterest,
	}
}

func PrepareAccountOpenedPayload(account *domain.Account, eventTime time.Time) ([]byte, error) {
	return json.Marshal(AccountOpenedEvent{
		AccountNumber: account.Number,
		Kind:          string(account.Kind),
		Timestamp:     eventTime,
	})
}

func PrepareTransactionPostedPayload(account *domain.Account, t domain.Transaction, eventTime time.Time) ([]byte, error) {
	return json.Marshal(TransactionPostedEvent{
		AccountNumber: account.Number,
		Posting:       posting(t),
		Balance:       account.Balance.StringFixed(2),
		Timestamp:     eventTime,
	})
}

func PrepareInterestAccruedPayload(account *domain.Account, posted []domain.Transaction, eventTime time.Time) ([]byte, error) {
	postings := make([]PostingEvent, 0, len(posted))
	for _, t := range posted {
		postings = append(postings, posting(t))
	}
	return json.Marshal(InterestAccruedEvent{
		AccountNumber: account.Number,
		Postings:      postings,
		Balance:       account.Balance.StringFixed(2),
		Timestamp:     eventTime,
	})
}
