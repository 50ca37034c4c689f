package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

func TestPrepareInterestAccruedPayload(t *testing.T) {
	account := domain.NewAccount(3, domain.KindChecking)
	account.Balance = decimal.RequireFromString("44.60")
	when, err := domain.ParseDate("2024-01-31")
	require.NoError(t, err)

	posted := []domain.Transaction{
		{AccountNumber: 3, Amount: decimal.RequireFromString("0.04"), Date: when, IsInterest: true},
		{AccountNumber: 3, Amount: decimal.RequireFromString("-5.44"), Date: when, IsInterest: true},
	}

	payload, err := PrepareInterestAccruedPayload(account, posted, time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	var event InterestAccruedEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, int64(3), event.AccountNumber)
	assert.Equal(t, "44.60", event.Balance)
	require.Len(t, event.Postings, 2)
	assert.Equal(t, "0.04", event.Postings[0].Amount)
	assert.Equal(t, "-5.44", event.Postings[1].Amount)
	assert.Equal(t, "2024-01-31", event.Postings[0].Date)
	assert.True(t, event.Postings[0].IsInterest)
}

func TestPrepareTransactionPostedPayload(t *testing.T) {
	account := domain.NewAccount(1, domain.KindSavings)
	account.Balance = decimal.RequireFromString("100.00")
	when, err := domain.ParseDate("2024-01-15")
	require.NoError(t, err)

	payload, err := PrepareTransactionPostedPayload(account, domain.Transaction{
		AccountNumber: 1,
		Amount:        decimal.RequireFromString("100.00"),
		Date:          when,
	}, time.Now())
	require.NoError(t, err)

	var event TransactionPostedEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "100.00", event.Posting.Amount)
	assert.Equal(t, "2024-01-15", event.Posting.Date)
	assert.False(t, event.Posting.IsInterest)
	assert.Equal(t, "100.00", event.Balance)
}
