package ledger_http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Irine-Juliet/Bank-CLI/internal/app/ledger"
	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

// stubService returns canned results so the handler's parsing and error
// mapping can be tested without a database.
type stubService struct {
	account      *domain.Account
	posted       domain.Transaction
	postings     []domain.Transaction
	transactions []domain.Transaction
	summaries    []ledger.AccountSummary
	err          error
}

func (s *stubService) OpenAccount(ctx context.Context, kind domain.Kind) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubService) GetAccount(ctx context.Context, number int64) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubService) AddTransaction(ctx context.Context, number int64, amount decimal.Decimal, date time.Time) (*domain.Account, domain.Transaction, error) {
	return s.account, s.posted, s.err
}

func (s *stubService) ListTransactions(ctx context.Context, number int64) ([]domain.Transaction, error) {
	return s.transactions, s.err
}

func (s *stubService) ApplyInterestAndFees(ctx context.Context, number int64) (*domain.Account, []domain.Transaction, error) {
	return s.account, s.postings, s.err
}

func (s *stubService) Summary(ctx context.Context) ([]ledger.AccountSummary, error) {
	return s.summaries, s.err
}

func newTestRouter(s ledger.LedgerService) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, s, zap.NewNop())
	return r
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestOpenAccountHandler(t *testing.T) {
	account := domain.NewAccount(1, domain.KindChecking)
	router := newTestRouter(&stubService{account: account})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"type":"checking"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp AccountResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "000000001", resp.AccountNumber)
	assert.Equal(t, "checking", resp.Kind)
	assert.Equal(t, "0.00", resp.Balance)
}

func TestOpenAccountHandlerRejectsUnknownKind(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"type":"money market"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddTransactionHandlerValidation(t *testing.T) {
	router := newTestRouter(&stubService{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed amount", `{"amount":"ten dollars","date":"2024-01-15"}`},
		{"malformed date", `{"amount":"10.00","date":"01/15/2024"}`},
		{"empty body", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/accounts/1/transactions", strings.NewReader(tt.body))
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAddTransactionHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"overdraw", &domain.OverdrawError{}, http.StatusUnprocessableEntity},
		{"daily limit", &domain.TransactionLimitError{Limit: domain.LimitDaily}, http.StatusUnprocessableEntity},
		{"monthly limit", &domain.TransactionLimitError{Limit: domain.LimitMonthly}, http.StatusUnprocessableEntity},
		{"out of order", &domain.TransactionSequenceError{Latest: time.Now()}, http.StatusConflict},
		{"unknown account", domain.ErrAccountNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubService{err: tt.err})
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/accounts/1/transactions", strings.NewReader(`{"amount":"10.00","date":"2024-01-15"}`))
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestAddTransactionHandlerSuccess(t *testing.T) {
	account := domain.NewAccount(7, domain.KindSavings)
	posted := domain.Transaction{
		AccountNumber: 7,
		Amount:        decimal.RequireFromString("10.00"),
		Date:          mustDate(t, "2024-01-15"),
	}
	router := newTestRouter(&stubService{account: account, posted: posted})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts/7/transactions", strings.NewReader(`{"amount":"10.00","date":"2024-01-15"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "10.00", resp.Amount)
	assert.Equal(t, "2024-01-15", resp.Date)
	assert.False(t, resp.IsInterest)
}

func TestAddTransactionHandlerRejectsBadAccountNumber(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts/abc/transactions", strings.NewReader(`{"amount":"10.00","date":"2024-01-15"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyInterestHandlerRepeatAccrual(t *testing.T) {
	router := newTestRouter(&stubService{
		err: &domain.TransactionSequenceError{Latest: mustDate(t, "2024-01-31"), Accrual: true},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts/1/interest", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "January")
}

func TestApplyInterestHandlerSuccess(t *testing.T) {
	account := domain.NewAccount(3, domain.KindChecking)
	account.Balance = decimal.RequireFromString("44.60")
	postings := []domain.Transaction{
		{Amount: decimal.RequireFromString("0.04"), Date: mustDate(t, "2024-01-31"), IsInterest: true},
		{Amount: decimal.RequireFromString("-5.44"), Date: mustDate(t, "2024-01-31"), IsInterest: true},
	}
	router := newTestRouter(&stubService{account: account, postings: postings})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts/3/interest", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AccrualResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "44.60", resp.Account.Balance)
	require.Len(t, resp.Postings, 2)
	assert.True(t, resp.Postings[0].IsInterest)
	assert.Equal(t, "-5.44", resp.Postings[1].Amount)
}

func TestSummaryHandler(t *testing.T) {
	router := newTestRouter(&stubService{
		summaries: []ledger.AccountSummary{
			{Kind: domain.KindChecking, AccountNumber: "000000001", Balance: "50.04"},
			{Kind: domain.KindSavings, AccountNumber: "000000002", Balance: "1004.10"},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []SummaryEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "000000001", resp[0].AccountNumber)
	assert.Equal(t, "savings", resp[1].Kind)
}

func TestListTransactionsHandler(t *testing.T) {
	router := newTestRouter(&stubService{
		transactions: []domain.Transaction{
			{Amount: decimal.RequireFromString("100.00"), Date: mustDate(t, "2024-01-15")},
			{Amount: decimal.RequireFromString("4.10"), Date: mustDate(t, "2024-01-31"), IsInterest: true},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/accounts/1/transactions", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "2024-01-15", resp[0].Date)
	assert.True(t, resp[1].IsInterest)
}
