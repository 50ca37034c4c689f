package ledger_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Irine-Juliet/Bank-CLI/internal/app/ledger"
	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

type LedgerHandler struct {
	service ledger.LedgerService
	logger  *zap.Logger
}

func NewLedgerHandler(s ledger.LedgerService, l *zap.Logger) *LedgerHandler {
	return &LedgerHandler{service: s, logger: l}
}

type OpenAccountRequest struct {
	Type string `json:"type"`
}

type AddTransactionRequest struct {
	Amount string `json:"amount"`
	Date   string `json:"date"`
}

type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	Kind          string `json:"kind"`
	Balance       string `json:"balance"`
}

type TransactionResponse struct {
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	IsInterest bool   `json:"is_interest"`
}

type SummaryEntryResponse struct {
	Kind          string `json:"kind"`
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
}

type AccrualResponse struct {
	Account  AccountResponse       `json:"account"`
	Postings []TransactionResponse `json:"postings"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func accountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: ledger.FormatAccountNumber(a.Number),
		Kind:          string(a.Kind),
		Balance:       a.Balance.StringFixed(2),
	}
}

func transactionResponse(t domain.Transaction) TransactionResponse {
	return TransactionResponse{
		Amount:     t.Amount.StringFixed(2),
		Date:       t.Date.Format(domain.DateLayout),
		IsInterest: t.IsInterest,
	}
}

func (h *LedgerHandler) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	kind, err := domain.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "account type must be \"checking\" or \"savings\"")
		return
	}

	account, err := h.service.OpenAccount(r.Context(), kind)
	if err != nil {
		h.internalError(w, "Failed to open account", err)
		return
	}
	writeJSON(w, http.StatusCreated, accountResponse(account))
}

func (h *LedgerHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.Summary(r.Context())
	if err != nil {
		h.internalError(w, "Failed to build summary", err)
		return
	}
	resp := make([]SummaryEntryResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, SummaryEntryResponse{
			Kind:          string(s.Kind),
			AccountNumber: s.AccountNumber,
			Balance:       s.Balance,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(w, r)
	if !ok {
		return
	}
	account, err := h.service.GetAccount(r.Context(), number)
	if err != nil {
		h.renderError(w, number, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse(account))
}

func (h *LedgerHandler) AddTransactionHandler(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(w, r)
	if !ok {
		return
	}

	var req AddTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Malformed amounts and dates are rejected here; the core never sees them.
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a valid dollar amount")
		return
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in the format YYYY-MM-DD")
		return
	}

	_, posted, err := h.service.AddTransaction(r.Context(), number, amount, date)
	if err != nil {
		h.renderError(w, number, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionResponse(posted))
}

func (h *LedgerHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(w, r)
	if !ok {
		return
	}
	transactions, err := h.service.ListTransactions(r.Context(), number)
	if err != nil {
		h.renderError(w, number, err)
		return
	}
	resp := make([]TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, transactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) ApplyInterestHandler(w http.ResponseWriter, r *http.Request) {
	number, ok := h.accountNumber(w, r)
	if !ok {
		return
	}
	account, posted, err := h.service.ApplyInterestAndFees(r.Context(), number)
	if err != nil {
		h.renderError(w, number, err)
		return
	}
	resp := AccrualResponse{Account: accountResponse(account)}
	for _, t := range posted {
		resp.Postings = append(resp.Postings, transactionResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) accountNumber(w http.ResponseWriter, r *http.Request) (int64, bool) {
	numberStr := chi.URLParam(r, "number")
	number, err := strconv.ParseInt(numberStr, 10, 64)
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid account number")
		return 0, false
	}
	return number, true
}

// renderError maps domain errors to statuses: unknown account 404, sequence
// violations 409, overdraft and rate-limit rejections 422.
func (h *LedgerHandler) renderError(w http.ResponseWriter, number int64, err error) {
	var seqErr *domain.TransactionSequenceError
	var limitErr *domain.TransactionLimitError
	var overdrawErr *domain.OverdrawError
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.As(err, &seqErr):
		writeError(w, http.StatusConflict, seqErr.Error())
	case errors.As(err, &limitErr):
		writeError(w, http.StatusUnprocessableEntity, limitErr.Error())
	case errors.As(err, &overdrawErr):
		writeError(w, http.StatusUnprocessableEntity, overdrawErr.Error())
	default:
		h.logger.Error("Ledger operation failed", zap.Int64("account_number", number), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *LedgerHandler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
