package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
	"github.com/Irine-Juliet/Bank-CLI/internal/outbox"
	"github.com/Irine-Juliet/Bank-CLI/internal/repository/accounts_repo"
	"github.com/Irine-Juliet/Bank-CLI/internal/repository/outbox_repo"
	"github.com/Irine-Juliet/Bank-CLI/internal/repository/transactions_repo"
)

// AccountSummary is the display form of an account: kind, 9-digit
// zero-padded number, and the balance rounded to two decimals.
type AccountSummary struct {
	Kind          domain.Kind
	AccountNumber string
	Balance       string
}

type LedgerService interface {
	OpenAccount(ctx context.Context, kind domain.Kind) (*domain.Account, error)
	GetAccount(ctx context.Context, number int64) (*domain.Account, error)
	AddTransaction(ctx context.Context, number int64, amount decimal.Decimal, date time.Time) (*domain.Account, domain.Transaction, error)
	ListTransactions(ctx context.Context, number int64) ([]domain.Transaction, error)
	ApplyInterestAndFees(ctx context.Context, number int64) (*domain.Account, []domain.Transaction, error)
	Summary(ctx context.Context) ([]AccountSummary, error)
}

type ledgerService struct {
	db              *sql.DB
	accountRepo     accounts_repo.AccountRepository
	transactionRepo transactions_repo.TransactionRepository
	outboxRepo      outbox_repo.OutboxRepository
	eventsTopic     string
	nextNumber      atomic.Int64
	logger          *zap.Logger
}

// NewLedgerService seeds the account-number counter from the persisted
// maximum so numbers stay strictly increasing across restarts.
func NewLedgerService(
	ctx context.Context,
	db *sql.DB,
	accountRepo accounts_repo.AccountRepository,
	transactionRepo transactions_repo.TransactionRepository,
	outboxRepo outbox_repo.OutboxRepository,
	eventsTopic string,
	logger *zap.Logger,
) (LedgerService, error) {
	s := &ledgerService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		eventsTopic:     eventsTopic,
		logger:          logger,
	}
	maxNumber, err := accountRepo.MaxAccountNumberTx(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to seed account number counter: %w", err)
	}
	s.nextNumber.Store(maxNumber)
	return s, nil
}

func (s *ledgerService) OpenAccount(ctx context.Context, kind domain.Kind) (*domain.Account, error) {
	if _, err := domain.ParseKind(string(kind)); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	number := s.nextNumber.Add(1)
	now := time.Now()
	account := domain.NewAccount(number, kind)
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := s.accountRepo.CreateAccountTx(ctx, tx, account); err != nil {
		return nil, err
	}

	payload, err := outbox.PrepareAccountOpenedPayload(account, now)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare account opened payload: %w", err)
	}
	if err := s.writeEventTx(ctx, tx, account.Number, outbox.MessageAccountOpened, payload, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Account opened",
		zap.Int64("account_number", account.Number),
		zap.String("kind", string(account.Kind)))
	return account, nil
}

func (s *ledgerService) GetAccount(ctx context.Context, number int64) (*domain.Account, error) {
	return s.loadAccount(ctx, s.db, number)
}

func (s *ledgerService) AddTransaction(ctx context.Context, number int64, amount decimal.Decimal, date time.Time) (*domain.Account, domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.Transaction{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.loadAccount(ctx, tx, number)
	if err != nil {
		return nil, domain.Transaction{}, err
	}

	posted, err := account.AddTransaction(amount, date)
	if err != nil {
		return nil, domain.Transaction{}, err
	}
	posted.ID = uuid.NewString()

	now := time.Now()
	if err := s.transactionRepo.AppendTx(ctx, tx, &posted); err != nil {
		return nil, domain.Transaction{}, err
	}
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, number, account.Balance); err != nil {
		return nil, domain.Transaction{}, err
	}

	payload, err := outbox.PrepareTransactionPostedPayload(account, posted, now)
	if err != nil {
		return nil, domain.Transaction{}, fmt.Errorf("failed to prepare transaction posted payload: %w", err)
	}
	if err := s.writeEventTx(ctx, tx, number, outbox.MessageTransactionPosted, payload, now); err != nil {
		return nil, domain.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.Transaction{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Transaction posted",
		zap.Int64("account_number", number),
		zap.String("amount", posted.Amount.StringFixed(2)),
		zap.String("date", posted.Date.Format(domain.DateLayout)))
	return account, posted, nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, number int64) ([]domain.Transaction, error) {
	account, err := s.loadAccount(ctx, s.db, number)
	if err != nil {
		return nil, err
	}
	return account.Transactions, nil
}

func (s *ledgerService) ApplyInterestAndFees(ctx context.Context, number int64) (*domain.Account, []domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := s.loadAccount(ctx, tx, number)
	if err != nil {
		return nil, nil, err
	}

	posted, err := account.ApplyInterestAndFees()
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	for i := range posted {
		posted[i].ID = uuid.NewString()
		if err := s.transactionRepo.AppendTx(ctx, tx, &posted[i]); err != nil {
			return nil, nil, err
		}
	}
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, number, account.Balance); err != nil {
		return nil, nil, err
	}

	payload, err := outbox.PrepareInterestAccruedPayload(account, posted, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare interest accrued payload: %w", err)
	}
	if err := s.writeEventTx(ctx, tx, number, outbox.MessageInterestAccrued, payload, now); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Interest and fees applied",
		zap.Int64("account_number", number),
		zap.Int("postings", len(posted)),
		zap.String("balance", account.Balance.StringFixed(2)))
	return account, posted, nil
}

func (s *ledgerService) Summary(ctx context.Context) ([]AccountSummary, error) {
	accounts, err := s.accountRepo.ListAccountsTx(ctx, s.db)
	if err != nil {
		return nil, err
	}
	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, AccountSummary{
			Kind:          account.Kind,
			AccountNumber: FormatAccountNumber(account.Number),
			Balance:       account.Balance.StringFixed(2),
		})
	}
	return summaries, nil
}

// FormatAccountNumber renders the 9-digit zero-padded display form.
func FormatAccountNumber(number int64) string {
	return fmt.Sprintf("%09d", number)
}

// loadAccount hydrates an account with its full ordered history. Inside a
// transaction the account row stays locked until commit.
func (s *ledgerService) loadAccount(ctx context.Context, querier domain.Querier, number int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetAccountTx(ctx, querier, number)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.ListByAccountTx(ctx, querier, number)
	if err != nil {
		return nil, err
	}
	account.Transactions = transactions
	return account, nil
}

func (s *ledgerService) writeEventTx(ctx context.Context, tx *sql.Tx, number int64, messageType string, payload []byte, now time.Time) error {
	msg := &domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateID:   FormatAccountNumber(number),
		AggregateType: outbox.AggregateAccount,
		MessageType:   messageType,
		Topic:         s.eventsTopic,
		Key:           FormatAccountNumber(number),
		Payload:       payload,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     now,
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to create outbox message: %w", err)
	}
	return nil
}
