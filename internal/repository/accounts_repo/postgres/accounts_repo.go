package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) CreateAccountTx(ctx context.Context, querier domain.Querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (number, kind, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := querier.ExecContext(ctx, query,
		account.Number, account.Kind, account.Balance, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return fmt.Errorf("account number %d already taken: %w", account.Number, err)
		}
		return fmt.Errorf("failed to create account %d: %w", account.Number, err)
	}
	return nil
}

func (r *accountRepository) GetAccountTx(ctx context.Context, querier domain.Querier, number int64) (*domain.Account, error) {
	query := `
		SELECT number, kind, balance, created_at, updated_at
		FROM accounts
		WHERE number = $1
		FOR UPDATE
	`
	account := &domain.Account{}
	err := querier.QueryRowContext(ctx, query, number).Scan(
		&account.Number,
		&account.Kind,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %d: %w", number, err)
	}
	return account, nil
}

func (r *accountRepository) ListAccountsTx(ctx context.Context, querier domain.Querier) ([]domain.Account, error) {
	query := `
		SELECT number, kind, balance, created_at, updated_at
		FROM accounts
		ORDER BY number ASC
	`
	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.Number,
			&account.Kind,
			&account.Balance,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) UpdateBalanceTx(ctx context.Context, querier domain.Querier, number int64, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE number = $3
	`
	res, err := querier.ExecContext(ctx, query, balance, time.Now(), number)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %d: %w", number, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) MaxAccountNumberTx(ctx context.Context, querier domain.Querier) (int64, error) {
	query := `SELECT COALESCE(MAX(number), 0) FROM accounts`
	var max int64
	if err := querier.QueryRowContext(ctx, query).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max account number: %w", err)
	}
	return max, nil
}
