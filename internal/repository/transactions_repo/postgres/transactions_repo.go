package postgres

import (
	"context"
	"fmt"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

type transactionRepository struct{}

func NewTransactionRepository() *transactionRepository {
	return &transactionRepository{}
}

func (r *transactionRepository) AppendTx(ctx context.Context, querier domain.Querier, transaction *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_number, amount, occurred_on, is_interest)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := querier.ExecContext(ctx, query,
		transaction.ID,
		transaction.AccountNumber,
		transaction.Amount,
		transaction.Date,
		transaction.IsInterest,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction for account %d: %w", transaction.AccountNumber, err)
	}
	return nil
}

func (r *transactionRepository) ListByAccountTx(ctx context.Context, querier domain.Querier, number int64) ([]domain.Transaction, error) {
	query := `
		SELECT id, account_number, amount, occurred_on, is_interest
		FROM transactions
		WHERE account_number = $1
		ORDER BY occurred_on ASC, position ASC
	`
	rows, err := querier.QueryContext(ctx, query, number)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %d: %w", number, err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID,
			&t.AccountNumber,
			&t.Amount,
			&t.Date,
			&t.IsInterest,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Date = domain.Day(t.Date)
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}
