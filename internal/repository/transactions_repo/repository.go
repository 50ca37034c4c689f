package transactions_repo

import (
	"context"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

type TransactionRepository interface {
	AppendTx(ctx context.Context, querier domain.Querier, transaction *domain.Transaction) error
	// ListByAccountTx returns the account's history ordered by date ascending,
	// insertion-stable for same-date entries.
	ListByAccountTx(ctx context.Context, querier domain.Querier, number int64) ([]domain.Transaction, error)
}
