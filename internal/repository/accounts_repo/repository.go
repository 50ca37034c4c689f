package accounts_repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
)

type AccountRepository interface {
	CreateAccountTx(ctx context.Context, querier domain.Querier, account *domain.Account) error
	// GetAccountTx locks the account row for the remainder of the enclosing
	// transaction, serializing mutations per account.
	GetAccountTx(ctx context.Context, querier domain.Querier, number int64) (*domain.Account, error)
	ListAccountsTx(ctx context.Context, querier domain.Querier) ([]domain.Account, error)
	UpdateBalanceTx(ctx context.Context, querier domain.Querier, number int64, balance decimal.Decimal) error
	MaxAccountNumberTx(ctx context.Context, querier domain.Querier) (int64, error)
}
