package supply

import "context"

// Repository persists supplies, categories, and stock transactions.
type Repository interface {
	Insert(ctx context.Context, in Input) (*Supply, error)
	// GetByID returns nil, nil when no supply exists.
	GetByID(ctx context.Context, id int64) (*Supply, error)
	Update(ctx context.Context, id int64, in Input) (*Supply, error)
	UpdateStockLevel(ctx context.Context, id int64, newLevel int) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Supply, int, error)

	TransactionCount(ctx context.Context, supplyID int64) (int, error)
	InsertTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, supplyID int64) ([]*Transaction, error)

	Categories(ctx context.Context) ([]*Category, error)
	InsertCategory(ctx context.Context, name string) (*Category, error)

	TransactionTypes(ctx context.Context) ([]*TransactionType, error)
	// TransactionTypeByName returns nil, nil when the type is unknown.
	TransactionTypeByName(ctx context.Context, name string) (*TransactionType, error)
}
