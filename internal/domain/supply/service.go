package supply

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/internal/platform/mutate"
)

type Service struct {
	repo Repository
	tx   db.Transactor
	rec  audit.Recorder
}

func NewService(repo Repository, tx db.Transactor, rec audit.Recorder) *Service {
	return &Service{repo: repo, tx: tx, rec: rec}
}

func (s *Service) Create(ctx context.Context, in Input, actorID int64) (*Supply, error) {
	if in.CategoryID == nil || in.ItemName == nil || *in.ItemName == "" || in.CurrentStockLevel == nil {
		return nil, domainerr.PreconditionFailed("category_id, item_name and current_stock_level are required")
	}
	if *in.CurrentStockLevel < 0 {
		return nil, domainerr.PreconditionFailed("Stock level cannot be negative")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Supply]{
		Table:   "supplies",
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *Supply) (*Supply, error) {
			return s.repo.Insert(ctx, in)
		},
		KeyOf: func(su *Supply) int64 { return su.ID },
	})
}

func (s *Service) Update(ctx context.Context, id int64, in Input, actorID int64) (*Supply, error) {
	if in.Empty() {
		return nil, domainerr.PreconditionFailed("No fields to update")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Supply]{
		Table:   "supplies",
		Action:  audit.ActionUpdate,
		ActorID: actorID,
		Fetch:   s.fetch(id),
		Apply: func(ctx context.Context, _ *Supply) (*Supply, error) {
			return s.repo.Update(ctx, id, in)
		},
		KeyOf: func(su *Supply) int64 { return su.ID },
	})
}

// UpdateStock applies a signed stock adjustment and appends the matching
// transaction row, all in one audited transaction. The audit images carry
// the stock levels rather than the whole supply row.
func (s *Service) UpdateStock(ctx context.Context, id int64, in StockInput, actorID int64) (*Supply, error) {
	if in.Quantity == 0 {
		return nil, domainerr.PreconditionFailed("quantity is required")
	}

	var updated *Supply
	_, err := mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[StockChange]{
		Table:   "supplies",
		Action:  audit.ActionStockUpdate,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*StockChange, error) {
			sup, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if sup == nil {
				return nil, domainerr.NotFound("Supply not found")
			}
			old := sup.CurrentStockLevel
			return &StockChange{OldStock: &old}, nil
		},
		Apply: func(ctx context.Context, before *StockChange) (*StockChange, error) {
			newLevel := *before.OldStock + in.Quantity
			if newLevel < 0 {
				return nil, domainerr.PreconditionFailed("Insufficient stock")
			}

			tt, err := s.repo.TransactionTypeByName(ctx, in.TransactionType)
			if err != nil {
				return nil, err
			}
			if tt == nil {
				return nil, domainerr.PreconditionFailed("Invalid transaction type")
			}

			if err := s.repo.UpdateStockLevel(ctx, id, newLevel); err != nil {
				return nil, err
			}
			if err := s.repo.InsertTransaction(ctx, &Transaction{
				SupplyID:          id,
				TransactionTypeID: tt.ID,
				Quantity:          in.Quantity,
				RecordedBy:        actorID,
				Notes:             in.Notes,
			}); err != nil {
				return nil, err
			}

			updated, err = s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}

			qty := in.Quantity
			return &StockChange{NewStock: &newLevel, Quantity: &qty, TransactionType: in.TransactionType}, nil
		},
		KeyOf: func(*StockChange) int64 { return id },
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	_, err := mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Supply]{
		Table:   "supplies",
		Action:  audit.ActionDelete,
		ActorID: actorID,
		Fetch:   s.fetch(id),
		Apply: func(ctx context.Context, _ *Supply) (*Supply, error) {
			count, err := s.repo.TransactionCount(ctx, id)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, domainerr.PreconditionFailed("Cannot delete supply with existing transactions")
			}
			return nil, s.repo.Delete(ctx, id)
		},
		KeyOf: func(su *Supply) int64 { return su.ID },
	})
	return err
}

func (s *Service) fetch(id int64) func(ctx context.Context) (*Supply, error) {
	return func(ctx context.Context) (*Supply, error) {
		sup, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if sup == nil {
			return nil, domainerr.NotFound("Supply not found")
		}
		return sup, nil
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Supply, error) {
	sup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, domainerr.NotFound("Supply not found")
	}
	return sup, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Supply, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) Transactions(ctx context.Context, supplyID int64) ([]*Transaction, error) {
	sup, err := s.repo.GetByID(ctx, supplyID)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, domainerr.NotFound("Supply not found")
	}
	return s.repo.ListTransactions(ctx, supplyID)
}

func (s *Service) Categories(ctx context.Context) ([]*Category, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string, actorID int64) (*Category, error) {
	if name == "" {
		return nil, domainerr.PreconditionFailed("category_name is required")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Category]{
		Table:   "supply_categories",
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *Category) (*Category, error) {
			return s.repo.InsertCategory(ctx, name)
		},
		KeyOf: func(c *Category) int64 { return c.ID },
	})
}

func (s *Service) TransactionTypes(ctx context.Context) ([]*TransactionType, error) {
	return s.repo.TransactionTypes(ctx)
}
