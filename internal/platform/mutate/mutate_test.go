package mutate

import (
	"context"
	"errors"
	"testing"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

// fakeTx mimics the commit/rollback behavior of a real transactor: fn's
// error decides the outcome, and rolled-back work is discarded by the
// caller checking Committed.
type fakeTx struct {
	Committed  int
	RolledBack int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		f.RolledBack++
		return err
	}
	f.Committed++
	return nil
}

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, e audit.Entry) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.entries = append(f.entries, e)
	return int64(len(f.entries)), nil
}

type supply struct {
	ID    int64
	Stock int
}

func keyOf(s *supply) int64 { return s.ID }

func TestRun_UpdateRecordsBeforeAndAfter(t *testing.T) {
	tx := &fakeTx{}
	rec := &fakeRecorder{}
	current := &supply{ID: 7, Stock: 10}

	after, err := Run(context.Background(), tx, rec, Mutation[supply]{
		Table: "supplies", Action: audit.ActionStockUpdate, ActorID: 3,
		Fetch: func(ctx context.Context) (*supply, error) { return current, nil },
		Apply: func(ctx context.Context, before *supply) (*supply, error) {
			return &supply{ID: before.ID, Stock: before.Stock - 5}, nil
		},
		KeyOf: keyOf,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if after.Stock != 5 {
		t.Errorf("after.Stock = %d, want 5", after.Stock)
	}
	if tx.Committed != 1 || tx.RolledBack != 0 {
		t.Errorf("committed=%d rolledback=%d, want 1/0", tx.Committed, tx.RolledBack)
	}
	if len(rec.entries) != 1 {
		t.Fatalf("got %d audit entries, want exactly 1", len(rec.entries))
	}
	e := rec.entries[0]
	if e.RecordID != 7 || e.Before.(*supply).Stock != 10 || e.After.(*supply).Stock != 5 {
		t.Errorf("audit entry = %+v", e)
	}
}

func TestRun_CreateHasNoBeforeImage(t *testing.T) {
	tx := &fakeTx{}
	rec := &fakeRecorder{}

	_, err := Run(context.Background(), tx, rec, Mutation[supply]{
		Table: "supplies", Action: audit.ActionCreate, ActorID: 1,
		Apply: func(ctx context.Context, before *supply) (*supply, error) {
			if before != nil {
				t.Error("create received a before-image")
			}
			return &supply{ID: 9, Stock: 100}, nil
		},
		KeyOf: keyOf,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if rec.entries[0].Before != nil {
		t.Error("create audit entry should have nil before-image")
	}
	if rec.entries[0].RecordID != 9 {
		t.Errorf("RecordID = %d, want 9", rec.entries[0].RecordID)
	}
}

func TestRun_DeleteKeepsBeforeImage(t *testing.T) {
	tx := &fakeTx{}
	rec := &fakeRecorder{}

	after, err := Run(context.Background(), tx, rec, Mutation[supply]{
		Table: "supplies", Action: audit.ActionDelete, ActorID: 1,
		Fetch: func(ctx context.Context) (*supply, error) { return &supply{ID: 4, Stock: 0}, nil },
		Apply: func(ctx context.Context, before *supply) (*supply, error) { return nil, nil },
		KeyOf: keyOf,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if after != nil {
		t.Error("delete should return nil after-state")
	}
	e := rec.entries[0]
	if e.After != nil || e.Before == nil || e.RecordID != 4 {
		t.Errorf("delete audit entry = %+v", e)
	}
}

func TestRun_NotFoundRollsBack(t *testing.T) {
	tx := &fakeTx{}
	rec := &fakeRecorder{}

	_, err := Run(context.Background(), tx, rec, Mutation[supply]{
		Table: "supplies", Action: audit.ActionUpdate, ActorID: 1,
		Fetch: func(ctx context.Context) (*supply, error) {
			return nil, domainerr.NotFound("Supply not found")
		},
		Apply: func(ctx context.Context, before *supply) (*supply, error) {
			t.Error("Apply ran after failed fetch")
			return nil, nil
		},
		KeyOf: keyOf,
	})
	if !domainerr.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
	if tx.RolledBack != 1 || len(rec.entries) != 0 {
		t.Error("failed fetch must roll back with zero audit entries")
	}
}

func TestRun_NilFetchResultIsNotFound(t *testing.T) {
	tx := &fakeTx{}
	_, err := Run(context.Background(), tx, &fakeRecorder{}, Mutation[supply]{
		Table: "supplies", Action: audit.ActionUpdate,
		Fetch: func(ctx context.Context) (*supply, error) { return nil, nil },
		Apply: func(ctx context.Context, before *supply) (*supply, error) { return before, nil },
		KeyOf: keyOf,
	})
	if !domainerr.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestRun_ApplyErrorRollsBack(t *testing.T) {
	tx := &fakeTx{}
	rec := &fakeRecorder{}

	_, err := Run(context.Background(), tx, rec, Mutation[supply]{
		Table: "supplies", Action: audit.ActionStockUpdate, ActorID: 1,
		Fetch: func(ctx context.Context) (*supply, error) { return &supply{ID: 1, Stock: 10}, nil },
		Apply: func(ctx context.Context, before *supply) (*supply, error) {
			return nil, domainerr.PreconditionFailed("Insufficient stock")
		},
		KeyOf: keyOf,
	})
	if !domainerr.IsPreconditionFailed(err) {
		t.Errorf("err = %v, want PreconditionFailed", err)
	}
	if tx.Committed != 0 || len(rec.entries) != 0 {
		t.Error("rejected mutation must not commit or audit")
	}
}

func TestRun_AuditFailureAbortsTransaction(t *testing.T) {
	// Fail-closed: if the audit record cannot be written, the business
	// mutation must not commit either.
	tx := &fakeTx{}
	rec := &fakeRecorder{err: errors.New("audit insert failed")}

	_, err := Run(context.Background(), tx, rec, Mutation[supply]{
		Table: "supplies", Action: audit.ActionUpdate, ActorID: 1,
		Fetch: func(ctx context.Context) (*supply, error) { return &supply{ID: 1, Stock: 10}, nil },
		Apply: func(ctx context.Context, before *supply) (*supply, error) {
			return &supply{ID: 1, Stock: 5}, nil
		},
		KeyOf: keyOf,
	})
	if err == nil {
		t.Fatal("Run() committed despite audit failure")
	}
	if tx.Committed != 0 || tx.RolledBack != 1 {
		t.Errorf("committed=%d rolledback=%d, want 0/1", tx.Committed, tx.RolledBack)
	}
}
