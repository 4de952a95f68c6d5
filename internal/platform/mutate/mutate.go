// Package mutate provides the single transactional write path used by every
// service. Each mutating endpoint follows the same sequence: fetch the
// current row, apply a change, append an audit record, commit. This package
// implements that sequence once, parameterized by entity type, instead of
// repeating it per table.
package mutate

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

// Mutation describes one transactional write over entity type T.
type Mutation[T any] struct {
	// Table is the audit target table name.
	Table string
	// Action is the audit action kind recorded for the operation.
	Action audit.Action
	// ActorID is the user performing the mutation.
	ActorID int64

	// Fetch loads the current state by primary key. Nil for creates. A
	// NotFound error here aborts the transaction before any write.
	Fetch func(ctx context.Context) (*T, error)

	// Apply performs the write and returns the post-mutation state, or nil
	// for deletes. Domain rule violations returned here roll the whole
	// transaction back.
	Apply func(ctx context.Context, before *T) (*T, error)

	// KeyOf extracts the primary key for the audit record.
	KeyOf func(*T) int64
}

// Run executes m inside a single transaction: fetch before-image, apply,
// record audit entry, commit. Any failure rolls back the entire transaction,
// whether it is an absent record, a precondition violation, a constraint
// error, or a failure to write the audit record itself; partial state is
// never visible. The audit write is fail-closed: a mutation that cannot be
// audited does not commit.
func Run[T any](ctx context.Context, tx db.Transactor, rec audit.Recorder, m Mutation[T]) (*T, error) {
	var after *T

	err := tx.InTx(ctx, func(ctx context.Context) error {
		var before *T
		if m.Fetch != nil {
			var err error
			before, err = m.Fetch(ctx)
			if err != nil {
				return err
			}
			if before == nil {
				return domainerr.NotFound("record not found")
			}
		}

		var err error
		after, err = m.Apply(ctx, before)
		if err != nil {
			return err
		}

		entry := audit.Entry{
			Table:   m.Table,
			Action:  m.Action,
			ActorID: m.ActorID,
		}
		if before != nil {
			entry.Before = before
			entry.RecordID = m.KeyOf(before)
		}
		if after != nil {
			entry.After = after
			entry.RecordID = m.KeyOf(after)
		}

		_, err = rec.Record(ctx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return after, nil
}
