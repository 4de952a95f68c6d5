package audit

import "context"

type Repository interface {
	// Insert appends a record and returns its id. It joins the caller's
	// transaction when one is present in the context.
	Insert(ctx context.Context, log *Log) (int64, error)
	GetByID(ctx context.Context, id int64) (*Log, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Log, int, error)
	Stats(ctx context.Context, filter ListFilter) (*Stats, error)
}
