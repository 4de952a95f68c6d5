package patient

import (
	"context"

	"github.com/hearcase/hearcase/internal/platform/auth"
)

// Repository persists patients.
type Repository interface {
	// NextCaseNo assigns the next sequential case id. It must run inside
	// the creation transaction; the advisory lock it takes is released at
	// commit.
	NextCaseNo(ctx context.Context) (string, error)
	Insert(ctx context.Context, caseNo string, in Input) (*Patient, error)
	// GetByID returns nil, nil when no patient exists. Phase rows are not
	// attached here.
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Update(ctx context.Context, id int64, in Input) (*Patient, error)
	List(ctx context.Context, f ListFilter, scope auth.Filter, limit, offset int) ([]*ListItem, int, error)
	ListByPhase(ctx context.Context, phaseID int64, status string, scope auth.Filter, limit, offset int) ([]*ListItem, int, error)
}
