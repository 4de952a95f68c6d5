package dashboard

import (
	"context"

	"github.com/hearcase/hearcase/internal/platform/auth"
)

// Repository runs the aggregate queries behind the dashboard blocks.
type Repository interface {
	Overview(ctx context.Context, scope auth.Filter) (*Overview, error)
	SupplyOverview(ctx context.Context) (*SupplyOverview, error)
	UserOverview(ctx context.Context) (*UserOverview, error)
	Analytics(ctx context.Context, r DateRange, scope auth.Filter) (*Analytics, error)
}
