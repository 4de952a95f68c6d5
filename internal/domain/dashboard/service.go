package dashboard

import (
	"context"

	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Overview(ctx context.Context, p *auth.Principal) (*Overview, error) {
	return s.repo.Overview(ctx, auth.ScopeFor(p))
}

func (s *Service) Supplies(ctx context.Context) (*SupplyOverview, error) {
	return s.repo.SupplyOverview(ctx)
}

func (s *Service) Users(ctx context.Context) (*UserOverview, error) {
	return s.repo.UserOverview(ctx)
}

func (s *Service) Analytics(ctx context.Context, p *auth.Principal, dr DateRange) (*Analytics, error) {
	if (dr.Start == nil) != (dr.End == nil) {
		return nil, domainerr.PreconditionFailed("start_date and end_date must be provided together")
	}
	if dr.Set() && dr.End.Before(*dr.Start) {
		return nil, domainerr.PreconditionFailed("end_date must not be before start_date")
	}
	return s.repo.Analytics(ctx, dr, auth.ScopeFor(p))
}
