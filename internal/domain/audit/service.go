package audit

import (
	"context"

	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

// Service is the read side of the audit log, used by the admin endpoints.
// The log itself is append-only; there are no update or delete operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (*Log, error) {
	log, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domainerr.NotFound("Audit log not found")
	}
	return log, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Log, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *Service) Stats(ctx context.Context, filter ListFilter) (*Stats, error) {
	return s.repo.Stats(ctx, filter)
}
