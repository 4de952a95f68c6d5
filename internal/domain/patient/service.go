package patient

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/domain/phase"
	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/internal/platform/mutate"
)

type Service struct {
	repo      Repository
	phaseRepo phase.Repository
	machine   *phase.Machine
	tx        db.Transactor
	rec       audit.Recorder
}

func NewService(repo Repository, phaseRepo phase.Repository, tx db.Transactor, rec audit.Recorder) *Service {
	return &Service{
		repo:      repo,
		phaseRepo: phaseRepo,
		machine:   phase.NewMachine(phaseRepo),
		tx:        tx,
		rec:       rec,
	}
}

// Create registers a patient, assigns the case id, and enters the patient
// into the first phase, all in one audited transaction.
func (s *Service) Create(ctx context.Context, in Input, actorID int64) (*Patient, error) {
	if in.FirstName == nil || *in.FirstName == "" || in.LastName == nil || *in.LastName == "" {
		return nil, domainerr.PreconditionFailed("First name and last name are required")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Patient]{
		Table:   "patients",
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *Patient) (*Patient, error) {
			caseNo := ""
			if in.CaseNo != nil && *in.CaseNo != "" {
				caseNo = *in.CaseNo
			} else {
				var err error
				caseNo, err = s.repo.NextCaseNo(ctx)
				if err != nil {
					return nil, err
				}
			}

			p, err := s.repo.Insert(ctx, caseNo, in)
			if err != nil {
				return nil, err
			}
			if _, err := s.machine.Start(ctx, p.ID); err != nil {
				return nil, err
			}
			return p, nil
		},
		KeyOf: func(p *Patient) int64 { return p.ID },
	})
}

func (s *Service) Update(ctx context.Context, id int64, in Input, actorID int64) (*Patient, error) {
	if in.Empty() {
		return nil, domainerr.PreconditionFailed("No fields to update")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Patient]{
		Table:   "patients",
		Action:  audit.ActionUpdate,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*Patient, error) {
			p, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, domainerr.NotFound("Patient not found")
			}
			return p, nil
		},
		Apply: func(ctx context.Context, _ *Patient) (*Patient, error) {
			return s.repo.Update(ctx, id, in)
		},
		KeyOf: func(p *Patient) int64 { return p.ID },
	})
}

// Get returns the patient with its phase history attached.
func (s *Service) Get(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domainerr.NotFound("Patient not found")
	}
	p.Phases, err = s.phaseRepo.ListByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, scope auth.Filter, limit, offset int) ([]*ListItem, int, error) {
	return s.repo.List(ctx, f, scope, limit, offset)
}

func (s *Service) ListByPhase(ctx context.Context, phaseID int64, status string, scope auth.Filter, limit, offset int) ([]*ListItem, int, error) {
	return s.repo.ListByPhase(ctx, phaseID, status, scope, limit, offset)
}
