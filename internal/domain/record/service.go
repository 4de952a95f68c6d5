package record

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/internal/platform/mutate"
)

// Service implements create, read, and update for every registered record
// type. The type is a parameter, not a separate code path.
type Service struct {
	repo Repository
	tx   db.Transactor
	rec  audit.Recorder
}

func NewService(repo Repository, tx db.Transactor, rec audit.Recorder) *Service {
	return &Service{repo: repo, tx: tx, rec: rec}
}

func (s *Service) Create(ctx context.Context, t Type, in CreateInput, actorID int64) (*Record, error) {
	if in.PatientID == 0 {
		return nil, domainerr.PreconditionFailed("patient_id is required")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Record]{
		Table:   t.Name(),
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *Record) (*Record, error) {
			exists, err := s.repo.PatientExists(ctx, in.PatientID)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, domainerr.NotFound("Patient not found")
			}

			rec := &Record{
				Type:        t.Name(),
				PatientID:   in.PatientID,
				PhaseID:     t.Phase,
				Data:        in.Data,
				CompletedBy: &actorID,
			}
			if err := s.repo.Insert(ctx, rec); err != nil {
				return nil, err
			}
			return rec, nil
		},
		KeyOf: func(r *Record) int64 { return r.ID },
	})
}

func (s *Service) Update(ctx context.Context, t Type, id int64, in UpdateInput, actorID int64) (*Record, error) {
	if in.Empty() {
		return nil, domainerr.PreconditionFailed("No fields to update")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Record]{
		Table:   t.Name(),
		Action:  audit.ActionUpdate,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*Record, error) {
			rec, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if rec == nil || rec.Type != t.Name() {
				return nil, domainerr.NotFound("Record not found")
			}
			return rec, nil
		},
		Apply: func(ctx context.Context, before *Record) (*Record, error) {
			after := *before
			after.Data = in.Data
			after.CompletedBy = &actorID
			if err := s.repo.Update(ctx, &after); err != nil {
				return nil, err
			}
			return &after, nil
		},
		KeyOf: func(r *Record) int64 { return r.ID },
	})
}

func (s *Service) List(ctx context.Context, t Type, patientID int64, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListByType(ctx, t.Name(), patientID, limit, offset)
}

// PhaseData returns all of a patient's records for one phase, keyed by slug.
func (s *Service) PhaseData(ctx context.Context, patientID, phaseID int64) (map[string][]*Record, error) {
	exists, err := s.repo.PatientExists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainerr.NotFound("Patient not found")
	}

	recs, err := s.repo.ListByPatientPhase(ctx, patientID, phaseID)
	if err != nil {
		return nil, err
	}

	byType := map[string][]*Record{}
	for _, t := range Types {
		if t.Phase == phaseID {
			byType[t.Slug] = []*Record{}
		}
	}
	nameToSlug := map[string]string{}
	for _, t := range Types {
		nameToSlug[t.Name()] = t.Slug
	}
	for _, rec := range recs {
		slug, ok := nameToSlug[rec.Type]
		if !ok {
			slug = rec.Type
		}
		byType[slug] = append(byType[slug], rec)
	}
	return byType, nil
}
