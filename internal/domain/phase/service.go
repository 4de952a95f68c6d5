package phase

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/internal/platform/mutate"
)

type Service struct {
	repo    Repository
	machine *Machine
	tx      db.Transactor
	rec     audit.Recorder
}

func NewService(repo Repository, tx db.Transactor, rec audit.Recorder) *Service {
	return &Service{repo: repo, machine: NewMachine(repo), tx: tx, rec: rec}
}

func (s *Service) Phases(ctx context.Context) ([]*Phase, error) {
	return s.repo.ListPhases(ctx)
}

func (s *Service) PatientPhases(ctx context.Context, patientID int64) ([]*PatientPhase, error) {
	exists, err := s.repo.PatientExists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainerr.NotFound("Patient not found")
	}
	return s.repo.ListByPatient(ctx, patientID)
}

// Advance moves the patient into the target phase in a single audited
// transaction.
func (s *Service) Advance(ctx context.Context, patientID, target, actorID int64) (*PatientPhase, error) {
	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[PatientPhase]{
		Table:   "patient_phases",
		Action:  audit.ActionPhaseAdvance,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *PatientPhase) (*PatientPhase, error) {
			return s.machine.Advance(ctx, patientID, target)
		},
		KeyOf: func(pp *PatientPhase) int64 { return pp.ID },
	})
}

// Complete marks the patient's phase completed in a single audited
// transaction.
func (s *Service) Complete(ctx context.Context, patientID, phaseID, actorID int64) (*PatientPhase, error) {
	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[PatientPhase]{
		Table:   "patient_phases",
		Action:  audit.ActionPhaseComplete,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*PatientPhase, error) {
			pp, err := s.repo.Get(ctx, patientID, phaseID)
			if err != nil {
				return nil, err
			}
			if pp == nil {
				return nil, domainerr.NotFound("Patient phase not found")
			}
			return pp, nil
		},
		Apply: func(ctx context.Context, before *PatientPhase) (*PatientPhase, error) {
			return s.machine.Complete(ctx, before, actorID)
		},
		KeyOf: func(pp *PatientPhase) int64 { return pp.ID },
	})
}
