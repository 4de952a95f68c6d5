package phase

import (
	"context"
	"time"

	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

// Machine applies the phase transition rules. It performs no transaction
// management of its own; callers run it inside whatever transaction the
// surrounding operation owns.
type Machine struct {
	repo Repository
}

func NewMachine(repo Repository) *Machine {
	return &Machine{repo: repo}
}

// Start enters a newly registered patient into the first phase.
func (m *Machine) Start(ctx context.Context, patientID int64) (*PatientPhase, error) {
	pp := &PatientPhase{
		PatientID: patientID,
		PhaseID:   First,
		Status:    StatusInProgress,
		StartDate: time.Now(),
	}
	if err := m.repo.Insert(ctx, pp); err != nil {
		return nil, err
	}
	return pp, nil
}

// Advance moves a patient into the target phase. The previous phase must be
// completed first, and a patient can never hold the same phase twice.
func (m *Machine) Advance(ctx context.Context, patientID, target int64) (*PatientPhase, error) {
	if target <= First || target > Last {
		return nil, domainerr.PreconditionFailed("Invalid target phase %d", target)
	}

	exists, err := m.repo.PatientExists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domainerr.NotFound("Patient not found")
	}

	current, err := m.repo.Get(ctx, patientID, target)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, domainerr.PreconditionFailed("Patient is already in Phase %d", target)
	}

	prev, err := m.repo.Get(ctx, patientID, target-1)
	if err != nil {
		return nil, err
	}
	if prev == nil || prev.Status != StatusCompleted {
		return nil, domainerr.PreconditionFailed(
			"Phase %d must be completed before advancing to Phase %d", target-1, target)
	}

	pp := &PatientPhase{
		PatientID: patientID,
		PhaseID:   target,
		Status:    StatusInProgress,
		StartDate: time.Now(),
	}
	if err := m.repo.Insert(ctx, pp); err != nil {
		return nil, err
	}
	return pp, nil
}

// Complete marks a patient's phase as completed. Re-completing an already
// completed phase is allowed and refreshes the end date and completing user.
func (m *Machine) Complete(ctx context.Context, before *PatientPhase, actorID int64) (*PatientPhase, error) {
	now := time.Now()
	after := *before
	after.Status = StatusCompleted
	after.EndDate = &now
	after.CompletedBy = &actorID
	if err := m.repo.Update(ctx, &after); err != nil {
		return nil, err
	}
	return &after, nil
}
