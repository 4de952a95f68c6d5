package phase

import "context"

// Repository persists phases and per-patient phase rows.
type Repository interface {
	ListPhases(ctx context.Context) ([]*Phase, error)
	// ListByPatient returns the patient's phase rows ordered by phase id.
	ListByPatient(ctx context.Context, patientID int64) ([]*PatientPhase, error)
	// Get returns nil, nil when the patient has no row for the phase.
	Get(ctx context.Context, patientID, phaseID int64) (*PatientPhase, error)
	// Insert creates a new patient phase row. A duplicate (patient, phase)
	// pair returns a conflict error.
	Insert(ctx context.Context, pp *PatientPhase) error
	Update(ctx context.Context, pp *PatientPhase) error
	PatientExists(ctx context.Context, patientID int64) (bool, error)
}
