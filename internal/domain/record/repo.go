package record

import "context"

// Repository persists phase-detail records.
type Repository interface {
	Insert(ctx context.Context, r *Record) error
	// GetByID returns nil, nil when no record exists.
	GetByID(ctx context.Context, id int64) (*Record, error)
	Update(ctx context.Context, r *Record) error
	// ListByType lists records of one type, optionally narrowed to a
	// patient when patientID is non-zero.
	ListByType(ctx context.Context, recordType string, patientID int64, limit, offset int) ([]*Record, int, error)
	// ListByPatientPhase returns every record of a phase for one patient.
	ListByPatientPhase(ctx context.Context, patientID, phaseID int64) ([]*Record, error)
	PatientExists(ctx context.Context, patientID int64) (bool, error)
}
