package phase

import "time"

// Status values persisted for a patient's phase. "not started" is the
// absence of a row, never a stored status.
const (
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Phase ids form the fixed treatment pipeline.
const (
	First = 1
	Last  = 3
)

// Phase is reference data describing one treatment stage.
type Phase struct {
	ID          int64  `db:"phase_id" json:"phase_id"`
	Name        string `db:"phase_name" json:"phase_name"`
	Description string `db:"phase_description" json:"phase_description"`
}

// PatientPhase records one patient's status within one phase. At most one
// row exists per (patient, phase), enforced by a unique constraint, and the
// set of rows for a patient is always a gapless prefix of the pipeline.
type PatientPhase struct {
	ID          int64      `db:"patient_phase_id" json:"patient_phase_id"`
	PatientID   int64      `db:"patient_id" json:"patient_id"`
	PhaseID     int64      `db:"phase_id" json:"phase_id"`
	Status      string     `db:"status" json:"status"`
	StartDate   time.Time  `db:"phase_start_date" json:"phase_start_date"`
	EndDate     *time.Time `db:"phase_end_date" json:"phase_end_date,omitempty"`
	CompletedBy *int64     `db:"completed_by_user_id" json:"completed_by_user_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// Joined for read endpoints.
	PhaseName       string `json:"phase_name,omitempty"`
	CompletedByName string `json:"completed_by,omitempty"`
}
