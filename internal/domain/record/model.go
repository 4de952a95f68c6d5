package record

import (
	"encoding/json"
	"time"
)

// Record is one phase-detail row. Data holds the form payload as submitted;
// the shape varies per record type and is stored opaquely.
type Record struct {
	ID          int64           `db:"record_id" json:"record_id"`
	Type        string          `db:"record_type" json:"record_type"`
	PatientID   int64           `db:"patient_id" json:"patient_id"`
	PhaseID     int64           `db:"phase_id" json:"phase_id"`
	Data        json.RawMessage `db:"data" json:"data"`
	CompletedBy *int64          `db:"completed_by_user_id" json:"completed_by_user_id,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	// Joined for read endpoints.
	PatientFirstName string `json:"first_name,omitempty"`
	PatientLastName  string `json:"last_name,omitempty"`
	CaseNo           string `json:"case_no,omitempty"`
	CompletedByName  string `json:"completed_by,omitempty"`
}

// CreateInput is the body for record creation.
type CreateInput struct {
	PatientID int64           `json:"patient_id"`
	Data      json.RawMessage `json:"data"`
}

// UpdateInput is the body for record updates.
type UpdateInput struct {
	Data json.RawMessage `json:"data"`
}

// Empty reports whether the update carries no payload.
func (in UpdateInput) Empty() bool {
	if len(in.Data) == 0 {
		return true
	}
	s := string(in.Data)
	return s == "null" || s == "{}"
}
