package patient

import (
	"time"

	"github.com/hearcase/hearcase/internal/domain/phase"
)

// Patient is one enrolled case. CaseNo is the human-facing sequential case
// identifier; PatientID is the database key.
type Patient struct {
	ID                    int64      `db:"patient_id" json:"patient_id"`
	CaseNo                string     `db:"case_no" json:"case_no"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	Gender                *string    `db:"gender" json:"gender,omitempty"`
	DateOfBirth           *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Age                   *int       `db:"age" json:"age,omitempty"`
	MobileNumber          *string    `db:"mobile_number" json:"mobile_number,omitempty"`
	MobileSMS             *bool      `db:"mobile_sms" json:"mobile_sms,omitempty"`
	AlternativeNumber     *string    `db:"alternative_number" json:"alternative_number,omitempty"`
	AlternativeSMS        *bool      `db:"alternative_sms" json:"alternative_sms,omitempty"`
	RegionDistrict        *string    `db:"region_district" json:"region_district,omitempty"`
	CityVillage           *string    `db:"city_village" json:"city_village,omitempty"`
	HighestEducationLevel *string    `db:"highest_education_level" json:"highest_education_level,omitempty"`
	EmploymentStatus      *string    `db:"employment_status" json:"employment_status,omitempty"`
	SchoolName            *string    `db:"school_name" json:"school_name,omitempty"`
	SchoolPhoneNumber     *string    `db:"school_phone_number" json:"school_phone_number,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`

	// Phases is populated on by-id reads only.
	Phases []*phase.PatientPhase `json:"phases,omitempty"`
}

// ListItem is one row of a patient listing, carrying the joined phase state
// the list views show alongside demographics.
type ListItem struct {
	Patient
	PhaseID        *int64     `json:"phase_id,omitempty"`
	PhaseName      *string    `json:"phase_name,omitempty"`
	PhaseStatus    *string    `json:"phase_status,omitempty"`
	PhaseStartDate *time.Time `json:"phase_start_date,omitempty"`
	PhaseEndDate   *time.Time `json:"phase_end_date,omitempty"`
}

// Input carries create/update fields. Pointer fields distinguish "absent"
// from zero values so updates touch only what the caller sent.
type Input struct {
	CaseNo                *string    `json:"case_no,omitempty"`
	FirstName             *string    `json:"first_name,omitempty"`
	LastName              *string    `json:"last_name,omitempty"`
	Gender                *string    `json:"gender,omitempty"`
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty"`
	Age                   *int       `json:"age,omitempty"`
	MobileNumber          *string    `json:"mobile_number,omitempty"`
	MobileSMS             *bool      `json:"mobile_sms,omitempty"`
	AlternativeNumber     *string    `json:"alternative_number,omitempty"`
	AlternativeSMS        *bool      `json:"alternative_sms,omitempty"`
	RegionDistrict        *string    `json:"region_district,omitempty"`
	CityVillage           *string    `json:"city_village,omitempty"`
	HighestEducationLevel *string    `json:"highest_education_level,omitempty"`
	EmploymentStatus      *string    `json:"employment_status,omitempty"`
	SchoolName            *string    `json:"school_name,omitempty"`
	SchoolPhoneNumber     *string    `json:"school_phone_number,omitempty"`
}

// columns returns the set fields as column names and values, in a stable
// order, skipping case_no which is assigned by the service.
func (in Input) columns() ([]string, []interface{}) {
	var cols []string
	var vals []interface{}
	add := func(col string, v interface{}, set bool) {
		if set {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}
	add("first_name", in.FirstName, in.FirstName != nil)
	add("last_name", in.LastName, in.LastName != nil)
	add("gender", in.Gender, in.Gender != nil)
	add("date_of_birth", in.DateOfBirth, in.DateOfBirth != nil)
	add("age", in.Age, in.Age != nil)
	add("mobile_number", in.MobileNumber, in.MobileNumber != nil)
	add("mobile_sms", in.MobileSMS, in.MobileSMS != nil)
	add("alternative_number", in.AlternativeNumber, in.AlternativeNumber != nil)
	add("alternative_sms", in.AlternativeSMS, in.AlternativeSMS != nil)
	add("region_district", in.RegionDistrict, in.RegionDistrict != nil)
	add("city_village", in.CityVillage, in.CityVillage != nil)
	add("highest_education_level", in.HighestEducationLevel, in.HighestEducationLevel != nil)
	add("employment_status", in.EmploymentStatus, in.EmploymentStatus != nil)
	add("school_name", in.SchoolName, in.SchoolName != nil)
	add("school_phone_number", in.SchoolPhoneNumber, in.SchoolPhoneNumber != nil)
	return cols, vals
}

// Empty reports whether no updatable field is set.
func (in Input) Empty() bool {
	cols, _ := in.columns()
	return len(cols) == 0
}

// ListFilter narrows patient listings.
type ListFilter struct {
	Search  string
	City    string
	Country string
	PhaseID int64
	Status  string
}
