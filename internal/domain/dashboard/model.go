package dashboard

import "time"

// Overview is the landing-page summary. Every block honors the caller's
// location scope.
type Overview struct {
	TotalPatients    int             `json:"total_patients"`
	PatientsByPhase  []PhaseCount    `json:"patients_by_phase"`
	RecentPatients   []RecentPatient `json:"recent_patients"`
	PhaseCompletions []PhaseCount    `json:"phase_completions"`
}

type PhaseCount struct {
	PhaseName string `json:"phase_name"`
	Count     int    `json:"count"`
}

type RecentPatient struct {
	PatientID int64     `json:"patient_id"`
	CaseNo    string    `json:"case_no"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// SupplyOverview is the inventory summary. It is visible only to admins and
// supply managers and is never location scoped; the store room is shared.
type SupplyOverview struct {
	TotalSupplies      int             `json:"total_supplies"`
	LowStockItems      []LowStockItem  `json:"low_stock_items"`
	SuppliesByCategory []CategoryCount `json:"supplies_by_category"`
	RecentTransactions []Transaction   `json:"recent_transactions"`
}

type LowStockItem struct {
	SupplyID     int64  `json:"supply_id"`
	ItemName     string `json:"item_name"`
	CategoryName string `json:"category_name"`
	CurrentStock int    `json:"current_stock_level"`
	ReorderLevel int    `json:"reorder_level"`
}

type CategoryCount struct {
	CategoryName string `json:"category_name"`
	Count        int    `json:"count"`
}

type Transaction struct {
	TransactionID   int64     `json:"transaction_id"`
	ItemName        string    `json:"item_name"`
	TypeName        string    `json:"type_name"`
	Quantity        int       `json:"quantity"`
	RecordedBy      string    `json:"recorded_by"`
	TransactionDate time.Time `json:"transaction_date"`
}

// UserOverview is the admin-only account summary.
type UserOverview struct {
	TotalUsers     int             `json:"total_users"`
	UsersByRole    []RoleCount     `json:"users_by_role"`
	RecentActivity []ActivityEntry `json:"recent_activity"`
	ActiveUsers    []ActiveUser    `json:"active_users"`
}

type RoleCount struct {
	RoleName string `json:"role_name"`
	Count    int    `json:"count"`
}

type ActivityEntry struct {
	Action    string    `json:"action_type"`
	Table     string    `json:"table_name"`
	Username  *string   `json:"username"`
	Timestamp time.Time `json:"change_timestamp"`
}

type ActiveUser struct {
	UserID    int64    `json:"user_id"`
	Username  string   `json:"username"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

// Analytics is the coordinator-facing breakdown, optionally bounded to a
// patient-creation date range.
type Analytics struct {
	PatientsByMonth  []MonthCount       `json:"patients_by_month"`
	PatientsByGender []GenderCount      `json:"patients_by_gender"`
	PatientsByAge    []AgeGroupCount    `json:"patients_by_age"`
	PhaseProgress    []PhaseStatusCount `json:"phase_progress"`
}

type MonthCount struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

type GenderCount struct {
	Gender *string `json:"gender"`
	Count  int     `json:"count"`
}

type AgeGroupCount struct {
	AgeGroup string `json:"age_group"`
	Count    int    `json:"count"`
}

type PhaseStatusCount struct {
	PhaseName string `json:"phase_name"`
	Status    string `json:"status"`
	Count     int    `json:"count"`
}

// DateRange bounds analytics to patients created inside it. Both ends are
// optional but must come as a pair.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (d DateRange) Set() bool {
	return d.Start != nil && d.End != nil
}
