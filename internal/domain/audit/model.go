package audit

import (
	"encoding/json"
	"time"
)

// Action is the kind of change an audit record captures.
type Action string

const (
	ActionCreate        Action = "CREATE"
	ActionUpdate        Action = "UPDATE"
	ActionDelete        Action = "DELETE"
	ActionLogin         Action = "LOGIN"
	ActionLogout        Action = "LOGOUT"
	ActionPhaseAdvance  Action = "PHASE_ADVANCE"
	ActionPhaseComplete Action = "PHASE_COMPLETE"
	ActionStockUpdate   Action = "STOCK_UPDATE"
	ActionDeactivate    Action = "DEACTIVATE"
)

// Entry is a change record to be written. Before and After are full-entity
// snapshots, not diffs, so any point-in-time state can be reconstructed from
// the log alone. Either may be nil (Before for creates, After for deletes).
type Entry struct {
	Table   string
	RecordID int64
	Action  Action
	Before  interface{}
	After   interface{}
	ActorID int64
}

// Log is a persisted audit record.
type Log struct {
	ID        int64           `db:"log_id" json:"log_id"`
	Table     string          `db:"table_name" json:"table_name"`
	RecordID  int64           `db:"record_id" json:"record_id"`
	Action    Action          `db:"action_type" json:"action_type"`
	Before    json.RawMessage `db:"old_data" json:"old_data,omitempty"`
	After     json.RawMessage `db:"new_data" json:"new_data,omitempty"`
	ActorID   int64           `db:"changed_by_user_id" json:"changed_by_user_id"`
	Timestamp time.Time       `db:"change_timestamp" json:"change_timestamp"`

	// Joined from users for the admin listing.
	ActorUsername string `db:"username" json:"username,omitempty"`
}

// ListFilter narrows the admin audit listing.
type ListFilter struct {
	Table     string
	Action    string
	ActorID   int64
	StartDate *time.Time
	EndDate   *time.Time
}

// Stats is the admin summary of audit activity.
type Stats struct {
	TotalLogs     int             `json:"total_logs"`
	ActionCounts  []ActionCount   `json:"action_types"`
	TableActivity []TableCount    `json:"table_activity"`
	UserActivity  []UserActivity  `json:"user_activity"`
}

type ActionCount struct {
	Action Action `json:"action_type"`
	Count  int    `json:"count"`
}

type TableCount struct {
	Table string `json:"table_name"`
	Count int    `json:"count"`
}

type UserActivity struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Count     int    `json:"count"`
}
