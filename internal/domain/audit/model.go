package audit

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is one row in the compliance trail. PatientID and HospitalID are
// only set when the caller supplied real identifiers; free-form references
// land in Metadata instead.
type AuditEvent struct {
	ID           uuid.UUID              `db:"id" json:"id"`
	UserID       uuid.UUID              `db:"user_id" json:"user_id"`
	ActionType   string                 `db:"action_type" json:"action_type"`
	ResourceType string                 `db:"resource_type" json:"resource_type"`
	ResourceID   *string                `db:"resource_id" json:"resource_id,omitempty"`
	PatientID    *uuid.UUID             `db:"patient_id" json:"patient_id,omitempty"`
	HospitalID   *string                `db:"hospital_id" json:"hospital_id,omitempty"`
	Metadata     map[string]interface{} `db:"metadata" json:"metadata,omitempty"`
	SessionID    *string                `db:"session_id" json:"session_id,omitempty"`
	IP           string                 `db:"ip" json:"ip"`
	UserAgent    string                 `db:"user_agent" json:"user_agent"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}

// Entry is the wire shape clients send. Patient and hospital references are
// strings here; coercion into typed columns happens in the service.
type Entry struct {
	ActionType   string                 `json:"action_type"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	PatientRef   string                 `json:"patient_id,omitempty"`
	HospitalRef  string                 `json:"hospital_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}
