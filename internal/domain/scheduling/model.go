package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	HospitalID      string    `db:"hospital_id" json:"hospital_id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	ProviderID      uuid.UUID `db:"provider_id" json:"provider_id"`
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	AppointmentType string    `db:"appointment_type" json:"appointment_type"`
	Location        *string   `db:"location" json:"location,omitempty"`
	Status          string    `db:"status" json:"status"`
	Reason          *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Encounter struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	HospitalID     string     `db:"hospital_id" json:"hospital_id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderID     uuid.UUID  `db:"provider_id" json:"provider_id"`
	EncounterType  string     `db:"encounter_type" json:"encounter_type"`
	Status         string     `db:"status" json:"status"`
	StartedAt      *time.Time `db:"started_at" json:"started_at,omitempty"`
	EndedAt        *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	ChiefComplaint *string    `db:"chief_complaint" json:"chief_complaint,omitempty"`
	Disposition    *string    `db:"disposition" json:"disposition,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// AppointmentFilter narrows appointment lists. Day selects the calendar day
// in UTC.
type AppointmentFilter struct {
	PatientID  *uuid.UUID
	ProviderID *uuid.UUID
	Day        *time.Time
	Status     string
}
