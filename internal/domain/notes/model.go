package notes

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalNote is documentation on a patient chart. Once signed, the body is
// frozen; corrections go through addenda.
type ClinicalNote struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	HospitalID  string     `db:"hospital_id" json:"hospital_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	EncounterID *uuid.UUID `db:"encounter_id" json:"encounter_id,omitempty"`
	AuthorID    uuid.UUID  `db:"author_id" json:"author_id"`
	NoteType    string     `db:"note_type" json:"note_type"`
	Title       string     `db:"title" json:"title"`
	Body        string     `db:"body" json:"body"`
	Status      string     `db:"status" json:"status"`
	SignedAt    *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Addendum is an amendment appended to a signed note.
type Addendum struct {
	ID        uuid.UUID `db:"id" json:"id"`
	NoteID    uuid.UUID `db:"note_id" json:"note_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NoteTemplate is a reusable note skeleton. Templates without a hospital_id
// are shared across hospitals.
type NoteTemplate struct {
	ID         uuid.UUID `db:"id" json:"id"`
	HospitalID *string   `db:"hospital_id" json:"hospital_id,omitempty"`
	Name       string    `db:"name" json:"name"`
	NoteType   string    `db:"note_type" json:"note_type"`
	Specialty  *string   `db:"specialty" json:"specialty,omitempty"`
	Body       string    `db:"body" json:"body"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
