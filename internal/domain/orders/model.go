package orders

import (
	"time"

	"github.com/google/uuid"
)

// StagedOrder is an order waiting for a clinician signature. Orders staged
// by the assistant carry source "alis" so the UI can badge them.
type StagedOrder struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	HospitalID string     `db:"hospital_id" json:"hospital_id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	OrderType  string     `db:"order_type" json:"order_type"`
	Name       string     `db:"name" json:"name"`
	Priority   string     `db:"priority" json:"priority"`
	Rationale  *string    `db:"rationale" json:"rationale,omitempty"`
	Status     string     `db:"status" json:"status"`
	StagedBy   uuid.UUID  `db:"staged_by" json:"staged_by"`
	Source     string     `db:"source" json:"source"`
	SignedBy   *uuid.UUID `db:"signed_by" json:"signed_by,omitempty"`
	SignedAt   *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Prescription is an outpatient prescription drafted on the dashboard.
type Prescription struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	HospitalID   string     `db:"hospital_id" json:"hospital_id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	Medication   string     `db:"medication" json:"medication"`
	Dose         string     `db:"dose" json:"dose"`
	Route        string     `db:"route" json:"route"`
	Frequency    string     `db:"frequency" json:"frequency"`
	Quantity     int        `db:"quantity" json:"quantity"`
	Refills      int        `db:"refills" json:"refills"`
	Status       string     `db:"status" json:"status"`
	PrescriberID uuid.UUID  `db:"prescriber_id" json:"prescriber_id"`
	Pharmacy     *string    `db:"pharmacy" json:"pharmacy,omitempty"`
	SignedAt     *time.Time `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// OrderFilter narrows staged-order lists.
type OrderFilter struct {
	PatientID *uuid.UUID
	Status    string
}
