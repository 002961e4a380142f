package immunization

import (
	"time"

	"github.com/google/uuid"
)

type Immunization struct {
	ID             uuid.UUID `db:"id" json:"id"`
	HospitalID     string    `db:"hospital_id" json:"hospital_id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	VaccineCode    string    `db:"vaccine_code" json:"vaccine_code"`
	VaccineName    string    `db:"vaccine_name" json:"vaccine_name"`
	DoseNo         int       `db:"dose_no" json:"dose_no"`
	LotNumber      *string   `db:"lot_number" json:"lot_number,omitempty"`
	Site           *string   `db:"site" json:"site,omitempty"`
	Route          *string   `db:"route" json:"route,omitempty"`
	AdministeredBy uuid.UUID `db:"administered_by" json:"administered_by"`
	AdministeredAt time.Time `db:"administered_at" json:"administered_at"`
	Status         string    `db:"status" json:"status"`
	StatusReason   *string   `db:"status_reason" json:"status_reason,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
