package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient represents an admitted or registered patient on the census.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	HospitalID  string     `db:"hospital_id" json:"hospital_id"`
	MRN         string     `db:"mrn" json:"mrn"`
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	DateOfBirth time.Time  `db:"date_of_birth" json:"date_of_birth"`
	Sex         string     `db:"sex" json:"sex"`
	Unit        *string    `db:"unit" json:"unit,omitempty"`
	Room        *string    `db:"room" json:"room,omitempty"`
	Bed         *string    `db:"bed" json:"bed,omitempty"`
	AttendingID *uuid.UUID `db:"attending_id" json:"attending_id,omitempty"`
	Acuity      string     `db:"acuity" json:"acuity"`
	CodeStatus  string     `db:"code_status" json:"code_status"`
	Status      string     `db:"status" json:"status"`
	AdmittedAt  *time.Time `db:"admitted_at" json:"admitted_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// VitalSign is one recorded set of vitals.
type VitalSign struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	RecordedBy  uuid.UUID `db:"recorded_by" json:"recorded_by"`
	RecordedAt  time.Time `db:"recorded_at" json:"recorded_at"`
	HeartRate   *int      `db:"heart_rate" json:"heart_rate,omitempty"`
	SystolicBP  *int      `db:"systolic_bp" json:"systolic_bp,omitempty"`
	DiastolicBP *int      `db:"diastolic_bp" json:"diastolic_bp,omitempty"`
	RespRate    *int      `db:"resp_rate" json:"resp_rate,omitempty"`
	SpO2        *int      `db:"spo2" json:"spo2,omitempty"`
	TempC       *float64  `db:"temp_c" json:"temp_c,omitempty"`
	PainScore   *int      `db:"pain_score" json:"pain_score,omitempty"`
}

// LabResult is one resulted lab value.
type LabResult struct {
	ID         uuid.UUID `db:"id" json:"id"`
	PatientID  uuid.UUID `db:"patient_id" json:"patient_id"`
	Panel      string    `db:"panel" json:"panel"`
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"name" json:"name"`
	Value      string    `db:"value" json:"value"`
	Unit       *string   `db:"unit" json:"unit,omitempty"`
	RefLow     *string   `db:"ref_low" json:"ref_low,omitempty"`
	RefHigh    *string   `db:"ref_high" json:"ref_high,omitempty"`
	Flag       string    `db:"flag" json:"flag"`
	ResultedAt time.Time `db:"resulted_at" json:"resulted_at"`
}

// ActiveMedication is a medication currently on a patient's MAR.
type ActiveMedication struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	Name      string     `db:"name" json:"name"`
	Dose      string     `db:"dose" json:"dose"`
	Route     string     `db:"route" json:"route"`
	Frequency string     `db:"frequency" json:"frequency"`
	Status    string     `db:"status" json:"status"`
	StartedAt time.Time  `db:"started_at" json:"started_at"`
	EndedAt   *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}

// Details bundles a patient with the clinical data the dashboard detail
// panel renders in one fetch.
type Details struct {
	Patient     *Patient            `json:"patient"`
	Vitals      []*VitalSign        `json:"vitals"`
	Labs        []*LabResult        `json:"labs"`
	Medications []*ActiveMedication `json:"medications"`
}

// CensusFilter narrows the census list.
type CensusFilter struct {
	Unit        string
	Status      string
	AttendingID *uuid.UUID
}
