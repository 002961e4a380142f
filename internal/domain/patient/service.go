package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Counts shown on the dashboard detail panel per fetch.
const (
	detailVitalsLimit = 24
	detailLabsLimit   = 50
)

type Service struct {
	patients Repository
	vitals   VitalRepository
	labs     LabRepository
	meds     MedicationRepository
}

func NewService(patients Repository, vitals VitalRepository, labs LabRepository, meds MedicationRepository) *Service {
	return &Service{patients: patients, vitals: vitals, labs: labs, meds: meds}
}

var validAcuities = map[string]bool{
	"critical": true, "high": true, "moderate": true, "low": true,
}

var validLabFlags = map[string]bool{
	"normal": true, "high": true, "low": true, "critical": true,
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if p.MRN == "" {
		return fmt.Errorf("mrn is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.Acuity == "" {
		p.Acuity = "moderate"
	}
	if !validAcuities[p.Acuity] {
		return fmt.Errorf("invalid acuity: %s", p.Acuity)
	}
	if p.CodeStatus == "" {
		p.CodeStatus = "Full Code"
	}
	if p.Status == "" {
		p.Status = "admitted"
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.Acuity != "" && !validAcuities[p.Acuity] {
		return fmt.Errorf("invalid acuity: %s", p.Acuity)
	}
	return s.patients.Update(ctx, p)
}

// Census lists patients for the selected hospital. An unknown hospital yields
// an empty page, not an error.
func (s *Service) Census(ctx context.Context, hospitalID string, filter CensusFilter, limit, offset int) ([]*Patient, int, error) {
	return s.patients.ListCensus(ctx, hospitalID, filter, limit, offset)
}

// Details assembles the detail-panel bundle: the patient row plus recent
// vitals, recent labs, and the active medication list.
func (s *Service) Details(ctx context.Context, id uuid.UUID) (*Details, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	vitals, err := s.vitals.ListByPatient(ctx, id, detailVitalsLimit)
	if err != nil {
		return nil, fmt.Errorf("load vitals: %w", err)
	}
	labs, err := s.labs.ListByPatient(ctx, id, detailLabsLimit)
	if err != nil {
		return nil, fmt.Errorf("load labs: %w", err)
	}
	meds, err := s.meds.ListActiveByPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load medications: %w", err)
	}

	return &Details{Patient: p, Vitals: vitals, Labs: labs, Medications: meds}, nil
}

func (s *Service) RecordVital(ctx context.Context, v *VitalSign) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if v.RecordedBy == uuid.Nil {
		return fmt.Errorf("recorded_by is required")
	}
	if v.HeartRate == nil && v.SystolicBP == nil && v.RespRate == nil &&
		v.SpO2 == nil && v.TempC == nil && v.PainScore == nil {
		return fmt.Errorf("at least one measurement is required")
	}
	if v.SpO2 != nil && (*v.SpO2 < 0 || *v.SpO2 > 100) {
		return fmt.Errorf("spo2 must be between 0 and 100")
	}
	if v.PainScore != nil && (*v.PainScore < 0 || *v.PainScore > 10) {
		return fmt.Errorf("pain_score must be between 0 and 10")
	}
	if v.RecordedAt.IsZero() {
		v.RecordedAt = time.Now().UTC()
	}
	return s.vitals.Create(ctx, v)
}

func (s *Service) ListVitals(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalSign, error) {
	if limit <= 0 {
		limit = detailVitalsLimit
	}
	return s.vitals.ListByPatient(ctx, patientID, limit)
}

func (s *Service) RecordLab(ctx context.Context, l *LabResult) error {
	if l.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if l.Code == "" || l.Name == "" {
		return fmt.Errorf("code and name are required")
	}
	if l.Flag == "" {
		l.Flag = "normal"
	}
	if !validLabFlags[l.Flag] {
		return fmt.Errorf("invalid flag: %s", l.Flag)
	}
	if l.ResultedAt.IsZero() {
		l.ResultedAt = time.Now().UTC()
	}
	return s.labs.Create(ctx, l)
}

func (s *Service) ListLabs(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error) {
	if limit <= 0 {
		limit = detailLabsLimit
	}
	return s.labs.ListByPatient(ctx, patientID, limit)
}

func (s *Service) StartMedication(ctx context.Context, m *ActiveMedication) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if m.Name == "" || m.Dose == "" {
		return fmt.Errorf("name and dose are required")
	}
	if m.Status == "" {
		m.Status = "active"
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now().UTC()
	}
	return s.meds.Create(ctx, m)
}

func (s *Service) ListMedications(ctx context.Context, patientID uuid.UUID) ([]*ActiveMedication, error) {
	return s.meds.ListActiveByPatient(ctx, patientID)
}

func (s *Service) DiscontinueMedication(ctx context.Context, id uuid.UUID) error {
	return s.meds.Discontinue(ctx, id)
}
