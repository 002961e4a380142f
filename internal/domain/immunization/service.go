package immunization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Record(ctx context.Context, i *Immunization) error {
	if i.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if i.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if i.VaccineCode == "" || i.VaccineName == "" {
		return fmt.Errorf("vaccine_code and vaccine_name are required")
	}
	if i.DoseNo <= 0 {
		i.DoseNo = 1
	}
	if i.AdministeredBy == uuid.Nil {
		return fmt.Errorf("administered_by is required")
	}
	if i.AdministeredAt.IsZero() {
		i.AdministeredAt = time.Now().UTC()
	}
	i.Status = "completed"
	return s.repo.Create(ctx, i)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Immunization, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// MarkEnteredInError flags a record as a charting mistake. The row stays for
// the audit trail.
func (s *Service) MarkEnteredInError(ctx context.Context, id uuid.UUID, reason string) (*Immunization, error) {
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load immunization: %w", err)
	}
	if i.Status == "entered_in_error" {
		return i, nil
	}
	i.Status = "entered_in_error"
	if reason != "" {
		i.StatusReason = &reason
	}
	if err := s.repo.Update(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}
