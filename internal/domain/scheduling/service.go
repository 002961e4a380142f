package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var validAppointmentStatuses = map[string]bool{
	"scheduled": true, "checked_in": true, "completed": true,
	"cancelled": true, "no_show": true,
}

var validEncounterTypes = map[string]bool{
	"inpatient": true, "outpatient": true, "emergency": true, "virtual": true,
}

type Service struct {
	appointments AppointmentRepository
	encounters   EncounterRepository
}

func NewService(appointments AppointmentRepository, encounters EncounterRepository) *Service {
	return &Service{appointments: appointments, encounters: encounters}
}

func (s *Service) Book(ctx context.Context, a *Appointment) error {
	if a.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if a.PatientID == uuid.Nil || a.ProviderID == uuid.Nil {
		return fmt.Errorf("patient_id and provider_id are required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.DurationMinutes <= 0 {
		a.DurationMinutes = 30
	}
	if a.AppointmentType == "" {
		return fmt.Errorf("appointment_type is required")
	}
	a.Status = "scheduled"
	return s.appointments.Create(ctx, a)
}

func (s *Service) ListAppointments(ctx context.Context, hospitalID string, filter AppointmentFilter, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, hospitalID, filter, limit, offset)
}

func (s *Service) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validAppointmentStatuses[status] {
		return nil, fmt.Errorf("invalid status: %s", status)
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if a.Status == "completed" || a.Status == "cancelled" {
		return nil, fmt.Errorf("appointment is already %s", a.Status)
	}
	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	a.Status = status
	return a, nil
}

// StartEncounter creates an in-progress encounter stamped with a start time.
func (s *Service) StartEncounter(ctx context.Context, e *Encounter) error {
	if e.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if e.PatientID == uuid.Nil || e.ProviderID == uuid.Nil {
		return fmt.Errorf("patient_id and provider_id are required")
	}
	if !validEncounterTypes[e.EncounterType] {
		return fmt.Errorf("invalid encounter_type: %s", e.EncounterType)
	}
	now := time.Now().UTC()
	e.Status = "in_progress"
	e.StartedAt = &now
	return s.encounters.Create(ctx, e)
}

// CloseEncounter finishes an encounter. An encounter that never started
// cannot be closed.
func (s *Service) CloseEncounter(ctx context.Context, id uuid.UUID, disposition string) (*Encounter, error) {
	e, err := s.encounters.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load encounter: %w", err)
	}
	if e.StartedAt == nil {
		return nil, fmt.Errorf("encounter has not started")
	}
	if e.Status == "finished" || e.Status == "cancelled" {
		return nil, fmt.Errorf("encounter is already %s", e.Status)
	}
	now := time.Now().UTC()
	e.Status = "finished"
	e.EndedAt = &now
	if disposition != "" {
		e.Disposition = &disposition
	}
	if err := s.encounters.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) ListEncounters(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	return s.encounters.ListByPatient(ctx, patientID)
}
