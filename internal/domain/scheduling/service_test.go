package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	a, ok := m.appointments[id]
	if !ok {
		return fmt.Errorf("appointment not found")
	}
	a.Status = status
	return nil
}

func (m *mockAppointmentRepo) List(ctx context.Context, hospitalID string, filter AppointmentFilter, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appointments {
		if a.HospitalID != hospitalID {
			continue
		}
		if filter.ProviderID != nil && a.ProviderID != *filter.ProviderID {
			continue
		}
		if filter.Day != nil && !sameDay(a.ScheduledAt, *filter.Day) {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func sameDay(a, b time.Time) bool {
	return a.UTC().Truncate(24*time.Hour) == b.UTC().Truncate(24*time.Hour)
}

type mockEncounterRepo struct {
	encounters map[uuid.UUID]*Encounter
}

func newMockEncounterRepo() *mockEncounterRepo {
	return &mockEncounterRepo{encounters: make(map[uuid.UUID]*Encounter)}
}

func (m *mockEncounterRepo) Create(ctx context.Context, e *Encounter) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	m.encounters[e.ID] = &cp
	return nil
}

func (m *mockEncounterRepo) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	e, ok := m.encounters[id]
	if !ok {
		return nil, fmt.Errorf("encounter not found")
	}
	cp := *e
	return &cp, nil
}

func (m *mockEncounterRepo) Update(ctx context.Context, e *Encounter) error {
	if _, ok := m.encounters[e.ID]; !ok {
		return fmt.Errorf("encounter not found")
	}
	cp := *e
	m.encounters[e.ID] = &cp
	return nil
}

func (m *mockEncounterRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	var out []*Encounter
	for _, e := range m.encounters {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestBookAppointment(t *testing.T) {
	svc := NewService(newMockAppointmentRepo(), newMockEncounterRepo())
	ctx := context.Background()

	a := &Appointment{
		HospitalID:      "hopital-virtualis",
		PatientID:       uuid.New(),
		ProviderID:      uuid.New(),
		ScheduledAt:     time.Now().Add(24 * time.Hour),
		AppointmentType: "follow-up",
	}
	if err := svc.Book(ctx, a); err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if a.Status != "scheduled" {
		t.Errorf("Status = %q, want %q", a.Status, "scheduled")
	}
	if a.DurationMinutes != 30 {
		t.Errorf("DurationMinutes = %d, want default 30", a.DurationMinutes)
	}
}

func TestAppointmentStatusTransitions(t *testing.T) {
	svc := NewService(newMockAppointmentRepo(), newMockEncounterRepo())
	ctx := context.Background()

	a := &Appointment{
		HospitalID:      "hopital-virtualis",
		PatientID:       uuid.New(),
		ProviderID:      uuid.New(),
		ScheduledAt:     time.Now(),
		AppointmentType: "consult",
	}
	if err := svc.Book(ctx, a); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	if _, err := svc.UpdateAppointmentStatus(ctx, a.ID, "sleeping"); err == nil {
		t.Error("UpdateAppointmentStatus() with bad status expected error, got nil")
	}

	updated, err := svc.UpdateAppointmentStatus(ctx, a.ID, "completed")
	if err != nil {
		t.Fatalf("UpdateAppointmentStatus() error = %v", err)
	}
	if updated.Status != "completed" {
		t.Errorf("Status = %q, want %q", updated.Status, "completed")
	}

	// Terminal states stay terminal.
	if _, err := svc.UpdateAppointmentStatus(ctx, a.ID, "checked_in"); err == nil {
		t.Error("UpdateAppointmentStatus() on completed appointment expected error, got nil")
	}
}

func TestEncounterLifecycle(t *testing.T) {
	svc := NewService(newMockAppointmentRepo(), newMockEncounterRepo())
	ctx := context.Background()

	e := &Encounter{
		HospitalID:    "hopital-virtualis",
		PatientID:     uuid.New(),
		ProviderID:    uuid.New(),
		EncounterType: "inpatient",
	}
	if err := svc.StartEncounter(ctx, e); err != nil {
		t.Fatalf("StartEncounter() error = %v", err)
	}
	if e.Status != "in_progress" || e.StartedAt == nil {
		t.Fatalf("started encounter = status %q, started_at %v", e.Status, e.StartedAt)
	}

	closed, err := svc.CloseEncounter(ctx, e.ID, "discharged home")
	if err != nil {
		t.Fatalf("CloseEncounter() error = %v", err)
	}
	if closed.Status != "finished" || closed.EndedAt == nil {
		t.Errorf("closed encounter = status %q, ended_at %v", closed.Status, closed.EndedAt)
	}
	if closed.Disposition == nil || *closed.Disposition != "discharged home" {
		t.Error("disposition not recorded")
	}

	if _, err := svc.CloseEncounter(ctx, e.ID, ""); err == nil {
		t.Error("CloseEncounter() twice expected error, got nil")
	}
}

func TestCloseEncounterRequiresStart(t *testing.T) {
	encounters := newMockEncounterRepo()
	svc := NewService(newMockAppointmentRepo(), encounters)
	ctx := context.Background()

	// A planned encounter row with no start time, as legacy imports produce.
	e := &Encounter{
		ID:            uuid.New(),
		HospitalID:    "hopital-virtualis",
		PatientID:     uuid.New(),
		ProviderID:    uuid.New(),
		EncounterType: "outpatient",
		Status:        "planned",
	}
	encounters.encounters[e.ID] = e

	if _, err := svc.CloseEncounter(ctx, e.ID, ""); err == nil {
		t.Error("CloseEncounter() without start expected error, got nil")
	}
}
