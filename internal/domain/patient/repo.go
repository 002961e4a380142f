package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	ListCensus(ctx context.Context, hospitalID string, filter CensusFilter, limit, offset int) ([]*Patient, int, error)
}

type VitalRepository interface {
	Create(ctx context.Context, v *VitalSign) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalSign, error)
}

type LabRepository interface {
	Create(ctx context.Context, l *LabResult) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error)
}

type MedicationRepository interface {
	Create(ctx context.Context, m *ActiveMedication) error
	ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*ActiveMedication, error)
	Discontinue(ctx context.Context, id uuid.UUID) error
}
