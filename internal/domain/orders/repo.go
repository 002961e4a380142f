package orders

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, o *StagedOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*StagedOrder, error)
	Update(ctx context.Context, o *StagedOrder) error
	List(ctx context.Context, hospitalID string, filter OrderFilter, limit, offset int) ([]*StagedOrder, int, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
}
