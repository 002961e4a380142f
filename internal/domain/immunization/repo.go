package immunization

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, i *Immunization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Immunization, error)
	Update(ctx context.Context, i *Immunization) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Immunization, error)
}
