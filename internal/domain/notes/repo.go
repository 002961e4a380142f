package notes

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *ClinicalNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*ClinicalNote, error)
	Update(ctx context.Context, n *ClinicalNote) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalNote, int, error)
	CreateAddendum(ctx context.Context, a *Addendum) error
	ListAddenda(ctx context.Context, noteID uuid.UUID) ([]*Addendum, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, t *NoteTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*NoteTemplate, error)
	Update(ctx context.Context, t *NoteTemplate) error
	ListActive(ctx context.Context, hospitalID, noteType string) ([]*NoteTemplate, error)
}
