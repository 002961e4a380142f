package admin

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *HospitalUser) error
	GetByID(ctx context.Context, id uuid.UUID) (*HospitalUser, error)
	GetByEmail(ctx context.Context, hospitalID, email string) (*HospitalUser, error)
	Update(ctx context.Context, u *HospitalUser) error
	ListByHospital(ctx context.Context, hospitalID string) ([]*HospitalUser, error)
}
