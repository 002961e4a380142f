package audit

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows the admin listing.
type Filter struct {
	UserID     *uuid.UUID
	PatientID  *uuid.UUID
	ActionType string
}

type Repository interface {
	Create(ctx context.Context, e *AuditEvent) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*AuditEvent, int, error)
}
