package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// viewDebounceWait matches the dashboard's burst of chart-open events.
const viewDebounceWait = 2 * time.Second

type Service struct {
	repo     Repository
	debounce *Debouncer
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, debounce: NewDebouncer(viewDebounceWait)}
}

// RequestInfo carries the HTTP-level fields stamped onto every event.
type RequestInfo struct {
	UserID    uuid.UUID
	SessionID string
	IP        string
	UserAgent string
}

// build coerces the wire entry into a typed event. Free-form patient or
// hospital references are never rejected; they move into metadata as
// patient_ref / hospital_ref.
func build(entry Entry, req RequestInfo) *AuditEvent {
	e := &AuditEvent{
		UserID:       req.UserID,
		ActionType:   entry.ActionType,
		ResourceType: entry.ResourceType,
		IP:           req.IP,
		UserAgent:    req.UserAgent,
		Metadata:     entry.Metadata,
	}
	if entry.ResourceID != "" {
		e.ResourceID = &entry.ResourceID
	}
	if req.SessionID != "" {
		e.SessionID = &req.SessionID
	}

	if entry.PatientRef != "" {
		if id, err := uuid.Parse(entry.PatientRef); err == nil {
			e.PatientID = &id
		} else {
			e.Metadata = withMeta(e.Metadata, "patient_ref", entry.PatientRef)
		}
	}
	if entry.HospitalRef != "" {
		if _, err := uuid.Parse(entry.HospitalRef); err == nil {
			e.HospitalID = &entry.HospitalRef
		} else {
			e.Metadata = withMeta(e.Metadata, "hospital_ref", entry.HospitalRef)
		}
	}
	return e
}

func withMeta(m map[string]interface{}, key, value string) map[string]interface{} {
	if m == nil {
		m = make(map[string]interface{})
	}
	m[key] = value
	return m
}

// RecordAction writes an event immediately.
func (s *Service) RecordAction(ctx context.Context, entry Entry, req RequestInfo) error {
	if entry.ActionType == "" || entry.ResourceType == "" {
		return fmt.Errorf("action_type and resource_type are required")
	}
	return s.repo.Create(ctx, build(entry, req))
}

// RecordView schedules a view event, debounced per user and resource so a
// chart opened five times in two seconds logs once. The write happens on the
// trailing edge and is detached from the request context.
func (s *Service) RecordView(entry Entry, req RequestInfo) error {
	if entry.ResourceType == "" {
		return fmt.Errorf("resource_type is required")
	}
	entry.ActionType = "view"
	e := build(entry, req)

	key := req.UserID.String() + "|" + entry.ResourceType + "|" + entry.ResourceID
	s.debounce.Do(key, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(ctx, e); err != nil {
			log.Error().Err(err).Str("resource", entry.ResourceType).Msg("audit view write failed")
		}
	})
	return nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*AuditEvent, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// Flush forces pending view events out, used in tests and on shutdown.
func (s *Service) Flush() {
	s.debounce.Flush()
}

// Close stops the debouncer and writes everything still pending.
func (s *Service) Close() {
	s.debounce.Close()
}
