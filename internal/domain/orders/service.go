package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	SourceClinician = "clinician"
	SourceAssistant = "alis"
)

var validOrderTypes = map[string]bool{
	"imaging": true, "lab": true, "medication": true, "consult": true, "procedure": true,
}

var validPriorities = map[string]bool{
	"STAT": true, "Urgent": true, "Today": true, "Routine": true,
}

type Service struct {
	orders Repository
	rx     PrescriptionRepository
}

func NewService(orders Repository, rx PrescriptionRepository) *Service {
	return &Service{orders: orders, rx: rx}
}

// Stage creates a pending order. Both clinicians and the assistant stage
// through here; nothing reaches the signed state without a signature.
func (s *Service) Stage(ctx context.Context, o *StagedOrder) error {
	if o.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if o.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if o.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validOrderTypes[o.OrderType] {
		return fmt.Errorf("invalid order_type: %s", o.OrderType)
	}
	if o.Priority == "" {
		o.Priority = "Routine"
	}
	if !validPriorities[o.Priority] {
		return fmt.Errorf("invalid priority: %s", o.Priority)
	}
	if o.StagedBy == uuid.Nil {
		return fmt.Errorf("staged_by is required")
	}
	if o.Source == "" {
		o.Source = SourceClinician
	}
	if o.Source != SourceClinician && o.Source != SourceAssistant {
		return fmt.Errorf("invalid source: %s", o.Source)
	}
	o.Status = "staged"
	return s.orders.Create(ctx, o)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StagedOrder, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, hospitalID string, filter OrderFilter, limit, offset int) ([]*StagedOrder, int, error) {
	return s.orders.List(ctx, hospitalID, filter, limit, offset)
}

// Sign moves a staged order to signed and records who signed it. Signing
// anything other than a staged order errors.
func (s *Service) Sign(ctx context.Context, id, signerID uuid.UUID) (*StagedOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if o.Status != "staged" {
		return nil, fmt.Errorf("order is %s, only staged orders can be signed", o.Status)
	}
	now := time.Now().UTC()
	o.Status = "signed"
	o.SignedBy = &signerID
	o.SignedAt = &now
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Discontinue(ctx context.Context, id uuid.UUID) (*StagedOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if o.Status == "discontinued" {
		return o, nil
	}
	o.Status = "discontinued"
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) CreatePrescription(ctx context.Context, p *Prescription) error {
	if p.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.Medication == "" || p.Dose == "" {
		return fmt.Errorf("medication and dose are required")
	}
	if p.PrescriberID == uuid.Nil {
		return fmt.Errorf("prescriber_id is required")
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if p.Refills < 0 {
		return fmt.Errorf("refills cannot be negative")
	}
	p.Status = "draft"
	return s.rx.Create(ctx, p)
}

func (s *Service) SignPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.rx.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load prescription: %w", err)
	}
	if p.Status != "draft" {
		return nil, fmt.Errorf("prescription is %s, only drafts can be signed", p.Status)
	}
	now := time.Now().UTC()
	p.Status = "signed"
	p.SignedAt = &now
	if err := s.rx.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) CancelPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.rx.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load prescription: %w", err)
	}
	if p.Status == "sent" {
		return nil, fmt.Errorf("prescription already sent to pharmacy")
	}
	p.Status = "cancelled"
	if err := s.rx.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	return s.rx.ListByPatient(ctx, patientID)
}
