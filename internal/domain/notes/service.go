package notes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var validNoteTypes = map[string]bool{
	"progress": true, "admission": true, "discharge": true, "consult": true,
	"procedure": true, "nursing": true,
}

type Service struct {
	notes     Repository
	templates TemplateRepository
}

func NewService(notes Repository, templates TemplateRepository) *Service {
	return &Service{notes: notes, templates: templates}
}

func (s *Service) Create(ctx context.Context, n *ClinicalNote) error {
	if n.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if n.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if n.AuthorID == uuid.Nil {
		return fmt.Errorf("author_id is required")
	}
	if !validNoteTypes[n.NoteType] {
		return fmt.Errorf("invalid note_type: %s", n.NoteType)
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	n.Status = "draft"
	return s.notes.Create(ctx, n)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ClinicalNote, error) {
	return s.notes.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalNote, int, error) {
	return s.notes.ListByPatient(ctx, patientID, limit, offset)
}

// Update edits a draft. Signed notes are frozen.
func (s *Service) Update(ctx context.Context, id uuid.UUID, title, body string) (*ClinicalNote, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load note: %w", err)
	}
	if n.Status != "draft" {
		return nil, fmt.Errorf("note is %s and cannot be edited, add an addendum instead", n.Status)
	}
	if title != "" {
		n.Title = title
	}
	n.Body = body
	if err := s.notes.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) Sign(ctx context.Context, id, signerID uuid.UUID) (*ClinicalNote, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load note: %w", err)
	}
	if n.Status != "draft" {
		return nil, fmt.Errorf("note is %s, only drafts can be signed", n.Status)
	}
	if n.AuthorID != signerID {
		return nil, fmt.Errorf("only the author can sign a note")
	}
	now := time.Now().UTC()
	n.Status = "signed"
	n.SignedAt = &now
	if err := s.notes.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Addend appends an addendum to a signed note and marks the note addended.
func (s *Service) Addend(ctx context.Context, noteID, authorID uuid.UUID, body string) (*Addendum, error) {
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}
	n, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("load note: %w", err)
	}
	if n.Status == "draft" {
		return nil, fmt.Errorf("draft notes are edited directly, not addended")
	}

	a := &Addendum{NoteID: noteID, AuthorID: authorID, Body: body}
	if err := s.notes.CreateAddendum(ctx, a); err != nil {
		return nil, err
	}
	if n.Status != "addended" {
		n.Status = "addended"
		if err := s.notes.Update(ctx, n); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *Service) ListAddenda(ctx context.Context, noteID uuid.UUID) ([]*Addendum, error) {
	return s.notes.ListAddenda(ctx, noteID)
}

func (s *Service) CreateTemplate(ctx context.Context, t *NoteTemplate) error {
	if t.Name == "" || t.Body == "" {
		return fmt.Errorf("name and body are required")
	}
	if !validNoteTypes[t.NoteType] {
		return fmt.Errorf("invalid note_type: %s", t.NoteType)
	}
	t.IsActive = true
	return s.templates.Create(ctx, t)
}

func (s *Service) UpdateTemplate(ctx context.Context, t *NoteTemplate) error {
	if !validNoteTypes[t.NoteType] {
		return fmt.Errorf("invalid note_type: %s", t.NoteType)
	}
	return s.templates.Update(ctx, t)
}

func (s *Service) DeactivateTemplate(ctx context.Context, id uuid.UUID) error {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load template: %w", err)
	}
	t.IsActive = false
	return s.templates.Update(ctx, t)
}

func (s *Service) ListTemplates(ctx context.Context, hospitalID, noteType string) ([]*NoteTemplate, error) {
	return s.templates.ListActive(ctx, hospitalID, noteType)
}
