package notes

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockNoteRepo struct {
	notes   map[uuid.UUID]*ClinicalNote
	addenda []*Addendum
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[uuid.UUID]*ClinicalNote)}
}

func (m *mockNoteRepo) Create(ctx context.Context, n *ClinicalNote) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *mockNoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*ClinicalNote, error) {
	n, ok := m.notes[id]
	if !ok {
		return nil, fmt.Errorf("note not found")
	}
	cp := *n
	return &cp, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, n *ClinicalNote) error {
	if _, ok := m.notes[n.ID]; !ok {
		return fmt.Errorf("note not found")
	}
	cp := *n
	m.notes[n.ID] = &cp
	return nil
}

func (m *mockNoteRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalNote, int, error) {
	var out []*ClinicalNote
	for _, n := range m.notes {
		if n.PatientID == patientID {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (m *mockNoteRepo) CreateAddendum(ctx context.Context, a *Addendum) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.addenda = append(m.addenda, a)
	return nil
}

func (m *mockNoteRepo) ListAddenda(ctx context.Context, noteID uuid.UUID) ([]*Addendum, error) {
	var out []*Addendum
	for _, a := range m.addenda {
		if a.NoteID == noteID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockTemplateRepo struct {
	templates map[uuid.UUID]*NoteTemplate
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{templates: make(map[uuid.UUID]*NoteTemplate)}
}

func (m *mockTemplateRepo) Create(ctx context.Context, t *NoteTemplate) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (*NoteTemplate, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("template not found")
	}
	cp := *t
	return &cp, nil
}

func (m *mockTemplateRepo) Update(ctx context.Context, t *NoteTemplate) error {
	if _, ok := m.templates[t.ID]; !ok {
		return fmt.Errorf("template not found")
	}
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *mockTemplateRepo) ListActive(ctx context.Context, hospitalID, noteType string) ([]*NoteTemplate, error) {
	var out []*NoteTemplate
	for _, t := range m.templates {
		if !t.IsActive {
			continue
		}
		if t.HospitalID != nil && *t.HospitalID != hospitalID {
			continue
		}
		if noteType != "" && t.NoteType != noteType {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func validNote(authorID uuid.UUID) *ClinicalNote {
	return &ClinicalNote{
		HospitalID: "hopital-virtualis",
		PatientID:  uuid.New(),
		AuthorID:   authorID,
		NoteType:   "progress",
		Title:      "ICU progress note",
		Body:       "Patient stable overnight.",
	}
}

func TestCreateNote(t *testing.T) {
	svc := NewService(newMockNoteRepo(), newMockTemplateRepo())
	ctx := context.Background()

	n := validNote(uuid.New())
	if err := svc.Create(ctx, n); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if n.Status != "draft" {
		t.Errorf("Status = %q, want %q", n.Status, "draft")
	}
}

func TestCreateNoteRejectsBadType(t *testing.T) {
	svc := NewService(newMockNoteRepo(), newMockTemplateRepo())
	ctx := context.Background()

	n := validNote(uuid.New())
	n.NoteType = "haiku"
	if err := svc.Create(ctx, n); err == nil {
		t.Error("Create() expected error for bad note_type, got nil")
	}
}

func TestSignFreezesNote(t *testing.T) {
	svc := NewService(newMockNoteRepo(), newMockTemplateRepo())
	ctx := context.Background()

	author := uuid.New()
	n := validNote(author)
	if err := svc.Create(ctx, n); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	signed, err := svc.Sign(ctx, n.ID, author)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	if signed.Status != "signed" || signed.SignedAt == nil {
		t.Errorf("signed note = status %q, signed_at %v", signed.Status, signed.SignedAt)
	}

	if _, err := svc.Update(ctx, n.ID, "", "edited after the fact"); err == nil {
		t.Error("Update() on signed note expected error, got nil")
	}
	if _, err := svc.Sign(ctx, n.ID, author); err == nil {
		t.Error("Sign() twice expected error, got nil")
	}
}

func TestSignRequiresAuthor(t *testing.T) {
	svc := NewService(newMockNoteRepo(), newMockTemplateRepo())
	ctx := context.Background()

	n := validNote(uuid.New())
	if err := svc.Create(ctx, n); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Sign(ctx, n.ID, uuid.New()); err == nil {
		t.Error("Sign() by non-author expected error, got nil")
	}
}

func TestAddendumTrail(t *testing.T) {
	svc := NewService(newMockNoteRepo(), newMockTemplateRepo())
	ctx := context.Background()

	author := uuid.New()
	n := validNote(author)
	if err := svc.Create(ctx, n); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Drafts are edited directly, never addended.
	if _, err := svc.Addend(ctx, n.ID, author, "too early"); err == nil {
		t.Error("Addend() on draft expected error, got nil")
	}

	if _, err := svc.Sign(ctx, n.ID, author); err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	a, err := svc.Addend(ctx, n.ID, author, "Correction: potassium was 3.4, not 4.3.")
	if err != nil {
		t.Fatalf("Addend() error = %v", err)
	}
	if a.NoteID != n.ID {
		t.Error("addendum not attached to the note")
	}

	updated, err := svc.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if updated.Status != "addended" {
		t.Errorf("Status = %q, want %q", updated.Status, "addended")
	}

	trail, err := svc.ListAddenda(ctx, n.ID)
	if err != nil {
		t.Fatalf("ListAddenda() error = %v", err)
	}
	if len(trail) != 1 {
		t.Errorf("addenda = %d, want 1", len(trail))
	}
}

func TestTemplateLifecycle(t *testing.T) {
	svc := NewService(newMockNoteRepo(), newMockTemplateRepo())
	ctx := context.Background()

	tpl := &NoteTemplate{Name: "ICU Progress", NoteType: "progress", Body: "S:\nO:\nA:\nP:"}
	if err := svc.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate() error = %v", err)
	}
	if !tpl.IsActive {
		t.Error("new template not active")
	}

	active, err := svc.ListTemplates(ctx, "hopital-virtualis", "progress")
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("ListTemplates() = %d, want 1", len(active))
	}

	if err := svc.DeactivateTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("DeactivateTemplate() error = %v", err)
	}
	active, err = svc.ListTemplates(ctx, "hopital-virtualis", "progress")
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListTemplates() after deactivate = %d, want 0", len(active))
	}
}
