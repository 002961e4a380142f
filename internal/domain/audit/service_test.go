package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	mu     sync.Mutex
	events []*AuditEvent
}

func (m *mockRepo) Create(ctx context.Context, e *AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *mockRepo) List(ctx context.Context, filter Filter, limit, offset int) ([]*AuditEvent, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*AuditEvent
	for _, e := range m.events {
		if filter.ActionType != "" && e.ActionType != filter.ActionType {
			continue
		}
		if filter.UserID != nil && e.UserID != *filter.UserID {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *mockRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *mockRepo) last() *AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}

func testRequestInfo() RequestInfo {
	return RequestInfo{
		UserID:    uuid.New(),
		SessionID: "sess-1",
		IP:        "10.0.0.8",
		UserAgent: "alis-dashboard/2.1",
	}
}

func TestRecordActionImmediate(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	err := svc.RecordAction(context.Background(), Entry{
		ActionType:   "sign_order",
		ResourceType: "staged_order",
		ResourceID:   uuid.NewString(),
	}, testRequestInfo())
	if err != nil {
		t.Fatalf("RecordAction() error = %v", err)
	}
	if repo.count() != 1 {
		t.Errorf("events = %d, want 1 written immediately", repo.count())
	}
}

func TestUUIDRefsLandInColumns(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	pid := uuid.NewString()
	hid := uuid.NewString()
	err := svc.RecordAction(context.Background(), Entry{
		ActionType:   "update",
		ResourceType: "patient",
		PatientRef:   pid,
		HospitalRef:  hid,
	}, testRequestInfo())
	if err != nil {
		t.Fatalf("RecordAction() error = %v", err)
	}

	e := repo.last()
	if e.PatientID == nil || e.PatientID.String() != pid {
		t.Error("UUID patient ref not stored in patient_id column")
	}
	if e.HospitalID == nil || *e.HospitalID != hid {
		t.Error("UUID hospital ref not stored in hospital_id column")
	}
	if _, ok := e.Metadata["patient_ref"]; ok {
		t.Error("UUID patient ref leaked into metadata")
	}
}

func TestNonUUIDRefsCoercedIntoMetadata(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	err := svc.RecordAction(context.Background(), Entry{
		ActionType:   "update",
		ResourceType: "patient",
		PatientRef:   "demo-patient-3",
		HospitalRef:  "hopital-virtualis",
	}, testRequestInfo())
	if err != nil {
		t.Fatalf("RecordAction() error = %v, non-UUID refs must not be rejected", err)
	}

	e := repo.last()
	if e.PatientID != nil {
		t.Error("non-UUID patient ref stored in typed column")
	}
	if e.Metadata["patient_ref"] != "demo-patient-3" {
		t.Errorf("metadata patient_ref = %v", e.Metadata["patient_ref"])
	}
	if e.Metadata["hospital_ref"] != "hopital-virtualis" {
		t.Errorf("metadata hospital_ref = %v", e.Metadata["hospital_ref"])
	}
}

func TestRecordViewDebounced(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	ft := &fakeTimers{}
	svc.debounce.after = ft.after

	req := testRequestInfo()
	for i := 0; i < 5; i++ {
		if err := svc.RecordView(Entry{
			ResourceType: "patient_chart",
			ResourceID:   "chart-1",
		}, req); err != nil {
			t.Fatalf("RecordView() error = %v", err)
		}
	}
	if repo.count() != 0 {
		t.Fatalf("events before fire = %d, want 0", repo.count())
	}

	ft.fireAll()
	if repo.count() != 1 {
		t.Errorf("events after fire = %d, want 1 coalesced view", repo.count())
	}
	if repo.last().ActionType != "view" {
		t.Errorf("action_type = %q, want view", repo.last().ActionType)
	}
}

func TestRecordViewDistinctUsersDistinctKeys(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	defer svc.Close()

	entry := Entry{ResourceType: "patient_chart", ResourceID: "chart-1"}
	if err := svc.RecordView(entry, testRequestInfo()); err != nil {
		t.Fatalf("RecordView() error = %v", err)
	}
	if err := svc.RecordView(entry, testRequestInfo()); err != nil {
		t.Fatalf("RecordView() error = %v", err)
	}

	svc.Flush()
	if repo.count() != 2 {
		t.Errorf("events = %d, want one per user", repo.count())
	}
}
