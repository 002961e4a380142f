package admin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/virtualis/alis/internal/platform/auth"
)

type mockRepo struct {
	users map[uuid.UUID]*HospitalUser
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*HospitalUser)}
}

func (m *mockRepo) Create(ctx context.Context, u *HospitalUser) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.InvitedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*HospitalUser, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(ctx context.Context, hospitalID, email string) (*HospitalUser, error) {
	for _, u := range m.users {
		if u.HospitalID == hospitalID && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user not found")
}

func (m *mockRepo) Update(ctx context.Context, u *HospitalUser) error {
	if _, ok := m.users[u.ID]; !ok {
		return fmt.Errorf("user not found")
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) ListByHospital(ctx context.Context, hospitalID string) ([]*HospitalUser, error) {
	var out []*HospitalUser
	for _, u := range m.users {
		if u.HospitalID == hospitalID {
			out = append(out, u)
		}
	}
	return out, nil
}

func validUser() *HospitalUser {
	return &HospitalUser{
		HospitalID: "hopital-virtualis",
		Email:      "m.laurent@virtualis.example",
		Name:       "Dr. M. Laurent",
		Role:       auth.RoleClinician,
	}
}

func TestCreateUser(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	u := validUser()
	if err := svc.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if !u.IsActive {
		t.Error("new user not active")
	}
	if !u.Pending() {
		t.Error("new user should be pending until first login")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(u *HospitalUser)
	}{
		{"bad email", func(u *HospitalUser) { u.Email = "not-an-email" }},
		{"missing name", func(u *HospitalUser) { u.Name = "" }},
		{"bad role", func(u *HospitalUser) { u.Role = "superuser" }},
		{"missing hospital", func(u *HospitalUser) { u.HospitalID = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)
			if err := svc.CreateUser(ctx, u); err == nil {
				t.Error("CreateUser() expected error, got nil")
			}
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if err := svc.CreateUser(ctx, validUser()); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := svc.CreateUser(ctx, validUser()); err == nil {
		t.Error("CreateUser() with duplicate email expected error, got nil")
	}
}

func TestResendInviteOnlyForPending(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	u := validUser()
	if err := svc.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err := svc.ResendInvite(ctx, u.ID); err != nil {
		t.Errorf("ResendInvite() for pending user error = %v", err)
	}

	if err := svc.RecordLogin(ctx, u.ID); err != nil {
		t.Fatalf("RecordLogin() error = %v", err)
	}
	if err := svc.ResendInvite(ctx, u.ID); err == nil {
		t.Error("ResendInvite() after login expected error, got nil")
	}
}

func TestDeactivateUser(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	u := validUser()
	if err := svc.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	deactivated, err := svc.DeactivateUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("DeactivateUser() error = %v", err)
	}
	if deactivated.IsActive {
		t.Error("user still active after deactivation")
	}

	if err := svc.ResendInvite(ctx, u.ID); err == nil {
		t.Error("ResendInvite() for deactivated user expected error, got nil")
	}
}

func TestUpdateUserRole(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	u := validUser()
	if err := svc.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if _, err := svc.UpdateUser(ctx, u.ID, "", "wizard", nil); err == nil {
		t.Error("UpdateUser() with bad role expected error, got nil")
	}

	updated, err := svc.UpdateUser(ctx, u.ID, "", auth.RoleAdmin, nil)
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Role != auth.RoleAdmin {
		t.Errorf("Role = %q, want %q", updated.Role, auth.RoleAdmin)
	}
}
