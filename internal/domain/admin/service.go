package admin

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/virtualis/alis/internal/platform/auth"
)

var validRoles = map[string]bool{
	auth.RoleAdmin: true, auth.RoleClinician: true, auth.RoleNurse: true, auth.RoleViewer: true,
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

func (s *Service) ListUsers(ctx context.Context, hospitalID string) ([]*HospitalUser, error) {
	return s.users.ListByHospital(ctx, hospitalID)
}

// CreateUser validates and invites a provider. The invite itself is a log
// line here; mail delivery sits behind the identity provider in production.
func (s *Service) CreateUser(ctx context.Context, u *HospitalUser) error {
	if u.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if !emailPattern.MatchString(u.Email) {
		return fmt.Errorf("invalid email: %s", u.Email)
	}
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validRoles[u.Role] {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	if existing, err := s.users.GetByEmail(ctx, u.HospitalID, u.Email); err == nil && existing != nil {
		return fmt.Errorf("user already exists: %s", u.Email)
	}
	u.IsActive = true
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}
	log.Info().Str("email", u.Email).Str("role", u.Role).
		Str("hospital_id", u.HospitalID).Msg("provider invited")
	return nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, name, role string, specialty *string) (*HospitalUser, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if name != "" {
		u.Name = name
	}
	if role != "" {
		if !validRoles[role] {
			return nil, fmt.Errorf("invalid role: %s", role)
		}
		u.Role = role
	}
	if specialty != nil {
		u.Specialty = specialty
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) (*HospitalUser, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	u.IsActive = false
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ResendInvite re-issues an invite for a user who has never logged in.
func (s *Service) ResendInvite(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !u.Pending() {
		return fmt.Errorf("user has already signed in")
	}
	if !u.IsActive {
		return fmt.Errorf("user is deactivated")
	}
	log.Info().Str("email", u.Email).Msg("invite resent")
	return nil
}

// RecordLogin stamps last_login_at, closing out the pending state.
func (s *Service) RecordLogin(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return s.users.Update(ctx, u)
}
