package messaging

import (
	"time"

	"github.com/google/uuid"
)

type DirectMessage struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	HospitalID  string     `db:"hospital_id" json:"hospital_id"`
	SenderID    uuid.UUID  `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	Body        string     `db:"body" json:"body"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type TeamChannel struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	HospitalID  string     `db:"hospital_id" json:"hospital_id"`
	Name        string     `db:"name" json:"name"`
	ChannelType string     `db:"channel_type" json:"channel_type"`
	PatientID   *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	CreatedBy   uuid.UUID  `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type ChannelMember struct {
	ChannelID uuid.UUID `db:"channel_id" json:"channel_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	JoinedAt  time.Time `db:"joined_at" json:"joined_at"`
}

type ChannelMessage struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ChannelID uuid.UUID `db:"channel_id" json:"channel_id"`
	SenderID  uuid.UUID `db:"sender_id" json:"sender_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ConsultRequest struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	HospitalID  string     `db:"hospital_id" json:"hospital_id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	RequesterID uuid.UUID  `db:"requester_id" json:"requester_id"`
	Specialty   string     `db:"specialty" json:"specialty"`
	Urgency     string     `db:"urgency" json:"urgency"`
	Question    string     `db:"question" json:"question"`
	Status      string     `db:"status" json:"status"`
	AssigneeID  *uuid.UUID `db:"assignee_id" json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// UserPresence is the in-memory presence entry for one user.
type UserPresence struct {
	UserID   uuid.UUID `json:"user_id"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}
