package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/virtualis/alis/internal/platform/db"
	"github.com/virtualis/alis/internal/platform/realtime"
)

var validChannelTypes = map[string]bool{
	"patient_care": true, "department": true, "consult": true,
}

var validUrgencies = map[string]bool{
	"STAT": true, "Urgent": true, "Routine": true,
}

type Service struct {
	dms      DirectMessageRepository
	channels ChannelRepository
	consults ConsultRepository
	presence *PresenceTracker
	events   realtime.Publisher
	pool     *pgxpool.Pool
}

func NewService(dms DirectMessageRepository, channels ChannelRepository, consults ConsultRepository, presence *PresenceTracker, events realtime.Publisher, pool *pgxpool.Pool) *Service {
	return &Service{dms: dms, channels: channels, consults: consults, presence: presence, events: events, pool: pool}
}

func (s *Service) publish(ctx context.Context, topic, eventType, resource, resourceID string, payload interface{}) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.events.Publish(ctx, realtime.Event{
		Type:       eventType,
		Topic:      topic,
		Resource:   resource,
		ResourceID: resourceID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
	})
}

// =========== Direct Messages ===========

func (s *Service) SendDM(ctx context.Context, m *DirectMessage) error {
	if m.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if m.SenderID == uuid.Nil || m.RecipientID == uuid.Nil {
		return fmt.Errorf("sender_id and recipient_id are required")
	}
	if m.SenderID == m.RecipientID {
		return fmt.Errorf("cannot message yourself")
	}
	if m.Body == "" {
		return fmt.Errorf("body is required")
	}
	if err := s.dms.Create(ctx, m); err != nil {
		return err
	}
	s.publish(ctx, realtime.TopicDirect(m.RecipientID), "dm.new", "direct_message", m.ID.String(), m)
	return nil
}

func (s *Service) ListConversation(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*DirectMessage, int, error) {
	return s.dms.ListConversation(ctx, a, b, limit, offset)
}

// MarkConversationRead marks every unread message from sender to recipient.
func (s *Service) MarkConversationRead(ctx context.Context, recipientID, senderID uuid.UUID) error {
	if err := s.dms.MarkRead(ctx, recipientID, senderID); err != nil {
		return err
	}
	s.publish(ctx, realtime.TopicDirect(senderID), "dm.read", "direct_message", "", map[string]string{
		"reader_id": recipientID.String(),
	})
	return nil
}

// =========== Team Channels ===========

// CreateChannel creates the channel and enrolls the creator as its first
// member.
func (s *Service) CreateChannel(ctx context.Context, ch *TeamChannel) error {
	if ch.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if ch.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validChannelTypes[ch.ChannelType] {
		return fmt.Errorf("invalid channel_type: %s", ch.ChannelType)
	}
	if ch.ChannelType == "patient_care" && ch.PatientID == nil {
		return fmt.Errorf("patient_care channels require patient_id")
	}
	if ch.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by is required")
	}

	create := func(ctx context.Context) error {
		if err := s.channels.Create(ctx, ch); err != nil {
			return err
		}
		return s.channels.AddMember(ctx, ch.ID, ch.CreatedBy)
	}
	// Channel and creator membership land together or not at all.
	if s.pool != nil {
		return db.WithTx(ctx, s.pool, create)
	}
	return create(ctx)
}

func (s *Service) ListChannels(ctx context.Context, hospitalID string) ([]*TeamChannel, error) {
	return s.channels.ListByHospital(ctx, hospitalID)
}

func (s *Service) JoinChannel(ctx context.Context, channelID, userID uuid.UUID) error {
	if _, err := s.channels.GetByID(ctx, channelID); err != nil {
		return fmt.Errorf("load channel: %w", err)
	}
	return s.channels.AddMember(ctx, channelID, userID)
}

// PostMessage posts to a channel. Only members can post.
func (s *Service) PostMessage(ctx context.Context, m *ChannelMessage) error {
	if m.Body == "" {
		return fmt.Errorf("body is required")
	}
	member, err := s.channels.IsMember(ctx, m.ChannelID, m.SenderID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("not a channel member")
	}
	if err := s.channels.CreateMessage(ctx, m); err != nil {
		return err
	}
	s.publish(ctx, realtime.TopicChannel(m.ChannelID), "channel.message", "channel_message", m.ID.String(), m)
	return nil
}

func (s *Service) ListMessages(ctx context.Context, channelID uuid.UUID, limit, offset int) ([]*ChannelMessage, int, error) {
	return s.channels.ListMessages(ctx, channelID, limit, offset)
}

// =========== Consult Requests ===========

func (s *Service) CreateConsult(ctx context.Context, cr *ConsultRequest) error {
	if cr.HospitalID == "" {
		return fmt.Errorf("hospital_id is required")
	}
	if cr.PatientID == uuid.Nil || cr.RequesterID == uuid.Nil {
		return fmt.Errorf("patient_id and requester_id are required")
	}
	if cr.Specialty == "" || cr.Question == "" {
		return fmt.Errorf("specialty and question are required")
	}
	if cr.Urgency == "" {
		cr.Urgency = "Routine"
	}
	if !validUrgencies[cr.Urgency] {
		return fmt.Errorf("invalid urgency: %s", cr.Urgency)
	}
	cr.Status = "pending"
	return s.consults.Create(ctx, cr)
}

func (s *Service) AcceptConsult(ctx context.Context, id, assigneeID uuid.UUID) (*ConsultRequest, error) {
	return s.transitionConsult(ctx, id, "pending", "accepted", &assigneeID)
}

func (s *Service) DeclineConsult(ctx context.Context, id uuid.UUID) (*ConsultRequest, error) {
	return s.transitionConsult(ctx, id, "pending", "declined", nil)
}

func (s *Service) CompleteConsult(ctx context.Context, id uuid.UUID) (*ConsultRequest, error) {
	return s.transitionConsult(ctx, id, "accepted", "completed", nil)
}

func (s *Service) transitionConsult(ctx context.Context, id uuid.UUID, from, to string, assignee *uuid.UUID) (*ConsultRequest, error) {
	cr, err := s.consults.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load consult: %w", err)
	}
	if cr.Status != from {
		return nil, fmt.Errorf("consult is %s, expected %s", cr.Status, from)
	}
	cr.Status = to
	if assignee != nil {
		cr.AssigneeID = assignee
	}
	if err := s.consults.Update(ctx, cr); err != nil {
		return nil, err
	}
	return cr, nil
}

func (s *Service) ListConsults(ctx context.Context, hospitalID, status string) ([]*ConsultRequest, error) {
	return s.consults.ListByHospital(ctx, hospitalID, status)
}

// =========== Presence ===========

func (s *Service) Heartbeat(ctx context.Context, hospitalID string, userID uuid.UUID, status string) *UserPresence {
	p := s.presence.Heartbeat(hospitalID, userID, status)
	s.publish(ctx, realtime.TopicPresence(hospitalID), "presence.update", "presence", userID.String(), p)
	return p
}

func (s *Service) PresenceSnapshot(hospitalID string) []*UserPresence {
	return s.presence.Snapshot(hospitalID)
}
