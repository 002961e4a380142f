package messaging

import (
	"context"

	"github.com/google/uuid"
)

type DirectMessageRepository interface {
	Create(ctx context.Context, m *DirectMessage) error
	ListConversation(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*DirectMessage, int, error)
	MarkRead(ctx context.Context, recipientID, senderID uuid.UUID) error
}

type ChannelRepository interface {
	Create(ctx context.Context, ch *TeamChannel) error
	GetByID(ctx context.Context, id uuid.UUID) (*TeamChannel, error)
	ListByHospital(ctx context.Context, hospitalID string) ([]*TeamChannel, error)
	AddMember(ctx context.Context, channelID, userID uuid.UUID) error
	IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error)
	CreateMessage(ctx context.Context, m *ChannelMessage) error
	ListMessages(ctx context.Context, channelID uuid.UUID, limit, offset int) ([]*ChannelMessage, int, error)
}

type ConsultRepository interface {
	Create(ctx context.Context, cr *ConsultRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ConsultRequest, error)
	Update(ctx context.Context, cr *ConsultRequest) error
	ListByHospital(ctx context.Context, hospitalID, status string) ([]*ConsultRequest, error)
}
