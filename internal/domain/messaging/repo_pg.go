package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/virtualis/alis/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Direct Message Repository ===========

type dmRepoPG struct{ pool *pgxpool.Pool }

func NewDirectMessageRepoPG(pool *pgxpool.Pool) DirectMessageRepository {
	return &dmRepoPG{pool: pool}
}

func (r *dmRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *dmRepoPG) Create(ctx context.Context, m *DirectMessage) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO direct_message (id, hospital_id, sender_id, recipient_id, body)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.HospitalID, m.SenderID, m.RecipientID, m.Body)
	return err
}

func (r *dmRepoPG) ListConversation(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*DirectMessage, int, error) {
	const cond = `(sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM direct_message WHERE `+cond, a, b).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, hospital_id, sender_id, recipient_id, body, read_at, created_at
		FROM direct_message WHERE `+cond+`
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, a, b, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*DirectMessage
	for rows.Next() {
		var m DirectMessage
		if err := rows.Scan(&m.ID, &m.HospitalID, &m.SenderID, &m.RecipientID,
			&m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	return items, total, rows.Err()
}

func (r *dmRepoPG) MarkRead(ctx context.Context, recipientID, senderID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE direct_message SET read_at = NOW()
		WHERE recipient_id = $1 AND sender_id = $2 AND read_at IS NULL`,
		recipientID, senderID)
	return err
}

// =========== Channel Repository ===========

type channelRepoPG struct{ pool *pgxpool.Pool }

func NewChannelRepoPG(pool *pgxpool.Pool) ChannelRepository {
	return &channelRepoPG{pool: pool}
}

func (r *channelRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const channelCols = `id, hospital_id, name, channel_type, patient_id, created_by, created_at`

func scanChannel(row pgx.Row) (*TeamChannel, error) {
	var ch TeamChannel
	err := row.Scan(&ch.ID, &ch.HospitalID, &ch.Name, &ch.ChannelType,
		&ch.PatientID, &ch.CreatedBy, &ch.CreatedAt)
	return &ch, err
}

func (r *channelRepoPG) Create(ctx context.Context, ch *TeamChannel) error {
	ch.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO team_channel (id, hospital_id, name, channel_type, patient_id, created_by)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		ch.ID, ch.HospitalID, ch.Name, ch.ChannelType, ch.PatientID, ch.CreatedBy)
	return err
}

func (r *channelRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TeamChannel, error) {
	return scanChannel(r.conn(ctx).QueryRow(ctx,
		`SELECT `+channelCols+` FROM team_channel WHERE id = $1`, id))
}

func (r *channelRepoPG) ListByHospital(ctx context.Context, hospitalID string) ([]*TeamChannel, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+channelCols+` FROM team_channel WHERE hospital_id = $1 ORDER BY name`,
		hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*TeamChannel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ch)
	}
	return items, rows.Err()
}

func (r *channelRepoPG) AddMember(ctx context.Context, channelID, userID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO channel_member (channel_id, user_id)
		VALUES ($1,$2) ON CONFLICT DO NOTHING`, channelID, userID)
	return err
}

func (r *channelRepoPG) IsMember(ctx context.Context, channelID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM channel_member WHERE channel_id = $1 AND user_id = $2)`,
		channelID, userID).Scan(&exists)
	return exists, err
}

func (r *channelRepoPG) CreateMessage(ctx context.Context, m *ChannelMessage) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO channel_message (id, channel_id, sender_id, body)
		VALUES ($1,$2,$3,$4)`, m.ID, m.ChannelID, m.SenderID, m.Body)
	return err
}

func (r *channelRepoPG) ListMessages(ctx context.Context, channelID uuid.UUID, limit, offset int) ([]*ChannelMessage, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM channel_message WHERE channel_id = $1`, channelID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, channel_id, sender_id, body, created_at
		FROM channel_message WHERE channel_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, channelID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ChannelMessage
	for rows.Next() {
		var m ChannelMessage
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.SenderID, &m.Body, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &m)
	}
	return items, total, rows.Err()
}

// =========== Consult Repository ===========

type consultRepoPG struct{ pool *pgxpool.Pool }

func NewConsultRepoPG(pool *pgxpool.Pool) ConsultRepository {
	return &consultRepoPG{pool: pool}
}

func (r *consultRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consultCols = `id, hospital_id, patient_id, requester_id, specialty, urgency,
	question, status, assignee_id, created_at`

func scanConsult(row pgx.Row) (*ConsultRequest, error) {
	var cr ConsultRequest
	err := row.Scan(&cr.ID, &cr.HospitalID, &cr.PatientID, &cr.RequesterID,
		&cr.Specialty, &cr.Urgency, &cr.Question, &cr.Status,
		&cr.AssigneeID, &cr.CreatedAt)
	return &cr, err
}

func (r *consultRepoPG) Create(ctx context.Context, cr *ConsultRequest) error {
	cr.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consult_request (id, hospital_id, patient_id, requester_id,
			specialty, urgency, question, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		cr.ID, cr.HospitalID, cr.PatientID, cr.RequesterID, cr.Specialty,
		cr.Urgency, cr.Question, cr.Status)
	return err
}

func (r *consultRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ConsultRequest, error) {
	return scanConsult(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultCols+` FROM consult_request WHERE id = $1`, id))
}

func (r *consultRepoPG) Update(ctx context.Context, cr *ConsultRequest) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE consult_request SET status=$2, assignee_id=$3 WHERE id = $1`,
		cr.ID, cr.Status, cr.AssigneeID)
	return err
}

func (r *consultRepoPG) ListByHospital(ctx context.Context, hospitalID, status string) ([]*ConsultRequest, error) {
	query := `SELECT ` + consultCols + ` FROM consult_request WHERE hospital_id = $1`
	args := []interface{}{hospitalID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ConsultRequest
	for rows.Next() {
		cr, err := scanConsult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cr)
	}
	return items, rows.Err()
}
