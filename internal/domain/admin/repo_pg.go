package admin

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, hospital_id, email, name, role, specialty, is_active,
	invited_at, last_login_at`

func scanUser(row pgx.Row) (*HospitalUser, error) {
	var u HospitalUser
	err := row.Scan(&u.ID, &u.HospitalID, &u.Email, &u.Name, &u.Role,
		&u.Specialty, &u.IsActive, &u.InvitedAt, &u.LastLoginAt)
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *HospitalUser) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital_user (id, hospital_id, email, name, role, specialty, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.HospitalID, u.Email, u.Name, u.Role, u.Specialty, u.IsActive)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*HospitalUser, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM hospital_user WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, hospitalID, email string) (*HospitalUser, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM hospital_user WHERE hospital_id = $1 AND lower(email) = lower($2)`,
		hospitalID, email))
}

func (r *repoPG) Update(ctx context.Context, u *HospitalUser) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE hospital_user SET name=$2, role=$3, specialty=$4, is_active=$5,
			last_login_at=$6
		WHERE id = $1`,
		u.ID, u.Name, u.Role, u.Specialty, u.IsActive, u.LastLoginAt)
	return err
}

func (r *repoPG) ListByHospital(ctx context.Context, hospitalID string) ([]*HospitalUser, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM hospital_user WHERE hospital_id = $1 ORDER BY name`,
		hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*HospitalUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}
