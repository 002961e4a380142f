package orders

import (
	"context"
	"fmt"
	"strings"

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

// =========== Staged Order Repository ===========

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

const orderCols = `id, hospital_id, patient_id, order_type, name, priority, rationale,
	status, staged_by, source, signed_by, signed_at, created_at`

func scanOrder(row pgx.Row) (*StagedOrder, error) {
	var o StagedOrder
	err := row.Scan(&o.ID, &o.HospitalID, &o.PatientID, &o.OrderType, &o.Name,
		&o.Priority, &o.Rationale, &o.Status, &o.StagedBy, &o.Source,
		&o.SignedBy, &o.SignedAt, &o.CreatedAt)
	return &o, err
}

func (r *repoPG) Create(ctx context.Context, o *StagedOrder) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staged_order (id, hospital_id, patient_id, order_type, name,
			priority, rationale, status, staged_by, source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.HospitalID, o.PatientID, o.OrderType, o.Name, o.Priority,
		o.Rationale, o.Status, o.StagedBy, o.Source)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*StagedOrder, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM staged_order WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, o *StagedOrder) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staged_order SET status=$2, signed_by=$3, signed_at=$4
		WHERE id = $1`,
		o.ID, o.Status, o.SignedBy, o.SignedAt)
	return err
}

func (r *repoPG) List(ctx context.Context, hospitalID string, filter OrderFilter, limit, offset int) ([]*StagedOrder, int, error) {
	where := []string{"hospital_id = $1"}
	args := []interface{}{hospitalID}

	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM staged_order WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orderCols+` FROM staged_order WHERE `+whereClause+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*StagedOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

// =========== Prescription Repository ===========

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

func (r *prescriptionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const prescriptionCols = `id, hospital_id, patient_id, medication, dose, route, frequency,
	quantity, refills, status, prescriber_id, pharmacy, signed_at, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.HospitalID, &p.PatientID, &p.Medication, &p.Dose,
		&p.Route, &p.Frequency, &p.Quantity, &p.Refills, &p.Status,
		&p.PrescriberID, &p.Pharmacy, &p.SignedAt, &p.CreatedAt)
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (id, hospital_id, patient_id, medication, dose,
			route, frequency, quantity, refills, status, prescriber_id, pharmacy)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.HospitalID, p.PatientID, p.Medication, p.Dose, p.Route,
		p.Frequency, p.Quantity, p.Refills, p.Status, p.PrescriberID, p.Pharmacy)
	return err
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription SET status=$2, pharmacy=$3, signed_at=$4
		WHERE id = $1`,
		p.ID, p.Status, p.Pharmacy, p.SignedAt)
	return err
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE patient_id = $1
		 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
