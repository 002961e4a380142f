package immunization

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

const immunizationCols = `id, hospital_id, patient_id, vaccine_code, vaccine_name,
	dose_no, lot_number, site, route, administered_by, administered_at,
	status, status_reason, created_at`

func scanImmunization(row pgx.Row) (*Immunization, error) {
	var i Immunization
	err := row.Scan(&i.ID, &i.HospitalID, &i.PatientID, &i.VaccineCode,
		&i.VaccineName, &i.DoseNo, &i.LotNumber, &i.Site, &i.Route,
		&i.AdministeredBy, &i.AdministeredAt, &i.Status, &i.StatusReason,
		&i.CreatedAt)
	return &i, err
}

func (r *repoPG) Create(ctx context.Context, i *Immunization) error {
	i.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO immunization (id, hospital_id, patient_id, vaccine_code,
			vaccine_name, dose_no, lot_number, site, route, administered_by,
			administered_at, status, status_reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		i.ID, i.HospitalID, i.PatientID, i.VaccineCode, i.VaccineName,
		i.DoseNo, i.LotNumber, i.Site, i.Route, i.AdministeredBy,
		i.AdministeredAt, i.Status, i.StatusReason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Immunization, error) {
	return scanImmunization(r.conn(ctx).QueryRow(ctx,
		`SELECT `+immunizationCols+` FROM immunization WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, i *Immunization) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE immunization SET status=$2, status_reason=$3 WHERE id = $1`,
		i.ID, i.Status, i.StatusReason)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Immunization, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+immunizationCols+` FROM immunization WHERE patient_id = $1
		 ORDER BY administered_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Immunization
	for rows.Next() {
		i, err := scanImmunization(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
