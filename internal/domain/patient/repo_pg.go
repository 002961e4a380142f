package patient

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

// =========== Patient Repository ===========

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

const patientCols = `id, hospital_id, mrn, first_name, last_name, date_of_birth, sex,
	unit, room, bed, attending_id, acuity, code_status, status, admitted_at,
	created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.HospitalID, &p.MRN, &p.FirstName, &p.LastName,
		&p.DateOfBirth, &p.Sex, &p.Unit, &p.Room, &p.Bed, &p.AttendingID,
		&p.Acuity, &p.CodeStatus, &p.Status, &p.AdmittedAt, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, hospital_id, mrn, first_name, last_name, date_of_birth,
			sex, unit, room, bed, attending_id, acuity, code_status, status, admitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.HospitalID, p.MRN, p.FirstName, p.LastName, p.DateOfBirth,
		p.Sex, p.Unit, p.Room, p.Bed, p.AttendingID, p.Acuity, p.CodeStatus,
		p.Status, p.AdmittedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET mrn=$2, first_name=$3, last_name=$4, date_of_birth=$5,
			sex=$6, unit=$7, room=$8, bed=$9, attending_id=$10, acuity=$11,
			code_status=$12, status=$13, admitted_at=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.MRN, p.FirstName, p.LastName, p.DateOfBirth, p.Sex,
		p.Unit, p.Room, p.Bed, p.AttendingID, p.Acuity, p.CodeStatus,
		p.Status, p.AdmittedAt)
	return err
}

func (r *repoPG) ListCensus(ctx context.Context, hospitalID string, filter CensusFilter, limit, offset int) ([]*Patient, int, error) {
	where := []string{"hospital_id = $1"}
	args := []interface{}{hospitalID}

	if filter.Unit != "" {
		args = append(args, filter.Unit)
		where = append(where, fmt.Sprintf("unit = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AttendingID != nil {
		args = append(args, *filter.AttendingID)
		where = append(where, fmt.Sprintf("attending_id = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE `+whereClause+
			fmt.Sprintf(` ORDER BY unit, room, last_name LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Vital Repository ===========

type vitalRepoPG struct{ pool *pgxpool.Pool }

func NewVitalRepoPG(pool *pgxpool.Pool) VitalRepository {
	return &vitalRepoPG{pool: pool}
}

func (r *vitalRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const vitalCols = `id, patient_id, recorded_by, recorded_at, heart_rate, systolic_bp,
	diastolic_bp, resp_rate, spo2, temp_c, pain_score`

func (r *vitalRepoPG) Create(ctx context.Context, v *VitalSign) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vital_sign (id, patient_id, recorded_by, recorded_at, heart_rate,
			systolic_bp, diastolic_bp, resp_rate, spo2, temp_c, pain_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		v.ID, v.PatientID, v.RecordedBy, v.RecordedAt, v.HeartRate,
		v.SystolicBP, v.DiastolicBP, v.RespRate, v.SpO2, v.TempC, v.PainScore)
	return err
}

func (r *vitalRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalSign, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+vitalCols+` FROM vital_sign WHERE patient_id = $1
		 ORDER BY recorded_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*VitalSign
	for rows.Next() {
		var v VitalSign
		if err := rows.Scan(&v.ID, &v.PatientID, &v.RecordedBy, &v.RecordedAt,
			&v.HeartRate, &v.SystolicBP, &v.DiastolicBP, &v.RespRate,
			&v.SpO2, &v.TempC, &v.PainScore); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

// =========== Lab Repository ===========

type labRepoPG struct{ pool *pgxpool.Pool }

func NewLabRepoPG(pool *pgxpool.Pool) LabRepository {
	return &labRepoPG{pool: pool}
}

func (r *labRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *labRepoPG) Create(ctx context.Context, l *LabResult) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO lab_result (id, patient_id, panel, code, name, value, unit,
			ref_low, ref_high, flag, resulted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.PatientID, l.Panel, l.Code, l.Name, l.Value, l.Unit,
		l.RefLow, l.RefHigh, l.Flag, l.ResultedAt)
	return err
}

func (r *labRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*LabResult, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, panel, code, name, value, unit, ref_low, ref_high,
			flag, resulted_at
		FROM lab_result WHERE patient_id = $1
		ORDER BY resulted_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LabResult
	for rows.Next() {
		var l LabResult
		if err := rows.Scan(&l.ID, &l.PatientID, &l.Panel, &l.Code, &l.Name,
			&l.Value, &l.Unit, &l.RefLow, &l.RefHigh, &l.Flag, &l.ResultedAt); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}

// =========== Medication Repository ===========

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

func (r *medicationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *medicationRepoPG) Create(ctx context.Context, m *ActiveMedication) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO active_medication (id, patient_id, name, dose, route, frequency,
			status, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.PatientID, m.Name, m.Dose, m.Route, m.Frequency, m.Status, m.StartedAt)
	return err
}

func (r *medicationRepoPG) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*ActiveMedication, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, name, dose, route, frequency, status, started_at, ended_at
		FROM active_medication WHERE patient_id = $1 AND status = 'active'
		ORDER BY started_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ActiveMedication
	for rows.Next() {
		var m ActiveMedication
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Name, &m.Dose, &m.Route,
			&m.Frequency, &m.Status, &m.StartedAt, &m.EndedAt); err != nil {
			return nil, err
		}
		items = append(items, &m)
	}
	return items, rows.Err()
}

func (r *medicationRepoPG) Discontinue(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE active_medication SET status = 'discontinued', ended_at = NOW()
		WHERE id = $1`, id)
	return err
}
