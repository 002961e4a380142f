package scheduling

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

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const appointmentCols = `id, hospital_id, patient_id, provider_id, scheduled_at,
	duration_minutes, appointment_type, location, status, reason, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.HospitalID, &a.PatientID, &a.ProviderID,
		&a.ScheduledAt, &a.DurationMinutes, &a.AppointmentType, &a.Location,
		&a.Status, &a.Reason, &a.CreatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, hospital_id, patient_id, provider_id,
			scheduled_at, duration_minutes, appointment_type, location, status, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.HospitalID, a.PatientID, a.ProviderID, a.ScheduledAt,
		a.DurationMinutes, a.AppointmentType, a.Location, a.Status, a.Reason)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointment SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *appointmentRepoPG) List(ctx context.Context, hospitalID string, filter AppointmentFilter, limit, offset int) ([]*Appointment, int, error) {
	where := []string{"hospital_id = $1"}
	args := []interface{}{hospitalID}

	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		where = append(where, fmt.Sprintf("provider_id = $%d", len(args)))
	}
	if filter.Day != nil {
		args = append(args, *filter.Day)
		where = append(where, fmt.Sprintf("scheduled_at::date = $%d::date", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+appointmentCols+` FROM appointment WHERE `+whereClause+
			fmt.Sprintf(` ORDER BY scheduled_at LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// =========== Encounter Repository ===========

type encounterRepoPG struct{ pool *pgxpool.Pool }

func NewEncounterRepoPG(pool *pgxpool.Pool) EncounterRepository {
	return &encounterRepoPG{pool: pool}
}

func (r *encounterRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const encounterCols = `id, hospital_id, patient_id, provider_id, encounter_type,
	status, started_at, ended_at, chief_complaint, disposition, created_at`

func scanEncounter(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.HospitalID, &e.PatientID, &e.ProviderID,
		&e.EncounterType, &e.Status, &e.StartedAt, &e.EndedAt,
		&e.ChiefComplaint, &e.Disposition, &e.CreatedAt)
	return &e, err
}

func (r *encounterRepoPG) Create(ctx context.Context, e *Encounter) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO encounter (id, hospital_id, patient_id, provider_id,
			encounter_type, status, started_at, chief_complaint)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.HospitalID, e.PatientID, e.ProviderID, e.EncounterType,
		e.Status, e.StartedAt, e.ChiefComplaint)
	return err
}

func (r *encounterRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return scanEncounter(r.conn(ctx).QueryRow(ctx,
		`SELECT `+encounterCols+` FROM encounter WHERE id = $1`, id))
}

func (r *encounterRepoPG) Update(ctx context.Context, e *Encounter) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE encounter SET status=$2, started_at=$3, ended_at=$4,
			chief_complaint=$5, disposition=$6
		WHERE id = $1`,
		e.ID, e.Status, e.StartedAt, e.EndedAt, e.ChiefComplaint, e.Disposition)
	return err
}

func (r *encounterRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+encounterCols+` FROM encounter WHERE patient_id = $1
		 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Encounter
	for rows.Next() {
		e, err := scanEncounter(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
