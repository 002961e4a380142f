package notes

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

// =========== Note Repository ===========

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

const noteCols = `id, hospital_id, patient_id, encounter_id, author_id, note_type,
	title, body, status, signed_at, created_at, updated_at`

func scanNote(row pgx.Row) (*ClinicalNote, error) {
	var n ClinicalNote
	err := row.Scan(&n.ID, &n.HospitalID, &n.PatientID, &n.EncounterID,
		&n.AuthorID, &n.NoteType, &n.Title, &n.Body, &n.Status,
		&n.SignedAt, &n.CreatedAt, &n.UpdatedAt)
	return &n, err
}

func (r *repoPG) Create(ctx context.Context, n *ClinicalNote) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinical_note (id, hospital_id, patient_id, encounter_id,
			author_id, note_type, title, body, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		n.ID, n.HospitalID, n.PatientID, n.EncounterID, n.AuthorID,
		n.NoteType, n.Title, n.Body, n.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClinicalNote, error) {
	return scanNote(r.conn(ctx).QueryRow(ctx,
		`SELECT `+noteCols+` FROM clinical_note WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, n *ClinicalNote) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinical_note SET note_type=$2, title=$3, body=$4, status=$5,
			signed_at=$6, updated_at=NOW()
		WHERE id = $1`,
		n.ID, n.NoteType, n.Title, n.Body, n.Status, n.SignedAt)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalNote, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinical_note WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+noteCols+` FROM clinical_note WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ClinicalNote
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CreateAddendum(ctx context.Context, a *Addendum) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO note_addendum (id, note_id, author_id, body)
		VALUES ($1,$2,$3,$4)`,
		a.ID, a.NoteID, a.AuthorID, a.Body)
	return err
}

func (r *repoPG) ListAddenda(ctx context.Context, noteID uuid.UUID) ([]*Addendum, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, note_id, author_id, body, created_at
		FROM note_addendum WHERE note_id = $1 ORDER BY created_at`, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Addendum
	for rows.Next() {
		var a Addendum
		if err := rows.Scan(&a.ID, &a.NoteID, &a.AuthorID, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

// =========== Template Repository ===========

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewTemplateRepoPG(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepoPG{pool: pool}
}

func (r *templateRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const templateCols = `id, hospital_id, name, note_type, specialty, body, is_active, created_at`

func scanTemplate(row pgx.Row) (*NoteTemplate, error) {
	var t NoteTemplate
	err := row.Scan(&t.ID, &t.HospitalID, &t.Name, &t.NoteType, &t.Specialty,
		&t.Body, &t.IsActive, &t.CreatedAt)
	return &t, err
}

func (r *templateRepoPG) Create(ctx context.Context, t *NoteTemplate) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO note_template (id, hospital_id, name, note_type, specialty, body, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.HospitalID, t.Name, t.NoteType, t.Specialty, t.Body, t.IsActive)
	return err
}

func (r *templateRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*NoteTemplate, error) {
	return scanTemplate(r.conn(ctx).QueryRow(ctx,
		`SELECT `+templateCols+` FROM note_template WHERE id = $1`, id))
}

func (r *templateRepoPG) Update(ctx context.Context, t *NoteTemplate) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE note_template SET name=$2, note_type=$3, specialty=$4, body=$5, is_active=$6
		WHERE id = $1`,
		t.ID, t.Name, t.NoteType, t.Specialty, t.Body, t.IsActive)
	return err
}

func (r *templateRepoPG) ListActive(ctx context.Context, hospitalID, noteType string) ([]*NoteTemplate, error) {
	query := `SELECT ` + templateCols + ` FROM note_template
		WHERE is_active AND (hospital_id IS NULL OR hospital_id = $1)`
	args := []interface{}{hospitalID}
	if noteType != "" {
		query += ` AND note_type = $2`
		args = append(args, noteType)
	}
	query += ` ORDER BY name`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*NoteTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
