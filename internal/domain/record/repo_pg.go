package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcase/hearcase/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `r.record_id, r.record_type, r.patient_id, r.phase_id, r.data,
	r.completed_by_user_id, r.created_at, r.updated_at,
	COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), COALESCE(p.case_no, ''),
	COALESCE(u.username, '')`

const recordJoins = `FROM phase_records r
	LEFT JOIN patients p ON r.patient_id = p.patient_id
	LEFT JOIN users u ON r.completed_by_user_id = u.user_id`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Type, &rec.PatientID, &rec.PhaseID, &rec.Data,
		&rec.CompletedBy, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.PatientFirstName, &rec.PatientLastName, &rec.CaseNo, &rec.CompletedByName)
	return &rec, err
}

func (r *RepoPG) Insert(ctx context.Context, rec *Record) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO phase_records (record_type, patient_id, phase_id, data, completed_by_user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING record_id, created_at, updated_at`,
		rec.Type, rec.PatientID, rec.PhaseID, rec.Data, rec.CompletedBy,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert phase record: %w", err)
	}
	return nil
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*Record, error) {
	q := fmt.Sprintf(`SELECT %s %s WHERE r.record_id = $1`, recordCols, recordJoins)
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RepoPG) Update(ctx context.Context, rec *Record) error {
	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE phase_records SET data = $1, completed_by_user_id = $2, updated_at = NOW()
		 WHERE record_id = $3
		 RETURNING updated_at`,
		rec.Data, rec.CompletedBy, rec.ID,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update phase record: %w", err)
	}
	return nil
}

func (r *RepoPG) ListByType(ctx context.Context, recordType string, patientID int64, limit, offset int) ([]*Record, int, error) {
	where := "WHERE r.record_type = $1"
	args := []interface{}{recordType}
	if patientID != 0 {
		args = append(args, patientID)
		where += fmt.Sprintf(" AND r.patient_id = $%d", len(args))
	}

	countQ := fmt.Sprintf(`SELECT COUNT(*) %s %s`, recordJoins, where)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s %s %s ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d`,
		recordCols, recordJoins, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

func (r *RepoPG) ListByPatientPhase(ctx context.Context, patientID, phaseID int64) ([]*Record, error) {
	q := fmt.Sprintf(`SELECT %s %s WHERE r.patient_id = $1 AND r.phase_id = $2
		ORDER BY r.record_type, r.created_at`, recordCols, recordJoins)
	rows, err := r.conn(ctx).Query(ctx, q, patientID, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *RepoPG) PatientExists(ctx context.Context, patientID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE patient_id = $1)`, patientID).Scan(&exists)
	return exists, err
}
