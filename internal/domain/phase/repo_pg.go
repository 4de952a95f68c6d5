package phase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
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

func (r *RepoPG) ListPhases(ctx context.Context) ([]*Phase, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT phase_id, phase_name, phase_description FROM phases ORDER BY phase_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []*Phase
	for rows.Next() {
		var p Phase
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		phases = append(phases, &p)
	}
	return phases, rows.Err()
}

const ppCols = `pp.patient_phase_id, pp.patient_id, pp.phase_id, pp.status,
	pp.phase_start_date, pp.phase_end_date, pp.completed_by_user_id,
	pp.created_at, pp.updated_at, p.phase_name,
	COALESCE(u.first_name || ' ' || u.last_name, '')`

func scanPatientPhase(row pgx.Row) (*PatientPhase, error) {
	var pp PatientPhase
	err := row.Scan(&pp.ID, &pp.PatientID, &pp.PhaseID, &pp.Status,
		&pp.StartDate, &pp.EndDate, &pp.CompletedBy,
		&pp.CreatedAt, &pp.UpdatedAt, &pp.PhaseName, &pp.CompletedByName)
	return &pp, err
}

func (r *RepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*PatientPhase, error) {
	q := fmt.Sprintf(`SELECT %s FROM patient_phases pp
		JOIN phases p ON pp.phase_id = p.phase_id
		LEFT JOIN users u ON pp.completed_by_user_id = u.user_id
		WHERE pp.patient_id = $1 ORDER BY pp.phase_id`, ppCols)
	rows, err := r.conn(ctx).Query(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pps []*PatientPhase
	for rows.Next() {
		pp, err := scanPatientPhase(rows)
		if err != nil {
			return nil, err
		}
		pps = append(pps, pp)
	}
	return pps, rows.Err()
}

func (r *RepoPG) Get(ctx context.Context, patientID, phaseID int64) (*PatientPhase, error) {
	q := fmt.Sprintf(`SELECT %s FROM patient_phases pp
		JOIN phases p ON pp.phase_id = p.phase_id
		LEFT JOIN users u ON pp.completed_by_user_id = u.user_id
		WHERE pp.patient_id = $1 AND pp.phase_id = $2`, ppCols)
	pp, err := scanPatientPhase(r.conn(ctx).QueryRow(ctx, q, patientID, phaseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pp, nil
}

func (r *RepoPG) Insert(ctx context.Context, pp *PatientPhase) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO patient_phases (patient_id, phase_id, status, phase_start_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING patient_phase_id, created_at, updated_at`,
		pp.PatientID, pp.PhaseID, pp.Status, pp.StartDate,
	).Scan(&pp.ID, &pp.CreatedAt, &pp.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainerr.Conflict("Patient is already in Phase %d", pp.PhaseID)
	}
	if err != nil {
		return fmt.Errorf("insert patient phase: %w", err)
	}
	return nil
}

func (r *RepoPG) Update(ctx context.Context, pp *PatientPhase) error {
	err := r.conn(ctx).QueryRow(ctx,
		`UPDATE patient_phases
		 SET status = $1, phase_end_date = $2, completed_by_user_id = $3, updated_at = NOW()
		 WHERE patient_phase_id = $4
		 RETURNING updated_at`,
		pp.Status, pp.EndDate, pp.CompletedBy, pp.ID,
	).Scan(&pp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update patient phase: %w", err)
	}
	return nil
}

func (r *RepoPG) PatientExists(ctx context.Context, patientID int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE patient_id = $1)`, patientID).Scan(&exists)
	return exists, err
}
