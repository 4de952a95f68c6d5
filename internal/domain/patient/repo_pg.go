package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type RepoPG struct {
	pool   *pgxpool.Pool
	prefix string
}

func NewRepoPG(pool *pgxpool.Pool, caseIDPrefix string) *RepoPG {
	return &RepoPG{pool: pool, prefix: caseIDPrefix}
}

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *RepoPG) NextCaseNo(ctx context.Context) (string, error) {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, caseIDLock); err != nil {
		return "", fmt.Errorf("acquire case id lock: %w", err)
	}

	// Suffix starts after "PREFIX-". The prefix is restricted to letters
	// and digits at config validation, so it is literal inside the pattern.
	q := fmt.Sprintf(
		`SELECT MAX(CAST(SUBSTRING(case_no FROM %d) AS INTEGER)) FROM patients WHERE case_no ~ $1`,
		len(r.prefix)+2)
	pattern := fmt.Sprintf(`^%s-[0-9]+$`, r.prefix)

	var max *int64
	if err := conn.QueryRow(ctx, q, pattern).Scan(&max); err != nil {
		return "", fmt.Errorf("read max case no: %w", err)
	}
	return nextCaseNo(r.prefix, max), nil
}

const patientCols = `p.patient_id, p.case_no, p.first_name, p.last_name, p.gender,
	p.date_of_birth, p.age, p.mobile_number, p.mobile_sms, p.alternative_number,
	p.alternative_sms, p.region_district, p.city_village, p.highest_education_level,
	p.employment_status, p.school_name, p.school_phone_number, p.created_at, p.updated_at`

func scanFields(p *Patient) []interface{} {
	return []interface{}{
		&p.ID, &p.CaseNo, &p.FirstName, &p.LastName, &p.Gender,
		&p.DateOfBirth, &p.Age, &p.MobileNumber, &p.MobileSMS, &p.AlternativeNumber,
		&p.AlternativeSMS, &p.RegionDistrict, &p.CityVillage, &p.HighestEducationLevel,
		&p.EmploymentStatus, &p.SchoolName, &p.SchoolPhoneNumber, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *RepoPG) Insert(ctx context.Context, caseNo string, in Input) (*Patient, error) {
	cols, vals := in.columns()
	cols = append(cols, "case_no")
	vals = append(vals, caseNo)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf(`INSERT INTO patients (%s) VALUES (%s) RETURNING %s`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "),
		strings.ReplaceAll(patientCols, "p.", ""))

	var p Patient
	err := r.conn(ctx).QueryRow(ctx, q, vals...).Scan(scanFields(&p)...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, domainerr.Conflict("Case number %s already exists", caseNo)
	}
	if err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	return &p, nil
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	q := fmt.Sprintf(`SELECT %s FROM patients p WHERE p.patient_id = $1`, patientCols)
	var p Patient
	err := r.conn(ctx).QueryRow(ctx, q, id).Scan(scanFields(&p)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RepoPG) Update(ctx context.Context, id int64, in Input) (*Patient, error) {
	cols, vals := in.columns()
	set := make([]string, len(cols))
	for i, col := range cols {
		set[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}

	q := fmt.Sprintf(`UPDATE patients SET %s, updated_at = NOW()
		WHERE patient_id = $1 RETURNING %s`,
		strings.Join(set, ", "), strings.ReplaceAll(patientCols, "p.", ""))

	var p Patient
	args := append([]interface{}{id}, vals...)
	if err := r.conn(ctx).QueryRow(ctx, q, args...).Scan(scanFields(&p)...); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return &p, nil
}

func (f ListFilter) where(scope auth.Filter) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if frag, val, ok := scope.SQL("p.city_village", "p.region_district", len(args)+1); ok {
		where = append(where, frag)
		args = append(args, val)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(p.first_name ILIKE $%d OR p.last_name ILIKE $%d OR p.case_no ILIKE $%d)", n, n, n))
	}
	if f.City != "" {
		args = append(args, f.City)
		where = append(where, fmt.Sprintf("p.city_village = $%d", len(args)))
	}
	if f.Country != "" {
		args = append(args, f.Country)
		where = append(where, fmt.Sprintf("p.region_district = $%d", len(args)))
	}
	if f.PhaseID != 0 {
		args = append(args, f.PhaseID)
		where = append(where, fmt.Sprintf("pp.phase_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("pp.status = $%d", len(args)))
	}
	return where, args
}

func scanListItem(rows pgx.Rows) (*ListItem, error) {
	var it ListItem
	fields := append(scanFields(&it.Patient),
		&it.PhaseID, &it.PhaseName, &it.PhaseStatus, &it.PhaseStartDate, &it.PhaseEndDate)
	return &it, rows.Scan(fields...)
}

func (r *RepoPG) List(ctx context.Context, f ListFilter, scope auth.Filter, limit, offset int) ([]*ListItem, int, error) {
	where, args := f.where(scope)
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	const joins = `FROM patients p
		LEFT JOIN patient_phases pp ON p.patient_id = pp.patient_id
		LEFT JOIN phases ph ON pp.phase_id = ph.phase_id`

	countQ := fmt.Sprintf(`SELECT COUNT(*) %s %s`, joins, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s, pp.phase_id, ph.phase_name, pp.status,
		pp.phase_start_date, pp.phase_end_date
		%s %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		patientCols, joins, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ListItem
	for rows.Next() {
		it, err := scanListItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (r *RepoPG) ListByPhase(ctx context.Context, phaseID int64, status string, scope auth.Filter, limit, offset int) ([]*ListItem, int, error) {
	where := []string{"pp.phase_id = $1"}
	args := []interface{}{phaseID}

	if status != "" {
		args = append(args, status)
		where = append(where, fmt.Sprintf("pp.status = $%d", len(args)))
	}
	if frag, val, ok := scope.SQL("p.city_village", "p.region_district", len(args)+1); ok {
		where = append(where, frag)
		args = append(args, val)
	}
	whereClause := "WHERE " + strings.Join(where, " AND ")

	const joins = `FROM patients p
		INNER JOIN patient_phases pp ON p.patient_id = pp.patient_id
		LEFT JOIN phases ph ON pp.phase_id = ph.phase_id`

	countQ := fmt.Sprintf(`SELECT COUNT(*) %s %s`, joins, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s, pp.phase_id, ph.phase_name, pp.status,
		pp.phase_start_date, pp.phase_end_date
		%s %s ORDER BY pp.phase_start_date DESC LIMIT $%d OFFSET $%d`,
		patientCols, joins, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*ListItem
	for rows.Next() {
		it, err := scanListItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}
