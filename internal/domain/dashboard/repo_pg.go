package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hearcase/hearcase/internal/platform/auth"
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

func (r *RepoPG) Overview(ctx context.Context, scope auth.Filter) (*Overview, error) {
	where := ""
	var args []interface{}
	if frag, arg, ok := scope.SQL("p.city_village", "p.region_district", 1); ok {
		where = "WHERE " + frag
		args = append(args, arg)
	}

	ov := &Overview{}
	c := r.conn(ctx)

	err := c.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM patients p %s`, where), args...,
	).Scan(&ov.TotalPatients)
	if err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}

	ov.PatientsByPhase, err = r.phaseCounts(ctx, where, "", args)
	if err != nil {
		return nil, err
	}

	rows, err := c.Query(ctx, fmt.Sprintf(
		`SELECT p.patient_id, p.case_no, p.first_name, p.last_name, p.created_at
		 FROM patients p %s
		 ORDER BY p.created_at DESC
		 LIMIT 10`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("recent patients: %w", err)
	}
	defer rows.Close()
	ov.RecentPatients = []RecentPatient{}
	for rows.Next() {
		var rp RecentPatient
		if err := rows.Scan(&rp.PatientID, &rp.CaseNo, &rp.FirstName, &rp.LastName, &rp.CreatedAt); err != nil {
			return nil, err
		}
		ov.RecentPatients = append(ov.RecentPatients, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	completedWhere := `WHERE pp.status = 'Completed'`
	if where != "" {
		completedWhere += " AND " + where[len("WHERE "):]
	}
	ov.PhaseCompletions, err = r.phaseCounts(ctx, "", completedWhere, args)
	if err != nil {
		return nil, err
	}
	return ov, nil
}

// phaseCounts groups patient_phases rows by phase. Exactly one of where and
// joinedWhere is non-empty; the latter already carries its own status
// predicate.
func (r *RepoPG) phaseCounts(ctx context.Context, where, joinedWhere string, args []interface{}) ([]PhaseCount, error) {
	clause := where
	if joinedWhere != "" {
		clause = joinedWhere
	}
	rows, err := r.conn(ctx).Query(ctx, fmt.Sprintf(
		`SELECT ph.phase_name, COUNT(pp.patient_id)
		 FROM patient_phases pp
		 LEFT JOIN phases ph ON pp.phase_id = ph.phase_id
		 LEFT JOIN patients p ON pp.patient_id = p.patient_id
		 %s
		 GROUP BY ph.phase_id, ph.phase_name
		 ORDER BY ph.phase_id`, clause), args...)
	if err != nil {
		return nil, fmt.Errorf("patients by phase: %w", err)
	}
	defer rows.Close()

	counts := []PhaseCount{}
	for rows.Next() {
		var pc PhaseCount
		if err := rows.Scan(&pc.PhaseName, &pc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

func (r *RepoPG) SupplyOverview(ctx context.Context) (*SupplyOverview, error) {
	ov := &SupplyOverview{}
	c := r.conn(ctx)

	if err := c.QueryRow(ctx, `SELECT COUNT(*) FROM supplies`).Scan(&ov.TotalSupplies); err != nil {
		return nil, fmt.Errorf("count supplies: %w", err)
	}

	rows, err := c.Query(ctx,
		`SELECT s.supply_id, s.item_name, COALESCE(sc.category_name, ''),
		        s.current_stock_level, s.reorder_level
		 FROM supplies s
		 LEFT JOIN supply_categories sc ON s.category_id = sc.category_id
		 WHERE s.current_stock_level <= s.reorder_level
		 ORDER BY s.current_stock_level ASC`)
	if err != nil {
		return nil, fmt.Errorf("low stock items: %w", err)
	}
	defer rows.Close()
	ov.LowStockItems = []LowStockItem{}
	for rows.Next() {
		var it LowStockItem
		if err := rows.Scan(&it.SupplyID, &it.ItemName, &it.CategoryName,
			&it.CurrentStock, &it.ReorderLevel); err != nil {
			return nil, err
		}
		ov.LowStockItems = append(ov.LowStockItems, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx,
		`SELECT sc.category_name, COUNT(s.supply_id)
		 FROM supply_categories sc
		 LEFT JOIN supplies s ON sc.category_id = s.category_id
		 GROUP BY sc.category_id, sc.category_name
		 ORDER BY COUNT(s.supply_id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("supplies by category: %w", err)
	}
	defer rows.Close()
	ov.SuppliesByCategory = []CategoryCount{}
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.CategoryName, &cc.Count); err != nil {
			return nil, err
		}
		ov.SuppliesByCategory = append(ov.SuppliesByCategory, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx,
		`SELECT st.transaction_id, COALESCE(s.item_name, ''), COALESCE(stt.type_name, ''),
		        st.quantity, COALESCE(u.username, ''), st.transaction_date
		 FROM supply_transactions st
		 LEFT JOIN supplies s ON st.supply_id = s.supply_id
		 LEFT JOIN supply_transaction_types stt ON st.transaction_type_id = stt.transaction_type_id
		 LEFT JOIN users u ON st.recorded_by_user_id = u.user_id
		 ORDER BY st.transaction_date DESC
		 LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()
	ov.RecentTransactions = []Transaction{}
	for rows.Next() {
		var tr Transaction
		if err := rows.Scan(&tr.TransactionID, &tr.ItemName, &tr.TypeName,
			&tr.Quantity, &tr.RecordedBy, &tr.TransactionDate); err != nil {
			return nil, err
		}
		ov.RecentTransactions = append(ov.RecentTransactions, tr)
	}
	return ov, rows.Err()
}

func (r *RepoPG) UserOverview(ctx context.Context) (*UserOverview, error) {
	ov := &UserOverview{}
	c := r.conn(ctx)

	err := c.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active = true`).Scan(&ov.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	rows, err := c.Query(ctx,
		`SELECT r.role_name, COUNT(u.user_id)
		 FROM roles r
		 LEFT JOIN user_roles ur ON r.role_id = ur.role_id
		 LEFT JOIN users u ON ur.user_id = u.user_id AND u.is_active = true
		 GROUP BY r.role_id, r.role_name
		 ORDER BY COUNT(u.user_id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}
	defer rows.Close()
	ov.UsersByRole = []RoleCount{}
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.RoleName, &rc.Count); err != nil {
			return nil, err
		}
		ov.UsersByRole = append(ov.UsersByRole, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx,
		`SELECT al.action_type, al.table_name, u.username, al.change_timestamp
		 FROM audit_logs al
		 LEFT JOIN users u ON al.changed_by_user_id = u.user_id
		 ORDER BY al.change_timestamp DESC
		 LIMIT 20`)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()
	ov.RecentActivity = []ActivityEntry{}
	for rows.Next() {
		var ae ActivityEntry
		if err := rows.Scan(&ae.Action, &ae.Table, &ae.Username, &ae.Timestamp); err != nil {
			return nil, err
		}
		ov.RecentActivity = append(ov.RecentActivity, ae)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx,
		`SELECT u.user_id, u.username, u.first_name, u.last_name, u.email,
		        ARRAY_REMOVE(ARRAY_AGG(r.role_name), NULL)
		 FROM users u
		 LEFT JOIN user_roles ur ON u.user_id = ur.user_id
		 LEFT JOIN roles r ON ur.role_id = r.role_id
		 WHERE u.is_active = true
		 GROUP BY u.user_id
		 ORDER BY u.created_at DESC
		 LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	defer rows.Close()
	ov.ActiveUsers = []ActiveUser{}
	for rows.Next() {
		var au ActiveUser
		if err := rows.Scan(&au.UserID, &au.Username, &au.FirstName, &au.LastName,
			&au.Email, &au.Roles); err != nil {
			return nil, err
		}
		ov.ActiveUsers = append(ov.ActiveUsers, au)
	}
	return ov, rows.Err()
}

func (r *RepoPG) Analytics(ctx context.Context, dr DateRange, scope auth.Filter) (*Analytics, error) {
	var args []interface{}
	dateFilter := ""
	if dr.Set() {
		dateFilter = "AND p.created_at BETWEEN $1 AND $2"
		args = append(args, *dr.Start, *dr.End)
	}
	locationFilter := ""
	if frag, arg, ok := scope.SQL("p.city_village", "p.region_district", len(args)+1); ok {
		locationFilter = "AND " + frag
		args = append(args, arg)
	}

	an := &Analytics{}
	c := r.conn(ctx)

	rows, err := c.Query(ctx, fmt.Sprintf(
		`SELECT DATE_TRUNC('month', p.created_at) AS month, COUNT(*)
		 FROM patients p
		 WHERE 1=1 %s %s
		 GROUP BY DATE_TRUNC('month', p.created_at)
		 ORDER BY month DESC
		 LIMIT 12`, dateFilter, locationFilter), args...)
	if err != nil {
		return nil, fmt.Errorf("patients by month: %w", err)
	}
	defer rows.Close()
	an.PatientsByMonth = []MonthCount{}
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		an.PatientsByMonth = append(an.PatientsByMonth, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx, fmt.Sprintf(
		`SELECT p.gender, COUNT(*)
		 FROM patients p
		 WHERE 1=1 %s %s
		 GROUP BY p.gender`, dateFilter, locationFilter), args...)
	if err != nil {
		return nil, fmt.Errorf("patients by gender: %w", err)
	}
	defer rows.Close()
	an.PatientsByGender = []GenderCount{}
	for rows.Next() {
		var gc GenderCount
		if err := rows.Scan(&gc.Gender, &gc.Count); err != nil {
			return nil, err
		}
		an.PatientsByGender = append(an.PatientsByGender, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx, fmt.Sprintf(
		`SELECT CASE
		    WHEN p.age < 18 THEN 'Under 18'
		    WHEN p.age BETWEEN 18 AND 30 THEN '18-30'
		    WHEN p.age BETWEEN 31 AND 50 THEN '31-50'
		    WHEN p.age BETWEEN 51 AND 70 THEN '51-70'
		    ELSE 'Over 70'
		  END AS age_group, COUNT(*)
		 FROM patients p
		 WHERE p.age IS NOT NULL %s %s
		 GROUP BY age_group
		 ORDER BY age_group`, dateFilter, locationFilter), args...)
	if err != nil {
		return nil, fmt.Errorf("patients by age: %w", err)
	}
	defer rows.Close()
	an.PatientsByAge = []AgeGroupCount{}
	for rows.Next() {
		var ac AgeGroupCount
		if err := rows.Scan(&ac.AgeGroup, &ac.Count); err != nil {
			return nil, err
		}
		an.PatientsByAge = append(an.PatientsByAge, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = c.Query(ctx, fmt.Sprintf(
		`SELECT ph.phase_name, pp.status, COUNT(*)
		 FROM patient_phases pp
		 LEFT JOIN phases ph ON pp.phase_id = ph.phase_id
		 LEFT JOIN patients p ON pp.patient_id = p.patient_id
		 WHERE 1=1 %s %s
		 GROUP BY ph.phase_id, ph.phase_name, pp.status
		 ORDER BY ph.phase_id, pp.status`, dateFilter, locationFilter), args...)
	if err != nil {
		return nil, fmt.Errorf("phase progress: %w", err)
	}
	defer rows.Close()
	an.PhaseProgress = []PhaseStatusCount{}
	for rows.Next() {
		var ps PhaseStatusCount
		if err := rows.Scan(&ps.PhaseName, &ps.Status, &ps.Count); err != nil {
			return nil, err
		}
		an.PhaseProgress = append(an.PhaseProgress, ps)
	}
	return an, rows.Err()
}
