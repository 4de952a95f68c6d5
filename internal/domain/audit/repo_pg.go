package audit

import (
	"context"
	"fmt"
	"strings"

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

func (r *RepoPG) Insert(ctx context.Context, log *Log) (int64, error) {
	var id int64
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO audit_logs (table_name, record_id, action_type, old_data, new_data, changed_by_user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING log_id`,
		log.Table, log.RecordID, log.Action, log.Before, log.After, log.ActorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert audit log: %w", err)
	}
	return id, nil
}

const logCols = `al.log_id, al.table_name, al.record_id, al.action_type, al.old_data, al.new_data,
	al.changed_by_user_id, al.change_timestamp, COALESCE(u.username, '')`

func scanLog(row pgx.Row) (*Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.Table, &l.RecordID, &l.Action, &l.Before, &l.After,
		&l.ActorID, &l.Timestamp, &l.ActorUsername)
	return &l, err
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*Log, error) {
	q := fmt.Sprintf(`SELECT %s FROM audit_logs al
		LEFT JOIN users u ON al.changed_by_user_id = u.user_id
		WHERE al.log_id = $1`, logCols)
	return scanLog(r.conn(ctx).QueryRow(ctx, q, id))
}

func (f ListFilter) where() ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if f.Table != "" {
		args = append(args, f.Table)
		where = append(where, fmt.Sprintf("al.table_name = $%d", len(args)))
	}
	if f.Action != "" {
		args = append(args, f.Action)
		where = append(where, fmt.Sprintf("al.action_type = $%d", len(args)))
	}
	if f.ActorID != 0 {
		args = append(args, f.ActorID)
		where = append(where, fmt.Sprintf("al.changed_by_user_id = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("al.change_timestamp >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("al.change_timestamp <= $%d", len(args)))
	}
	return where, args
}

func (r *RepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Log, int, error) {
	where, args := filter.where()

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs al %s`, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM audit_logs al
		LEFT JOIN users u ON al.changed_by_user_id = u.user_id
		%s ORDER BY al.change_timestamp DESC LIMIT $%d OFFSET $%d`,
		logCols, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var logs []*Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

func (r *RepoPG) Stats(ctx context.Context, filter ListFilter) (*Stats, error) {
	where, args := filter.where()
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	stats := &Stats{}
	conn := r.conn(ctx)

	q := fmt.Sprintf(`SELECT COUNT(*) FROM audit_logs al %s`, whereClause)
	if err := conn.QueryRow(ctx, q, args...).Scan(&stats.TotalLogs); err != nil {
		return nil, err
	}

	q = fmt.Sprintf(`SELECT al.action_type, COUNT(*) FROM audit_logs al %s
		GROUP BY al.action_type ORDER BY COUNT(*) DESC`, whereClause)
	rows, err := conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ac ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ActionCounts = append(stats.ActionCounts, ac)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	q = fmt.Sprintf(`SELECT al.table_name, COUNT(*) FROM audit_logs al %s
		GROUP BY al.table_name ORDER BY COUNT(*) DESC`, whereClause)
	rows, err = conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var tc TableCount
		if err := rows.Scan(&tc.Table, &tc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.TableActivity = append(stats.TableActivity, tc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	q = fmt.Sprintf(`SELECT COALESCE(u.username, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COUNT(*)
		FROM audit_logs al
		LEFT JOIN users u ON al.changed_by_user_id = u.user_id
		%s
		GROUP BY u.user_id, u.username, u.first_name, u.last_name
		ORDER BY COUNT(*) DESC
		LIMIT 10`, whereClause)
	rows, err = conn.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ua UserActivity
		if err := rows.Scan(&ua.Username, &ua.FirstName, &ua.LastName, &ua.Count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.UserActivity = append(stats.UserActivity, ua)
	}
	rows.Close()
	return stats, rows.Err()
}
