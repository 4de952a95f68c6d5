package supply

import (
	"context"
	"errors"
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

func (in Input) columns() ([]string, []interface{}) {
	var cols []string
	var vals []interface{}
	add := func(col string, v interface{}, set bool) {
		if set {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	}
	add("category_id", in.CategoryID, in.CategoryID != nil)
	add("item_name", in.ItemName, in.ItemName != nil)
	add("description", in.Description, in.Description != nil)
	add("current_stock_level", in.CurrentStockLevel, in.CurrentStockLevel != nil)
	add("unit_of_measure", in.UnitOfMeasure, in.UnitOfMeasure != nil)
	add("reorder_level", in.ReorderLevel, in.ReorderLevel != nil)
	add("status", in.Status, in.Status != nil)
	return cols, vals
}

const supplyCols = `s.supply_id, s.category_id, s.item_name, s.description,
	s.current_stock_level, s.unit_of_measure, s.reorder_level, s.status,
	s.created_at, s.updated_at, COALESCE(sc.category_name, '')`

const supplyJoins = `FROM supplies s
	LEFT JOIN supply_categories sc ON s.category_id = sc.category_id`

func scanSupply(row pgx.Row) (*Supply, error) {
	var s Supply
	err := row.Scan(&s.ID, &s.CategoryID, &s.ItemName, &s.Description,
		&s.CurrentStockLevel, &s.UnitOfMeasure, &s.ReorderLevel, &s.Status,
		&s.CreatedAt, &s.UpdatedAt, &s.CategoryName)
	return &s, err
}

func (r *RepoPG) Insert(ctx context.Context, in Input) (*Supply, error) {
	cols, vals := in.columns()
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf(`INSERT INTO supplies (%s) VALUES (%s) RETURNING supply_id`,
		strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := r.conn(ctx).QueryRow(ctx, q, vals...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert supply: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RepoPG) GetByID(ctx context.Context, id int64) (*Supply, error) {
	q := fmt.Sprintf(`SELECT %s %s WHERE s.supply_id = $1`, supplyCols, supplyJoins)
	s, err := scanSupply(r.conn(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RepoPG) Update(ctx context.Context, id int64, in Input) (*Supply, error) {
	cols, vals := in.columns()
	set := make([]string, len(cols))
	for i, col := range cols {
		set[i] = fmt.Sprintf("%s = $%d", col, i+2)
	}

	q := fmt.Sprintf(`UPDATE supplies SET %s, updated_at = NOW() WHERE supply_id = $1`,
		strings.Join(set, ", "))
	args := append([]interface{}{id}, vals...)
	if _, err := r.conn(ctx).Exec(ctx, q, args...); err != nil {
		return nil, fmt.Errorf("update supply: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RepoPG) UpdateStockLevel(ctx context.Context, id int64, newLevel int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE supplies SET current_stock_level = $1, updated_at = NOW() WHERE supply_id = $2`,
		newLevel, id)
	if err != nil {
		return fmt.Errorf("update stock level: %w", err)
	}
	return nil
}

func (r *RepoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM supplies WHERE supply_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Supply, int, error) {
	var where []string
	var args []interface{}

	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("sc.category_name = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if f.LowStock {
		where = append(where, "s.current_stock_level <= s.reorder_level")
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf(`SELECT COUNT(*) %s %s`, supplyJoins, whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s %s %s ORDER BY s.item_name LIMIT $%d OFFSET $%d`,
		supplyCols, supplyJoins, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var supplies []*Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, 0, err
		}
		supplies = append(supplies, s)
	}
	return supplies, total, rows.Err()
}

func (r *RepoPG) TransactionCount(ctx context.Context, supplyID int64) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM supply_transactions WHERE supply_id = $1`, supplyID).Scan(&count)
	return count, err
}

func (r *RepoPG) InsertTransaction(ctx context.Context, t *Transaction) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO supply_transactions (supply_id, transaction_type_id, quantity, recorded_by_user_id, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING transaction_id, transaction_date`,
		t.SupplyID, t.TransactionTypeID, t.Quantity, t.RecordedBy, t.Notes,
	).Scan(&t.ID, &t.TransactionDate)
	if err != nil {
		return fmt.Errorf("insert supply transaction: %w", err)
	}
	return nil
}

func (r *RepoPG) ListTransactions(ctx context.Context, supplyID int64) ([]*Transaction, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT st.transaction_id, st.supply_id, st.transaction_type_id, st.quantity,
			st.recorded_by_user_id, st.notes, st.transaction_date,
			COALESCE(stt.type_name, ''), COALESCE(u.username, '')
		 FROM supply_transactions st
		 LEFT JOIN supply_transaction_types stt ON st.transaction_type_id = stt.transaction_type_id
		 LEFT JOIN users u ON st.recorded_by_user_id = u.user_id
		 WHERE st.supply_id = $1
		 ORDER BY st.transaction_date DESC`, supplyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(&t.ID, &t.SupplyID, &t.TransactionTypeID, &t.Quantity,
			&t.RecordedBy, &t.Notes, &t.TransactionDate, &t.TypeName, &t.RecordedByName)
		if err != nil {
			return nil, err
		}
		txs = append(txs, &t)
	}
	return txs, rows.Err()
}

func (r *RepoPG) Categories(ctx context.Context) ([]*Category, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT category_id, category_name, created_at FROM supply_categories ORDER BY category_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []*Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, &c)
	}
	return cats, rows.Err()
}

func (r *RepoPG) InsertCategory(ctx context.Context, name string) (*Category, error) {
	var c Category
	c.Name = name
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO supply_categories (category_name) VALUES ($1) RETURNING category_id, created_at`,
		name).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert supply category: %w", err)
	}
	return &c, nil
}

func (r *RepoPG) TransactionTypes(ctx context.Context) ([]*TransactionType, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT transaction_type_id, type_name FROM supply_transaction_types ORDER BY type_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []*TransactionType
	for rows.Next() {
		var t TransactionType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, &t)
	}
	return types, rows.Err()
}

func (r *RepoPG) TransactionTypeByName(ctx context.Context, name string) (*TransactionType, error) {
	var t TransactionType
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT transaction_type_id, type_name FROM supply_transaction_types WHERE type_name = $1`,
		name).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
