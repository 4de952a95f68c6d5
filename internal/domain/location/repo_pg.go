package location

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

func (r *RepoPG) Countries(ctx context.Context) ([]*Country, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT country_id, iso_code, country_name, created_at FROM countries ORDER BY country_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []*Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.ISOCode, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		countries = append(countries, &c)
	}
	return countries, rows.Err()
}

func (r *RepoPG) GetCountry(ctx context.Context, id int64) (*Country, error) {
	var c Country
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT country_id, iso_code, country_name, created_at FROM countries WHERE country_id = $1`,
		id).Scan(&c.ID, &c.ISOCode, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RepoPG) InsertCountry(ctx context.Context, isoCode, name string) (*Country, error) {
	c := Country{ISOCode: isoCode, Name: name}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO countries (iso_code, country_name) VALUES ($1, $2)
		 RETURNING country_id, created_at`,
		isoCode, name).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert country: %w", err)
	}
	return &c, nil
}

func (r *RepoPG) UpdateCountry(ctx context.Context, id int64, in CountryInput) (*Country, error) {
	var set []string
	var args []interface{}
	args = append(args, id)
	if in.ISOCode != nil {
		args = append(args, *in.ISOCode)
		set = append(set, fmt.Sprintf("iso_code = $%d", len(args)))
	}
	if in.Name != nil {
		args = append(args, *in.Name)
		set = append(set, fmt.Sprintf("country_name = $%d", len(args)))
	}

	q := fmt.Sprintf(`UPDATE countries SET %s WHERE country_id = $1
		RETURNING country_id, iso_code, country_name, created_at`, strings.Join(set, ", "))
	var c Country
	if err := r.conn(ctx).QueryRow(ctx, q, args...).Scan(&c.ID, &c.ISOCode, &c.Name, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("update country: %w", err)
	}
	return &c, nil
}

func (r *RepoPG) DeleteCountry(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM countries WHERE country_id = $1`, id)
	return err
}

func (r *RepoPG) CityCount(ctx context.Context, countryID int64) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM cities WHERE country_id = $1`, countryID).Scan(&count)
	return count, err
}

const cityCols = `c.city_id, c.city_name, c.country_id, c.created_at, COALESCE(co.country_name, '')`

func (r *RepoPG) Cities(ctx context.Context, countryID int64) ([]*City, error) {
	q := fmt.Sprintf(`SELECT %s FROM cities c
		LEFT JOIN countries co ON c.country_id = co.country_id`, cityCols)
	var args []interface{}
	if countryID != 0 {
		q += ` WHERE c.country_id = $1`
		args = append(args, countryID)
	}
	q += ` ORDER BY c.city_name`

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []*City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.Name, &c.CountryID, &c.CreatedAt, &c.CountryName); err != nil {
			return nil, err
		}
		cities = append(cities, &c)
	}
	return cities, rows.Err()
}

func (r *RepoPG) GetCity(ctx context.Context, id int64) (*City, error) {
	q := fmt.Sprintf(`SELECT %s FROM cities c
		LEFT JOIN countries co ON c.country_id = co.country_id
		WHERE c.city_id = $1`, cityCols)
	var c City
	err := r.conn(ctx).QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.CountryID, &c.CreatedAt, &c.CountryName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *RepoPG) InsertCity(ctx context.Context, name string, countryID int64) (*City, error) {
	c := City{Name: name, CountryID: countryID}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO cities (city_name, country_id) VALUES ($1, $2)
		 RETURNING city_id, created_at`,
		name, countryID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert city: %w", err)
	}
	return &c, nil
}

func (r *RepoPG) UpdateCity(ctx context.Context, id int64, in CityInput) (*City, error) {
	var set []string
	var args []interface{}
	args = append(args, id)
	if in.Name != nil {
		args = append(args, *in.Name)
		set = append(set, fmt.Sprintf("city_name = $%d", len(args)))
	}
	if in.CountryID != nil {
		args = append(args, *in.CountryID)
		set = append(set, fmt.Sprintf("country_id = $%d", len(args)))
	}

	q := fmt.Sprintf(`UPDATE cities SET %s WHERE city_id = $1
		RETURNING city_id, city_name, country_id, created_at`, strings.Join(set, ", "))
	var c City
	if err := r.conn(ctx).QueryRow(ctx, q, args...).Scan(&c.ID, &c.Name, &c.CountryID, &c.CreatedAt); err != nil {
		return nil, fmt.Errorf("update city: %w", err)
	}
	return &c, nil
}

func (r *RepoPG) DeleteCity(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM cities WHERE city_id = $1`, id)
	return err
}

func (r *RepoPG) AssignmentCountByCity(ctx context.Context, cityID int64) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM user_locations WHERE city_id = $1`, cityID).Scan(&count)
	return count, err
}

const userLocationCols = `ul.location_id, ul.user_id, ul.country_id, ul.city_id, ul.created_at,
	COALESCE(u.username, ''), COALESCE(co.country_name, ''), c.city_name`

const userLocationJoins = `FROM user_locations ul
	LEFT JOIN users u ON ul.user_id = u.user_id
	LEFT JOIN countries co ON ul.country_id = co.country_id
	LEFT JOIN cities c ON ul.city_id = c.city_id`

func scanUserLocation(row pgx.Row) (*UserLocation, error) {
	var ul UserLocation
	err := row.Scan(&ul.ID, &ul.UserID, &ul.CountryID, &ul.CityID, &ul.CreatedAt,
		&ul.Username, &ul.CountryName, &ul.CityName)
	return &ul, err
}

func (r *RepoPG) UserLocations(ctx context.Context, userID int64) ([]*UserLocation, error) {
	q := fmt.Sprintf(`SELECT %s %s`, userLocationCols, userLocationJoins)
	var args []interface{}
	if userID != 0 {
		q += ` WHERE ul.user_id = $1`
		args = append(args, userID)
	}
	q += ` ORDER BY ul.location_id`

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uls []*UserLocation
	for rows.Next() {
		ul, err := scanUserLocation(rows)
		if err != nil {
			return nil, err
		}
		uls = append(uls, ul)
	}
	return uls, rows.Err()
}

func (r *RepoPG) GetUserLocation(ctx context.Context, id int64) (*UserLocation, error) {
	q := fmt.Sprintf(`SELECT %s %s WHERE ul.location_id = $1`, userLocationCols, userLocationJoins)
	ul, err := scanUserLocation(r.conn(ctx).QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ul, nil
}

func (r *RepoPG) InsertUserLocation(ctx context.Context, in UserLocationInput) (*UserLocation, error) {
	ul := UserLocation{UserID: in.UserID, CountryID: in.CountryID, CityID: in.CityID}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO user_locations (user_id, country_id, city_id) VALUES ($1, $2, $3)
		 RETURNING location_id, created_at`,
		in.UserID, in.CountryID, in.CityID).Scan(&ul.ID, &ul.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user location: %w", err)
	}
	return &ul, nil
}

func (r *RepoPG) DeleteUserLocation(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM user_locations WHERE location_id = $1`, id)
	return err
}
