package location

import "time"

// Country is reference data for a program country.
type Country struct {
	ID        int64     `db:"country_id" json:"country_id"`
	ISOCode   string    `db:"iso_code" json:"iso_code"`
	Name      string    `db:"country_name" json:"country_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// City belongs to exactly one country.
type City struct {
	ID        int64     `db:"city_id" json:"city_id"`
	Name      string    `db:"city_name" json:"city_name"`
	CountryID int64     `db:"country_id" json:"country_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	CountryName string `json:"country_name,omitempty"`
}

// UserLocation assigns a user to a country and optionally a city, scoping
// what coordinator roles can see.
type UserLocation struct {
	ID        int64     `db:"location_id" json:"location_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	CountryID int64     `db:"country_id" json:"country_id"`
	CityID    *int64    `db:"city_id" json:"city_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Username    string  `json:"username,omitempty"`
	CountryName string  `json:"country_name,omitempty"`
	CityName    *string `json:"city_name,omitempty"`
}

// CountryInput carries country create/update fields.
type CountryInput struct {
	ISOCode *string `json:"iso_code,omitempty"`
	Name    *string `json:"country_name,omitempty"`
}

// CityInput carries city create/update fields.
type CityInput struct {
	Name      *string `json:"city_name,omitempty"`
	CountryID *int64  `json:"country_id,omitempty"`
}

// UserLocationInput carries an assignment.
type UserLocationInput struct {
	UserID    int64  `json:"user_id"`
	CountryID int64  `json:"country_id"`
	CityID    *int64 `json:"city_id,omitempty"`
}
