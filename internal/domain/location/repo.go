package location

import "context"

// Repository persists countries, cities, and user location assignments.
// Get methods return nil, nil for absent rows.
type Repository interface {
	Countries(ctx context.Context) ([]*Country, error)
	GetCountry(ctx context.Context, id int64) (*Country, error)
	InsertCountry(ctx context.Context, isoCode, name string) (*Country, error)
	UpdateCountry(ctx context.Context, id int64, in CountryInput) (*Country, error)
	DeleteCountry(ctx context.Context, id int64) error
	CityCount(ctx context.Context, countryID int64) (int, error)

	Cities(ctx context.Context, countryID int64) ([]*City, error)
	GetCity(ctx context.Context, id int64) (*City, error)
	InsertCity(ctx context.Context, name string, countryID int64) (*City, error)
	UpdateCity(ctx context.Context, id int64, in CityInput) (*City, error)
	DeleteCity(ctx context.Context, id int64) error
	AssignmentCountByCity(ctx context.Context, cityID int64) (int, error)

	UserLocations(ctx context.Context, userID int64) ([]*UserLocation, error)
	GetUserLocation(ctx context.Context, id int64) (*UserLocation, error)
	InsertUserLocation(ctx context.Context, in UserLocationInput) (*UserLocation, error)
	DeleteUserLocation(ctx context.Context, id int64) error
}
