package user

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/location"
	"github.com/hearcase/hearcase/internal/platform/auth"
)

// PrincipalLoader resolves JWT subjects into full principals for the auth
// middleware. A nil principal for a known id means the account was
// deactivated after the token was issued, and the middleware turns that
// into a 401.
type PrincipalLoader struct {
	users     Repository
	locations location.Repository
}

func NewPrincipalLoader(users Repository, locations location.Repository) *PrincipalLoader {
	return &PrincipalLoader{users: users, locations: locations}
}

func (l *PrincipalLoader) LoadPrincipal(ctx context.Context, userID int64) (*auth.Principal, error) {
	u, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, nil
	}

	uls, err := l.locations.UserLocations(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &auth.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Roles:    u.Roles,
	}
	for _, ul := range uls {
		countryID := ul.CountryID
		loc := auth.Location{
			CountryID:   &countryID,
			CityID:      ul.CityID,
			CountryName: ul.CountryName,
		}
		if ul.CityName != nil {
			loc.CityName = *ul.CityName
		}
		p.Locations = append(p.Locations, loc)
	}
	return p, nil
}
