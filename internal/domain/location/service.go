package location

import (
	"context"

	"github.com/hearcase/hearcase/internal/domain/audit"
	"github.com/hearcase/hearcase/internal/platform/db"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
	"github.com/hearcase/hearcase/internal/platform/mutate"
)

type Service struct {
	repo Repository
	tx   db.Transactor
	rec  audit.Recorder
}

func NewService(repo Repository, tx db.Transactor, rec audit.Recorder) *Service {
	return &Service{repo: repo, tx: tx, rec: rec}
}

func (s *Service) Countries(ctx context.Context) ([]*Country, error) {
	return s.repo.Countries(ctx)
}

func (s *Service) CreateCountry(ctx context.Context, in CountryInput, actorID int64) (*Country, error) {
	if in.Name == nil || *in.Name == "" || in.ISOCode == nil || *in.ISOCode == "" {
		return nil, domainerr.PreconditionFailed("iso_code and country_name are required")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Country]{
		Table:   "countries",
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *Country) (*Country, error) {
			return s.repo.InsertCountry(ctx, *in.ISOCode, *in.Name)
		},
		KeyOf: func(c *Country) int64 { return c.ID },
	})
}

func (s *Service) UpdateCountry(ctx context.Context, id int64, in CountryInput, actorID int64) (*Country, error) {
	if in.Name == nil && in.ISOCode == nil {
		return nil, domainerr.PreconditionFailed("No fields to update")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Country]{
		Table:   "countries",
		Action:  audit.ActionUpdate,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*Country, error) {
			c, err := s.repo.GetCountry(ctx, id)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, domainerr.NotFound("Country not found")
			}
			return c, nil
		},
		Apply: func(ctx context.Context, _ *Country) (*Country, error) {
			return s.repo.UpdateCountry(ctx, id, in)
		},
		KeyOf: func(c *Country) int64 { return c.ID },
	})
}

func (s *Service) DeleteCountry(ctx context.Context, id int64, actorID int64) error {
	_, err := mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[Country]{
		Table:   "countries",
		Action:  audit.ActionDelete,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*Country, error) {
			c, err := s.repo.GetCountry(ctx, id)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, domainerr.NotFound("Country not found")
			}
			return c, nil
		},
		Apply: func(ctx context.Context, _ *Country) (*Country, error) {
			count, err := s.repo.CityCount(ctx, id)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, domainerr.PreconditionFailed("Cannot delete country with existing cities")
			}
			return nil, s.repo.DeleteCountry(ctx, id)
		},
		KeyOf: func(c *Country) int64 { return c.ID },
	})
	return err
}

func (s *Service) Cities(ctx context.Context, countryID int64) ([]*City, error) {
	return s.repo.Cities(ctx, countryID)
}

func (s *Service) CreateCity(ctx context.Context, in CityInput, actorID int64) (*City, error) {
	if in.Name == nil || *in.Name == "" || in.CountryID == nil {
		return nil, domainerr.PreconditionFailed("city_name and country_id are required")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[City]{
		Table:   "cities",
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *City) (*City, error) {
			return s.repo.InsertCity(ctx, *in.Name, *in.CountryID)
		},
		KeyOf: func(c *City) int64 { return c.ID },
	})
}

func (s *Service) UpdateCity(ctx context.Context, id int64, in CityInput, actorID int64) (*City, error) {
	if in.Name == nil && in.CountryID == nil {
		return nil, domainerr.PreconditionFailed("No fields to update")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[City]{
		Table:   "cities",
		Action:  audit.ActionUpdate,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*City, error) {
			c, err := s.repo.GetCity(ctx, id)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, domainerr.NotFound("City not found")
			}
			return c, nil
		},
		Apply: func(ctx context.Context, _ *City) (*City, error) {
			return s.repo.UpdateCity(ctx, id, in)
		},
		KeyOf: func(c *City) int64 { return c.ID },
	})
}

func (s *Service) DeleteCity(ctx context.Context, id int64, actorID int64) error {
	_, err := mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[City]{
		Table:   "cities",
		Action:  audit.ActionDelete,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*City, error) {
			c, err := s.repo.GetCity(ctx, id)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, domainerr.NotFound("City not found")
			}
			return c, nil
		},
		Apply: func(ctx context.Context, _ *City) (*City, error) {
			count, err := s.repo.AssignmentCountByCity(ctx, id)
			if err != nil {
				return nil, err
			}
			if count > 0 {
				return nil, domainerr.PreconditionFailed("Cannot delete city with existing user locations")
			}
			return nil, s.repo.DeleteCity(ctx, id)
		},
		KeyOf: func(c *City) int64 { return c.ID },
	})
	return err
}

func (s *Service) UserLocations(ctx context.Context, userID int64) ([]*UserLocation, error) {
	return s.repo.UserLocations(ctx, userID)
}

func (s *Service) AssignUserLocation(ctx context.Context, in UserLocationInput, actorID int64) (*UserLocation, error) {
	if in.UserID == 0 || in.CountryID == 0 {
		return nil, domainerr.PreconditionFailed("user_id and country_id are required")
	}

	return mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[UserLocation]{
		Table:   "user_locations",
		Action:  audit.ActionCreate,
		ActorID: actorID,
		Apply: func(ctx context.Context, _ *UserLocation) (*UserLocation, error) {
			return s.repo.InsertUserLocation(ctx, in)
		},
		KeyOf: func(ul *UserLocation) int64 { return ul.ID },
	})
}

func (s *Service) RemoveUserLocation(ctx context.Context, id int64, actorID int64) error {
	_, err := mutate.Run(ctx, s.tx, s.rec, mutate.Mutation[UserLocation]{
		Table:   "user_locations",
		Action:  audit.ActionDelete,
		ActorID: actorID,
		Fetch: func(ctx context.Context) (*UserLocation, error) {
			ul, err := s.repo.GetUserLocation(ctx, id)
			if err != nil {
				return nil, err
			}
			if ul == nil {
				return nil, domainerr.NotFound("User location not found")
			}
			return ul, nil
		},
		Apply: func(ctx context.Context, _ *UserLocation) (*UserLocation, error) {
			return nil, s.repo.DeleteUserLocation(ctx, id)
		},
		KeyOf: func(ul *UserLocation) int64 { return ul.ID },
	})
	return err
}
