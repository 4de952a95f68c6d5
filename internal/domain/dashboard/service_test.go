package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/hearcase/hearcase/internal/platform/auth"
	"github.com/hearcase/hearcase/internal/platform/domainerr"
)

type captureRepo struct {
	overviewScope  *auth.Filter
	analyticsScope *auth.Filter
	analyticsRange *DateRange
}

func (r *captureRepo) Overview(_ context.Context, scope auth.Filter) (*Overview, error) {
	r.overviewScope = &scope
	return &Overview{}, nil
}

func (r *captureRepo) SupplyOverview(context.Context) (*SupplyOverview, error) {
	return &SupplyOverview{}, nil
}

func (r *captureRepo) UserOverview(context.Context) (*UserOverview, error) {
	return &UserOverview{}, nil
}

func (r *captureRepo) Analytics(_ context.Context, dr DateRange, scope auth.Filter) (*Analytics, error) {
	r.analyticsRange = &dr
	r.analyticsScope = &scope
	return &Analytics{}, nil
}

func cityCoordinator(cities ...string) *auth.Principal {
	p := &auth.Principal{UserID: 1, Username: "coord", Roles: []string{auth.RoleCityCoordinator}}
	for _, c := range cities {
		id := int64(1)
		p.Locations = append(p.Locations, auth.Location{CityID: &id, CityName: c})
	}
	return p
}

func TestOverviewScopesCityCoordinator(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)

	if _, err := svc.Overview(context.Background(), cityCoordinator("Kumasi", "Tamale")); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if repo.overviewScope == nil {
		t.Fatal("scope not passed to repository")
	}
	if len(repo.overviewScope.Cities) != 2 {
		t.Errorf("scope cities = %v, want two", repo.overviewScope.Cities)
	}
}

func TestOverviewAdminUnrestricted(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)
	admin := &auth.Principal{UserID: 1, Roles: []string{auth.RoleAdmin}}

	if _, err := svc.Overview(context.Background(), admin); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if !repo.overviewScope.Unrestricted() {
		t.Errorf("admin scope = %+v, want unrestricted", *repo.overviewScope)
	}
}

func TestAnalyticsDateValidation(t *testing.T) {
	svc := NewService(&captureRepo{})
	admin := &auth.Principal{UserID: 1, Roles: []string{auth.RoleAdmin}}
	day := func(s string) *time.Time {
		t2, _ := time.Parse("2006-01-02", s)
		return &t2
	}

	_, err := svc.Analytics(context.Background(), admin, DateRange{Start: day("2026-01-01")})
	if !domainerr.IsPreconditionFailed(err) {
		t.Errorf("lone start date: error = %v, want precondition failed", err)
	}

	_, err = svc.Analytics(context.Background(), admin, DateRange{
		Start: day("2026-02-01"), End: day("2026-01-01"),
	})
	if !domainerr.IsPreconditionFailed(err) {
		t.Errorf("inverted range: error = %v, want precondition failed", err)
	}
}

func TestAnalyticsPassesRangeAndScope(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo)
	start, _ := time.Parse("2006-01-02", "2026-01-01")
	end, _ := time.Parse("2006-01-02", "2026-06-30")

	_, err := svc.Analytics(context.Background(), cityCoordinator("Kumasi"),
		DateRange{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if !repo.analyticsRange.Set() {
		t.Error("date range not passed through")
	}
	if len(repo.analyticsScope.Cities) != 1 || repo.analyticsScope.Cities[0] != "Kumasi" {
		t.Errorf("scope = %+v", *repo.analyticsScope)
	}
}
