package auth

import "fmt"

// Filter is a row-visibility predicate derived from the caller's role and
// location assignments. It is applied to patient listing and dashboard
// aggregate queries only; by-id fetches are deliberately unscoped, matching
// the behavior the program has always had.
type Filter struct {
	// Cities restricts rows to these city names; Countries to these
	// country/region names. Both empty means unrestricted.
	Cities    []string
	Countries []string
}

// Unrestricted reports whether the filter matches every row.
func (f Filter) Unrestricted() bool {
	return len(f.Cities) == 0 && len(f.Countries) == 0
}

// SQL renders the filter as a parameterized predicate over the given city
// and country columns, using $argIndex for the single ANY parameter. It
// returns the fragment, the parameter value, and whether a predicate is
// needed at all.
func (f Filter) SQL(cityCol, countryCol string, argIndex int) (string, interface{}, bool) {
	if len(f.Cities) > 0 {
		return fmt.Sprintf("%s = ANY($%d)", cityCol, argIndex), f.Cities, true
	}
	if len(f.Countries) > 0 {
		return fmt.Sprintf("%s = ANY($%d)", countryCol, argIndex), f.Countries, true
	}
	return "", nil, false
}

// ScopeFor derives the row-visibility filter for a principal. Admins are
// unrestricted. City coordinators see rows in their assigned cities, country
// coordinators rows in their assigned countries. Every other role is
// unrestricted: specialist roles have never been location-scoped here, and
// tightening that is a policy decision, not a code one.
func ScopeFor(p *Principal) Filter {
	if p == nil || p.HasRole(RoleAdmin) {
		return Filter{}
	}
	if p.HasRole(RoleCityCoordinator) {
		return Filter{Cities: p.CityNames()}
	}
	if p.HasRole(RoleCountryCoordinator) {
		return Filter{Countries: p.CountryNames()}
	}
	return Filter{}
}
