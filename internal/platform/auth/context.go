package auth

import "context"

type contextKey string

const principalKey contextKey = "principal"

// Location is a country and/or city assignment for a user. Coordinators are
// scoped by these; admins carry none.
type Location struct {
	CountryID   *int64 `json:"country_id,omitempty"`
	CityID      *int64 `json:"city_id,omitempty"`
	CountryName string `json:"country_name,omitempty"`
	CityName    string `json:"city_name,omitempty"`
}

// Principal is the resolved caller identity attached to every authenticated
// request: who they are, what roles they hold, and which locations they are
// assigned to. It is resolved once per request by the JWT middleware.
type Principal struct {
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Roles     []string   `json:"roles"`
	Locations []Location `json:"locations"`
}

// HasRole reports whether the principal holds the given role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CityNames returns the names of cities the principal is assigned to.
func (p *Principal) CityNames() []string {
	var names []string
	for _, loc := range p.Locations {
		if loc.CityID != nil && loc.CityName != "" {
			names = append(names, loc.CityName)
		}
	}
	return names
}

// CountryNames returns the names of countries the principal is assigned to.
func (p *Principal) CountryNames() []string {
	var names []string
	for _, loc := range p.Locations {
		if loc.CountryID != nil && loc.CountryName != "" {
			names = append(names, loc.CountryName)
		}
	}
	return names
}

// WithPrincipal stores the resolved principal in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the resolved principal, or nil when the
// request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
