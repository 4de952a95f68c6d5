package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role names are a fixed enumerable set shared with the roles reference
// table.
const (
	RoleAdmin              = "admin"
	RoleCityCoordinator    = "city_coordinator"
	RoleCountryCoordinator = "country_coordinator"
	RolePhase1Specialist   = "phase1_specialist"
	RolePhase2Specialist   = "phase2_specialist"
	RolePhase3Specialist   = "phase3_specialist"
	RoleAudiologist        = "audiologist"
	RoleCounselor          = "counselor"
	RoleSupplyManager      = "supply_manager"
)

// Coordinators is the role set allowed to manage patients and phase
// progression.
func Coordinators() []string {
	return []string{RoleAdmin, RoleCityCoordinator, RoleCountryCoordinator}
}

// RequireRole returns middleware that rejects callers holding none of the
// given roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := PrincipalFromContext(c.Request().Context())
			if principal == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}
			for _, required := range roles {
				if principal.HasRole(required) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
