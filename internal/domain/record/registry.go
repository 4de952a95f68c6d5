package record

import (
	"fmt"
	"strings"

	"github.com/hearcase/hearcase/internal/platform/auth"
)

// Type describes one phase-detail record kind: where it lives in the
// pipeline, its route slug, and who may touch it.
type Type struct {
	Phase int64
	Slug  string
	// Roles gates create, read, and update alike. The aggregate per-phase
	// data route is gated by the union of the phase's type roles.
	Roles []string
}

// Name is the discriminator stored in phase_records.record_type and used as
// the audit target for rows of this type.
func (t Type) Name() string {
	return fmt.Sprintf("phase%d_%s", t.Phase, strings.ReplaceAll(t.Slug, "-", "_"))
}

func withSpecialist(phase int64, extra ...string) []string {
	specialist := map[int64]string{
		1: auth.RolePhase1Specialist,
		2: auth.RolePhase2Specialist,
		3: auth.RolePhase3Specialist,
	}[phase]
	roles := append(auth.Coordinators(), specialist)
	return append(roles, extra...)
}

// Types is the full registry of phase-detail record kinds. Note phase 3 ear
// screenings are writable by phase 1 specialists, not phase 3; that mirrors
// the assignments the deployment has always run with.
var Types = []Type{
	{Phase: 1, Slug: "registration", Roles: withSpecialist(1)},
	{Phase: 1, Slug: "ear-screening", Roles: withSpecialist(1, auth.RoleAudiologist)},
	{Phase: 1, Slug: "hearing-screening", Roles: withSpecialist(1, auth.RoleAudiologist)},
	{Phase: 1, Slug: "ear-impressions", Roles: withSpecialist(1)},
	{Phase: 1, Slug: "final-qc", Roles: withSpecialist(1)},

	{Phase: 2, Slug: "registration", Roles: withSpecialist(2)},
	{Phase: 2, Slug: "fitting-table", Roles: withSpecialist(2, auth.RoleAudiologist)},
	{Phase: 2, Slug: "fitting", Roles: withSpecialist(2, auth.RoleAudiologist)},
	{Phase: 2, Slug: "counseling", Roles: withSpecialist(2, auth.RoleCounselor)},
	{Phase: 2, Slug: "final-qc", Roles: withSpecialist(2)},

	{Phase: 3, Slug: "registration", Roles: withSpecialist(3)},
	{Phase: 3, Slug: "ear-screening", Roles: withSpecialist(1, auth.RoleAudiologist)},
	{Phase: 3, Slug: "aftercare-assessment", Roles: withSpecialist(3, auth.RoleAudiologist)},
	{Phase: 3, Slug: "final-qc", Roles: withSpecialist(3)},
}

// Lookup finds a registered type by phase and slug.
func Lookup(phase int64, slug string) (Type, bool) {
	for _, t := range Types {
		if t.Phase == phase && t.Slug == slug {
			return t, true
		}
	}
	return Type{}, false
}

// PhaseRoles returns the union of role sets across a phase's types, used to
// gate the aggregate per-patient data route.
func PhaseRoles(phase int64) []string {
	seen := map[string]bool{}
	var roles []string
	for _, t := range Types {
		if t.Phase != phase {
			continue
		}
		for _, r := range t.Roles {
			if !seen[r] {
				seen[r] = true
				roles = append(roles, r)
			}
		}
	}
	return roles
}
