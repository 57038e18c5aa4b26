package profiles

import "time"

// Role is the primary application role stored on a profile.
type Role string

// Primary roles known to GleeWorld.
const (
	RoleMember     Role = "member"
	RoleAlumna     Role = "alumna"
	RoleFan        Role = "fan"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
	RoleAuditioner Role = "auditioner"
	RoleProvider   Role = "provider"
)

// ExecRole is an executive-board position slug (e.g. "chief-of-staff").
type ExecRole string

// Kind discriminates profile shapes. It is resolved once at load time so
// callers branch on the kind instead of null-checking individual flags.
type Kind string

const (
	// KindGuest is the shape of a missing or unprovisioned profile.
	// Guests carry no elevated flags and see standard content only.
	KindGuest Kind = "guest"
	// KindMember is any authenticated non-guest profile without elevated access.
	KindMember Kind = "member"
	// KindExecBoard marks profiles holding an executive-board position.
	KindExecBoard Kind = "exec_board"
	// KindAdmin marks admin and super-admin profiles (all-access override).
	KindAdmin Kind = "admin"
)

// Profile describes an identity's application-level standing.
type Profile struct {
	IdentityID   string
	Email        string
	FullName     string
	Role         Role
	Kind         Kind
	IsAdmin      bool
	IsSuperAdmin bool
	IsExecBoard  bool
	ExecRole     ExecRole
	Enrollments  []string
	Verified     bool
	UpdatedAt    time.Time
}

// Guest returns the least-privilege profile used when no row exists yet.
func Guest(identityID string) Profile {
	return Profile{IdentityID: identityID, Kind: KindGuest}
}

// Authenticated reports whether the profile belongs to a signed-in non-guest.
func (p Profile) Authenticated() bool {
	return p.Kind != KindGuest
}

// EnrolledIn reports whether the profile carries the given course marker.
func (p Profile) EnrolledIn(course string) bool {
	for _, c := range p.Enrollments {
		if c == course {
			return true
		}
	}
	return false
}

// Normalize enforces the profile invariants and derives the kind:
// super-admin implies admin, and the kind follows the strongest flag.
// Every repository that scans profile rows passes them through here.
func Normalize(p Profile) Profile {
	if p.Role == RoleSuperAdmin {
		p.IsSuperAdmin = true
	}
	if p.IsSuperAdmin || p.Role == RoleAdmin {
		p.IsAdmin = true
	}
	switch {
	case p.IsAdmin:
		p.Kind = KindAdmin
	case p.IsExecBoard || p.ExecRole != "":
		p.IsExecBoard = true
		p.Kind = KindExecBoard
	case p.Role == "":
		p.Kind = KindGuest
	default:
		p.Kind = KindMember
	}
	return p
}
