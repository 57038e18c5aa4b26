package grants

import (
	"strings"
	"time"
)

// Grant is an explicit allow-list entry mapping an email to a permission
// key, optionally time-limited. Expired grants are excluded from
// resolution but never physically deleted.
type Grant struct {
	ID            int64
	Email         string
	PermissionKey string
	IsActive      bool
	ExpiresAt     *time.Time
	GrantedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ActiveAt reports whether the grant is usable at the given instant.
func (g Grant) ActiveAt(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	return g.ExpiresAt == nil || g.ExpiresAt.After(now)
}

// Matches reports whether the grant is addressed to the given email.
func (g Grant) Matches(email string) bool {
	return strings.EqualFold(strings.TrimSpace(g.Email), strings.TrimSpace(email))
}

// FilterActive keeps only grants usable at the given instant. Resolution
// applies this even when the backing store already filtered server-side.
func FilterActive(list []Grant, now time.Time) []Grant {
	out := make([]Grant, 0, len(list))
	for _, g := range list {
		if g.ActiveAt(now) {
			out = append(out, g)
		}
	}
	return out
}
