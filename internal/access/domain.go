// Package access decides what a profile may see and manage on the
// dashboard. The precedence rules live here and nowhere else; route guards
// and the dashboard projector both delegate to Resolve.
package access

// Source names the rule that produced a verdict.
type Source string

const (
	// SourceAdmin is the all-access override for admin profiles.
	SourceAdmin Source = "admin"
	// SourceExecutive marks access derived from an executive-board position.
	SourceExecutive Source = "executive_position"
	// SourceRole marks access every member of a role receives.
	SourceRole Source = "role"
	// SourceUsername marks access from an explicit per-email grant.
	SourceUsername Source = "username"
)

// Resolved is the verdict for one (profile, module) pair. It is derived
// on demand and never stored; recompute whenever the profile or grant set
// changes.
type Resolved struct {
	CanAccess bool
	CanManage bool
	Source    Source
}
