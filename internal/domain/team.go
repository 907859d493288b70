package domain

// MemberStatus is the availability status of a team member, always
// recomputed from load and capacity at read time to avoid drift.
type MemberStatus string

// Member status values.
const (
	// StatusIdle means at least half of the member's capacity is free.
	StatusIdle MemberStatus = "idle"

	// StatusBusy means some capacity is free, but less than half.
	StatusBusy MemberStatus = "busy"

	// StatusOverloaded means the member is at or over capacity.
	StatusOverloaded MemberStatus = "overloaded"
)

// TeamMember is one roster entry. Load and capacity are inputs from the
// surrounding task-lifecycle system; the derived fields are computed here.
type TeamMember struct {
	// Name is the member's display name.
	Name string `json:"name" yaml:"name"`

	// Email is the member's contact address.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// Role is the member's role text (e.g., "backend developer").
	Role string `json:"role" yaml:"role"`

	// Skills lists literal skill tokens (e.g., "go", "postgres").
	Skills []string `json:"skills,omitempty" yaml:"skills,omitempty"`

	// Expertise lists higher-level expertise tags, weighted above skills
	// during matching.
	Expertise []string `json:"expertise,omitempty" yaml:"expertise,omitempty"`

	// CurrentLoad is the member's committed hours.
	CurrentLoad float64 `json:"current_load" yaml:"current_load"`

	// Capacity is the member's total available hours.
	Capacity float64 `json:"capacity" yaml:"capacity"`
}

// IdleHours returns the member's free hours, never negative.
func (m *TeamMember) IdleHours() float64 {
	idle := m.Capacity - m.CurrentLoad
	if idle < 0 {
		return 0
	}
	return idle
}

// IdlePercentage returns the free fraction of capacity in [0, 1].
// A zero-capacity member is treated as having no free capacity.
func (m *TeamMember) IdlePercentage() float64 {
	if m.Capacity <= 0 {
		return 0
	}
	return m.IdleHours() / m.Capacity
}

// Status computes the availability status from load and capacity.
func (m *TeamMember) Status() MemberStatus {
	idle := m.IdleHours()
	switch {
	case m.Capacity > 0 && idle >= m.Capacity/2:
		return StatusIdle
	case idle > 0:
		return StatusBusy
	default:
		return StatusOverloaded
	}
}

// MatchResult scores one team member against one subtask. Produced per
// subtask, purely derived, never persisted.
type MatchResult struct {
	// Member is the scored team member's name.
	Member string `json:"member"`

	// Score is the deterministic heuristic score.
	Score int `json:"score"`

	// MatchReasons explains each scoring contribution.
	MatchReasons []string `json:"match_reasons,omitempty"`
}
