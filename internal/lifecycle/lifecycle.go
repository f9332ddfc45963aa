// Package lifecycle defines the soft-delete states shared by users, courses
// and class sessions. An explicit state keeps query filters self-documenting
// compared to a bare boolean.
package lifecycle

// State is either Active or Retired. Retired entities are never hard
// deleted; attendance history survives them.
type State string

const (
	Active  State = "active"
	Retired State = "retired"
)

// IsActive reports whether the entity is in the Active state.
func (s State) IsActive() bool { return s == Active }
