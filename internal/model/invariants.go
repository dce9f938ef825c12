package model

import "fmt"

// InvariantViolation marks a violated engine invariant. An invariant
// violation is a fatal programming error, not a recoverable validation
// error — callers holding one should let it propagate into a panic rather
// than try to continue with corrupt state.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("engine invariant violated (%s): %s", e.Invariant, e.Detail)
}

// RequireGround panics with an *InvariantViolation if s is not ground.
// Call sites are the single choke point where a statement crosses into a
// belief system's fact base — every earlier stage must have validated
// groundness and returned an ordinary error instead of reaching here.
func RequireGround(s Statement) {
	if !s.IsGround() {
		panic(&InvariantViolation{
			Invariant: "fact-base-ground",
			Detail:    fmt.Sprintf("statement %q is not ground", s.ContentKey()),
		})
	}
}
