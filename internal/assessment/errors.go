package assessment

import (
	"fmt"
	"strings"
)

// ValidationError reports input the pipeline refuses to send to the
// reasoning service. It is returned before any provider call.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid assessment input: " + strings.Join(e.Problems, "; ")
}

// AssessmentError reports a reasoning-service failure: unreachable,
// timed out, or a reply that does not match VerdictSchema. Err is the
// underlying cause and is reachable with errors.As.
type AssessmentError struct {
	Student string
	Err     error
}

func (e *AssessmentError) Error() string {
	return fmt.Sprintf("assessment failed for %q: %v", e.Student, e.Err)
}

func (e *AssessmentError) Unwrap() error { return e.Err }
