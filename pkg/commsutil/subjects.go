package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectInteractionDispatched = "interactions.dispatched"
)

// BuildDispatchedSubject builds the per-command dispatch event subject under
// base. Characters that are not valid inside a single subject token are
// replaced, and an empty command maps to "unknown".
func BuildDispatchedSubject(base, command string) string {
	return fmt.Sprintf("%s.%s", base, subjectToken(command))
}

func subjectToken(s string) string {
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
