package joint

import "fmt"

// ValidationError describes a joint configuration that is inconsistent with
// the board dimension it is applied to.
type ValidationError struct {
	Side    Side   // empty when the check was not tied to a side
	Message string // human-readable description

	// SuggestedWidth is the finger width that would make a fixed joint
	// valid. Nil when no single-value correction exists.
	SuggestedWidth *float64
}

func (e *ValidationError) Error() string {
	if e.Side == "" {
		return e.Message
	}
	return fmt.Sprintf("%s joint: %s", e.Side, e.Message)
}

// Suggestion returns the suggested finger width, if any.
func (e *ValidationError) Suggestion() (float64, bool) {
	if e.SuggestedWidth == nil {
		return 0, false
	}
	return *e.SuggestedWidth, true
}

// ParseError reports a malformed token in a geometry list.
type ParseError struct {
	Index int    // position of the token after blanks were dropped
	Token string // the offending token, trimmed
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid number %q at position %d", e.Token, e.Index+1)
}
