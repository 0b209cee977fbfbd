package poll

import (
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers unknown ids and polls purged by the read path.
	ErrNotFound = fmt.Errorf("poll not found")

	// ErrVoteConflict is returned when an eligibility record changed between
	// the vote's conditional check and its write.
	ErrVoteConflict = fmt.Errorf("eligibility changed while recording vote")
)

// ForbiddenError is an authenticated request that the access rules reject.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every rejected field of one request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.add(field, message)
	return v
}
