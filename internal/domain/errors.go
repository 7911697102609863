package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteProfile is matched by every *IncompleteProfileError.
var ErrIncompleteProfile = errors.New("profile is incomplete")

// ValidationError reports a user-supplied value that is out of range or
// malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IncompleteProfileError lists the profile fields still missing.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return "profile is incomplete: missing " + strings.Join(e.Missing, ", ")
}

// Is makes errors.Is(err, ErrIncompleteProfile) succeed.
func (e *IncompleteProfileError) Is(target error) bool {
	return target == ErrIncompleteProfile
}
