package episode

import (
	"errors"
	"fmt"
)

var (
	ErrNoPatternMatch      = errors.New("no pattern match")
	ErrPatternMissingField = errors.New("pattern is missing a required field")
	ErrNoSubstringMatch    = errors.New("ignore substring did not match")
	ErrNoConfidentMatch    = errors.New("no confident episode match")
	ErrLookupUnavailable   = errors.New("episode lookup unavailable")
)

// MissingFieldHint points users of a pattern that can't produce an episode at fuzzy mode
const MissingFieldHint = "use --ignore-substring to match episodes by title instead"

// MissingFieldError is returned when a naming pattern matches a filename but
// does not yield a usable value for a required capture group.
type MissingFieldError struct {
	Field string
	Value string
}

func (e *MissingFieldError) Error() string {
	hint := MissingFieldHint
	if e.Value == "" {
		return fmt.Sprintf("%s: %q group did not capture anything, %s", ErrPatternMissingField, e.Field, hint)
	}
	return fmt.Sprintf("%s: %q group captured %q which is not a number, %s", ErrPatternMissingField, e.Field, e.Value, hint)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrPatternMissingField
}

// NoConfidentMatchError carries the probe title and the best candidate that
// failed to reach the acceptance threshold.
type NoConfidentMatchError struct {
	Probe     string
	Best      *Candidate
	Threshold int
}

func (e *NoConfidentMatchError) Error() string {
	if e.Best == nil {
		return fmt.Sprintf("%s for %q: series has no episodes", ErrNoConfidentMatch, e.Probe)
	}
	return fmt.Sprintf("%s for %q: best was %q scoring %d, need %d", ErrNoConfidentMatch, e.Probe, e.Best.Title, e.Best.Score, e.Threshold)
}

func (e *NoConfidentMatchError) Is(target error) bool {
	return target == ErrNoConfidentMatch
}
