package recurrence

import "errors"

var (
	ErrPatternNotFound  = errors.New("recurring pattern not found")
	ErrUnknownFrequency = errors.New("unknown recurrence frequency")
	ErrInvalidInterval  = errors.New("recurrence interval must be at least 1")
	// ErrGenerationCapped marks a generation stopped by the internal safety
	// cap. The dates produced before the cap are still returned.
	ErrGenerationCapped = errors.New("recurrence generation stopped at safety cap")
)
