package reminder

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder not found")
	// ErrNotClaimed means another worker won the pending → sending race for
	// this reminder; the loser simply skips it.
	ErrNotClaimed = errors.New("reminder already claimed")
)
