package ads

import "errors"

// Domain errors surfaced to the HTTP layer. All are user-recoverable except
// ErrInvalidTransition, which signals a usage error.
var (
	// ErrAdNotFound is returned when the requested ad does not exist.
	ErrAdNotFound = errors.New("ad not found")

	// ErrSlotFull is returned when a date's capacity pool for the requested
	// ad type is exhausted. Wrapped with the offending date.
	ErrSlotFull = errors.New("slot is full for this date")

	// ErrIncompleteBrief blocks scheduling while required brief fields
	// (title, customer name, incentive, survey link) are missing.
	ErrIncompleteBrief = errors.New("brief is incomplete: title, customer name, incentive and survey link are required before scheduling")

	// ErrImmutableSchedule blocks edits to publish_at/duration once an ad
	// has left draft.
	ErrImmutableSchedule = errors.New("schedule is locked once the ad is scheduled")

	// ErrInvalidTransition is returned for mutations on completed or
	// cancelled ads.
	ErrInvalidTransition = errors.New("operation not allowed in the ad's current status")

	// ErrNotExtendable is returned when the extension parent is missing,
	// cancelled, or itself an extension. Chained extensions are disallowed.
	ErrNotExtendable = errors.New("only active new ads can be extended")
)
