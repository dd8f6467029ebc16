package model

import "errors"

// Sentinel errors for the taxonomy in SPEC_FULL.md §7. Callers
// distinguish them with errors.Is; detail is attached on the way up
// with fmt.Errorf("%w: ...", ErrX).
var (
	// ErrUnknownStop is returned when a source or destination code
	// cannot be resolved against the timetable index.
	ErrUnknownStop = errors.New("unknown stop")

	// ErrNoRoutes is returned when the destination's frontier is
	// empty, or every terminal label reconstructs to an empty
	// itinerary.
	ErrNoRoutes = errors.New("no routes found")

	// ErrInvalidDate is returned when a service date is not
	// YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime is returned when a departure time is not
	// HH:MM, 24-hour.
	ErrInvalidTime = errors.New("invalid time")

	// ErrInvalidInput is returned for any other malformed argument,
	// e.g. max_transfers outside [0, 10].
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndex is returned when a timetable invariant is violated
	// at query time. Callers should treat this as a bug, not a user
	// error.
	ErrIndex = errors.New("timetable index invariant violated")

	// ErrCancelled is returned when a query observes its
	// cancellation signal between RAPTOR rounds.
	ErrCancelled = errors.New("search cancelled")
)
