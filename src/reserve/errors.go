package reserve

import "errors"

var (
	// ErrInsufficientStock is raised by the local pre-check; no network call
	// was made for the item.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrReservationFailed wraps a remote rejection of a confirm.
	ErrReservationFailed = errors.New("reservation failed")
	// ErrCancellationFailed wraps a remote rejection of a cancel. Local state
	// is left untouched until the next reconciliation.
	ErrCancellationFailed = errors.New("cancellation failed")
	// ErrNotSignedIn aborts a whole confirm batch before any network call.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrReconciliationFailed is non-fatal: the UI keeps the last optimistic
	// state until a later refresh succeeds.
	ErrReconciliationFailed = errors.New("reconciliation failed")
	// ErrBusy rejects a mutating batch while another is still in flight.
	ErrBusy = errors.New("another reservation batch is in flight")
)
