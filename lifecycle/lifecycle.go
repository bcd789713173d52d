package lifecycle

import "errors"

// Report statuses, in lifecycle order.
const (
	StatusNew        = "new"
	StatusRouted     = "routed"
	StatusInProgress = "inProgress"
	StatusResolved   = "resolved"
)

// ErrInvalidTransition is returned when a status change would move a report
// backwards through its lifecycle or out of the terminal resolved state.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnknownStatus is returned for status values outside the canonical enum.
var ErrUnknownStatus = errors.New("unknown status")

var rank = map[string]int{
	StatusNew:        0,
	StatusRouted:     1,
	StatusInProgress: 2,
	StatusResolved:   3,
}

// Known reports whether s is one of the canonical statuses.
func Known(s string) bool {
	_, ok := rank[s]
	return ok
}

// Terminal reports whether s is a terminal state.
func Terminal(s string) bool {
	return s == StatusResolved
}

// Validate checks a status transition under forward-only rules. Staying in
// the same status is allowed, which keeps routing idempotent.
func Validate(from, to string) error {
	rf, ok := rank[from]
	if !ok {
		return ErrUnknownStatus
	}
	rt, ok := rank[to]
	if !ok {
		return ErrUnknownStatus
	}
	if rt < rf {
		return ErrInvalidTransition
	}
	return nil
}
