package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already in use")
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateSession is returned when an account still has a live
	// session marker younger than the freshness window.
	ErrDuplicateSession = errors.New("already logged in")

	// ErrStoreUnavailable marks a failed store round trip. It is distinct
	// from "key absent": login fails closed on it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrRollupFailed wraps a failed daily rollup attempt. The daily visitor
	// set is left intact so the next attempt can recompute the count.
	ErrRollupFailed = errors.New("rollup failed")

	// ErrInconsistentState means the rollup ledger disagrees with the day
	// being reconciled. It is surfaced for manual inspection, never
	// auto-corrected, since guessing risks double counting.
	ErrInconsistentState = errors.New("inconsistent rollup state")
)
