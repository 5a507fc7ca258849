package stv

import "github.com/pkg/errors"

// The four error kinds of spec.md 7. All of them are fatal: the count
// halts and there is no retry policy. Statutory ties resolved via
// history or callback are not errors; they are routine and never reach
// this file.
var (
	// ErrInputError marks a malformed preference, an unknown
	// CandidateID, or a non-positive multiplicity encountered while
	// seeding the ledger.
	ErrInputError = errors.New("stv: input error")

	// ErrInvariantViolation marks paper-count drift, re-electing or
	// re-excluding a candidate, a distribution carrying mixed transfer
	// values, or an empty bundle -- any of which indicates a bug in the
	// engine, not bad data.
	ErrInvariantViolation = errors.New("stv: invariant violation")

	// ErrUnreachableState marks a round in which neither the initial
	// seeding, the exclusion queue, nor the election queue had work,
	// which spec.md 4.10 guarantees cannot happen.
	ErrUnreachableState = errors.New("stv: unreachable scheduler state")

	// ErrCallbackFailure marks a tie-break callback that ran out of
	// data or returned an index outside the range it was offered.
	ErrCallbackFailure = errors.New("stv: callback failure")

	// ErrTransactionNotFound is returned by Ledger.TransferFrom when the
	// transaction to remove is not present under the given candidate.
	ErrTransactionNotFound = errors.New("stv: bundle transaction not found")
)
