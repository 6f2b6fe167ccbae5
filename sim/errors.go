package sim

import "errors"

// Rejection reasons reported by the ledger. All are recoverable by the
// caller; none is process-fatal. Check with errors.Is.
var (
	// ErrInvalidPrice rejects an open whose candidate has a
	// non-positive last price.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidQuantity rejects an open with qty < 1.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientCash rejects a mutation that would drive the cash
	// balance negative.
	ErrInsufficientCash = errors.New("insufficient cash")

	// ErrUnknownPosition rejects a close referencing an id that is not
	// currently open, including a second close of the same id.
	ErrUnknownPosition = errors.New("unknown position")
)
