// Package market defines the external input model for the simulator:
// trade candidates produced upstream (screeners, models, hand-picked lists).
// The simulator never mutates a candidate.
package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a proposed options trade under consideration for execution.
//
// MaxPriceUntilExpiry is the terminal mark-price proxy: the best price the
// contract is expected to reach before expiry. It is copied onto the
// position at open time and used both as the live valuation mark and as the
// default close price. A zero value means "unknown" and defaults to the
// post-slippage entry price when the position is opened.
type Candidate struct {
	Symbol              string
	AsOfDate            time.Time
	Expiry              time.Time
	LastPrice           decimal.Decimal
	MaxPriceUntilExpiry decimal.Decimal
}

// Tradable reports whether the candidate can be priced at all.
// Candidates with a non-positive last price never reach the ledger.
func (c Candidate) Tradable() bool {
	return c.LastPrice.IsPositive()
}

// DateLayout is the calendar-date format used in candidate files.
const DateLayout = "2006-01-02"

// ParseDate parses a candidate date field. Both plain calendar dates and
// RFC3339 timestamps are accepted; an empty string yields the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
