package sim

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is an open line item owned exclusively by the ledger. Every
// position in the open set has Qty > 0 and EntryPrice > 0. Lifecycle is
// OPEN -> CLOSED; a closed id is retired and never reused.
type Position struct {
	ID         int64
	Symbol     string
	Qty        int64
	EntryPrice decimal.Decimal // post-slippage fill price
	Expiry     time.Time
	AsOfDate   time.Time

	// MarkPrice values the position while open and is the default close
	// price. Copied from the candidate's terminal-price proxy at open
	// time, falling back to the entry fill when the proxy is absent.
	MarkPrice decimal.Decimal
}
