// journal/journal.go
package journal

import "github.com/shopspring/decimal"

// Fill actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// FillRecord is one row of the append-only trade history. Buy rows set
// Cost; sell rows set Revenue and RealizedPL. Records are never mutated or
// removed once appended — this is the audit trail.
type FillRecord struct {
	Action     string
	PositionID int64
	Symbol     string
	Price      decimal.Decimal // post-slippage fill price
	Qty        int64
	Cost       decimal.Decimal // buy: notional + commission
	Revenue    decimal.Decimal // sell: notional - commission
	RealizedPL decimal.Decimal // sell: revenue - (entry notional + commission)
}

// SnapshotRecord is one row of the valuation series.
type SnapshotRecord struct {
	TimeLabel      string
	Cash           decimal.Decimal
	OpenPositions  int
	PortfolioValue decimal.Decimal
	StartingCash   decimal.Decimal
}

type Journal interface {
	RecordFill(FillRecord) error
	RecordSnapshot(SnapshotRecord) error
	Close() error
}
