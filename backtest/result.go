package backtest

import "github.com/shopspring/decimal"

// Result summarizes one backtest run.
type Result struct {
	RunID string

	StartingCash decimal.Decimal
	FinalCash    decimal.Decimal
	NetPL        decimal.Decimal
	ReturnPct    decimal.Decimal

	Candidates int // input rows seen
	Opened     int // positions opened
	Retried    int // opens that succeeded only on the qty-1 retry
	Skipped    int // candidates that produced no position

	// Closed-trade accounting, computed from the journal when available.
	Trades int
	Wins   int
	Losses int
}
