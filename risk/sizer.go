// Package risk sizes orders under the run's budget policy.
package risk

import (
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/optionsim/pricing"
)

type Inputs struct {
	StartingCash decimal.Decimal
	BudgetPct    decimal.Decimal // fraction of starting cash spendable per candidate
	LastPrice    decimal.Decimal // pre-slippage quote
	MaxContracts int64
}

type Result struct {
	Contracts int64
	Budget    decimal.Decimal
}

// Contracts computes the feasible order size for one candidate:
// floor(budget / (last * multiplier)), clamped to [1, MaxContracts].
// The budget is measured against starting cash, not the current balance,
// so sizing never depends on earlier fills; affordability is the ledger's
// call. Callers must not pass a non-positive LastPrice.
func Contracts(in Inputs) Result {
	budget := in.StartingCash.Mul(in.BudgetPct)
	perContract := in.LastPrice.Mul(pricing.Multiplier)

	qty := budget.Div(perContract).Floor().IntPart()
	if qty < 1 {
		qty = 1
	}
	if in.MaxContracts > 0 && qty > in.MaxContracts {
		qty = in.MaxContracts
	}

	return Result{Contracts: qty, Budget: budget}
}
