// Package pricing implements the fill model: a deterministic slippage
// adjustment applied to every fill plus a flat per-trade commission.
package pricing

import "github.com/shopspring/decimal"

// Side of a fill.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// ContractMultiplier converts a per-contract option price into notional
// value. Fixed for the standard 100-share options contract.
const ContractMultiplier = 100

// Multiplier is ContractMultiplier as a decimal, for notional arithmetic.
var Multiplier = decimal.NewFromInt(ContractMultiplier)

// Model holds the run's fill-cost parameters. The zero value charges
// nothing and fills at the quoted price.
type Model struct {
	// SlippagePct widens fills against the trader: buys fill at
	// price*(1+pct), sells at price*(1-pct). Must be non-negative.
	SlippagePct decimal.Decimal

	// Commission is a flat fee charged once per fill, on both the open
	// and the close leg.
	Commission decimal.Decimal
}

// Adjust returns the fill price for the given quote and side. Pure:
// identical inputs always produce identical output.
func (m Model) Adjust(price decimal.Decimal, side Side) decimal.Decimal {
	if side == Sell {
		return price.Mul(decimal.NewFromInt(1).Sub(m.SlippagePct))
	}
	return price.Mul(decimal.NewFromInt(1).Add(m.SlippagePct))
}

// Notional returns price * qty * ContractMultiplier.
func Notional(price decimal.Decimal, qty int64) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(qty)).Mul(Multiplier)
}
