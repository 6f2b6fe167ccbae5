package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/optionsim/journal"
	"github.com/rustyeddy/optionsim/market"
	"github.com/rustyeddy/optionsim/pricing"
)

// Ledger owns the cash balance and the set of open positions for one
// simulation run. Every successful mutation leaves cash >= 0; a mutation
// that would violate that is rejected before anything is committed, so no
// rollback path exists. Each run owns exactly one Ledger; independent runs
// over distinct Ledgers may execute in parallel with no shared state.
type Ledger struct {
	mu      sync.Mutex
	model   pricing.Model
	journal journal.Journal

	startingCash decimal.Decimal
	cash         decimal.Decimal
	positions    map[int64]*Position
	openOrder    []int64 // ids in the order positions were opened
	nextID       int64
}

// NewLedger creates a ledger with the given starting cash. Position ids
// are a monotonic counter starting at 1, so identical inputs replay to
// identical history.
func NewLedger(startingCash decimal.Decimal, model pricing.Model, j journal.Journal) *Ledger {
	return &Ledger{
		model:        model,
		journal:      j,
		startingCash: startingCash,
		cash:         startingCash,
		positions:    make(map[int64]*Position),
	}
}

// Open buys qty contracts of the candidate at its slippage-adjusted last
// price. On success the cash debit, position insert, and history append
// have all happened; on rejection nothing has.
func (l *Ledger) Open(c market.Candidate, qty int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !c.LastPrice.IsPositive() {
		return 0, fmt.Errorf("open %s: last price %s: %w", c.Symbol, c.LastPrice, ErrInvalidPrice)
	}
	if qty < 1 {
		return 0, fmt.Errorf("open %s: qty %d: %w", c.Symbol, qty, ErrInvalidQuantity)
	}

	fill := l.model.Adjust(c.LastPrice, pricing.Buy)
	totalCost := pricing.Notional(fill, qty).Add(l.model.Commission)
	if totalCost.GreaterThan(l.cash) {
		return 0, fmt.Errorf("open %s: cost %s exceeds cash %s: %w",
			c.Symbol, totalCost, l.cash, ErrInsufficientCash)
	}

	mark := c.MaxPriceUntilExpiry
	if mark.IsZero() {
		mark = fill
	}

	l.nextID++
	p := &Position{
		ID:         l.nextID,
		Symbol:     c.Symbol,
		Qty:        qty,
		EntryPrice: fill,
		Expiry:     c.Expiry,
		AsOfDate:   c.AsOfDate,
		MarkPrice:  mark,
	}

	// Journal first: the in-memory commit below cannot fail, so a
	// record error leaves the ledger untouched.
	err := l.journal.RecordFill(journal.FillRecord{
		Action:     journal.ActionBuy,
		PositionID: p.ID,
		Symbol:     p.Symbol,
		Price:      fill,
		Qty:        qty,
		Cost:       totalCost,
	})
	if err != nil {
		return 0, fmt.Errorf("open %s: record fill: %w", c.Symbol, err)
	}

	l.cash = l.cash.Sub(totalCost)
	l.positions[p.ID] = p
	l.openOrder = append(l.openOrder, p.ID)

	return p.ID, nil
}

// Close closes the position at its own mark price and returns the realized
// P/L, net of both the entry and exit commissions. Closing an id twice is
// an error: the second call fails with ErrUnknownPosition and changes
// nothing.
func (l *Ledger) Close(id int64) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("close %d: %w", id, ErrUnknownPosition)
	}
	return l.closeLocked(p, p.MarkPrice)
}

// CloseAt closes the position at the supplied exit price instead of its
// mark price.
func (l *Ledger) CloseAt(id int64, exitPrice decimal.Decimal) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("close %d: %w", id, ErrUnknownPosition)
	}
	return l.closeLocked(p, exitPrice)
}

func (l *Ledger) closeLocked(p *Position, exitPrice decimal.Decimal) (decimal.Decimal, error) {
	fill := l.model.Adjust(exitPrice, pricing.Sell)
	revenue := pricing.Notional(fill, p.Qty).Sub(l.model.Commission)
	entryCost := pricing.Notional(p.EntryPrice, p.Qty).Add(l.model.Commission)
	realized := revenue.Sub(entryCost)

	// A near-worthless exit can leave revenue below zero once the
	// commission is netted out. The solvency invariant still binds.
	if l.cash.Add(revenue).IsNegative() {
		return decimal.Zero, fmt.Errorf("close %d: revenue %s would overdraw cash %s: %w",
			p.ID, revenue, l.cash, ErrInsufficientCash)
	}

	err := l.journal.RecordFill(journal.FillRecord{
		Action:     journal.ActionSell,
		PositionID: p.ID,
		Symbol:     p.Symbol,
		Price:      fill,
		Qty:        p.Qty,
		Revenue:    revenue,
		RealizedPL: realized,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("close %d: record fill: %w", p.ID, err)
	}

	l.cash = l.cash.Add(revenue)
	delete(l.positions, p.ID)
	for i, id := range l.openOrder {
		if id == p.ID {
			l.openOrder = append(l.openOrder[:i], l.openOrder[i+1:]...)
			break
		}
	}

	return realized, nil
}

// LiquidateAll closes every open position at its own mark price, in the
// order the positions were opened, so replayed runs emit identical history.
//
// A close whose marked exit cannot cover the commission without pushing
// cash below zero is rejected like any other mutation; the position stays
// open and liquidation moves on to the next one. The rejections are
// returned joined (each satisfies errors.Is with ErrInsufficientCash)
// after the rest of the book has been closed. A journal fault aborts
// immediately.
func (l *Ledger) LiquidateAll() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int64, len(l.openOrder))
	copy(ids, l.openOrder)

	var rejected []error
	for _, id := range ids {
		p := l.positions[id]
		if _, err := l.closeLocked(p, p.MarkPrice); err != nil {
			if !errors.Is(err, ErrInsufficientCash) {
				return err
			}
			rejected = append(rejected, err)
		}
	}
	return errors.Join(rejected...)
}

// Snapshot values the portfolio as cash plus the marked notional of every
// open position, appends the row to the snapshot log, and returns it.
func (l *Ledger) Snapshot(timeLabel string) (journal.SnapshotRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pv := l.cash
	for _, id := range l.openOrder {
		p := l.positions[id]
		pv = pv.Add(pricing.Notional(p.MarkPrice, p.Qty))
	}

	snap := journal.SnapshotRecord{
		TimeLabel:      timeLabel,
		Cash:           l.cash,
		OpenPositions:  len(l.openOrder),
		PortfolioValue: pv,
		StartingCash:   l.startingCash,
	}

	if err := l.journal.RecordSnapshot(snap); err != nil {
		return journal.SnapshotRecord{}, fmt.Errorf("snapshot %q: %w", timeLabel, err)
	}
	return snap, nil
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// StartingCash returns the balance the ledger was constructed with.
func (l *Ledger) StartingCash() decimal.Decimal {
	return l.startingCash
}

// OpenCount returns the number of currently open positions.
func (l *Ledger) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.openOrder)
}

// OpenPositions returns copies of the open positions in open order.
func (l *Ledger) OpenPositions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Position, 0, len(l.openOrder))
	for _, id := range l.openOrder {
		out = append(out, *l.positions[id])
	}
	return out
}
