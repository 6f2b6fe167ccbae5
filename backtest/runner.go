package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/optionsim/internal/id"
	"github.com/rustyeddy/optionsim/journal"
	"github.com/rustyeddy/optionsim/market"
	"github.com/rustyeddy/optionsim/risk"
	"github.com/rustyeddy/optionsim/sim"
)

// RunnerOptions holds the sizing policy applied to every candidate.
type RunnerOptions struct {
	// BudgetPct is the fraction of starting cash spendable per candidate.
	BudgetPct decimal.Decimal

	// MaxContracts caps the size of any single order.
	MaxContracts int64
}

// Runner drives a ledger forward over a candidate feed:
//  1. read next candidate
//  2. size the order against the starting-cash budget
//  3. attempt Ledger.Open, retrying exactly once at qty-1 on rejection
//  4. snapshot, labeled with the candidate's as-of-date
//
// After the feed is exhausted it liquidates the book and takes one
// "final" snapshot, so the valuation series has one entry per input
// candidate plus one. A position whose liquidation close would overdraw
// cash stays open and is reported in that final snapshot.
type Runner struct {
	Ledger  *sim.Ledger
	Feed    CandidateFeed
	Options RunnerOptions
}

// Run executes the backtest loop. A rejected candidate is skipped, never
// fatal; it is observable only through the absence of history records.
// Only ledger reject codes are skippable — an infrastructure fault such
// as a journal write error aborts the run. If j is not nil, a
// trades/wins/losses summary is computed from the recorded fills.
func (r *Runner) Run(ctx context.Context, j *journal.SQLiteJournal) (Result, error) {
	if r.Ledger == nil {
		return Result{}, fmt.Errorf("backtest: Ledger is required")
	}
	if r.Feed == nil {
		return Result{}, fmt.Errorf("backtest: Feed is required")
	}
	defer r.Feed.Close()

	res := Result{
		RunID:        id.New(),
		StartingCash: r.Ledger.StartingCash(),
	}

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		c, ok, err := r.Feed.Next()
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}
		res.Candidates++

		label := snapshotLabel(c, res.Candidates)

		if !c.Tradable() {
			res.Skipped++
			slog.Debug("skipping candidate", "symbol", c.Symbol, "last_price", c.LastPrice)
			if _, err := r.Ledger.Snapshot(label); err != nil {
				return Result{}, err
			}
			continue
		}

		size := risk.Contracts(risk.Inputs{
			StartingCash: r.Ledger.StartingCash(),
			BudgetPct:    r.Options.BudgetPct,
			LastPrice:    c.LastPrice,
			MaxContracts: r.Options.MaxContracts,
		})

		qty := size.Contracts
		_, err = r.Ledger.Open(c, qty)
		switch {
		case err == nil:
			res.Opened++
		case !isReject(err):
			return Result{}, err
		case qty > 1:
			// One downgrade retry, then give up on the candidate.
			_, retryErr := r.Ledger.Open(c, qty-1)
			switch {
			case retryErr == nil:
				res.Opened++
				res.Retried++
			case !isReject(retryErr):
				return Result{}, retryErr
			default:
				res.Skipped++
				slog.Debug("candidate rejected after retry", "symbol", c.Symbol, "qty", qty, "err", retryErr)
			}
		default:
			res.Skipped++
			slog.Debug("candidate rejected", "symbol", c.Symbol, "qty", qty, "err", err)
		}

		if _, err := r.Ledger.Snapshot(label); err != nil {
			return Result{}, err
		}
	}

	if err := r.Ledger.LiquidateAll(); err != nil {
		if !errors.Is(err, sim.ErrInsufficientCash) {
			return Result{}, err
		}
		// Near-worthless marks can leave a close unable to cover its
		// commission. Those positions stay open and show up in the
		// final snapshot; the run itself still completes.
		slog.Warn("liquidation left positions open", "open", r.Ledger.OpenCount(), "err", err)
	}
	if _, err := r.Ledger.Snapshot("final"); err != nil {
		return Result{}, err
	}

	res.FinalCash = r.Ledger.Cash()
	res.NetPL = res.FinalCash.Sub(res.StartingCash)
	if res.StartingCash.IsPositive() {
		res.ReturnPct = res.NetPL.Div(res.StartingCash).Mul(decimal.NewFromInt(100))
	}

	if j != nil {
		fills, err := j.ListFills()
		if err == nil {
			for _, f := range fills {
				if f.Action != journal.ActionSell {
					continue
				}
				res.Trades++
				if f.RealizedPL.IsPositive() {
					res.Wins++
				} else if f.RealizedPL.IsNegative() {
					res.Losses++
				}
			}
		}
	}

	slog.Info("backtest complete",
		"run_id", res.RunID,
		"candidates", res.Candidates,
		"opened", res.Opened,
		"skipped", res.Skipped,
		"net_pl", res.NetPL)

	return res, nil
}

// isReject reports whether err is one of the ledger's reject codes, as
// opposed to a fault that should end the run.
func isReject(err error) bool {
	return errors.Is(err, sim.ErrInvalidPrice) ||
		errors.Is(err, sim.ErrInvalidQuantity) ||
		errors.Is(err, sim.ErrInsufficientCash) ||
		errors.Is(err, sim.ErrUnknownPosition)
}

// snapshotLabel labels the valuation row for a candidate: its as-of-date,
// or a synthetic ordinal label when the date is absent. Ordinals keep
// replayed runs byte-identical; wall-clock labels would not.
func snapshotLabel(c market.Candidate, ordinal int) string {
	if !c.AsOfDate.IsZero() {
		return c.AsOfDate.Format(market.DateLayout)
	}
	return fmt.Sprintf("candidate-%04d", ordinal)
}
