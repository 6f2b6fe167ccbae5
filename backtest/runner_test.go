package backtest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/optionsim/journal"
	"github.com/rustyeddy/optionsim/market"
	"github.com/rustyeddy/optionsim/pricing"
	"github.com/rustyeddy/optionsim/sim"
)

type sliceFeed struct {
	candidates []market.Candidate
	idx        int
	closed     bool
}

func (f *sliceFeed) Next() (market.Candidate, bool, error) {
	if f.idx >= len(f.candidates) {
		return market.Candidate{}, false, nil
	}
	c := f.candidates[f.idx]
	f.idx++
	return c, true, nil
}

func (f *sliceFeed) Close() error {
	f.closed = true
	return nil
}

// failJournal fails every fill append, standing in for a dead disk.
type failJournal struct {
	*journal.Memory
	err error
}

func (j *failJournal) RecordFill(journal.FillRecord) error { return j.err }

func cand(symbol string, day int, last, maxPx float64) market.Candidate {
	c := market.Candidate{
		Symbol:    symbol,
		AsOfDate:  time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC),
		Expiry:    time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC),
		LastPrice: decimal.NewFromFloat(last),
	}
	if maxPx != 0 {
		c.MaxPriceUntilExpiry = decimal.NewFromFloat(maxPx)
	}
	return c
}

func newRunner(cash float64, budgetPct float64, j journal.Journal, feed CandidateFeed) *Runner {
	model := pricing.Model{Commission: decimal.NewFromInt(1)}
	return &Runner{
		Ledger: sim.NewLedger(decimal.NewFromFloat(cash), model, j),
		Feed:   feed,
		Options: RunnerOptions{
			BudgetPct:    decimal.NewFromFloat(budgetPct),
			MaxContracts: 5,
		},
	}
}

func TestRunSnapshotPerCandidatePlusFinal(t *testing.T) {
	t.Parallel()

	j := journal.NewMemory()
	feed := &sliceFeed{candidates: []market.Candidate{
		cand("A", 1, 6.50, 9.25),
		cand("B", 2, 0, 0), // invalid price: skipped, still snapshotted
		cand("C", 3, 4.20, 3.80),
	}}

	r := newRunner(100000, 0.02, j, feed)
	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Candidates)
	assert.Equal(t, 2, res.Opened)
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, feed.closed, "runner must close the feed")

	// One snapshot per input candidate plus the final one.
	snaps := j.Snapshots()
	require.Len(t, snaps, 4)
	assert.Equal(t, "2026-09-01", snaps[0].TimeLabel)
	assert.Equal(t, "2026-09-02", snaps[1].TimeLabel)
	assert.Equal(t, "2026-09-03", snaps[2].TimeLabel)
	assert.Equal(t, "final", snaps[3].TimeLabel)

	// Everything was liquidated at the end.
	assert.Equal(t, 0, snaps[3].OpenPositions)
	assert.True(t, snaps[3].Cash.Equal(snaps[3].PortfolioValue))
}

func TestRunSyntheticLabelWhenDateMissing(t *testing.T) {
	t.Parallel()

	j := journal.NewMemory()
	feed := &sliceFeed{candidates: []market.Candidate{
		{Symbol: "A", LastPrice: decimal.NewFromFloat(6.50)},
	}}

	r := newRunner(100000, 0.02, j, feed)
	_, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	snaps := j.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "candidate-0001", snaps[0].TimeLabel)
}

func TestRunRetriesOnceAtReducedQty(t *testing.T) {
	t.Parallel()

	// Budget proposes 5 contracts at 5.00 (cost 2501 with commission),
	// but cash is 2500: the first attempt is rejected and the qty-1
	// retry (cost 2001) succeeds.
	j := journal.NewMemory()
	feed := &sliceFeed{candidates: []market.Candidate{
		cand("A", 1, 5, 5),
	}}

	r := newRunner(2500, 1.0, j, feed)
	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Opened)
	assert.Equal(t, 1, res.Retried)

	fills := j.Fills()
	require.NotEmpty(t, fills)
	assert.Equal(t, int64(4), fills[0].Qty)
}

func TestRunSkipsAfterFailedRetry(t *testing.T) {
	t.Parallel()

	// First candidate drains most of the cash; the second fails at both
	// qty 5 and qty 4 and is skipped with no history records.
	j := journal.NewMemory()
	feed := &sliceFeed{candidates: []market.Candidate{
		cand("A", 1, 5, 5),
		cand("B", 2, 5, 5),
	}}

	r := newRunner(2500, 1.0, j, feed)
	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Opened)
	assert.Equal(t, 1, res.Skipped)

	var buys int
	for _, f := range j.Fills() {
		if f.Action == journal.ActionBuy {
			buys++
			assert.Equal(t, "A", f.Symbol)
		}
	}
	assert.Equal(t, 1, buys, "skipped candidate must leave no history")

	// Snapshots still cover both candidates plus the final one.
	assert.Len(t, j.Snapshots(), 3)
}

func TestRunPropagatesJournalFault(t *testing.T) {
	t.Parallel()

	// A failed history append is a fault, not a rejection: no qty-1
	// retry, no silent skip — the run ends with the error.
	errDisk := errors.New("disk gone")
	j := &failJournal{Memory: journal.NewMemory(), err: errDisk}
	feed := &sliceFeed{candidates: []market.Candidate{
		cand("A", 1, 6.50, 9.25),
	}}

	r := newRunner(100000, 0.02, j, feed)
	_, err := r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, errDisk)
}

func TestRunCompletesWhenLiquidationLeavesPositionOpen(t *testing.T) {
	t.Parallel()

	// Sizing spends nearly all the cash (5 contracts at 5.00 cost 2501)
	// and the mark is close to zero, so the end-of-run close cannot
	// cover its commission without overdrawing. The position stays open,
	// the run still completes, and the final snapshot reports it.
	j := journal.NewMemory()
	feed := &sliceFeed{candidates: []market.Candidate{
		cand("A", 1, 5, 0.001),
	}}

	r := newRunner(2501.30, 1.0, j, feed)
	res, err := r.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Opened)
	assert.Equal(t, 1, r.Ledger.OpenCount())
	assert.True(t, res.FinalCash.Equal(decimal.NewFromFloat(0.3)), "final cash: %s", res.FinalCash)
	assert.False(t, res.FinalCash.IsNegative())

	snaps := j.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, "final", snaps[1].TimeLabel)
	assert.Equal(t, 1, snaps[1].OpenPositions)
}

func TestRunComputesSummaryFromSQLiteJournal(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "journal.sqlite")
	j, err := journal.NewSQLite(dbPath)
	require.NoError(t, err)
	defer j.Close()

	feed := &sliceFeed{candidates: []market.Candidate{
		cand("WIN", 1, 6.50, 9.25),  // liquidates above entry
		cand("LOSS", 2, 4.20, 3.80), // liquidates below entry
	}}

	r := newRunner(100000, 0.02, j, feed)
	res, err := r.Run(context.Background(), j)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Trades)
	assert.Equal(t, 1, res.Wins)
	assert.Equal(t, 1, res.Losses)
	assert.NotEmpty(t, res.RunID)
	assert.True(t, res.NetPL.Equal(res.FinalCash.Sub(res.StartingCash)))
}
