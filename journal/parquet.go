package journal

import (
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// ParquetJournal buffers rows in memory and writes two parquet files on
// Close. Suited to bounded single-run backtests; not an incremental sink.
type ParquetJournal struct {
	historyPath   string
	snapshotsPath string
	fills         []fillRow
	snaps         []snapshotRow
}

// fillRow is the on-disk parquet schema for history rows.
type fillRow struct {
	Action     string  `parquet:"action"`
	PosID      int64   `parquet:"pos_id"`
	Symbol     string  `parquet:"symbol"`
	Price      float64 `parquet:"price"`
	Qty        int64   `parquet:"qty"`
	Cost       float64 `parquet:"cost"`
	Revenue    float64 `parquet:"revenue"`
	RealizedPL float64 `parquet:"realized_pnl"`
}

// snapshotRow is the on-disk parquet schema for the valuation series.
type snapshotRow struct {
	TimeLabel      string  `parquet:"time_label"`
	Cash           float64 `parquet:"cash"`
	OpenPositions  int32   `parquet:"open_positions"`
	PortfolioValue float64 `parquet:"portfolio_value"`
	StartingCash   float64 `parquet:"starting_cash"`
}

func NewParquet(historyPath, snapshotsPath string) *ParquetJournal {
	return &ParquetJournal{
		historyPath:   historyPath,
		snapshotsPath: snapshotsPath,
	}
}

func (j *ParquetJournal) RecordFill(r FillRecord) error {
	j.fills = append(j.fills, fillRow{
		Action:     r.Action,
		PosID:      r.PositionID,
		Symbol:     r.Symbol,
		Price:      r.Price.InexactFloat64(),
		Qty:        r.Qty,
		Cost:       r.Cost.InexactFloat64(),
		Revenue:    r.Revenue.InexactFloat64(),
		RealizedPL: r.RealizedPL.InexactFloat64(),
	})
	return nil
}

func (j *ParquetJournal) RecordSnapshot(s SnapshotRecord) error {
	j.snaps = append(j.snaps, snapshotRow{
		TimeLabel:      s.TimeLabel,
		Cash:           s.Cash.InexactFloat64(),
		OpenPositions:  int32(s.OpenPositions),
		PortfolioValue: s.PortfolioValue.InexactFloat64(),
		StartingCash:   s.StartingCash.InexactFloat64(),
	})
	return nil
}

func (j *ParquetJournal) Close() error {
	if err := writeParquet(j.historyPath, j.fills); err != nil {
		return err
	}
	return writeParquet(j.snapshotsPath, j.snaps)
}

func writeParquet[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, rows)
}
