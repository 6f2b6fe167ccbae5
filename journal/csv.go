// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
)

type CSVJournal struct {
	fills *csv.Writer
	snaps *csv.Writer
	ff, sf *os.File
}

func NewCSV(historyPath, snapshotsPath string) (*CSVJournal, error) {
	ff, err := os.Create(historyPath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(snapshotsPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	sw := csv.NewWriter(sf)

	writeHeader := func(w *csv.Writer, header []string) error {
		if err := w.Write(header); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	}

	err = writeHeader(fw, []string{"action", "pos_id", "symbol", "price", "qty", "cost", "revenue", "realized_pnl"})
	if err == nil {
		err = writeHeader(sw, []string{"time_label", "cash", "open_positions", "portfolio_value", "starting_cash"})
	}
	if err != nil {
		ff.Close()
		sf.Close()
		return nil, err
	}

	return &CSVJournal{fw, sw, ff, sf}, nil
}

func (j *CSVJournal) RecordFill(r FillRecord) error {
	err := j.fills.Write([]string{
		r.Action,
		strconv.FormatInt(r.PositionID, 10),
		r.Symbol,
		r.Price.String(),
		strconv.FormatInt(r.Qty, 10),
		r.Cost.String(),
		r.Revenue.String(),
		r.RealizedPL.String(),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordSnapshot(s SnapshotRecord) error {
	err := j.snaps.Write([]string{
		s.TimeLabel,
		s.Cash.String(),
		strconv.Itoa(s.OpenPositions),
		s.PortfolioValue.String(),
		s.StartingCash.String(),
	})
	if err != nil {
		return err
	}
	j.snaps.Flush()
	return j.snaps.Error()
}

func (j *CSVJournal) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.snaps.Flush()
	if err := j.snaps.Error(); err != nil {
		return err
	}

	if err := j.ff.Close(); err != nil {
		return err
	}
	if err := j.sf.Close(); err != nil {
		return err
	}
	return nil
}
