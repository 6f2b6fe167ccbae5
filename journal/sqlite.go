// journal/sqlite.go
package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordFill(r FillRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(action, pos_id, symbol, price, qty, cost, revenue, realized_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Action, r.PositionID, r.Symbol, r.Price.InexactFloat64(),
		r.Qty, r.Cost.InexactFloat64(), r.Revenue.InexactFloat64(),
		r.RealizedPL.InexactFloat64(),
	)
	return err
}

func (j *SQLiteJournal) RecordSnapshot(s SnapshotRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots
		(time_label, cash, open_positions, portfolio_value, starting_cash)
		VALUES (?, ?, ?, ?, ?)`,
		s.TimeLabel, s.Cash.InexactFloat64(), s.OpenPositions,
		s.PortfolioValue.InexactFloat64(), s.StartingCash.InexactFloat64(),
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
