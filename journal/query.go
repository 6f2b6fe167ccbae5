package journal

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// ListFills returns every recorded fill in emission order.
func (j *SQLiteJournal) ListFills() ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT action, pos_id, symbol, price, qty, cost, revenue, realized_pnl
		FROM fills
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		rec, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListFillsByPosition returns the fills for one position id in emission
// order: at most one buy followed by at most one sell.
func (j *SQLiteJournal) ListFillsByPosition(posID int64) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT action, pos_id, symbol, price, qty, cost, revenue, realized_pnl
		FROM fills
		WHERE pos_id = ?
		ORDER BY seq ASC`, posID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		rec, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("position %d not found", posID)
	}
	return out, nil
}

// ListSnapshots returns the valuation series in emission order.
func (j *SQLiteJournal) ListSnapshots() ([]SnapshotRecord, error) {
	rows, err := j.db.Query(`
		SELECT time_label, cash, open_positions, portfolio_value, starting_cash
		FROM snapshots
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var s SnapshotRecord
		var cash, pv, start float64
		if err := rows.Scan(&s.TimeLabel, &cash, &s.OpenPositions, &pv, &start); err != nil {
			return nil, err
		}
		s.Cash = decimal.NewFromFloat(cash)
		s.PortfolioValue = decimal.NewFromFloat(pv)
		s.StartingCash = decimal.NewFromFloat(start)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanFill(rows *sql.Rows) (FillRecord, error) {
	var rec FillRecord
	var price, cost, revenue, pnl float64
	err := rows.Scan(
		&rec.Action,
		&rec.PositionID,
		&rec.Symbol,
		&price,
		&rec.Qty,
		&cost,
		&revenue,
		&pnl,
	)
	if err != nil {
		return FillRecord{}, err
	}
	rec.Price = decimal.NewFromFloat(price)
	rec.Cost = decimal.NewFromFloat(cost)
	rec.Revenue = decimal.NewFromFloat(revenue)
	rec.RealizedPL = decimal.NewFromFloat(pnl)
	return rec, nil
}
