// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	pos_id INTEGER NOT NULL,
	symbol TEXT NOT NULL,
	price REAL NOT NULL,
	qty INTEGER NOT NULL,
	cost REAL NOT NULL,
	revenue REAL NOT NULL,
	realized_pnl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	time_label TEXT NOT NULL,
	cash REAL NOT NULL,
	open_positions INTEGER NOT NULL,
	portfolio_value REAL NOT NULL,
	starting_cash REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_pos ON fills(pos_id);
`
