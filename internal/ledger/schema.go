package ledger

const schemaDDL = `
CREATE TABLE IF NOT EXISTS trades (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	date         TEXT NOT NULL,
	trade_type   TEXT NOT NULL,
	symbol       TEXT NOT NULL,
	strikes      TEXT NOT NULL,
	entry_action TEXT NOT NULL,
	entry_time   DATETIME NOT NULL,
	entry_price  REAL NOT NULL DEFAULT 0,
	exit_action  TEXT NOT NULL DEFAULT '',
	exit_price   REAL,
	profit       REAL NOT NULL DEFAULT 0,
	status       TEXT NOT NULL,
	strategy     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);
CREATE INDEX IF NOT EXISTS idx_trades_strategy ON trades(strategy);

CREATE VIEW IF NOT EXISTS v_daily_pnl AS
SELECT
	date,
	COUNT(*) AS trades,
	SUM(CASE WHEN status = 'closed' THEN 1 ELSE 0 END) AS closed,
	SUM(CASE WHEN status = 'closed' THEN profit ELSE 0 END) AS profit,
	SUM(CASE WHEN status = 'closed' AND profit > 0 THEN 1 ELSE 0 END) AS wins
FROM trades
GROUP BY date
ORDER BY date;

CREATE VIEW IF NOT EXISTS v_strategy_pnl AS
SELECT
	strategy,
	COUNT(*) AS trades,
	SUM(CASE WHEN status = 'closed' THEN 1 ELSE 0 END) AS closed,
	SUM(CASE WHEN status = 'closed' THEN profit ELSE 0 END) AS profit
FROM trades
GROUP BY strategy
ORDER BY strategy;
`
