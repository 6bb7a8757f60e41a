package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	rebalance TEXT NOT NULL,
	starting_cash REAL NOT NULL,
	final_wealth REAL NOT NULL,
	total_profit REAL NOT NULL,
	realised_rate REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	start DATETIME NOT NULL,
	end DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS lots (
	run_id TEXT NOT NULL,
	lot_id INTEGER NOT NULL,
	direction TEXT NOT NULL,
	symbol TEXT NOT NULL,
	open_date DATETIME NOT NULL,
	open_price REAL NOT NULL,
	amount INTEGER NOT NULL,
	open_value REAL NOT NULL,
	open_reason TEXT NOT NULL,
	close_date DATETIME,
	close_price REAL,
	close_value REAL,
	close_reason TEXT,
	profit REAL,
	PRIMARY KEY (run_id, lot_id)
);

CREATE TABLE IF NOT EXISTS wealth (
	run_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	wealth REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS report (
	run_id TEXT NOT NULL,
	combination INTEGER NOT NULL,
	params TEXT NOT NULL,
	total_profit REAL NOT NULL,
	realised_rate REAL NOT NULL,
	yearly_std_dev REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	PRIMARY KEY (run_id, combination)
);

CREATE INDEX IF NOT EXISTS idx_lots_symbol ON lots(run_id, symbol);
CREATE INDEX IF NOT EXISTS idx_wealth_date ON wealth(run_id, date);
`
