package journal

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sim_trades (
    id TEXT PRIMARY KEY,
    market_id TEXT NOT NULL,
    market_title TEXT NOT NULL,
    action TEXT NOT NULL,
    outcome TEXT NOT NULL,
    price REAL NOT NULL,
    size REAL NOT NULL,
    strategy TEXT NOT NULL,
    reason TEXT NOT NULL,
    profit REAL,
    executed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sim_trades_market ON sim_trades(market_id);
CREATE INDEX IF NOT EXISTS idx_sim_trades_strategy ON sim_trades(strategy);

CREATE TABLE IF NOT EXISTS bankroll_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    balance REAL NOT NULL,
    realized_profit REAL NOT NULL,
    unrealized_profit REAL NOT NULL,
    net_worth REAL NOT NULL,
    open_positions INTEGER NOT NULL,
    snapshot_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`
