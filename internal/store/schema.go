package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_snapshots (
    day                  TEXT PRIMARY KEY,
    income               TEXT NOT NULL,
    spent                TEXT NOT NULL,
    remaining            TEXT NOT NULL,
    savings_target       TEXT NOT NULL,
    savings_progress     TEXT NOT NULL,
    expense_count        INTEGER NOT NULL,
    alert_count          INTEGER NOT NULL,
    recorded_at          TEXT NOT NULL
);
`
