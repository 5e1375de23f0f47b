package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workspace (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS local_subscriptions (
    position             INTEGER PRIMARY KEY,
    id                   INTEGER NOT NULL UNIQUE,
    name                 TEXT NOT NULL,
    price                TEXT NOT NULL,
    currency             TEXT NOT NULL,
    period               TEXT NOT NULL,
    first_bill_date      TEXT NOT NULL,
    icon                 TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS snapshot (
    position             INTEGER PRIMARY KEY,
    name                 TEXT NOT NULL,
    price                TEXT NOT NULL,
    currency             TEXT NOT NULL,
    period               TEXT NOT NULL,
    first_bill_date      TEXT NOT NULL,
    icon                 TEXT NOT NULL DEFAULT ''
);
`
