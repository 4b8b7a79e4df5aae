package db

// AgreementsSchema creates the agreements table. Timestamps are unix seconds.
const AgreementsSchema = `
CREATE TABLE IF NOT EXISTS agreements (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    agreement_date TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    responsible_party TEXT NOT NULL DEFAULT '',
    maintenance_owner_responsibility TEXT NOT NULL DEFAULT '',
    maintenance_reasoning TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agreements_updated_at ON agreements(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_agreements_name ON agreements(name COLLATE NOCASE);
`
