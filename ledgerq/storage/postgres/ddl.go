package postgres

const ddlBase = `
CREATE TABLE IF NOT EXISTS accounts (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name        TEXT NOT NULL,
    institution TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (name, institution)
);

CREATE TABLE IF NOT EXISTS securities (
    key        TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    type       TEXT NOT NULL,
    category   TEXT NOT NULL,
    properties JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
    id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    transaction_date DATE NOT NULL,
    type             TEXT NOT NULL,
    description      TEXT NOT NULL,
    amount           NUMERIC(20, 4) NOT NULL,
    units            NUMERIC(20, 6) NOT NULL,
    account_id       BIGINT NOT NULL REFERENCES accounts(id),
    security_key     TEXT NOT NULL REFERENCES securities(key),
    metadata         JSONB NOT NULL DEFAULT '{}',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_security ON transactions(security_key);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);

CREATE TABLE IF NOT EXISTS prices (
    security_key TEXT NOT NULL REFERENCES securities(key),
    price_date   DATE NOT NULL,
    open         NUMERIC(20, 4),
    high         NUMERIC(20, 4),
    low          NUMERIC(20, 4),
    close        NUMERIC(20, 4) NOT NULL,
    source       TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (security_key, price_date)
);
`
