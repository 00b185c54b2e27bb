package postgres

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
  id            BIGSERIAL PRIMARY KEY,
  username      TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS services (
  id                           BIGSERIAL PRIMARY KEY,
  service_name                 TEXT NOT NULL,
  healthcheck_url              TEXT NOT NULL,
  healthcheck_duration_seconds BIGINT NOT NULL,
  created_at                   TIMESTAMPTZ NOT NULL,
  updated_at                   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_services_name ON services (service_name);
`
