package db

const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS users (
    id             UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    name           TEXT NOT NULL,
    email          TEXT NOT NULL UNIQUE,
    phone          TEXT NOT NULL DEFAULT '',
    password_hash  TEXT NOT NULL,
    role           TEXT NOT NULL DEFAULT 'tenant' CHECK (role IN ('admin', 'tenant')),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rooms (
    id           UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    room_number  TEXT NOT NULL UNIQUE,
    price        NUMERIC(12, 0) NOT NULL CHECK (price >= 0),
    status       TEXT NOT NULL DEFAULT 'available'
                 CHECK (status IN ('available', 'occupied', 'maintenance')),
    floor        TEXT NOT NULL DEFAULT '',
    facilities   TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status);

CREATE TABLE IF NOT EXISTS tenancies (
    id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    room_id     UUID REFERENCES rooms(id) ON DELETE SET NULL,
    start_date  DATE NOT NULL,
    end_date    DATE,
    due_day     INTEGER NOT NULL CHECK (due_day BETWEEN 1 AND 31),
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'history')),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_tenancies_status ON tenancies(status);

-- At most one active tenancy per room.
CREATE UNIQUE INDEX IF NOT EXISTS uniq_tenancies_active_room
    ON tenancies(room_id) WHERE status = 'active';

CREATE TABLE IF NOT EXISTS payments (
    id          UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    tenancy_id  UUID REFERENCES tenancies(id) ON DELETE SET NULL,
    amount      NUMERIC(12, 0) NOT NULL CHECK (amount >= 0),
    status      TEXT NOT NULL CHECK (status IN ('paid', 'pending', 'late')),
    due_date    DATE NOT NULL,
    paid_at     TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_payments_tenancy ON payments(tenancy_id);
CREATE INDEX IF NOT EXISTS idx_payments_status_due ON payments(status, due_date);
`
