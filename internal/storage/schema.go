package storage

// SchemaSQL describes the tables and columns the engine reads. The converted
// store is produced by the DBF conversion job, which keeps the legacy table
// and field names and types every column as TEXT. The engine never runs this
// DDL against a real store; it documents the contract and builds fixtures.
const SchemaSQL = `
-- Accounts master: customers, vendors, expense heads
CREATE TABLE IF NOT EXISTS AMAS (
    ACOD TEXT,      -- account code
    ANAM TEXT,      -- account name
    CITY TEXT,
    STATE TEXT,
    BALANCE TEXT    -- running balance, locale formatted
);

-- Items master
CREATE TABLE IF NOT EXISTS IMAS (
    ICIMAS TEXT,    -- item code / SKU
    IALIAS TEXT,    -- alias or short name
    OSTQTY TEXT     -- on-hand quantity across locations
);

-- Departments / depots
CREATE TABLE IF NOT EXISTS DEPT (
    DCDEPT TEXT,
    DNDEPT TEXT
);

-- Department inventory
CREATE TABLE IF NOT EXISTS DEPI (
    DCDEPI TEXT,    -- department code
    ICDEPI TEXT,    -- item code
    OSTQTY TEXT
);

-- Voucher lines (purchases carry VHTY = 'Prch')
CREATE TABLE IF NOT EXISTS SITM (
    VHNO TEXT,
    VHTY TEXT,
    ICSITM TEXT,    -- item code
    IQSITM TEXT,    -- quantity
    IASITM TEXT     -- amount
);

-- Purchase headers
CREATE TABLE IF NOT EXISTS PRCH (
    VHNO TEXT,
    VCPRCH TEXT,    -- vendor account code
    BDPRCH TEXT     -- bill date, YYYY-MM-DD prefixed
);

-- Sale headers
CREATE TABLE IF NOT EXISTS SALE (
    BDSALE TEXT,
    TOTAL1 TEXT
);

-- Expense / journal lines
CREATE TABLE IF NOT EXISTS TMAS (
    COD1 TEXT,      -- account code
    AMNT TEXT,
    DATE TEXT
);

-- Receivable aging
CREATE TABLE IF NOT EXISTS RMAS (
    ACOD TEXT,
    DATE TEXT,
    BALANCE TEXT
);
`
