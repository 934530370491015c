// Package storagetest builds throwaway SQLite ledger stores for tests.
package storagetest

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage"
)

// Null inserts SQL NULL instead of a string.
const Null = "\x00null"

// Account is an AMAS row.
type Account struct{ Code, Name, City, State, Balance string }

// Item is an IMAS row.
type Item struct{ Code, Alias, OnHand string }

// Department is a DEPT row.
type Department struct{ Code, Name string }

// Stock is a DEPI row.
type Stock struct{ Dept, Item, Qty string }

// PurchaseLine is a SITM row.
type PurchaseLine struct{ Voucher, Type, Item, Qty, Amount string }

// Purchase is a PRCH row.
type Purchase struct{ Voucher, Vendor, Date string }

// Sale is a SALE row.
type Sale struct{ Date, Total string }

// Expense is a TMAS row.
type Expense struct{ Account, Amount, Date string }

// Aging is an RMAS row.
type Aging struct{ Account, Date, Balance string }

// Fixture is the content of a test store.
type Fixture struct {
	Accounts      []Account
	Items         []Item
	Departments   []Department
	Stock         []Stock
	PurchaseLines []PurchaseLine
	Purchases     []Purchase
	Sales         []Sale
	Expenses      []Expense
	Aging         []Aging
}

// NewStore writes the fixture into a fresh SQLite file under t.TempDir and
// returns a store over it.
func NewStore(t *testing.T, f Fixture) *storage.SQLStore {
	t.Helper()
	return storage.NewSQLStore("sqlite3", NewFile(t, f), nil)
}

// NewFile writes the fixture into a fresh SQLite file and returns its path.
func NewFile(t *testing.T, f Fixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "converted.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	Load(t, db, "?", f)
	return path
}

// Load creates the ledger tables in db and inserts the fixture. mark is the
// driver's placeholder style: "?" for SQLite, "$" for Postgres.
func Load(t *testing.T, db *sql.DB, mark string, f Fixture) {
	t.Helper()

	_, err := db.Exec(storage.SchemaSQL)
	require.NoError(t, err)

	insert := func(t *testing.T, table string, values ...string) {
		t.Helper()
		insertRow(t, db, mark, table, values...)
	}

	for _, r := range f.Accounts {
		insert(t, "AMAS", r.Code, r.Name, r.City, r.State, r.Balance)
	}
	for _, r := range f.Items {
		insert(t, "IMAS", r.Code, r.Alias, r.OnHand)
	}
	for _, r := range f.Departments {
		insert(t, "DEPT", r.Code, r.Name)
	}
	for _, r := range f.Stock {
		insert(t, "DEPI", r.Dept, r.Item, r.Qty)
	}
	for _, r := range f.PurchaseLines {
		insert(t, "SITM", r.Voucher, r.Type, r.Item, r.Qty, r.Amount)
	}
	for _, r := range f.Purchases {
		insert(t, "PRCH", r.Voucher, r.Vendor, r.Date)
	}
	for _, r := range f.Sales {
		insert(t, "SALE", r.Date, r.Total)
	}
	for _, r := range f.Expenses {
		insert(t, "TMAS", r.Account, r.Amount, r.Date)
	}
	for _, r := range f.Aging {
		insert(t, "RMAS", r.Account, r.Date, r.Balance)
	}
}

func insertRow(t *testing.T, db *sql.DB, mark, table string, values ...string) {
	t.Helper()

	args := make([]interface{}, len(values))
	ph := make([]string, len(values))
	for i, v := range values {
		ph[i] = mark
		if mark == "$" {
			ph[i] = fmt.Sprintf("$%d", i+1)
		}
		if v == Null {
			args[i] = nil
		} else {
			args[i] = v
		}
	}

	query := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.Join(ph, ", "))
	_, err := db.Exec(query, args...)
	require.NoError(t, err)
}
