package storage

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Dialect captures the differences between supported SQL backends.
type Dialect struct {
	// Name selects the migration set and is the value of storage.driver.
	Name string

	// Driver is the database/sql driver name.
	Driver string

	// numbered is true when placeholders are $1, $2, ... instead of ?.
	numbered bool

	// singleConn forces a single pooled connection. Needed for SQLite so
	// that ":memory:" databases are shared by every query.
	singleConn bool

	// advisoryLocks is true when the backend supports transaction-scoped
	// advisory locks (pg_advisory_xact_lock).
	advisoryLocks bool
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "postgres", numbered: true, advisoryLocks: true}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", singleConn: true}
	DuckDB   = Dialect{Name: "duckdb", Driver: "duckdb", numbered: true}
)

// SQLDialects returns the supported SQL dialects.
func SQLDialects() []Dialect {
	return []Dialect{Postgres, SQLite, DuckDB}
}

// DialectFor looks up a dialect by its storage.driver name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "duckdb":
		return DuckDB, nil
	}
	return Dialect{}, fmt.Errorf("unsupported storage driver %q (valid: memory, postgres, sqlite, duckdb)", name)
}

// idLock returns the statement that serializes ID allocation for table
// until the surrounding transaction ends, or "" when the backend already
// serializes writers (SQLite's single connection, DuckDB's write conflicts).
func (d Dialect) idLock(table string) string {
	if !d.advisoryLocks {
		return ""
	}
	return fmt.Sprintf("SELECT pg_advisory_xact_lock(hashtext('petcare.%s'))", table)
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// placeholders returns a comma-separated list of bind parameters from..from+count-1.
func (d Dialect) placeholders(from, count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = d.Placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}
