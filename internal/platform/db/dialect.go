package db

import (
	"strconv"
	"strings"
)

// Dialect captures the placeholder syntax of the SQL backend.
// Queries are written with "?" and rebound for Postgres.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func DialectFor(driver string) Dialect {
	if driver == DriverPostgres {
		return Postgres
	}
	return SQLite
}

// Rebind rewrites "?" placeholders to "$1", "$2", ... for Postgres.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholders returns n comma-separated "?" markers for an IN (...) clause.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
