package store

import (
	"strconv"
	"strings"
)

// Dialect describes the differences between SQL backends that the shared
// query code has to care about.
type Dialect struct {
	// Name is the goose dialect name ("postgres", "sqlite3").
	Name string
	// NumberedPlaceholders is true when the driver expects $1, $2, ...
	// instead of ? placeholders.
	NumberedPlaceholders bool
}

// Supported dialects.
var (
	DialectPostgres = Dialect{Name: "postgres", NumberedPlaceholders: true}
	DialectSQLite   = Dialect{Name: "sqlite3"}
)

// Rebind rewrites ? placeholders in query for the dialect. Queries are
// written with ? everywhere; question marks inside string literals are not
// supported.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedPlaceholders {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
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
