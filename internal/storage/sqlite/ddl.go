package sqlite

import (
	"fmt"
	"strings"

	"wrangle/internal/table"
)

// MapType maps a column kind onto a SQLite type affinity. Booleans are
// stored as INTEGER 0/1.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInteger, table.KindBoolean:
		return "INTEGER"
	case table.KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL returns a CREATE TABLE IF NOT EXISTS statement for
// cols. Every column is nullable.
func BuildCreateTableSQL(name string, cols []table.Column) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("sqlite ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("sqlite ddl: at least one column is required")
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("sqlite ddl: column %d of %s has an empty name", i, name)
		}
		defs[i] = quoteIdent(c.Name) + " " + MapType(c.Kind)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoteFQN(name), strings.Join(defs, ",\n  ")), nil
}

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// quoteFQN quotes every dot-separated segment, e.g. main.events.
func quoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}
