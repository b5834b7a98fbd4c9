package postgres

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"wrangle/internal/table"
)

// MapType maps a column kind onto a Postgres column type.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "BIGINT"
	case table.KindReal:
		return "DOUBLE PRECISION"
	case table.KindBoolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL returns a CREATE TABLE IF NOT EXISTS statement for
// cols. name may be schema-qualified ("staging.sales").
func BuildCreateTableSQL(name string, cols []table.Column) (string, error) {
	id := splitFQN(name)
	if len(id) == 0 {
		return "", fmt.Errorf("postgres ddl: table name must not be empty")
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c.Name) == "" {
			return "", fmt.Errorf("postgres ddl: column %d of %s has an empty name", i, name)
		}
		defs[i] = pgx.Identifier{c.Name}.Sanitize() + " " + MapType(c.Kind)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", id.Sanitize(), strings.Join(defs, ",\n  ")), nil
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// Empty segments are dropped.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(strings.TrimSpace(fqn), ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
