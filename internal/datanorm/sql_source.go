package datanorm

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"                  // Postgres driver
	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/ignite/discount-generator/internal/domain"
)

// OpenSQL opens a pooled connection for a POS database ("postgres") or a
// warehouse view ("snowflake").
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "postgres", "snowflake":
	default:
		return nil, fmt.Errorf("unsupported source driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// SQLSource loads customer order history from a query. Result columns go
// through the same alias mapping and normalization as uploaded files.
type SQLSource struct {
	db       *sql.DB
	importer *Importer
}

// NewSQLSource wraps an open database handle.
func NewSQLSource(db *sql.DB, imp *Importer) *SQLSource {
	return &SQLSource{db: db, importer: imp}
}

// Load runs query and normalizes every returned row.
func (s *SQLSource) Load(ctx context.Context, query string, args ...any) (*domain.Table, *ImportResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	var data [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scan customer row: %w", err)
		}
		row := make([]string, len(columns))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate customers: %w", err)
	}

	table, res, err := s.importer.importTable(columns, data, 0, "sql")
	if res != nil {
		res.Format = FormatSQL
	}
	return table, res, err
}
