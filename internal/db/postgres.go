// Package db reads datasets from and writes validated datasets to relational
// databases. It is a collaborator of the validation core: it only moves rows,
// all checking happens in internal/validate.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/schema"
)

// PostgresReader loads resource tables from a live PostgreSQL database, so
// data can be validated where it already lives.
type PostgresReader struct {
	conn       *pgx.Conn
	schemaName string
	log        *zap.SugaredLogger
}

// NewPostgresReader connects to PostgreSQL and verifies the connection.
// schemaName defaults to "public" when empty.
func NewPostgresReader(ctx context.Context, connString, schemaName string, log *zap.SugaredLogger) (*PostgresReader, error) {
	if schemaName == "" {
		schemaName = "public"
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresReader{conn: conn, schemaName: schemaName, log: log}, nil
}

// Close closes the database connection
func (r *PostgresReader) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

// ReadDataset loads one table per schema resource that exists in the
// database, in document order. Resources without a matching database table
// are skipped; the relational validator flags them if something references
// them.
func (r *PostgresReader) ReadDataset(ctx context.Context, doc *schema.Document) (dataset.Dataset, error) {
	existing, err := r.tableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	ds := make(dataset.Dataset)
	for i := range doc.Resources {
		res := &doc.Resources[i]
		if !existing[res.Name] {
			r.log.Debugw("skipping resource without database table", "resource", res.Name)
			continue
		}

		table, err := r.readTable(ctx, res)
		if err != nil {
			return nil, fmt.Errorf("failed to read table %s: %w", res.Name, err)
		}
		r.log.Infow("loaded resource table", "resource", res.Name, "rows", len(table))
		ds[res.Name] = table
	}

	return ds, nil
}

// tableNames returns the base tables present in the configured schema.
func (r *PostgresReader) tableNames(ctx context.Context) (map[string]bool, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	`

	rows, err := r.conn.Query(ctx, query, r.schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}

	return names, rows.Err()
}

// readTable selects the declared fields of one resource. Database columns the
// schema does not declare are left behind on purpose; undeclared fields in
// file-based datasets are warnings, but here the query shape is ours to pick.
func (r *PostgresReader) readTable(ctx context.Context, res *schema.Resource) (dataset.Table, error) {
	cols := make([]string, len(res.Schema.Fields))
	for i, f := range res.Schema.Fields {
		cols[i] = pgx.Identifier{f.Name}.Sanitize()
	}

	query := fmt.Sprintf("SELECT %s FROM %s.%s",
		strings.Join(cols, ", "),
		pgx.Identifier{r.schemaName}.Sanitize(),
		pgx.Identifier{res.Name}.Sanitize())

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var table dataset.Table
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(dataset.Row, len(res.Schema.Fields))
		for i, f := range res.Schema.Fields {
			row[f.Name] = normalizeValue(values[i], f.Type)
		}
		table = append(table, row)
	}

	return table, rows.Err()
}

// normalizeValue maps driver values onto the scalar set the validators
// understand (string, float64, int64, bool, nil).
func normalizeValue(v any, t schema.FieldType) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		if t == schema.TypeDate {
			return x.Format("2006-01-02")
		}
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return v
		}
		return f.Float64
	default:
		return v
	}
}
