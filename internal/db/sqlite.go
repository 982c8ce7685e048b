package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/schema"
)

// SQLiteWriter exports a validated dataset to a SQLite database file,
// creating one table per resource with the primary and foreign keys the
// schema document declares.
type SQLiteWriter struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// NewSQLiteWriter opens (or creates) the SQLite database at path.
func NewSQLiteWriter(ctx context.Context, path string, log *zap.SugaredLogger) (*SQLiteWriter, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Referential integrity was already validated; the pragma keeps the
	// exported file honest for whoever opens it next.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteWriter{db: db, log: log}, nil
}

// Close closes the database connection
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// WriteDataset creates the tables for every resource present in the dataset
// (in document order, so referenced tables exist before referencing ones) and
// inserts all rows inside one transaction.
func (w *SQLiteWriter) WriteDataset(ctx context.Context, doc *schema.Document, ds dataset.Dataset) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i := range doc.Resources {
		res := &doc.Resources[i]
		table, ok := ds[res.Name]
		if !ok {
			continue
		}

		if err := w.writeTable(ctx, tx, res, table); err != nil {
			return multierr.Append(
				fmt.Errorf("failed to write table %s: %w", res.Name, err),
				tx.Rollback(),
			)
		}
		w.log.Infow("exported resource table", "resource", res.Name, "rows", len(table))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) writeTable(ctx context.Context, tx *sql.Tx, res *schema.Resource, table dataset.Table) error {
	if _, err := tx.ExecContext(ctx, createTableDDL(res)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	cols := make([]string, len(res.Schema.Fields))
	placeholders := make([]string, len(res.Schema.Fields))
	for i, f := range res.Schema.Fields {
		cols[i] = quoteIdent(f.Name)
		placeholders[i] = "?"
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(res.Name), strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range table {
		args := make([]any, len(res.Schema.Fields))
		for i, f := range res.Schema.Fields {
			if dataset.IsNull(row[f.Name]) {
				args[i] = nil
			} else {
				args[i] = row[f.Name]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	return nil
}

// createTableDDL renders the CREATE TABLE statement for a resource, carrying
// the schema document's primary and foreign keys into SQLite.
func createTableDDL(res *schema.Resource) string {
	var defs []string

	for _, f := range res.Schema.Fields {
		def := quoteIdent(f.Name) + " " + sqliteType(f.Type)
		if f.Constraints.Required {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	if len(res.Schema.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteIdents(res.Schema.PrimaryKey)))
	}

	for _, fk := range res.Schema.ForeignKeys {
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quoteIdents(fk.Fields), quoteIdent(fk.Reference.Resource), quoteIdents(fk.Reference.Fields)))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		quoteIdent(res.Name), strings.Join(defs, ",\n  "))
}

func sqliteType(t schema.FieldType) string {
	switch t {
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeNumber:
		return "REAL"
	case schema.TypeBoolean:
		return "INTEGER"
	case schema.TypeString, schema.TypeDate:
		return "TEXT"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = quoteIdent(name)
	}
	return strings.Join(quoted, ", ")
}
