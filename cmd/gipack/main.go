package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gipack/gipack"
	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/db"
	"github.com/gipack/gipack/internal/formatter"
	"github.com/gipack/gipack/internal/schema"
	"github.com/gipack/gipack/internal/validate"
)

var (
	schemaPath   string
	dbURL        string
	dbSchemaName string
	resources    string
	exclude      string
	format       string
	outputFile   string
	sqlitePath   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "gipack [dataset...]",
	Short: "Validate ground-investigation data packages against a relational schema",
	Long: `gipack validates tabular ground-investigation data against a Data Package /
Table Schema document: field types, formats and constraints, primary-key
uniqueness, and cross-table foreign-key integrity.

Dataset arguments are JSON files (resource name -> rows) or directories of
per-resource CSV files; several inputs are merged before validation. With
--db-url, resource tables are read from a live PostgreSQL database instead.
A fully valid dataset can be exported to a SQLite file with --sqlite.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema document (JSON or YAML; default: bundled GI schema)")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection string to read resource tables from")
	rootCmd.Flags().StringVar(&dbSchemaName, "db-schema", "public", "PostgreSQL schema name")
	rootCmd.Flags().StringVarP(&resources, "resources", "t", "", "Validate only these resources (comma-separated)")
	rootCmd.Flags().StringVarP(&exclude, "exclude", "x", "", "Skip these resources (comma-separated)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "text", "Report format: text, markdown or json")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Report output file (default: stdout)")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Export the dataset to this SQLite file when validation passes")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	if len(args) == 0 && dbURL == "" {
		return fmt.Errorf("no dataset inputs: pass JSON files / CSV directories, or --db-url")
	}

	doc, err := loadSchema(schemaPath)
	if err != nil {
		return err
	}

	merged := dataset.Dataset{}
	for _, input := range args {
		ds, err := gipack.LoadDataset(input)
		if err != nil {
			return err
		}
		sugar.Infow("loaded dataset input", "input", input, "resources", len(ds))
		merged = dataset.Merge(merged, ds)
	}

	if dbURL != "" {
		reader, err := db.NewPostgresReader(ctx, dbURL, dbSchemaName, sugar)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		defer func() {
			if err := reader.Close(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close PostgreSQL connection: %v\n", err)
			}
		}()

		ds, err := reader.ReadDataset(ctx, doc)
		if err != nil {
			return fmt.Errorf("failed to read dataset from PostgreSQL: %w", err)
		}
		merged = dataset.Merge(merged, ds)
	}

	opts := &gipack.Options{
		Resources:        splitList(resources),
		ExcludeResources: splitList(exclude),
	}
	report := gipack.Validate(doc, merged, opts)

	if err := writeReport(report, format, outputFile); err != nil {
		return err
	}

	if sqlitePath != "" {
		if !report.IsValid() {
			return fmt.Errorf("refusing to export: validation found %d error(s)", report.ErrorCount())
		}
		writer, err := db.NewSQLiteWriter(ctx, sqlitePath, sugar)
		if err != nil {
			return fmt.Errorf("failed to open SQLite database: %w", err)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close SQLite connection: %v\n", err)
			}
		}()

		if err := writer.WriteDataset(ctx, doc, merged); err != nil {
			return fmt.Errorf("failed to export dataset: %w", err)
		}
		sugar.Infow("exported dataset", "path", sqlitePath)
	}

	if !report.IsValid() {
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)",
			report.ErrorCount(), report.WarningCount())
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	return zap.NewProduction()
}

func loadSchema(path string) (*schema.Document, error) {
	if path == "" {
		return gipack.DefaultSchema()
	}
	return gipack.ParseSchemaFile(path)
}

func writeReport(report *validate.Report, format, outputFile string) error {
	var writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	switch format {
	case "text":
		return formatter.NewTextFormatter(writer).Format(report)
	case "markdown":
		return formatter.NewMarkdownFormatter(writer).Format(report)
	case "json":
		return formatter.NewJSONFormatter(writer).Format(report)
	default:
		return fmt.Errorf("invalid format: %s (must be 'text', 'markdown' or 'json')", format)
	}
}

// splitList parses a comma-separated flag value into trimmed names.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
