package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vegasq/flatsql/internal/config"
	"github.com/vegasq/flatsql/output"
	"github.com/vegasq/flatsql/query"
	"github.com/vegasq/flatsql/store"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

// run executes one statement and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	cfg, err := config.NewConfig().FromEnv(lookup)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	flags := flag.NewFlagSet("flatsql", flag.ContinueOnError)
	flags.SetOutput(stderr)

	queryFlag := flags.String("q", "", "SQL statement (e.g., \"SELECT name FROM users WHERE age > 30\")")
	dirFlag := flags.String("dir", cfg.TableDirectory, "Table directory, or key prefix for s3")
	formatFlag := flags.String("format", cfg.TableFormat, "Table file format: csv, parquet")
	storageFlag := flags.String("storage", cfg.DriverStorage, "Storage driver: local, s3")
	cacheFlag := flags.String("cache", cfg.DriverCache, "Table cache: none, memory, redis")
	outputFlag := flags.String("f", output.FormatJSONLines, "Output format: jsonl, json, csv, table")
	verboseFlag := flags.Bool("v", false, "Log pipeline stages to stderr")
	schemaFlag := flags.String("schema", "", "Show the columns of a table instead of running a statement")

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: flatsql [options] -q <statement>\n\n")
		fmt.Fprintf(stderr, "Run SELECT, INSERT and DELETE statements against flat-file tables.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  flatsql -q \"SELECT * FROM users WHERE age > 30\"\n")
		fmt.Fprintf(stderr, "  flatsql -f table -q \"SELECT dept, COUNT(*) FROM users GROUP BY dept\"\n")
		fmt.Fprintf(stderr, "  flatsql -q \"INSERT INTO users (name, age) VALUES ('Eve', 29) RETURNING id\"\n")
		fmt.Fprintf(stderr, "  flatsql -dir data -format parquet -q \"DELETE FROM users WHERE age < 18\"\n")
		fmt.Fprintf(stderr, "  flatsql -f csv -schema users\n")
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *schemaFlag != "" && *queryFlag != "" {
		fmt.Fprintf(stderr, "Error: -schema and -q cannot be used together\n")
		return 1
	}

	if *queryFlag == "" && *schemaFlag == "" {
		fmt.Fprintf(stderr, "Error: missing -q statement\n\n")
		flags.Usage()
		return 1
	}

	level := slog.LevelWarn
	if *verboseFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg.TableDirectory = *dirFlag
	cfg.TableFormat = *formatFlag
	cfg.DriverStorage = *storageFlag
	cfg.DriverCache = *cacheFlag
	cfg = cfg.WithLogger(logger)

	tables, err := cfg.Store(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	options := columnOption(*queryFlag)
	if *schemaFlag != "" {
		options = []output.Option{output.WithColumns([]string{"position", "name"})}
	}

	formatter, err := output.New(*outputFlag, stdout, options...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Supported formats: jsonl, json, csv, table\n")
		return 1
	}

	if *schemaFlag != "" {
		if err := writeSchema(ctx, tables, *schemaFlag, formatter); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	executor := query.NewExecutor(tables, query.WithLogger(logger))
	result, err := executor.Execute(ctx, *queryFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := writeResult(stdout, formatter, result); err != nil {
		fmt.Fprintf(stderr, "Error formatting output: %v\n", err)
		return 1
	}

	return 0
}

// columnOption keeps the SELECT list order in header-based output.
func columnOption(statement string) []output.Option {
	q, err := query.Parse(statement)
	if err != nil || q.SelectsAll() {
		return nil
	}
	return []output.Option{output.WithColumns(q.FieldNames())}
}

// writeSchema lists the columns of a table in declared order.
func writeSchema(ctx context.Context, tables store.Store, name string, formatter output.Formatter) error {
	table, err := tables.Load(ctx, name)
	if err != nil {
		return err
	}

	columns := table.ColumnNames()
	rows := make([]store.Row, len(columns))
	for i, col := range columns {
		rows[i] = store.Row{"position": int64(i + 1), "name": col}
	}

	return formatter.Format(rows)
}

func writeResult(stdout io.Writer, formatter output.Formatter, result *query.Result) error {
	switch result.Statement {
	case query.StatementInsert:
		return json.NewEncoder(stdout).Encode(result.Insert.Returning)
	case query.StatementDelete:
		_, err := fmt.Fprintln(stdout, result.Delete.Message)
		return err
	default:
		return formatter.Format(result.Rows)
	}
}
