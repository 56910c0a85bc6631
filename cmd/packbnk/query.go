package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jchantrell/packbnk/internal/cache"
	"github.com/jchantrell/packbnk/internal/database"
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run SQL against the sound bank index",
	Long: `Query executes SQL against an index written by the banks command, lists
its tables or shows a table's columns.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		listTables, err := cmd.Flags().GetBool("tables")
		if err != nil {
			return fmt.Errorf("failed to get tables flag: %w", err)
		}
		schemaTable, err := cmd.Flags().GetString("schema")
		if err != nil {
			return fmt.Errorf("failed to get schema flag: %w", err)
		}

		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		switch {
		case listTables:
			return printQuery(ctx, db, `SELECT "name" FROM sqlite_master WHERE type = 'table' ORDER BY "name"`)
		case schemaTable != "":
			slog.Debug("Getting table schema", "table", schemaTable)
			return printQuery(ctx, db,
				`SELECT "name", "type", "notnull", "dflt_value", "pk" FROM pragma_table_info(?)`, schemaTable)
		case len(args) > 0:
			slog.Debug("Executing SQL query", "query", args[0])
			return printQuery(ctx, db, args[0])
		}

		return fmt.Errorf("no query provided, use --tables to list tables or --schema <table> to show schema")
	},
}

// indexPath returns the configured index file or the per-user default
func indexPath() string {
	if cfg.Database != "" {
		return cfg.Database
	}
	return cache.CacheManager().GetIndexPath()
}

// openIndex opens an index written by the banks command
func openIndex() (*database.Database, error) {
	path := indexPath()
	if !cache.CacheManager().FileExists(path) {
		return nil, fmt.Errorf("no index at %s, run packbnk banks --save first", path)
	}

	db, err := database.NewDatabase(database.DefaultDatabaseOptions(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}

// printQuery runs query and prints the rows tab separated under a header
func printQuery(ctx context.Context, db *database.Database, query string, args ...any) error {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("getting column names: %w", err)
	}

	fmt.Println(strings.Join(columns, "\t"))
	for i, col := range columns {
		if i > 0 {
			fmt.Print("\t")
		}
		fmt.Print(strings.Repeat("-", len(col)))
	}
	fmt.Println()

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}

		for i, val := range values {
			if i > 0 {
				fmt.Print("\t")
			}
			switch v := val.(type) {
			case nil:
				fmt.Print("NULL")
			case []byte:
				fmt.Printf("<%d bytes>", len(v))
			default:
				fmt.Print(v)
			}
		}
		fmt.Println()
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("tables", false, "List available tables")
	queryCmd.Flags().String("schema", "", "Show schema for specified table")
}
