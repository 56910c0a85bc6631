package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jchantrell/packbnk/internal/audio"
)

// BulkInserter writes aggregation results into the index in batches
type BulkInserter struct {
	db        *Database
	batchSize int
	blobData  bool
}

// BulkInsertOptions configures bulk insertion behavior
type BulkInsertOptions struct {
	// BatchSize determines how many rows to insert per transaction
	BatchSize int

	// BlobData stores the audio bytes as well as their size and type
	BlobData bool
}

// DefaultBulkInsertOptions returns the defaults used by the CLI
func DefaultBulkInsertOptions() *BulkInsertOptions {
	return &BulkInsertOptions{
		BatchSize: 1000,
	}
}

// NewBulkInserter creates a new bulk inserter with the given database and options
func NewBulkInserter(db *Database, options *BulkInsertOptions) *BulkInserter {
	if options == nil {
		options = DefaultBulkInsertOptions()
	}

	batchSize := options.BatchSize
	if batchSize < 1 {
		batchSize = DefaultBulkInsertOptions().BatchSize
	}

	return &BulkInserter{
		db:        db,
		batchSize: batchSize,
		blobData:  options.BlobData,
	}
}

// row is one set of statement arguments
type row []any

// InsertResult stores every bank, record, blob and failure of res. Rows for
// banks already in the index are replaced.
func (bi *BulkInserter) InsertResult(ctx context.Context, res *audio.Result) error {
	if res == nil {
		return fmt.Errorf("result cannot be nil")
	}

	banks := bankRows(res)
	if err := bi.clearBanks(ctx, banks); err != nil {
		return err
	}

	if err := bi.insertRows(ctx, banksTable,
		`INSERT INTO "banks" ("name", "decoded", "has_unknowns", "error") VALUES (?, ?, ?, ?)`, banks); err != nil {
		return err
	}

	if err := bi.insertRows(ctx, recordsTable,
		`INSERT INTO "hirc_records" ("id", "type", "raw_type", "size", "bank", "has_error", "error") VALUES (?, ?, ?, ?, ?, ?, ?)`,
		recordRows(res)); err != nil {
		return err
	}

	if err := bi.insertRows(ctx, blobsTable,
		`INSERT INTO "audio_blobs" ("id", "bank", "size", "mime", "data") VALUES (?, ?, ?, ?, ?)`,
		bi.blobRows(res)); err != nil {
		return err
	}

	blobs, _ := res.BlobCount()
	slog.Info("Index updated",
		"path", bi.db.path,
		"banks", len(banks),
		"records", res.RecordCount(),
		"blobs", blobs)

	return nil
}

// clearBanks removes rows written by an earlier run for the same banks
func (bi *BulkInserter) clearBanks(ctx context.Context, banks []row) error {
	tx, err := bi.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{blobsTable, recordsTable, banksTable} {
		column := "bank"
		if table == banksTable {
			column = "name"
		}
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", quoteSQLIdentifier(table), quoteSQLIdentifier(column))
		for _, b := range banks {
			if _, err := tx.ExecContext(ctx, query, b[0]); err != nil {
				return fmt.Errorf("clearing %s for bank %v: %w", table, b[0], err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// insertRows inserts rows in transactions of batchSize
func (bi *BulkInserter) insertRows(ctx context.Context, table, insertSQL string, rows []row) error {
	if len(rows) == 0 {
		slog.Debug("No rows to insert", "table", table)
		return nil
	}

	for i := 0; i < len(rows); i += bi.batchSize {
		end := min(i+bi.batchSize, len(rows))
		if err := bi.insertBatch(ctx, insertSQL, rows[i:end]); err != nil {
			return fmt.Errorf("inserting batch %d-%d for table %s: %w", i, end-1, table, err)
		}
	}

	return nil
}

// insertBatch inserts a single batch of rows within a transaction
func (bi *BulkInserter) insertBatch(ctx context.Context, insertSQL string, batch []row) error {
	tx, err := bi.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i, values := range batch {
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func bankRows(res *audio.Result) []row {
	unknowns := make(map[string]bool, len(res.WithUnknowns))
	for _, name := range res.WithUnknowns {
		unknowns[name] = true
	}

	rows := make([]row, 0, len(res.Banks)+len(res.Failures))
	for _, name := range res.Banks {
		rows = append(rows, row{name, true, unknowns[name], nil})
	}
	for _, f := range res.Failures {
		rows = append(rows, row{f.Bank, false, false, f.Error})
	}
	return rows
}

func recordRows(res *audio.Result) []row {
	var rows []row
	for _, id := range sortedIDs(res.Records) {
		for _, r := range res.Records[id] {
			rows = append(rows, row{
				r.ID, int(r.Type), r.RawType, r.Size, r.Bank, r.HasError, nullString(r.Err),
			})
		}
	}
	return rows
}

func (bi *BulkInserter) blobRows(res *audio.Result) []row {
	var rows []row
	for _, id := range sortedIDs(res.Blobs) {
		for _, b := range res.Blobs[id] {
			var data any
			if bi.blobData {
				data = b.Data
			}
			rows = append(rows, row{
				b.ID, b.Bank, len(b.Data), mimetype.Detect(b.Data).String(), data,
			})
		}
	}
	return rows
}

func sortedIDs[T any](m map[uint32][]T) []uint32 {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
