package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jchantrell/packbnk/internal/bnk"
	"github.com/jchantrell/packbnk/internal/utils"
)

const (
	banksTable   = "banks"
	typesTable   = "hirc_types"
	recordsTable = "hirc_records"
	blobsTable   = "audio_blobs"
)

// ddlRequest is one statement of the index schema
type ddlRequest struct {
	TableName string
	DDL       string
}

var schemaDDL = []ddlRequest{
	{banksTable, `CREATE TABLE IF NOT EXISTS "banks" (
    "name" TEXT PRIMARY KEY,
    "decoded" INTEGER NOT NULL,
    "has_unknowns" INTEGER NOT NULL DEFAULT 0,
    "error" TEXT
)`},
	{typesTable, `CREATE TABLE IF NOT EXISTS "hirc_types" (
    "id" INTEGER PRIMARY KEY,
    "name" TEXT NOT NULL
)`},
	{recordsTable, `CREATE TABLE IF NOT EXISTS "hirc_records" (
    "id" INTEGER NOT NULL,
    "type" INTEGER NOT NULL REFERENCES "hirc_types" ("id"),
    "raw_type" INTEGER NOT NULL,
    "size" INTEGER NOT NULL,
    "bank" TEXT NOT NULL REFERENCES "banks" ("name"),
    "has_error" INTEGER NOT NULL DEFAULT 0,
    "error" TEXT
)`},
	{recordsTable, `CREATE INDEX IF NOT EXISTS "hirc_records_id" ON "hirc_records" ("id")`},
	{blobsTable, `CREATE TABLE IF NOT EXISTS "audio_blobs" (
    "id" INTEGER NOT NULL,
    "bank" TEXT NOT NULL REFERENCES "banks" ("name"),
    "size" INTEGER NOT NULL,
    "mime" TEXT NOT NULL,
    "data" BLOB
)`},
	{blobsTable, `CREATE INDEX IF NOT EXISTS "audio_blobs_id" ON "audio_blobs" ("id")`},
}

// CreateSchema creates the index tables and fills the type lookup table.
// It is safe to call on an existing index.
func (d *Database) CreateSchema(ctx context.Context) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, req := range schemaDDL {
		if _, err := tx.ExecContext(ctx, req.DDL); err != nil {
			return fmt.Errorf("executing DDL for %s: %w", req.TableName, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO "hirc_types" ("id", "name") VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing type insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range hircTypes() {
		if _, err := stmt.ExecContext(ctx, int(t), utils.ToSnakeCase(t.String())); err != nil {
			return fmt.Errorf("inserting type %s: %w", t, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema: %w", err)
	}

	slog.Debug("Index schema ready", "path", d.path)

	return nil
}

// DropSchema removes every index table
func (d *Database) DropSchema(ctx context.Context) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning drop transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{blobsTable, recordsTable, typesTable, banksTable} {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteSQLIdentifier(table)); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing drop: %w", err)
	}

	return nil
}

// hircTypes lists every type known to the bank parser, unknown first
func hircTypes() []bnk.HircType {
	var types []bnk.HircType
	for t := bnk.HircUnknown; t <= bnk.HircTimeMod; t++ {
		types = append(types, t)
	}
	return types
}

// quoteSQLIdentifier quotes SQL identifiers to prevent conflicts with reserved words
func quoteSQLIdentifier(identifier string) string {
	return fmt.Sprintf(`"%s"`, identifier)
}
