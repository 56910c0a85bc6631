package database

import (
	"context"
	"database/sql"
	"fmt"
)

// RecordRow is a stored HIRC record
type RecordRow struct {
	ID       uint32
	Type     string
	RawType  uint8
	Size     uint32
	Bank     string
	HasError bool
	Error    string
}

// BlobRow is a stored audio blob, without its data
type BlobRow struct {
	ID   uint32
	Bank string
	Size int64
	Mime string
}

// BankRow is a stored bank outcome
type BankRow struct {
	Name        string
	Decoded     bool
	HasUnknowns bool
	Error       string
}

// LookupRecords returns every record stored under id, ordered by bank
func (d *Database) LookupRecords(ctx context.Context, id uint32) ([]RecordRow, error) {
	rows, err := d.Query(ctx, `
		SELECT r."id", t."name", r."raw_type", r."size", r."bank", r."has_error", r."error"
		FROM "hirc_records" r JOIN "hirc_types" t ON t."id" = r."type"
		WHERE r."id" = ?
		ORDER BY r."bank", r."rowid"`, id)
	if err != nil {
		return nil, fmt.Errorf("looking up records for %d: %w", id, err)
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		var r RecordRow
		var msg sql.NullString
		if err := rows.Scan(&r.ID, &r.Type, &r.RawType, &r.Size, &r.Bank, &r.HasError, &msg); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		r.Error = msg.String
		out = append(out, r)
	}

	return out, rows.Err()
}

// LookupBlobs returns every audio blob stored under id, ordered by bank
func (d *Database) LookupBlobs(ctx context.Context, id uint32) ([]BlobRow, error) {
	rows, err := d.Query(ctx, `
		SELECT "id", "bank", "size", "mime" FROM "audio_blobs"
		WHERE "id" = ?
		ORDER BY "bank", "rowid"`, id)
	if err != nil {
		return nil, fmt.Errorf("looking up blobs for %d: %w", id, err)
	}
	defer rows.Close()

	var out []BlobRow
	for rows.Next() {
		var b BlobRow
		if err := rows.Scan(&b.ID, &b.Bank, &b.Size, &b.Mime); err != nil {
			return nil, fmt.Errorf("scanning blob row: %w", err)
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

// Banks returns every stored bank outcome ordered by name
func (d *Database) Banks(ctx context.Context) ([]BankRow, error) {
	rows, err := d.Query(ctx, `SELECT "name", "decoded", "has_unknowns", "error" FROM "banks" ORDER BY "name"`)
	if err != nil {
		return nil, fmt.Errorf("listing banks: %w", err)
	}
	defer rows.Close()

	var out []BankRow
	for rows.Next() {
		var b BankRow
		var msg sql.NullString
		if err := rows.Scan(&b.Name, &b.Decoded, &b.HasUnknowns, &msg); err != nil {
			return nil, fmt.Errorf("scanning bank row: %w", err)
		}
		b.Error = msg.String
		out = append(out, b)
	}

	return out, rows.Err()
}
