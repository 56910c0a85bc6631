package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jchantrell/packbnk/internal/audio"
	"github.com/jchantrell/packbnk/internal/bnk"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(DefaultDatabaseOptions(filepath.Join(t.TempDir(), "nested", "index.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.CreateSchema(context.Background()))
	return db
}

var riff = []byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00")

func testResult() *audio.Result {
	return &audio.Result{
		Records: map[uint32][]bnk.Record{
			42: {
				{ID: 42, Type: bnk.HircEvent, RawType: 4, Size: 8, Bank: "a.bnk"},
				{ID: 42, Type: bnk.HircEvent, RawType: 4, Size: 9, Bank: "b.bnk"},
			},
			0: {
				{Type: bnk.HircUnknown, RawType: 99, Size: 2, Bank: "b.bnk", HasError: true, Err: "object body of 2 bytes has no id"},
			},
		},
		Blobs: map[uint32][]audio.Blob{
			7: {{ID: 7, Data: riff, Bank: "a.bnk"}},
		},
		Failures:     []audio.Failure{{Bank: "c.bnk", Error: "decoding bank c.bnk: truncated"}},
		Banks:        []string{"a.bnk", "b.bnk"},
		WithUnknowns: []string{"b.bnk"},
	}
}

func TestNewDatabaseValidation(t *testing.T) {
	t.Parallel()

	_, err := NewDatabase(nil)
	assert.Error(t, err)

	_, err = NewDatabase(&DatabaseOptions{})
	assert.Error(t, err)
}

func TestCreateSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDatabase(t)

	ok, err := db.HasIndex(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// second call must not fail or duplicate types
	require.NoError(t, db.CreateSchema(ctx))

	rows, err := db.Query(ctx, `SELECT "name" FROM "hirc_types" WHERE "id" = ?`, int(bnk.HircMusicRandomSequenceContainer))
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	assert.Equal(t, "music_random_sequence_container", name)
	assert.False(t, rows.Next())
}

func TestInsertResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDatabase(t)

	inserter := NewBulkInserter(db, &BulkInsertOptions{BatchSize: 1})
	require.NoError(t, inserter.InsertResult(ctx, testResult()))

	recs, err := db.LookupRecords(ctx, 42)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, RecordRow{ID: 42, Type: "event", RawType: 4, Size: 8, Bank: "a.bnk"}, recs[0])
	assert.Equal(t, "b.bnk", recs[1].Bank)

	recs, err = db.LookupRecords(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "unknown", recs[0].Type)
	assert.True(t, recs[0].HasError)
	assert.NotEmpty(t, recs[0].Error)

	blobs, err := db.LookupBlobs(ctx, 7)
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, "a.bnk", blobs[0].Bank)
	assert.Equal(t, int64(len(riff)), blobs[0].Size)
	assert.Contains(t, blobs[0].Mime, "wav")

	banks, err := db.Banks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []BankRow{
		{Name: "a.bnk", Decoded: true},
		{Name: "b.bnk", Decoded: true, HasUnknowns: true},
		{Name: "c.bnk", Error: "decoding bank c.bnk: truncated"},
	}, banks)
}

func TestInsertResultReplacesBanks(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDatabase(t)
	inserter := NewBulkInserter(db, nil)

	require.NoError(t, inserter.InsertResult(ctx, testResult()))
	require.NoError(t, inserter.InsertResult(ctx, testResult()))

	recs, err := db.LookupRecords(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	banks, err := db.Banks(ctx)
	require.NoError(t, err)
	assert.Len(t, banks, 3)
}

func TestDropSchema(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDatabase(t)

	require.NoError(t, db.DropSchema(ctx))
	ok, err := db.HasIndex(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosedDatabase(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)
	require.NoError(t, db.Close())

	_, err := db.HasIndex(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.NoError(t, db.Close())
}
