// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfa-convert/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.LedgerConfig{StateDir: filepath.Join(t.TempDir(), "state")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	s, err := Open(types.LedgerConfig{StateDir: dir})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, filepath.Join(dir, "ledger.db"), s.Path())
	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := types.LedgerConfig{StateDir: t.TempDir()}
	ctx := context.Background()

	s1, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, s1.Record(ctx, &types.ConversionRecord{
		InputPath: "a.pdf", InputHash: "h1", Options: types.DefaultOptions(), Status: types.ConversionDone,
	}))
	require.NoError(t, s1.Close())

	s2, err := Open(cfg)
	require.NoError(t, err)
	defer s2.Close()
	recs, err := s2.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRecordAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	opts := types.Options{PDFVersion: 1.7, Part: "3", Conformance: "U"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := &types.ConversionRecord{
		RunID:       "run-1",
		InputPath:   "in/doc.pdf",
		InputHash:   "abc",
		OutputPath:  "out/doc.pdf",
		Options:     opts,
		Status:      types.ConversionDone,
		ConvertedAt: at,
	}
	require.NoError(t, s.Record(ctx, rec))
	assert.NotEmpty(t, rec.ID)

	got, err := s.Lookup(ctx, "abc", opts)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("Lookup mismatch (-want +got):\n%s", diff)
	}
}

func TestLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	opts := types.DefaultOptions()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	records := []types.ConversionRecord{
		{InputPath: "a.pdf", InputHash: "h1", OutputPath: "old.pdf", Options: opts, Status: types.ConversionDone, ConvertedAt: base},
		{InputPath: "a.pdf", InputHash: "h1", OutputPath: "new.pdf", Options: opts, Status: types.ConversionDone, ConvertedAt: base.Add(time.Hour)},
		{InputPath: "a.pdf", InputHash: "h1", Options: opts, Status: types.ConversionFailed, Error: "boom", ConvertedAt: base.Add(2 * time.Hour)},
		{InputPath: "b.pdf", InputHash: "h2", Options: opts, Status: types.ConversionFailed, Error: "boom", ConvertedAt: base},
	}
	for i := range records {
		require.NoError(t, s.Record(ctx, &records[i]))
	}

	tests := []struct {
		name       string
		hash       string
		opts       types.Options
		wantOutput string
		wantErr    error
	}{
		{name: "latest success wins", hash: "h1", opts: opts, wantOutput: "new.pdf"},
		{name: "other options", hash: "h1", opts: types.Options{PDFVersion: 1.7, Part: "2", Conformance: "B"}, wantErr: ErrNotFound},
		{name: "only failures", hash: "h2", opts: opts, wantErr: ErrNotFound},
		{name: "unknown hash", hash: "zzz", opts: opts, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Lookup(ctx, tt.hash, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutput, got.OutputPath)
		})
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, &types.ConversionRecord{
			InputPath:   filepath.Join("in", string(rune('a'+i))+".pdf"),
			InputHash:   "h",
			Options:     types.DefaultOptions(),
			Status:      types.ConversionDone,
			ConvertedAt: base.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	recs, err := s.List(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, filepath.Join("in", "e.pdf"), recs[0].InputPath)
	assert.Equal(t, filepath.Join("in", "c.pdf"), recs[2].InputPath)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRecordRequiresHash(t *testing.T) {
	s := openTestStore(t)
	err := s.Record(context.Background(), &types.ConversionRecord{InputPath: "a.pdf"})
	assert.Error(t, err)
}

func TestHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	data := []byte("%PDF-1.4 not really")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	fromBytes := HashBytes(data)
	assert.Len(t, fromBytes, 64)

	fromFile, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, fromBytes, fromFile)
	assert.NotEqual(t, fromBytes, HashBytes([]byte("other")))

	_, err = HashFile(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
