// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records conversion history in a SQLite database. Inputs are
// identified by the BLAKE3 digest of their bytes so that a batch can skip
// files it has already converted with the same options.
package ledger

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/blake3"

	"github.com/pdiddy/pdfa-convert/pkg/types"
)

const (
	// DefaultStateDir holds ledger.db when no state directory is configured.
	DefaultStateDir = ".pdfa-convert"
	dbFile          = "ledger.db"
	defaultLimit    = 50

	// timeLayout has fixed width so that converted_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned by Lookup when no matching record exists.
var ErrNotFound = errors.New("ledger: no matching record")

// Store manages the ledger database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger database at StateDir/ledger.db and
// creates the schema if it does not exist.
func Open(cfg types.LedgerConfig) (*Store, error) {
	dir := cfg.StateDir
	if dir == "" {
		dir = DefaultStateDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			run_id TEXT,
			input_path TEXT NOT NULL,
			input_hash TEXT NOT NULL,
			output_path TEXT,
			pdf_version TEXT NOT NULL,
			part TEXT NOT NULL,
			conformance TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_hash ON conversions(input_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_run ON conversions(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts rec. An empty ID is replaced by a new UUID and a zero
// ConvertedAt by the current time; both are written back to rec.
func (s *Store) Record(ctx context.Context, rec *types.ConversionRecord) error {
	if rec.InputHash == "" {
		return errors.New("ledger: record has no input hash")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.ConvertedAt.IsZero() {
		rec.ConvertedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (id, run_id, input_path, input_hash, output_path,
			pdf_version, part, conformance, status, error, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.InputPath, rec.InputHash, rec.OutputPath,
		rec.Options.VersionString(), rec.Options.Part, rec.Options.Conformance,
		string(rec.Status), rec.Error, rec.ConvertedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting record %s: %w", rec.ID, err)
	}
	return nil
}

// Lookup returns the most recent successful conversion of the input with
// the given hash under opts. It returns ErrNotFound when there is none.
func (s *Store) Lookup(ctx context.Context, hash string, opts types.Options) (*types.ConversionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+columns+` FROM conversions
		 WHERE input_hash = ? AND pdf_version = ? AND part = ? AND conformance = ? AND status = ?
		 ORDER BY converted_at DESC, rowid DESC LIMIT 1`,
		hash, opts.VersionString(), opts.Part, opts.Conformance, string(types.ConversionDone),
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", hash, err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. A non-positive limit
// selects the default of 50.
func (s *Store) List(ctx context.Context, limit int) ([]types.ConversionRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM conversions ORDER BY converted_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []types.ConversionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

const columns = `id, run_id, input_path, input_hash, output_path, pdf_version, part,
	conformance, status, error, converted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*types.ConversionRecord, error) {
	var (
		rec                             types.ConversionRecord
		runID, outputPath, errMsg       sql.NullString
		version, status, convertedAtStr string
	)
	err := sc.Scan(&rec.ID, &runID, &rec.InputPath, &rec.InputHash, &outputPath,
		&version, &rec.Options.Part, &rec.Options.Conformance, &status, &errMsg, &convertedAtStr)
	if err != nil {
		return nil, err
	}
	rec.RunID = runID.String
	rec.OutputPath = outputPath.String
	rec.Error = errMsg.String
	rec.Status = types.ConversionStatus(status)
	if rec.Options.PDFVersion, err = strconv.ParseFloat(version, 64); err != nil {
		return nil, fmt.Errorf("parsing pdf_version %q: %w", version, err)
	}
	rec.ConvertedAt, err = time.Parse(timeLayout, convertedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing converted_at %q: %w", convertedAtStr, err)
	}
	return &rec, nil
}

// NewRunID returns an identifier grouping the records of one run.
func NewRunID() string {
	return uuid.New().String()
}

// HashBytes returns the hex BLAKE3-256 digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex BLAKE3-256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
