// Package storage owns the Storage Image Handle: the relational database
// image that every other package reads and writes through. modernc.org/sqlite
// exposes database/sql, not sqlite3_serialize/sqlite3_deserialize, so a
// Handle's "in-memory image" is backed by a private temp file for the
// duration of the handle -- FromBytes writes the incoming buffer out once,
// ToBytes reads it back once after a VACUUM. Callers never see the file
// path; the handle is freed exactly like an in-memory buffer would be.
package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/ducflair/ducgo/container"
	"github.com/ducflair/ducgo/duerr"
	"github.com/ducflair/ducgo/schema"
)

// Logger receives non-fatal warnings (e.g. legacy journal-mode normalization).
// Overridable the way the teacher library leaves log.Printf call sites free
// for a caller to redirect via log.SetOutput.
var Logger = log.Default()

// sqliteHeaderSize is the fixed-size database header every well-formed
// SQLite file begins with.
const sqliteHeaderSize = 100

// writeVersionOffset is the byte offset of the "file format write version"
// (offset 18), and readVersionOffset that of the "file format read version"
// (offset 19) in the SQLite database header. A value of 2 means WAL; 1 means legacy
// rollback journaling.
const (
	writeVersionOffset = 18
	readVersionOffset  = 19
	walFormatByte      = 2
	rollbackFormatByte = 1
)

// Handle owns one relational database image for its entire lifetime. It is
// not safe for concurrent use: callers needing to read and write must hold
// the handle for the whole operation (spec's single-writer policy).
type Handle struct {
	db   *sql.DB
	path string
}

// normalizeLegacyFlags patches WAL-mode header bytes to rollback-mode in
// place. Safe because the image is about to be opened standalone, off any
// writer that might have left WAL segments behind; a writer bug that shipped
// a WAL-flagged image is worth knowing about, so callers get a log line
// rather than silence.
func normalizeLegacyFlags(buf []byte) {
	if len(buf) < sqliteHeaderSize {
		return
	}
	changed := false
	if buf[writeVersionOffset] == walFormatByte {
		buf[writeVersionOffset] = rollbackFormatByte
		changed = true
	}
	if buf[readVersionOffset] == walFormatByte {
		buf[readVersionOffset] = rollbackFormatByte
		changed = true
	}
	if changed {
		Logger.Printf("storage: normalized WAL-mode header flags to rollback mode")
	}
}

func openFile(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Bootstrap, "storage: open image file")
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func newTempPath() (string, error) {
	f, err := os.CreateTemp("", "ducgo-image-*.sqlite")
	if err != nil {
		return "", duerr.Wrap(err, duerr.Bootstrap, "storage: create backing file")
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", duerr.Wrap(err, duerr.Bootstrap, "storage: close backing file")
	}
	return path, nil
}

// NewMemoryWithSchema bootstraps a fresh image, applying the full schema
// catalog inside one transaction.
func NewMemoryWithSchema() (*Handle, error) {
	path, err := newTempPath()
	if err != nil {
		return nil, err
	}
	db, err := openFile(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	tx, err := db.Begin()
	if err == nil {
		if _, err = tx.Exec(schema.DDL()); err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}
	if err != nil {
		db.Close()
		os.Remove(path)
		return nil, duerr.Wrap(err, duerr.Bootstrap, "storage: apply schema catalog")
	}
	return &Handle{db: db, path: path}, nil
}

// FromBytes materializes a database image from a raw (already decompressed,
// already container-validated) SQLite buffer, without the caller ever
// touching the filesystem directly. A truncated or trailer-padded buffer --
// the kind a lossy transport or an over-eager length guess can produce --
// is tolerated: container.Candidates tries the buffer as-is, then the
// header's declared size, then a page-aligned truncation, opening and
// sanity-checking each candidate in a disposable scratch file until one
// actually loads.
func FromBytes(buf []byte) (*Handle, error) {
	if len(buf) == 0 {
		return nil, duerr.New(duerr.InvalidData, "storage: empty image buffer")
	}
	normalized := make([]byte, len(buf))
	copy(normalized, buf)
	normalizeLegacyFlags(normalized)

	winner, err := container.Candidates(normalized, validateCandidate)
	if err != nil {
		return nil, err
	}

	path, err := newTempPath()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, winner, 0o600); err != nil {
		os.Remove(path)
		return nil, duerr.Wrap(err, duerr.Bootstrap, "storage: write image buffer to backing file")
	}

	db, err := openFile(path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	if _, err := db.Exec("PRAGMA query_only = ON;"); err != nil {
		db.Close()
		os.Remove(path)
		return nil, duerr.Wrap(err, duerr.Bootstrap, "storage: set query_only pragma")
	}
	return &Handle{db: db, path: path}, nil
}

// validateCandidate is container.Candidates' validate callback: it opens
// candidate in a disposable scratch file and runs the same sanity check
// FromBytes used to run only once, against every candidate it's asked to
// consider.
func validateCandidate(candidate []byte) error {
	path, err := newTempPath()
	if err != nil {
		return err
	}
	defer os.Remove(path)
	if err := os.WriteFile(path, candidate, 0o600); err != nil {
		return duerr.Wrap(err, duerr.Bootstrap, "storage: write candidate to scratch file")
	}
	db, err := openFile(path)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.Exec("PRAGMA query_only = ON;"); err != nil {
		return duerr.Wrap(err, duerr.Bootstrap, "storage: set query_only pragma on candidate")
	}
	return sanityCheck(db)
}

// sanityCheck runs a trivial query to surface corruption immediately rather
// than on the first real access.
func sanityCheck(db *sql.DB) error {
	var name string
	row := db.QueryRow("SELECT name FROM sqlite_master LIMIT 1")
	if err := row.Scan(&name); err != nil && err != sql.ErrNoRows {
		return duerr.Wrap(err, duerr.InvalidData, "storage: sanity query failed, image is likely corrupt")
	}
	return nil
}

// ToBytes reclaims space with a VACUUM and returns the image's raw bytes.
func (h *Handle) ToBytes() ([]byte, error) {
	if _, err := h.db.Exec("VACUUM;"); err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "storage: vacuum before export")
	}
	// Force SQLite to flush any pending pages before we read the file
	// out from under it.
	if _, err := h.db.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		// Not every journal mode supports a WAL checkpoint; this image
		// is rollback-journaled by construction, so ignore.
		_ = err
	}
	buf, err := os.ReadFile(h.path)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Io, "storage: read backing file")
	}
	return buf, nil
}

// DB exposes the underlying *sql.DB for packages that build queries against
// the schema catalog directly.
func (h *Handle) DB() *sql.DB { return h.db }

// With runs fn inside a single transaction, committing on success and rolling
// back on any error (including a panic, which is re-raised after rollback).
func With(h *Handle, fn func(*sql.Tx) error) (err error) {
	tx, err := h.db.Begin()
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "storage: begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return duerr.Wrap(err, duerr.Db, fmt.Sprintf("storage: rollback also failed: %v", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return duerr.Wrap(err, duerr.Db, "storage: commit transaction")
	}
	return nil
}

// Close releases the handle's backing file. Safe to call once; further use
// of the handle after Close is a programmer error.
func (h *Handle) Close() error {
	err := h.db.Close()
	if rmErr := os.Remove(h.path); rmErr != nil && err == nil {
		err = duerr.Wrap(rmErr, duerr.Io, "storage: remove backing file")
	}
	return err
}
