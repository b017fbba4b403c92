// Package container implements the outer .duc file codec: a raw DEFLATE
// stream wrapping a SQLite database image. Grounded on the teacher library's
// sound.sniff/match magic-byte dispatch and on the original implementation's
// parse.rs/serialize.rs (is_sqlite_header, parse_sqlite_header, the
// candidate-ladder decompression retry, and the Deflate-not-Zlib container
// codec -- a detail the original's own doc-comment gets wrong but its actual
// import does not).
package container

import (
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"strings"

	"github.com/ducflair/ducgo/duerr"
)

// sqliteHeaderMagic is the fixed 16-byte signature every SQLite database
// file begins with.
var sqliteHeaderMagic = []byte("SQLite format 3\x00")

const (
	headerSize       = 100
	pageSizeOffset   = 16
	pageCountOffset  = 28
	legacyPageSize1  = 1     // raw value 1 means page size 65536
	maxPageSize      = 65536
	minPageSize      = 512
)

// IsSQLiteImage reports whether buf begins with the SQLite database magic.
func IsSQLiteImage(buf []byte) bool {
	return len(buf) >= len(sqliteHeaderMagic) && bytes.Equal(buf[:len(sqliteHeaderMagic)], sqliteHeaderMagic)
}

// header is the subset of the 100-byte SQLite file header this package
// cares about.
type header struct {
	pageSize  int
	pageCount uint32
}

// parseHeader reads the page size and page count out of a SQLite database
// header. Returns an error if buf is too short or the page size is not a
// valid power of two.
func parseHeader(buf []byte) (header, error) {
	if len(buf) < headerSize {
		return header{}, duerr.New(duerr.InvalidData, fmt.Sprintf("container: buffer too short for a sqlite header (%d bytes)", len(buf)))
	}
	raw := int(buf[pageSizeOffset])<<8 | int(buf[pageSizeOffset+1])
	pageSize := raw
	if raw == legacyPageSize1 {
		pageSize = maxPageSize
	}
	if pageSize < minPageSize || pageSize > maxPageSize || pageSize&(pageSize-1) != 0 {
		return header{}, duerr.New(duerr.InvalidData, fmt.Sprintf("container: invalid page size %d", pageSize))
	}
	pageCount := uint32(buf[pageCountOffset])<<24 | uint32(buf[pageCountOffset+1])<<16 |
		uint32(buf[pageCountOffset+2])<<8 | uint32(buf[pageCountOffset+3])
	return header{pageSize: pageSize, pageCount: pageCount}, nil
}

// expectedSize is the byte length the header claims the image should be.
func (h header) expectedSize() int64 {
	return int64(h.pageSize) * int64(h.pageCount)
}

// Candidates returns the ordered list of byte-slice truncations worth trying
// when deserializing an image whose trailing bytes may be padding left by
// some other writer. The ladder is: the full buffer, the header-expected
// size (if it differs and fits), then the page-aligned size (if it differs
// from both prior candidates). validate is called once per candidate in
// order; the first candidate it accepts wins. All per-candidate errors are
// joined into one message if every candidate fails.
func Candidates(buf []byte, validate func([]byte) error) ([]byte, error) {
	h, hErr := parseHeader(buf)

	type candidate struct {
		name string
		data []byte
	}
	var candidates []candidate
	candidates = append(candidates, candidate{"full-buffer", buf})

	if hErr == nil {
		expected := h.expectedSize()
		if expected > 0 && expected != int64(len(buf)) && expected <= int64(len(buf)) {
			candidates = append(candidates, candidate{"header-expected", buf[:expected]})
		}
		pageAligned := int64(len(buf)/h.pageSize) * int64(h.pageSize)
		isNew := true
		for _, c := range candidates {
			if int64(len(c.data)) == pageAligned {
				isNew = false
				break
			}
		}
		if isNew && pageAligned > 0 {
			candidates = append(candidates, candidate{"page-aligned", buf[:pageAligned]})
		}
	}

	var errs []string
	for _, c := range candidates {
		if err := validate(c.data); err == nil {
			return c.data, nil
		} else {
			errs = append(errs, fmt.Sprintf("%s: %v", c.name, err))
		}
	}

	pageSize, pageCount, expected := 0, uint32(0), int64(0)
	if hErr == nil {
		pageSize, pageCount, expected = h.pageSize, h.pageCount, h.expectedSize()
	}
	return nil, duerr.New(duerr.InvalidData, fmt.Sprintf(
		"container: failed to deserialize sqlite image (input=%d bytes, page_size=%d, page_count=%d, expected=%d): %s",
		len(buf), pageSize, pageCount, expected, strings.Join(errs, " | ")))
}

// Compress wraps raw in a raw DEFLATE stream (no zlib/gzip framing). This is
// the outer .duc container codec; version-control deltas use zlib instead
// (see package vcs) and the two must not be confused.
func Compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Io, "container: open deflate writer")
	}
	if _, err := w.Write(raw); err != nil {
		return nil, duerr.Wrap(err, duerr.Io, "container: write deflate stream")
	}
	if err := w.Close(); err != nil {
		return nil, duerr.Wrap(err, duerr.Io, "container: close deflate stream")
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "container: inflate raw deflate stream")
	}
	return out, nil
}

// Unwrap accepts the raw bytes of a .duc file -- either an uncompressed
// SQLite image or a deflate-compressed one -- and returns the underlying
// SQLite image bytes. It never writes to the filesystem.
func Unwrap(fileBytes []byte) ([]byte, error) {
	if len(fileBytes) == 0 {
		return nil, duerr.New(duerr.InvalidData, "container: empty file")
	}
	if IsSQLiteImage(fileBytes) {
		return fileBytes, nil
	}
	raw, err := Decompress(fileBytes)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.InvalidData, "container: input is neither a sqlite image nor a valid deflate stream")
	}
	if !IsSQLiteImage(raw) {
		return nil, duerr.New(duerr.InvalidData, "container: decompressed payload is not a sqlite image")
	}
	return raw, nil
}

// Wrap compresses a SQLite image into the final .duc file bytes.
func Wrap(sqliteImage []byte) ([]byte, error) {
	return Compress(sqliteImage)
}
