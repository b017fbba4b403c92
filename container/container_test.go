package container

import (
	"bytes"
	"testing"
)

func fakeSQLiteImage(pageSize int, pageCount int, extra int) []byte {
	buf := make([]byte, pageSize*pageCount+extra)
	copy(buf, sqliteHeaderMagic)
	raw := pageSize
	if pageSize == maxPageSize {
		raw = legacyPageSize1
	}
	buf[pageSizeOffset] = byte(raw >> 8)
	buf[pageSizeOffset+1] = byte(raw)
	buf[pageCountOffset] = byte(pageCount >> 24)
	buf[pageCountOffset+1] = byte(pageCount >> 16)
	buf[pageCountOffset+2] = byte(pageCount >> 8)
	buf[pageCountOffset+3] = byte(pageCount)
	return buf
}

func TestIsSQLiteImage(t *testing.T) {
	img := fakeSQLiteImage(1024, 2, 0)
	if !IsSQLiteImage(img) {
		t.Errorf("expected a valid header to be recognized")
	}
	if IsSQLiteImage([]byte("not a database")) {
		t.Errorf("expected a non-sqlite buffer to be rejected")
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	raw := fakeSQLiteImage(1024, 4, 0)
	compressed, err := Compress(raw)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if bytes.Equal(compressed, raw) {
		t.Errorf("expected compressed output to differ from input")
	}
	out, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Errorf("round trip mismatch")
	}
}

func TestUnwrapAcceptsUncompressedImage(t *testing.T) {
	raw := fakeSQLiteImage(1024, 2, 0)
	out, err := Unwrap(raw)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Errorf("expected passthrough of an already-uncompressed image")
	}
}

func TestUnwrapAcceptsCompressedImage(t *testing.T) {
	raw := fakeSQLiteImage(1024, 2, 0)
	wrapped, err := Wrap(raw)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	out, err := Unwrap(wrapped)
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Errorf("round trip mismatch")
	}
}

func TestCandidatesTriesHeaderExpectedTruncation(t *testing.T) {
	raw := fakeSQLiteImage(1024, 2, 512) // 512 bytes of trailing padding
	var seen []int
	out, err := Candidates(raw, func(b []byte) error {
		seen = append(seen, len(b))
		if len(b) == 2048 {
			return nil
		}
		return errValidationFailed
	})
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(out) != 2048 {
		t.Errorf("expected the header-expected candidate (2048 bytes), got %d", len(out))
	}
	if len(seen) < 2 {
		t.Errorf("expected more than one candidate to be tried, saw %v", seen)
	}
}

func TestCandidatesJoinsErrorsWhenAllFail(t *testing.T) {
	raw := fakeSQLiteImage(1024, 2, 0)
	_, err := Candidates(raw, func(b []byte) error { return errValidationFailed })
	if err == nil {
		t.Fatalf("expected an error when every candidate fails")
	}
}

var errValidationFailed = &testError{"validation failed"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
