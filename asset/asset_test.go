package asset

import (
	"testing"

	"github.com/ducflair/ducgo/schema"
	"github.com/ducflair/ducgo/storage"
)

func newHandle(t *testing.T) *storage.Handle {
	t.Helper()
	h, err := storage.NewMemoryWithSchema()
	if err != nil {
		t.Fatalf("NewMemoryWithSchema: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestGetAssetReturnsNilForMissingID(t *testing.T) {
	h := newHandle(t)
	a, err := GetAsset(h, "missing")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if a != nil {
		t.Errorf("expected nil for a missing asset, got %+v", a)
	}
}

func TestGetAssetAndListAssets(t *testing.T) {
	h := newHandle(t)
	if _, err := h.DB().Exec(`INSERT INTO `+schema.TableExternalFiles+
		` (id, mime_type, data, created, last_retrieved, version) VALUES (?,?,?,?,?,?)`,
		"img-1", "image/png", []byte{1, 2, 3}, 1000, 2000, 1); err != nil {
		t.Fatalf("insert: %v", err)
	}

	a, err := GetAsset(h, "img-1")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if a == nil || a.MimeType != "image/png" || len(a.Data) != 3 {
		t.Fatalf("unexpected asset: %+v", a)
	}

	list, err := ListAssets(h)
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(list) != 1 || list[0].ID != "img-1" {
		t.Fatalf("unexpected asset list: %+v", list)
	}
}
