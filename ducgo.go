// Package ducgo is the public facade of the .duc persistence engine: it
// wires the container codec, the storage image handle, the relational
// document mapping, the lazy asset API, and the version-control engine
// together behind a single entrypoint. Grounded on the teacher library's
// root package, where sound.Decode is the one call site that threads a
// format sniff, a codec table lookup, and a tag/meta split into a single
// public operation.
package ducgo

import (
	"github.com/ducflair/ducgo/asset"
	"github.com/ducflair/ducgo/container"
	"github.com/ducflair/ducgo/document"
	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/schema"
	"github.com/ducflair/ducgo/storage"
	"github.com/ducflair/ducgo/vcs"
)

// SchemaVersion returns the schema version a freshly created document
// carries, read from the embedded DDL catalog.
func SchemaVersion() int32 { return schema.CurrentSchemaVersion }

// Image is an open .duc document: a live relational image plus the typed
// document tree decoded from it (or partially decoded, for lazily-opened
// images -- see ParseLazy).
type Image struct {
	handle *storage.Handle
	doc    *model.Document
}

// Parse decodes a full .duc file: unwraps the outer container, opens the
// relational image, and reads every table into a model.Document, including
// external file payloads.
func Parse(fileBytes []byte) (*Image, error) {
	return open(fileBytes, true)
}

// ParseLazy decodes a .duc file's structural tree without materializing
// external file payloads; use GetAsset/ListAssets to fetch those on demand.
func ParseLazy(fileBytes []byte) (*Image, error) {
	return open(fileBytes, false)
}

func open(fileBytes []byte, includeAssets bool) (*Image, error) {
	sqliteImage, err := container.Unwrap(fileBytes)
	if err != nil {
		return nil, err
	}
	h, err := storage.FromBytes(sqliteImage)
	if err != nil {
		return nil, err
	}

	var doc *model.Document
	if includeAssets {
		doc, err = document.Parse(h)
	} else {
		doc, err = document.ParseLazy(h)
	}
	if err != nil {
		h.Close()
		return nil, err
	}
	return &Image{handle: h, doc: doc}, nil
}

// New creates a fresh, empty image carrying the current schema, ready to
// be populated and serialized.
func New() (*Image, error) {
	h, err := storage.NewMemoryWithSchema()
	if err != nil {
		return nil, err
	}
	return &Image{handle: h, doc: &model.Document{}}, nil
}

// Document returns the decoded document tree. On an Image from New, callers
// fill it in place before calling Serialize.
func (img *Image) Document() *model.Document { return img.doc }

// Serialize writes the document tree into the relational image and returns
// the compressed .duc container bytes. It succeeds once, on an Image from New:
// images from Parse and ParseLazy are opened read-only, and a second call on
// the same image fails on the already-written singleton rows.
func (img *Image) Serialize() ([]byte, error) {
	if err := document.Write(img.handle, img.doc); err != nil {
		return nil, err
	}
	sqliteImage, err := img.handle.ToBytes()
	if err != nil {
		return nil, err
	}
	return container.Wrap(sqliteImage)
}

// GetAsset fetches one external file's full record, including its byte
// payload, without touching the rest of the document tree.
func (img *Image) GetAsset(id string) (*model.AssetEntry, error) {
	return asset.GetAsset(img.handle, id)
}

// ListAssets returns metadata for every external file referenced by the
// document, omitting payload bytes.
func (img *Image) ListAssets() ([]model.AssetMetadata, error) {
	return asset.ListAssets(img.handle)
}

// VersionControl opens the version-control engine bound to this image's
// underlying relational image. The returned handle shares the image's
// lifetime; closing the Image invalidates it.
func (img *Image) VersionControl() *vcs.VersionControl {
	return vcs.Open(img.handle)
}

// Close releases the underlying storage image's resources. An Image must
// not be used after Close.
func (img *Image) Close() error {
	if img.handle == nil {
		return nil
	}
	return img.handle.Close()
}

// IsDucFile reports whether fileBytes looks like a .duc container: either a
// raw SQLite image or a DEFLATE stream that unwraps to one.
func IsDucFile(fileBytes []byte) bool {
	if container.IsSQLiteImage(fileBytes) {
		return true
	}
	raw, err := container.Decompress(fileBytes)
	if err != nil {
		return false
	}
	return container.IsSQLiteImage(raw)
}
