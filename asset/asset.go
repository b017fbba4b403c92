// Package asset implements the Lazy Asset API: read-only external-file
// access that never materializes the whole document tree. Grounded on the
// teacher library's sound.DecodeTags/DecodeMeta split, which likewise reads
// a narrow slice of a format without decoding the full stream.
package asset

import (
	"database/sql"

	"github.com/ducflair/ducgo/duerr"
	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/schema"
	"github.com/ducflair/ducgo/storage"
)

// GetAsset runs a single indexed SELECT against the external_files table and
// returns the full record, including its data blob. Returns (nil, nil) if no
// asset with the given id exists.
func GetAsset(h *storage.Handle, id string) (*model.AssetEntry, error) {
	var a model.AssetEntry
	var created, lastRetrieved int64
	err := h.DB().QueryRow(`SELECT id, mime_type, data, created, last_retrieved, version
		FROM `+schema.TableExternalFiles+` WHERE id = ?`, id).Scan(
		&a.ID, &a.MimeType, &a.Data, &created, &lastRetrieved, &a.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "asset: get asset")
	}
	a.Created = created
	a.LastRetrieved = lastRetrieved
	return &a, nil
}

// ListAssets returns metadata for every external file, skipping the heavy
// data column entirely.
func ListAssets(h *storage.Handle) ([]model.AssetMetadata, error) {
	rows, err := h.DB().Query(`SELECT id, mime_type, created, last_retrieved, version FROM ` + schema.TableExternalFiles)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "asset: list assets")
	}
	defer rows.Close()

	var out []model.AssetMetadata
	for rows.Next() {
		var m model.AssetMetadata
		var created, lastRetrieved int64
		if err := rows.Scan(&m.ID, &m.MimeType, &created, &lastRetrieved, &m.Version); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "asset: scan asset metadata")
		}
		m.Created = created
		m.LastRetrieved = lastRetrieved
		out = append(out, m)
	}
	return out, rows.Err()
}
