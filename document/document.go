// Package document implements Document Assembly: the single-transaction
// write orchestration that lays an in-memory model.Document out across the
// full schema catalog, and the inverse read walk that reconstructs it.
// Grounded on the teacher library's sound.go facade, which likewise owns the
// one entrypoint (Decode) that walks a format's nested structure end to end
// rather than leaving callers to sequence the sub-decoders themselves.
package document

import (
	"database/sql"

	"github.com/ducflair/ducgo/duerr"
	"github.com/ducflair/ducgo/element"
	"github.com/ducflair/ducgo/enum"
	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/schema"
	"github.com/ducflair/ducgo/storage"
	"github.com/ducflair/ducgo/style"
)

// Write lays doc out across a freshly bootstrapped image following the
// dependency order the schema's foreign keys imply: document, global state,
// local state, dictionary, containers, blocks, elements, external files.
// FK enforcement is disabled for the duration -- real documents can and do
// reference containers/blocks that didn't make it into the exported set
// (e.g. a deleted layer an element still points at), and the writer must
// tolerate that rather than fail the whole export.
func Write(h *storage.Handle, doc *model.Document) error {
	if _, err := h.DB().Exec("PRAGMA foreign_keys = OFF;"); err != nil {
		return duerr.Wrap(err, duerr.Db, "document: disable foreign keys")
	}

	err := storage.With(h, func(tx *sql.Tx) error {
		if err := writeHeader(tx, doc.Header); err != nil {
			return err
		}
		if err := writeGlobalState(tx, doc.GlobalState); err != nil {
			return err
		}
		if err := writeLocalState(tx, doc.LocalState); err != nil {
			return err
		}
		if err := writeDictionary(tx, doc.Dictionary); err != nil {
			return err
		}
		if err := writeContainers(tx, doc); err != nil {
			return err
		}
		if err := writeBlocks(tx, doc); err != nil {
			return err
		}
		for i, e := range doc.Elements {
			if err := element.WriteElement(tx, e, i); err != nil {
				return err
			}
		}
		if err := writeExternalFiles(tx, doc.ExternalFiles); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if _, err := h.DB().Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return duerr.Wrap(err, duerr.Db, "document: re-enable foreign keys")
	}
	if _, err := h.DB().Exec("VACUUM;"); err != nil {
		return duerr.Wrap(err, duerr.Db, "document: vacuum after write")
	}
	return nil
}

func writeHeader(tx *sql.Tx, h model.DocumentHeader) error {
	_, err := tx.Exec(`INSERT INTO `+schema.TableDocument+
		` (id, doc_id, format_version, source, data_type, thumbnail) VALUES (1,?,?,?,?,?)`,
		nullableString(h.ID), h.Version, h.Source, h.DataType, h.Thumbnail)
	return duerr.Wrap(err, duerr.Db, "document: insert header")
}

func writeGlobalState(tx *sql.Tx, g model.GlobalState) error {
	_, err := tx.Exec(`INSERT INTO `+schema.TableGlobalState+
		` (id, display_name, background_color, main_scope, scope_exponent_threshold, pruning_level)
		  VALUES (1,?,?,?,?,?)`,
		g.DisplayName, g.BackgroundColor, g.MainScope, g.ScopeExponentThreshold, enum.EncodePruningLevel(g.PruningLevel))
	return duerr.Wrap(err, duerr.Db, "document: insert global state")
}

func writeLocalState(tx *sql.Tx, l model.LocalState) error {
	_, err := tx.Exec(`INSERT INTO `+schema.TableLocalState+
		` (id, scroll_x, scroll_y, zoom, is_binding_enabled, default_opacity, default_font, default_alignment,
		   default_roundness, default_line_head_start, default_line_head_start_block_id,
		   default_line_head_start_size, default_line_head_end, default_line_head_end_block_id,
		   default_line_head_end_size, ui_mode_flags, decimal_places)
		  VALUES (1,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.ScrollX, l.ScrollY, l.Zoom, l.IsBindingEnabled, l.DefaultOpacity, l.DefaultFont,
		enum.EncodeTextAlign(l.DefaultAlignment), l.DefaultRoundness,
		enum.EncodeLineHead(l.DefaultLineHeadStart.Head), nullableString(l.DefaultLineHeadStart.BlockID), l.DefaultLineHeadStart.Size,
		enum.EncodeLineHead(l.DefaultLineHeadEnd.Head), nullableString(l.DefaultLineHeadEnd.BlockID), l.DefaultLineHeadEnd.Size,
		l.UIModeFlags, l.DecimalPlaces)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: insert local state")
	}
	if err := style.WriteStroke(tx, model.OwnerLocalState, "1", 0, l.DefaultStroke); err != nil {
		return err
	}
	return style.WriteBackground(tx, model.OwnerLocalState, "1", 0, l.DefaultBackground)
}

func writeDictionary(tx *sql.Tx, dict map[string]string) error {
	for k, v := range dict {
		if _, err := tx.Exec(`INSERT INTO `+schema.TableDictionary+` (key, value) VALUES (?,?)`, k, v); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert dictionary entry")
		}
	}
	return nil
}

func writeContainers(tx *sql.Tx, doc *model.Document) error {
	for _, layer := range doc.Layers {
		if err := writeStackBase(tx, layer.StackBase); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO `+schema.TableLayers+` (id, readonly) VALUES (?,?)`, layer.ID, layer.Readonly); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert layer")
		}
		if layer.StrokeOverride != nil {
			if err := style.WriteStroke(tx, model.OwnerLayer, layer.ID, 0, *layer.StrokeOverride); err != nil {
				return err
			}
		}
		if layer.BackgroundOverride != nil {
			if err := style.WriteBackground(tx, model.OwnerLayer, layer.ID, 0, *layer.BackgroundOverride); err != nil {
				return err
			}
		}
	}
	for _, g := range doc.Groups {
		if err := writeStackBase(tx, g.StackBase); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO `+schema.TableGroups+` (id) VALUES (?)`, g.ID); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert group")
		}
	}
	for _, r := range doc.Regions {
		if err := writeStackBase(tx, r.StackBase); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO `+schema.TableRegions+` (id, operation) VALUES (?,?)`,
			r.ID, enum.EncodeBooleanOperation(r.Operation)); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert region")
		}
	}
	return nil
}

func writeStackBase(tx *sql.Tx, s model.StackBase) error {
	_, err := tx.Exec(`INSERT INTO `+schema.TableStackProperties+
		` (id, label, description, collapsed, plot, visible, locked, opacity) VALUES (?,?,?,?,?,?,?,?)`,
		s.ID, s.Label, nullableString(s.Description), s.Collapsed, s.Plot, s.Visible, s.Locked, s.Opacity)
	return duerr.Wrap(err, duerr.Db, "document: insert stack_properties")
}

func writeBlockMetadata(tx *sql.Tx, m *model.BlockMetadata) (any, error) {
	if m == nil {
		return nil, nil
	}
	localizationJSON, err := marshalLocalization(m.Localization)
	if err != nil {
		return nil, err
	}
	res, err := tx.Exec(`INSERT INTO `+schema.TableBlockMetadata+
		` (source, usage_count, created_at, updated_at, localization) VALUES (?,?,?,?,?)`,
		nullableString(m.Source), m.UsageCount, nullableTime(m.CreatedAt), nullableTime(m.UpdatedAt), localizationJSON)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "document: insert block metadata")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "document: block metadata id")
	}
	return id, nil
}

func writeBlocks(tx *sql.Tx, doc *model.Document) error {
	for _, b := range doc.Blocks {
		metaID, err := writeBlockMetadata(tx, b.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO `+schema.TableBlocks+
			` (id, label, description, metadata_id, thumbnail) VALUES (?,?,?,?,?)`,
			b.ID, b.Label, nullableString(b.Description), metaID, b.Thumbnail); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert block")
		}
	}
	for _, bi := range doc.BlockInstances {
		metaID, err := writeBlockMetadata(tx, bi.Metadata)
		if err != nil {
			return err
		}
		var rows, cols any
		var spacingX, spacingY any
		if bi.Duplication != nil {
			rows, cols = bi.Duplication.Rows, bi.Duplication.Cols
			spacingX, spacingY = bi.Duplication.SpacingX, bi.Duplication.SpacingY
		}
		if _, err := tx.Exec(`INSERT INTO `+schema.TableBlockInstances+
			` (id, block_id, x, y, angle, duplication_rows, duplication_cols, duplication_spacing_x,
			   duplication_spacing_y, metadata_id) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			bi.ID, bi.BlockID, bi.X, bi.Y, bi.Angle, rows, cols, spacingX, spacingY, metaID); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert block instance")
		}
		for elemID, override := range bi.ElementOverrides {
			if _, err := tx.Exec(`INSERT INTO `+schema.TableBlockInstanceOverrides+
				` (instance_id, element_id, override_value) VALUES (?,?,?)`, bi.ID, elemID, override); err != nil {
				return duerr.Wrap(err, duerr.Db, "document: insert block instance override")
			}
		}
	}
	for _, bc := range doc.BlockCollections {
		metaID, err := writeBlockMetadata(tx, bc.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO `+schema.TableBlockCollections+
			` (id, label, metadata_id, thumbnail) VALUES (?,?,?,?)`, bc.ID, bc.Label, metaID, bc.Thumbnail); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert block collection")
		}
		for i, blockID := range bc.BlockIDs {
			if _, err := tx.Exec(`INSERT INTO `+schema.TableBlockCollectionEntries+
				` (collection_id, block_id, sort_order) VALUES (?,?,?)`, bc.ID, blockID, i); err != nil {
				return duerr.Wrap(err, duerr.Db, "document: insert block collection entry")
			}
		}
	}
	return nil
}

func writeExternalFiles(tx *sql.Tx, files map[string]model.ExternalFile) error {
	for id, f := range files {
		if _, err := tx.Exec(`INSERT INTO `+schema.TableExternalFiles+
			` (id, mime_type, data, created, last_retrieved, version) VALUES (?,?,?,?,?,?)`,
			id, f.MimeType, f.Data, f.Created.UnixMilli(), f.LastRetrieved.UnixMilli(), f.Version); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: insert external file")
		}
	}
	return nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
