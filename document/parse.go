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

// Parse reads the full in-memory tree back out of an image, including
// external-file payloads. ParseLazy is identical but skips external files --
// callers fetch those on demand through package asset instead.
func Parse(h *storage.Handle) (*model.Document, error) {
	return parse(h, true)
}

// ParseLazy reads everything except external-file payloads.
func ParseLazy(h *storage.Handle) (*model.Document, error) {
	return parse(h, false)
}

func parse(h *storage.Handle, includeAssets bool) (*model.Document, error) {
	db := h.DB()
	doc := &model.Document{Dictionary: map[string]string{}}

	if err := readHeader(db, doc); err != nil {
		return nil, err
	}
	if err := readGlobalState(db, doc); err != nil {
		return nil, err
	}
	if err := readLocalState(db, doc); err != nil {
		return nil, err
	}
	if err := readDictionary(db, doc); err != nil {
		return nil, err
	}
	if err := readContainers(db, doc); err != nil {
		return nil, err
	}
	if err := readBlocks(db, doc); err != nil {
		return nil, err
	}

	elements, err := element.ReadElements(db)
	if err != nil {
		return nil, err
	}
	doc.Elements = elements

	if includeAssets {
		files, err := readExternalFiles(db)
		if err != nil {
			return nil, err
		}
		doc.ExternalFiles = files
	}

	return doc, nil
}

func readHeader(db *sql.DB, doc *model.Document) error {
	var docID sql.NullString
	var thumbnail []byte
	err := db.QueryRow(`SELECT doc_id, format_version, source, data_type, thumbnail FROM `+schema.TableDocument+` WHERE id = 1`).
		Scan(&docID, &doc.Header.Version, &doc.Header.Source, &doc.Header.DataType, &thumbnail)
	if err != nil {
		return duerr.Wrap(err, duerr.InvalidData, "document: read header")
	}
	doc.Header.ID = nullableStringFromSQL(docID)
	doc.Header.Thumbnail = thumbnail
	return nil
}

func readGlobalState(db *sql.DB, doc *model.Document) error {
	var pruning int64
	err := db.QueryRow(`SELECT display_name, background_color, main_scope, scope_exponent_threshold, pruning_level
		FROM `+schema.TableGlobalState+` WHERE id = 1`).Scan(
		&doc.GlobalState.DisplayName, &doc.GlobalState.BackgroundColor, &doc.GlobalState.MainScope,
		&doc.GlobalState.ScopeExponentThreshold, &pruning)
	if err != nil {
		return duerr.Wrap(err, duerr.InvalidData, "document: read global state")
	}
	doc.GlobalState.PruningLevel = enum.DecodePruningLevel(pruning)
	return nil
}

func readLocalState(db *sql.DB, doc *model.Document) error {
	l := &doc.LocalState
	var defaultAlignment int64
	var startHead, endHead int64
	var startBlockID, endBlockID sql.NullString
	err := db.QueryRow(`SELECT scroll_x, scroll_y, zoom, is_binding_enabled, default_opacity, default_font,
		default_alignment, default_roundness, default_line_head_start, default_line_head_start_block_id,
		default_line_head_start_size, default_line_head_end, default_line_head_end_block_id,
		default_line_head_end_size, ui_mode_flags, decimal_places
		FROM `+schema.TableLocalState+` WHERE id = 1`).Scan(
		&l.ScrollX, &l.ScrollY, &l.Zoom, &l.IsBindingEnabled, &l.DefaultOpacity, &l.DefaultFont,
		&defaultAlignment, &l.DefaultRoundness, &startHead, &startBlockID, &l.DefaultLineHeadStart.Size,
		&endHead, &endBlockID, &l.DefaultLineHeadEnd.Size, &l.UIModeFlags, &l.DecimalPlaces)
	if err != nil {
		return duerr.Wrap(err, duerr.InvalidData, "document: read local state")
	}
	l.DefaultAlignment = enum.DecodeTextAlign(defaultAlignment)
	l.DefaultLineHeadStart.Head = enum.DecodeLineHead(startHead)
	l.DefaultLineHeadStart.BlockID = nullableStringFromSQL(startBlockID)
	l.DefaultLineHeadEnd.Head = enum.DecodeLineHead(endHead)
	l.DefaultLineHeadEnd.BlockID = nullableStringFromSQL(endBlockID)

	strokes, err := style.ReadStrokes(db, model.OwnerLocalState, "1")
	if err != nil {
		return err
	}
	if len(strokes) > 0 {
		l.DefaultStroke = strokes[0]
	}
	backgrounds, err := style.ReadBackgrounds(db, model.OwnerLocalState, "1")
	if err != nil {
		return err
	}
	if len(backgrounds) > 0 {
		l.DefaultBackground = backgrounds[0]
	}
	return nil
}

func readDictionary(db *sql.DB, doc *model.Document) error {
	rows, err := db.Query(`SELECT key, value FROM ` + schema.TableDictionary)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: query dictionary")
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return duerr.Wrap(err, duerr.Db, "document: scan dictionary entry")
		}
		doc.Dictionary[k] = v
	}
	return rows.Err()
}

func readContainers(db *sql.DB, doc *model.Document) error {
	layerRows, err := db.Query(`SELECT sp.id, sp.label, sp.description, sp.collapsed, sp.plot, sp.visible,
		sp.locked, sp.opacity, l.readonly FROM ` + schema.TableLayers + ` l JOIN ` + schema.TableStackProperties + ` sp ON sp.id = l.id`)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: query layers")
	}
	for layerRows.Next() {
		var layer model.Layer
		var description sql.NullString
		if err := layerRows.Scan(&layer.ID, &layer.Label, &description, &layer.Collapsed, &layer.Plot,
			&layer.Visible, &layer.Locked, &layer.Opacity, &layer.Readonly); err != nil {
			layerRows.Close()
			return duerr.Wrap(err, duerr.Db, "document: scan layer")
		}
		layer.Description = nullableStringFromSQL(description)
		doc.Layers = append(doc.Layers, layer)
	}
	layerErr := layerRows.Err()
	layerRows.Close()
	if layerErr != nil {
		return duerr.Wrap(layerErr, duerr.Db, "document: iterate layers")
	}
	for i := range doc.Layers {
		strokes, err := style.ReadStrokes(db, model.OwnerLayer, doc.Layers[i].ID)
		if err != nil {
			return err
		}
		if len(strokes) > 0 {
			doc.Layers[i].StrokeOverride = &strokes[0]
		}
		backgrounds, err := style.ReadBackgrounds(db, model.OwnerLayer, doc.Layers[i].ID)
		if err != nil {
			return err
		}
		if len(backgrounds) > 0 {
			doc.Layers[i].BackgroundOverride = &backgrounds[0]
		}
	}

	groupRows, err := db.Query(`SELECT sp.id, sp.label, sp.description, sp.collapsed, sp.plot, sp.visible,
		sp.locked, sp.opacity FROM ` + schema.TableGroups + ` g JOIN ` + schema.TableStackProperties + ` sp ON sp.id = g.id`)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: query groups")
	}
	for groupRows.Next() {
		var g model.Group
		var description sql.NullString
		if err := groupRows.Scan(&g.ID, &g.Label, &description, &g.Collapsed, &g.Plot, &g.Visible, &g.Locked, &g.Opacity); err != nil {
			groupRows.Close()
			return duerr.Wrap(err, duerr.Db, "document: scan group")
		}
		g.Description = nullableStringFromSQL(description)
		doc.Groups = append(doc.Groups, g)
	}
	groupErr := groupRows.Err()
	groupRows.Close()
	if groupErr != nil {
		return duerr.Wrap(groupErr, duerr.Db, "document: iterate groups")
	}

	regionRows, err := db.Query(`SELECT sp.id, sp.label, sp.description, sp.collapsed, sp.plot, sp.visible,
		sp.locked, sp.opacity, r.operation FROM ` + schema.TableRegions + ` r JOIN ` + schema.TableStackProperties + ` sp ON sp.id = r.id`)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: query regions")
	}
	for regionRows.Next() {
		var r model.Region
		var description sql.NullString
		var op int64
		if err := regionRows.Scan(&r.ID, &r.Label, &description, &r.Collapsed, &r.Plot, &r.Visible, &r.Locked, &r.Opacity, &op); err != nil {
			regionRows.Close()
			return duerr.Wrap(err, duerr.Db, "document: scan region")
		}
		r.Description = nullableStringFromSQL(description)
		r.Operation = enum.DecodeBooleanOperation(op)
		doc.Regions = append(doc.Regions, r)
	}
	regionErr := regionRows.Err()
	regionRows.Close()
	return duerr.Wrap(regionErr, duerr.Db, "document: iterate regions")
}

func readBlockMetadata(db *sql.DB, metaID sql.NullInt64) (*model.BlockMetadata, error) {
	if !metaID.Valid {
		return nil, nil
	}
	var m model.BlockMetadata
	var source sql.NullString
	var createdAt, updatedAt sql.NullInt64
	var localization sql.NullString
	err := db.QueryRow(`SELECT source, usage_count, created_at, updated_at, localization
		FROM `+schema.TableBlockMetadata+` WHERE id = ?`, metaID.Int64).Scan(
		&source, &m.UsageCount, &createdAt, &updatedAt, &localization)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "document: read block metadata")
	}
	m.Source = nullableStringFromSQL(source)
	if createdAt.Valid {
		t := timeFromMillis(createdAt.Int64)
		m.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := timeFromMillis(updatedAt.Int64)
		m.UpdatedAt = &t
	}
	loc, err := unmarshalLocalization(nullableStringFromSQL(localization))
	if err != nil {
		return nil, err
	}
	m.Localization = loc
	return &m, nil
}

func readBlocks(db *sql.DB, doc *model.Document) error {
	rows, err := db.Query(`SELECT id, label, description, metadata_id, thumbnail FROM ` + schema.TableBlocks)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: query blocks")
	}
	type row struct {
		id, label   string
		description sql.NullString
		metaID      sql.NullInt64
		thumbnail   []byte
	}
	var blockRows []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.label, &r.description, &r.metaID, &r.thumbnail); err != nil {
			rows.Close()
			return duerr.Wrap(err, duerr.Db, "document: scan block")
		}
		blockRows = append(blockRows, r)
	}
	rowsErr := rows.Err()
	rows.Close()
	if rowsErr != nil {
		return duerr.Wrap(rowsErr, duerr.Db, "document: iterate blocks")
	}
	for _, r := range blockRows {
		meta, err := readBlockMetadata(db, r.metaID)
		if err != nil {
			return err
		}
		doc.Blocks = append(doc.Blocks, model.Block{
			ID: r.id, Label: r.label, Description: nullableStringFromSQL(r.description),
			Metadata: meta, Thumbnail: r.thumbnail,
		})
	}

	instRows, err := db.Query(`SELECT id, block_id, x, y, angle, duplication_rows, duplication_cols,
		duplication_spacing_x, duplication_spacing_y, metadata_id FROM ` + schema.TableBlockInstances)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: query block instances")
	}
	type instRow struct {
		id, blockID            string
		x, y, angle            float64
		rows, cols             sql.NullInt64
		spacingX, spacingY     sql.NullFloat64
		metaID                 sql.NullInt64
	}
	var instances []instRow
	for instRows.Next() {
		var r instRow
		if err := instRows.Scan(&r.id, &r.blockID, &r.x, &r.y, &r.angle, &r.rows, &r.cols,
			&r.spacingX, &r.spacingY, &r.metaID); err != nil {
			instRows.Close()
			return duerr.Wrap(err, duerr.Db, "document: scan block instance")
		}
		instances = append(instances, r)
	}
	instErr := instRows.Err()
	instRows.Close()
	if instErr != nil {
		return duerr.Wrap(instErr, duerr.Db, "document: iterate block instances")
	}
	for _, r := range instances {
		meta, err := readBlockMetadata(db, r.metaID)
		if err != nil {
			return err
		}
		bi := model.BlockInstance{ID: r.id, BlockID: r.blockID, X: r.x, Y: r.y, Angle: r.angle, Metadata: meta}
		if r.rows.Valid {
			bi.Duplication = &model.DuplicationArray{
				Rows: int(r.rows.Int64), Cols: int(r.cols.Int64),
				SpacingX: r.spacingX.Float64, SpacingY: r.spacingY.Float64,
			}
		}
		overrides, err := readBlockInstanceOverrides(db, r.id)
		if err != nil {
			return err
		}
		bi.ElementOverrides = overrides
		doc.BlockInstances = append(doc.BlockInstances, bi)
	}

	collRows, err := db.Query(`SELECT id, label, metadata_id, thumbnail FROM ` + schema.TableBlockCollections)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "document: query block collections")
	}
	type collRow struct {
		id, label string
		metaID    sql.NullInt64
		thumbnail []byte
	}
	var colls []collRow
	for collRows.Next() {
		var r collRow
		if err := collRows.Scan(&r.id, &r.label, &r.metaID, &r.thumbnail); err != nil {
			collRows.Close()
			return duerr.Wrap(err, duerr.Db, "document: scan block collection")
		}
		colls = append(colls, r)
	}
	collErr := collRows.Err()
	collRows.Close()
	if collErr != nil {
		return duerr.Wrap(collErr, duerr.Db, "document: iterate block collections")
	}
	for _, r := range colls {
		meta, err := readBlockMetadata(db, r.metaID)
		if err != nil {
			return err
		}
		blockIDs, err := readOrderedBlockIDs(db, r.id)
		if err != nil {
			return err
		}
		doc.BlockCollections = append(doc.BlockCollections, model.BlockCollection{
			ID: r.id, Label: r.label, BlockIDs: blockIDs, Metadata: meta, Thumbnail: r.thumbnail,
		})
	}
	return nil
}

func readBlockInstanceOverrides(db *sql.DB, instanceID string) (map[string]string, error) {
	rows, err := db.Query(`SELECT element_id, override_value FROM `+schema.TableBlockInstanceOverrides+` WHERE instance_id = ?`, instanceID)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "document: query block instance overrides")
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var elemID, value string
		if err := rows.Scan(&elemID, &value); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "document: scan block instance override")
		}
		out[elemID] = value
	}
	if len(out) == 0 {
		return nil, rows.Err()
	}
	return out, rows.Err()
}

func readOrderedBlockIDs(db *sql.DB, collectionID string) ([]string, error) {
	rows, err := db.Query(`SELECT block_id FROM `+schema.TableBlockCollectionEntries+
		` WHERE collection_id = ? ORDER BY sort_order ASC`, collectionID)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "document: query block collection entries")
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "document: scan block collection entry")
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func readExternalFiles(db *sql.DB) (map[string]model.ExternalFile, error) {
	rows, err := db.Query(`SELECT id, mime_type, data, created, last_retrieved, version FROM ` + schema.TableExternalFiles)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "document: query external files")
	}
	defer rows.Close()
	out := map[string]model.ExternalFile{}
	for rows.Next() {
		var id string
		var f model.ExternalFile
		var created, lastRetrieved int64
		if err := rows.Scan(&id, &f.MimeType, &f.Data, &created, &lastRetrieved, &f.Version); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "document: scan external file")
		}
		f.Created = timeFromMillis(created)
		f.LastRetrieved = timeFromMillis(lastRetrieved)
		out[id] = f
	}
	return out, rows.Err()
}

func nullableStringFromSQL(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}
