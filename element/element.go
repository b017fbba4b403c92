// Package element implements the Element Codec: the relational mapping
// between model.Element's tagged-union variants and the elements master
// table plus its per-variant side tables. Dispatch is a package-level
// registry keyed by model.ElementType, read once at startup and switched on
// by WriteElement/ReadElements -- the same shape as the teacher library's
// sound.go format registry (RegisterFormat + sniff/match) and flac.go's
// metadata-block-type switch, just keyed on a string column instead of a
// magic byte sequence.
package element

import (
	"database/sql"

	"github.com/ducflair/ducgo/duerr"
	"github.com/ducflair/ducgo/enum"
	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/schema"
	"github.com/ducflair/ducgo/style"
)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// variantCodec is the per-ElementType read/write pair. write persists the
// side-table row(s) for one element (the base row is already committed by
// the time it runs); read loads and attaches the variant payload onto an
// otherwise-populated model.Element.
type variantCodec struct {
	write func(ex execer, id string, e model.Element) error
	read  func(q queryer, id string, base model.ElementBase) (model.Element, error)
}

var variants = map[model.ElementType]variantCodec{}

func register(t model.ElementType, c variantCodec) { variants[t] = c }

// WriteElement inserts the master row, all ordered child collections
// (backgrounds, strokes, bound-element refs, group/block/region
// memberships), and the variant side-table row(s) for one element. Callers
// are expected to run this inside a document-wide transaction (see package
// document); the z_index value for the element's own row is supplied by the
// caller via zIndex.
func WriteElement(ex execer, e model.Element, zIndex int) error {
	b := e.Base
	var blending any
	if b.Blending != nil {
		blending = enum.EncodeBlending(*b.Blending)
	}
	_, err := ex.Exec(`INSERT INTO `+schema.TableElements+`
		(id, element_type, x, y, width, height, angle, scope, label, description, visible, seed, version,
		 version_nonce, updated, elem_index, is_plot, is_deleted, roundness, blending, opacity, instance_id,
		 layer_id, frame_id, z_index, link, locked, custom_data)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, string(b.Type), b.X, b.Y, b.Width, b.Height, b.Angle, b.Scope, b.Label, nullableString(b.Description),
		b.Visible, b.Seed, b.Version, b.VersionNonce, b.Updated, b.Index, b.IsPlot, b.IsDeleted, b.Roundness,
		blending, b.Opacity, nullableString(b.InstanceID), nullableString(b.LayerID), nullableString(b.FrameID),
		zIndex, nullableString(b.Link), b.Locked, b.CustomData)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "element: insert base row")
	}

	for i, bg := range b.Backgrounds {
		if err := style.WriteBackground(ex, model.OwnerElement, b.ID, i, bg); err != nil {
			return err
		}
	}
	for i, s := range b.Strokes {
		if err := style.WriteStroke(ex, model.OwnerElement, b.ID, i, s); err != nil {
			return err
		}
	}
	for i, ref := range b.BoundElements {
		if _, err := ex.Exec(`INSERT INTO `+schema.TableElementBoundElements+
			` (owner_id, element_id, element_type, sort_order) VALUES (?,?,?,?)`,
			b.ID, ref.ElementID, string(ref.Type), i); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert bound element ref")
		}
	}
	for i, gid := range b.GroupIDs {
		if _, err := ex.Exec(`INSERT INTO `+schema.TableElementGroupMemberships+
			` (element_id, group_id, sort_order) VALUES (?,?,?)`, b.ID, gid, i); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert group membership")
		}
	}
	for i, bid := range b.BlockIDs {
		if _, err := ex.Exec(`INSERT INTO `+schema.TableElementBlockMemberships+
			` (element_id, block_id, sort_order) VALUES (?,?,?)`, b.ID, bid, i); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert block membership")
		}
	}
	for i, rid := range b.RegionIDs {
		if _, err := ex.Exec(`INSERT INTO `+schema.TableElementRegionMemberships+
			` (element_id, region_id, sort_order) VALUES (?,?,?)`, b.ID, rid, i); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert region membership")
		}
	}

	codec, ok := variants[b.Type]
	if !ok {
		return duerr.New(duerr.InvalidData, "element: unknown element_type "+string(b.Type))
	}
	if codec.write == nil {
		return nil // base-only variant (rectangle, xray, parametric, embeddable)
	}
	return codec.write(ex, b.ID, e)
}

// ReadElements loads every element row, ordered by z_index, with its full
// child collections and variant payload attached.
func ReadElements(q queryer) ([]model.Element, error) {
	rows, err := q.Query(`SELECT id, element_type, x, y, width, height, angle, scope, label, description,
		visible, seed, version, version_nonce, updated, elem_index, is_plot, is_deleted, roundness, blending,
		opacity, instance_id, layer_id, frame_id, link, locked, custom_data
		FROM ` + schema.TableElements + ` ORDER BY z_index ASC`)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "element: query elements")
	}
	defer rows.Close()

	var bases []model.ElementBase
	for rows.Next() {
		var b model.ElementBase
		var elementType string
		var description, instanceID, layerID, frameID, link sql.NullString
		var blending sql.NullInt64
		if err := rows.Scan(&b.ID, &elementType, &b.X, &b.Y, &b.Width, &b.Height, &b.Angle, &b.Scope, &b.Label,
			&description, &b.Visible, &b.Seed, &b.Version, &b.VersionNonce, &b.Updated, &b.Index, &b.IsPlot,
			&b.IsDeleted, &b.Roundness, &blending, &b.Opacity, &instanceID, &layerID, &frameID, &link, &b.Locked,
			&b.CustomData); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "element: scan base row")
		}
		b.Type = model.ElementType(elementType)
		b.Description = nullableStringFromSQL(description)
		b.InstanceID = nullableStringFromSQL(instanceID)
		b.LayerID = nullableStringFromSQL(layerID)
		b.FrameID = nullableStringFromSQL(frameID)
		b.Link = nullableStringFromSQL(link)
		if blending.Valid {
			v := enum.DecodeBlending(blending.Int64)
			b.Blending = &v
		}
		bases = append(bases, b)
	}
	if err := rows.Err(); err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "element: iterate elements")
	}

	out := make([]model.Element, 0, len(bases))
	for _, b := range bases {
		bg, err := style.ReadBackgrounds(q, model.OwnerElement, b.ID)
		if err != nil {
			return nil, err
		}
		st, err := style.ReadStrokes(q, model.OwnerElement, b.ID)
		if err != nil {
			return nil, err
		}
		b.Backgrounds, b.Strokes = bg, st

		b.BoundElements, err = readBoundElements(q, b.ID)
		if err != nil {
			return nil, err
		}
		b.GroupIDs, err = readOrderedRefs(q, schema.TableElementGroupMemberships, "group_id", b.ID)
		if err != nil {
			return nil, err
		}
		b.BlockIDs, err = readOrderedRefs(q, schema.TableElementBlockMemberships, "block_id", b.ID)
		if err != nil {
			return nil, err
		}
		b.RegionIDs, err = readOrderedRefs(q, schema.TableElementRegionMemberships, "region_id", b.ID)
		if err != nil {
			return nil, err
		}

		codec, ok := variants[b.Type]
		if !ok {
			return nil, duerr.New(duerr.InvalidData, "element: unknown element_type "+string(b.Type))
		}
		var e model.Element
		if codec.read == nil {
			e = model.Element{Base: b}
		} else {
			e, err = codec.read(q, b.ID, b)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, nil
}

func readBoundElements(q queryer, ownerID string) ([]model.BoundElementRef, error) {
	rows, err := q.Query(`SELECT element_id, element_type FROM `+schema.TableElementBoundElements+
		` WHERE owner_id = ? ORDER BY sort_order ASC`, ownerID)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "element: query bound elements")
	}
	defer rows.Close()
	var out []model.BoundElementRef
	for rows.Next() {
		var ref model.BoundElementRef
		var t string
		if err := rows.Scan(&ref.ElementID, &t); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "element: scan bound element")
		}
		ref.Type = model.ElementType(t)
		out = append(out, ref)
	}
	return out, rows.Err()
}

func readOrderedRefs(q queryer, table, column, elementID string) ([]string, error) {
	rows, err := q.Query(`SELECT `+column+` FROM `+table+` WHERE element_id = ? ORDER BY sort_order ASC`, elementID)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "element: query "+table)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "element: scan "+table)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableStringFromSQL(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableFloatFromSQL(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullableIntFromSQL(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
