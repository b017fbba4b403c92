// Package style implements the Style Blob Codec: the read/write side of the
// polymorphic backgrounds/strokes/hatch_pattern_lines tables (keyed by
// owner_type/owner_id/sort_order, or owner_table/owner_row_id for hatch
// lines) and the little-endian float64 blob encoding used for dash arrays
// and stroke-side values. Grounded on the teacher library's id3v1 fixed-size
// binary struct reads and mp3's encoding/binary-driven frame header parsing,
// generalized here to a variable-length float slice instead of a fixed
// struct.
package style

import (
	"database/sql"
	"encoding/binary"
	"math"

	"github.com/ducflair/ducgo/duerr"
	"github.com/ducflair/ducgo/enum"
	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/schema"
)

// execer/queryer let callers pass either *sql.DB or *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}
type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// EncodeFloatBlob packs values as consecutive little-endian float64s. Used
// for dash arrays and stroke-side value lists; nil/empty encodes to nil.
func EncodeFloatBlob(values []float64) []byte {
	if len(values) == 0 {
		return nil
	}
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// DecodeFloatBlob reverses EncodeFloatBlob.
func DecodeFloatBlob(blob []byte) ([]float64, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	if len(blob)%8 != 0 {
		return nil, duerr.New(duerr.InvalidData, "style: float blob length is not a multiple of 8")
	}
	out := make([]float64, len(blob)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return out, nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// contentRow holds the set of columns shared by backgrounds and strokes.
type contentRow struct {
	preference  sql.NullInt64
	source      string
	visible     bool
	opacity     float64
	tilingSize  sql.NullFloat64
	tilingAngle sql.NullFloat64
	tilingSpace sql.NullFloat64
	tilingOffX  sql.NullFloat64
	tilingOffY  sql.NullFloat64
	hatchStyle  sql.NullInt64
	hatchPat    sql.NullString
	hatchScale  sql.NullFloat64
	hatchAngle  sql.NullFloat64
	hatchOrigX  sql.NullFloat64
	hatchOrigY  sql.NullFloat64
	hatchDouble sql.NullBool
	hatchName   sql.NullString
	hatchDesc   sql.NullString
	filterBri   sql.NullFloat64
	filterCon   sql.NullFloat64
}

func contentFromModel(c model.Content) (pref any, src string, vis bool, op float64,
	tSize, tAngle, tSpace, tOffX, tOffY any,
	hStyle any, hPat any, hScale, hAngle, hOrigX, hOrigY any, hDouble any, hName, hDesc any,
	fBri, fCon any) {

	src, vis, op = c.Source, c.Visible, c.Opacity
	if c.Preference != nil {
		pref = enum.EncodeContentPreference(*c.Preference)
	}
	if c.Tiling != nil {
		tSize, tAngle = c.Tiling.SizePercent, c.Tiling.Angle
		tSpace, tOffX, tOffY = nullableFloat(c.Tiling.Spacing), nullableFloat(c.Tiling.OffsetX), nullableFloat(c.Tiling.OffsetY)
	}
	if c.Hatch != nil {
		hStyle = enum.EncodeHatchStyle(c.Hatch.Style)
		hPat = c.Hatch.Pattern
		hScale, hAngle = c.Hatch.Scale, c.Hatch.Angle
		hOrigX, hOrigY = c.Hatch.Origin.X, c.Hatch.Origin.Y
		hDouble = c.Hatch.Double
		if c.Hatch.Custom != nil {
			hName = c.Hatch.Custom.Name
			hDesc = nullableString(c.Hatch.Custom.Description)
		}
	}
	if c.Filter != nil {
		fBri, fCon = c.Filter.Brightness, c.Filter.Contrast
	}
	return
}

func contentToModel(r contentRow) model.Content {
	c := model.Content{Source: r.source, Visible: r.visible, Opacity: r.opacity}
	if r.preference.Valid {
		p := enum.DecodeContentPreference(r.preference.Int64)
		c.Preference = &p
	}
	if r.tilingSize.Valid {
		t := &model.TilingConfig{SizePercent: r.tilingSize.Float64}
		if r.tilingAngle.Valid {
			t.Angle = r.tilingAngle.Float64
		}
		if r.tilingSpace.Valid {
			v := r.tilingSpace.Float64
			t.Spacing = &v
		}
		if r.tilingOffX.Valid {
			v := r.tilingOffX.Float64
			t.OffsetX = &v
		}
		if r.tilingOffY.Valid {
			v := r.tilingOffY.Float64
			t.OffsetY = &v
		}
		c.Tiling = t
	}
	if r.hatchStyle.Valid {
		h := &model.HatchConfig{
			Style: enum.DecodeHatchStyle(r.hatchStyle.Int64),
		}
		if r.hatchPat.Valid {
			h.Pattern = r.hatchPat.String
		}
		if r.hatchScale.Valid {
			h.Scale = r.hatchScale.Float64
		}
		if r.hatchAngle.Valid {
			h.Angle = r.hatchAngle.Float64
		}
		if r.hatchOrigX.Valid {
			h.Origin.X = r.hatchOrigX.Float64
		}
		if r.hatchOrigY.Valid {
			h.Origin.Y = r.hatchOrigY.Float64
		}
		if r.hatchDouble.Valid {
			h.Double = r.hatchDouble.Bool
		}
		if r.hatchName.Valid {
			custom := &model.CustomHatchPattern{Name: r.hatchName.String}
			if r.hatchDesc.Valid {
				d := r.hatchDesc.String
				custom.Description = &d
			}
			h.Custom = custom
		}
		c.Hatch = h
	}
	if r.filterBri.Valid || r.filterCon.Valid {
		c.Filter = &model.ImageFilter{Brightness: r.filterBri.Float64, Contrast: r.filterCon.Float64}
	}
	return c
}

// WriteBackground inserts one backgrounds row for the given owner.
func WriteBackground(ex execer, ownerType model.OwnerType, ownerID string, order int, bg model.Background) error {
	pref, src, vis, op, tSize, tAngle, tSpace, tOffX, tOffY, hStyle, hPat, hScale, hAngle, hOrigX, hOrigY, hDouble, hName, hDesc, fBri, fCon :=
		contentFromModel(bg.Content)
	res, err := ex.Exec(`INSERT INTO backgrounds
		(owner_type, owner_id, sort_order, content_preference, content_source, content_visible, content_opacity,
		 tiling_size_percent, tiling_angle, tiling_spacing, tiling_offset_x, tiling_offset_y,
		 hatch_style, hatch_pattern, hatch_scale, hatch_angle, hatch_origin_x, hatch_origin_y, hatch_double,
		 hatch_custom_name, hatch_custom_description, filter_brightness, filter_contrast)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		string(ownerType), ownerID, order, pref, src, vis, op, tSize, tAngle, tSpace, tOffX, tOffY,
		hStyle, hPat, hScale, hAngle, hOrigX, hOrigY, hDouble, hName, hDesc, fBri, fCon)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "style: insert background")
	}

	if bg.Content.Hatch != nil && bg.Content.Hatch.Custom != nil && len(bg.Content.Hatch.Custom.Lines) > 0 {
		rowID, err := res.LastInsertId()
		if err != nil {
			return duerr.Wrap(err, duerr.Db, "style: background last insert id")
		}
		if err := WriteHatchPatternLines(ex, schema.TableBackgrounds, rowID, bg.Content.Hatch.Custom.Lines); err != nil {
			return err
		}
	}
	return nil
}

// ReadBackgrounds returns all backgrounds for an owner, ordered by sort_order.
func ReadBackgrounds(q queryer, ownerType model.OwnerType, ownerID string) ([]model.Background, error) {
	rows, err := q.Query(`SELECT id, content_preference, content_source, content_visible, content_opacity,
		tiling_size_percent, tiling_angle, tiling_spacing, tiling_offset_x, tiling_offset_y,
		hatch_style, hatch_pattern, hatch_scale, hatch_angle, hatch_origin_x, hatch_origin_y, hatch_double,
		hatch_custom_name, hatch_custom_description, filter_brightness, filter_contrast
		FROM backgrounds WHERE owner_type = ? AND owner_id = ? ORDER BY sort_order ASC`, string(ownerType), ownerID)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "style: query backgrounds")
	}
	defer rows.Close()

	type pending struct {
		rowID int64
		bg    model.Background
	}
	var all []pending
	for rows.Next() {
		var id int64
		var r contentRow
		if err := rows.Scan(&id, &r.preference, &r.source, &r.visible, &r.opacity,
			&r.tilingSize, &r.tilingAngle, &r.tilingSpace, &r.tilingOffX, &r.tilingOffY,
			&r.hatchStyle, &r.hatchPat, &r.hatchScale, &r.hatchAngle, &r.hatchOrigX, &r.hatchOrigY, &r.hatchDouble,
			&r.hatchName, &r.hatchDesc, &r.filterBri, &r.filterCon); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "style: scan background")
		}
		all = append(all, pending{rowID: id, bg: model.Background{Content: contentToModel(r)}})
	}
	if err := rows.Err(); err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "style: iterate backgrounds")
	}

	out := make([]model.Background, len(all))
	for i, p := range all {
		if p.bg.Content.Hatch != nil && p.bg.Content.Hatch.Custom != nil {
			lines, err := ReadHatchPatternLines(q, schema.TableBackgrounds, p.rowID)
			if err != nil {
				return nil, err
			}
			p.bg.Content.Hatch.Custom.Lines = lines
		}
		out[i] = p.bg
	}
	return out, nil
}

// WriteStroke inserts one strokes row for the given owner.
func WriteStroke(ex execer, ownerType model.OwnerType, ownerID string, order int, s model.Stroke) error {
	pref, src, vis, op, tSize, tAngle, tSpace, tOffX, tOffY, hStyle, hPat, hScale, hAngle, hOrigX, hOrigY, hDouble, hName, hDesc, fBri, fCon :=
		contentFromModel(s.Content)

	var stylePref, styleCap, styleJoin, styleDashCap, placement, sidesPref any
	var dashOverride any
	var miterLimit any
	var dashBlob, sidesBlob []byte
	if s.Style.Preference != nil {
		stylePref = enum.EncodeStrokePreference(*s.Style.Preference)
	}
	if s.Style.Cap != nil {
		styleCap = enum.EncodeStrokeCap(*s.Style.Cap)
	}
	if s.Style.Join != nil {
		styleJoin = enum.EncodeStrokeJoin(*s.Style.Join)
	}
	if s.Style.DashCap != nil {
		styleDashCap = enum.EncodeStrokeCap(*s.Style.DashCap)
	}
	dashOverride = nullableString(s.Style.DashLineOverride)
	miterLimit = nullableFloat(s.Style.MiterLimit)
	dashBlob = EncodeFloatBlob(s.Style.Dash)
	if s.Placement != nil {
		placement = enum.EncodeStrokePlacement(*s.Placement)
	}
	if s.Sides != nil {
		if s.Sides.Preference != nil {
			sidesPref = enum.EncodeStrokeSidePreference(*s.Sides.Preference)
		}
		sidesBlob = EncodeFloatBlob(s.Sides.Values)
	}

	res, err := ex.Exec(`INSERT INTO strokes
		(owner_type, owner_id, sort_order, content_preference, content_source, content_visible, content_opacity,
		 tiling_size_percent, tiling_angle, tiling_spacing, tiling_offset_x, tiling_offset_y,
		 hatch_style, hatch_pattern, hatch_scale, hatch_angle, hatch_origin_x, hatch_origin_y, hatch_double,
		 hatch_custom_name, hatch_custom_description, filter_brightness, filter_contrast,
		 width, style_preference, style_cap, style_join, style_dash, style_dash_line_override, style_dash_cap,
		 style_miter_limit, placement, sides_preference, sides_values)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		string(ownerType), ownerID, order, pref, src, vis, op, tSize, tAngle, tSpace, tOffX, tOffY,
		hStyle, hPat, hScale, hAngle, hOrigX, hOrigY, hDouble, hName, hDesc, fBri, fCon,
		s.Width, stylePref, styleCap, styleJoin, dashBlob, dashOverride, styleDashCap, miterLimit,
		placement, sidesPref, sidesBlob)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "style: insert stroke")
	}

	if s.Content.Hatch != nil && s.Content.Hatch.Custom != nil && len(s.Content.Hatch.Custom.Lines) > 0 {
		rowID, err := res.LastInsertId()
		if err != nil {
			return duerr.Wrap(err, duerr.Db, "style: stroke last insert id")
		}
		if err := WriteHatchPatternLines(ex, schema.TableStrokes, rowID, s.Content.Hatch.Custom.Lines); err != nil {
			return err
		}
	}
	return nil
}

// ReadStrokes returns all strokes for an owner, ordered by sort_order.
func ReadStrokes(q queryer, ownerType model.OwnerType, ownerID string) ([]model.Stroke, error) {
	rows, err := q.Query(`SELECT id, content_preference, content_source, content_visible, content_opacity,
		tiling_size_percent, tiling_angle, tiling_spacing, tiling_offset_x, tiling_offset_y,
		hatch_style, hatch_pattern, hatch_scale, hatch_angle, hatch_origin_x, hatch_origin_y, hatch_double,
		hatch_custom_name, hatch_custom_description, filter_brightness, filter_contrast,
		width, style_preference, style_cap, style_join, style_dash, style_dash_line_override, style_dash_cap,
		style_miter_limit, placement, sides_preference, sides_values
		FROM strokes WHERE owner_type = ? AND owner_id = ? ORDER BY sort_order ASC`, string(ownerType), ownerID)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "style: query strokes")
	}
	defer rows.Close()

	type pending struct {
		rowID int64
		s     model.Stroke
	}
	var all []pending
	for rows.Next() {
		var id int64
		var r contentRow
		var width float64
		var stylePref, styleCap, styleJoin, styleDashCap sql.NullInt64
		var dashOverride sql.NullString
		var miterLimit sql.NullFloat64
		var placement, sidesPref sql.NullInt64
		var dashBlob, sidesBlob []byte

		if err := rows.Scan(&id, &r.preference, &r.source, &r.visible, &r.opacity,
			&r.tilingSize, &r.tilingAngle, &r.tilingSpace, &r.tilingOffX, &r.tilingOffY,
			&r.hatchStyle, &r.hatchPat, &r.hatchScale, &r.hatchAngle, &r.hatchOrigX, &r.hatchOrigY, &r.hatchDouble,
			&r.hatchName, &r.hatchDesc, &r.filterBri, &r.filterCon,
			&width, &stylePref, &styleCap, &styleJoin, &dashBlob, &dashOverride, &styleDashCap,
			&miterLimit, &placement, &sidesPref, &sidesBlob); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "style: scan stroke")
		}

		dash, err := DecodeFloatBlob(dashBlob)
		if err != nil {
			return nil, err
		}
		sides, err := DecodeFloatBlob(sidesBlob)
		if err != nil {
			return nil, err
		}

		s := model.Stroke{Content: contentToModel(r), Width: width}
		s.Style = model.StrokeStyle{Dash: dash, DashLineOverride: nullableStringFromSQL(dashOverride), MiterLimit: nullableFloatFromSQL(miterLimit)}
		if stylePref.Valid {
			v := enum.DecodeStrokePreference(stylePref.Int64)
			s.Style.Preference = &v
		}
		if styleCap.Valid {
			v := enum.DecodeStrokeCap(styleCap.Int64)
			s.Style.Cap = &v
		}
		if styleJoin.Valid {
			v := enum.DecodeStrokeJoin(styleJoin.Int64)
			s.Style.Join = &v
		}
		if styleDashCap.Valid {
			v := enum.DecodeStrokeCap(styleDashCap.Int64)
			s.Style.DashCap = &v
		}
		if placement.Valid {
			v := enum.DecodeStrokePlacement(placement.Int64)
			s.Placement = &v
		}
		if sidesPref.Valid || len(sides) > 0 {
			sd := &model.StrokeSides{Values: sides}
			if sidesPref.Valid {
				v := enum.DecodeStrokeSidePreference(sidesPref.Int64)
				sd.Preference = &v
			}
			s.Sides = sd
		}
		all = append(all, pending{rowID: id, s: s})
	}
	if err := rows.Err(); err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "style: iterate strokes")
	}

	out := make([]model.Stroke, len(all))
	for i, p := range all {
		if p.s.Content.Hatch != nil && p.s.Content.Hatch.Custom != nil {
			lines, err := ReadHatchPatternLines(q, schema.TableStrokes, p.rowID)
			if err != nil {
				return nil, err
			}
			p.s.Content.Hatch.Custom.Lines = lines
		}
		out[i] = p.s
	}
	return out, nil
}

func nullableStringFromSQL(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func nullableFloatFromSQL(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// WriteHatchPatternLines inserts the ordered custom-pattern lines belonging
// to one backgrounds or strokes row.
func WriteHatchPatternLines(ex execer, ownerTable string, ownerRowID int64, lines []model.CustomHatchPatternLine) error {
	for i, l := range lines {
		_, err := ex.Exec(`INSERT INTO hatch_pattern_lines
			(owner_table, owner_row_id, sort_order, angle, origin_x, origin_y, offset_x, offset_y, dash_pattern)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			ownerTable, ownerRowID, i, l.Angle, l.Origin.X, l.Origin.Y, l.OffsetX, l.OffsetY, EncodeFloatBlob(l.DashPattern))
		if err != nil {
			return duerr.Wrap(err, duerr.Db, "style: insert hatch pattern line")
		}
	}
	return nil
}

// ReadHatchPatternLines returns the ordered custom-pattern lines for one row.
func ReadHatchPatternLines(q queryer, ownerTable string, ownerRowID int64) ([]model.CustomHatchPatternLine, error) {
	rows, err := q.Query(`SELECT angle, origin_x, origin_y, offset_x, offset_y, dash_pattern
		FROM hatch_pattern_lines WHERE owner_table = ? AND owner_row_id = ? ORDER BY sort_order ASC`,
		ownerTable, ownerRowID)
	if err != nil {
		return nil, duerr.Wrap(err, duerr.Db, "style: query hatch pattern lines")
	}
	defer rows.Close()

	var out []model.CustomHatchPatternLine
	for rows.Next() {
		var l model.CustomHatchPatternLine
		var dashBlob []byte
		if err := rows.Scan(&l.Angle, &l.Origin.X, &l.Origin.Y, &l.OffsetX, &l.OffsetY, &dashBlob); err != nil {
			return nil, duerr.Wrap(err, duerr.Db, "style: scan hatch pattern line")
		}
		dash, err := DecodeFloatBlob(dashBlob)
		if err != nil {
			return nil, err
		}
		l.DashPattern = dash
		out = append(out, l)
	}
	return out, rows.Err()
}
