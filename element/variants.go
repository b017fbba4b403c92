package element

import (
	"database/sql"

	"github.com/ducflair/ducgo/duerr"
	"github.com/ducflair/ducgo/enum"
	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/schema"
	"github.com/ducflair/ducgo/style"
)

func init() {
	// Marker-only variants: the master row is the whole story.
	for _, t := range []model.ElementType{
		model.ElementRectangle, model.ElementXRay, model.ElementParametric, model.ElementEmbeddable,
	} {
		register(t, variantCodec{})
	}

	register(model.ElementPolygon, variantCodec{write: writePolygon, read: readPolygon})
	register(model.ElementEllipse, variantCodec{write: writeEllipse, read: readEllipse})
	register(model.ElementText, variantCodec{write: writeText, read: readText})
	register(model.ElementImage, variantCodec{write: writeImage, read: readImage})
	register(model.ElementFreeDraw, variantCodec{write: writeFreeDraw, read: readFreeDraw})
	register(model.ElementLinear, variantCodec{write: writeLinear, read: readLinear})
	register(model.ElementArrow, variantCodec{write: writeLinear, read: readLinear})
	register(model.ElementFrame, variantCodec{write: writeFrame, read: readFrame})
	register(model.ElementPlot, variantCodec{write: writePlot, read: readPlot})
	register(model.ElementPdf, variantCodec{write: writePdf, read: readPdf})
	register(model.ElementDoc, variantCodec{write: writeDoc, read: readDoc})
	register(model.ElementTable, variantCodec{write: writeTable, read: readTable})
	register(model.ElementModel, variantCodec{write: writeModel, read: readModel})
}

// ── Polygon ───────────────────────────────────────────────────────────────

func writePolygon(ex execer, id string, e model.Element) error {
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementPolygon+` (element_id, sides) VALUES (?,?)`,
		id, e.Polygon.Sides)
	return duerr.Wrap(err, duerr.Db, "element: insert polygon")
}

func readPolygon(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var p model.PolygonElement
	err := q.QueryRow(`SELECT sides FROM `+schema.TableElementPolygon+` WHERE element_id = ?`, id).Scan(&p.Sides)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read polygon")
	}
	return model.Element{Base: base, Polygon: &p}, nil
}

// ── Ellipse ───────────────────────────────────────────────────────────────

func writeEllipse(ex execer, id string, e model.Element) error {
	el := e.Ellipse
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementEllipse+
		` (element_id, ratio, start_angle, end_angle, show_aux_crosshair) VALUES (?,?,?,?,?)`,
		id, el.Ratio, el.StartAngle, el.EndAngle, el.ShowAuxCrosshair)
	return duerr.Wrap(err, duerr.Db, "element: insert ellipse")
}

func readEllipse(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var el model.EllipseElement
	err := q.QueryRow(`SELECT ratio, start_angle, end_angle, show_aux_crosshair FROM `+schema.TableElementEllipse+
		` WHERE element_id = ?`, id).Scan(&el.Ratio, &el.StartAngle, &el.EndAngle, &el.ShowAuxCrosshair)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read ellipse")
	}
	return model.Element{Base: base, Ellipse: &el}, nil
}

// ── Text ──────────────────────────────────────────────────────────────────

func writeText(ex execer, id string, e model.Element) error {
	t := e.Text
	fontsJSON, err := marshalStrings(t.Style.Fonts)
	if err != nil {
		return err
	}
	var lineSpacingType any
	if t.Style.LineSpacing.Type != nil {
		lineSpacingType = enum.EncodeLineSpacingType(*t.Style.LineSpacing.Type)
	}
	_, err = ex.Exec(`INSERT INTO `+schema.TableElementText+
		` (element_id, text, original_text, auto_resize, container_id, direction, fonts, align, vertical_align,
		   line_height, line_spacing_value, line_spacing_type, oblique_angle, font_size, width_factor,
		   upside_down, backwards)
		  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, t.Text, nullableString(t.OriginalText), t.AutoResize, nullableString(t.ContainerID), t.Style.Direction,
		fontsJSON, enum.EncodeTextAlign(t.Style.Align), enum.EncodeVerticalAlign(t.Style.VerticalAlign),
		t.Style.LineHeight, t.Style.LineSpacing.Value, lineSpacingType, t.Style.ObliqueAngle, t.Style.FontSize,
		t.Style.WidthFactor, t.Style.UpsideDown, t.Style.Backwards)
	return duerr.Wrap(err, duerr.Db, "element: insert text")
}

func readText(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var t model.TextElement
	var originalText, containerID sql.NullString
	var fontsJSON string
	var align, verticalAlign int64
	var lineSpacingType sql.NullInt64
	err := q.QueryRow(`SELECT text, original_text, auto_resize, container_id, direction, fonts, align,
		vertical_align, line_height, line_spacing_value, line_spacing_type, oblique_angle, font_size,
		width_factor, upside_down, backwards FROM `+schema.TableElementText+` WHERE element_id = ?`, id).Scan(
		&t.Text, &originalText, &t.AutoResize, &containerID, &t.Style.Direction, &fontsJSON, &align, &verticalAlign,
		&t.Style.LineHeight, &t.Style.LineSpacing.Value, &lineSpacingType, &t.Style.ObliqueAngle, &t.Style.FontSize,
		&t.Style.WidthFactor, &t.Style.UpsideDown, &t.Style.Backwards)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read text")
	}
	t.OriginalText = nullableStringFromSQL(originalText)
	t.ContainerID = nullableStringFromSQL(containerID)
	fonts, err := unmarshalStrings(fontsJSON)
	if err != nil {
		return model.Element{}, err
	}
	t.Style.Fonts = fonts
	t.Style.Align = enum.DecodeTextAlign(align)
	t.Style.VerticalAlign = enum.DecodeVerticalAlign(verticalAlign)
	if lineSpacingType.Valid {
		v := enum.DecodeLineSpacingType(lineSpacingType.Int64)
		t.Style.LineSpacing.Type = &v
	}
	return model.Element{Base: base, Text: &t}, nil
}

// ── Image ─────────────────────────────────────────────────────────────────

func writeImage(ex execer, id string, e model.Element) error {
	img := e.Image
	var cropX, cropY, cropW, cropH, cropNW, cropNH any
	if img.Crop != nil {
		cropX, cropY, cropW, cropH = img.Crop.X, img.Crop.Y, img.Crop.Width, img.Crop.Height
		cropNW, cropNH = img.Crop.NaturalWidth, img.Crop.NaturalHeight
	}
	var filterBri, filterCon any
	if img.Filter != nil {
		filterBri, filterCon = img.Filter.Brightness, img.Filter.Contrast
	}
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementImage+
		` (element_id, file_id, status, scale_x, scale_y, crop_x, crop_y, crop_width, crop_height,
		   crop_natural_width, crop_natural_height, filter_brightness, filter_contrast)
		  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, nullableString(img.FileID), enum.EncodeImageStatus(img.Status), img.ScaleX, img.ScaleY,
		cropX, cropY, cropW, cropH, cropNW, cropNH, filterBri, filterCon)
	return duerr.Wrap(err, duerr.Db, "element: insert image")
}

func readImage(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var img model.ImageElement
	var fileID sql.NullString
	var status int64
	var cropX, cropY, cropW, cropH, cropNW, cropNH sql.NullFloat64
	var filterBri, filterCon sql.NullFloat64
	err := q.QueryRow(`SELECT file_id, status, scale_x, scale_y, crop_x, crop_y, crop_width, crop_height,
		crop_natural_width, crop_natural_height, filter_brightness, filter_contrast
		FROM `+schema.TableElementImage+` WHERE element_id = ?`, id).Scan(
		&fileID, &status, &img.ScaleX, &img.ScaleY, &cropX, &cropY, &cropW, &cropH, &cropNW, &cropNH,
		&filterBri, &filterCon)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read image")
	}
	img.FileID = nullableStringFromSQL(fileID)
	img.Status = enum.DecodeImageStatus(status)
	if cropX.Valid {
		img.Crop = &model.CropRectangle{
			X: cropX.Float64, Y: cropY.Float64, Width: cropW.Float64, Height: cropH.Float64,
			NaturalWidth: cropNW.Float64, NaturalHeight: cropNH.Float64,
		}
	}
	if filterBri.Valid || filterCon.Valid {
		img.Filter = &model.ImageFilter{Brightness: filterBri.Float64, Contrast: filterCon.Float64}
	}
	return model.Element{Base: base, Image: &img}, nil
}

// ── FreeDraw ──────────────────────────────────────────────────────────────

func writeFreeDraw(ex execer, id string, e model.Element) error {
	f := e.FreeDraw
	var lastX, lastY any
	if f.LastCommittedPoint != nil {
		lastX, lastY = f.LastCommittedPoint.X, f.LastCommittedPoint.Y
	}
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementFreeDraw+
		` (element_id, end_start_cap, end_start_taper, end_start_easing, end_end_cap, end_end_taper,
		   end_end_easing, simulate_pressure, last_committed_x, last_committed_y, svg_path, size, thinning,
		   smoothing, streamline, easing)
		  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, enum.EncodeStrokeCap(f.EndStart.Cap), f.EndStart.Taper, f.EndStart.Easing,
		enum.EncodeStrokeCap(f.EndEnd.Cap), f.EndEnd.Taper, f.EndEnd.Easing, f.SimulatePressure,
		lastX, lastY, nullableString(f.SVGPath), f.Size, f.Thinning, f.Smoothing, f.Streamline, f.Easing)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "element: insert freedraw")
	}
	for i, p := range f.Points {
		var mirroring any
		if p.Mirroring != nil {
			mirroring = enum.EncodeBezierMirroring(*p.Mirroring)
		}
		var pressure float32
		if i < len(f.Pressures) {
			pressure = f.Pressures[i]
		}
		if _, err := ex.Exec(`INSERT INTO `+schema.TableFreeDrawPoints+
			` (element_id, sort_order, x, y, mirroring, pressure) VALUES (?,?,?,?,?,?)`,
			id, i, p.X, p.Y, mirroring, pressure); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert freedraw point")
		}
	}
	return nil
}

func readFreeDraw(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var f model.FreeDrawElement
	var startCap, endCap int64
	var lastX, lastY sql.NullFloat64
	var svgPath sql.NullString
	err := q.QueryRow(`SELECT end_start_cap, end_start_taper, end_start_easing, end_end_cap, end_end_taper,
		end_end_easing, simulate_pressure, last_committed_x, last_committed_y, svg_path, size, thinning,
		smoothing, streamline, easing FROM `+schema.TableElementFreeDraw+` WHERE element_id = ?`, id).Scan(
		&startCap, &f.EndStart.Taper, &f.EndStart.Easing, &endCap, &f.EndEnd.Taper, &f.EndEnd.Easing,
		&f.SimulatePressure, &lastX, &lastY, &svgPath, &f.Size, &f.Thinning, &f.Smoothing, &f.Streamline, &f.Easing)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read freedraw")
	}
	f.EndStart.Cap = enum.DecodeStrokeCap(startCap)
	f.EndEnd.Cap = enum.DecodeStrokeCap(endCap)
	if lastX.Valid {
		f.LastCommittedPoint = &model.Point{X: lastX.Float64, Y: lastY.Float64}
	}
	f.SVGPath = nullableStringFromSQL(svgPath)

	rows, err := q.Query(`SELECT x, y, mirroring, pressure FROM `+schema.TableFreeDrawPoints+
		` WHERE element_id = ? ORDER BY sort_order ASC`, id)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: query freedraw points")
	}
	defer rows.Close()
	for rows.Next() {
		var p model.FreeDrawPoint
		var mirroring sql.NullInt64
		var pressure float32
		if err := rows.Scan(&p.X, &p.Y, &mirroring, &pressure); err != nil {
			return model.Element{}, duerr.Wrap(err, duerr.Db, "element: scan freedraw point")
		}
		if mirroring.Valid {
			v := enum.DecodeBezierMirroring(mirroring.Int64)
			p.Mirroring = &v
		}
		f.Points = append(f.Points, p)
		f.Pressures = append(f.Pressures, pressure)
	}
	if err := rows.Err(); err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: iterate freedraw points")
	}
	return model.Element{Base: base, FreeDraw: &f}, nil
}

// ── Linear / Arrow ──────────────────────────────────────────────────────────

func writeLinear(ex execer, id string, e model.Element) error {
	l := e.Linear
	var lastX, lastY any
	if l.LastCommittedPoint != nil {
		lastX, lastY = l.LastCommittedPoint.X, l.LastCommittedPoint.Y
	}
	bs := bindingColumns(l.BindingStart)
	be := bindingColumns(l.BindingEnd)
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementLinear+
		` (element_id, last_committed_x, last_committed_y, wipeout_below, elbowed,
		   binding_start_element_id, binding_start_focus, binding_start_gap, binding_start_fixed_x,
		   binding_start_fixed_y, binding_start_point_index, binding_start_point_offset,
		   binding_start_head_type, binding_start_head_block_id, binding_start_head_size,
		   binding_end_element_id, binding_end_focus, binding_end_gap, binding_end_fixed_x,
		   binding_end_fixed_y, binding_end_point_index, binding_end_point_offset,
		   binding_end_head_type, binding_end_head_block_id, binding_end_head_size)
		  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		id, lastX, lastY, l.WipeoutBelow, l.Elbowed,
		bs.elementID, bs.focus, bs.gap, bs.fixedX, bs.fixedY, bs.pointIndex, bs.pointOffset, bs.headType, bs.headBlockID, bs.headSize,
		be.elementID, be.focus, be.gap, be.fixedX, be.fixedY, be.pointIndex, be.pointOffset, be.headType, be.headBlockID, be.headSize)
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "element: insert linear")
	}
	for i, p := range l.Points {
		if _, err := ex.Exec(`INSERT INTO `+schema.TableLinearPoints+
			` (element_id, sort_order, x, y) VALUES (?,?,?,?)`, id, i, p.X, p.Y); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert linear point")
		}
	}
	for i, line := range l.Lines {
		var startHX, startHY, endHX, endHY any
		if line.Start.Handle != nil {
			startHX, startHY = line.Start.Handle.X, line.Start.Handle.Y
		}
		if line.End.Handle != nil {
			endHX, endHY = line.End.Handle.X, line.End.Handle.Y
		}
		if _, err := ex.Exec(`INSERT INTO `+schema.TableLinearLines+
			` (element_id, sort_order, start_index, start_handle_x, start_handle_y, end_index, end_handle_x, end_handle_y)
			  VALUES (?,?,?,?,?,?,?,?)`,
			id, i, line.Start.PointIndex, startHX, startHY, line.End.PointIndex, endHX, endHY); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert linear line")
		}
	}
	for i, po := range l.PathOverrides {
		res, err := ex.Exec(`INSERT INTO `+schema.TableLinearPathOverrides+
			` (element_id, sort_order) VALUES (?,?)`, id, i)
		if err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert path override")
		}
		overrideID, err := res.LastInsertId()
		if err != nil {
			return duerr.Wrap(err, duerr.Db, "element: path override id")
		}
		for j, idx := range po.LineIndices {
			if _, err := ex.Exec(`INSERT INTO `+schema.TableLinearPathOverrideIndices+
				` (path_override_id, sort_order, line_index) VALUES (?,?,?)`, overrideID, j, idx); err != nil {
				return duerr.Wrap(err, duerr.Db, "element: insert path override index")
			}
		}
		if po.Background != nil {
			if err := style.WriteBackground(ex, model.OwnerPathOverride, itoa(overrideID), 0, *po.Background); err != nil {
				return err
			}
		}
		if po.Stroke != nil {
			if err := style.WriteStroke(ex, model.OwnerPathOverride, itoa(overrideID), 0, *po.Stroke); err != nil {
				return err
			}
		}
	}
	return nil
}

type bindingCols struct {
	elementID, headBlockID              any
	focus, gap, fixedX, fixedY, headSize any
	pointIndex, pointOffset              any
	headType                             any
}

func bindingColumns(b *model.LinearBinding) bindingCols {
	if b == nil {
		return bindingCols{}
	}
	c := bindingCols{elementID: b.ElementID, focus: b.Focus, gap: b.Gap}
	if b.FixedPoint != nil {
		c.fixedX, c.fixedY = b.FixedPoint.X, b.FixedPoint.Y
	}
	c.pointIndex = nullableInt(b.PointIndex)
	c.pointOffset = nullableFloat(b.PointOffset)
	if b.Head != nil {
		c.headType = enum.EncodeLineHead(*b.Head)
	}
	c.headBlockID = nullableString(b.HeadBlockID)
	c.headSize = nullableFloat(b.HeadSize)
	return c
}

func readLinear(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var l model.LinearElement
	var lastX, lastY sql.NullFloat64
	var bsElem, beElem, bsHeadBlock, beHeadBlock sql.NullString
	var bsFocus, bsGap, bsFixedX, bsFixedY, bsPointOffset, bsHeadSize sql.NullFloat64
	var beFocus, beGap, beFixedX, beFixedY, bePointOffset, beHeadSize sql.NullFloat64
	var bsPointIndex, bePointIndex sql.NullInt64
	var bsHeadType, beHeadType sql.NullInt64

	err := q.QueryRow(`SELECT last_committed_x, last_committed_y, wipeout_below, elbowed,
		binding_start_element_id, binding_start_focus, binding_start_gap, binding_start_fixed_x,
		binding_start_fixed_y, binding_start_point_index, binding_start_point_offset,
		binding_start_head_type, binding_start_head_block_id, binding_start_head_size,
		binding_end_element_id, binding_end_focus, binding_end_gap, binding_end_fixed_x,
		binding_end_fixed_y, binding_end_point_index, binding_end_point_offset,
		binding_end_head_type, binding_end_head_block_id, binding_end_head_size
		FROM `+schema.TableElementLinear+` WHERE element_id = ?`, id).Scan(
		&lastX, &lastY, &l.WipeoutBelow, &l.Elbowed,
		&bsElem, &bsFocus, &bsGap, &bsFixedX, &bsFixedY, &bsPointIndex, &bsPointOffset, &bsHeadType, &bsHeadBlock, &bsHeadSize,
		&beElem, &beFocus, &beGap, &beFixedX, &beFixedY, &bePointIndex, &bePointOffset, &beHeadType, &beHeadBlock, &beHeadSize)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read linear")
	}
	if lastX.Valid {
		l.LastCommittedPoint = &model.Point{X: lastX.Float64, Y: lastY.Float64}
	}
	l.BindingStart = bindingFromColumns(bsElem, bsFocus, bsGap, bsFixedX, bsFixedY, bsPointIndex, bsPointOffset, bsHeadType, bsHeadBlock, bsHeadSize)
	l.BindingEnd = bindingFromColumns(beElem, beFocus, beGap, beFixedX, beFixedY, bePointIndex, bePointOffset, beHeadType, beHeadBlock, beHeadSize)

	pointRows, err := q.Query(`SELECT x, y FROM `+schema.TableLinearPoints+` WHERE element_id = ? ORDER BY sort_order ASC`, id)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: query linear points")
	}
	defer pointRows.Close()
	for pointRows.Next() {
		var p model.LinearPoint
		if err := pointRows.Scan(&p.X, &p.Y); err != nil {
			return model.Element{}, duerr.Wrap(err, duerr.Db, "element: scan linear point")
		}
		l.Points = append(l.Points, p)
	}
	if err := pointRows.Err(); err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: iterate linear points")
	}

	lineRows, err := q.Query(`SELECT start_index, start_handle_x, start_handle_y, end_index, end_handle_x, end_handle_y
		FROM `+schema.TableLinearLines+` WHERE element_id = ? ORDER BY sort_order ASC`, id)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: query linear lines")
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var line model.LinearLine
		var startHX, startHY, endHX, endHY sql.NullFloat64
		if err := lineRows.Scan(&line.Start.PointIndex, &startHX, &startHY, &line.End.PointIndex, &endHX, &endHY); err != nil {
			return model.Element{}, duerr.Wrap(err, duerr.Db, "element: scan linear line")
		}
		if startHX.Valid {
			line.Start.Handle = &model.LineHandle{X: startHX.Float64, Y: startHY.Float64}
		}
		if endHX.Valid {
			line.End.Handle = &model.LineHandle{X: endHX.Float64, Y: endHY.Float64}
		}
		l.Lines = append(l.Lines, line)
	}
	if err := lineRows.Err(); err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: iterate linear lines")
	}

	overrideRows, err := q.Query(`SELECT id FROM `+schema.TableLinearPathOverrides+
		` WHERE element_id = ? ORDER BY sort_order ASC`, id)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: query path overrides")
	}
	var overrideIDs []int64
	for overrideRows.Next() {
		var overrideID int64
		if err := overrideRows.Scan(&overrideID); err != nil {
			overrideRows.Close()
			return model.Element{}, duerr.Wrap(err, duerr.Db, "element: scan path override")
		}
		overrideIDs = append(overrideIDs, overrideID)
	}
	overrideErr := overrideRows.Err()
	overrideRows.Close()
	if overrideErr != nil {
		return model.Element{}, duerr.Wrap(overrideErr, duerr.Db, "element: iterate path overrides")
	}

	for _, overrideID := range overrideIDs {
		po := model.PathOverride{}
		idxRows, err := q.Query(`SELECT line_index FROM `+schema.TableLinearPathOverrideIndices+
			` WHERE path_override_id = ? ORDER BY sort_order ASC`, overrideID)
		if err != nil {
			return model.Element{}, duerr.Wrap(err, duerr.Db, "element: query path override indices")
		}
		for idxRows.Next() {
			var idx int
			if err := idxRows.Scan(&idx); err != nil {
				idxRows.Close()
				return model.Element{}, duerr.Wrap(err, duerr.Db, "element: scan path override index")
			}
			po.LineIndices = append(po.LineIndices, idx)
		}
		idxErr := idxRows.Err()
		idxRows.Close()
		if idxErr != nil {
			return model.Element{}, duerr.Wrap(idxErr, duerr.Db, "element: iterate path override indices")
		}

		backgrounds, err := style.ReadBackgrounds(q, model.OwnerPathOverride, itoa(overrideID))
		if err != nil {
			return model.Element{}, err
		}
		if len(backgrounds) > 0 {
			po.Background = &backgrounds[0]
		}
		strokes, err := style.ReadStrokes(q, model.OwnerPathOverride, itoa(overrideID))
		if err != nil {
			return model.Element{}, err
		}
		if len(strokes) > 0 {
			po.Stroke = &strokes[0]
		}
		l.PathOverrides = append(l.PathOverrides, po)
	}

	return model.Element{Base: base, Linear: &l}, nil
}

func bindingFromColumns(elemID sql.NullString, focus, gap, fixedX, fixedY sql.NullFloat64,
	pointIndex sql.NullInt64, pointOffset sql.NullFloat64, headType sql.NullInt64, headBlock sql.NullString,
	headSize sql.NullFloat64) *model.LinearBinding {
	if !elemID.Valid {
		return nil
	}
	b := &model.LinearBinding{ElementID: elemID.String, Focus: focus.Float64, Gap: gap.Float64}
	if fixedX.Valid {
		b.FixedPoint = &model.Point{X: fixedX.Float64, Y: fixedY.Float64}
	}
	b.PointIndex = nullableIntFromSQL(pointIndex)
	b.PointOffset = nullableFloatFromSQL(pointOffset)
	if headType.Valid {
		v := enum.DecodeLineHead(headType.Int64)
		b.Head = &v
	}
	b.HeadBlockID = nullableStringFromSQL(headBlock)
	b.HeadSize = nullableFloatFromSQL(headSize)
	return b
}

// ── Frame / Plot (stack-like elements) ─────────────────────────────────────

func writeStackProperties(ex execer, id string, s model.StackElement) error {
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementStackProperties+
		` (element_id, label, description, collapsed, plot, visible, locked, opacity, clip, label_visible)
		  VALUES (?,?,?,?,?,?,?,?,?,?)`,
		id, s.Label, nullableString(s.Description), s.Collapsed, s.Plot, s.Visible, s.Locked, s.Opacity, s.Clip, s.LabelVisible)
	return duerr.Wrap(err, duerr.Db, "element: insert stack properties")
}

func readStackProperties(q queryer, id string) (model.StackElement, error) {
	var s model.StackElement
	var description sql.NullString
	err := q.QueryRow(`SELECT label, description, collapsed, plot, visible, locked, opacity, clip, label_visible
		FROM `+schema.TableElementStackProperties+` WHERE element_id = ?`, id).Scan(
		&s.Label, &description, &s.Collapsed, &s.Plot, &s.Visible, &s.Locked, &s.Opacity, &s.Clip, &s.LabelVisible)
	if err != nil {
		return s, duerr.Wrap(err, duerr.Db, "element: read stack properties")
	}
	s.Description = nullableStringFromSQL(description)
	return s, nil
}

func writeFrame(ex execer, id string, e model.Element) error {
	if err := writeStackProperties(ex, id, *e.Stack); err != nil {
		return err
	}
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementFrame+` (element_id) VALUES (?)`, id)
	return duerr.Wrap(err, duerr.Db, "element: insert frame")
}

func readFrame(q queryer, id string, base model.ElementBase) (model.Element, error) {
	s, err := readStackProperties(q, id)
	if err != nil {
		return model.Element{}, err
	}
	return model.Element{Base: base, Stack: &s}, nil
}

func writePlot(ex execer, id string, e model.Element) error {
	p := e.Plot
	if err := writeStackProperties(ex, id, p.Stack); err != nil {
		return err
	}
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementPlot+
		` (element_id, margin_top, margin_right, margin_bottom, margin_left) VALUES (?,?,?,?,?)`,
		id, p.Margins.Top, p.Margins.Right, p.Margins.Bottom, p.Margins.Left)
	return duerr.Wrap(err, duerr.Db, "element: insert plot")
}

func readPlot(q queryer, id string, base model.ElementBase) (model.Element, error) {
	s, err := readStackProperties(q, id)
	if err != nil {
		return model.Element{}, err
	}
	p := model.PlotElement{Stack: s}
	err = q.QueryRow(`SELECT margin_top, margin_right, margin_bottom, margin_left
		FROM `+schema.TableElementPlot+` WHERE element_id = ?`, id).Scan(
		&p.Margins.Top, &p.Margins.Right, &p.Margins.Bottom, &p.Margins.Left)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read plot margins")
	}
	return model.Element{Base: base, Plot: &p}, nil
}

// ── Pdf / Doc / Table (document-grid elements) ─────────────────────────────

func writeDocumentGrid(ex execer, id string, g model.DocumentGridConfig) error {
	_, err := ex.Exec(`INSERT INTO `+schema.TableDocumentGridConfig+
		` (element_id, columns, gap_x, gap_y, first_page_alone, scale) VALUES (?,?,?,?,?,?)`,
		id, g.Columns, g.GapX, g.GapY, g.FirstPageAlone, g.Scale)
	return duerr.Wrap(err, duerr.Db, "element: insert document grid")
}

func readDocumentGrid(q queryer, id string) (model.DocumentGridConfig, error) {
	var g model.DocumentGridConfig
	err := q.QueryRow(`SELECT columns, gap_x, gap_y, first_page_alone, scale
		FROM `+schema.TableDocumentGridConfig+` WHERE element_id = ?`, id).Scan(
		&g.Columns, &g.GapX, &g.GapY, &g.FirstPageAlone, &g.Scale)
	if err != nil {
		return g, duerr.Wrap(err, duerr.Db, "element: read document grid")
	}
	return g, nil
}

func writePdf(ex execer, id string, e model.Element) error {
	p := e.Pdf
	if _, err := ex.Exec(`INSERT INTO `+schema.TableElementPdf+` (element_id, file_id) VALUES (?,?)`,
		id, nullableString(p.FileID)); err != nil {
		return duerr.Wrap(err, duerr.Db, "element: insert pdf")
	}
	return writeDocumentGrid(ex, id, p.Grid)
}

func readPdf(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var fileID sql.NullString
	if err := q.QueryRow(`SELECT file_id FROM `+schema.TableElementPdf+` WHERE element_id = ?`, id).Scan(&fileID); err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read pdf")
	}
	grid, err := readDocumentGrid(q, id)
	if err != nil {
		return model.Element{}, err
	}
	return model.Element{Base: base, Pdf: &model.PdfElement{FileID: nullableStringFromSQL(fileID), Grid: grid}}, nil
}

func writeDoc(ex execer, id string, e model.Element) error {
	d := e.Doc
	if _, err := ex.Exec(`INSERT INTO `+schema.TableElementDoc+` (element_id, file_id, text) VALUES (?,?,?)`,
		id, nullableString(d.FileID), d.Text); err != nil {
		return duerr.Wrap(err, duerr.Db, "element: insert doc")
	}
	return writeDocumentGrid(ex, id, d.Grid)
}

func readDoc(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var fileID sql.NullString
	var text string
	if err := q.QueryRow(`SELECT file_id, text FROM `+schema.TableElementDoc+` WHERE element_id = ?`, id).Scan(&fileID, &text); err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read doc")
	}
	grid, err := readDocumentGrid(q, id)
	if err != nil {
		return model.Element{}, err
	}
	return model.Element{Base: base, Doc: &model.DocElement{FileID: nullableStringFromSQL(fileID), Grid: grid, Text: text}}, nil
}

func writeTable(ex execer, id string, e model.Element) error {
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementTable+` (element_id, file_id) VALUES (?,?)`,
		id, nullableString(e.Table.FileID))
	return duerr.Wrap(err, duerr.Db, "element: insert table")
}

func readTable(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var fileID sql.NullString
	if err := q.QueryRow(`SELECT file_id FROM `+schema.TableElementTable+` WHERE element_id = ?`, id).Scan(&fileID); err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read table")
	}
	return model.Element{Base: base, Table: &model.TableElement{FileID: nullableStringFromSQL(fileID)}}, nil
}

// ── Model (3D/CAD viewer) ───────────────────────────────────────────────────

func writeModel(ex execer, id string, e model.Element) error {
	m := e.Model
	_, err := ex.Exec(`INSERT INTO `+schema.TableElementModel+
		` (element_id, model_type, code, svg_path) VALUES (?,?,?,?)`,
		id, m.ModelType, nullableString(m.Code), nullableString(m.SVGPath))
	if err != nil {
		return duerr.Wrap(err, duerr.Db, "element: insert model")
	}
	for i, fileID := range m.FileIDs {
		if _, err := ex.Exec(`INSERT INTO `+schema.TableModelElementFiles+
			` (element_id, sort_order, file_id) VALUES (?,?,?)`, id, i, fileID); err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert model file")
		}
	}
	if m.Viewer != nil {
		v := m.Viewer
		_, err := ex.Exec(`INSERT INTO `+schema.TableModelViewerState+
			` (element_id, camera_position_x, camera_position_y, camera_position_z, camera_target_x,
			   camera_target_y, camera_target_z, display, material, clip_x_enabled, clip_x_offset,
			   clip_y_enabled, clip_y_offset, clip_z_enabled, clip_z_offset, explode, zebra)
			  VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			id, v.CameraPosition.X, v.CameraPosition.Y, v.CameraPosition.Z,
			v.CameraTarget.X, v.CameraTarget.Y, v.CameraTarget.Z, v.Display, v.Material,
			v.ClipX.Enabled, v.ClipX.Offset, v.ClipY.Enabled, v.ClipY.Offset, v.ClipZ.Enabled, v.ClipZ.Offset,
			v.Explode, v.Zebra)
		if err != nil {
			return duerr.Wrap(err, duerr.Db, "element: insert model viewer state")
		}
	}
	return nil
}

func readModel(q queryer, id string, base model.ElementBase) (model.Element, error) {
	var m model.ModelElement
	var code, svgPath sql.NullString
	err := q.QueryRow(`SELECT model_type, code, svg_path FROM `+schema.TableElementModel+` WHERE element_id = ?`, id).
		Scan(&m.ModelType, &code, &svgPath)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read model")
	}
	m.Code = nullableStringFromSQL(code)
	m.SVGPath = nullableStringFromSQL(svgPath)

	rows, err := q.Query(`SELECT file_id FROM `+schema.TableModelElementFiles+
		` WHERE element_id = ? ORDER BY sort_order ASC`, id)
	if err != nil {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: query model files")
	}
	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			rows.Close()
			return model.Element{}, duerr.Wrap(err, duerr.Db, "element: scan model file")
		}
		m.FileIDs = append(m.FileIDs, fileID)
	}
	rowsErr := rows.Err()
	rows.Close()
	if rowsErr != nil {
		return model.Element{}, duerr.Wrap(rowsErr, duerr.Db, "element: iterate model files")
	}

	var v model.ModelViewerState
	err = q.QueryRow(`SELECT camera_position_x, camera_position_y, camera_position_z, camera_target_x,
		camera_target_y, camera_target_z, display, material, clip_x_enabled, clip_x_offset, clip_y_enabled,
		clip_y_offset, clip_z_enabled, clip_z_offset, explode, zebra
		FROM `+schema.TableModelViewerState+` WHERE element_id = ?`, id).Scan(
		&v.CameraPosition.X, &v.CameraPosition.Y, &v.CameraPosition.Z,
		&v.CameraTarget.X, &v.CameraTarget.Y, &v.CameraTarget.Z, &v.Display, &v.Material,
		&v.ClipX.Enabled, &v.ClipX.Offset, &v.ClipY.Enabled, &v.ClipY.Offset, &v.ClipZ.Enabled, &v.ClipZ.Offset,
		&v.Explode, &v.Zebra)
	if err == nil {
		m.Viewer = &v
	} else if err != sql.ErrNoRows {
		return model.Element{}, duerr.Wrap(err, duerr.Db, "element: read model viewer state")
	}

	return model.Element{Base: base, Model: &m}, nil
}
