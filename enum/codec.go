// Package enum implements the bidirectional integer<->tagged-variant
// mapping for every enumerated domain value in the document model.
//
// Every enum travels on the wire as a small integer, starting at 10 so low
// values stay free for future variants the current schema doesn't know
// about yet. Decoding an unrecognized integer coerces to the first
// (default) variant rather than failing -- this is what makes old readers
// tolerant of newer writers. Encoding always emits the canonical integer
// for the given variant; there is no lossy direction.
package enum

import "github.com/ducflair/ducgo/model"

// table maps a contiguous run of Go enum ordinals (0, 1, 2, ...) to their
// canonical wire codes. Codes need not be contiguous or start at 0, but in
// this catalog they all start at 10 and increment by one.
type table []int64

func newTable(base int, n int) table {
	t := make(table, n)
	for i := range t {
		t[i] = int64(base + i)
	}
	return t
}

// encode returns the canonical wire code for a Go ordinal. Out-of-range
// ordinals are a programmer error (they'd mean model and enum drifted
// apart), so they encode as the base/default code rather than panicking.
func (t table) encode(ordinal int) int64 {
	if ordinal < 0 || ordinal >= len(t) {
		return t[0]
	}
	return t[ordinal]
}

// decode maps a wire code back to a Go ordinal, defaulting to 0 (the first
// variant) for anything unrecognized.
func (t table) decode(code int64) int {
	for i, c := range t {
		if c == code {
			return i
		}
	}
	return 0
}

var (
	verticalAlignTable     = newTable(10, 3)
	textAlignTable         = newTable(10, 3)
	lineSpacingTypeTable   = newTable(10, 2)
	strokePlacementTable   = newTable(10, 3)
	strokePreferenceTable  = newTable(10, 6) // shares vocabulary with ContentPreference
	strokeSidePrefTable    = newTable(10, 2)
	strokeCapTable         = newTable(10, 3)
	strokeJoinTable        = newTable(10, 3)
	lineHeadTable          = newTable(10, 7)
	bezierMirroringTable   = newTable(10, 3)
	blendingTable          = newTable(10, 6)
	contentPreferenceTable = newTable(10, 6)
	hatchStyleTable        = newTable(10, 3)
	imageStatusTable       = newTable(10, 3)
	pruningLevelTable      = newTable(10, 3)
	booleanOperationTable  = newTable(10, 4)
	antiAliasingTable      = newTable(10, 3)
)

// EncodeVerticalAlign / DecodeVerticalAlign round-trip model.VerticalAlign.
func EncodeVerticalAlign(v model.VerticalAlign) int64 { return verticalAlignTable.encode(int(v)) }
func DecodeVerticalAlign(code int64) model.VerticalAlign {
	return model.VerticalAlign(verticalAlignTable.decode(code))
}

func EncodeTextAlign(v model.TextAlign) int64 { return textAlignTable.encode(int(v)) }
func DecodeTextAlign(code int64) model.TextAlign {
	return model.TextAlign(textAlignTable.decode(code))
}

func EncodeLineSpacingType(v model.LineSpacingType) int64 {
	return lineSpacingTypeTable.encode(int(v))
}
func DecodeLineSpacingType(code int64) model.LineSpacingType {
	return model.LineSpacingType(lineSpacingTypeTable.decode(code))
}

func EncodeStrokePlacement(v model.StrokePlacement) int64 {
	return strokePlacementTable.encode(int(v))
}
func DecodeStrokePlacement(code int64) model.StrokePlacement {
	return model.StrokePlacement(strokePlacementTable.decode(code))
}

func EncodeStrokePreference(v model.StrokePreference) int64 {
	return strokePreferenceTable.encode(int(v))
}
func DecodeStrokePreference(code int64) model.StrokePreference {
	return model.StrokePreference(strokePreferenceTable.decode(code))
}

func EncodeStrokeSidePreference(v model.StrokeSidePreference) int64 {
	return strokeSidePrefTable.encode(int(v))
}
func DecodeStrokeSidePreference(code int64) model.StrokeSidePreference {
	return model.StrokeSidePreference(strokeSidePrefTable.decode(code))
}

func EncodeStrokeCap(v model.StrokeCap) int64 { return strokeCapTable.encode(int(v)) }
func DecodeStrokeCap(code int64) model.StrokeCap {
	return model.StrokeCap(strokeCapTable.decode(code))
}

func EncodeStrokeJoin(v model.StrokeJoin) int64 { return strokeJoinTable.encode(int(v)) }
func DecodeStrokeJoin(code int64) model.StrokeJoin {
	return model.StrokeJoin(strokeJoinTable.decode(code))
}

func EncodeLineHead(v model.LineHead) int64 { return lineHeadTable.encode(int(v)) }
func DecodeLineHead(code int64) model.LineHead {
	return model.LineHead(lineHeadTable.decode(code))
}

func EncodeBezierMirroring(v model.BezierMirroring) int64 {
	return bezierMirroringTable.encode(int(v))
}
func DecodeBezierMirroring(code int64) model.BezierMirroring {
	return model.BezierMirroring(bezierMirroringTable.decode(code))
}

func EncodeBlending(v model.BlendingMode) int64 { return blendingTable.encode(int(v)) }
func DecodeBlending(code int64) model.BlendingMode {
	return model.BlendingMode(blendingTable.decode(code))
}

func EncodeContentPreference(v model.ContentPreference) int64 {
	return contentPreferenceTable.encode(int(v))
}
func DecodeContentPreference(code int64) model.ContentPreference {
	return model.ContentPreference(contentPreferenceTable.decode(code))
}

func EncodeHatchStyle(v model.HatchStyle) int64 { return hatchStyleTable.encode(int(v)) }
func DecodeHatchStyle(code int64) model.HatchStyle {
	return model.HatchStyle(hatchStyleTable.decode(code))
}

func EncodeImageStatus(v model.ImageStatus) int64 { return imageStatusTable.encode(int(v)) }
func DecodeImageStatus(code int64) model.ImageStatus {
	return model.ImageStatus(imageStatusTable.decode(code))
}

func EncodePruningLevel(v model.PruningLevel) int64 { return pruningLevelTable.encode(int(v)) }
func DecodePruningLevel(code int64) model.PruningLevel {
	return model.PruningLevel(pruningLevelTable.decode(code))
}

func EncodeBooleanOperation(v model.BooleanOperation) int64 {
	return booleanOperationTable.encode(int(v))
}
func DecodeBooleanOperation(code int64) model.BooleanOperation {
	return model.BooleanOperation(booleanOperationTable.decode(code))
}

func EncodeAntiAliasing(v model.AntiAliasing) int64 { return antiAliasingTable.encode(int(v)) }
func DecodeAntiAliasing(code int64) model.AntiAliasing {
	return model.AntiAliasing(antiAliasingTable.decode(code))
}
