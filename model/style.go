package model

// Style structures are polymorphic: the same Background and Stroke shapes
// attach to elements, layers, the local-state default item style, and linear
// path overrides. The relational side keys them on (owner_type, owner_id,
// sort_order); see package style for the read/write side of that mapping.

// OwnerType names the table family a polymorphic style/row belongs to.
type OwnerType string

const (
	OwnerElement      OwnerType = "element"
	OwnerLayer        OwnerType = "layer"
	OwnerLocalState   OwnerType = "local_state"
	OwnerPathOverride OwnerType = "path_override"
)

// Point is a 2D coordinate, used both for geometry and for style content
// such as hatch line origins.
type Point struct {
	X float64
	Y float64
}

// TilingConfig describes a repeating-tile fill.
type TilingConfig struct {
	SizePercent float64
	Angle       float64
	Spacing     *float64
	OffsetX     *float64
	OffsetY     *float64
}

// CustomHatchPatternLine is one ordered line within a CustomHatchPattern.
type CustomHatchPatternLine struct {
	Angle       float64
	Origin      Point
	OffsetX     float64
	OffsetY     float64
	DashPattern []float64
}

// CustomHatchPattern is a user-defined cross-hatch pattern: a name, optional
// description, and an ordered list of lines (see HatchConfig.Custom).
type CustomHatchPattern struct {
	Name        string
	Description *string
	Lines       []CustomHatchPatternLine
}

// HatchConfig configures a hatch fill, built-in or custom.
type HatchConfig struct {
	Style   HatchStyle
	Pattern string
	Scale   float64
	Angle   float64
	Origin  Point
	Double  bool
	Custom  *CustomHatchPattern
}

// ImageFilter is the brightness/contrast adjustment applied to an image-type
// style content or an Image element.
type ImageFilter struct {
	Brightness float64
	Contrast   float64
}

// Content is the shared body of a Background or Stroke: a color/URL source,
// visibility and opacity, and the optional tiling/hatch/filter sub-configs.
type Content struct {
	Preference *ContentPreference
	Source     string
	Visible    bool
	Opacity    float64
	Tiling     *TilingConfig
	Hatch      *HatchConfig
	Filter     *ImageFilter
}

// Background is the simplest style attachment: just a Content.
type Background struct {
	Content Content
}

// StrokeStyle is the line-rendering configuration of a Stroke.
type StrokeStyle struct {
	Preference      *StrokePreference
	Cap             *StrokeCap
	Join            *StrokeJoin
	Dash            []float64
	DashLineOverride *string
	DashCap         *StrokeCap
	MiterLimit      *float64
}

// StrokeSides selects which sides of an element a Stroke applies to.
type StrokeSides struct {
	Preference *StrokeSidePreference
	Values     []float64
}

// Stroke is a Content plus line-rendering configuration.
type Stroke struct {
	Content   Content
	Width     float64
	Style     StrokeStyle
	Placement *StrokePlacement
	Sides     *StrokeSides
}
