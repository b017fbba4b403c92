package model

// ElementType is the string discriminator stored in the `elements` table's
// `element_type` column and dispatched on by package element.
type ElementType string

const (
	ElementRectangle  ElementType = "rectangle"
	ElementEmbeddable ElementType = "embeddable"
	ElementXRay       ElementType = "xray"
	ElementParametric ElementType = "parametric"
	ElementPolygon    ElementType = "polygon"
	ElementEllipse    ElementType = "ellipse"
	ElementText       ElementType = "text"
	ElementImage      ElementType = "image"
	ElementFreeDraw   ElementType = "freedraw"
	ElementLinear     ElementType = "linear"
	ElementArrow      ElementType = "arrow"
	ElementFrame      ElementType = "frame"
	ElementPlot       ElementType = "plot"
	ElementPdf        ElementType = "pdf"
	ElementDoc        ElementType = "doc"
	ElementTable      ElementType = "table"
	ElementModel      ElementType = "model"
)

// BoundElementRef is a back-reference from one element to a sibling that is
// bound to it (e.g. a text label bound to a container shape).
type BoundElementRef struct {
	ElementID string
	Type      ElementType
}

// ElementBase is the state shared by every element variant.
type ElementBase struct {
	ID          string
	Type        ElementType
	X, Y        float64
	Width, Height float64
	Angle       float64
	Scope       string
	Label       string
	Description *string
	Visible     bool
	Seed        int
	Version     int
	VersionNonce int
	Updated     int64
	Index       string
	IsPlot      bool
	IsDeleted   bool
	Roundness   float64
	Blending    *BlendingMode
	Opacity     float64
	Backgrounds []Background
	Strokes     []Stroke
	InstanceID  *string
	LayerID     *string
	FrameID     *string
	ZIndex      int
	Link        *string
	Locked      bool
	CustomData  []byte
	GroupIDs    []string
	BlockIDs    []string
	RegionIDs   []string
	BoundElements []BoundElementRef
}

// Element is the sum type: a tagged base plus exactly one non-nil variant
// payload, dispatched on Base.Type. Only one of the variant fields below is
// populated for any given element, matching the relational side's one
// master row + one side-table row per variant.
type Element struct {
	Base ElementBase

	Polygon   *PolygonElement
	Ellipse   *EllipseElement
	Text      *TextElement
	Image     *ImageElement
	FreeDraw  *FreeDrawElement
	Linear    *LinearElement
	Stack     *StackElement
	Plot      *PlotElement
	Pdf       *PdfElement
	Doc       *DocElement
	Table     *TableElement
	Model     *ModelElement
}

// PolygonElement: a regular polygon with a side count.
type PolygonElement struct {
	Sides int
}

// EllipseElement: ratio plus optional partial-arc angles.
type EllipseElement struct {
	Ratio             float64
	StartAngle        float64
	EndAngle          float64
	ShowAuxCrosshair  bool
}

// LineSpacing couples a spacing value with its optional interpretation type.
type LineSpacing struct {
	Value float64
	Type  *LineSpacingType
}

// TextStyle is the full text-rendering configuration of a Text element.
type TextStyle struct {
	Direction     string
	Fonts         []string
	Align         TextAlign
	VerticalAlign VerticalAlign
	LineHeight    float64
	LineSpacing   LineSpacing
	ObliqueAngle  float64
	FontSize      float64
	WidthFactor   float64
	UpsideDown    bool
	Backwards     bool
}

// TextElement: literal text content plus the struct above.
type TextElement struct {
	Text         string
	OriginalText *string
	AutoResize   bool
	ContainerID  *string
	Style        TextStyle
}

// CropRectangle describes an Image element's crop box in its natural pixel
// dimensions.
type CropRectangle struct {
	X, Y, Width, Height float64
	NaturalWidth, NaturalHeight float64
}

// ImageElement: a reference to an external file plus transform/crop/filter
// state.
type ImageElement struct {
	FileID  *string
	Status  ImageStatus
	ScaleX, ScaleY float64
	Crop    *CropRectangle
	Filter  *ImageFilter
}

// FreeDrawPoint is one ordered point of a FreeDraw stroke, with an optional
// Bezier-mirroring hint.
type FreeDrawPoint struct {
	X, Y      float64
	Mirroring *BezierMirroring
}

// StrokeEnd describes the cap/taper/easing applied to one end of a
// FreeDraw or Linear stroke.
type StrokeEnd struct {
	Cap    StrokeCap
	Taper  float64
	Easing string
}

// FreeDrawElement: an ordered point/pressure trail plus rendering config.
type FreeDrawElement struct {
	Points            []FreeDrawPoint
	Pressures         []float32
	EndStart, EndEnd  StrokeEnd
	SimulatePressure  bool
	LastCommittedPoint *Point
	SVGPath           *string
	Size              float64
	Thinning          float64
	Smoothing         float64
	Streamline        float64
	Easing            string
}

// LinearPoint is one ordered vertex of a Linear/Arrow element.
type LinearPoint struct {
	X, Y float64
}

// LineHandle is an optional Bezier control handle on one endpoint of a
// LinearLine.
type LineHandle struct {
	X, Y float64
}

// LinearLineRef references a point by index, with an optional handle.
type LinearLineRef struct {
	PointIndex int
	Handle     *LineHandle
}

// LinearLine connects a start to an end point reference.
type LinearLine struct {
	Start LinearLineRef
	End   LinearLineRef
}

// PathOverride styles a subset of a Linear/Arrow element's line segments
// (referenced by index into Lines), carrying its own ordered child list of
// line indices and optional style.
type PathOverride struct {
	LineIndices []int
	Background  *Background
	Stroke      *Stroke
}

// LinearBinding attaches one endpoint of a Linear/Arrow element to another
// element.
type LinearBinding struct {
	ElementID   string
	Focus       float64
	Gap         float64
	FixedPoint  *Point
	PointIndex  *int
	PointOffset *float64
	Head        *LineHead
	HeadBlockID *string
	HeadSize    *float64
}

// LinearElement: ordered points, lines, path overrides, and optional
// end-bindings. Linear adds WipeoutBelow; Arrow adds Elbowed (both carried
// on this shared struct with the inapplicable field left at its zero
// value, mirroring the base-type reuse in spec.md §3.3).
type LinearElement struct {
	Points             []LinearPoint
	Lines              []LinearLine
	PathOverrides      []PathOverride
	LastCommittedPoint *Point
	BindingStart       *LinearBinding
	BindingEnd         *LinearBinding
	WipeoutBelow       bool
	Elbowed            bool
}

// StackElement is the Frame/Plot shared base: an element base plus the
// stack-like visibility/lock/opacity fields and a clip flag.
type StackElement struct {
	Label         string
	Description   *string
	Collapsed     bool
	Plot          bool
	Visible       bool
	Locked        bool
	Opacity       float64
	Clip          bool
	LabelVisible  bool
}

// Margins are four-sided insets, used by Plot.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// PlotElement adds margins on top of StackElement.
type PlotElement struct {
	Stack   StackElement
	Margins Margins
}

// DocumentGridConfig lays PDF/Doc pages out on a grid.
type DocumentGridConfig struct {
	Columns         int
	GapX, GapY      float64
	FirstPageAlone  bool
	Scale           float64
}

// PdfElement references an external asset holding the PDF payload.
type PdfElement struct {
	FileID *string
	Grid   DocumentGridConfig
}

// DocElement is a Pdf-like element that also carries literal text content.
type DocElement struct {
	FileID *string
	Grid   DocumentGridConfig
	Text   string
}

// TableElement references an external asset holding the tabular payload.
type TableElement struct {
	FileID *string
}

// ClippingPlane configures per-axis model clipping.
type ClippingPlane struct {
	Enabled bool
	Offset  float64
}

// ModelViewerState is the 3D-viewer configuration carried by a Model
// element: camera/display/material state, per-axis clipping, and the
// explode/zebra toggles.
type ModelViewerState struct {
	CameraPosition Point3
	CameraTarget   Point3
	Display        string
	Material       string
	ClipX, ClipY, ClipZ ClippingPlane
	Explode        float64
	Zebra          bool
}

// Point3 is a 3D coordinate (camera position/target).
type Point3 struct {
	X, Y, Z float64
}

// ModelElement: a CAD/3D model reference plus optional viewer state.
type ModelElement struct {
	ModelType string
	Code      *string
	SVGPath   *string
	FileIDs   []string
	Viewer    *ModelViewerState
}
