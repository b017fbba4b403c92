package model

// The enum types below are the tagged-variant side of the integer<->variant
// mapping implemented by package enum. Each travels on the wire as a small
// integer (see package enum); the Go type here is just the decoded vocabulary.

// VerticalAlign selects the vertical anchor of text within its box.
type VerticalAlign int

const (
	VerticalAlignTop VerticalAlign = iota
	VerticalAlignMiddle
	VerticalAlignBottom
)

// TextAlign selects horizontal text alignment.
type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// LineSpacingType distinguishes a multiplier from an absolute spacing value.
type LineSpacingType int

const (
	LineSpacingMultiple LineSpacingType = iota
	LineSpacingExact
)

// StrokePlacement positions a stroke relative to the element's outline.
type StrokePlacement int

const (
	StrokePlacementCenter StrokePlacement = iota
	StrokePlacementInside
	StrokePlacementOutside
)

// StrokePreference selects a stroke fill strategy (solid, hatch, etc.);
// shares its vocabulary with ContentPreference (declared below).
type StrokePreference int

// StrokeSidePreference selects which logical sides a stroke applies to.
type StrokeSidePreference int

const (
	StrokeSideAll StrokeSidePreference = iota
	StrokeSideCustom
)

// StrokeCap selects the terminal shape of an open stroke.
type StrokeCap int

const (
	StrokeCapButt StrokeCap = iota
	StrokeCapRound
	StrokeCapSquare
)

// StrokeJoin selects the shape of a stroke's corners.
type StrokeJoin int

const (
	StrokeJoinMiter StrokeJoin = iota
	StrokeJoinRound
	StrokeJoinBevel
)

// LineHead identifies a terminal decoration (arrowhead, dot, ...) on a
// linear/arrow element endpoint.
type LineHead int

const (
	LineHeadNone LineHead = iota
	LineHeadArrow
	LineHeadTriangle
	LineHeadCircle
	LineHeadDiamond
	LineHeadBar
	LineHeadBlock
)

// BezierMirroring describes how a FreeDraw point's incoming/outgoing handles
// mirror each other.
type BezierMirroring int

const (
	BezierMirroringNone BezierMirroring = iota
	BezierMirroringAngle
	BezierMirroringAngleLength
)

// BlendingMode is the optional compositing mode applied to an element.
type BlendingMode int

const (
	BlendingNormal BlendingMode = iota
	BlendingMultiply
	BlendingScreen
	BlendingOverlay
	BlendingDarken
	BlendingLighten
)

// ContentPreference selects how style content is rendered: a flat color,
// an image fill, a repeating tile, or a hatch pattern.
type ContentPreference int

const (
	ContentPreferenceSolid ContentPreference = iota
	ContentPreferenceFill
	ContentPreferenceFit
	ContentPreferenceTile
	ContentPreferenceStretch
	ContentPreferenceHatch
)

// HatchStyle selects a built-in cross-hatch pattern, or "custom" to defer to
// a CustomHatchPattern.
type HatchStyle int

const (
	HatchStyleSingle HatchStyle = iota
	HatchStyleCross
	HatchStyleCustom
)

// ImageStatus tracks the lifecycle of an Image element's backing asset.
type ImageStatus int

const (
	ImageStatusPending ImageStatus = iota
	ImageStatusLoaded
	ImageStatusError
)

// PruningLevel controls how aggressively the history subsystem is allowed
// to discard old versions.
type PruningLevel int

const (
	PruningLevelNone PruningLevel = iota
	PruningLevelConservative
	PruningLevelAggressive
)

// BooleanOperation is the region-combination discriminator.
type BooleanOperation int

const (
	BooleanUnion BooleanOperation = iota
	BooleanSubtract
	BooleanIntersect
	BooleanExclude
)

// AntiAliasing selects the rendering hint carried by an element's local
// display settings.
type AntiAliasing int

const (
	AntiAliasingNone AntiAliasing = iota
	AntiAliasingAnalytic
	AntiAliasingMSAA
)
