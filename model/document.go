// Package model holds the in-memory representation of a .duc document: the
// deeply nested tree that packages container/storage/document round-trip to
// and from the relational image. Nothing in this package knows about SQL;
// it is pure data, the same way the teacher library's sound.Sound /
// sound.Tags / sound.Metadata are pure data shared by every format decoder.
package model

import "time"

// Document is the root container -- ExportedDataState in spec terms.
//
// Version control is deliberately not a field here: the version graph,
// chains, checkpoints, deltas, and schema migrations live in the same
// relational image as the document but are mutated incrementally by the
// vcs package's own operations (CreateCheckpoint, CreateDelta, ...), not
// produced wholesale by Document Assembly. A caller reaches them through
// Image.VersionControl(), never through a Document value.
type Document struct {
	Header         DocumentHeader
	GlobalState    GlobalState
	LocalState     LocalState
	Dictionary     map[string]string
	Layers         []Layer
	Groups         []Group
	Regions        []Region
	Blocks         []Block
	BlockInstances []BlockInstance
	BlockCollections []BlockCollection
	Elements       []Element
	ExternalFiles  map[string]ExternalFile // nil when parsed lazily
}

// DocumentHeader carries the identifying metadata of a document.
type DocumentHeader struct {
	ID         *string
	Version    string
	Source     string
	DataType   string
	Thumbnail  []byte
}

// GlobalState is the document-scoped singleton (display name, units, ...).
type GlobalState struct {
	DisplayName          string
	BackgroundColor      string
	MainScope            string
	ScopeExponentThreshold int
	PruningLevel         PruningLevel
}

// DefaultLineHead describes the head decoration defaulted onto new
// linear/arrow elements at one end.
type DefaultLineHead struct {
	Head LineHead
	BlockID *string
	Size    float64
}

// LocalState is the viewer/editor-scoped singleton (viewport, defaults).
type LocalState struct {
	ScrollX, ScrollY float64
	Zoom             float64
	IsBindingEnabled bool
	DefaultStroke    Stroke
	DefaultBackground Background
	DefaultOpacity   float64
	DefaultFont      string
	DefaultAlignment TextAlign
	DefaultRoundness float64
	DefaultLineHeadStart DefaultLineHead
	DefaultLineHeadEnd   DefaultLineHead
	UIModeFlags      uint32
	DecimalPlaces    int
}

// StackBase is the shared base of the "stack-like" containers: layers,
// groups and regions. The Frame and Plot element variants use StackElement.
type StackBase struct {
	ID          string
	Label       string
	Description *string
	Collapsed   bool
	Plot        bool
	Visible     bool
	Locked      bool
	Opacity     float64
}

// Layer adds a readonly flag and optional style overrides on top of
// StackBase.
type Layer struct {
	StackBase
	Readonly        bool
	StrokeOverride     *Stroke
	BackgroundOverride *Background
}

// Group is a plain StackBase with no extra fields.
type Group struct {
	StackBase
}

// Region adds a boolean-operation discriminator on top of StackBase.
type Region struct {
	StackBase
	Operation BooleanOperation
}

// BlockMetadata is the optional provenance/usage block carried by blocks,
// block instances, and block collections.
type BlockMetadata struct {
	Source       *string
	UsageCount   int
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
	Localization map[string]string
}

// Block is a template graph: a reusable set of elements placed via
// BlockInstance.
type Block struct {
	ID          string
	Label       string
	Description *string
	ElementIDs  []string
	Metadata    *BlockMetadata
	Thumbnail   []byte
}

// DuplicationArray describes a rectangular grid of repeated placements.
type DuplicationArray struct {
	Rows, Cols   int
	SpacingX, SpacingY float64
}

// BlockInstance is a referential placement of a Block, with optional
// per-element string overrides and an optional duplication array.
type BlockInstance struct {
	ID            string
	BlockID       string
	X, Y          float64
	Angle         float64
	ElementOverrides map[string]string
	Duplication   *DuplicationArray
	Metadata      *BlockMetadata
}

// BlockCollection is a tree of blocks (nodes hold child block ids).
type BlockCollection struct {
	ID       string
	Label    string
	BlockIDs []string
	Metadata *BlockMetadata
	Thumbnail []byte
}

// ExternalFile is a heavy external-file payload keyed by asset id (spec
// calls this an "external asset").
type ExternalFile struct {
	MimeType      string
	Data          []byte
	Created       time.Time
	LastRetrieved time.Time
	Version       int
}
