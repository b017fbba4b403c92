package model

// VersionGraphMetadata is the version_graph singleton row.
type VersionGraphMetadata struct {
	CurrentVersion        int64
	CurrentSchemaVersion  int32
	UserCheckpointVersionID *string
	LatestVersionID       string
	ChainCount            int
	LastPruned            int64
	TotalSize             int64
}

// VersionChain is a contiguous range of versions sharing one schema
// version. An open chain has EndVersion == nil.
type VersionChain struct {
	ID               string
	SchemaVersion    int32
	StartVersion     int64
	EndVersion       *int64
	Migration        *string
	RootCheckpointID string
}

// VersionBase is the state shared by every checkpoint and delta.
type VersionBase struct {
	ID            string
	ParentID      *string
	Timestamp     int64
	Description   *string
	IsManualSave  bool
	UserID        *string
}

// Checkpoint is an immutable, self-contained snapshot of document bytes at
// a specific version number.
type Checkpoint struct {
	Base             VersionBase
	ChainID          string
	VersionNumber    int64
	SchemaVersion    int32
	IsSchemaBoundary bool
	Data             []byte
	SizeBytes        int64
}

// Delta is a versioned write referencing a base checkpoint; its payload is
// stored zlib-compressed on disk. DeltaSequence is dense (1..N, no gaps)
// within its (BaseCheckpointID) group.
type Delta struct {
	Base            VersionBase
	BaseCheckpointID string
	ChainID         string
	DeltaSequence   int64
	VersionNumber   int64
	SchemaVersion   int32
	Payload         []byte // uncompressed; compressed on write, decompressed on read
	SizeBytes       int64
}

// SchemaMigration records one schema-version transition.
type SchemaMigration struct {
	From              int32
	To                int32
	Name              string
	Checksum          *string
	AppliedAt         int64
	BoundaryCheckpointID *string
}

// VersionEntry is a lightweight listing row -- either a checkpoint or a
// delta, tagged by VersionType so list_versions callers can tell which
// without a second query.
type VersionEntry struct {
	ID            string
	VersionNumber int64
	SchemaVersion int32
	Timestamp     int64
	Description   *string
	IsManualSave  bool
	UserID        *string
	VersionType   string // "checkpoint" or "delta"
	SizeBytes     int64
}

// VersionGraph aggregates the full version-control state of a document.
type VersionGraph struct {
	Metadata    VersionGraphMetadata
	Chains      []VersionChain
	Checkpoints []Checkpoint
	Deltas      []Delta
	Migrations  []SchemaMigration
}

// RestoredVersion is the result of a point-in-time restore.
type RestoredVersion struct {
	VersionNumber  int64
	SchemaVersion  int32
	Data           []byte
	FromCheckpoint bool
}

// AssetEntry is a full external-file record, including its byte payload.
type AssetEntry struct {
	ID            string
	MimeType      string
	Data          []byte
	Created       int64
	LastRetrieved int64
	Version       int
}

// AssetMetadata is the lightweight external-file listing row (no payload).
type AssetMetadata struct {
	ID            string
	MimeType      string
	Created       int64
	LastRetrieved int64
	Version       int
}
