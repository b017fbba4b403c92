// Package schema is the declarative catalog of every table the relational
// image contains. It owns the DDL text and the current schema version; every
// other package treats both as opaque facts handed down from here, the way
// the teacher library's format decoders treat a sound.format's magic and
// codec functions as facts registered once and looked up by name.
package schema

import (
	_ "embed"
	"regexp"
	"strconv"

	"github.com/ducflair/ducgo/duerr"
)

//go:embed duc.sql
var ddl string

// DDL returns the full CREATE TABLE/INDEX script that bootstraps a fresh
// image. Callers execute it verbatim inside a single transaction.
func DDL() string { return ddl }

var userVersionPattern = regexp.MustCompile(`(?i)PRAGMA\s+user_version\s*=\s*(\d+)\s*;`)

// CurrentSchemaVersion is the schema version a freshly created image carries,
// read back out of the embedded DDL's own `PRAGMA user_version` statement so
// the constant can never drift from the script that defines it.
var CurrentSchemaVersion = mustParseUserVersion()

func mustParseUserVersion() int32 {
	m := userVersionPattern.FindStringSubmatch(ddl)
	if m == nil {
		panic(duerr.New(duerr.Bootstrap, "schema: embedded duc.sql has no PRAGMA user_version statement"))
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		panic(duerr.Wrap(err, duerr.Bootstrap, "schema: PRAGMA user_version is not an integer"))
	}
	return int32(n)
}

// Table names, declared once so every package that builds SQL by hand
// (rather than through an ORM) refers to the same constants instead of
// repeating string literals.
const (
	TableDocument            = "duc_document"
	TableGlobalState         = "duc_global_state"
	TableLocalState          = "duc_local_state"
	TableVersionGraph        = "version_graph"
	TableDictionary          = "document_dictionary"
	TableStackProperties     = "stack_properties"
	TableLayers              = "layers"
	TableGroups              = "groups"
	TableRegions             = "regions"
	TableBlockMetadata       = "block_metadata"
	TableBlocks              = "blocks"
	TableBlockInstances      = "block_instances"
	TableBlockInstanceOverrides = "block_instance_overrides"
	TableBlockCollections    = "block_collections"
	TableBlockCollectionEntries = "block_collection_entries"

	TableElements                = "elements"
	TableElementBoundElements    = "element_bound_elements"
	TableElementGroupMemberships = "element_group_memberships"
	TableElementBlockMemberships = "element_block_memberships"
	TableElementRegionMemberships = "element_region_memberships"
	TableElementPolygon          = "element_polygon"
	TableElementEllipse          = "element_ellipse"
	TableElementText             = "element_text"
	TableElementImage            = "element_image"
	TableElementFreeDraw         = "element_freedraw"
	TableFreeDrawPoints          = "freedraw_element_points"
	TableElementLinear           = "element_linear"
	TableLinearPoints            = "linear_element_points"
	TableLinearLines             = "linear_element_lines"
	TableLinearPathOverrides     = "linear_path_overrides"
	TableLinearPathOverrideIndices = "linear_path_override_indices"
	TableElementStackProperties  = "element_stack_properties"
	TableElementFrame            = "element_frame"
	TableElementPlot             = "element_plot"
	TableDocumentGridConfig      = "document_grid_config"
	TableElementPdf              = "element_pdf"
	TableElementDoc              = "element_doc"
	TableElementTable            = "element_table"
	TableElementModel            = "element_model"
	TableModelElementFiles       = "model_element_files"
	TableModelViewerState        = "model_viewer_state"
	TableElementEmbeddable       = "element_embeddable"

	TableBackgrounds      = "backgrounds"
	TableStrokes          = "strokes"
	TableHatchPatternLines = "hatch_pattern_lines"

	TableExternalFiles = "external_files"

	TableVersionChains    = "version_chains"
	TableCheckpoints      = "checkpoints"
	TableDeltas           = "deltas"
	TableSchemaMigrations = "schema_migrations"
)
