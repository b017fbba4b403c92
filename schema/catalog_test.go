package schema

import "testing"

func TestCurrentSchemaVersionParsedFromDDL(t *testing.T) {
	if CurrentSchemaVersion != 1 {
		t.Errorf("expected schema version 1, got %d", CurrentSchemaVersion)
	}
}

func TestDDLContainsEveryDeclaredTable(t *testing.T) {
	tables := []string{
		TableDocument, TableGlobalState, TableLocalState, TableVersionGraph,
		TableDictionary, TableStackProperties, TableLayers, TableGroups,
		TableRegions, TableBlockMetadata, TableBlocks, TableBlockInstances,
		TableBlockInstanceOverrides, TableBlockCollections, TableBlockCollectionEntries,
		TableElements, TableElementBoundElements, TableElementGroupMemberships,
		TableElementBlockMemberships, TableElementRegionMemberships,
		TableElementPolygon, TableElementEllipse, TableElementText, TableElementImage,
		TableElementFreeDraw, TableFreeDrawPoints, TableElementLinear, TableLinearPoints,
		TableLinearLines, TableLinearPathOverrides, TableLinearPathOverrideIndices,
		TableElementStackProperties, TableElementFrame, TableElementPlot,
		TableDocumentGridConfig, TableElementPdf, TableElementDoc, TableElementTable,
		TableElementModel, TableModelElementFiles, TableModelViewerState,
		TableElementEmbeddable, TableBackgrounds, TableStrokes, TableHatchPatternLines,
		TableExternalFiles, TableVersionChains, TableCheckpoints, TableDeltas,
		TableSchemaMigrations,
	}
	for _, name := range tables {
		if !containsCreateTable(ddl, name) {
			t.Errorf("duc.sql has no CREATE TABLE for %q", name)
		}
	}
}

func containsCreateTable(script, table string) bool {
	needle := "CREATE TABLE " + table + " ("
	for i := 0; i+len(needle) <= len(script); i++ {
		if script[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
