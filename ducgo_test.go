package ducgo

import (
	"testing"

	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/vcs"
)

func TestNewSerializeParseRoundTrip(t *testing.T) {
	img, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer img.Close()

	doc := img.Document()
	doc.Header = model.DocumentHeader{Version: "1.0", Source: "ducgo-test", DataType: "duc"}
	doc.GlobalState = model.GlobalState{DisplayName: "untitled", BackgroundColor: "#ffffff", MainScope: "mm"}
	doc.LocalState = model.LocalState{Zoom: 1, DefaultOpacity: 1}
	doc.Dictionary = map[string]string{"theme": "dark"}

	out, err := img.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !IsDucFile(out) {
		t.Fatalf("serialized bytes do not look like a .duc file")
	}

	reopened, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer reopened.Close()

	got := reopened.Document()
	if got.GlobalState.DisplayName != "untitled" || got.GlobalState.MainScope != "mm" {
		t.Fatalf("unexpected global state after round trip: %+v", got.GlobalState)
	}
	if got.Dictionary["theme"] != "dark" {
		t.Fatalf("unexpected dictionary after round trip: %+v", got.Dictionary)
	}
}

func TestParseLazyOmitsExternalFilePayloads(t *testing.T) {
	img, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer img.Close()

	doc := img.Document()
	doc.Header = model.DocumentHeader{Version: "1.0", Source: "ducgo-test", DataType: "duc"}
	doc.ExternalFiles = map[string]model.ExternalFile{
		"asset-1": {MimeType: "image/png", Data: []byte{1, 2, 3}},
	}

	out, err := img.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	lazy, err := ParseLazy(out)
	if err != nil {
		t.Fatalf("ParseLazy: %v", err)
	}
	defer lazy.Close()

	if lazy.Document().ExternalFiles != nil {
		t.Fatalf("expected lazy parse to omit external files, got %+v", lazy.Document().ExternalFiles)
	}

	asset, err := lazy.GetAsset("asset-1")
	if err != nil {
		t.Fatalf("GetAsset: %v", err)
	}
	if asset == nil || len(asset.Data) != 3 {
		t.Fatalf("unexpected lazy asset fetch: %+v", asset)
	}

	list, err := lazy.ListAssets()
	if err != nil {
		t.Fatalf("ListAssets: %v", err)
	}
	if len(list) != 1 || list[0].ID != "asset-1" {
		t.Fatalf("unexpected asset listing: %+v", list)
	}
}

func TestImageVersionControlCreateAndRestore(t *testing.T) {
	img, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer img.Close()

	img.Document().GlobalState = model.GlobalState{DisplayName: "v1"}
	v1, err := img.Serialize()
	if err != nil {
		t.Fatalf("Serialize v1: %v", err)
	}

	vc := img.VersionControl()
	if err := vc.CreateCheckpoint(vcs.CreateCheckpointInput{
		VersionNumber: 1,
		SchemaVersion: SchemaVersion(),
		Data:          v1,
		IsManualSave:  true,
	}); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}

	restored, err := vc.RestoreVersion(1)
	if err != nil {
		t.Fatalf("RestoreVersion: %v", err)
	}
	if len(restored.Data) != len(v1) {
		t.Fatalf("restored data length mismatch: got %d want %d", len(restored.Data), len(v1))
	}
}
