package style

import (
	"testing"

	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/storage"
)

func TestFloatBlobRoundTrip(t *testing.T) {
	values := []float64{1.5, 2.25, -3.75, 0}
	blob := EncodeFloatBlob(values)
	if len(blob) != 8*len(values) {
		t.Fatalf("expected %d bytes, got %d", 8*len(values), len(blob))
	}
	out, err := DecodeFloatBlob(blob)
	if err != nil {
		t.Fatalf("DecodeFloatBlob: %v", err)
	}
	if len(out) != len(values) {
		t.Fatalf("length mismatch: got %d want %d", len(out), len(values))
	}
	for i := range values {
		if out[i] != values[i] {
			t.Errorf("index %d: got %v want %v", i, out[i], values[i])
		}
	}
}

func TestEmptyFloatBlobRoundTrip(t *testing.T) {
	if b := EncodeFloatBlob(nil); b != nil {
		t.Errorf("expected nil blob for empty input, got %v", b)
	}
	out, err := DecodeFloatBlob(nil)
	if err != nil || out != nil {
		t.Errorf("expected nil, nil for empty blob, got %v, %v", out, err)
	}
}

func TestBackgroundAndStrokeRoundTripThroughDB(t *testing.T) {
	h, err := storage.NewMemoryWithSchema()
	if err != nil {
		t.Fatalf("NewMemoryWithSchema: %v", err)
	}
	defer h.Close()

	pref := model.ContentPreferenceHatch
	bg := model.Background{Content: model.Content{
		Preference: &pref,
		Source:     "#ff0000",
		Visible:    true,
		Opacity:    0.8,
		Hatch: &model.HatchConfig{
			Style:  model.HatchStyleCross,
			Pattern: "ANSI31",
			Scale:  2,
			Angle:  45,
			Origin: model.Point{X: 1, Y: 2},
			Double: true,
		},
	}}
	if err := WriteBackground(h.DB(), model.OwnerElement, "elem-1", 0, bg); err != nil {
		t.Fatalf("WriteBackground: %v", err)
	}

	backgrounds, err := ReadBackgrounds(h.DB(), model.OwnerElement, "elem-1")
	if err != nil {
		t.Fatalf("ReadBackgrounds: %v", err)
	}
	if len(backgrounds) != 1 {
		t.Fatalf("expected 1 background, got %d", len(backgrounds))
	}
	got := backgrounds[0]
	if got.Content.Source != "#ff0000" || got.Content.Opacity != 0.8 {
		t.Errorf("background content mismatch: %+v", got.Content)
	}
	if got.Content.Hatch == nil || got.Content.Hatch.Style != model.HatchStyleCross {
		t.Errorf("expected cross hatch style, got %+v", got.Content.Hatch)
	}

	cap := model.StrokeCapRound
	stroke := model.Stroke{
		Content: model.Content{Source: "#000000", Visible: true, Opacity: 1},
		Width:   2.5,
		Style:   model.StrokeStyle{Cap: &cap, Dash: []float64{4, 2, 1}},
	}
	if err := WriteStroke(h.DB(), model.OwnerElement, "elem-1", 0, stroke); err != nil {
		t.Fatalf("WriteStroke: %v", err)
	}

	strokes, err := ReadStrokes(h.DB(), model.OwnerElement, "elem-1")
	if err != nil {
		t.Fatalf("ReadStrokes: %v", err)
	}
	if len(strokes) != 1 {
		t.Fatalf("expected 1 stroke, got %d", len(strokes))
	}
	if strokes[0].Width != 2.5 || strokes[0].Style.Cap == nil || *strokes[0].Style.Cap != model.StrokeCapRound {
		t.Errorf("stroke mismatch: %+v", strokes[0])
	}
	if len(strokes[0].Style.Dash) != 3 || strokes[0].Style.Dash[0] != 4 {
		t.Errorf("dash mismatch: %v", strokes[0].Style.Dash)
	}
}
