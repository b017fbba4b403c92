package element

import (
	"testing"

	"github.com/ducflair/ducgo/model"
	"github.com/ducflair/ducgo/storage"
)

func newHandle(t *testing.T) *storage.Handle {
	t.Helper()
	h, err := storage.NewMemoryWithSchema()
	if err != nil {
		t.Fatalf("NewMemoryWithSchema: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestWriteAndReadPolygonElement(t *testing.T) {
	h := newHandle(t)

	el := model.Element{
		Base: model.ElementBase{
			ID: "poly-1", Type: model.ElementPolygon, X: 1, Y: 2, Width: 10, Height: 10,
			Label: "poly", Visible: true,
		},
		Polygon: &model.PolygonElement{Sides: 6},
	}

	if err := WriteElement(h.DB(), el, 0); err != nil {
		t.Fatalf("WriteElement: %v", err)
	}

	got, err := ReadElements(h.DB())
	if err != nil {
		t.Fatalf("ReadElements: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 element, got %d", len(got))
	}
	if got[0].Base.ID != "poly-1" || got[0].Polygon == nil || got[0].Polygon.Sides != 6 {
		t.Fatalf("unexpected round-tripped element: %+v", got[0])
	}
}

func TestWriteAndReadLinearElementWithPointsAndLines(t *testing.T) {
	h := newHandle(t)

	el := model.Element{
		Base: model.ElementBase{
			ID: "line-1", Type: model.ElementLinear, X: 0, Y: 0, Width: 5, Height: 5, Visible: true,
		},
		Linear: &model.LinearElement{
			Points: []model.LinearPoint{{X: 0, Y: 0}, {X: 5, Y: 5}},
			Lines: []model.LinearLine{{
				Start: model.LinearLineRef{PointIndex: 0},
				End:   model.LinearLineRef{PointIndex: 1},
			}},
		},
	}

	if err := WriteElement(h.DB(), el, 0); err != nil {
		t.Fatalf("WriteElement: %v", err)
	}

	got, err := ReadElements(h.DB())
	if err != nil {
		t.Fatalf("ReadElements: %v", err)
	}
	if len(got) != 1 || got[0].Linear == nil {
		t.Fatalf("expected 1 linear element, got %+v", got)
	}
	if len(got[0].Linear.Points) != 2 || len(got[0].Linear.Lines) != 1 {
		t.Fatalf("unexpected linear payload: %+v", got[0].Linear)
	}
}
