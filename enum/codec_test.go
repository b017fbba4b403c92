package enum

import (
	"testing"

	"github.com/ducflair/ducgo/model"
)

func TestRoundTripKnownValues(t *testing.T) {
	cases := []struct {
		name   string
		encode func() int64
		decode func(int64) bool
	}{
		{"VerticalAlign", func() int64 { return EncodeVerticalAlign(model.VerticalAlignBottom) },
			func(c int64) bool { return DecodeVerticalAlign(c) == model.VerticalAlignBottom }},
		{"TextAlign", func() int64 { return EncodeTextAlign(model.TextAlignRight) },
			func(c int64) bool { return DecodeTextAlign(c) == model.TextAlignRight }},
		{"StrokeCap", func() int64 { return EncodeStrokeCap(model.StrokeCapRound) },
			func(c int64) bool { return DecodeStrokeCap(c) == model.StrokeCapRound }},
		{"LineHead", func() int64 { return EncodeLineHead(model.LineHeadDiamond) },
			func(c int64) bool { return DecodeLineHead(c) == model.LineHeadDiamond }},
		{"BooleanOperation", func() int64 { return EncodeBooleanOperation(model.BooleanExclude) },
			func(c int64) bool { return DecodeBooleanOperation(c) == model.BooleanExclude }},
	}

	for _, c := range cases {
		code := c.encode()
		if code < 10 {
			t.Errorf("%s: wire code %d below the reserved floor of 10", c.name, code)
		}
		if !c.decode(code) {
			t.Errorf("%s: round-trip through code %d did not return the original variant", c.name, code)
		}
	}
}

func TestUnknownCodeDefaultsToFirstVariant(t *testing.T) {
	if got := DecodeVerticalAlign(9999); got != model.VerticalAlignTop {
		t.Errorf("unknown code should default to VerticalAlignTop, got %v", got)
	}
	if got := DecodeImageStatus(-1); got != model.ImageStatusPending {
		t.Errorf("unknown code should default to ImageStatusPending, got %v", got)
	}
	if got := DecodeHatchStyle(42); got != model.HatchStyleSingle {
		t.Errorf("unknown code should default to HatchStyleSingle, got %v", got)
	}
}
