package css

import (
	"math"
	"testing"

	"pixelcss/pkg/units"
)

func TestParseGradient_LinearDirections(t *testing.T) {
	tests := []struct {
		input string
		angle float64
	}{
		{"linear-gradient(red, blue)", 180},
		{"linear-gradient(45deg, #ff0000, #00ff00)", 45},
		{"linear-gradient(to right, red, blue)", 90},
		{"linear-gradient(to bottom, red, blue)", 180},
		{"linear-gradient(to left, red, blue)", 270},
		{"linear-gradient(to top, red, blue)", 0},
		{"linear-gradient(to top right, red, blue)", 45},
		{"linear-gradient(to left bottom, red, blue)", 225},
		{"linear-gradient(0.25turn, red, blue)", 90},
		{"linear-gradient(200grad, red, blue)", 180},
	}
	for _, tt := range tests {
		g, ok := ParseGradient(tt.input)
		if !ok {
			t.Errorf("ParseGradient(%q) failed", tt.input)
			continue
		}
		if g.Type != GradientLinear || math.Abs(g.Angle-tt.angle) > 1e-9 {
			t.Errorf("ParseGradient(%q) angle = %v, want %v", tt.input, g.Angle, tt.angle)
		}
	}
}

func TestParseGradient_Invalid(t *testing.T) {
	for _, s := range []string{
		"linear-gradient(red)",
		"linear-gradient(to middle, red, blue)",
		"linear-gradient(red, notacolor)",
		"linear-gradient(red, blue",
		"conic-gradient(red, blue)",
		"none",
	} {
		if g, ok := ParseGradient(s); ok {
			t.Errorf("ParseGradient(%q) = %+v, want none", s, g)
		}
	}
}

func TestParseGradient_StopsEvenlyDistributed(t *testing.T) {
	g, ok := ParseGradient("linear-gradient(red, lime, blue)")
	if !ok {
		t.Fatal("parse failed")
	}
	want := []float64{0, 0.5, 1}
	for i, s := range g.ColorStops {
		if math.Abs(s.Offset-want[i]) > 1e-9 {
			t.Errorf("stop %d offset = %v, want %v", i, s.Offset, want[i])
		}
	}
}

func TestParseGradient_StopsNonDecreasing(t *testing.T) {
	inputs := []string{
		"linear-gradient(red 80%, blue 20%, green)",
		"linear-gradient(red -10%, blue 150%)",
		"linear-gradient(red, blue 30%, green, yellow 10%)",
		"linear-gradient(red 10% 40%, blue)",
	}
	for _, in := range inputs {
		g, ok := ParseGradient(in)
		if !ok {
			t.Errorf("ParseGradient(%q) failed", in)
			continue
		}
		prev := 0.0
		for i, s := range g.ColorStops {
			if s.Offset < prev || s.Offset < 0 || s.Offset > 1 {
				t.Errorf("%q: stop %d offset %v breaks [0,1] ordering (prev %v)", in, i, s.Offset, prev)
			}
			prev = s.Offset
		}
	}
}

func TestParseGradient_DoublePosition(t *testing.T) {
	g, _ := ParseGradient("linear-gradient(red 10% 40%, blue)")
	if len(g.ColorStops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(g.ColorStops))
	}
	if g.ColorStops[0].Offset != 0.1 || g.ColorStops[1].Offset != 0.4 {
		t.Errorf("double position offsets = %v, %v", g.ColorStops[0].Offset, g.ColorStops[1].Offset)
	}
}

func TestGradientStops_PixelPositions(t *testing.T) {
	g, _ := ParseGradient("linear-gradient(to right, red 0, red 50px, blue 50px, blue 100px)")
	stops := g.Stops(200)
	want := []float64{0, 0.25, 0.25, 0.5}
	for i, s := range stops {
		if math.Abs(s.Offset-want[i]) > 1e-9 {
			t.Errorf("stop %d offset = %v, want %v", i, s.Offset, want[i])
		}
	}
}

func TestGradientLine(t *testing.T) {
	g := &Gradient{Type: GradientLinear, Angle: 90}
	x0, y0, x1, y1 := g.Line(200, 100)
	if math.Abs(x0) > 1e-9 || math.Abs(x1-200) > 1e-9 || math.Abs(y0-50) > 1e-9 || math.Abs(y1-50) > 1e-9 {
		t.Errorf("90deg line = (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}

	g.Angle = 180
	x0, y0, x1, y1 = g.Line(200, 100)
	if math.Abs(y0) > 1e-9 || math.Abs(y1-100) > 1e-9 || math.Abs(x0-100) > 1e-9 || math.Abs(x1-100) > 1e-9 {
		t.Errorf("180deg line = (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}

	// At 45deg the line must reach past the half extent so both corners
	// project onto its ends.
	g.Angle = 45
	w, h := 200.0, 100.0
	want := (w + h) * math.Sqrt2 / 2
	if got := g.LineLength(w, h); math.Abs(got-want) > 1e-9 {
		t.Errorf("45deg line length = %v, want %v", got, want)
	}
	x0, y0, x1, y1 = g.Line(w, h)
	if !(x1 > x0 && y1 < y0) {
		t.Errorf("45deg should run towards the top right, got (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}
}

func TestParseGradient_Radial(t *testing.T) {
	g, ok := ParseGradient("radial-gradient(circle closest-side at left top, red, blue)")
	if !ok {
		t.Fatal("parse failed")
	}
	if g.Type != GradientRadial || g.Shape != ShapeCircle || g.Extent != ClosestSide {
		t.Errorf("radial config = %+v", g)
	}
	if g.Center != [2]string{"left", "top"} {
		t.Errorf("center = %q", g.Center)
	}

	g, ok = ParseGradient("radial-gradient(red, blue)")
	if !ok || g.Shape != ShapeEllipse || g.Extent != FarthestCorner || g.Center != [2]string{"50%", "50%"} {
		t.Errorf("radial defaults = %+v, %v", g, ok)
	}

	g, ok = ParseGradient("radial-gradient(at top, red, blue)")
	if !ok || g.Center != [2]string{"center", "top"} {
		t.Errorf("at top center = %+v, %v", g, ok)
	}
}

func TestGradientEllipse(t *testing.T) {
	ctx := units.NewContext(200, 100)

	g, _ := ParseGradient("radial-gradient(circle closest-side, red, blue)")
	cx, cy, rx, ry := g.Ellipse(200, 100, ctx)
	if cx != 100 || cy != 50 || rx != 50 || ry != 50 {
		t.Errorf("circle closest-side = %v %v %v %v", cx, cy, rx, ry)
	}

	g, _ = ParseGradient("radial-gradient(ellipse farthest-side, red, blue)")
	_, _, rx, ry = g.Ellipse(200, 100, ctx)
	if rx != 100 || ry != 50 {
		t.Errorf("ellipse farthest-side = %v %v", rx, ry)
	}

	g, _ = ParseGradient("radial-gradient(circle 30px at 10px 20px, red, blue)")
	cx, cy, rx, ry = g.Ellipse(200, 100, ctx)
	if cx != 10 || cy != 20 || rx != 30 || ry != 30 {
		t.Errorf("explicit circle = %v %v %v %v", cx, cy, rx, ry)
	}
}

func TestResolvePosition(t *testing.T) {
	ctx := units.NewContext(100, 50)
	tests := []struct {
		token           string
		container, size float64
		want            float64
	}{
		{"left", 100, 20, 0},
		{"center", 100, 20, 40},
		{"right", 100, 20, 80},
		{"50%", 100, 20, 40},
		{"100%", 100, 20, 80},
		{"10px", 100, 20, 10},
		{"-5px", 100, 20, -5},
		{"bogus", 100, 20, 0},
		{"right 10px", 100, 20, 70},
		{"bottom 25%", 100, 20, 60},
	}
	for _, tt := range tests {
		if got := ResolvePosition(tt.token, tt.container, tt.size, ctx, units.Horizontal); got != tt.want {
			t.Errorf("ResolvePosition(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestSplitPosition(t *testing.T) {
	tests := map[string][2]string{
		"":                      {"0%", "0%"},
		"center":                {"center", "center"},
		"top":                   {"center", "top"},
		"right":                 {"right", "center"},
		"top left":              {"left", "top"},
		"10px 20%":              {"10px", "20%"},
		"bottom 10px":           {"10px", "bottom"},
		"right 5px bottom 10px": {"right 5px", "bottom 10px"},
	}
	for in, want := range tests {
		if got := SplitPosition(in); got != want {
			t.Errorf("SplitPosition(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitTopLevel(t *testing.T) {
	got := SplitTopLevel("rgb(0, 0, 0) 10%, url('a,b.png'), blue", ',')
	if len(got) != 3 || got[0] != "rgb(0, 0, 0) 10%" || got[1] != "url('a,b.png')" || got[2] != "blue" {
		t.Errorf("SplitTopLevel = %q", got)
	}
}

func TestParseURLValue(t *testing.T) {
	tests := []struct {
		input   string
		wantURL string
		wantOK  bool
	}{
		{"url(image.png)", "image.png", true},
		{"url('image.png')", "image.png", true},
		{`url("image.png")`, "image.png", true},
		{"url( image.png )", "image.png", true},
		{"url(data:image/png;base64,iVBOR)", "data:image/png;base64,iVBOR", true},
		{"url()", "", false},
		{"none", "", false},
		{"", "", false},
		{"url(  'spaced.png'  )", "spaced.png", true},
	}

	for _, tt := range tests {
		url, ok := ParseURLValue(tt.input)
		if ok != tt.wantOK || url != tt.wantURL {
			t.Errorf("ParseURLValue(%q) = (%q, %v), want (%q, %v)", tt.input, url, ok, tt.wantURL, tt.wantOK)
		}
	}
}
