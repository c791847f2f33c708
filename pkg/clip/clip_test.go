package clip

import (
	"image"
	"image/color"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"

	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

func TestClampRadii(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		in   Radii
		want Radii
	}{
		{"large radius clamps to half the short side", 100, 40, Uniform(9999), Uniform(20)},
		{"small radius unchanged", 100, 40, Uniform(8), Uniform(8)},
		{"negative clamps to zero", 100, 40, Radii{-5, 3, 0, 50}, Radii{0, 3, 0, 20}},
		{"empty box", 0, 40, Uniform(10), Uniform(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampRadii(tt.w, tt.h, tt.in))
		})
	}
}

func TestFromStyle(t *testing.T) {
	r := style.CornerRadii{
		TopLeft:     units.Percentage(50),
		TopRight:    units.Pixels(8),
		BottomRight: units.Pixels(-4),
	}
	got := FromStyle(r, units.NewContext(200, 100))
	assert.Equal(t, Radii{TopLeft: 50, TopRight: 8}, got)
}

func TestInset(t *testing.T) {
	got := Inset(Uniform(10), 2, 4, 12, 1)
	assert.Equal(t, Radii{TopLeft: 8, TopRight: 6, BottomRight: 0, BottomLeft: 0}, got)
}

func TestRectShrink(t *testing.T) {
	r := Rect{0, 0, 100, 40}.Shrink(2, 3, 4, 5)
	assert.Equal(t, Rect{5, 2, 92, 34}, r)
	assert.True(t, Rect{0, 0, 10, 10}.Shrink(6, 6, 6, 6).Empty())
}

func TestRoundedRectShape(t *testing.T) {
	p := RoundedRect(0, 0, 100, 40, Uniform(9999))
	assert.True(t, p.Closed())
	assert.Equal(t, gg.Point{X: 20, Y: 0}, p.Start())
	// move, four edges, four arcs, close
	assert.Equal(t, 10, p.Len())
}

func TestRoundedRectClipsCorners(t *testing.T) {
	dc := gg.NewContext(40, 40)
	RoundedRect(0, 0, 40, 40, Uniform(20)).Apply(dc)
	dc.SetColor(color.Black)
	dc.Fill()

	img := dc.Image()
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corner should stay transparent")
	_, _, _, a = img.At(20, 20).RGBA()
	assert.Equal(t, uint32(0xffff), a, "center should be filled")
}

func TestPathClip(t *testing.T) {
	dc := gg.NewContextForRGBA(image.NewRGBA(image.Rect(0, 0, 20, 20)))
	RoundedRect(5, 5, 10, 10, Radii{}).Clip(dc)
	dc.SetColor(color.White)
	dc.DrawRectangle(0, 0, 20, 20)
	dc.Fill()

	img := dc.Image()
	_, _, _, inside := img.At(10, 10).RGBA()
	assert.Equal(t, uint32(0xffff), inside)
	_, _, _, outside := img.At(1, 1).RGBA()
	assert.Zero(t, outside)
}

func TestSidePath(t *testing.T) {
	tests := []struct {
		side  Side
		start gg.Point
	}{
		{Top, gg.Point{X: 1, Y: 1}},
		{Right, gg.Point{X: 99, Y: 1}},
		{Bottom, gg.Point{X: 99, Y: 39}},
		{Left, gg.Point{X: 1, Y: 39}},
	}
	for _, tt := range tests {
		p := SidePath(tt.side, 100, 40, Radii{}, 1)
		if p.Start() != tt.start {
			t.Errorf("side %d starts at %v, want %v", tt.side, p.Start(), tt.start)
		}
		if p.Closed() {
			t.Errorf("side %d should be an open path", tt.side)
		}
	}

	rounded := SidePath(Top, 100, 40, Uniform(10), 2)
	assert.Equal(t, gg.Point{X: 10, Y: 2}, rounded.Start())
}
