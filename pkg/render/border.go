package render

import (
	"github.com/fogleman/gg"

	"pixelcss/pkg/clip"
	"pixelcss/pkg/style"
)

var sides = [4]clip.Side{clip.Top, clip.Right, clip.Bottom, clip.Left}

// drawBorder paints a styled border. Solid sides fill the ring between the
// border box and padding box outlines, the other styles stroke along the
// side path.
func (r *Renderer) drawBorder(dc *gg.Context, border style.Border) {
	f := r.frame
	bs := border.Sides()

	if uniformSolid(bs, f.Border) {
		dc.SetColor(bs[0].Color)
		r.fillRing(dc)
		return
	}

	for i, side := range bs {
		width := f.Border[i]
		if width <= 0 || !side.Style.Visible() {
			continue
		}
		dc.SetColor(side.Color)
		r.drawBorderSide(dc, sides[i], side.Style, width)
	}
}

func uniformSolid(bs [4]style.BorderSide, widths [4]float64) bool {
	for i, side := range bs {
		if side.Style != style.BorderStyleSolid || widths[i] != widths[0] || side.Color != bs[0].Color {
			return false
		}
	}
	return widths[0] > 0
}

// fillRing fills the area between the outer and inner outlines.
func (r *Renderer) fillRing(dc *gg.Context) {
	f := r.frame
	dc.NewSubPath()
	f.Outline(style.BorderBox).Apply(dc)
	dc.NewSubPath()
	f.Outline(style.PaddingBox).Apply(dc)
	dc.SetFillRule(gg.FillRuleEvenOdd)
	dc.Fill()
	dc.SetFillRule(gg.FillRuleWinding)
}

func (r *Renderer) drawBorderSide(dc *gg.Context, side clip.Side, bstyle style.BorderStyle, width float64) {
	f := r.frame
	w, h := float64(f.Width), float64(f.Height)

	switch bstyle {
	case style.BorderStyleSolid:
		r.clipToSide(dc, side)
		r.fillRing(dc)
		dc.ResetClip()

	case style.BorderStyleDashed, style.BorderStyleDotted:
		dash := width * 3
		if bstyle == style.BorderStyleDotted {
			dash = width
		}
		dc.SetLineWidth(width)
		dc.SetLineCap(gg.LineCapButt)
		dc.SetDash(dash, dash)
		clip.SidePath(side, w, h, f.Radii, width/2).Apply(dc)
		dc.Stroke()
		dc.SetDash() // Reset dash

	case style.BorderStyleDouble:
		// Two strokes a third of the width each, on the outer and inner thirds.
		third := width / 3
		dc.SetLineWidth(third)
		dc.SetLineCap(gg.LineCapSquare)
		for _, inset := range []float64{third / 2, width - third/2} {
			dc.NewSubPath()
			clip.SidePath(side, w, h, f.Radii, inset).Apply(dc)
			dc.Stroke()
		}
	}
}

// clipToSide restricts drawing to the trapezoid between a side's outer
// edge and its inner edge, split along the corner diagonals.
func (r *Renderer) clipToSide(dc *gg.Context, side clip.Side) {
	f := r.frame
	w, h := float64(f.Width), float64(f.Height)
	t, rt, b, l := f.Border[0], f.Border[1], f.Border[2], f.Border[3]

	var pts [4][2]float64
	switch side {
	case clip.Top:
		pts = [4][2]float64{{0, 0}, {w, 0}, {w - rt, t}, {l, t}}
	case clip.Right:
		pts = [4][2]float64{{w, 0}, {w, h}, {w - rt, h - b}, {w - rt, t}}
	case clip.Bottom:
		pts = [4][2]float64{{w, h}, {0, h}, {l, h - b}, {w - rt, h - b}}
	default:
		pts = [4][2]float64{{0, h}, {0, 0}, {l, t}, {l, h - b}}
	}

	dc.NewSubPath()
	dc.MoveTo(pts[0][0], pts[0][1])
	for _, p := range pts[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.ClosePath()
	dc.Clip()
}
