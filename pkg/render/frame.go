package render

import (
	"math"

	"pixelcss/pkg/clip"
	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

// Frame is the resolved box geometry of one element on a raster surface.
// Lengths are resolved in CSS pixels against Units, then multiplied by
// Scale into surface pixels.
type Frame struct {
	Width, Height int
	Scale         float64
	Units         units.Context

	// Border and Padding are top, right, bottom, left in surface pixels.
	Border  [4]float64
	Padding [4]float64
	// Radii is the outer border-box outline, clamped.
	Radii clip.Radii
}

// NewFrame resolves st for a surface of width×height pixels that stands for
// an element of ctx.Width×ctx.Height CSS pixels. A visible border that would
// come out thinner than one surface pixel is widened to one pixel.
func NewFrame(st *style.Style, width, height int, scale float64, ctx units.Context) Frame {
	f := Frame{Width: width, Height: height, Scale: scale, Units: ctx}

	for i, side := range st.Border.Sides() {
		if !side.Style.Visible() {
			continue
		}
		w := units.Resolve(side.Width, ctx, units.Horizontal) * scale
		if w <= 0 {
			continue
		}
		if scale < 1 {
			w = math.Max(1, math.Round(w))
		}
		f.Border[i] = w
	}

	pad := [4]units.Length{st.Padding.Top, st.Padding.Right, st.Padding.Bottom, st.Padding.Left}
	for i, l := range pad {
		// Padding percentages refer to the width on every side.
		f.Padding[i] = units.Resolve(l, ctx, units.Horizontal) * scale
	}

	radii := clip.ClampRadii(ctx.Width, ctx.Height, clip.FromStyle(st.Radii, ctx))
	f.Radii = clip.ClampRadii(float64(width), float64(height), radii.Scale(scale))
	return f
}

// BorderRect is the full surface.
func (f Frame) BorderRect() clip.Rect {
	return clip.Rect{W: float64(f.Width), H: float64(f.Height)}
}

// PaddingRect is the border box shrunk by the border widths.
func (f Frame) PaddingRect() clip.Rect {
	b := f.Border
	return f.BorderRect().Shrink(b[0], b[1], b[2], b[3])
}

// ContentRect is the padding box shrunk by the padding.
func (f Frame) ContentRect() clip.Rect {
	p := f.Padding
	return f.PaddingRect().Shrink(p[0], p[1], p[2], p[3])
}

// Rect returns the rectangle of box.
func (f Frame) Rect(box style.Box) clip.Rect {
	switch box {
	case style.PaddingBox:
		return f.PaddingRect()
	case style.ContentBox:
		return f.ContentRect()
	}
	return f.BorderRect()
}

// Outline returns the rounded outline of box.
func (f Frame) Outline(box style.Box) clip.Path {
	b, p := f.Border, f.Padding
	r := f.Radii
	switch box {
	case style.PaddingBox:
		r = clip.Inset(r, b[0], b[1], b[2], b[3])
	case style.ContentBox:
		r = clip.Inset(r, b[0]+p[0], b[1]+p[1], b[2]+p[2], b[3]+p[3])
	}
	return clip.RectPath(f.Rect(box), r)
}

// resolve converts a CSS length to surface pixels, resolving percentages
// against ref surface pixels.
func (f Frame) resolve(l units.Length, ref float64) float64 {
	if l.Unit == units.Percent {
		return math.Max(0, l.Value/100*ref)
	}
	return units.Resolve(l, f.Units, units.Horizontal) * f.Scale
}

// cssContext is Units re-targeted at a box of w×h surface pixels.
func (f Frame) cssContext(w, h float64) units.Context {
	ctx := f.Units
	if f.Scale > 0 {
		ctx.Width, ctx.Height = w/f.Scale, h/f.Scale
	}
	return ctx
}
