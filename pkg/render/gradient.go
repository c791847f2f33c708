package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"pixelcss/pkg/css"
	"pixelcss/pkg/units"
)

// stopNudge separates coincident stops so gg's sort keeps hard color
// changes in declared order.
const stopNudge = 1e-9

// PaintGradient renders g into a new w×h image. scale converts the CSS
// pixels of ctx to image pixels.
func PaintGradient(g *css.Gradient, w, h int, scale float64, ctx units.Context) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return img
	}
	dc := gg.NewContextForRGBA(img)
	dc.SetFillStyle(GradientPattern(g, float64(w), float64(h), scale, ctx))
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
	return img
}

// GradientPattern returns a fill pattern for a w×h box.
func GradientPattern(g *css.Gradient, w, h, scale float64, ctx units.Context) gg.Pattern {
	if scale <= 0 {
		scale = 1
	}
	if g.Type == css.GradientRadial {
		cx, cy, rx, ry := g.Ellipse(w/scale, h/scale, ctx)
		return &radialPattern{
			cx: cx * scale, cy: cy * scale,
			rx: rx * scale, ry: ry * scale,
			stops: g.Stops(math.Max(rx, ry)),
		}
	}

	x0, y0, x1, y1 := g.Line(w, h)
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	prev := -1.0
	for _, s := range g.Stops(g.LineLength(w/scale, h/scale)) {
		off := s.Offset
		if off <= prev {
			off = prev + stopNudge
		}
		grad.AddColorStop(off, s.Color)
		prev = off
	}
	return grad
}

type radialPattern struct {
	cx, cy float64
	rx, ry float64
	stops  []css.ColorStop
}

func (p *radialPattern) ColorAt(x, y int) color.Color {
	if p.rx <= 0 || p.ry <= 0 {
		return p.stops[len(p.stops)-1].Color
	}
	dx := (float64(x) + 0.5 - p.cx) / p.rx
	dy := (float64(y) + 0.5 - p.cy) / p.ry
	return stopColor(p.stops, math.Hypot(dx, dy))
}

// stopColor interpolates premultiplied channels between the stops that
// surround t.
func stopColor(stops []css.ColorStop, t float64) color.Color {
	first, last := stops[0], stops[len(stops)-1]
	if t <= first.Offset {
		return first.Color
	}
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		s0, s1 := stops[i-1], stops[i]
		if t > s1.Offset {
			continue
		}
		span := s1.Offset - s0.Offset
		if span <= 0 {
			return s1.Color
		}
		return lerpColor(s0.Color, s1.Color, (t-s0.Offset)/span)
	}
	return last.Color
}

func lerpColor(a, b color.Color, t float64) color.RGBA {
	r0, g0, b0, a0 := a.RGBA()
	r1, g1, b1, a1 := b.RGBA()
	mix := func(x, y uint32) uint8 {
		v := float64(x) + (float64(y)-float64(x))*t
		return uint8(math.Round(v / 257))
	}
	return color.RGBA{mix(r0, r1), mix(g0, g1), mix(b0, b1), mix(a0, a1)}
}
