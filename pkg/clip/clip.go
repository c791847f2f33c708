// Package clip builds rounded outline paths for clipping and border strokes.
package clip

import (
	"math"

	"github.com/fogleman/gg"

	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

// kappa places cubic control points so a quarter arc stays within 0.03% of
// a true circle.
const kappa = 0.5522847498

// Radii are resolved corner radii in pixels.
type Radii struct {
	TopLeft, TopRight, BottomRight, BottomLeft float64
}

// Uniform returns radii with every corner set to r.
func Uniform(r float64) Radii { return Radii{r, r, r, r} }

// IsZero reports whether every corner is square.
func (r Radii) IsZero() bool {
	return r.TopLeft == 0 && r.TopRight == 0 && r.BottomRight == 0 && r.BottomLeft == 0
}

// Scale multiplies every radius by f.
func (r Radii) Scale(f float64) Radii {
	return Radii{r.TopLeft * f, r.TopRight * f, r.BottomRight * f, r.BottomLeft * f}
}

// FromStyle resolves declared radii. Percentages resolve against the
// smaller container dimension.
func FromStyle(r style.CornerRadii, ctx units.Context) Radii {
	return Radii{
		TopLeft:     units.Resolve(r.TopLeft, ctx, units.Smaller),
		TopRight:    units.Resolve(r.TopRight, ctx, units.Smaller),
		BottomRight: units.Resolve(r.BottomRight, ctx, units.Smaller),
		BottomLeft:  units.Resolve(r.BottomLeft, ctx, units.Smaller),
	}
}

// ClampRadii limits every radius to [0, min(w,h)/2].
func ClampRadii(w, h float64, r Radii) Radii {
	limit := math.Max(0, math.Min(w, h)/2)
	c := func(v float64) float64 { return math.Max(0, math.Min(v, limit)) }
	return Radii{c(r.TopLeft), c(r.TopRight), c(r.BottomRight), c(r.BottomLeft)}
}

// Inset returns the radii of a box shrunk by the given edge widths, as used
// for the padding and content boxes.
func Inset(r Radii, top, right, bottom, left float64) Radii {
	shrink := func(v, a, b float64) float64 { return math.Max(0, v-math.Max(a, b)) }
	return Radii{
		TopLeft:     shrink(r.TopLeft, top, left),
		TopRight:    shrink(r.TopRight, top, right),
		BottomRight: shrink(r.BottomRight, bottom, right),
		BottomLeft:  shrink(r.BottomLeft, bottom, left),
	}
}

// Rect is an axis aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Shrink returns the rectangle with each edge moved inwards. Sizes never go
// negative.
func (r Rect) Shrink(top, right, bottom, left float64) Rect {
	return Rect{
		X: r.X + left,
		Y: r.Y + top,
		W: math.Max(0, r.W-left-right),
		H: math.Max(0, r.H-top-bottom),
	}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

type segmentKind int

const (
	moveTo segmentKind = iota
	lineTo
	cubicTo
	closePath
)

type segment struct {
	kind segmentKind
	pts  [3]gg.Point
}

// Path is an immutable list of path segments.
type Path struct {
	segments []segment
}

func (p Path) moveTo(x, y float64) Path {
	p.segments = append(p.segments, segment{kind: moveTo, pts: [3]gg.Point{{X: x, Y: y}}})
	return p
}

func (p Path) lineTo(x, y float64) Path {
	p.segments = append(p.segments, segment{kind: lineTo, pts: [3]gg.Point{{X: x, Y: y}}})
	return p
}

func (p Path) cubicTo(x1, y1, x2, y2, x3, y3 float64) Path {
	p.segments = append(p.segments, segment{kind: cubicTo, pts: [3]gg.Point{{X: x1, Y: y1}, {X: x2, Y: y2}, {X: x3, Y: y3}}})
	return p
}

func (p Path) close() Path {
	p.segments = append(p.segments, segment{kind: closePath})
	return p
}

// Len is the number of segments.
func (p Path) Len() int { return len(p.segments) }

// Start returns the first point of the path.
func (p Path) Start() gg.Point {
	if len(p.segments) == 0 {
		return gg.Point{}
	}
	return p.segments[0].pts[0]
}

// Closed reports whether the path ends with a close segment.
func (p Path) Closed() bool {
	return len(p.segments) > 0 && p.segments[len(p.segments)-1].kind == closePath
}

// Apply appends the path to the context's current path.
func (p Path) Apply(dc *gg.Context) {
	for _, s := range p.segments {
		switch s.kind {
		case moveTo:
			dc.MoveTo(s.pts[0].X, s.pts[0].Y)
		case lineTo:
			dc.LineTo(s.pts[0].X, s.pts[0].Y)
		case cubicTo:
			dc.CubicTo(s.pts[0].X, s.pts[0].Y, s.pts[1].X, s.pts[1].Y, s.pts[2].X, s.pts[2].Y)
		case closePath:
			dc.ClosePath()
		}
	}
}

// Clip replaces the context's clip with the path, intersected with any
// existing clip.
func (p Path) Clip(dc *gg.Context) {
	dc.NewSubPath()
	p.Apply(dc)
	dc.Clip()
}

// RoundedRect builds the outline of a rectangle with rounded corners. The
// radii are clamped first.
func RoundedRect(x, y, w, h float64, r Radii) Path {
	r = ClampRadii(w, h, r)
	var p Path
	p = p.moveTo(x+r.TopLeft, y)
	p = p.lineTo(x+w-r.TopRight, y)
	p = arcTopRight(p, x+w, y, r.TopRight)
	p = p.lineTo(x+w, y+h-r.BottomRight)
	p = arcBottomRight(p, x+w, y+h, r.BottomRight)
	p = p.lineTo(x+r.BottomLeft, y+h)
	p = arcBottomLeft(p, x, y+h, r.BottomLeft)
	p = p.lineTo(x, y+r.TopLeft)
	p = arcTopLeft(p, x, y, r.TopLeft)
	return p.close()
}

// RectPath is RoundedRect for a Rect.
func RectPath(rect Rect, r Radii) Path {
	return RoundedRect(rect.X, rect.Y, rect.W, rect.H, r)
}

// Each arc helper takes the corner point and draws clockwise from the
// previous edge to the next one. Zero radii degenerate to a line.

func arcTopRight(p Path, cx, cy, r float64) Path {
	if r == 0 {
		return p.lineTo(cx, cy)
	}
	return p.cubicTo(cx-r+r*kappa, cy, cx, cy+r-r*kappa, cx, cy+r)
}

func arcBottomRight(p Path, cx, cy, r float64) Path {
	if r == 0 {
		return p.lineTo(cx, cy)
	}
	return p.cubicTo(cx, cy-r+r*kappa, cx-r+r*kappa, cy, cx-r, cy)
}

func arcBottomLeft(p Path, cx, cy, r float64) Path {
	if r == 0 {
		return p.lineTo(cx, cy)
	}
	return p.cubicTo(cx+r-r*kappa, cy, cx, cy-r+r*kappa, cx, cy-r)
}

func arcTopLeft(p Path, cx, cy, r float64) Path {
	if r == 0 {
		return p.lineTo(cx, cy)
	}
	return p.cubicTo(cx, cy+r-r*kappa, cx+r-r*kappa, cy, cx+r, cy)
}

// Side names one box edge.
type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// SidePath returns the open stroke path for one edge of a w×h box, inset by
// inset on every edge (half the stroke width keeps the stroke inside the
// box). The path runs clockwise along the edge and ends with the following
// corner arc.
func SidePath(side Side, w, h float64, r Radii, inset float64) Path {
	x0, y0 := inset, inset
	x1, y1 := w-inset, h-inset
	r = ClampRadii(x1-x0, y1-y0, Inset(r, inset, inset, inset, inset))

	var p Path
	switch side {
	case Top:
		p = p.moveTo(x0+r.TopLeft, y0)
		p = p.lineTo(x1-r.TopRight, y0)
		p = arcTopRight(p, x1, y0, r.TopRight)
	case Right:
		p = p.moveTo(x1, y0+r.TopRight)
		p = p.lineTo(x1, y1-r.BottomRight)
		p = arcBottomRight(p, x1, y1, r.BottomRight)
	case Bottom:
		p = p.moveTo(x1-r.BottomRight, y1)
		p = p.lineTo(x0+r.BottomLeft, y1)
		p = arcBottomLeft(p, x0, y1, r.BottomLeft)
	default:
		p = p.moveTo(x0, y1-r.BottomLeft)
		p = p.lineTo(x0, y0+r.TopLeft)
		p = arcTopLeft(p, x0, y0, r.TopLeft)
	}
	return p
}
