package css

import (
	"math"
	"strconv"
	"strings"

	"pixelcss/pkg/units"
)

// GradientType represents the type of CSS gradient
type GradientType int

const (
	GradientLinear GradientType = iota
	GradientRadial
)

// RadialShape is the ending shape of a radial gradient.
type RadialShape int

const (
	ShapeEllipse RadialShape = iota
	ShapeCircle
)

// RadialExtent is the size keyword of a radial gradient.
type RadialExtent int

const (
	FarthestCorner RadialExtent = iota
	ClosestSide
	ClosestCorner
	FarthestSide
)

var radialExtents = map[string]RadialExtent{
	"farthest-corner": FarthestCorner,
	"closest-side":    ClosestSide,
	"closest-corner":  ClosestCorner,
	"farthest-side":   FarthestSide,
}

// ColorStop represents a color and its position in a gradient
type ColorStop struct {
	Color  Color
	Offset float64 // 0.0 to 1.0 after normalization

	// Pos is the declared position, meaningful when HasPos is set.
	Pos    units.Length
	HasPos bool
}

// Gradient represents a CSS gradient
type Gradient struct {
	Type GradientType

	// Angle in CSS degrees (0 points up, clockwise), linear only.
	Angle float64

	// Radial only.
	Shape   RadialShape
	Extent  RadialExtent
	Size    [2]units.Length
	HasSize bool
	Center  [2]string

	ColorStops []ColorStop
}

// directionAngles maps "to <side>" keywords to CSS angles.
var directionAngles = map[string]float64{
	"to top":          0,
	"to right":        90,
	"to bottom":       180,
	"to left":         270,
	"to top right":    45,
	"to right top":    45,
	"to bottom right": 135,
	"to right bottom": 135,
	"to bottom left":  225,
	"to left bottom":  225,
	"to top left":     315,
	"to left top":     315,
}

// ParseGradient parses linear-gradient() and radial-gradient() values.
// Anything it cannot read, including fewer than two color stops, yields
// false.
func ParseGradient(value string) (*Gradient, bool) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)

	switch {
	case strings.HasPrefix(lower, "linear-gradient("):
		return parseGradientBody(GradientLinear, value[len("linear-gradient("):])
	case strings.HasPrefix(lower, "radial-gradient("):
		return parseGradientBody(GradientRadial, value[len("radial-gradient("):])
	}
	return nil, false
}

func parseGradientBody(kind GradientType, rest string) (*Gradient, bool) {
	if !strings.HasSuffix(rest, ")") {
		return nil, false
	}
	content := rest[:len(rest)-1]

	// Split by commas (being careful about commas inside functions like rgb())
	parts := SplitTopLevel(content, ',')
	if len(parts) < 2 {
		return nil, false
	}

	grad := &Gradient{
		Type:       kind,
		Angle:      180,
		Center:     [2]string{"50%", "50%"},
		ColorStops: make([]ColorStop, 0, len(parts)),
	}

	startIdx := 0
	first := strings.ToLower(parts[0])
	switch kind {
	case GradientLinear:
		if angle, ok := parseDirection(first); ok {
			grad.Angle = angle
			startIdx = 1
		}
	case GradientRadial:
		if grad.parseRadialConfig(first) {
			startIdx = 1
		}
	}

	for i := startIdx; i < len(parts); i++ {
		stops, ok := parseColorStop(parts[i])
		if !ok {
			return nil, false
		}
		grad.ColorStops = append(grad.ColorStops, stops...)
	}

	if len(grad.ColorStops) < 2 {
		return nil, false
	}

	grad.ColorStops = normalizeStops(grad.ColorStops, 0)
	return grad, true
}

// parseDirection reads "<angle>" or "to <side> [<side>]".
func parseDirection(s string) (float64, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if strings.HasPrefix(s, "to ") {
		angle, ok := directionAngles[s]
		return angle, ok
	}
	return parseAngle(s)
}

func parseAngle(s string) (float64, bool) {
	type unit struct {
		suffix string
		scale  float64
	}
	// Order matters: "grad" must be checked before "rad".
	for _, u := range []unit{{"deg", 1}, {"grad", 0.9}, {"rad", 180 / math.Pi}, {"turn", 360}} {
		if strings.HasSuffix(s, u.suffix) {
			v, err := strconv.ParseFloat(strings.TrimSuffix(s, u.suffix), 64)
			if err != nil {
				return 0, false
			}
			return v * u.scale, true
		}
	}
	if s == "0" {
		return 0, true
	}
	return 0, false
}

// parseRadialConfig consumes "[shape] [extent|size] [at x y]". It reports
// false when the part is not a configuration (it is the first color stop).
func (g *Gradient) parseRadialConfig(s string) bool {
	fields := Fields(s)
	if len(fields) == 0 || IsColor(fields[0]) {
		return false
	}

	var sizes []units.Length
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		switch {
		case f == "circle":
			g.Shape = ShapeCircle
		case f == "ellipse":
			g.Shape = ShapeEllipse
		case f == "at":
			pos := fields[i+1:]
			switch len(pos) {
			case 0:
			case 1:
				g.Center = positionPair(pos[0], "center")
			default:
				g.Center = positionPair(pos[0], pos[1])
			}
			i = len(fields)
		default:
			if ext, ok := radialExtents[f]; ok {
				g.Extent = ext
				continue
			}
			l, ok := units.Parse(f)
			if !ok {
				return false
			}
			sizes = append(sizes, l)
		}
	}

	switch len(sizes) {
	case 0:
	case 1:
		g.Size = [2]units.Length{sizes[0], sizes[0]}
		g.HasSize = true
		g.Shape = ShapeCircle
	default:
		g.Size = [2]units.Length{sizes[0], sizes[1]}
		g.HasSize = true
	}
	return true
}

// positionPair orders a keyword pair so the horizontal component comes first.
func positionPair(a, b string) [2]string {
	vertical := func(s string) bool { return strings.HasPrefix(s, "top") || strings.HasPrefix(s, "bottom") }
	horizontal := func(s string) bool { return strings.HasPrefix(s, "left") || strings.HasPrefix(s, "right") }
	if vertical(a) || horizontal(b) {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

// parseColorStop parses a color stop like "blue 150px" or "red 50%". The
// two-position form "red 10% 20%" produces two stops.
func parseColorStop(stop string) ([]ColorStop, bool) {
	parts := Fields(stop)
	if len(parts) == 0 {
		return nil, false
	}

	// Parse the color (first part)
	color, ok := ParseColor(parts[0])
	if !ok {
		return nil, false
	}

	if len(parts) == 1 {
		return []ColorStop{{Color: color, Offset: -1}}, true
	}

	stops := make([]ColorStop, 0, 2)
	for _, pos := range parts[1:min(len(parts), 3)] {
		l, ok := units.Parse(pos)
		if !ok {
			return nil, false
		}
		stops = append(stops, ColorStop{Color: color, Offset: -1, Pos: l, HasPos: true})
	}
	return stops, true
}

// Stops returns the stops normalized for a gradient line (or ray) of the
// given length in pixels. Absolute positions need the length, with a zero
// length they are treated as unspecified.
func (g *Gradient) Stops(lineLength float64) []ColorStop {
	out := make([]ColorStop, len(g.ColorStops))
	copy(out, g.ColorStops)
	return normalizeStops(out, lineLength)
}

func normalizeStops(stops []ColorStop, lineLength float64) []ColorStop {
	for i := range stops {
		stops[i].Offset = -1
		if !stops[i].HasPos {
			continue
		}
		switch {
		case stops[i].Pos.Unit == units.Percent:
			stops[i].Offset = stops[i].Pos.Value / 100
		case lineLength > 0:
			ctx := units.NewContext(lineLength, lineLength)
			stops[i].Offset = units.Resolve(stops[i].Pos, ctx, units.Horizontal) / lineLength
		}
	}

	fillMissingOffsets(stops)

	// Clamp into [0,1] and force a non-decreasing sequence.
	prev := 0.0
	for i := range stops {
		off := math.Max(0, math.Min(1, stops[i].Offset))
		if off < prev {
			off = prev
		}
		stops[i].Offset = off
		prev = off
	}
	return stops
}

// fillMissingOffsets fills in any color stops that don't have explicit offsets
func fillMissingOffsets(stops []ColorStop) {
	if len(stops) == 0 {
		return
	}

	// If first stop has no offset, set it to 0
	if stops[0].Offset < 0 {
		stops[0].Offset = 0
	}

	// If last stop has no offset, set it to 1
	lastIdx := len(stops) - 1
	if stops[lastIdx].Offset < 0 {
		stops[lastIdx].Offset = 1.0
	}

	// Fill in any missing offsets between defined ones
	for i := 0; i < len(stops); i++ {
		if stops[i].Offset >= 0 {
			continue
		}
		nextIdx := i + 1
		for nextIdx < len(stops) && stops[nextIdx].Offset < 0 {
			nextIdx++
		}
		prevIdx := i - 1
		for prevIdx >= 0 && stops[prevIdx].Offset < 0 {
			prevIdx--
		}
		// Interpolate
		if prevIdx >= 0 && nextIdx < len(stops) {
			prevOffset := stops[prevIdx].Offset
			nextOffset := stops[nextIdx].Offset
			count := nextIdx - prevIdx
			step := (nextOffset - prevOffset) / float64(count)
			stops[i].Offset = prevOffset + step*float64(i-prevIdx)
		}
	}
}

// Line returns the start and end points of a linear gradient inside a w×h
// box. The CSS angle is rotated by (90 - angle) into surface space and the
// line is long enough that the corners get exactly the first and last stop.
func (g *Gradient) Line(w, h float64) (x0, y0, x1, y1 float64) {
	rad := (90 - g.Angle) * math.Pi / 180
	dx := math.Cos(rad)
	dy := -math.Sin(rad) // surface y grows downwards
	length := math.Abs(w*dx) + math.Abs(h*dy)
	cx, cy := w/2, h/2
	half := length / 2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

// LineLength is the length of the gradient line returned by Line.
func (g *Gradient) LineLength(w, h float64) float64 {
	x0, y0, x1, y1 := g.Line(w, h)
	return math.Hypot(x1-x0, y1-y0)
}

// Ellipse returns the center and radii of a radial gradient inside a w×h
// box. Circles have rx == ry.
func (g *Gradient) Ellipse(w, h float64, ctx units.Context) (cx, cy, rx, ry float64) {
	cx = ResolvePosition(g.Center[0], w, 0, ctx, units.Horizontal)
	cy = ResolvePosition(g.Center[1], h, 0, ctx, units.Vertical)

	if g.HasSize {
		rx = units.Resolve(g.Size[0], ctx, units.Horizontal)
		ry = units.Resolve(g.Size[1], ctx, units.Vertical)
		if g.Shape == ShapeCircle {
			ry = rx
		}
		return cx, cy, rx, ry
	}

	left, right := math.Abs(cx), math.Abs(w-cx)
	top, bottom := math.Abs(cy), math.Abs(h-cy)
	closeX, farX := math.Min(left, right), math.Max(left, right)
	closeY, farY := math.Min(top, bottom), math.Max(top, bottom)

	if g.Shape == ShapeCircle {
		var r float64
		switch g.Extent {
		case ClosestSide:
			r = math.Min(closeX, closeY)
		case FarthestSide:
			r = math.Max(farX, farY)
		case ClosestCorner:
			r = math.Hypot(closeX, closeY)
		default:
			r = math.Hypot(farX, farY)
		}
		return cx, cy, r, r
	}

	switch g.Extent {
	case ClosestSide:
		rx, ry = closeX, closeY
	case FarthestSide:
		rx, ry = farX, farY
	case ClosestCorner:
		rx, ry = closeX*math.Sqrt2, closeY*math.Sqrt2
	default:
		rx, ry = farX*math.Sqrt2, farY*math.Sqrt2
	}
	return cx, cy, rx, ry
}
