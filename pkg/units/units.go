// Package units resolves CSS-like lengths to device pixels.
package units

import (
	"math"
	"strconv"
	"strings"
)

// Unit is the kind of a Length value.
type Unit int

const (
	Px Unit = iota
	Percent
	Em
	Rem
	Vw
	Vh
)

var unitNames = map[Unit]string{
	Px:      "px",
	Percent: "%",
	Em:      "em",
	Rem:     "rem",
	Vw:      "vw",
	Vh:      "vh",
}

func (u Unit) String() string {
	if s, ok := unitNames[u]; ok {
		return s
	}
	return "unknown"
}

// Length is an unresolved length. Value may be negative, clamping happens
// in Resolve.
type Length struct {
	Value float64
	Unit  Unit
}

// Pixels returns an absolute length.
func Pixels(v float64) Length { return Length{Value: v, Unit: Px} }

// Percentage returns a percent length (50 means 50%).
func Percentage(v float64) Length { return Length{Value: v, Unit: Percent} }

// IsZero reports whether the length is zero regardless of unit.
func (l Length) IsZero() bool { return l.Value == 0 }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// Axis selects the container dimension percentages resolve against.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
	// Smaller resolves percentages against min(width, height), used for radii.
	Smaller
)

// Context carries the references needed to resolve relative units.
type Context struct {
	Width          float64
	Height         float64
	RootFontSize   float64
	ParentFontSize float64
	ViewportWidth  float64
	ViewportHeight float64
}

const DefaultFontSize = 16.0

// NewContext returns a context for a container of the given size with
// default font sizes and the viewport equal to the container.
func NewContext(width, height float64) Context {
	return Context{
		Width:          width,
		Height:         height,
		RootFontSize:   DefaultFontSize,
		ParentFontSize: DefaultFontSize,
		ViewportWidth:  width,
		ViewportHeight: height,
	}
}

// Parse parses a length like "12px", "50%", "1.5em", "2rem", "10vw" or a
// bare number (treated as px). Malformed input returns a zero px length and
// false.
func Parse(val string) (Length, bool) {
	val = strings.ToLower(strings.TrimSpace(val))
	if val == "" {
		return Length{}, false
	}

	unit := Px
	num := val
	switch {
	case strings.HasSuffix(val, "%"):
		unit, num = Percent, strings.TrimSuffix(val, "%")
	case strings.HasSuffix(val, "rem"):
		unit, num = Rem, strings.TrimSuffix(val, "rem")
	case strings.HasSuffix(val, "em"):
		unit, num = Em, strings.TrimSuffix(val, "em")
	case strings.HasSuffix(val, "vw"):
		unit, num = Vw, strings.TrimSuffix(val, "vw")
	case strings.HasSuffix(val, "vh"):
		unit, num = Vh, strings.TrimSuffix(val, "vh")
	case strings.HasSuffix(val, "px"):
		num = strings.TrimSuffix(val, "px")
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Length{}, false
	}
	return Length{Value: v, Unit: unit}, true
}

// Resolve converts l to pixels. It never fails: unknown units resolve to 0
// and negative results clamp to 0.
func Resolve(l Length, ctx Context, axis Axis) float64 {
	var px float64
	switch l.Unit {
	case Px:
		px = l.Value
	case Percent:
		px = l.Value / 100 * reference(ctx, axis)
	case Em:
		px = l.Value * fontSize(ctx.ParentFontSize)
	case Rem:
		px = l.Value * fontSize(ctx.RootFontSize)
	case Vw:
		vw := ctx.ViewportWidth
		if vw == 0 {
			vw = ctx.Width
		}
		px = l.Value / 100 * vw
	case Vh:
		vh := ctx.ViewportHeight
		if vh == 0 {
			vh = ctx.Height
		}
		px = l.Value / 100 * vh
	default:
		return 0
	}
	if px < 0 || math.IsNaN(px) {
		return 0
	}
	return px
}

// ResolveString parses and resolves val in one step, 0 for malformed input.
func ResolveString(val string, ctx Context, axis Axis) float64 {
	l, ok := Parse(val)
	if !ok {
		return 0
	}
	return Resolve(l, ctx, axis)
}

func reference(ctx Context, axis Axis) float64 {
	switch axis {
	case Vertical:
		return ctx.Height
	case Smaller:
		return math.Min(ctx.Width, ctx.Height)
	default:
		return ctx.Width
	}
}

func fontSize(v float64) float64 {
	if v <= 0 {
		return DefaultFontSize
	}
	return v
}
