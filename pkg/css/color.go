package css

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a non-premultiplied 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Black is the fallback for anything ParseColor cannot read.
var Black = Color{0, 0, 0, 255}

// Transparent is fully transparent black.
var Transparent = Color{0, 0, 0, 0}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// IsTransparent reports whether the color has zero alpha.
func (c Color) IsTransparent() bool { return c.A == 0 }

// rebeccaPurple is the one CSS named color missing from the SVG 1.1 table.
var rebeccaPurple = Color{102, 51, 153, 255}

func namedColor(name string) (Color, bool) {
	switch name {
	case "transparent":
		return Transparent, true
	case "rebeccapurple":
		return rebeccaPurple, true
	}
	if c, ok := colornames.Map[name]; ok {
		return Color{c.R, c.G, c.B, c.A}, true
	}
	return Color{}, false
}

// ParseColor parses hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba(),
// hsl()/hsla() and named colors. It never fails: unreadable input yields
// opaque black and false.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))

	if c, ok := namedColor(colorStr); ok {
		return c, true
	}
	if strings.HasPrefix(colorStr, "#") {
		if c, ok := parseHexColor(colorStr[1:]); ok {
			return c, true
		}
		return Black, false
	}
	if strings.HasPrefix(colorStr, "rgb(") || strings.HasPrefix(colorStr, "rgba(") {
		if c, ok := parseRGBFunc(colorStr); ok {
			return c, true
		}
	}
	if strings.HasPrefix(colorStr, "hsl(") || strings.HasPrefix(colorStr, "hsla(") {
		if c, ok := parseHSLFunc(colorStr); ok {
			return c, true
		}
	}
	return Black, false
}

// IsColor reports whether s is something ParseColor understands. Used by
// shorthand expansion to tell colors from other tokens.
func IsColor(s string) bool {
	if strings.EqualFold(strings.TrimSpace(s), "currentcolor") {
		return true
	}
	_, ok := ParseColor(s)
	return ok
}

func parseHexColor(hex string) (Color, bool) {
	switch len(hex) {
	case 3, 4:
		// #rgb -> #rrggbb
		var expanded strings.Builder
		for _, ch := range hex {
			expanded.WriteRune(ch)
			expanded.WriteRune(ch)
		}
		hex = expanded.String()
	case 6, 8:
	default:
		return Color{}, false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	if len(hex) == 6 {
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, true
}

// parseRGBFunc handles both the legacy comma syntax and the space syntax
// with an optional "/ alpha".
func parseRGBFunc(s string) (Color, bool) {
	parts, ok := funcArgs(s)
	if !ok {
		return Color{}, false
	}

	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(parts[i])
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}

	a := uint8(255)
	if len(parts) == 4 {
		v, ok := parseAlpha(parts[3])
		if !ok {
			return Color{}, false
		}
		a = v
	}
	return Color{ch[0], ch[1], ch[2], a}, true
}

// funcArgs splits the arguments of a color function, accepting commas,
// spaces and a "/" before alpha.
func funcArgs(s string) ([]string, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	body := s[open+1 : len(s)-1]
	body = strings.ReplaceAll(body, "/", " ")
	body = strings.ReplaceAll(body, ",", " ")
	parts := strings.Fields(body)
	if len(parts) != 3 && len(parts) != 4 {
		return nil, false
	}
	return parts, true
}

// parseHSLFunc handles hsl() and hsla(). Hue is in degrees (or turn, rad),
// saturation and lightness are percentages.
func parseHSLFunc(s string) (Color, bool) {
	parts, ok := funcArgs(s)
	if !ok {
		return Color{}, false
	}
	h, ok := parseHue(parts[0])
	if !ok {
		return Color{}, false
	}
	sat, ok := parsePercent(parts[1])
	if !ok {
		return Color{}, false
	}
	light, ok := parsePercent(parts[2])
	if !ok {
		return Color{}, false
	}

	a := uint8(255)
	if len(parts) == 4 {
		if a, ok = parseAlpha(parts[3]); !ok {
			return Color{}, false
		}
	}
	r, g, b := hslToRGB(h, sat, light)
	return Color{clampByte(r * 255), clampByte(g * 255), clampByte(b * 255), a}, true
}

func parseHue(s string) (float64, bool) {
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "deg"):
		s = strings.TrimSuffix(s, "deg")
	case strings.HasSuffix(s, "turn"):
		s, scale = strings.TrimSuffix(s, "turn"), 360
	case strings.HasSuffix(s, "rad"):
		s, scale = strings.TrimSuffix(s, "rad"), 180/math.Pi
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	h := math.Mod(v*scale, 360)
	if h < 0 {
		h += 360
	}
	return h, true
}

// parsePercent reads "50%" (or a bare number) as a fraction clamped to [0,1].
func parsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return math.Max(0, math.Min(1, v/100)), true
}

// hslToRGB converts hue [0,360), saturation and lightness [0,1] to RGB
// fractions.
func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	h /= 360
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func parseChannel(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampByte(v / 100 * 255), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampByte(v), true
}

func parseAlpha(s string) (uint8, bool) {
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clampByte(v / 100 * 255), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clampByte(v * 255), true
}

func clampByte(v float64) uint8 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
