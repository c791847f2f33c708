package css

import (
	"strings"

	"pixelcss/pkg/units"
)

// Sides in CSS order, shared by every 1-4 value property.
var Sides = [4]string{"top", "right", "bottom", "left"}

// LogicalSides maps each physical side to its logical equivalent for a
// horizontal, left-to-right writing mode.
var LogicalSides = map[string]string{
	"top":    "block-start",
	"right":  "inline-end",
	"bottom": "block-end",
	"left":   "inline-start",
}

var shorthands = map[string]bool{
	"margin":              true,
	"padding":             true,
	"border":              true,
	"border-top":          true,
	"border-right":        true,
	"border-bottom":       true,
	"border-left":         true,
	"border-block-start":  true,
	"border-block-end":    true,
	"border-inline-start": true,
	"border-inline-end":   true,
	"border-width":        true,
	"border-style":        true,
	"border-color":        true,
	"border-radius":       true,
	"background":          true,
	"border-image":        true,
}

func isShorthand(property string) bool { return shorthands[property] }

var borderStyles = map[string]bool{
	"none":   true,
	"hidden": true,
	"solid":  true,
	"dashed": true,
	"dotted": true,
	"double": true,
	"groove": true,
	"ridge":  true,
	"inset":  true,
	"outset": true,
}

// IsBorderStyle reports whether s is a border-style keyword.
func IsBorderStyle(s string) bool { return borderStyles[strings.ToLower(s)] }

// expandShorthand expands shorthand CSS properties into individual properties
func (d Declarations) expandShorthand(property, value string) {
	switch property {
	case "margin", "padding":
		// padding: 10px -> padding-top/right/bottom/left: 10px
		d.expandBoxProperty(property, value)
	case "border":
		// border: 1px solid black -> border-width/style/color
		d.clearSides("width", "style", "color")
		d.expandBorderProperty("border", value)
	case "border-top", "border-right", "border-bottom", "border-left",
		"border-block-start", "border-block-end", "border-inline-start", "border-inline-end":
		d.expandBorderProperty(property, value)
	case "border-width":
		d.clearSides("width")
		d.Set(property, value)
	case "border-style":
		d.clearSides("style")
		d.Set(property, value)
	case "border-color":
		d.clearSides("color")
		d.Set(property, value)
	case "border-radius":
		// Elliptical radii are not supported, keep the horizontal part.
		if i := strings.IndexByte(value, '/'); i >= 0 {
			value = value[:i]
		}
		for _, corner := range []string{
			"top-left", "top-right", "bottom-right", "bottom-left",
			"start-start", "start-end", "end-end", "end-start",
		} {
			delete(d, "border-"+corner+"-radius")
		}
		d.Set(property, value)
	case "background":
		d.expandBackground(value)
	case "border-image":
		d.expandBorderImage(value)
	default:
		// Regular property
		d.Set(property, value)
	}
}

// expandBoxProperty expands margin/padding shorthand
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
//
//	"10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func (d Declarations) expandBoxProperty(prefix, value string) {
	sides := ExpandSides(value)
	if sides[0] == "" {
		return
	}
	for i, side := range Sides {
		d.Set(prefix+"-"+side, sides[i])
	}
}

// clearSides removes per-side longhands so a later shorthand wins over
// earlier longhands.
func (d Declarations) clearSides(parts ...string) {
	for _, part := range parts {
		for _, side := range Sides {
			delete(d, "border-"+side+"-"+part)
			delete(d, "border-"+LogicalSides[side]+"-"+part)
		}
	}
}

// expandBorderProperty expands border shorthand
// Format: "1px solid black" or "2px dotted #FF0000"
func (d Declarations) expandBorderProperty(prefix, value string) {
	width, style, color := "medium", "none", "currentcolor"
	for _, part := range Fields(value) {
		switch {
		case IsBorderStyle(part):
			style = strings.ToLower(part)
		case isBorderWidth(part):
			width = part
		default:
			color = part
		}
	}
	d.Set(prefix+"-width", width)
	d.Set(prefix+"-style", style)
	d.Set(prefix+"-color", color)
}

func isBorderWidth(s string) bool {
	switch strings.ToLower(s) {
	case "thin", "medium", "thick":
		return true
	}
	_, ok := units.Parse(s)
	return ok
}

// BorderWidthKeyword maps thin/medium/thick to pixel lengths.
func BorderWidthKeyword(s string) (units.Length, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "thin":
		return units.Pixels(1), true
	case "medium":
		return units.Pixels(3), true
	case "thick":
		return units.Pixels(5), true
	}
	return units.Length{}, false
}

var repeatKeywords = map[string]bool{
	"repeat":    true,
	"no-repeat": true,
	"repeat-x":  true,
	"repeat-y":  true,
	"round":     true,
	"space":     true,
}

var boxKeywords = map[string]bool{
	"border-box":  true,
	"padding-box": true,
	"content-box": true,
}

var attachmentKeywords = map[string]bool{
	"scroll": true,
	"fixed":  true,
	"local":  true,
}

var positionKeywords = map[string]bool{
	"left":   true,
	"right":  true,
	"top":    true,
	"bottom": true,
	"center": true,
}

type backgroundLayer struct {
	image, position, size, repeat, attachment, origin, clip string
}

// expandBackground expands the multi-layer background shorthand. A color
// is only honored on the final layer.
func (d Declarations) expandBackground(value string) {
	layers := SplitTopLevel(value, ',')
	if len(layers) == 0 {
		return
	}

	var parsed []backgroundLayer
	color := "transparent"
	for i, layer := range layers {
		bl, c := parseBackgroundLayer(layer)
		if c != "" && i == len(layers)-1 {
			color = c
		}
		parsed = append(parsed, bl)
	}

	collect := func(get func(backgroundLayer) string) []string {
		out := make([]string, len(parsed))
		for i, bl := range parsed {
			out[i] = get(bl)
		}
		return out
	}

	d.SetValues("background-image", collect(func(bl backgroundLayer) string { return bl.image }))
	d.SetValues("background-position", collect(func(bl backgroundLayer) string { return bl.position }))
	d.SetValues("background-size", collect(func(bl backgroundLayer) string { return bl.size }))
	d.SetValues("background-repeat", collect(func(bl backgroundLayer) string { return bl.repeat }))
	d.SetValues("background-attachment", collect(func(bl backgroundLayer) string { return bl.attachment }))
	d.SetValues("background-origin", collect(func(bl backgroundLayer) string { return bl.origin }))
	d.SetValues("background-clip", collect(func(bl backgroundLayer) string { return bl.clip }))
	d.Set("background-color", color)
}

func parseBackgroundLayer(layer string) (backgroundLayer, string) {
	bl := backgroundLayer{
		image:      "none",
		position:   "0% 0%",
		size:       "auto",
		repeat:     "repeat",
		attachment: "scroll",
		origin:     "padding-box",
		clip:       "border-box",
	}
	var color string
	var position, size, repeat, boxes []string
	inSize := false

	for _, f := range Fields(spaceSlashes(layer)) {
		lf := strings.ToLower(f)
		switch {
		case f == "/":
			inSize = true
		case lf == "none" || strings.HasPrefix(lf, "url(") || IsGradient(f):
			bl.image = f
		case repeatKeywords[lf]:
			repeat = append(repeat, lf)
		case attachmentKeywords[lf]:
			bl.attachment = lf
		case boxKeywords[lf]:
			boxes = append(boxes, lf)
		case inSize && (lf == "cover" || lf == "contain" || lf == "auto" || isLength(lf)):
			size = append(size, lf)
		case positionKeywords[lf] || isLength(lf):
			inSize = false
			position = append(position, lf)
		case IsColor(f):
			color = f
		}
	}

	if len(position) > 0 {
		bl.position = strings.Join(position, " ")
	}
	if len(size) > 0 {
		bl.size = strings.Join(size, " ")
	}
	if len(repeat) > 0 {
		bl.repeat = strings.Join(repeat, " ")
	}
	switch len(boxes) {
	case 0:
	case 1:
		bl.origin, bl.clip = boxes[0], boxes[0]
	default:
		bl.origin, bl.clip = boxes[0], boxes[1]
	}
	return bl, color
}

func isLength(s string) bool {
	_, ok := units.Parse(s)
	return ok
}

// spaceSlashes surrounds top-level "/" with spaces so "center/cover"
// tokenizes like "center / cover". Slashes inside url() are untouched.
func spaceSlashes(value string) string {
	var sb strings.Builder
	depth := 0
	for _, ch := range value {
		switch {
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case ch == '/' && depth == 0:
			sb.WriteString(" / ")
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

// expandBorderImage expands
// "<source> <slice> [fill] [/ <width> [/ <outset>]] [<repeat>]".
func (d Declarations) expandBorderImage(value string) {
	source, slice, width, outset, repeat := "none", "100%", "1", "0", "stretch"
	var sliceParts, repeatParts []string
	var segments [3][]string
	seg := 0

	for _, f := range Fields(spaceSlashes(value)) {
		lf := strings.ToLower(f)
		switch {
		case f == "/":
			if seg < 2 {
				seg++
			}
		case lf == "none" || strings.HasPrefix(lf, "url(") || IsGradient(f):
			source = f
		case lf == "stretch" || lf == "repeat" || lf == "round" || lf == "space":
			repeatParts = append(repeatParts, lf)
		case seg == 0:
			sliceParts = append(sliceParts, lf)
		default:
			segments[seg] = append(segments[seg], lf)
		}
	}

	if len(sliceParts) > 0 {
		slice = strings.Join(sliceParts, " ")
	}
	if len(segments[1]) > 0 {
		width = strings.Join(segments[1], " ")
	}
	if len(segments[2]) > 0 {
		outset = strings.Join(segments[2], " ")
	}
	if len(repeatParts) > 0 {
		repeat = strings.Join(repeatParts, " ")
	}

	d.Set("border-image-source", source)
	d.Set("border-image-slice", slice)
	d.Set("border-image-width", width)
	d.Set("border-image-outset", outset)
	d.Set("border-image-repeat", repeat)
}
