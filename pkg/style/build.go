package style

import (
	"strings"

	"pixelcss/pkg/css"
	"pixelcss/pkg/units"
)

// corner longhand suffixes in CSS order, paired with their logical names
// for a horizontal left-to-right writing mode.
var corners = [4][2]string{
	{"top-left", "start-start"},
	{"top-right", "start-end"},
	{"bottom-right", "end-end"},
	{"bottom-left", "end-start"},
}

// Build turns declarations into a Style. It never fails: anything
// unreadable falls back to the property's initial value.
func Build(decls css.Declarations) *Style {
	s := &Style{Color: css.Black}

	// Phase 1: element basics, color first since currentcolor needs it.
	if v, ok := decls.Get("color"); ok {
		s.Color = parseColor(v, css.Black)
	}
	s.Width, s.HasWidth = sizeLength(decls, "width")
	s.Height, s.HasHeight = sizeLength(decls, "height")
	if v, ok := decls.Get("box-sizing"); ok {
		s.BorderBoxSizing = strings.EqualFold(v, "border-box")
	}
	if v, ok := decls.Get("font-size"); ok {
		if l, ok := units.Parse(v); ok {
			s.FontSize = &l
		}
	}
	s.Padding = Edges{
		Top:    padding(decls, "top"),
		Right:  padding(decls, "right"),
		Bottom: padding(decls, "bottom"),
		Left:   padding(decls, "left"),
	}

	// Phase 2: background layers.
	s.Background = buildBackground(decls, s.Color)

	// Phase 3: border, radii and border image.
	var sides [4]BorderSide
	for i, side := range css.Sides {
		sides[i] = buildSide(decls, i, side, s.Color)
	}
	s.Border = Border{Top: sides[0], Right: sides[1], Bottom: sides[2], Left: sides[3]}
	s.Radii = buildRadii(decls)
	s.BorderImage = buildBorderImage(decls)

	// Phase 4: shadows pass through.
	for _, v := range decls.Values("box-shadow") {
		if sh, ok := parseShadow(v, s.Color); ok {
			s.Shadows = append(s.Shadows, sh)
		}
	}

	return s
}

// FromText parses declaration text and builds the style in one step.
func FromText(text string) *Style {
	return Build(css.ParseDeclarations(text))
}

func parseColor(v string, current css.Color) css.Color {
	if strings.EqualFold(strings.TrimSpace(v), "currentcolor") {
		return current
	}
	c, _ := css.ParseColor(v)
	return c
}

func sizeLength(decls css.Declarations, property string) (units.Length, bool) {
	v, ok := decls.Get(property)
	if !ok {
		return units.Length{}, false
	}
	return units.Parse(v)
}

func padding(decls css.Declarations, side string) units.Length {
	v, ok := first(decls, "padding-"+css.LogicalSides[side], "padding-"+side)
	if !ok {
		return units.Length{}
	}
	l, _ := units.Parse(v)
	return l
}

// first returns the value of the first declared property.
func first(decls css.Declarations, properties ...string) (string, bool) {
	for _, p := range properties {
		if v, ok := decls.Get(p); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// sideValue looks up one side of a border part, logical longhand first,
// then the physical longhand, then the 1-4 value list.
func sideValue(decls css.Declarations, index int, side, part string) (string, bool) {
	if v, ok := first(decls, "border-"+css.LogicalSides[side]+"-"+part, "border-"+side+"-"+part); ok {
		return v, true
	}
	if v, ok := decls.Get("border-" + part); ok {
		if vals := css.ExpandSides(v); vals[index] != "" {
			return vals[index], true
		}
	}
	return "", false
}

func buildSide(decls css.Declarations, index int, side string, current css.Color) BorderSide {
	bs := BorderSide{Style: BorderStyleNone, Color: current, Width: units.Pixels(3)}

	if v, ok := sideValue(decls, index, side, "style"); ok {
		bs.Style = parseBorderStyle(v)
	}
	if v, ok := sideValue(decls, index, side, "color"); ok {
		bs.Color = parseColor(v, current)
	}
	if v, ok := sideValue(decls, index, side, "width"); ok {
		if l, ok := css.BorderWidthKeyword(v); ok {
			bs.Width = l
		} else if l, ok := units.Parse(v); ok {
			bs.Width = l
		}
	}
	// A side that paints nothing takes no space either.
	if !bs.Style.Visible() {
		bs.Width = units.Length{}
	}
	return bs
}

func parseBorderStyle(v string) BorderStyle {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "hidden":
		return BorderStyleHidden
	case "solid", "groove", "ridge", "inset", "outset":
		return BorderStyleSolid
	case "dashed":
		return BorderStyleDashed
	case "dotted":
		return BorderStyleDotted
	case "double":
		return BorderStyleDouble
	}
	return BorderStyleNone
}

func buildRadii(decls css.Declarations) CornerRadii {
	var shorthand [4]string
	if v, ok := decls.Get("border-radius"); ok {
		shorthand = css.ExpandSides(v)
	}
	var r [4]units.Length
	for i, c := range corners {
		v, ok := first(decls, "border-"+c[1]+"-radius", "border-"+c[0]+"-radius")
		if !ok {
			v = shorthand[i]
		}
		// Corner longhands may carry an elliptical pair, keep the first.
		if fields := css.Fields(v); len(fields) > 0 {
			r[i], _ = units.Parse(fields[0])
		}
	}
	return CornerRadii{TopLeft: r[0], TopRight: r[1], BottomRight: r[2], BottomLeft: r[3]}
}

func buildBackground(decls css.Declarations, current css.Color) Background {
	bg := Background{Color: css.Transparent}
	if v, ok := decls.Get("background-color"); ok {
		bg.Color = parseColor(v, current)
	}

	images := decls.Values("background-image")
	if len(images) == 0 {
		images = []string{"none"}
	}

	cycle := func(property string, i int, def string) string {
		vals := decls.Values(property)
		if len(vals) == 0 {
			return def
		}
		if v := strings.TrimSpace(vals[i%len(vals)]); v != "" {
			return v
		}
		return def
	}

	bg.Layers = make([]Layer, len(images))
	for i, img := range images {
		rx, ry := parseRepeat(cycle("background-repeat", i, "repeat"), RepeatRepeat)
		bg.Layers[i] = Layer{
			Image:    parseImage(img),
			Position: css.SplitPosition(cycle("background-position", i, "0% 0%")),
			Size:     splitSize(cycle("background-size", i, "auto")),
			RepeatX:  rx,
			RepeatY:  ry,
			Blend:    ParseBlendMode(strings.ToLower(cycle("background-blend-mode", i, "normal"))),
			Clip:     parseBox(cycle("background-clip", i, "border-box"), BorderBox),
			Origin:   parseBox(cycle("background-origin", i, "padding-box"), PaddingBox),
		}
	}
	return bg
}

// parseImage returns nil for none and anything unreadable.
func parseImage(v string) *LayerImage {
	v = strings.TrimSpace(v)
	if css.IsGradient(v) {
		if g, ok := css.ParseGradient(v); ok {
			return &LayerImage{Gradient: g}
		}
		return nil
	}
	if u, ok := css.ParseURLValue(v); ok {
		return &LayerImage{URL: u}
	}
	return nil
}

func splitSize(v string) [2]string {
	parts := css.Fields(strings.ToLower(v))
	switch len(parts) {
	case 0:
		return [2]string{"auto", "auto"}
	case 1:
		if parts[0] == "cover" || parts[0] == "contain" {
			return [2]string{parts[0], parts[0]}
		}
		return [2]string{parts[0], "auto"}
	default:
		return [2]string{parts[0], parts[1]}
	}
}

func parseBox(v string, def Box) Box {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "border-box":
		return BorderBox
	case "padding-box":
		return PaddingBox
	case "content-box":
		return ContentBox
	}
	return def
}

var repeatModes = map[string]Repeat{
	"repeat":    RepeatRepeat,
	"no-repeat": RepeatNone,
	"round":     RepeatRound,
	"space":     RepeatSpace,
	"stretch":   RepeatStretch,
}

// parseRepeat reads the one or two keyword repeat syntax. repeat-x and
// repeat-y are single keyword forms.
func parseRepeat(v string, def Repeat) (Repeat, Repeat) {
	parts := css.Fields(strings.ToLower(v))
	if len(parts) == 0 {
		return def, def
	}
	switch parts[0] {
	case "repeat-x":
		return RepeatRepeat, RepeatNone
	case "repeat-y":
		return RepeatNone, RepeatRepeat
	}
	x, ok := repeatModes[parts[0]]
	if !ok {
		x = def
	}
	if len(parts) == 1 {
		return x, x
	}
	y, ok := repeatModes[parts[1]]
	if !ok {
		y = def
	}
	return x, y
}

func buildBorderImage(decls css.Declarations) *BorderImage {
	src, ok := decls.Get("border-image-source")
	if !ok {
		return nil
	}
	bi := &BorderImage{}
	switch {
	case css.IsGradient(src):
		g, ok := css.ParseGradient(src)
		if !ok {
			return nil
		}
		bi.Gradient = g
	default:
		u, ok := css.ParseURLValue(src)
		if !ok {
			return nil
		}
		bi.Source = u
	}

	slice := "100%"
	if v, ok := decls.Get("border-image-slice"); ok {
		slice = v
	}
	var sliceParts []string
	for _, f := range css.Fields(slice) {
		if strings.EqualFold(f, "fill") {
			bi.Fill = true
			continue
		}
		sliceParts = append(sliceParts, f)
	}
	bi.Slice = fillSides(strings.Join(sliceParts, " "), "100%")
	bi.Width = fillSides(valueOr(decls, "border-image-width", "1"), "1")
	bi.Outset = fillSides(valueOr(decls, "border-image-outset", "0"), "0")
	bi.RepeatX, bi.RepeatY = parseRepeat(valueOr(decls, "border-image-repeat", "stretch"), RepeatStretch)
	return bi
}

func valueOr(decls css.Declarations, property, def string) string {
	if v, ok := decls.Get(property); ok && v != "" {
		return v
	}
	return def
}

func fillSides(v, def string) [4]string {
	sides := css.ExpandSides(v)
	if sides[0] == "" {
		return [4]string{def, def, def, def}
	}
	return sides
}

// parseShadow reads "[inset] <x> <y> [<blur> [<spread>]] [<color>]" in any
// order of the color and inset keyword.
func parseShadow(v string, current css.Color) (Shadow, bool) {
	sh := Shadow{Color: current}
	var lengths []units.Length
	for _, f := range css.Fields(v) {
		switch {
		case strings.EqualFold(f, "inset"):
			sh.Inset = true
		case strings.EqualFold(f, "none"):
			return Shadow{}, false
		default:
			if l, ok := units.Parse(f); ok {
				lengths = append(lengths, l)
				continue
			}
			sh.Color = parseColor(f, current)
		}
	}
	if len(lengths) < 2 {
		return Shadow{}, false
	}
	sh.OffsetX, sh.OffsetY = lengths[0], lengths[1]
	if len(lengths) > 2 {
		sh.Blur = lengths[2]
	}
	if len(lengths) > 3 {
		sh.Spread = lengths[3]
	}
	return sh, true
}
