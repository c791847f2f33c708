// Package style turns parsed declarations into the typed, validated record
// the renderers consume.
package style

import (
	"pixelcss/pkg/css"
	"pixelcss/pkg/units"
)

// BorderStyle represents the border-style property value
type BorderStyle int

const (
	BorderStyleNone BorderStyle = iota
	BorderStyleHidden
	BorderStyleSolid
	BorderStyleDashed
	BorderStyleDotted
	BorderStyleDouble
)

var borderStyleNames = map[BorderStyle]string{
	BorderStyleNone:   "none",
	BorderStyleHidden: "hidden",
	BorderStyleSolid:  "solid",
	BorderStyleDashed: "dashed",
	BorderStyleDotted: "dotted",
	BorderStyleDouble: "double",
}

func (s BorderStyle) String() string { return borderStyleNames[s] }

// Visible reports whether a side with this style paints anything.
func (s BorderStyle) Visible() bool {
	return s != BorderStyleNone && s != BorderStyleHidden
}

// Repeat is a background or border-image repeat mode for one axis.
type Repeat int

const (
	RepeatRepeat Repeat = iota
	RepeatNone
	RepeatRound
	RepeatSpace
	RepeatStretch
)

var repeatNames = map[Repeat]string{
	RepeatRepeat:  "repeat",
	RepeatNone:    "no-repeat",
	RepeatRound:   "round",
	RepeatSpace:   "space",
	RepeatStretch: "stretch",
}

func (r Repeat) String() string { return repeatNames[r] }

// Box selects one of the CSS boxes.
type Box int

const (
	BorderBox Box = iota
	PaddingBox
	ContentBox
)

// BlendMode is a background-blend-mode keyword.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendPlusLighter
)

var blendModes = map[string]BlendMode{
	"normal":       BlendNormal,
	"multiply":     BlendMultiply,
	"screen":       BlendScreen,
	"overlay":      BlendOverlay,
	"darken":       BlendDarken,
	"lighten":      BlendLighten,
	"color-dodge":  BlendColorDodge,
	"color-burn":   BlendColorBurn,
	"soft-light":   BlendSoftLight,
	"difference":   BlendDifference,
	"exclusion":    BlendExclusion,
	"plus-lighter": BlendPlusLighter,
}

func (m BlendMode) String() string {
	for name, v := range blendModes {
		if v == m {
			return name
		}
	}
	return "normal"
}

// ParseBlendMode maps a keyword to a blend mode, unknown keywords are normal.
func ParseBlendMode(s string) BlendMode {
	if m, ok := blendModes[s]; ok {
		return m
	}
	return BlendNormal
}

// Edges holds four lengths in CSS order.
type Edges struct {
	Top, Right, Bottom, Left units.Length
}

// BorderSide is one side of a styled border.
type BorderSide struct {
	Width units.Length
	Style BorderStyle
	Color css.Color
}

// CornerRadii are the four border radii, unresolved.
type CornerRadii struct {
	TopLeft, TopRight, BottomRight, BottomLeft units.Length
}

// IsZero reports whether every radius is zero.
func (r CornerRadii) IsZero() bool {
	return r.TopLeft.IsZero() && r.TopRight.IsZero() && r.BottomRight.IsZero() && r.BottomLeft.IsZero()
}

// LayerImage is either a gradient or an external bitmap reference.
type LayerImage struct {
	Gradient *css.Gradient
	URL      string
}

// Layer is one background layer. Position and Size keep their component
// tokens and are resolved against the painting area at render time.
type Layer struct {
	Image    *LayerImage
	Position [2]string
	Size     [2]string
	RepeatX  Repeat
	RepeatY  Repeat
	Blend    BlendMode
	Clip     Box
	Origin   Box
}

// Background is the ordered layer list, the first layer is topmost. The
// color paints beneath every layer.
type Background struct {
	Color  css.Color
	Layers []Layer
}

// Border is the styled border, used when no border image is present.
type Border struct {
	Top, Right, Bottom, Left BorderSide
}

// Sides returns the four sides in CSS order.
func (b Border) Sides() [4]BorderSide {
	return [4]BorderSide{b.Top, b.Right, b.Bottom, b.Left}
}

// BorderImage describes a nine-slice border image.
type BorderImage struct {
	// Source is a bitmap reference, Gradient is set for gradient sources.
	Source   string
	Gradient *css.Gradient
	Slice    [4]string
	Fill     bool
	Width    [4]string
	Outset   [4]string
	RepeatX  Repeat
	RepeatY  Repeat
}

// Shadow is one box-shadow entry. Shadows are carried through untouched,
// the host keeps painting them.
type Shadow struct {
	OffsetX, OffsetY units.Length
	Blur, Spread     units.Length
	Color            css.Color
	Inset            bool
}

// Style is the typed record built once per render call.
type Style struct {
	Width, Height       units.Length
	HasWidth, HasHeight bool
	BorderBoxSizing     bool

	Padding Edges
	Color   css.Color
	// FontSize is the element font size, the base for em lengths of
	// children. Nil when not declared.
	FontSize *units.Length

	Background  Background
	Border      Border
	Radii       CornerRadii
	BorderImage *BorderImage
	Shadows     []Shadow
}

// URLs returns every external bitmap reference the style needs, background
// layers first then the border image source.
func (s *Style) URLs() []string {
	var urls []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	for _, l := range s.Background.Layers {
		if l.Image != nil {
			add(l.Image.URL)
		}
	}
	if s.BorderImage != nil {
		add(s.BorderImage.Source)
	}
	return urls
}

// BoxSize returns the border-box size given by the declared width and
// height. Under content-box sizing padding and visible border widths are
// added. ok is false unless both width and height are declared.
func (s *Style) BoxSize(ctx units.Context) (w, h float64, ok bool) {
	if !s.HasWidth || !s.HasHeight {
		return 0, 0, false
	}
	w = units.Resolve(s.Width, ctx, units.Horizontal)
	h = units.Resolve(s.Height, ctx, units.Vertical)
	if s.BorderBoxSizing {
		return w, h, true
	}

	// Padding percentages refer to the container width on both axes.
	pad := func(l units.Length) float64 { return units.Resolve(l, ctx, units.Horizontal) }
	var bw [4]float64
	for i, side := range s.Border.Sides() {
		if side.Style.Visible() {
			bw[i] = units.Resolve(side.Width, ctx, units.Horizontal)
		}
	}
	w += pad(s.Padding.Left) + pad(s.Padding.Right) + bw[1] + bw[3]
	h += pad(s.Padding.Top) + pad(s.Padding.Bottom) + bw[0] + bw[2]
	return w, h, true
}
