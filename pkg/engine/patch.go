package engine

import (
	"strconv"
	"strings"

	"pixelcss/pkg/css"
)

// StylePatch holds the properties a caller merges over an element's own
// style so the rendered image replaces its decoration. Empty fields are
// not part of the patch.
type StylePatch struct {
	BackgroundImage  string
	BackgroundSize   string
	BackgroundRepeat string
	BackgroundColor  string
	ImageRendering   string
	Border           string
	BorderImage      string
	BorderRadius     string
	Position         string

	// Padding compensates for the removed border so content stays put.
	PaddingTop    string
	PaddingRight  string
	PaddingBottom string
	PaddingLeft   string
}

type patchField struct {
	name  string
	value string
}

func (p StylePatch) fields() []patchField {
	return []patchField{
		{"backgroundImage", p.BackgroundImage},
		{"backgroundSize", p.BackgroundSize},
		{"backgroundRepeat", p.BackgroundRepeat},
		{"backgroundColor", p.BackgroundColor},
		{"imageRendering", p.ImageRendering},
		{"border", p.Border},
		{"borderImage", p.BorderImage},
		{"borderRadius", p.BorderRadius},
		{"position", p.Position},
		{"paddingTop", p.PaddingTop},
		{"paddingRight", p.PaddingRight},
		{"paddingBottom", p.PaddingBottom},
		{"paddingLeft", p.PaddingLeft},
	}
}

// Map returns the patch keyed by camelCase property name.
func (p StylePatch) Map() map[string]string {
	m := make(map[string]string)
	for _, f := range p.fields() {
		if f.value != "" {
			m[f.name] = f.value
		}
	}
	return m
}

// CSS renders the patch as kebab-case declarations.
func (p StylePatch) CSS() string {
	var parts []string
	for _, f := range p.fields() {
		if f.value != "" {
			parts = append(parts, css.NormalizeProperty(f.name)+": "+f.value+";")
		}
	}
	return strings.Join(parts, " ")
}

// Apply merges the patch over decls and returns the result. Shorthands in
// the patch replace the longhands they cover. decls itself is not modified.
func (p StylePatch) Apply(decls css.Declarations) css.Declarations {
	out := decls.Clone()
	for _, f := range p.fields() {
		if f.value != "" {
			out.Declare(f.name, f.value)
		}
	}
	return out
}

func newPatch(uri string, smooth bool, padding, border [4]float64) StylePatch {
	p := StylePatch{
		BackgroundImage:  `url("` + uri + `")`,
		BackgroundSize:   "100% 100%",
		BackgroundRepeat: "no-repeat",
		BackgroundColor:  "transparent",
		ImageRendering:   "pixelated",
		Border:           "none",
		BorderImage:      "none",
		BorderRadius:     "0",
		Position:         "relative",
	}
	if smooth {
		p.ImageRendering = "auto"
	}
	if border != [4]float64{} {
		p.PaddingTop = px(padding[0] + border[0])
		p.PaddingRight = px(padding[1] + border[1])
		p.PaddingBottom = px(padding[2] + border[2])
		p.PaddingLeft = px(padding[3] + border[3])
	}
	return p
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
