package css

import (
	"bytes"
	"errors"
	"io"
	"sort"
	"strings"
	"unicode"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declarations maps a property name to its value list. Layered properties
// (background-image, background-size, ...) keep one entry per layer,
// everything else holds a single value.
type Declarations map[string][]string

// layeredProperties are split on top-level commas.
var layeredProperties = map[string]bool{
	"background-image":      true,
	"background-position":   true,
	"background-size":       true,
	"background-repeat":     true,
	"background-blend-mode": true,
	"background-clip":       true,
	"background-origin":     true,
	"background-attachment": true,
	"box-shadow":            true,
}

// IsLayered reports whether property holds a comma separated value list.
func IsLayered(property string) bool { return layeredProperties[property] }

// Get returns the single value of property. For layered properties the
// values are joined back with ", ".
func (d Declarations) Get(property string) (string, bool) {
	vals, ok := d[property]
	if !ok || len(vals) == 0 {
		return "", false
	}
	if len(vals) == 1 {
		return vals[0], true
	}
	return strings.Join(vals, ", "), true
}

// Values returns the value list of property.
func (d Declarations) Values(property string) []string {
	return d[property]
}

// Set stores value for property without shorthand expansion.
func (d Declarations) Set(property, value string) {
	property = NormalizeProperty(property)
	value = strings.TrimSpace(value)
	if IsLayered(property) {
		d[property] = SplitTopLevel(value, ',')
		return
	}
	d[property] = []string{value}
}

// Declare stores value for property the way a parsed declaration would,
// expanding shorthands and clearing the longhands they replace.
func (d Declarations) Declare(property, value string) {
	d.expandShorthand(NormalizeProperty(property), strings.TrimSpace(value))
}

// SetValues stores an already split value list.
func (d Declarations) SetValues(property string, values []string) {
	d[NormalizeProperty(property)] = append([]string(nil), values...)
}

// Merge copies every entry of other over d.
func (d Declarations) Merge(other Declarations) {
	for k, v := range other {
		d[k] = append([]string(nil), v...)
	}
}

// Clone returns a deep copy.
func (d Declarations) Clone() Declarations {
	out := make(Declarations, len(d))
	out.Merge(d)
	return out
}

// Keys returns the property names in sorted order.
func (d Declarations) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the declarations as "property: value;" text in sorted
// property order.
func (d Declarations) String() string {
	var sb strings.Builder
	for i, k := range d.Keys() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(d[k], ", "))
		sb.WriteByte(';')
	}
	return sb.String()
}

// NormalizeProperty lower-cases a property name and converts camelCase
// (backgroundColor) to kebab-case (background-color).
func NormalizeProperty(property string) string {
	property = strings.TrimSpace(property)
	if strings.HasPrefix(property, "--") {
		return property
	}
	var sb strings.Builder
	for i, r := range property {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FromMap builds declarations from a property map as produced by style
// objects, expanding shorthands the same way ParseDeclarations does.
func FromMap(props map[string]string) Declarations {
	d := make(Declarations, len(props))
	// Shorthands first so longhands in the same map override them.
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		si, sj := isShorthand(NormalizeProperty(keys[i])), isShorthand(NormalizeProperty(keys[j]))
		if si != sj {
			return si
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		d.expandShorthand(NormalizeProperty(k), props[k])
	}
	return d
}

// ParseDeclarations parses "property: value;" text in document order, later
// declarations override earlier ones. Malformed declarations are skipped.
func ParseDeclarations(text string) Declarations {
	d := make(Declarations)
	p := css.NewParser(parse.NewInput(bytes.NewReader([]byte(text))), true)
	// The parser resynchronizes on the next semicolon after a parse error,
	// every error consumes input so this bounds the loop.
	for errs := 0; errs <= len(text); {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err == nil || errors.Is(err, io.EOF) {
				return d
			}
			errs++
		case css.DeclarationGrammar:
			property := NormalizeProperty(strings.ToLower(string(data)))
			value := rawValue(p.Values())
			if value == "" {
				continue
			}
			d.expandShorthand(property, value)
		}
	}
	return d
}

// rawValue rebuilds the declaration value from tokens, collapsing
// whitespace, writing every comma as ", " and dropping !important. The
// lexer does not report whitespace after a comma.
func rawValue(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken:
			space = sb.Len() > 0
		case css.CommaToken:
			sb.WriteString(", ")
			space = false
		default:
			if space && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
			space = false
			sb.Write(t.Data)
		}
	}
	raw := strings.TrimSpace(sb.String())
	if i := strings.Index(strings.ToLower(raw), "!important"); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	return raw
}
