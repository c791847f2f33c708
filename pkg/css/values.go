package css

import (
	"strings"
)

// SplitTopLevel splits value on sep, ignoring separators nested inside
// parentheses or quotes. Parts are trimmed, empty parts are kept so layer
// indexes stay aligned.
func SplitTopLevel(value string, sep rune) []string {
	var parts []string
	var current strings.Builder
	parenDepth := 0
	var quote rune

	for _, ch := range value {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(':
			parenDepth++
		case ch == ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case ch == sep && parenDepth == 0:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}

	if current.Len() > 0 || len(parts) > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}
	return parts
}

// Fields splits value on whitespace outside parentheses, so
// "rgb(0, 0, 0) 50%" yields two fields.
func Fields(value string) []string {
	var fields []string
	var current strings.Builder
	parenDepth := 0

	flush := func() {
		if current.Len() > 0 {
			fields = append(fields, current.String())
			current.Reset()
		}
	}

	for _, ch := range value {
		switch {
		case ch == '(':
			parenDepth++
		case ch == ')':
			if parenDepth > 0 {
				parenDepth--
			}
		case (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r') && parenDepth == 0:
			flush()
			continue
		}
		current.WriteRune(ch)
	}
	flush()
	return fields
}

// ExpandSides applies the CSS 1-4 value rule and returns top, right,
// bottom, left. Missing input yields empty strings.
func ExpandSides(value string) [4]string {
	parts := Fields(value)

	switch len(parts) {
	case 0:
		return [4]string{}
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		// Vertical, horizontal
		return [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		// Top, horizontal, bottom
		return [4]string{parts[0], parts[1], parts[2], parts[1]}
	default:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}
	}
}

// ParseURLValue extracts the reference from url(...), with or without
// quotes.
func ParseURLValue(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if len(value) < 5 || !strings.EqualFold(value[:4], "url(") || !strings.HasSuffix(value, ")") {
		return "", false
	}
	inner := strings.TrimSpace(value[4 : len(value)-1])
	if len(inner) >= 2 {
		if (inner[0] == '"' && inner[len(inner)-1] == '"') || (inner[0] == '\'' && inner[len(inner)-1] == '\'') {
			inner = strings.TrimSpace(inner[1 : len(inner)-1])
		}
	}
	if inner == "" {
		return "", false
	}
	return inner, true
}

// IsGradient reports whether value is a gradient function.
func IsGradient(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(v, "linear-gradient(") || strings.HasPrefix(v, "radial-gradient(")
}
