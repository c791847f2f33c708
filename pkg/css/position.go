package css

import (
	"strings"

	"pixelcss/pkg/units"
)

// ResolvePosition resolves one background-position component. Keywords and
// percentages place the item at (container - size) * fraction, lengths are
// plain offsets from the start edge, "right 10px" style components offset
// from the named edge. Unknown tokens resolve to 0.
func ResolvePosition(token string, container, size float64, ctx units.Context, axis units.Axis) float64 {
	token = strings.ToLower(strings.TrimSpace(token))
	free := container - size

	if edge, offset, ok := strings.Cut(token, " "); ok {
		off := resolveOffset(strings.TrimSpace(offset), free, ctx, axis)
		switch edge {
		case "right", "bottom":
			return free - off
		}
		return off
	}

	switch token {
	case "", "left", "top":
		return 0
	case "center":
		return free / 2
	case "right", "bottom":
		return free
	}
	return resolveOffset(token, free, ctx, axis)
}

func resolveOffset(token string, free float64, ctx units.Context, axis units.Axis) float64 {
	l, ok := units.Parse(token)
	if !ok {
		return 0
	}
	if l.Unit == units.Percent {
		return free * l.Value / 100
	}
	// Offsets may be negative, so resolve the magnitude and restore the sign.
	if l.Value < 0 {
		return -units.Resolve(units.Length{Value: -l.Value, Unit: l.Unit}, ctx, axis)
	}
	return units.Resolve(l, ctx, axis)
}

// SplitPosition splits a background-position value into its horizontal and
// vertical components, defaulting to "0%" and "0%" and putting vertical
// keywords in the second slot. In the three and four value forms edge
// offsets ("right 10px bottom 5px") stay attached to their keyword.
func SplitPosition(value string) [2]string {
	fields := Fields(strings.ToLower(value))
	if len(fields) < 3 {
		return splitPair(fields)
	}
	var parts []string
	for _, f := range fields {
		n := len(parts)
		if n > 0 && isEdgeKeyword(parts[n-1]) && !strings.Contains(parts[n-1], " ") {
			if _, ok := units.Parse(f); ok {
				parts[n-1] += " " + f
				continue
			}
		}
		parts = append(parts, f)
	}
	return splitPair(parts)
}

func splitPair(parts []string) [2]string {
	switch len(parts) {
	case 0:
		return [2]string{"0%", "0%"}
	case 1:
		if p := parts[0]; strings.HasPrefix(p, "top") || strings.HasPrefix(p, "bottom") {
			return [2]string{"center", p}
		}
		return [2]string{parts[0], "center"}
	default:
		return positionPair(parts[0], parts[1])
	}
}

func isEdgeKeyword(s string) bool {
	switch s {
	case "left", "right", "top", "bottom":
		return true
	}
	return false
}
