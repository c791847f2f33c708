package render

import (
	"math"
	"strings"

	"pixelcss/pkg/clip"
	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

// maxTilesPerAxis bounds tiling when a tile is tiny compared to the area.
const maxTilesPerAxis = 4096

type span struct {
	start, size float64
}

// PlanTiles returns the destination rectangles of a tiled image. origin is
// the positioning area, paint the area tiles must cover. (posX, posY) is the
// resolved offset of the anchor tile inside origin.
func PlanTiles(paint, origin clip.Rect, tileW, tileH, posX, posY float64, repeatX, repeatY style.Repeat) []clip.Rect {
	xs := planAxis(paint.X, paint.W, origin.X, origin.W, tileW, posX, repeatX)
	ys := planAxis(paint.Y, paint.H, origin.Y, origin.H, tileH, posY, repeatY)

	rects := make([]clip.Rect, 0, len(xs)*len(ys))
	for _, y := range ys {
		for _, x := range xs {
			rects = append(rects, clip.Rect{X: x.start, Y: y.start, W: x.size, H: y.size})
		}
	}
	return rects
}

func planAxis(paintStart, paintLen, originStart, originLen, size, pos float64, mode style.Repeat) []span {
	if size <= 0 {
		return nil
	}
	switch mode {
	case style.RepeatRepeat:
		return repeatSpans(paintStart, paintLen, originStart+pos, size)
	case style.RepeatRound:
		n := math.Max(1, math.Round(originLen/size))
		size = originLen / n
		if size <= 0 {
			return nil
		}
		return repeatSpans(paintStart, paintLen, originStart+math.Mod(pos, size), size)
	case style.RepeatSpace:
		n := math.Floor(originLen / size)
		if n < 2 {
			return []span{{originStart + pos, size}}
		}
		gap := (originLen - n*size) / (n - 1)
		spans := make([]span, 0, int(n))
		for i := 0; i < int(n) && i < maxTilesPerAxis; i++ {
			spans = append(spans, span{originStart + float64(i)*(size+gap), size})
		}
		return spans
	}
	return []span{{originStart + pos, size}}
}

// repeatSpans lays tiles of size through anchor until [start, start+length)
// is covered.
func repeatSpans(start, length, anchor, size float64) []span {
	first := anchor - math.Ceil((anchor-start)/size)*size
	var spans []span
	for x := first; x < start+length && len(spans) < maxTilesPerAxis; x += size {
		spans = append(spans, span{x, size})
	}
	return spans
}

// TileSize resolves background-size for an image with intrinsic size
// (iw, ih) in area surface pixels. Images without an intrinsic size
// (gradients) pass zeros and fill the area when auto.
func (f Frame) TileSize(size [2]string, iw, ih float64, area clip.Rect) (float64, float64) {
	sx, sy := strings.ToLower(size[0]), strings.ToLower(size[1])
	hasIntrinsic := iw > 0 && ih > 0

	if sx == "cover" || sx == "contain" {
		if !hasIntrinsic {
			return area.W, area.H
		}
		fx, fy := area.W/iw, area.H/ih
		scale := math.Max(fx, fy)
		if sx == "contain" {
			scale = math.Min(fx, fy)
		}
		return iw * scale, ih * scale
	}

	w, wok := f.sizeComponent(sx, area.W)
	h, hok := f.sizeComponent(sy, area.H)
	switch {
	case wok && hok:
		return w, h
	case !hasIntrinsic:
		if !wok {
			w = area.W
		}
		if !hok {
			h = area.H
		}
		return w, h
	case wok:
		return w, ih * w / iw
	case hok:
		return iw * h / ih, h
	}
	return iw, ih
}

// sizeComponent resolves one axis, false for auto.
func (f Frame) sizeComponent(v string, ref float64) (float64, bool) {
	if v == "" || v == "auto" {
		return 0, false
	}
	l, ok := units.Parse(v)
	if !ok {
		return 0, false
	}
	return f.resolve(l, ref), true
}
