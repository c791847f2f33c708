package render

import (
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"pixelcss/pkg/clip"
	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

// Nine-slice region indexes.
const (
	SliceTopLeft = iota
	SliceTop
	SliceTopRight
	SliceLeft
	SliceCenter
	SliceRight
	SliceBottomLeft
	SliceBottom
	SliceBottomRight
)

// NineSlice partitions r into nine regions using top, right, bottom, left
// insets. Insets whose opposite pairs exceed the size are scaled down by
// the same factor so the regions never overlap.
func NineSlice(r clip.Rect, insets [4]float64) [9]clip.Rect {
	t, rt, b, l := insets[0], insets[1], insets[2], insets[3]
	for _, v := range []*float64{&t, &rt, &b, &l} {
		*v = math.Max(0, *v)
	}

	f := 1.0
	if l+rt > r.W && l+rt > 0 {
		f = math.Min(f, r.W/(l+rt))
	}
	if t+b > r.H && t+b > 0 {
		f = math.Min(f, r.H/(t+b))
	}
	t, rt, b, l = t*f, rt*f, b*f, l*f

	xs := [3]float64{r.X, r.X + l, r.X + r.W - rt}
	ws := [3]float64{l, math.Max(0, r.W-l-rt), rt}
	ys := [3]float64{r.Y, r.Y + t, r.Y + r.H - b}
	hs := [3]float64{t, math.Max(0, r.H-t-b), b}

	var out [9]clip.Rect
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out[row*3+col] = clip.Rect{X: xs[col], Y: ys[row], W: ws[col], H: hs[row]}
		}
	}
	return out
}

// drawBorderImage paints a nine-slice border image and reports whether it
// did. A missing bitmap source leaves the surface untouched.
func (r *Renderer) drawBorderImage(dst *image.RGBA, bi *style.BorderImage) bool {
	f := r.frame

	var src image.Image
	srcScale := 1.0 // source pixels per CSS pixel
	if bi.Gradient != nil {
		src = PaintGradient(bi.Gradient, f.Width, f.Height, f.Scale, f.cssContext(float64(f.Width), float64(f.Height)))
		srcScale = f.Scale
	} else {
		img, ok := r.images[bi.Source]
		if !ok || img == nil {
			r.logger.Debug("Border image dropped", zap.String("url", bi.Source))
			return false
		}
		src = img
	}
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw <= 0 || sh <= 0 {
		return false
	}

	// Phase 1: slices in source pixels.
	var slices [4]float64
	for i, v := range bi.Slice {
		ref := sh
		if i%2 == 1 {
			ref = sw
		}
		slices[i] = sliceInset(v, ref, srcScale)
	}

	// Phase 2: widths and outsets in surface pixels.
	var widths, outsets [4]float64
	area := f.BorderRect()
	for i := range widths {
		ref := area.H
		if i%2 == 1 {
			ref = area.W
		}
		auto := slices[i] / srcScale * f.Scale
		widths[i] = f.borderImageLength(bi.Width[i], ref, f.Border[i], auto)
		outsets[i] = f.borderImageLength(bi.Outset[i], ref, f.Border[i], 0)
	}
	dest := clip.Rect{
		X: area.X - outsets[3],
		Y: area.Y - outsets[0],
		W: area.W + outsets[1] + outsets[3],
		H: area.H + outsets[0] + outsets[2],
	}

	srcRegions := NineSlice(clip.Rect{X: float64(sb.Min.X), Y: float64(sb.Min.Y), W: sw, H: sh}, slices)
	dstRegions := NineSlice(dest, widths)

	// Phase 3: corners stretch, edges and the center follow the repeat modes.
	for i := range dstRegions {
		if i == SliceCenter && !bi.Fill {
			continue
		}
		s, d := srcRegions[i], dstRegions[i]
		if s.Empty() || d.Empty() {
			continue
		}
		piece := imaging.Crop(src, pixelRect(s))
		if piece.Bounds().Empty() {
			continue
		}

		modeX, modeY := style.RepeatStretch, style.RepeatStretch
		tileW, tileH := d.W, d.H
		switch i {
		case SliceTop, SliceBottom:
			modeX = bi.RepeatX
			tileW = s.W * d.H / s.H
		case SliceLeft, SliceRight:
			modeY = bi.RepeatY
			tileH = s.H * d.W / s.W
		case SliceCenter:
			modeX, modeY = bi.RepeatX, bi.RepeatY
			tileW, tileH = s.W*edgeFactor(srcRegions[SliceTop].H, dstRegions[SliceTop].H, d.W/s.W),
				s.H*edgeFactor(srcRegions[SliceLeft].W, dstRegions[SliceLeft].W, d.H/s.H)
		}
		r.drawRegion(dst, piece, d, tileW, tileH, modeX, modeY)
	}
	return true
}

// edgeFactor scales the center like the adjacent edge, falling back to
// plain stretching when the edge is empty.
func edgeFactor(srcEdge, dstEdge, fallback float64) float64 {
	if srcEdge <= 0 || dstEdge <= 0 {
		return fallback
	}
	return dstEdge / srcEdge
}

// drawRegion tiles piece over region d. Tiles are clipped to the region.
func (r *Renderer) drawRegion(dst *image.RGBA, piece image.Image, d clip.Rect, tileW, tileH float64, modeX, modeY style.Repeat) {
	xs := borderImageAxis(d.X, d.W, tileW, modeX)
	ys := borderImageAxis(d.Y, d.H, tileH, modeY)
	if len(xs) == 0 || len(ys) == 0 {
		return
	}

	rx, rw := pixelSpan(d.X, d.W)
	ry, rh := pixelSpan(d.Y, d.H)
	region := image.NewRGBA(image.Rect(0, 0, rw, rh))
	tiles := map[[2]int]image.Image{}
	for _, y := range ys {
		for _, x := range xs {
			tx, tw := pixelSpan(x.start, x.size)
			ty, th := pixelSpan(y.start, y.size)
			key := [2]int{tw, th}
			tile, ok := tiles[key]
			if !ok {
				tile = scaleImage(piece, tw, th)
				tiles[key] = tile
			}
			drawAt(region, tile, tx-rx, ty-ry)
		}
	}
	drawAt(dst, region, rx, ry)
}

// borderImageAxis places tiles along one region axis. Repeated tiles are
// centered, space puts equal gaps between whole tiles, the first at start.
// A single space tile is clipped by the region.
func borderImageAxis(start, length, tile float64, mode style.Repeat) []span {
	if length <= 0 {
		return nil
	}
	if tile <= 0 || mode == style.RepeatStretch || mode == style.RepeatNone {
		return []span{{start, length}}
	}
	switch mode {
	case style.RepeatRound:
		n := math.Max(1, math.Round(length/tile))
		size := length / n
		spans := make([]span, 0, int(n))
		for i := 0; i < int(n) && i < maxTilesPerAxis; i++ {
			spans = append(spans, span{start + float64(i)*size, size})
		}
		return spans
	case style.RepeatSpace:
		n := math.Max(1, math.Floor(length/tile))
		var gap float64
		if n > 1 {
			gap = (length - n*tile) / (n - 1)
		}
		spans := make([]span, 0, int(n))
		for i := 0; i < int(n) && i < maxTilesPerAxis; i++ {
			spans = append(spans, span{start + float64(i)*(tile+gap), tile})
		}
		return spans
	}
	anchor := start + (length-tile)/2
	return repeatSpans(start, length, anchor, tile)
}

// sliceInset resolves a border-image-slice value to source pixels. Plain
// numbers are CSS pixels of the source image.
func sliceInset(v string, ref, srcScale float64) float64 {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return 0
		}
		return math.Max(0, math.Min(ref, p/100*ref))
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return math.Max(0, math.Min(ref, n*srcScale))
}

// borderImageLength resolves border-image-width and border-image-outset
// values. Unitless numbers multiply the border width; with no border width
// they fall back to auto, as does the auto keyword.
func (f Frame) borderImageLength(v string, ref, borderWidth, auto float64) float64 {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "auto" {
		return auto
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		if borderWidth <= 0 {
			return auto
		}
		return math.Max(0, n*borderWidth)
	}
	l, ok := units.Parse(v)
	if !ok {
		return auto
	}
	return f.resolve(l, ref)
}

func pixelRect(r clip.Rect) image.Rectangle {
	x, w := pixelSpan(r.X, r.W)
	y, h := pixelSpan(r.Y, r.H)
	return image.Rect(x, y, x+w, y+h)
}
