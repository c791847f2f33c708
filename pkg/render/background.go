package render

import (
	"image"
	"image/draw"

	"go.uber.org/zap"

	"pixelcss/pkg/clip"
	"pixelcss/pkg/css"
	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

// Background composites the background color and layers back to front.
// Layers whose bitmap is missing are skipped.
func (r *Renderer) Background(bg style.Background) *image.RGBA {
	acc := image.NewRGBA(r.bounds())
	if len(bg.Layers) == 0 {
		bg.Layers = []style.Layer{{Clip: style.BorderBox, Origin: style.PaddingBox}}
	}

	// Phase 1: the color sits under the bottom layer and shares its clip.
	if !bg.Color.IsTransparent() {
		bottom := bg.Layers[len(bg.Layers)-1]
		fill := image.NewRGBA(r.bounds())
		draw.Draw(fill, fill.Bounds(), image.NewUniform(bg.Color), image.Point{}, draw.Src)
		acc = r.masked(fill, r.frame.Outline(bottom.Clip))
	}

	// Phase 2: the last declared layer paints first.
	for i := len(bg.Layers) - 1; i >= 0; i-- {
		layer := bg.Layers[i]
		surf := r.paintLayer(i, layer)
		if surf == nil {
			continue
		}
		acc = Composite(acc, surf, layer.Blend)
	}
	return acc
}

// paintLayer renders one layer on its own clipped surface, nil when the
// layer has nothing to paint.
func (r *Renderer) paintLayer(index int, layer style.Layer) *image.RGBA {
	if layer.Image == nil {
		return nil
	}
	f := r.frame
	origin := f.Rect(layer.Origin)
	paint := f.Rect(layer.Clip)
	if paint.Empty() {
		return nil
	}

	var bitmap image.Image
	var iw, ih float64
	if layer.Image.Gradient == nil {
		img, ok := r.images[layer.Image.URL]
		if !ok || img == nil {
			r.logger.Debug("Background layer dropped", zap.Int("layer", index), zap.String("url", layer.Image.URL))
			return nil
		}
		bitmap = img
		iw = float64(img.Bounds().Dx()) * f.Scale
		ih = float64(img.Bounds().Dy()) * f.Scale
	}

	tw, th := f.TileSize(layer.Size, iw, ih, origin)
	if tw <= 0 || th <= 0 {
		return nil
	}
	posX, posY := f.position(layer.Position, origin, tw, th)
	tiles := PlanTiles(paint, origin, tw, th, posX, posY, layer.RepeatX, layer.RepeatY)

	surf := image.NewRGBA(r.bounds())
	tileCache := map[[2]int]image.Image{}
	for _, t := range tiles {
		x, w := pixelSpan(t.X, t.W)
		y, h := pixelSpan(t.Y, t.H)
		if !image.Rect(x, y, x+w, y+h).Overlaps(surf.Bounds()) {
			continue
		}
		key := [2]int{w, h}
		tile, ok := tileCache[key]
		if !ok {
			if bitmap != nil {
				tile = scaleImage(bitmap, w, h)
			} else {
				tile = PaintGradient(layer.Image.Gradient, w, h, f.Scale, f.cssContext(float64(w), float64(h)))
			}
			tileCache[key] = tile
		}
		drawAt(surf, tile, x, y)
	}

	r.logger.Debug("Background layer painted",
		zap.Int("layer", index),
		zap.Int("tiles", len(tiles)),
		zap.Stringer("blend", layer.Blend))
	return r.masked(surf, f.Outline(layer.Clip))
}

// position resolves background-position inside origin for a tile of
// tw×th surface pixels.
func (f Frame) position(pos [2]string, origin clip.Rect, tw, th float64) (float64, float64) {
	if f.Scale <= 0 {
		return 0, 0
	}
	ctx := f.cssContext(origin.W, origin.H)
	x := css.ResolvePosition(pos[0], origin.W/f.Scale, tw/f.Scale, ctx, units.Horizontal)
	y := css.ResolvePosition(pos[1], origin.H/f.Scale, th/f.Scale, ctx, units.Vertical)
	return x * f.Scale, y * f.Scale
}
