// Package render paints the decoration of one element (background layers,
// borders and border images) onto a raster surface.
package render

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"pixelcss/pkg/clip"
	"pixelcss/pkg/style"
)

// Images maps a bitmap reference to its decoded image. References missing
// from the map are treated as failed loads.
type Images map[string]image.Image

type Renderer struct {
	frame  Frame
	images Images
	logger *zap.Logger
}

func NewRenderer(frame Frame, images Images, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{frame: frame, images: images, logger: logger}
}

// Frame returns the geometry the renderer paints with.
func (r *Renderer) Frame() Frame { return r.frame }

// Render paints the background and then the border of st and returns the
// surface.
func (r *Renderer) Render(st *style.Style) *image.RGBA {
	surface := r.Background(st.Background)

	if st.BorderImage != nil && r.drawBorderImage(surface, st.BorderImage) {
		return surface
	}
	r.drawBorder(gg.NewContextForRGBA(surface), st.Border)
	return surface
}

func (r *Renderer) bounds() image.Rectangle {
	return image.Rect(0, 0, r.frame.Width, r.frame.Height)
}

// mask rasterizes path into an alpha mask of the surface size.
func (r *Renderer) mask(path clip.Path) *image.Alpha {
	dc := gg.NewContext(r.frame.Width, r.frame.Height)
	path.Apply(dc)
	dc.SetRGB(0, 0, 0)
	dc.Fill()
	return dc.AsMask()
}

// masked returns src with everything outside path removed.
func (r *Renderer) masked(src *image.RGBA, path clip.Path) *image.RGBA {
	out := image.NewRGBA(r.bounds())
	draw.DrawMask(out, out.Bounds(), src, image.Point{}, r.mask(path), image.Point{}, draw.Over)
	return out
}

// scaleImage resizes img to w×h, returning it unchanged when the size
// already matches.
func scaleImage(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Box)
}

// drawAt composites img over dst with its top-left corner at (x, y).
func drawAt(dst draw.Image, img image.Image, x, y int) {
	b := img.Bounds()
	draw.Draw(dst, image.Rect(x, y, x+b.Dx(), y+b.Dy()), img, b.Min, draw.Over)
}

// pixelSpan rounds a float span to whole pixels, keeping at least one.
func pixelSpan(start, size float64) (int, int) {
	x0 := int(math.Round(start))
	x1 := int(math.Round(start + size))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	return x0, x1 - x0
}
