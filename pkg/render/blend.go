package render

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/blend"

	"pixelcss/pkg/style"
)

type blendFunc func(bg, fg image.Image) *image.RGBA

var blendFuncs = map[style.BlendMode]blendFunc{
	style.BlendMultiply:    blend.Multiply,
	style.BlendScreen:      blend.Screen,
	style.BlendOverlay:     blend.Overlay,
	style.BlendDarken:      blend.Darken,
	style.BlendLighten:     blend.Lighten,
	style.BlendColorDodge:  blend.ColorDodge,
	style.BlendColorBurn:   blend.ColorBurn,
	style.BlendSoftLight:   blend.SoftLight,
	style.BlendDifference:  blend.Difference,
	style.BlendExclusion:   blend.Exclusion,
	style.BlendPlusLighter: blend.Add,
}

// Composite paints fg over bg with mode and returns the result. Both images
// must share bounds. Where the backdrop is transparent the layer shows
// unblended, partially covered backdrop pixels mix the two in proportion to
// the backdrop alpha. Coverage always follows source-over.
func Composite(bg, fg *image.RGBA, mode style.BlendMode) *image.RGBA {
	normal := image.NewRGBA(bg.Bounds())
	copy(normal.Pix, bg.Pix)
	draw.Draw(normal, normal.Bounds(), fg, fg.Bounds().Min, draw.Over)

	fn, ok := blendFuncs[mode]
	if !ok || isTransparent(bg) {
		return normal
	}
	blended := fn(bg, fg)

	for i := 0; i+3 < len(normal.Pix) && i+3 < len(blended.Pix); i += 4 {
		a := uint32(bg.Pix[i+3])
		if a == 0 || fg.Pix[i+3] == 0 {
			continue
		}
		alpha := uint32(normal.Pix[i+3])
		for c := 0; c < 3; c++ {
			n, b := uint32(normal.Pix[i+c]), uint32(blended.Pix[i+c])
			// Stay a valid premultiplied color.
			normal.Pix[i+c] = uint8(min((n*(255-a)+b*a+127)/255, alpha))
		}
	}
	return normal
}

func isTransparent(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return false
		}
	}
	return true
}
