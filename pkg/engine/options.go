package engine

import (
	"fmt"

	"pixelcss/pkg/pixelate"
	"pixelcss/pkg/units"
)

// DefaultPixelUnit is the edge length, in output pixels, of one art pixel.
const DefaultPixelUnit = 4

// Viewport is the size vw and vh lengths refer to.
type Viewport struct {
	Width  float64
	Height float64
}

// Options controls one render call. Zero values take the documented
// defaults: PixelUnit 4, nearest-neighbour output, medium quality, 16px
// fonts and a viewport equal to the target size.
type Options struct {
	Width, Height int
	PixelUnit     int
	Smooth        bool
	Quality       pixelate.Quality

	RootFontSize   float64
	ParentFontSize float64
	Viewport       Viewport
}

// normalized returns o with defaults filled in.
func (o Options) normalized() Options {
	if o.PixelUnit == 0 {
		o.PixelUnit = DefaultPixelUnit
	}
	if o.RootFontSize <= 0 {
		o.RootFontSize = units.DefaultFontSize
	}
	if o.ParentFontSize <= 0 {
		o.ParentFontSize = units.DefaultFontSize
	}
	if o.Viewport.Width <= 0 {
		o.Viewport.Width = float64(o.Width)
	}
	if o.Viewport.Height <= 0 {
		o.Viewport.Height = float64(o.Height)
	}
	return o
}

// Validate reports whether o describes a renderable target.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: target size %dx%d", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.PixelUnit < 0 {
		return fmt.Errorf("%w: pixel unit %d", ErrInvalidOptions, o.PixelUnit)
	}
	switch o.Quality {
	case pixelate.QualityLow, pixelate.QualityMedium, pixelate.QualityHigh:
	default:
		return fmt.Errorf("%w: quality %d", ErrInvalidOptions, o.Quality)
	}
	return nil
}

func (o Options) unitContext() units.Context {
	return units.Context{
		Width:          float64(o.Width),
		Height:         float64(o.Height),
		RootFontSize:   o.RootFontSize,
		ParentFontSize: o.ParentFontSize,
		ViewportWidth:  o.Viewport.Width,
		ViewportHeight: o.Viewport.Height,
	}
}

func (o Options) stage() pixelate.Stage {
	if o.Smooth {
		return pixelate.Smooth{Quality: o.Quality}
	}
	return pixelate.Nearest{Unit: o.PixelUnit}
}
