package visualtest

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // Max color channel difference found
	// First is the first differing pixel, valid when DifferentPixels > 0.
	First image.Point
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance: maximum allowed difference per color channel (0-255).
	// 0 means pixel identity.
	Tolerance int

	// FuzzyRadius: if > 0, a pixel matches if it matches any pixel within this radius
	FuzzyRadius int

	// MaxDifferentPercent: if > 0, pass if the percentage of different pixels is <= this value
	MaxDifferentPercent float64

	// DiffImagePath, when set, receives an image highlighting differences
	// if the comparison fails.
	DiffImagePath string
}

// ExactOptions requires pixel identity.
func ExactOptions() CompareOptions {
	return CompareOptions{}
}

// DefaultOptions allows small channel differences from resampling.
func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// Compare compares two images pixel by pixel. Images of different size
// never match.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	ab, eb := actual.Bounds(), expected.Bounds()
	if ab.Size() != eb.Size() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", ab.Size(), eb.Size())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: ab.Dx() * ab.Dy(),
	}

	var diffImg *image.NRGBA
	if opts.DiffImagePath != "" {
		diffImg = image.NewNRGBA(image.Rect(0, 0, ab.Dx(), ab.Dy()))
	}

	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ac := rgba8(actual.At(ab.Min.X+x, ab.Min.Y+y))
			diff := channelDiff(ac, rgba8(expected.At(eb.Min.X+x, eb.Min.Y+y)))
			result.MaxDifference = max(result.MaxDifference, diff)

			if diff <= opts.Tolerance || (opts.FuzzyRadius > 0 && fuzzyMatch(ac, expected, x, y, opts.FuzzyRadius, opts.Tolerance)) {
				if diffImg != nil {
					diffImg.SetNRGBA(x, y, color.NRGBA{ac.R, ac.R, ac.R, 255})
				}
				continue
			}
			if result.DifferentPixels == 0 {
				result.First = image.Pt(x, y)
			}
			result.Match = false
			result.DifferentPixels++
			if diffImg != nil {
				diffImg.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}

	if diffImg != nil && !result.Match {
		if err := imaging.Save(diffImg, opts.DiffImagePath); err != nil {
			return result, fmt.Errorf("failed to save diff image: %w", err)
		}
	}
	return result, nil
}

// CompareImages compares two image files.
func CompareImages(actualPath, expectedPath string, opts CompareOptions) (*CompareResult, error) {
	actual, err := imaging.Open(actualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open actual image: %w", err)
	}
	expected, err := imaging.Open(expectedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open expected image: %w", err)
	}
	return Compare(actual, expected, opts)
}

// fuzzyMatch checks if the actual pixel matches any expected pixel within radius
func fuzzyMatch(ac color.RGBA, expected image.Image, x, y, radius, tolerance int) bool {
	b := expected.Bounds()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= b.Dx() || ny < 0 || ny >= b.Dy() {
				continue
			}
			if channelDiff(ac, rgba8(expected.At(b.Min.X+nx, b.Min.Y+ny))) <= tolerance {
				return true
			}
		}
	}
	return false
}

// rgba8 converts to 8-bit premultiplied channels.
func rgba8(c color.Color) color.RGBA {
	r, g, b, a := c.RGBA()
	return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
}

func channelDiff(a, b color.RGBA) int {
	return max(
		absInt(int(a.R)-int(b.R)),
		absInt(int(a.G)-int(b.G)),
		absInt(int(a.B)-int(b.B)),
		absInt(int(a.A)-int(b.A)),
	)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
