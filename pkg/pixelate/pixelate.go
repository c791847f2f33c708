// Package pixelate turns a low resolution surface into the final image,
// either as exact pixel blocks or smoothly resampled, and encodes it.
package pixelate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// Quality selects the resampling filter of the smooth stage.
type Quality int

const (
	QualityMedium Quality = iota
	QualityLow
	QualityHigh
)

var qualityNames = map[Quality]string{
	QualityLow:    "low",
	QualityMedium: "medium",
	QualityHigh:   "high",
}

func (q Quality) String() string {
	if s, ok := qualityNames[q]; ok {
		return s
	}
	return "medium"
}

// ParseQuality maps low, medium and high to a Quality.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return QualityLow, nil
	case "", "medium":
		return QualityMedium, nil
	case "high":
		return QualityHigh, nil
	}
	return QualityMedium, fmt.Errorf("unknown quality %q", s)
}

func (q Quality) filter() imaging.ResampleFilter {
	switch q {
	case QualityLow:
		return imaging.Linear
	case QualityHigh:
		return imaging.Lanczos
	}
	return imaging.CatmullRom
}

// LowResSize is the surface size for a width×height target at the given
// pixel unit, never smaller than 1×1.
func LowResSize(width, height, unit int) (int, int) {
	if unit < 1 {
		unit = 1
	}
	ceil := func(v int) int { return max(1, (v+unit-1)/unit) }
	return ceil(width), ceil(height)
}

// Stage is the terminal step that brings the low resolution surface up to
// the target size.
type Stage interface {
	Upscale(low image.Image, width, height int) image.Image
	Name() string
}

// Nearest turns each low resolution pixel into an exact Unit×Unit block.
// Blocks past the target size are cropped.
type Nearest struct {
	Unit int
}

func (n Nearest) Name() string { return "nearest" }

func (n Nearest) Upscale(low image.Image, width, height int) image.Image {
	unit := max(1, n.Unit)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	b := low.Bounds()

	if unit == 1 && b.Dx() == width && b.Dy() == height {
		xdraw.Draw(dst, dst.Bounds(), low, b.Min, xdraw.Src)
		return dst
	}

	// The scaled rectangle is unit aligned, dst clips it to the target.
	full := image.Rect(0, 0, b.Dx()*unit, b.Dy()*unit)
	xdraw.NearestNeighbor.Scale(dst, full, low, b, xdraw.Src, nil)
	return dst
}

// Smooth resamples the surface to the target size with a quality
// dependent filter.
type Smooth struct {
	Quality Quality
}

func (s Smooth) Name() string { return "smooth/" + s.Quality.String() }

func (s Smooth) Upscale(low image.Image, width, height int) image.Image {
	b := low.Bounds()
	if b.Dx() == width && b.Dy() == height {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.Draw(dst, dst.Bounds(), low, b.Min, xdraw.Src)
		return dst
	}
	return imaging.Resize(low, width, height, s.Quality.filter())
}

const dataURIPrefix = "data:image/png;base64,"

// Encode encodes img as PNG and returns it as a data URI.
func Encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode reverses Encode.
func Decode(uri string) (image.Image, error) {
	if !strings.HasPrefix(uri, dataURIPrefix) {
		return nil, fmt.Errorf("not a png data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(uri[len(dataURIPrefix):])
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding png: %w", err)
	}
	return img, nil
}
