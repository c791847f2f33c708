package visualtest

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"pixelcss/pkg/engine"
	"pixelcss/pkg/pixelate"
)

// RenderStyle renders style text with e and decodes the produced image.
func RenderStyle(ctx context.Context, e *engine.Engine, style string, opts engine.Options) (image.Image, error) {
	res, err := e.RenderText(ctx, style, opts)
	if err != nil {
		return nil, fmt.Errorf("render error: %w", err)
	}
	img, err := pixelate.Decode(res.Image)
	if err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	return img, nil
}

// RenderStyleToFile renders style text to a PNG file.
func RenderStyleToFile(ctx context.Context, e *engine.Engine, style, outputPath string, opts engine.Options) error {
	img, err := RenderStyle(ctx, e, style, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imaging.Save(img, outputPath); err != nil {
		return fmt.Errorf("save error: %w", err)
	}
	return nil
}
