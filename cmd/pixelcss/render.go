package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"pixelcss/pkg/engine"
	"pixelcss/pkg/images"
	"pixelcss/pkg/pixelate"
	"pixelcss/pkg/resource"
	"pixelcss/pkg/state"
	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected a single STYLE argument, got %d", cmd.Args().Len())
	}
	text, err := readStyle(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	rc := env.Cfg.Render
	if cmd.IsSet("unit") {
		rc.PixelUnit = int(cmd.Int("unit"))
	}
	if cmd.IsSet("smooth") {
		rc.Smooth = cmd.Bool("smooth")
	}
	if cmd.IsSet("quality") {
		rc.Quality = cmd.String("quality")
	}
	if cmd.IsSet("base") {
		rc.Base = cmd.String("base")
	}

	width, height, err := targetSize(cmd, text, rc.RootFontSize)
	if err != nil {
		return err
	}
	opts, err := rc.Options(width, height)
	if err != nil {
		return fmt.Errorf("bad render options: %w", err)
	}

	loader := images.NewLoader(resource.NewFetcher(rc.Base), env.Cfg.Cache.Images)
	e := engine.New(append(rc.EngineOptions(), engine.WithLogger(env.Log), engine.WithLoader(loader))...)

	res, err := e.RenderText(ctx, text, opts)
	if err != nil {
		return fmt.Errorf("unable to render: %w", err)
	}
	env.Log.Info("Rendered",
		zap.Int("width", res.Width), zap.Int("height", res.Height),
		zap.Int("low width", res.LowWidth), zap.Int("low height", res.LowHeight))

	return writeResult(os.Stdout, res, cmd.String("out"), cmd.Bool("patch"))
}

// targetSize takes the size from the flags, falling back to the border box
// the style declares with width and height.
func targetSize(cmd *cli.Command, text string, rootFontSize float64) (int, int, error) {
	width, height := int(cmd.Int("width")), int(cmd.Int("height"))
	if cmd.IsSet("width") && cmd.IsSet("height") {
		return width, height, nil
	}
	ctx := units.NewContext(0, 0)
	ctx.RootFontSize = rootFontSize
	bw, bh, ok := style.FromText(text).BoxSize(ctx)
	if !ok {
		return 0, 0, errors.New("--width and --height are required unless the style declares both width and height")
	}
	if !cmd.IsSet("width") {
		width = int(math.Ceil(bw))
	}
	if !cmd.IsSet("height") {
		height = int(math.Ceil(bh))
	}
	return width, height, nil
}

// readStyle returns arg itself, or the content of the file it names when it
// starts with @.
func readStyle(arg string) (string, error) {
	name, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return arg, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("unable to read style file: %w", err)
	}
	return string(data), nil
}

func writeResult(w io.Writer, res *engine.Result, out string, patch bool) error {
	if out == "" {
		if _, err := fmt.Fprintln(w, res.Image); err != nil {
			return fmt.Errorf("unable to write image: %w", err)
		}
	} else {
		img, err := pixelate.Decode(res.Image)
		if err != nil {
			return err
		}
		if err := imaging.Save(img, out); err != nil {
			return fmt.Errorf("unable to save image '%s': %w", out, err)
		}
	}
	if patch {
		if _, err := fmt.Fprintln(w, res.Patch.CSS()); err != nil {
			return fmt.Errorf("unable to write patch: %w", err)
		}
	}
	return nil
}
