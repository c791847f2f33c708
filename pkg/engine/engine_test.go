package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pixelcss/pkg/css"
	"pixelcss/pkg/pixelate"
	"pixelcss/pkg/render"
	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

const scenario = "background: linear-gradient(45deg, #ff0000, #00ff00); border: 2px solid #000; border-radius: 8px;"

type loaderFunc func(ctx context.Context, ref string) (image.Image, error)

func (f loaderFunc) Load(ctx context.Context, ref string) (image.Image, error) { return f(ctx, ref) }

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return New(append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
}

func decode(t *testing.T, res *Result) image.Image {
	t.Helper()
	img, err := pixelate.Decode(res.Image)
	require.NoError(t, err)
	return img
}

func at(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestRender_Scenario(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.RenderText(context.Background(), scenario, Options{Width: 200, Height: 100, PixelUnit: 4})
	require.NoError(t, err)

	assert.Equal(t, 50, res.LowWidth)
	assert.Equal(t, 25, res.LowHeight)
	img := decode(t, res)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())

	black := color.RGBA{0, 0, 0, 255}
	// The 2px border is one art pixel: four output rows, solid along the
	// straight part of the edge.
	for x := 16; x < 184; x += 4 {
		for y := 0; y < 4; y++ {
			require.Equal(t, black, at(img, x, y), "top border at (%d,%d)", x, y)
		}
	}
	assert.NotEqual(t, black, at(img, 100, 4))
	assert.Less(t, at(img, 0, 0).A, uint8(255), "rounded corner")

	// Each art pixel is a uniform 4x4 block.
	for _, p := range []image.Point{{40, 40}, {120, 60}} {
		want := at(img, p.X, p.Y)
		for dy := 0; dy < 4; dy++ {
			for dx := 0; dx < 4; dx++ {
				assert.Equal(t, want, at(img, p.X+dx, p.Y+dy))
			}
		}
	}

	// Radius resolves to 8px, below the 50px ceiling.
	st := style.FromText(scenario)
	frame := render.NewFrame(st, 200, 100, 1, units.NewContext(200, 100))
	assert.InDelta(t, 8, frame.Radii.TopLeft, 1e-9)
	assert.Equal(t, style.BorderStyleSolid, st.Border.Top.Style)
}

func TestRender_FailedBitmapDropsLayer(t *testing.T) {
	loads := make(chan string, 4)
	e := newTestEngine(t, WithLoader(loaderFunc(func(_ context.Context, ref string) (image.Image, error) {
		loads <- ref
		return nil, errors.New("not found")
	})))

	res, err := e.RenderText(context.Background(), "background: url(missing.png) #0000ff;", Options{Width: 8, Height: 8, PixelUnit: 2})
	require.NoError(t, err)
	assert.Equal(t, "missing.png", <-loads)
	img := decode(t, res)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, at(img, 3, 3))
}

func TestRender_LoadTimeoutDropsLayer(t *testing.T) {
	e := newTestEngine(t,
		WithLoadTimeout(20*time.Millisecond),
		WithLoader(loaderFunc(func(ctx context.Context, _ string) (image.Image, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})),
	)

	start := time.Now()
	res, err := e.RenderText(context.Background(), "background-image: url(slow.png); background-color: #00ff00;", Options{Width: 4, Height: 4})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, at(decode(t, res), 0, 0))
}

func TestRender_LoadedBitmap(t *testing.T) {
	tile := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range tile.Pix {
		tile.Pix[i] = 255
	}
	e := newTestEngine(t, WithLoader(loaderFunc(func(context.Context, string) (image.Image, error) {
		return tile, nil
	})))

	res, err := e.RenderText(context.Background(), "background: url(white.png) #000000;", Options{Width: 8, Height: 8, PixelUnit: 2})
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, at(decode(t, res), 5, 5))
}

func TestRender_Cancelled(t *testing.T) {
	e := newTestEngine(t, WithLoader(loaderFunc(func(ctx context.Context, _ string) (image.Image, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.RenderText(ctx, "background-image: url(a.png);", Options{Width: 4, Height: 4})
	assert.ErrorIs(t, err, context.Canceled)

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, PhaseResolving, re.Phase)
}

func TestRender_InvalidOptions(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name string
		opts Options
	}{
		{"zero width", Options{Width: 0, Height: 10}},
		{"negative height", Options{Width: 10, Height: -1}},
		{"negative unit", Options{Width: 10, Height: 10, PixelUnit: -2}},
		{"unknown quality", Options{Width: 10, Height: 10, Quality: pixelate.Quality(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render(context.Background(), css.Declarations{}, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestRender_SurfaceTooLarge(t *testing.T) {
	e := newTestEngine(t, WithMaxPixels(100))
	_, err := e.RenderText(context.Background(), "background-color: red;", Options{Width: 20, Height: 20})
	require.ErrorIs(t, err, ErrEnvironment)

	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, PhaseCompositing, re.Phase)
	assert.Contains(t, err.Error(), "render compositing")
}

func TestRender_SmoothStage(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.RenderText(context.Background(), scenario, Options{Width: 60, Height: 30, Smooth: true, Quality: pixelate.QualityHigh})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 60, 30), decode(t, res).Bounds())
	assert.Equal(t, "auto", res.Patch.ImageRendering)
}

func TestPatch(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.RenderText(context.Background(), "border: 2px solid #000; padding: 3px 4px;", Options{Width: 40, Height: 20})
	require.NoError(t, err)

	p := res.Patch
	assert.Equal(t, `url("`+res.Image+`")`, p.BackgroundImage)
	assert.Equal(t, "100% 100%", p.BackgroundSize)
	assert.Equal(t, "pixelated", p.ImageRendering)
	assert.Equal(t, "none", p.Border)
	assert.Equal(t, "0", p.BorderRadius)
	assert.Equal(t, "relative", p.Position)
	assert.Equal(t, "5px", p.PaddingTop)
	assert.Equal(t, "6px", p.PaddingRight)

	m := p.Map()
	assert.Equal(t, "none", m["borderImage"])
	assert.Equal(t, "5px", m["paddingBottom"])

	cssText := p.CSS()
	assert.Contains(t, cssText, "background-size: 100% 100%;")
	assert.Contains(t, cssText, "image-rendering: pixelated;")
	assert.Contains(t, cssText, "padding-left: 6px;")

	merged := p.Apply(css.ParseDeclarations("color: #123456; border: 2px solid #000;"))
	v, _ := merged.Get("color")
	assert.Equal(t, "#123456", v)
	v, _ = merged.Get("padding-top")
	assert.Equal(t, "5px", v)
}

func TestPatch_ApplyReplacesDecoration(t *testing.T) {
	e := newTestEngine(t)
	original := css.ParseDeclarations("border: 2px solid #000; border-top-left-radius: 6px; " +
		"border-inline-end: 3px dashed red; border-end-end-radius: 4px; " +
		"border-image: url(frame.png) 30 round; color: #123456;")
	res, err := e.Render(context.Background(), original, Options{Width: 40, Height: 20})
	require.NoError(t, err)

	merged := res.Patch.Apply(original)
	st := style.Build(merged)
	for i, side := range st.Border.Sides() {
		assert.False(t, side.Style.Visible(), "side %d still has a visible %v border", i, side.Style)
	}
	assert.True(t, st.Radii.IsZero(), "radii %+v", st.Radii)
	assert.Nil(t, st.BorderImage)
	assert.Equal(t, css.Color{R: 0x12, G: 0x34, B: 0x56, A: 255}, st.Color)

	layers := st.Background.Layers
	require.Len(t, layers, 1)
	require.NotNil(t, layers[0].Image)
	assert.Equal(t, css.Transparent, st.Background.Color)

	// the original set is left alone
	v, _ := original.Get("border-top-left-radius")
	assert.Equal(t, "6px", v)
}

func TestPatch_NoBorderKeepsPadding(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.RenderText(context.Background(), "background-color: #fff; padding: 3px;", Options{Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Patch.PaddingTop)
	assert.NotContains(t, res.Patch.Map(), "paddingTop")
}

func TestSignature(t *testing.T) {
	opts := Options{Width: 100, Height: 50}
	a := css.ParseDeclarations("background-color: red; border: 1px solid  blue;")
	b := css.ParseDeclarations("border: 1px solid blue; background-color: red;")

	assert.Equal(t, Signature(a, opts), Signature(b, opts))
	assert.Equal(t, Signature(a, opts), Signature(a, Options{Width: 100, Height: 50, PixelUnit: DefaultPixelUnit}))
	assert.NotEqual(t, Signature(a, opts), Signature(a, Options{Width: 100, Height: 50, PixelUnit: 2}))
	assert.NotEqual(t, Signature(a, opts), Signature(a, Options{Width: 101, Height: 50}))
	assert.NotEqual(t, Signature(a, opts), Signature(a, Options{Width: 100, Height: 50, Smooth: true}))
	assert.Len(t, Signature(a, opts), 64)
}

type countingRenderer struct {
	calls atomic.Int32
	r     Renderer
}

func (c *countingRenderer) Render(ctx context.Context, decls css.Declarations, opts Options) (*Result, error) {
	c.calls.Add(1)
	return c.r.Render(ctx, decls, opts)
}

func TestCached(t *testing.T) {
	counter := &countingRenderer{r: newTestEngine(t)}
	c := NewCached(counter, 8)
	decls := css.ParseDeclarations("background-color: #ff0000;")
	opts := Options{Width: 8, Height: 8}

	r1, err := c.Render(context.Background(), decls, opts)
	require.NoError(t, err)
	r2, err := c.Render(context.Background(), decls.Clone(), opts)
	require.NoError(t, err)
	assert.Same(t, r1, r2)
	assert.Equal(t, int32(1), counter.calls.Load())
	assert.Equal(t, 1, c.Len())

	assert.True(t, c.Evict(decls, opts))
	_, err = c.Render(context.Background(), decls, opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), counter.calls.Load())

	c.Clear()
	assert.Zero(t, c.Len())

	_, err = c.Render(context.Background(), decls, Options{})
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Equal(t, int32(2), counter.calls.Load())
}

type gatedRenderer struct {
	gate <-chan struct{}
	r    Renderer
}

func (g gatedRenderer) Render(ctx context.Context, decls css.Declarations, opts Options) (*Result, error) {
	select {
	case <-g.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.r.Render(ctx, decls, opts)
}

func TestScheduler_LatestWins(t *testing.T) {
	gate := make(chan struct{})
	s := NewScheduler(gatedRenderer{gate: gate, r: newTestEngine(t)}, zaptest.NewLogger(t))
	defer s.Close()

	type delivery struct {
		res *Result
		err error
	}
	out := make(chan delivery, 3)
	deliver := func(res *Result, err error) { out <- delivery{res, err} }

	for _, w := range []int{10, 20, 30} {
		require.NoError(t, s.Schedule("el", css.ParseDeclarations("background-color: #fff;"), Options{Width: w, Height: 4}, deliver))
	}
	assert.True(t, s.Busy("el"))
	close(gate)

	select {
	case d := <-out:
		require.NoError(t, d.err)
		assert.Equal(t, 30, d.res.Width)
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery")
	}
	select {
	case d := <-out:
		t.Fatalf("unexpected second delivery %+v", d)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScheduler_Teardown(t *testing.T) {
	s := NewScheduler(gatedRenderer{gate: make(chan struct{}), r: newTestEngine(t)}, zaptest.NewLogger(t))
	defer s.Close()

	delivered := make(chan struct{}, 1)
	require.NoError(t, s.Schedule("el", css.Declarations{}, Options{Width: 4, Height: 4}, func(*Result, error) {
		delivered <- struct{}{}
	}))
	s.Teardown("el")

	select {
	case <-delivered:
		t.Fatal("torn down element received a result")
	case <-time.After(50 * time.Millisecond):
	}
}
