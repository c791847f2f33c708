// Package engine turns a declared element style into a pixel-art raster and
// the style patch that shows it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pixelcss/pkg/cache"
	"pixelcss/pkg/css"
	"pixelcss/pkg/images"
	"pixelcss/pkg/pixelate"
	"pixelcss/pkg/render"
	"pixelcss/pkg/style"
	"pixelcss/pkg/units"
)

var (
	// ErrInvalidOptions reports options that describe no renderable target.
	ErrInvalidOptions = errors.New("invalid render options")
	// ErrEnvironment reports that no raster surface or encoder could be
	// obtained. It is the only failure of the pipeline itself.
	ErrEnvironment = errors.New("raster backend unavailable")
)

const (
	DefaultLoadTimeout = 10 * time.Second
	// DefaultMaxPixels bounds the final image area.
	DefaultMaxPixels = 8192 * 8192
	// DefaultLoadConcurrency bounds concurrent bitmap loads per call.
	DefaultLoadConcurrency = 4
)

// Phase is a step of one render call.
type Phase int

const (
	PhaseParsing Phase = iota
	PhaseResolving
	PhaseCompositing
	PhasePixelating
	PhaseEncoding
	PhaseDone
)

var phaseNames = [...]string{"parsing", "resolving", "compositing", "pixelating", "encoding", "done"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// RenderError is a failed render call and the phase it failed in.
type RenderError struct {
	Phase Phase
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Phase, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Result is the output of one render call. It is not modified after Render
// returns.
type Result struct {
	// Image is a data:image/png;base64 URI.
	Image               string
	Patch               StylePatch
	Width, Height       int
	LowWidth, LowHeight int
}

// Renderer is anything that renders declarations, an *Engine or a caching
// wrapper around one.
type Renderer interface {
	Render(ctx context.Context, decls css.Declarations, opts Options) (*Result, error)
}

// Engine runs the render pipeline. It is safe for concurrent use; every
// call allocates its own surfaces.
type Engine struct {
	logger          *zap.Logger
	loader          images.Loader
	loadTimeout     time.Duration
	loadConcurrency int
	maxPixels       int64
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLoader sets the bitmap loader. The default loads data URIs and files
// relative to the working directory.
func WithLoader(loader images.Loader) Option {
	return func(e *Engine) {
		if loader != nil {
			e.loader = loader
		}
	}
}

// WithLoadTimeout bounds each bitmap load.
func WithLoadTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.loadTimeout = d
		}
	}
}

func WithLoadConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.loadConcurrency = n
		}
	}
}

// WithMaxPixels bounds the final image area. Larger targets fail with
// ErrEnvironment.
func WithMaxPixels(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPixels = n
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		logger:          zap.NewNop(),
		loadTimeout:     DefaultLoadTimeout,
		loadConcurrency: DefaultLoadConcurrency,
		maxPixels:       DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		e.loader = images.NewLoader(nil, cache.DefaultSize)
	}
	e.logger = e.logger.Named("engine")
	return e
}

// RenderText parses "property: value;" text and renders it.
func (e *Engine) RenderText(ctx context.Context, text string, opts Options) (*Result, error) {
	return e.Render(ctx, css.ParseDeclarations(text), opts)
}

// Render rasterizes the decoration described by decls. Bitmaps that fail
// to load are left out. The returned error is ErrInvalidOptions or a
// *RenderError wrapping either ErrEnvironment or the error of ctx.
func (e *Engine) Render(ctx context.Context, decls css.Declarations, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()
	start := time.Now()
	log := e.logger.With(zap.Int("width", opts.Width), zap.Int("height", opts.Height), zap.Int("unit", opts.PixelUnit))

	log.Debug("Render started", zap.Stringer("phase", PhaseParsing))
	st := style.Build(decls)
	uctx := elementContext(st, opts.unitContext())

	log.Debug("Render phase", zap.Stringer("phase", PhaseResolving), zap.Int("bitmaps", len(st.URLs())))
	imgs, err := e.loadAll(ctx, st.URLs())
	if err != nil {
		return nil, &RenderError{Phase: PhaseResolving, Err: err}
	}

	log.Debug("Render phase", zap.Stringer("phase", PhaseCompositing))
	lw, lh := pixelate.LowResSize(opts.Width, opts.Height, opts.PixelUnit)
	if err := e.checkSurface(opts.Width, opts.Height); err != nil {
		return nil, &RenderError{Phase: PhaseCompositing, Err: err}
	}
	scale := 1 / float64(max(opts.PixelUnit, 1))
	frame := render.NewFrame(st, lw, lh, scale, uctx)
	low, err := composite(render.NewRenderer(frame, imgs, e.logger), st)
	if err != nil {
		return nil, &RenderError{Phase: PhaseCompositing, Err: err}
	}

	stage := opts.stage()
	log.Debug("Render phase", zap.Stringer("phase", PhasePixelating), zap.String("stage", stage.Name()))
	out := stage.Upscale(low, opts.Width, opts.Height)

	log.Debug("Render phase", zap.Stringer("phase", PhaseEncoding))
	uri, err := pixelate.Encode(out)
	if err != nil {
		return nil, &RenderError{Phase: PhaseEncoding, Err: fmt.Errorf("%w: %w", ErrEnvironment, err)}
	}

	log.Debug("Render finished", zap.Stringer("phase", PhaseDone), zap.Duration("elapsed", time.Since(start)))
	return &Result{
		Image:     uri,
		Patch:     newPatch(uri, opts.Smooth, resolvePadding(st, uctx), resolveBorder(st, uctx)),
		Width:     opts.Width,
		Height:    opts.Height,
		LowWidth:  lw,
		LowHeight: lh,
	}, nil
}

// loadAll fetches every referenced bitmap concurrently. Individual failures
// are logged and leave the reference out of the result; only cancellation
// of ctx is returned.
func (e *Engine) loadAll(ctx context.Context, urls []string) (render.Images, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	imgs := make(render.Images, len(urls))
	if len(urls) == 0 {
		return imgs, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.loadConcurrency)
	for _, u := range urls {
		g.Go(func() error {
			lctx, cancel := context.WithTimeout(gctx, e.loadTimeout)
			defer cancel()

			img, err := e.loader.Load(lctx, u)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.Warn("Bitmap dropped", zap.String("ref", shortRef(u)), zap.Error(err))
				return nil
			}
			mu.Lock()
			imgs[u] = img
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return imgs, nil
}

func (e *Engine) checkSurface(w, h int) error {
	area := int64(w) * int64(h)
	if area/int64(h) != int64(w) || area > e.maxPixels {
		return fmt.Errorf("%w: %dx%d surface exceeds %d pixels", ErrEnvironment, w, h, e.maxPixels)
	}
	return nil
}

// composite runs the raster pass, converting an allocation panic of the
// drawing backend into ErrEnvironment.
func composite(r *render.Renderer, st *style.Style) (img *image.RGBA, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrEnvironment, p)
		}
	}()
	return r.Render(st), nil
}

// elementContext makes em lengths refer to the element's own font size.
func elementContext(st *style.Style, ctx units.Context) units.Context {
	if st.FontSize == nil {
		return ctx
	}
	fs := *st.FontSize
	switch fs.Unit {
	case units.Percent:
		ctx.ParentFontSize = fs.Value / 100 * ctx.ParentFontSize
	default:
		ctx.ParentFontSize = units.Resolve(fs, ctx, units.Horizontal)
	}
	return ctx
}

func resolvePadding(st *style.Style, ctx units.Context) [4]float64 {
	p := st.Padding
	var out [4]float64
	for i, l := range [4]units.Length{p.Top, p.Right, p.Bottom, p.Left} {
		out[i] = round2(units.Resolve(l, ctx, units.Horizontal))
	}
	return out
}

// resolveBorder returns the CSS border widths the patch removes.
func resolveBorder(st *style.Style, ctx units.Context) [4]float64 {
	var out [4]float64
	for i, side := range st.Border.Sides() {
		if side.Style.Visible() {
			out[i] = round2(units.Resolve(side.Width, ctx, units.Horizontal))
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func shortRef(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
