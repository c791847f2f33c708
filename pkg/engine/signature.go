package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"pixelcss/pkg/cache"
	"pixelcss/pkg/css"
)

// Signature is the cache key of a render: declarations in sorted property
// order with whitespace collapsed, plus the target and output options.
func Signature(decls css.Declarations, opts Options) string {
	opts = opts.normalized()

	var sb strings.Builder
	for _, k := range decls.Keys() {
		sb.WriteString(k)
		sb.WriteByte(':')
		for i, v := range decls.Values(k) {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strings.Join(strings.Fields(v), " "))
		}
		sb.WriteByte(';')
	}
	fmt.Fprintf(&sb, "|%dx%d@%d|smooth=%t|quality=%s|font=%g/%g|vp=%gx%g",
		opts.Width, opts.Height, opts.PixelUnit, opts.Smooth, opts.Quality,
		opts.RootFontSize, opts.ParentFontSize, opts.Viewport.Width, opts.Viewport.Height)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// Cached renders through an owned result cache keyed by Signature.
// Concurrent renders of the same key share one computation.
type Cached struct {
	renderer Renderer
	cache    *cache.Cache[*Result]
}

// NewCached wraps r with a cache of at most size results.
func NewCached(r Renderer, size int) *Cached {
	return &Cached{renderer: r, cache: cache.New[*Result](size)}
}

func (c *Cached) Render(ctx context.Context, decls css.Declarations, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return c.cache.Get(ctx, Signature(decls, opts), func(ctx context.Context) (*Result, error) {
		return c.renderer.Render(ctx, decls, opts)
	})
}

// Evict drops the cached result for decls and opts.
func (c *Cached) Evict(decls css.Declarations, opts Options) bool {
	return c.cache.Evict(Signature(decls, opts))
}

// Clear drops every cached result.
func (c *Cached) Clear() { c.cache.Clear() }

// Len is the number of cached results.
func (c *Cached) Len() int { return c.cache.Len() }
