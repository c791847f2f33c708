package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"pixelcss/pkg/cache"
	"pixelcss/pkg/resource"
)

// ErrNotImage is returned when fetched bytes are not a decodable raster.
var ErrNotImage = errors.New("not a raster image")

// Loader resolves an image reference to a decoded bitmap.
type Loader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// CachingLoader fetches, sniffs and decodes images, keeping decoded results
// in its own cache keyed by reference.
type CachingLoader struct {
	fetcher resource.Fetcher
	cache   *cache.Cache[image.Image]
}

// NewLoader returns a loader backed by fetcher. A nil fetcher resolves file
// paths against the working directory. size bounds the number of cached
// images.
func NewLoader(fetcher resource.Fetcher, size int) *CachingLoader {
	if fetcher == nil {
		fetcher = resource.NewFetcher("")
	}
	return &CachingLoader{fetcher: fetcher, cache: cache.New[image.Image](size)}
}

// Load returns the decoded image for ref. Concurrent loads of the same
// reference share one fetch, which keeps the deadline of the caller that
// started it but not its cancellation.
func (l *CachingLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	deadline, bounded := ctx.Deadline()
	return l.cache.Get(ctx, ref, func(ctx context.Context) (image.Image, error) {
		if bounded {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, deadline)
			defer cancel()
		}
		if IsDataURI(ref) {
			return LoadImageFromDataURI(ref)
		}
		body, _, err := l.fetcher.Fetch(ctx, ref)
		if err != nil {
			return nil, err
		}
		return Decode(body)
	})
}

// Evict drops ref from the cache.
func (l *CachingLoader) Evict(ref string) bool {
	return l.cache.Evict(ref)
}

// Clear empties the cache.
func (l *CachingLoader) Clear() {
	l.cache.Clear()
}

// Decode sniffs data and decodes it as a raster image.
func Decode(data []byte) (image.Image, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("sniffing image: %w", err)
	}
	if kind == filetype.Unknown || kind.MIME.Type != "image" {
		return nil, ErrNotImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind.Extension, err)
	}
	return img, nil
}

// IsDataURI reports whether s is a data: URI.
func IsDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

// LoadImageFromDataURI decodes the payload of a data: URI.
func LoadImageFromDataURI(uri string) (image.Image, error) {
	if !IsDataURI(uri) {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return nil, fmt.Errorf("data URI has no payload")
	}

	var data []byte
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		var err error
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 payload: %w", err)
		}
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("unescaping payload: %w", err)
		}
		data = []byte(s)
	}
	return Decode(data)
}
