package resource

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	stdnet "pixelcss/std/net"
)

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher fetches resources over HTTP/HTTPS or from the local file
// system, resolving relative URIs against a base.
type DefaultFetcher struct {
	baseURL string
	baseDir string
}

// NewFetcher creates a DefaultFetcher. base is either an http(s) URL that
// relative references resolve against, or a directory for relative file
// paths. An empty base resolves files against the working directory.
func NewFetcher(base string) *DefaultFetcher {
	if stdnet.IsNetworkURL(base) {
		return &DefaultFetcher{baseURL: base}
	}
	return &DefaultFetcher{baseDir: base}
}

// Fetch retrieves the resource at the given URI.
func (f *DefaultFetcher) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	resolved := uri
	if !stdnet.IsNetworkURL(uri) && f.baseURL != "" && !strings.HasPrefix(uri, "file:") {
		resolved = stdnet.ResolveURL(f.baseURL, uri)
	}
	if stdnet.IsNetworkURL(resolved) {
		return stdnet.Fetch(ctx, resolved)
	}
	return f.readFile(resolved)
}

func (f *DefaultFetcher) readFile(uri string) ([]byte, string, error) {
	path := uri
	if strings.HasPrefix(uri, "file:") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parsing %s: %w", uri, err)
		}
		path = u.Path
	}
	if path == "" {
		return nil, "", fmt.Errorf("cannot fetch empty path")
	}
	if !filepath.IsAbs(path) && f.baseDir != "" {
		path = filepath.Join(f.baseDir, path)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return body, "", nil
}
