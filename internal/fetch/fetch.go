// Package fetch resolves a firmware image reference, remote URL or local
// path, to a readable local byte source.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reference points at a firmware image and names the file to create on
// the bootloader volume. Immutable, supplied by the caller.
type Reference struct {
	// Source is an http(s) URL or a local file path.
	Source string
	// FileName is the name the image gets on the volume, e.g.
	// "snake.uf2".
	FileName string
}

// Remote reports whether the reference must be downloaded.
func (r Reference) Remote() bool {
	return strings.HasPrefix(r.Source, "http://") || strings.HasPrefix(r.Source, "https://")
}

// Image is a resolved firmware image on the local filesystem.
type Image struct {
	Path string
	// Size is advisory; the file is the source of truth.
	Size int64
}

// Open returns a reader over the image bytes.
func (im *Image) Open() (io.ReadCloser, error) {
	return os.Open(im.Path)
}

// Client resolves references. Remote sources are downloaded to a temp
// directory; local sources pass through untouched.
type Client struct {
	http   *http.Client
	tmpDir string
}

// NewClient creates a fetch client.
func NewClient() *Client {
	return &Client{
		http:   &http.Client{Timeout: 2 * time.Minute},
		tmpDir: os.TempDir(),
	}
}

// Fetch resolves the reference to a local image.
func (c *Client) Fetch(ctx context.Context, ref Reference) (*Image, error) {
	if ref.Remote() {
		return c.download(ctx, ref)
	}

	info, err := os.Stat(ref.Source)
	if err != nil {
		return nil, fmt.Errorf("reading local image: %w", err)
	}
	return &Image{Path: ref.Source, Size: info.Size()}, nil
}

func (c *Client) download(ctx context.Context, ref Reference) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.Source, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", ref.Source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: unexpected status %s", ref.Source, resp.Status)
	}

	path := filepath.Join(c.tmpDir, ref.FileName)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating temp image: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("saving %s: %w", ref.FileName, err)
	}

	return &Image{Path: path, Size: n}, nil
}
