// Package release looks up published firmware releases and their UF2
// assets on GitHub.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.github.com"
const rawBase = "https://raw.githubusercontent.com"

// Asset is one downloadable release artifact.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
}

// Base returns the asset name without its extension, used to look up the
// matching splash image.
func (a Asset) Base() string {
	if i := strings.LastIndex(a.Name, "."); i > 0 {
		return a.Name[:i]
	}
	return a.Name
}

// Release is one published release of a firmware repo.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// UF2Assets returns the flashable assets of the release.
func (r *Release) UF2Assets() []Asset {
	var out []Asset
	for _, a := range r.Assets {
		if strings.HasSuffix(strings.ToLower(a.Name), ".uf2") {
			out = append(out, a)
		}
	}
	return out
}

// Client queries the releases API.
type Client struct {
	http    *http.Client
	apiBase string
}

// NewClient creates a release client.
func NewClient() *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		apiBase: defaultAPIBase,
	}
}

// Latest fetches the latest release of owner/repo.
func (c *Client) Latest(ctx context.Context, owner, repo string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiBase, owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "kyflash")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching latest release of %s/%s: %w", owner, repo, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching latest release of %s/%s: unexpected status %s", owner, repo, resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release of %s/%s: %w", owner, repo, err)
	}
	return &rel, nil
}

// SplashURL builds the raw URL of the splash image shipped alongside an
// asset in the repo's splash/ directory.
func SplashURL(owner, repo, branch, base, ext string) string {
	if branch == "" {
		branch = "main"
	}
	return fmt.Sprintf("%s/%s/%s/%s/splash/%s.%s", rawBase, owner, repo, branch, base, ext)
}
