package release

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleRelease = `{
	"tag_name": "v1.4.0",
	"assets": [
		{"name": "snake.uf2", "browser_download_url": "https://dl/snake.uf2", "size": 262144},
		{"name": "checksums.txt", "browser_download_url": "https://dl/checksums.txt", "size": 128},
		{"name": "Tetris.UF2", "browser_download_url": "https://dl/tetris.uf2", "size": 131072}
	]
}`

func testServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		http:    &http.Client{Timeout: 5 * time.Second},
		apiBase: srv.URL,
	}
}

func TestLatestParsesReleaseAndFiltersUF2(t *testing.T) {
	var gotPath string
	c := testServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(sampleRelease))
	})

	rel, err := c.Latest(context.Background(), "KOINSLOT-Inc", "kywy")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if gotPath != "/repos/KOINSLOT-Inc/kywy/releases/latest" {
		t.Errorf("unexpected request path %s", gotPath)
	}
	if rel.TagName != "v1.4.0" {
		t.Errorf("expected tag v1.4.0, got %s", rel.TagName)
	}

	uf2 := rel.UF2Assets()
	if len(uf2) != 2 {
		t.Fatalf("expected 2 uf2 assets, got %d", len(uf2))
	}
	if uf2[0].Name != "snake.uf2" || uf2[1].Name != "Tetris.UF2" {
		t.Errorf("unexpected assets: %+v", uf2)
	}
}

func TestLatestErrorStatus(t *testing.T) {
	c := testServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	})

	if _, err := c.Latest(context.Background(), "o", "r"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestAssetBase(t *testing.T) {
	if got := (Asset{Name: "snake.uf2"}).Base(); got != "snake" {
		t.Errorf("expected snake, got %s", got)
	}
	if got := (Asset{Name: "noext"}).Base(); got != "noext" {
		t.Errorf("expected noext, got %s", got)
	}
}

func TestSplashURL(t *testing.T) {
	got := SplashURL("KOINSLOT-Inc", "kywy", "", "snake", "png")
	want := "https://raw.githubusercontent.com/KOINSLOT-Inc/kywy/main/splash/snake.png"
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
