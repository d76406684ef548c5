package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revden/webdeck/internal/cache"
	"github.com/revden/webdeck/internal/connectivity"
	"github.com/revden/webdeck/internal/content"
	"github.com/revden/webdeck/internal/fallback"
	"github.com/revden/webdeck/internal/fetch"
)

// TestOversizedResponseKeepsPreviousCache runs the real fetcher against a
// server whose body exceeds the size cap.
func TestOversizedResponseKeepsPreviousCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer srv.Close()

	dir := t.TempDir()
	store := cache.NewStore(filepath.Join(dir, "cache"))
	require.NoError(t, store.Write(content.Blob{Text: "GOOD"}))
	surface := &fakeSurface{alive: true}

	ctrl := New(Config{RemoteURL: srv.URL, AppName: "Webdeck"}, Deps{
		Prober:   &fakeProber{verdict: connectivity.Reachable},
		Fetcher:  fetch.New(fetch.WithMaxBody(100)),
		Cache:    store,
		Fallback: fallback.NewProvisioner(filepath.Join(dir, "resources"), "Webdeck"),
	})

	out := ctrl.Run(context.Background(), surface)

	assert.Equal(t, SourceCache, out.Source)
	assert.False(t, out.Wrote)
	assert.ErrorIs(t, out.FetchErr, fetch.ErrTooLarge)

	blob, ok := store.Read()
	require.True(t, ok)
	assert.Equal(t, "GOOD", blob.Text)
	assert.Equal(t, []string{store.Path()}, surface.files)
}
