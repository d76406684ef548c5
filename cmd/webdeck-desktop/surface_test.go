package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type scriptRecorder struct {
	mu      sync.Mutex
	scripts []string
}

func (r *scriptRecorder) exec(_ context.Context, js string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts = append(r.scripts, js)
}

func (r *scriptRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scripts...)
}

func newTestSurface(t *testing.T) (*WindowSurface, *scriptRecorder) {
	t.Helper()
	rec := &scriptRecorder{}
	s := NewWindowSurface()
	s.execJS = rec.exec
	s.Attach(context.Background())
	return s, rec
}

func get(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestSurfaceNotAliveUntilAttached(t *testing.T) {
	s := NewWindowSurface()
	if s.Alive() {
		t.Fatal("surface should not be alive before Attach")
	}
	s.Attach(context.Background())
	if !s.Alive() {
		t.Fatal("surface should be alive after Attach")
	}
	s.Teardown()
	if s.Alive() {
		t.Fatal("surface should not be alive after Teardown")
	}
}

func TestSurfaceLoadFileServesDocument(t *testing.T) {
	s, rec := newTestSurface(t)
	path := filepath.Join(t.TempDir(), "cache.html")
	if err := os.WriteFile(path, []byte("<h1>cached</h1>"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	scripts := rec.all()
	if len(scripts) != 1 || !strings.Contains(scripts[0], DocumentRoute+"?v=1") {
		t.Fatalf("unexpected navigation scripts: %v", scripts)
	}

	w := get(t, s.Handler(), http.MethodGet, DocumentRoute+"?v=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "<h1>cached</h1>" {
		t.Errorf("body = %q", got)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
}

func TestSurfaceLoadHTMLReplacesDocument(t *testing.T) {
	s, rec := newTestSurface(t)
	path := filepath.Join(t.TempDir(), "offline.html")
	if err := os.WriteFile(path, []byte("offline"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	if err := s.LoadHTML("<p>inline</p>"); err != nil {
		t.Fatalf("LoadHTML: %v", err)
	}

	if n := len(rec.all()); n != 2 {
		t.Fatalf("expected 2 navigations, got %d", n)
	}
	w := get(t, s.Handler(), http.MethodGet, DocumentRoute)
	if got := w.Body.String(); got != "<p>inline</p>" {
		t.Errorf("body = %q", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestSurfaceLoadFileMissing(t *testing.T) {
	s, rec := newTestSurface(t)

	if err := s.LoadFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if err := s.LoadFile(t.TempDir()); err == nil {
		t.Fatal("expected error for directory")
	}
	if n := len(rec.all()); n != 0 {
		t.Errorf("no navigation expected, got %d", n)
	}
}

func TestSurfaceClosedRejectsLoads(t *testing.T) {
	s, rec := newTestSurface(t)
	s.Teardown()

	if err := s.LoadHTML("<p>late</p>"); err == nil {
		t.Fatal("expected error after teardown")
	}
	if n := len(rec.all()); n != 0 {
		t.Errorf("no navigation expected, got %d", n)
	}
}

func TestSurfaceHandlerRoutes(t *testing.T) {
	s, _ := newTestSurface(t)
	h := s.Handler()

	if w := get(t, h, http.MethodGet, DocumentRoute); w.Code != http.StatusNotFound {
		t.Errorf("document before staging: status = %d, want 404", w.Code)
	}
	if w := get(t, h, http.MethodPost, DocumentRoute); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST document: status = %d, want 405", w.Code)
	}
	if w := get(t, h, http.MethodGet, "/elsewhere"); w.Code != http.StatusNotFound {
		t.Errorf("unknown route: status = %d, want 404", w.Code)
	}
}

func TestSurfaceOutcomeRoute(t *testing.T) {
	s, _ := newTestSurface(t)
	s.outcome = func() any { return OutcomeInfo{RunID: "abc", Source: "cache", Trail: []string{}} }

	w := get(t, s.Handler(), http.MethodGet, OutcomeRoute)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got OutcomeInfo
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID != "abc" || got.Source != "cache" {
		t.Errorf("unexpected outcome %+v", got)
	}
}
