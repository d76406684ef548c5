package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// DocumentRoute is where the window is navigated to show the resolved document.
const DocumentRoute = "/shell/document"

// OutcomeRoute serves the last resolution outcome as JSON.
const OutcomeRoute = "/shell/outcome"

// staged is the document currently offered at DocumentRoute.
type staged struct {
	path    string // set for file documents
	html    string // set for inline documents
	version int
}

// WindowSurface displays documents in the Wails window. Documents are staged
// in an asset handler and the window is navigated to them.
type WindowSurface struct {
	mu      sync.Mutex
	ctx     context.Context
	alive   bool
	doc     *staged
	version int

	// execJS runs script in the window. Replaced in tests.
	execJS func(ctx context.Context, js string)
	// outcome returns the JSON body for OutcomeRoute.
	outcome func() any
}

// NewWindowSurface creates a surface that is not alive until Attach.
func NewWindowSurface() *WindowSurface {
	return &WindowSurface{execJS: wailsRuntime.WindowExecJS}
}

// Attach binds the surface to the running window.
func (s *WindowSurface) Attach(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	s.alive = true
}

// Teardown marks the window closed. Later loads are abandoned by the
// controller's liveness check.
func (s *WindowSurface) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive = false
}

// Alive implements resolver.Surface.
func (s *WindowSurface) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive && s.ctx != nil
}

// LoadFile implements resolver.Surface.
func (s *WindowSurface) LoadFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot display %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot display %s: is a directory", path)
	}
	return s.stage(staged{path: path})
}

// LoadHTML implements resolver.Surface.
func (s *WindowSurface) LoadHTML(html string) error {
	return s.stage(staged{html: html})
}

func (s *WindowSurface) stage(doc staged) error {
	s.mu.Lock()
	if !s.alive || s.ctx == nil {
		s.mu.Unlock()
		return fmt.Errorf("window is closed")
	}
	s.version++
	doc.version = s.version
	s.doc = &doc
	ctx := s.ctx
	s.mu.Unlock()

	s.execJS(ctx, navigateScript(doc.version))
	return nil
}

func navigateScript(version int) string {
	return fmt.Sprintf("window.location.replace(%q);", fmt.Sprintf("%s?v=%d", DocumentRoute, version))
}

// Handler serves the staged document. It is installed as the asset server
// fallback handler, so embedded assets take precedence.
func (s *WindowSurface) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(DocumentRoute, s.serveDocument).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(OutcomeRoute, s.serveOutcome).Methods(http.MethodGet)
	return r
}

func (s *WindowSurface) serveDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	if doc == nil {
		http.Error(w, "no document", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	if doc.path != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeFile(w, r, doc.path)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc.html))
}

func (s *WindowSurface) serveOutcome(w http.ResponseWriter, r *http.Request) {
	var body any
	if s.outcome != nil {
		body = s.outcome()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(body)
}
