// Package fallback provisions the static offline page shown when neither live
// nor cached content is available.
package fallback

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"html/template"
	"os"
	"path/filepath"

	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("fallback")

// FileName is the name of the fallback document inside the resources directory.
const FileName = "offline.html"

//go:embed offline.html.tmpl
var pageTemplate string

var page = template.Must(template.New("offline").Parse(pageTemplate))

// Provisioner makes sure the fallback document exists on disk.
type Provisioner struct {
	path    string
	appName string
}

// NewProvisioner returns a provisioner for dir/offline.html.
func NewProvisioner(dir, appName string) *Provisioner {
	return &Provisioner{
		path:    filepath.Join(dir, FileName),
		appName: appName,
	}
}

// Path returns the fallback document path.
func (p *Provisioner) Path() string {
	return p.path
}

// EnsureExists returns the document path and whether it is available. An
// existing file is never rewritten, even when the embedded template has changed
// since it was created. A write failure is logged and reported as ok=false.
func (p *Provisioner) EnsureExists() (path string, ok bool) {
	info, err := os.Stat(p.path)
	if err == nil {
		if info.IsDir() {
			log.Warnf("%s is a directory, fallback unavailable", p.path)
			return p.path, false
		}
		return p.path, true
	}
	if !os.IsNotExist(err) {
		log.Warnf("cannot stat %s: %v", p.path, err)
	}

	if err := p.write(); err != nil {
		log.Errorf("failed to provision fallback page: %v", err)
		return p.path, false
	}
	log.Infof("created fallback page %s", p.path)
	return p.path, true
}

func (p *Provisioner) write() error {
	doc, err := Render(p.appName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return fmt.Errorf("create resources directory: %w", err)
	}
	// O_EXCL so a page created concurrently by another instance is left alone.
	f, err := os.OpenFile(p.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("create %s: %w", p.path, err)
	}
	if _, err := f.Write(doc); err != nil {
		f.Close()
		_ = os.Remove(p.path)
		return fmt.Errorf("write %s: %w", p.path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p.path)
		return fmt.Errorf("close %s: %w", p.path, err)
	}
	return nil
}

// Render returns the fallback document for appName.
func Render(appName string) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, struct{ AppName string }{AppName: appName}); err != nil {
		return nil, fmt.Errorf("render fallback page: %w", err)
	}
	return buf.Bytes(), nil
}

// InlineMessage is the last-resort document. It is built in memory and does no
// I/O, so it cannot fail.
func InlineMessage(appName string) string {
	if appName == "" {
		appName = "The application"
	}
	return "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>Offline</title></head>" +
		"<body style=\"font-family:sans-serif;padding:2rem;background:#1b2636;color:#e6e9ef\">" +
		"<h1>Content unavailable</h1><p>" + html.EscapeString(appName) +
		" could not load its content. Check your internet connection and restart.</p></body></html>"
}
