package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/revden/webdeck/internal/config"
	"github.com/revden/webdeck/internal/logging"
	"github.com/revden/webdeck/internal/resolver"
	"github.com/revden/webdeck/internal/update"
	"github.com/revden/webdeck/internal/workspace"
)

var log = logging.New("desktop")

// Version is set at build time via ldflags.
var Version = "0.1.0-dev"

const (
	// EventOutcome carries an OutcomeInfo after each resolution.
	EventOutcome = "shell:outcome"
	// EventUpdateStatus carries one update status line.
	EventUpdateStatus = "update:status"
)

// ErrUpdatesDisabled is returned by CheckForUpdates when no release source is configured.
var ErrUpdatesDisabled = errors.New("update checks are disabled")

// OutcomeInfo is the frontend view of a resolution outcome.
type OutcomeInfo struct {
	RunID      string   `json:"runId"`
	Verdict    string   `json:"verdict"`
	Source     string   `json:"source"`
	Path       string   `json:"path,omitempty"`
	Wrote      bool     `json:"wrote"`
	FetchError string   `json:"fetchError,omitempty"`
	WriteError string   `json:"writeError,omitempty"`
	Trail      []string `json:"trail"`
	Abandoned  bool     `json:"abandoned"`
	DurationMs int64    `json:"durationMs"`
}

func newOutcomeInfo(o resolver.Outcome) OutcomeInfo {
	info := OutcomeInfo{
		RunID:      o.RunID,
		Verdict:    o.Verdict.String(),
		Source:     string(o.Source),
		Path:       o.Path,
		Wrote:      o.Wrote,
		Abandoned:  o.Abandoned,
		DurationMs: o.Duration.Milliseconds(),
		Trail:      make([]string, 0, len(o.Trail)),
	}
	if o.FetchErr != nil {
		info.FetchError = o.FetchErr.Error()
	}
	if o.WriteErr != nil {
		info.WriteError = o.WriteErr.Error()
	}
	for _, s := range o.Trail {
		info.Trail = append(info.Trail, string(s))
	}
	return info
}

// runner is the part of resolver.Controller the app drives.
type runner interface {
	Run(ctx context.Context, surface resolver.Surface) resolver.Outcome
}

// App struct holds the application state.
type App struct {
	ctx        context.Context
	cfg        *config.Config
	controller runner
	surface    *WindowSurface
	dialogs    Dialogs
	updates    update.Source
	forwarder  *update.Forwarder
	recent     *workspace.Recent

	resolveOnce sync.Once
	resolved    chan struct{}

	mu   sync.Mutex
	last *OutcomeInfo

	// emit sends an event to the frontend. Replaced in tests.
	emit func(ctx context.Context, name string, data ...interface{})
}

// NewApp creates the application from cfg.
func NewApp(cfg *config.Config) *App {
	a := &App{
		cfg:        cfg,
		controller: resolver.FromConfig(cfg, "webdeck-desktop/"+Version),
		surface:    NewWindowSurface(),
		recent:     workspace.NewRecent(filepath.Join(cfg.DataDir(), workspace.RecentFileName)),
		resolved:   make(chan struct{}),
		emit:       wailsRuntime.EventsEmit,
	}
	a.dialogs = wailsDialogs{ctx: a.context}
	a.surface.outcome = func() any { return a.GetLastOutcome() }

	if cfg.Update.Enabled {
		a.updates = update.NewReleaseChecker(nil, cfg.Update.Owner, cfg.Update.Repo, Version)
	}
	a.forwarder = update.NewForwarder(
		update.NotifierFunc(a.notifyUpdateStatus),
		a.dialogs,
		quitInstaller{ctx: a.context},
	)
	return a
}

func (a *App) context() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

// startup is called when the app starts.
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	a.surface.Attach(ctx)
	if a.updates != nil {
		a.forwarder.Attach(a.updates)
	}
	log.Infof("webdeck %s starting, remote %s", Version, a.cfg.Shell.RemoteURL)
}

// domReady starts the one resolution of this launch. It fires again after
// each navigation, so later calls are ignored.
func (a *App) domReady(ctx context.Context) {
	a.resolveOnce.Do(func() {
		go a.resolve(ctx)
		if a.updates != nil {
			go a.updates.Check(ctx)
		}
	})
}

func (a *App) resolve(ctx context.Context) {
	defer close(a.resolved)

	info := newOutcomeInfo(a.controller.Run(ctx, a.surface))

	a.mu.Lock()
	a.last = &info
	a.mu.Unlock()

	if a.surface.Alive() {
		a.emit(ctx, EventOutcome, info)
	}
}

// beforeClose is called when the window is about to close.
func (a *App) beforeClose(ctx context.Context) (prevent bool) {
	a.surface.Teardown()
	return false
}

// shutdown is called when the app is closing.
func (a *App) shutdown(ctx context.Context) {
	a.surface.Teardown()
	a.forwarder.Detach()
	log.Infof("shutdown")
}

func (a *App) notifyUpdateStatus(status string) {
	ctx := a.context()
	if ctx == nil || !a.surface.Alive() {
		return
	}
	a.emit(ctx, EventUpdateStatus, status)
}

// GetVersion returns the application version.
func (a *App) GetVersion() string {
	return Version
}

// GetLastOutcome returns the most recent resolution outcome. Source is empty
// until the first resolution finishes.
func (a *App) GetLastOutcome() OutcomeInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return OutcomeInfo{Trail: []string{}}
	}
	return *a.last
}

// CheckForUpdates starts an update check. Progress arrives as update:status events.
func (a *App) CheckForUpdates() error {
	if a.updates == nil {
		return ErrUpdatesDisabled
	}
	ctx := a.context()
	if ctx == nil {
		ctx = context.Background()
	}
	go a.updates.Check(ctx)
	return nil
}

// GetUpdateStatus returns the last update status line.
func (a *App) GetUpdateStatus() string {
	return a.forwarder.LastStatus()
}

// ReadProjectFile returns the text of a project file and records it as recent.
func (a *App) ReadProjectFile(path string) (string, error) {
	text, err := workspace.ReadProjectFile(path)
	if err != nil {
		log.Warnf("read %s: %v", path, err)
		return "", err
	}
	a.recordRecent(workspace.ExpandHome(path))
	return text, nil
}

// SaveProjectFile writes text to path. An empty path asks for one first;
// cancelling returns an empty path and nil error.
func (a *App) SaveProjectFile(path, text string) (string, error) {
	if path == "" {
		chosen, err := a.dialogs.SaveFile("Save Project File", a.defaultDir())
		if err != nil || chosen == "" {
			return "", err
		}
		path = chosen
	}
	if err := workspace.SaveProjectFile(path, text); err != nil {
		log.Errorf("save %s: %v", path, err)
		return "", err
	}
	path = workspace.ExpandHome(path)
	a.recordRecent(path)
	return path, nil
}

// OpenProjectFile shows a file picker and returns the chosen path.
func (a *App) OpenProjectFile() (string, error) {
	return a.dialogs.OpenFile("Open Project File", a.defaultDir())
}

// BrowseDirectory shows a directory picker and returns the chosen path.
func (a *App) BrowseDirectory(defaultDir string) (string, error) {
	if defaultDir == "" {
		defaultDir = a.defaultDir()
	}
	return a.dialogs.OpenDirectory("Select Directory", workspace.ExpandHome(defaultDir))
}

// ListDirectory lists dir, directories first. Hidden entries are omitted.
func (a *App) ListDirectory(dir string) ([]workspace.Entry, error) {
	return workspace.ListDirectory(dir, false)
}

// ResolvePastedPath classifies pasted text as url, file, directory or invalid.
func (a *App) ResolvePastedPath(text string) workspace.PastedPath {
	return workspace.ClassifyPastedPath(text)
}

// GetRecentFiles returns recently used paths, best first.
func (a *App) GetRecentFiles(limit int) []workspace.RecentItem {
	return a.recent.List(limit)
}

// LogFrontendDiagnostic writes a frontend message to the debug log.
func (a *App) LogFrontendDiagnostic(message string) {
	log.Infof("[frontend] %s", message)
}

func (a *App) recordRecent(path string) {
	if err := a.recent.Record(path); err != nil {
		log.Warnf("failed to record recent %s: %v", path, err)
	}
}

func (a *App) defaultDir() string {
	if items := a.recent.List(1); len(items) > 0 {
		if info, err := os.Stat(items[0].Path); err == nil && !info.IsDir() {
			return filepath.Dir(items[0].Path)
		}
		return items[0].Path
	}
	home, _ := os.UserHomeDir()
	return home
}
