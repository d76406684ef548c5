// Package resolver decides, once per launch, what the shell window shows:
// freshly fetched content, the cached copy, the fallback page, or an inline
// last-resort message.
//
// The decision runs as an explicit state machine:
//
//	Start -> ProbeConnectivity -> FetchRemote   -> LoadCache -> Display
//	                           \             \
//	                            -> LoadFallback -> ProvisionFallback -> Display
//
// Every displayed document goes through the persisted cache slot, so what the
// user sees and what is on disk are the same artifact.
package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/revden/webdeck/internal/connectivity"
	"github.com/revden/webdeck/internal/content"
	"github.com/revden/webdeck/internal/fallback"
	"github.com/revden/webdeck/internal/fingerprint"
	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("resolver")

// Prober reports whether the network is usable.
type Prober interface {
	Probe(ctx context.Context) connectivity.Verdict
}

// Fetcher retrieves the remote document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (content.Blob, error)
}

// Cache is the single-slot document store.
type Cache interface {
	Read() (content.Blob, bool)
	Write(content.Blob) error
	Path() string
}

// Fallback provisions the on-disk offline page.
type Fallback interface {
	EnsureExists() (path string, ok bool)
}

// Surface is the window the resolved document is displayed in.
type Surface interface {
	LoadFile(path string) error
	LoadHTML(html string) error
	// Alive reports whether the surface still exists. Display is skipped when it
	// does not.
	Alive() bool
}

// State is a step of the resolution state machine.
type State string

const (
	StateStart             State = "start"
	StateProbeConnectivity State = "probe-connectivity"
	StateFetchRemote       State = "fetch-remote"
	StateLoadCache         State = "load-cache"
	StateLoadFallback      State = "load-fallback"
	StateProvisionFallback State = "provision-fallback"
	StateDisplay           State = "display"
	StateDone              State = "done"
)

// Source identifies what was displayed.
type Source string

const (
	// SourceLive is content fetched during this run, displayed from the slot.
	SourceLive Source = "live"
	// SourceCache is content cached by an earlier run.
	SourceCache Source = "cache"
	// SourceFallback is the on-disk offline page.
	SourceFallback Source = "fallback"
	// SourceInline is the in-memory last-resort message.
	SourceInline Source = "inline"
)

// Outcome describes one resolution run.
type Outcome struct {
	RunID     string
	Verdict   connectivity.Verdict
	Source    Source
	Path      string
	Wrote     bool
	FetchErr  error
	WriteErr  error
	Trail     []State
	Abandoned bool
	Duration  time.Duration
}

// Config holds the controller's static inputs.
type Config struct {
	RemoteURL string
	AppName   string
}

// Deps are the host capabilities the controller composes.
type Deps struct {
	Prober   Prober
	Fetcher  Fetcher
	Cache    Cache
	Fallback Fallback
}

// Controller runs resolutions. Runs are serialized.
type Controller struct {
	cfg   Config
	deps  Deps
	mu    sync.Mutex
	newID func() string
}

// New creates a controller.
func New(cfg Config, deps Deps) *Controller {
	return &Controller{
		cfg:   cfg,
		deps:  deps,
		newID: uuid.NewString,
	}
}

// target is what the Display state shows.
type target struct {
	source Source
	path   string
	html   string
}

// run carries the state of one resolution.
type run struct {
	surface Surface
	outcome Outcome
	target  target
}

// Run executes one resolution against surface and always ends in a displayed
// document or an abandoned display. It never returns an error; failures are in
// the Outcome and the log.
func (c *Controller) Run(ctx context.Context, surface Surface) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	r := &run{surface: surface}
	r.outcome.RunID = c.newID()
	r.outcome.Verdict = connectivity.Indeterminate

	state := StateStart
	for state != StateDone {
		r.outcome.Trail = append(r.outcome.Trail, state)
		next := c.safeStep(ctx, r, state)
		log.Debugf("run=%s %s -> %s", r.outcome.RunID, state, next)
		state = next
	}

	r.outcome.Source = r.target.source
	r.outcome.Path = r.target.path
	r.outcome.Duration = time.Since(start)
	log.Infof("run=%s displayed %s (verdict=%s wrote=%t abandoned=%t) in %s",
		r.outcome.RunID, r.outcome.Source, r.outcome.Verdict, r.outcome.Wrote,
		r.outcome.Abandoned, r.outcome.Duration.Round(time.Millisecond))
	return r.outcome
}

// safeStep turns a panic in any step into the inline message.
func (c *Controller) safeStep(ctx context.Context, r *run, state State) (next State) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("run=%s panic in %s: %v", r.outcome.RunID, state, p)
			if state == StateDisplay {
				next = StateDone
				return
			}
			r.target = c.inlineTarget()
			next = StateDisplay
		}
	}()
	return c.step(ctx, r, state)
}

func (c *Controller) step(ctx context.Context, r *run, state State) State {
	switch state {
	case StateStart:
		return StateProbeConnectivity
	case StateProbeConnectivity:
		return c.probeConnectivity(ctx, r)
	case StateFetchRemote:
		return c.fetchRemote(ctx, r)
	case StateLoadCache:
		return c.loadCache(r)
	case StateLoadFallback:
		return c.loadFallback(r)
	case StateProvisionFallback:
		return c.provisionFallback(r)
	case StateDisplay:
		c.display(r)
		return StateDone
	default:
		panic(fmt.Sprintf("unknown state %q", state))
	}
}

func (c *Controller) probeConnectivity(ctx context.Context, r *run) State {
	r.outcome.Verdict = c.deps.Prober.Probe(ctx)
	if r.outcome.Verdict.Reachable() {
		return StateFetchRemote
	}
	log.Infof("run=%s network %s, skipping fetch", r.outcome.RunID, r.outcome.Verdict)
	return StateLoadFallback
}

func (c *Controller) fetchRemote(ctx context.Context, r *run) State {
	blob, err := c.deps.Fetcher.Fetch(ctx, c.cfg.RemoteURL)
	if err != nil {
		r.outcome.FetchErr = err
		log.Warnf("run=%s fetch failed: %v", r.outcome.RunID, err)
		return StateLoadFallback
	}

	fetched := fingerprint.FromString(blob.Text)
	cached := fingerprint.None
	if cur, ok := c.deps.Cache.Read(); ok {
		cached = fingerprint.FromString(cur.Text)
	}

	if fingerprint.Equal(fetched, cached) {
		log.Infof("run=%s remote content unchanged", r.outcome.RunID)
	} else {
		if err := c.deps.Cache.Write(blob); err != nil {
			r.outcome.WriteErr = err
			log.Warnf("run=%s cache write failed: %v", r.outcome.RunID, err)
			return StateLoadFallback
		}
		r.outcome.Wrote = true
	}

	return StateLoadCache
}

func (c *Controller) loadCache(r *run) State {
	if _, ok := c.deps.Cache.Read(); !ok {
		log.Warnf("run=%s cache slot unreadable after fetch", r.outcome.RunID)
		return StateProvisionFallback
	}
	r.target = target{source: SourceLive, path: c.deps.Cache.Path()}
	return StateDisplay
}

func (c *Controller) loadFallback(r *run) State {
	if _, ok := c.deps.Cache.Read(); !ok {
		return StateProvisionFallback
	}
	r.target = target{source: SourceCache, path: c.deps.Cache.Path()}
	return StateDisplay
}

func (c *Controller) provisionFallback(r *run) State {
	path, ok := c.deps.Fallback.EnsureExists()
	if !ok {
		log.Warnf("run=%s fallback page unavailable, using inline message", r.outcome.RunID)
		r.target = c.inlineTarget()
		return StateDisplay
	}
	r.target = target{source: SourceFallback, path: path}
	return StateDisplay
}

func (c *Controller) inlineTarget() target {
	return target{source: SourceInline, html: fallback.InlineMessage(c.cfg.AppName)}
}

func (c *Controller) display(r *run) {
	if r.surface == nil || !r.surface.Alive() {
		log.Infof("run=%s display surface gone, discarding result", r.outcome.RunID)
		r.outcome.Abandoned = true
		return
	}

	if r.target.source == SourceInline {
		if err := r.surface.LoadHTML(r.target.html); err != nil {
			log.Errorf("run=%s inline display failed: %v", r.outcome.RunID, err)
		}
		return
	}

	if err := r.surface.LoadFile(r.target.path); err != nil {
		log.Errorf("run=%s loading %s failed: %v", r.outcome.RunID, r.target.path, err)
		r.target = c.inlineTarget()
		if !r.surface.Alive() {
			r.outcome.Abandoned = true
			return
		}
		if err := r.surface.LoadHTML(r.target.html); err != nil {
			log.Errorf("run=%s inline display failed: %v", r.outcome.RunID, err)
		}
	}
}
