package update

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("update")

// DefaultProgressInterval is the minimum gap between forwarded progress messages.
const DefaultProgressInterval = 500 * time.Millisecond

// Notifier delivers a status line to the UI.
type Notifier interface {
	Notify(status string)
}

// Prompter asks the user whether to restart now.
type Prompter interface {
	ConfirmRestart(version string) bool
}

// Installer restarts the application into the downloaded update.
type Installer interface {
	QuitAndInstall() error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(status string)

func (f NotifierFunc) Notify(status string) { f(status) }

// Forwarder maps update events to status messages. It holds no update logic
// beyond the restart decision.
type Forwarder struct {
	notifier  Notifier
	prompter  Prompter
	installer Installer
	progress  *rate.Limiter

	mu    sync.Mutex
	last  string
	unsub func()
	// pending is the latest throttled progress event, flushed before the
	// next event of any other kind.
	pending *Event
}

// NewForwarder creates a forwarder. prompter and installer may be nil, in which
// case a downloaded update is announced but no restart is offered.
func NewForwarder(n Notifier, p Prompter, i Installer) *Forwarder {
	return &Forwarder{
		notifier:  n,
		prompter:  p,
		installer: i,
		progress:  rate.NewLimiter(rate.Every(DefaultProgressInterval), 1),
	}
}

// Attach subscribes to src. Attaching again replaces the previous subscription.
func (f *Forwarder) Attach(src Source) {
	unsub := src.Subscribe(f.Handle)

	f.mu.Lock()
	prev := f.unsub
	f.unsub = unsub
	f.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// Detach drops the current subscription.
func (f *Forwarder) Detach() {
	f.mu.Lock()
	unsub := f.unsub
	f.unsub = nil
	f.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// LastStatus returns the most recent forwarded message.
func (f *Forwarder) LastStatus() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Handle forwards one event. Progress events arriving faster than the
// throttle interval are coalesced: only the latest is kept, and it is sent
// before the next non-progress event.
func (f *Forwarder) Handle(ev Event) {
	if ev.Kind == KindProgress {
		if ev.Percent < 100 && !f.progress.Allow() {
			f.mu.Lock()
			f.pending = &ev
			f.mu.Unlock()
			return
		}
		f.mu.Lock()
		f.pending = nil
		f.mu.Unlock()
		f.send(ev)
		return
	}

	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()
	if pending != nil {
		f.send(*pending)
	}
	f.send(ev)
}

func (f *Forwarder) send(ev Event) {
	status := StatusMessage(ev)
	f.mu.Lock()
	f.last = status
	f.mu.Unlock()

	log.Infof("%s", status)
	if f.notifier != nil {
		f.notifier.Notify(status)
	}

	if ev.Kind == KindDownloaded {
		f.offerRestart(ev.Version)
	}
}

func (f *Forwarder) offerRestart(version string) {
	if f.prompter == nil || f.installer == nil {
		return
	}
	if !f.prompter.ConfirmRestart(version) {
		log.Infof("restart to install %s postponed", version)
		return
	}
	if err := f.installer.QuitAndInstall(); err != nil {
		log.Errorf("quit and install failed: %v", err)
		if f.notifier != nil {
			f.notifier.Notify(StatusMessage(Event{Kind: KindError, Err: err}))
		}
	}
}

// StatusMessage is the UI text for an event.
func StatusMessage(ev Event) string {
	switch ev.Kind {
	case KindChecking:
		return "Checking for updates..."
	case KindAvailable:
		if ev.Version != "" {
			return fmt.Sprintf("Update available (%s).", ev.Version)
		}
		return "Update available."
	case KindNotAvailable:
		return "You are running the latest version."
	case KindProgress:
		return fmt.Sprintf("Downloading update: %.0f%%", clampPercent(ev.Percent))
	case KindDownloaded:
		return "Update downloaded. Restart to install."
	case KindError:
		if ev.Err != nil {
			return fmt.Sprintf("Update failed: %v", ev.Err)
		}
		return "Update failed."
	default:
		return fmt.Sprintf("Update status: %s", ev.Kind)
	}
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
