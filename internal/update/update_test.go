package update

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// =============================================================================
// CompareVersions Tests
// =============================================================================
// Decides whether the latest release is newer than the running build.

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name string
		v1   string
		v2   string
		want int
	}{
		// Equal versions
		{"equal simple", "1.0.0", "1.0.0", 0},
		{"equal with v prefix", "v1.0.0", "1.0.0", 0},
		{"equal both v prefix", "v2.1.0", "v2.1.0", 0},

		// v1 < v2 (update available)
		{"patch update", "1.0.0", "1.0.1", -1},
		{"minor update", "1.0.0", "1.1.0", -1},
		{"major update", "1.0.0", "2.0.0", -1},
		{"minor with v prefix", "v1.2.0", "v1.3.0", -1},

		// v1 > v2 (downgrade/rollback)
		{"patch downgrade", "1.0.1", "1.0.0", 1},
		{"complex downgrade", "2.1.0", "1.9.9", 1},

		// Partial versions (padded with zeros)
		{"short v1", "1.0", "1.0.0", 0},
		{"short both", "1", "1.0.0", 0},
		{"short update needed", "1.0", "1.0.1", -1},

		// Suffixes are ignored
		{"dev suffix", "0.1.0-dev", "0.1.0", 0},
		{"build metadata", "1.2.3+abc", "1.2.4", -1},

		// Edge cases
		{"zero versions", "0.0.0", "0.0.0", 0},
		{"high numbers", "10.20.30", "10.20.31", -1},
		{"empty", "", "0.0.1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareVersions(tt.v1, tt.v2)
			if got != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.want)
			}
		})
	}
}

// TestCompareVersions_Symmetry verifies the comparison is antisymmetric.
func TestCompareVersions_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"1.0.0", "2.0.0"},
		{"1.2.3", "1.2.4"},
		{"v0.9.0", "v1.0.0"},
	}

	for _, pair := range pairs {
		forward := CompareVersions(pair[0], pair[1])
		backward := CompareVersions(pair[1], pair[0])
		if forward != -backward {
			t.Errorf("CompareVersions(%q, %q) = %d but reverse = %d", pair[0], pair[1], forward, backward)
		}
	}
}

// =============================================================================
// Forwarder Tests
// =============================================================================

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, s)
}

type fakePrompter struct {
	answer   bool
	versions []string
}

func (p *fakePrompter) ConfirmRestart(v string) bool {
	p.versions = append(p.versions, v)
	return p.answer
}

type fakeInstaller struct {
	calls int
	err   error
}

func (i *fakeInstaller) QuitAndInstall() error {
	i.calls++
	return i.err
}

func TestForwarderMapsEachEventToOneMessage(t *testing.T) {
	n := &recordingNotifier{}
	f := NewForwarder(n, nil, nil)
	var hub Hub
	f.Attach(&hubSource{Hub: &hub})

	hub.Emit(Event{Kind: KindChecking})
	hub.Emit(Event{Kind: KindAvailable, Version: "v1.2.0"})
	hub.Emit(Event{Kind: KindNotAvailable})
	hub.Emit(Event{Kind: KindError, Err: errors.New("offline")})

	assert.Equal(t, []string{
		"Checking for updates...",
		"Update available (v1.2.0).",
		"You are running the latest version.",
		"Update failed: offline",
	}, n.messages)
	assert.Equal(t, "Update failed: offline", f.LastStatus())
}

func TestForwarderThrottlesProgress(t *testing.T) {
	n := &recordingNotifier{}
	f := NewForwarder(n, nil, nil)
	f.progress = rate.NewLimiter(rate.Every(1<<62), 1)

	f.Handle(Event{Kind: KindProgress, Percent: 10})
	f.Handle(Event{Kind: KindProgress, Percent: 20})
	f.Handle(Event{Kind: KindProgress, Percent: 30})
	f.Handle(Event{Kind: KindProgress, Percent: 100})

	assert.Equal(t, []string{"Downloading update: 10%", "Downloading update: 100%"}, n.messages)
}

func TestForwarderFlushesThrottledProgressBeforeNextEvent(t *testing.T) {
	n := &recordingNotifier{}
	f := NewForwarder(n, nil, nil)
	f.progress = rate.NewLimiter(rate.Every(1<<62), 1)

	f.Handle(Event{Kind: KindProgress, Percent: 10})
	f.Handle(Event{Kind: KindProgress, Percent: 40})
	f.Handle(Event{Kind: KindProgress, Percent: 70})
	f.Handle(Event{Kind: KindError, Err: errors.New("disk full")})
	f.Handle(Event{Kind: KindNotAvailable})

	assert.Equal(t, []string{
		"Downloading update: 10%",
		"Downloading update: 70%",
		"Update failed: disk full",
		"You are running the latest version.",
	}, n.messages)
}

func TestForwarderRestartAccepted(t *testing.T) {
	n := &recordingNotifier{}
	p := &fakePrompter{answer: true}
	i := &fakeInstaller{}
	f := NewForwarder(n, p, i)

	f.Handle(Event{Kind: KindDownloaded, Version: "v2.0.0"})

	assert.Equal(t, []string{"Update downloaded. Restart to install."}, n.messages)
	assert.Equal(t, []string{"v2.0.0"}, p.versions)
	assert.Equal(t, 1, i.calls)
}

func TestForwarderRestartDeclined(t *testing.T) {
	p := &fakePrompter{answer: false}
	i := &fakeInstaller{}
	f := NewForwarder(&recordingNotifier{}, p, i)

	f.Handle(Event{Kind: KindDownloaded, Version: "v2.0.0"})

	assert.Len(t, p.versions, 1)
	assert.Equal(t, 0, i.calls)
}

func TestForwarderInstallFailureIsReported(t *testing.T) {
	n := &recordingNotifier{}
	f := NewForwarder(n, &fakePrompter{answer: true}, &fakeInstaller{err: errors.New("no installer")})

	f.Handle(Event{Kind: KindDownloaded})

	require.Len(t, n.messages, 2)
	assert.Equal(t, "Update failed: no installer", n.messages[1])
}

func TestForwarderDetach(t *testing.T) {
	n := &recordingNotifier{}
	f := NewForwarder(n, nil, nil)
	var hub Hub
	f.Attach(&hubSource{Hub: &hub})

	f.Detach()
	hub.Emit(Event{Kind: KindChecking})

	assert.Empty(t, n.messages)
}

func TestStatusMessageProgressClamped(t *testing.T) {
	assert.Equal(t, "Downloading update: 0%", StatusMessage(Event{Kind: KindProgress, Percent: -5}))
	assert.Equal(t, "Downloading update: 100%", StatusMessage(Event{Kind: KindProgress, Percent: 140}))
	assert.Equal(t, "Downloading update: 43%", StatusMessage(Event{Kind: KindProgress, Percent: 42.6}))
}

// hubSource exposes a bare Hub as a Source.
type hubSource struct {
	*Hub
}

func (s *hubSource) Check(context.Context) {}

// =============================================================================
// ReleaseChecker Tests
// =============================================================================

func newTestChecker(t *testing.T, handler http.HandlerFunc, current string) *ReleaseChecker {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewReleaseChecker(srv.Client(), "revden", "webdeck", current)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	c.client.BaseURL = base
	return c
}

func collect(src Source) *[]Event {
	var events []Event
	src.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events
}

func TestReleaseCheckerUpdateAvailable(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/revden/webdeck/releases/latest", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.3.0","html_url":"https://github.com/revden/webdeck/releases/v1.3.0"}`))
	}, "1.2.0")
	events := collect(c)

	c.Check(context.Background())

	require.Len(t, *events, 2)
	assert.Equal(t, KindChecking, (*events)[0].Kind)
	assert.Equal(t, KindAvailable, (*events)[1].Kind)
	assert.Equal(t, "v1.3.0", (*events)[1].Version)
}

func TestReleaseCheckerUpToDate(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.2.0"}`))
	}, "v1.2.0")

	info, err := c.CheckForUpdate(context.Background())

	require.NoError(t, err)
	assert.False(t, info.Available)
	assert.Equal(t, "v1.2.0", info.LatestVersion)
}

func TestReleaseCheckerNoReleases(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}, "1.0.0")
	events := collect(c)

	c.Check(context.Background())

	require.Len(t, *events, 2)
	assert.Equal(t, KindNotAvailable, (*events)[1].Kind)
}

func TestReleaseCheckerServerError(t *testing.T) {
	c := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "1.0.0")
	events := collect(c)

	c.Check(context.Background())

	require.Len(t, *events, 2)
	assert.Equal(t, KindError, (*events)[1].Kind)
	assert.Error(t, (*events)[1].Err)
}

func TestReleaseCheckerNotConfigured(t *testing.T) {
	c := NewReleaseChecker(nil, "", "", "1.0.0")

	_, err := c.CheckForUpdate(context.Background())

	assert.Error(t, err)
}
