// Package connectivity gives a best-effort answer to "is the internet usable
// right now" before the shell spends a full fetch timeout finding out.
package connectivity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("connectivity")

// DefaultPublicHost is resolved when the remote host itself does not resolve.
const DefaultPublicHost = "www.google.com"

// Verdict is the outcome of one probe.
type Verdict int

const (
	// Indeterminate means probing itself failed. Callers treat it as Unreachable.
	Indeterminate Verdict = iota
	Unreachable
	Reachable
)

func (v Verdict) String() string {
	switch v {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	default:
		return "indeterminate"
	}
}

// Reachable reports whether a fetch should be attempted.
func (v Verdict) Reachable() bool {
	return v == Reachable
}

// Prober checks name resolution for the remote host, then for a well-known
// public host as a generic internet signal.
type Prober struct {
	remote     Resolver
	public     Resolver
	remoteURL  string
	publicHost string
}

// NewProber creates a prober for remoteURL that uses resolver for both tiers.
// An empty publicHost uses DefaultPublicHost.
func NewProber(resolver Resolver, remoteURL, publicHost string) *Prober {
	return NewSplitProber(resolver, resolver, remoteURL, publicHost)
}

// NewSplitProber resolves the remote host with remote and the public host
// with public.
func NewSplitProber(remote, public Resolver, remoteURL, publicHost string) *Prober {
	if publicHost == "" {
		publicHost = DefaultPublicHost
	}
	return &Prober{
		remote:     remote,
		public:     public,
		remoteURL:  remoteURL,
		publicHost: publicHost,
	}
}

// NewSystemProber resolves the remote host through the operating system
// resolver, so hosts files, search domains and split DNS apply, and the
// public host through DefaultResolver.
func NewSystemProber(timeout time.Duration, remoteURL, publicHost string) *Prober {
	return NewSplitProber(NewNetResolver(), DefaultResolver(timeout), remoteURL, publicHost)
}

// Probe never returns an error. DNS success does not guarantee the fetch will
// succeed; that is handled by the fetch step.
func (p *Prober) Probe(ctx context.Context) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("probe panicked: %v", r)
			verdict = Indeterminate
		}
	}()

	host, err := hostOf(p.remoteURL)
	if err != nil {
		log.Warnf("cannot probe: %v", err)
		return Indeterminate
	}

	err = p.remote.LookupHost(ctx, host)
	if err == nil {
		log.Debugf("remote host %s resolved", host)
		return Reachable
	}
	log.Infof("remote host %s did not resolve (%v), trying %s", host, err, p.publicHost)

	err = p.public.LookupHost(ctx, p.publicHost)
	if err == nil {
		log.Infof("public host %s resolved, remote host may be down", p.publicHost)
		return Reachable
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrTemporary) {
		log.Infof("public host %s did not resolve: %v", p.publicHost, err)
		return Unreachable
	}
	log.Warnf("resolver failure: %v", err)
	return Indeterminate
}

func hostOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid remote url %q: %w", raw, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("remote url %q has no host", raw)
	}
	return host, nil
}
