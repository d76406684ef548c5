package resolver

import (
	"time"

	"github.com/revden/webdeck/internal/cache"
	"github.com/revden/webdeck/internal/config"
	"github.com/revden/webdeck/internal/connectivity"
	"github.com/revden/webdeck/internal/fallback"
	"github.com/revden/webdeck/internal/fetch"
)

// ProbeTimeout bounds each DNS query made by the default prober.
const ProbeTimeout = 5 * time.Second

// FromConfig wires a controller with the production prober, fetcher, cache
// store and fallback provisioner described by cfg.
func FromConfig(cfg *config.Config, userAgent string) *Controller {
	opts := []fetch.Option{fetch.WithTimeout(cfg.FetchTimeout())}
	if userAgent != "" {
		opts = append(opts, fetch.WithUserAgent(userAgent))
	}

	return New(
		Config{RemoteURL: cfg.Shell.RemoteURL, AppName: cfg.Shell.AppName},
		Deps{
			Prober:   connectivity.NewSystemProber(ProbeTimeout, cfg.Shell.RemoteURL, cfg.Shell.ProbeHost),
			Fetcher:  fetch.New(opts...),
			Cache:    cache.NewStore(cfg.Shell.CacheDir),
			Fallback: fallback.NewProvisioner(cfg.Shell.ResourcesDir, cfg.Shell.AppName),
		},
	)
}
