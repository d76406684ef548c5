package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revden/webdeck/internal/config"
	"github.com/revden/webdeck/internal/connectivity"
	"github.com/revden/webdeck/internal/logging"
	"github.com/revden/webdeck/internal/resolver"
	"github.com/revden/webdeck/internal/update"
)

// version is set at build time via ldflags.
var version = "0.1.0-dev"

var (
	configPath string
	verbose    bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

// Constructors for the production stack. Tests replace them.
var (
	newController = func(c *config.Config) controller {
		return resolver.FromConfig(c, "webdeck-cli/"+version)
	}
	newProber = func(c *config.Config) resolver.Prober {
		return connectivity.NewSystemProber(resolver.ProbeTimeout, c.Shell.RemoteURL, c.Shell.ProbeHost)
	}
	newUpdateSource = func(c *config.Config) update.Source {
		return update.NewReleaseChecker(nil, c.Update.Owner, c.Update.Repo, version)
	}
)

type controller interface {
	Run(ctx context.Context, surface resolver.Surface) resolver.Outcome
}

var rootCmd = &cobra.Command{
	Use:          "webdeck",
	Short:        "Inspect the webdeck shell's content resolution",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logging.SetVerbose(verbose)
		logging.SetOutput(cmd.ErrOrStderr())

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to config.toml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
