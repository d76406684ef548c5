package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revden/webdeck/internal/cache"
	"github.com/revden/webdeck/internal/fallback"
	"github.com/revden/webdeck/internal/fingerprint"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show the cached document and offline page",
	Args:  cobra.NoArgs,
	RunE:  runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	store := cache.NewStore(cfg.Shell.CacheDir)

	fmt.Fprintf(out, "cache:       %s\n", store.Path())
	if blob, ok := store.Read(); ok {
		fmt.Fprintf(out, "size:        %d bytes\n", blob.Len())
		fmt.Fprintf(out, "fingerprint: %s\n", fingerprint.FromString(blob.Text))
	} else {
		fmt.Fprintln(out, "size:        (absent)")
	}

	prov := fallback.NewProvisioner(cfg.Shell.ResourcesDir, cfg.Shell.AppName)
	fmt.Fprintf(out, "offline:     %s\n", prov.Path())
	return nil
}
