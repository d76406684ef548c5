package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revden/webdeck/internal/update"
)

var updateCmd = &cobra.Command{
	Use:   "check-update",
	Short: "Check GitHub for a newer release",
	Args:  cobra.NoArgs,
	RunE:  runCheckUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runCheckUpdate(cmd *cobra.Command, _ []string) error {
	if cfg.Update.Owner == "" || cfg.Update.Repo == "" {
		return errors.New("update.owner and update.repo are not configured")
	}

	out := cmd.OutOrStdout()
	src := newUpdateSource(cfg)
	fwd := update.NewForwarder(update.NotifierFunc(func(status string) {
		fmt.Fprintln(out, status)
	}), nil, nil)
	fwd.Attach(src)
	defer fwd.Detach()

	src.Check(context.Background())
	return nil
}
