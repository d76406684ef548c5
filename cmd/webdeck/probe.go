package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether the remote host is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		verdict := newProber(cfg).Probe(context.Background())
		fmt.Fprintf(out, "%s: %s\n", cfg.Shell.RemoteURL, styleVerdict(out, verdict))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
