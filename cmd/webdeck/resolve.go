package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/revden/webdeck/internal/resolver"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Run one content resolution and report what would be displayed",
	Long: `Probes connectivity, fetches the remote document when reachable, updates
the cache when the content changed, and prints the document the window would
display: live content, the cached copy, the offline page or the inline message.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print the outcome as JSON")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	surface := &printSurface{w: out, quiet: resolveJSON}

	outcome := newController(cfg).Run(context.Background(), surface)

	if resolveJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(newOutcomeJSON(outcome))
	}

	fmt.Fprintf(out, "run:          %s\n", outcome.RunID)
	fmt.Fprintf(out, "connectivity: %s\n", styleVerdict(out, outcome.Verdict))
	fmt.Fprintf(out, "source:       %s\n", styleSource(out, outcome.Source))
	if outcome.Path != "" {
		fmt.Fprintf(out, "path:         %s\n", outcome.Path)
	}
	fmt.Fprintf(out, "cache write:  %t\n", outcome.Wrote)
	if outcome.FetchErr != nil {
		fmt.Fprintf(out, "fetch error:  %v\n", outcome.FetchErr)
	}
	if outcome.WriteErr != nil {
		fmt.Fprintf(out, "write error:  %v\n", outcome.WriteErr)
	}
	fmt.Fprintf(out, "trail:        %s\n", joinStates(outcome.Trail))
	fmt.Fprintf(out, "took:         %s\n", outcome.Duration.Round(time.Millisecond))
	return nil
}

type outcomeJSON struct {
	RunID      string   `json:"run_id"`
	Verdict    string   `json:"verdict"`
	Source     string   `json:"source"`
	Path       string   `json:"path,omitempty"`
	Wrote      bool     `json:"wrote"`
	FetchError string   `json:"fetch_error,omitempty"`
	WriteError string   `json:"write_error,omitempty"`
	Trail      []string `json:"trail"`
	DurationMs int64    `json:"duration_ms"`
}

func newOutcomeJSON(o resolver.Outcome) outcomeJSON {
	j := outcomeJSON{
		RunID:      o.RunID,
		Verdict:    o.Verdict.String(),
		Source:     string(o.Source),
		Path:       o.Path,
		Wrote:      o.Wrote,
		Trail:      make([]string, 0, len(o.Trail)),
		DurationMs: o.Duration.Milliseconds(),
	}
	if o.FetchErr != nil {
		j.FetchError = o.FetchErr.Error()
	}
	if o.WriteErr != nil {
		j.WriteError = o.WriteErr.Error()
	}
	for _, s := range o.Trail {
		j.Trail = append(j.Trail, string(s))
	}
	return j
}

func joinStates(states []resolver.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, " -> ")
}

// printSurface is a headless display surface that reports what it was asked
// to show.
type printSurface struct {
	w     io.Writer
	quiet bool
}

func (s *printSurface) LoadFile(path string) error {
	if !s.quiet {
		fmt.Fprintf(s.w, "display file: %s\n", path)
	}
	return nil
}

func (s *printSurface) LoadHTML(html string) error {
	if !s.quiet {
		fmt.Fprintf(s.w, "display inline message (%d bytes)\n", len(html))
	}
	return nil
}

func (s *printSurface) Alive() bool { return true }
