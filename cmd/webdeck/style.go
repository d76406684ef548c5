package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/revden/webdeck/internal/connectivity"
	"github.com/revden/webdeck/internal/resolver"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
)

// isTerminal reports whether w is a terminal. Buffers and pipes are not.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func colorize(w io.Writer, color, s string) string {
	if !isTerminal(w) {
		return s
	}
	return color + s + ansiReset
}

func styleVerdict(w io.Writer, v connectivity.Verdict) string {
	switch v {
	case connectivity.Reachable:
		return colorize(w, ansiGreen, v.String())
	case connectivity.Unreachable:
		return colorize(w, ansiRed, v.String())
	default:
		return colorize(w, ansiYellow, v.String())
	}
}

func styleSource(w io.Writer, s resolver.Source) string {
	switch s {
	case resolver.SourceLive:
		return colorize(w, ansiGreen, string(s))
	case resolver.SourceCache:
		return colorize(w, ansiYellow, string(s))
	default:
		return colorize(w, ansiRed, string(s))
	}
}
