package workspace

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// PathKind classifies pasted text.
type PathKind string

const (
	KindURL       PathKind = "url"
	KindFile      PathKind = "file"
	KindDirectory PathKind = "directory"
	KindInvalid   PathKind = "invalid"
)

// PastedPath is the result of ClassifyPastedPath.
type PastedPath struct {
	Kind PathKind `json:"kind"`
	// Value is the normalized URL or absolute path.
	Value string `json:"value"`
}

// ClassifyPastedPath decides whether text names a web URL, an existing file or
// an existing directory. Surrounding quotes and file:// prefixes are stripped.
func ClassifyPastedPath(text string) PastedPath {
	s := unquote(strings.TrimSpace(text))
	if s == "" || strings.ContainsAny(s, "\n\r") {
		return PastedPath{Kind: KindInvalid}
	}

	if u, err := url.Parse(s); err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			if u.Host == "" {
				return PastedPath{Kind: KindInvalid}
			}
			return PastedPath{Kind: KindURL, Value: u.String()}
		case "file":
			s = u.Path
		default:
			// drive letters parse as a scheme
			if len(u.Scheme) != 1 {
				return PastedPath{Kind: KindInvalid}
			}
		}
	}

	path := ExpandHome(s)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := os.Stat(path)
	if err != nil {
		return PastedPath{Kind: KindInvalid}
	}
	if info.IsDir() {
		return PastedPath{Kind: KindDirectory, Value: path}
	}
	return PastedPath{Kind: KindFile, Value: path}
}

// unquote strips one pair of matching single or double quotes, as added by
// terminals and file managers, and undoes shell-style '\'' escapes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			s = s[1 : len(s)-1]
			if first == '\'' {
				s = strings.ReplaceAll(s, `'\''`, "'")
			}
		}
	}
	return s
}
