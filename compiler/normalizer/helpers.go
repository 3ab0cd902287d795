package normalizer

import (
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"

	"github.com/strogmv/moderr/compiler/ir"
)

func spanOf(v cue.Value) ir.Span {
	pos := v.Pos()
	if !pos.IsValid() {
		return ir.Span{}
	}
	return ir.Span{File: relPath(pos.Filename()), Line: pos.Line(), Column: pos.Column()}
}

// relPath makes file relative to the working directory when it lives below it.
func relPath(file string) string {
	if file == "" {
		return ""
	}
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, file); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return file
}

// docLines returns the doc comments attached to v, one entry per line.
func docLines(v cue.Value) []string {
	var out []string
	for _, cg := range v.Doc() {
		for _, line := range strings.Split(strings.TrimSpace(cg.Text()), "\n") {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

func cleanDocs(lines []string) []string {
	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" && len(out) == 0 {
			continue
		}
		out = append(out, l)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
