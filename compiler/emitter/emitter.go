// Package emitter renders augmented module definitions into Go source.
package emitter

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/templates"
)

// DefaultDispatchImport is the import path of the runtime package the
// generated code calls into.
const DefaultDispatchImport = "github.com/strogmv/moderr/dispatch"

// Options configures an Emitter.
type Options struct {
	OutputDir string
	// Package overrides the package clause of every generated file.
	Package string
	// DispatchImport overrides DefaultDispatchImport. The package it names
	// must be called dispatch.
	DispatchImport string
	Version        string
	// TemplatesDir holds *.tmpl files that replace the embedded template of
	// the same name or add new ones.
	TemplatesDir string
	Logger       *slog.Logger
}

type Emitter struct {
	opts   Options
	tmpl   *template.Template
	logger *slog.Logger
}

// File is one generated source file.
type File struct {
	Module  string
	Path    string
	Content []byte
}

func New(opts Options) (*Emitter, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.DispatchImport == "" {
		opts.DispatchImport = DefaultDispatchImport
	}
	if opts.Version == "" {
		opts.Version = compiler.Version
	}
	if opts.Package != "" && !isPackageName(opts.Package) {
		return nil, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterOptions, "configure emitter",
			fmt.Errorf("invalid package name %q", opts.Package))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Emitter{opts: opts, logger: logger}
	tmpl, err := e.loadTemplates()
	if err != nil {
		return nil, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterOptions, "load templates", err)
	}
	e.tmpl = tmpl
	return e, nil
}

// ReadTemplate reads a template file from disk or the embedded FS.
// Priority: 1) TemplatesDir (local overrides), 2) Embedded FS
func (e *Emitter) ReadTemplate(name string) ([]byte, error) {
	if e.opts.TemplatesDir != "" {
		content, err := os.ReadFile(filepath.Join(e.opts.TemplatesDir, name))
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return templates.FS.ReadFile(name)
}

func (e *Emitter) loadTemplates() (*template.Template, error) {
	names, err := fs.Glob(templates.FS, "*.tmpl")
	if err != nil {
		return nil, err
	}
	if e.opts.TemplatesDir != "" {
		local, err := filepath.Glob(filepath.Join(e.opts.TemplatesDir, "*.tmpl"))
		if err != nil {
			return nil, err
		}
		for _, path := range local {
			name := filepath.Base(path)
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
	}
	root := template.New("moderr").Funcs(e.funcMap())
	for _, name := range names {
		content, err := e.ReadTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		if _, err := root.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
	}
	return root, nil
}

func (e *Emitter) funcMap() template.FuncMap {
	return template.FuncMap{
		"quote":       strconv.Quote,
		"doc":         docComment,
		"stringSlice": stringSlice,
	}
}

func (e *Emitter) render(name string, data any) (string, error) {
	var buf strings.Builder
	if err := e.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// docComment renders lead followed by the documentation lines as a Go
// comment block.
func docComment(lead string, docs []string) string {
	var b strings.Builder
	b.WriteString("// " + lead)
	if len(docs) > 0 {
		b.WriteString("\n//")
		for _, line := range docs {
			if line == "" {
				b.WriteString("\n//")
				continue
			}
			b.WriteString("\n// " + line)
		}
	}
	return b.String()
}

func stringSlice(items []string) string {
	if len(items) == 0 {
		return "nil"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func isPackageName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Write stores files on disk, creating the output directory when needed.
func (e *Emitter) Write(files []File) error {
	if err := os.MkdirAll(e.opts.OutputDir, 0o755); err != nil {
		return compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterWrite, "create "+e.opts.OutputDir, err)
	}
	for _, f := range files {
		if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
			return compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterWrite, "write "+f.Path, err)
		}
		e.logger.Info("generated", "module", f.Module, "file", f.Path)
	}
	return nil
}
