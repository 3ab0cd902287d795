package parser

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/build"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
)

//go:embed schema.cue
var schemaSource []byte

// SchemaDefinition is the CUE definition every module is checked against.
const SchemaDefinition = "#Module"

// Parser loads and performs initial validation of module definitions.
type Parser struct {
	ctx    *cue.Context
	schema cue.Value
}

func New() *Parser {
	ctx := cuecontext.New()
	return &Parser{
		ctx:    ctx,
		schema: ctx.CompileBytes(schemaSource, cue.Filename("moderr/schema.cue")),
	}
}

// FormatCUELocationError converts CUE error into human-readable advice with locations.
func FormatCUELocationError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder
	for _, e := range errors.Errors(err) {
		msg.WriteString(fmt.Sprintf("CUE error: %v\n", e))

		positions := errors.Positions(e)
		if len(positions) > 1 {
			msg.WriteString("   conflict between these locations:\n")
			for i, p := range positions {
				msg.WriteString(fmt.Sprintf("   %d. %s\n", i+1, p.String()))
			}
		} else if len(positions) == 1 {
			msg.WriteString(fmt.Sprintf("   at %s\n", positions[0].String()))
		}
	}

	if msg.Len() == 0 {
		return err.Error()
	}
	return strings.TrimRight(msg.String(), "\n")
}

// Kind tells which loader handles an input path.
type Kind string

const (
	KindCUEPackage Kind = "cue-package"
	KindCUEFile    Kind = "cue-file"
	KindYAML       Kind = "yaml"
)

// Detect classifies path by its type and extension.
func Detect(path string) (Kind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return KindCUEPackage, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return KindCUEFile, nil
	case ".yaml", ".yml":
		return KindYAML, nil
	default:
		return "", fmt.Errorf("unsupported definition file %s (want a directory, .cue, .yaml or .yml)", path)
	}
}

// LoadDomain loads the CUE package found in a directory.
func (p *Parser) LoadDomain(path string) (cue.Value, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return cue.Value{}, err
	}
	return p.build(load.Instances([]string{"."}, &load.Config{Dir: absPath}), path)
}

// LoadFile loads a single CUE file.
func (p *Parser) LoadFile(path string) (cue.Value, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return cue.Value{}, err
	}
	return p.build(load.Instances([]string{filepath.Base(absPath)}, &load.Config{Dir: filepath.Dir(absPath)}), path)
}

func (p *Parser) build(bis []*build.Instance, path string) (cue.Value, error) {
	if len(bis) == 0 {
		return cue.Value{}, fmt.Errorf("no CUE files found in %s", path)
	}
	if bis[0].Err != nil {
		return cue.Value{}, bis[0].Err
	}

	// A single package per input.
	v := p.ctx.BuildInstance(bis[0])
	if err := v.Validate(cue.All()); err != nil {
		return cue.Value{}, err
	}
	if v.Err() != nil {
		return cue.Value{}, v.Err()
	}
	return v, nil
}

// CompileString compiles CUE source held in memory.
func (p *Parser) CompileString(src, filename string) (cue.Value, error) {
	v := p.ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return cue.Value{}, err
	}
	return v, nil
}

// ValidateModule checks the module field of val against the embedded schema.
func (p *Parser) ValidateModule(val cue.Value, field string) error {
	if err := p.schema.Err(); err != nil {
		return fmt.Errorf("compile module schema: %w", err)
	}
	mod := val.LookupPath(cue.ParsePath(field))
	if !mod.Exists() {
		return fmt.Errorf("no %q field found", field)
	}
	def := p.schema.LookupPath(cue.ParsePath(SchemaDefinition))
	return def.Unify(mod).Validate(cue.Concrete(true))
}
