package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/strogmv/moderr/compiler/ir"
	"github.com/strogmv/moderr/compiler/normalizer"
	"github.com/strogmv/moderr/compiler/pkg/names"
	"github.com/strogmv/moderr/compiler/parser"
	"github.com/strogmv/moderr/compiler/transformers"
)

const Version = "0.1.0"

// PipelineOptions tunes the definition-time stages.
type PipelineOptions struct {
	WarningSink func(normalizer.Warning)
	// ModuleErrorBudget overrides the static size warning threshold.
	ModuleErrorBudget int
}

// LoadResult is the outcome of loading definitions from disk.
type LoadResult struct {
	Modules     []ir.ModuleDefinition
	Diagnostics []normalizer.Warning
}

// LoadModules parses, normalizes and validates every module found in paths.
// A path is a CUE package directory, a .cue file or a YAML file.
func LoadModules(paths ...string) (LoadResult, error) {
	return LoadModulesWithOptions(PipelineOptions{}, paths...)
}

func LoadModulesWithOptions(opts PipelineOptions, paths ...string) (LoadResult, error) {
	var res LoadResult
	if len(paths) == 0 {
		return res, WrapContractError(StageParse, ErrCodeInputDetect, "detect input", fmt.Errorf("no definition paths given"))
	}

	p := parser.New()
	n := normalizer.New()
	if opts.ModuleErrorBudget > 0 {
		n.ModuleErrorBudget = opts.ModuleErrorBudget
	}
	n.WarningSink = func(w normalizer.Warning) {
		res.Diagnostics = append(res.Diagnostics, w)
		if opts.WarningSink != nil {
			opts.WarningSink(w)
		}
	}

	origin := make(map[string]string, len(paths))
	for _, path := range paths {
		def, err := loadModule(p, n, path)
		if err != nil {
			return res, err
		}
		if prev, dup := origin[def.Name]; dup {
			return res, WrapContractError(StageParse, ErrCodeDuplicateInput, "load "+path,
				fmt.Errorf("module %s is already defined in %s", def.Name, prev))
		}
		origin[def.Name] = path

		if err := ValidateDefinition(def); err != nil {
			return res, WrapContractError(StageIR, ErrCodeIRValidate, "validate "+def.Name, err)
		}
		res.Modules = append(res.Modules, def)
	}

	sort.SliceStable(res.Modules, func(i, j int) bool { return res.Modules[i].Name < res.Modules[j].Name })
	return res, nil
}

func loadModule(p *parser.Parser, n *normalizer.Normalizer, path string) (ir.ModuleDefinition, error) {
	kind, err := parser.Detect(path)
	if err != nil {
		return ir.ModuleDefinition{}, WrapContractError(StageParse, ErrCodeInputDetect, "detect "+path, err)
	}

	if kind == parser.KindYAML {
		data, err := os.ReadFile(path)
		if err != nil {
			return ir.ModuleDefinition{}, WrapContractError(StageParse, ErrCodeYAMLRead, "read "+path, err)
		}
		def, err := n.ExtractModuleYAML(data, path)
		if err != nil {
			return ir.ModuleDefinition{}, WrapContractError(StageParse, ErrCodeYAMLNormalize, "normalize "+path, err)
		}
		return def, nil
	}

	load := p.LoadDomain
	if kind == parser.KindCUEFile {
		load = p.LoadFile
	}
	val, err := load(path)
	if err != nil {
		return ir.ModuleDefinition{}, WrapContractError(
			StageParse, ErrCodeCUELoad, "load "+path, fmt.Errorf("%s", parser.FormatCUELocationError(err)),
		)
	}
	if err := p.ValidateModule(val, normalizer.ModuleField); err != nil {
		return ir.ModuleDefinition{}, WrapContractError(
			StageParse, ErrCodeCUESchema, "validate "+path, fmt.Errorf("%s", parser.FormatCUELocationError(err)),
		)
	}
	def, err := n.ExtractModule(val)
	if err != nil {
		return ir.ModuleDefinition{}, WrapContractError(StageParse, ErrCodeCUENormalize, "normalize "+path, err)
	}
	return def, nil
}

// Augment runs the default transformer registry over every definition and
// returns the augmented copies. The inputs are left untouched.
func Augment(defs []ir.ModuleDefinition) ([]ir.ModuleDefinition, error) {
	registry := transformers.DefaultRegistry()
	out := make([]ir.ModuleDefinition, 0, len(defs))
	for _, def := range defs {
		aug, err := registry.Apply(def)
		if err != nil {
			return nil, WrapContractError(StageTransform, ErrCodeTransformerApply, "augment "+def.Name, err)
		}
		out = append(out, aug)
	}
	return out, nil
}

// OutputFileName is the generated file name for a module.
func OutputFileName(def ir.ModuleDefinition) string {
	if def.Error == nil {
		return "module_gen.go"
	}
	return names.ToSnakeCase(def.Error.Name) + "_gen.go"
}

// OutputPath joins the output directory with the generated file name.
func OutputPath(dir string, def ir.ModuleDefinition) string {
	return filepath.Join(dir, OutputFileName(def))
}
