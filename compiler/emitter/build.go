package emitter

import (
	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/ir"
	"github.com/strogmv/moderr/compiler/normalizer"
)

// BuildOptions configures a full run from definition files to Go files.
type BuildOptions struct {
	Emitter  Options
	Pipeline compiler.PipelineOptions
	// DryRun renders and formats files without writing them.
	DryRun bool
}

// BuildResult is what a run produced.
type BuildResult struct {
	// Modules holds the augmented definitions.
	Modules     []ir.ModuleDefinition
	Files       []File
	Diagnostics []normalizer.Warning
}

// Build loads, augments and emits every module found in paths.
func Build(paths []string, opts BuildOptions) (BuildResult, error) {
	var res BuildResult

	loaded, err := compiler.LoadModulesWithOptions(opts.Pipeline, paths...)
	res.Diagnostics = loaded.Diagnostics
	if err != nil {
		return res, err
	}

	augmented, err := compiler.Augment(loaded.Modules)
	if err != nil {
		return res, err
	}
	res.Modules = augmented

	em, err := New(opts.Emitter)
	if err != nil {
		return res, err
	}
	files, err := em.Generate(augmented)
	if err != nil {
		return res, err
	}
	res.Files = files

	if opts.DryRun {
		return res, nil
	}
	return res, em.Write(files)
}
