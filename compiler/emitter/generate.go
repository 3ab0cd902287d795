package emitter

import (
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/generator"
	"github.com/strogmv/moderr/compiler/ir"
)

// fileView is the context of file.tmpl.
type fileView struct {
	View      moduleView
	Fragments []string
}

// Emit renders one augmented module definition into a formatted Go file.
func (e *Emitter) Emit(def ir.ModuleDefinition) (File, error) {
	caps := compiler.ResolveCapabilities(def)
	view, err := e.buildView(def, caps)
	if err != nil {
		return File{}, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterStep, "prepare "+def.Name, err)
	}

	var fragments []string
	fragment := func(tmpl string) func() error {
		return func() error {
			out, err := e.render(tmpl, view)
			if err != nil {
				return err
			}
			fragments = append(fragments, out)
			return nil
		}
	}

	reg := generator.NewStepRegistry()
	reg.Register(generator.Step{
		Name:        "Error enum",
		ArtifactKey: "go:error_enum",
		Requires:    []compiler.Capability{compiler.CapabilityErrorType},
		Run:         fragment("error_enum"),
	})
	reg.Register(generator.Step{
		Name:        "Descriptor",
		ArtifactKey: "go:descriptor",
		Requires:    []compiler.Capability{compiler.CapabilityErrorType},
		Run: func() error {
			out, err := renderAsStrDecl(view, DescriptorArms(*def.Error))
			if err != nil {
				return err
			}
			fragments = append(fragments, out)
			return nil
		},
	})
	reg.Register(generator.Step{
		Name:        "Encoder",
		ArtifactKey: "go:encode",
		Requires:    []compiler.Capability{compiler.CapabilityErrorType, compiler.CapabilityEncode},
		Run:         fragment("error_encode"),
	})
	reg.Register(generator.Step{
		Name:        "Decoder",
		ArtifactKey: "go:decode",
		Requires:    []compiler.Capability{compiler.CapabilityErrorType, compiler.CapabilityDecode},
		Run:         fragment("error_decode"),
	})
	reg.Register(generator.Step{
		Name:        "Type info",
		ArtifactKey: "go:type_info",
		Requires:    []compiler.Capability{compiler.CapabilityErrorType, compiler.CapabilityTypeInfo},
		Run:         fragment("type_info"),
	})
	reg.Register(generator.Step{
		Name:        "Compactness self-test",
		ArtifactKey: "go:compactness",
		Run:         fragment("compactness"),
	})
	reg.Register(generator.Step{
		Name:        "Module error envelope",
		ArtifactKey: "go:envelope",
		Requires:    []compiler.Capability{compiler.CapabilityErrorType, compiler.CapabilityEncode},
		Run:         fragment("envelope"),
	})
	if err := reg.Err(); err != nil {
		return File{}, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterStep, "register steps", err)
	}

	if err := generator.Execute(def.Name, caps, reg.Steps(), e.logger); err != nil {
		return File{}, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterStep, "generate "+def.Name, err)
	}

	src, err := e.render("file.tmpl", fileView{View: view, Fragments: fragments})
	if err != nil {
		return File{}, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterStep, "assemble "+def.Name, err)
	}

	path := compiler.OutputPath(e.opts.OutputDir, def)
	formatted, err := formatGoStrict([]byte(src), filepath.Base(path))
	if err != nil {
		return File{}, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterFormat, "format "+def.Name, err)
	}
	return File{Module: def.Name, Path: path, Content: formatted}, nil
}

// Generate emits every definition. Modules are rendered concurrently; the
// result keeps the input order. Two modules rendering to the same file are
// rejected.
func (e *Emitter) Generate(defs []ir.ModuleDefinition) ([]File, error) {
	files := make([]File, len(defs))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, def := range defs {
		g.Go(func() error {
			f, err := e.Emit(def)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	owners := make(map[string]string, len(files))
	for _, f := range files {
		if prev, dup := owners[f.Path]; dup {
			return nil, compiler.WrapContractError(compiler.StageEmit, compiler.ErrCodeEmitterOptions, "generate "+f.Module,
				fmt.Errorf("modules %s and %s both generate %s; use separate output directories", prev, f.Module, f.Path))
		}
		owners[f.Path] = f.Module
	}
	return files, nil
}
