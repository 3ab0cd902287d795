package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/ir"
)

type inspectModule struct {
	Name         string        `yaml:"name"`
	Package      string        `yaml:"package"`
	ModuleType   string        `yaml:"module_type"`
	TypeParams   []string      `yaml:"type_params,omitempty"`
	Capabilities []string      `yaml:"capabilities,omitempty"`
	Output       string        `yaml:"output"`
	Error        *inspectError `yaml:"error,omitempty"`
}

type inspectError struct {
	Name           string           `yaml:"name"`
	Doc            string           `yaml:"doc"`
	Directives     []string         `yaml:"directives"`
	SkipTypeParams []string         `yaml:"skip_type_params,omitempty"`
	CaptureDocs    string           `yaml:"capture_docs,omitempty"`
	MaxEncodedSize int              `yaml:"max_encoded_size"`
	Variants       []inspectVariant `yaml:"variants"`
}

type inspectVariant struct {
	Name string `yaml:"name"`
	// Index is nil for the codec-skipped sentinel.
	Index  *int     `yaml:"index"`
	Shape  string   `yaml:"shape"`
	Fields []string `yaml:"fields,omitempty"`
	Hidden bool     `yaml:"hidden,omitempty"`
}

func newInspectCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <path>...",
		Short: "Print module definitions after augmentation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := compiler.LoadModulesWithOptions(compiler.PipelineOptions{ModuleErrorBudget: c.cfg.ErrorBudget}, args...)
			if err != nil {
				c.fail(formatFailure("Inspect FAILED", err))
				return err
			}
			augmented, err := compiler.Augment(res.Modules)
			if err != nil {
				c.fail(formatFailure("Inspect FAILED", err))
				return err
			}

			report := make([]inspectModule, 0, len(augmented))
			for _, def := range augmented {
				report = append(report, inspectReport(def, c.cfg.OutputDir))
			}
			enc := yaml.NewEncoder(c.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(report); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func inspectReport(def ir.ModuleDefinition, outDir string) inspectModule {
	m := inspectModule{
		Name:         def.Name,
		Package:      def.Package,
		ModuleType:   def.ModuleType,
		Capabilities: compiler.ResolveCapabilities(def).StringSlice(),
		Output:       compiler.OutputPath(outDir, def),
	}
	for _, p := range def.TypeParams {
		m.TypeParams = append(m.TypeParams, p.Name+" "+p.Constraint)
	}
	if def.Error == nil {
		return m
	}

	spec := def.Error
	e := &inspectError{
		Name:           spec.Name,
		Doc:            ir.DocText(spec.Docs),
		SkipTypeParams: spec.SkipTypeParams,
		CaptureDocs:    spec.CaptureDocs,
	}
	for _, d := range spec.Directives {
		e.Directives = append(e.Directives, string(d))
	}
	if size, ok := spec.MaxEncodedSize(); ok {
		e.MaxEncodedSize = size
	}
	for _, v := range spec.Variants {
		iv := inspectVariant{Name: v.Name, Shape: string(v.Shape.Kind), Hidden: v.Hidden}
		if idx, ok := spec.WireIndex(v.Name); ok {
			iv.Index = &idx
		}
		for _, f := range v.Shape.Fields {
			if f.Name != "" {
				iv.Fields = append(iv.Fields, f.Name+": "+f.Type.String())
				continue
			}
			iv.Fields = append(iv.Fields, f.Type.String())
		}
		e.Variants = append(e.Variants, iv)
	}
	m.Error = e
	return m
}
