package normalizer

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/strogmv/moderr/compiler/ir"
)

// UnmarshalYAML records where the module starts.
func (m *rawModule) UnmarshalYAML(node *yaml.Node) error {
	type plain rawModule
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*m = rawModule(p)
	m.span = ir.Span{Line: node.Line, Column: node.Column}
	return nil
}

// UnmarshalYAML records where the error type starts.
func (e *rawError) UnmarshalYAML(node *yaml.Node) error {
	type plain rawError
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = rawError(p)
	e.span = ir.Span{Line: node.Line, Column: node.Column}
	return nil
}

// UnmarshalYAML records where the variant starts. A bare scalar is accepted
// as a unit variant.
func (v *rawVariant) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*v = rawVariant{Name: node.Value}
	} else {
		type plain rawVariant
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*v = rawVariant(p)
	}
	v.span = ir.Span{Line: node.Line, Column: node.Column}
	return nil
}

// ExtractModuleYAML reads the module definition found under the `module` key
// of a YAML document. file is only used for source spans.
func (n *Normalizer) ExtractModuleYAML(data []byte, file string) (ir.ModuleDefinition, error) {
	var doc struct {
		Module *rawModule `yaml:"module"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ir.ModuleDefinition{}, fmt.Errorf("decode yaml module: %w", err)
	}
	if doc.Module == nil {
		return ir.ModuleDefinition{}, fmt.Errorf("no %q key found", ModuleField)
	}
	raw := *doc.Module

	file = relPath(file)
	raw.span.File = file
	if raw.Error != nil {
		raw.Error.span.File = file
		for i := range raw.Error.Variants {
			raw.Error.Variants[i].span.File = file
		}
	}
	return n.build(raw)
}
