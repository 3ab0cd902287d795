package normalizer

import (
	"fmt"
	"strings"
	"unicode"

	"cuelang.org/go/cue"

	"github.com/strogmv/moderr/compiler/ir"
)

// ModuleField is the top-level CUE field holding a module definition.
const ModuleField = "module"

// ExtractModule reads the module definition found under the `module` field
// of a CUE instance.
func (n *Normalizer) ExtractModule(val cue.Value) (ir.ModuleDefinition, error) {
	modVal := val.LookupPath(cue.ParsePath(ModuleField))
	if !modVal.Exists() {
		return ir.ModuleDefinition{}, fmt.Errorf("no %q field found", ModuleField)
	}

	var raw rawModule
	if err := modVal.Decode(&raw); err != nil {
		return ir.ModuleDefinition{}, fmt.Errorf("decode module: %w", err)
	}
	raw.span = spanOf(modVal)

	if raw.Error != nil {
		errVal := modVal.LookupPath(cue.ParsePath("error"))
		raw.Error.span = spanOf(errVal)
		if len(raw.Error.Docs) == 0 {
			raw.Error.Docs = docLines(errVal)
		}

		iter, err := errVal.LookupPath(cue.ParsePath("variants")).List()
		if err != nil {
			return ir.ModuleDefinition{}, fmt.Errorf("error variants: %w", err)
		}
		for i := 0; iter.Next() && i < len(raw.Error.Variants); i++ {
			v := iter.Value()
			raw.Error.Variants[i].span = spanOf(v)
			if len(raw.Error.Variants[i].Docs) == 0 {
				raw.Error.Variants[i].Docs = docLines(v)
			}
		}
	}

	return n.build(raw)
}

func (n *Normalizer) build(raw rawModule) (ir.ModuleDefinition, error) {
	name := strings.TrimSpace(raw.Name)
	def := ir.ModuleDefinition{
		Name:        name,
		Package:     orDefault(raw.Package, packageName(name)),
		ModuleType:  orDefault(raw.ModuleType, ir.DefaultModuleType),
		ConfigTrait: orDefault(raw.Config, ir.DefaultConfigTrait),
		Source:      raw.span,
	}

	for _, g := range raw.Generics {
		def.TypeParams = append(def.TypeParams, ir.TypeParam{
			Name:       strings.TrimSpace(g.Name),
			Constraint: orDefault(g.Constraint, def.ConfigTrait),
		})
	}
	for _, w := range raw.Where {
		def.Where = append(def.Where, ir.WherePredicate{
			Param: strings.TrimSpace(w.Param),
			Bound: strings.TrimSpace(w.Bound),
		})
	}

	if raw.Error != nil {
		spec, err := n.buildError(name, *raw.Error)
		if err != nil {
			return ir.ModuleDefinition{}, err
		}
		def.Error = &spec
	}
	return def, nil
}

func (n *Normalizer) buildError(module string, raw rawError) (ir.ErrorSpec, error) {
	spec := ir.ErrorSpec{
		Name:   orDefault(raw.Name, "Error"),
		Docs:   cleanDocs(raw.Docs),
		Source: raw.span,
	}
	for _, rv := range raw.Variants {
		v, err := buildVariant(rv)
		if err != nil {
			err = fmt.Errorf("module %s error %s: %w", module, spec.Name, err)
			if rv.span.IsValid() {
				err = fmt.Errorf("%s: %w", rv.span, err)
			}
			return ir.ErrorSpec{}, err
		}
		spec.Variants = append(spec.Variants, v)
	}

	n.checkSize(module, spec)
	if len(spec.Docs) == 0 {
		n.Warn(Warning{
			Kind:     "docs",
			Code:     WarnUndocumentedType,
			Severity: "info",
			Module:   module,
			Message:  fmt.Sprintf("error type %s has no documentation, the default description is used", spec.Name),
			File:     spec.Source.File,
			Line:     spec.Source.Line,
		})
	}
	if len(spec.Variants) == 0 {
		n.Warn(Warning{
			Kind:     "error_type",
			Code:     WarnEmptyErrorType,
			Severity: "info",
			Module:   module,
			Message:  fmt.Sprintf("error type %s declares no variants", spec.Name),
			File:     spec.Source.File,
			Line:     spec.Source.Line,
		})
	}
	return spec, nil
}

func buildVariant(rv rawVariant) (ir.Variant, error) {
	name := strings.TrimSpace(rv.Name)
	v := ir.Variant{
		Name:   name,
		Docs:   cleanDocs(rv.Docs),
		Shape:  ir.FieldShape{Kind: ir.ShapeUnit},
		Source: rv.span,
	}
	if len(rv.Fields) > 0 && len(rv.Named) > 0 {
		return ir.Variant{}, fmt.Errorf("variant %s declares both positional and named fields", name)
	}
	if len(rv.Fields) > 0 {
		v.Shape.Kind = ir.ShapePositional
		for i, raw := range rv.Fields {
			t, err := ParseTypeRef(raw)
			if err != nil {
				return ir.Variant{}, fmt.Errorf("variant %s field %d: %w", name, i, err)
			}
			v.Shape.Fields = append(v.Shape.Fields, ir.Field{Type: t})
		}
	}
	if len(rv.Named) > 0 {
		v.Shape.Kind = ir.ShapeNamed
		for _, f := range rv.Named {
			t, err := ParseTypeRef(f.Type)
			if err != nil {
				return ir.Variant{}, fmt.Errorf("variant %s field %s: %w", name, f.Name, err)
			}
			v.Shape.Fields = append(v.Shape.Fields, ir.Field{Name: strings.TrimSpace(f.Name), Type: t})
		}
	}
	return v, nil
}

// checkSize warns when the declared shapes cannot fit the module error
// budget. The compactness self-test is what enforces it.
func (n *Normalizer) checkSize(module string, spec ir.ErrorSpec) {
	size, ok := spec.MaxEncodedSize()
	if !ok {
		n.Warn(Warning{
			Kind:     "compactness",
			Code:     WarnErrorNotSized,
			Severity: "warn",
			Module:   module,
			Message:  fmt.Sprintf("error type %s has a field without a fixed size", spec.Name),
			File:     spec.Source.File,
			Line:     spec.Source.Line,
		})
		return
	}
	if n.ModuleErrorBudget > 0 && size > n.ModuleErrorBudget {
		n.Warn(Warning{
			Kind:     "compactness",
			Code:     WarnErrorOverBudget,
			Severity: "warn",
			Module:   module,
			Message:  fmt.Sprintf("error type %s encodes up to %d bytes, budget is %d", spec.Name, size, n.ModuleErrorBudget),
			File:     spec.Source.File,
			Line:     spec.Source.Line,
			Hint:     "the generated compactness self-test will fail; shrink the largest variant payload",
		})
	}
}

// packageName derives a Go package name from a module name.
func packageName(module string) string {
	var b strings.Builder
	for _, r := range module {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
