package transformers

import (
	"github.com/strogmv/moderr/compiler/ir"
)

// DefaultErrorDoc documents error types declared without documentation.
const DefaultErrorDoc = "Custom dispatch errors of this module."

// CaptureDocsAlways keeps documentation in the type descriptor regardless of
// build settings.
const CaptureDocsAlways = "always"

// ErrorDirectives are attached to every augmented error type.
var ErrorDirectives = []ir.Directive{
	ir.DirectiveEncode,
	ir.DirectiveDecode,
	ir.DirectiveTypeInfo,
	ir.DirectiveCompactError,
}

// ErrorEnumAugmenter prepares a module's error type for code generation.
//
// It inserts the reserved sentinel variant at index 0, requests codec, type
// descriptor and compactness generation, skips the module's type parameters
// in the descriptor and attaches a default description when the type has
// none. Modules without an error type pass through unchanged.
type ErrorEnumAugmenter struct {
	// Doc replaces DefaultErrorDoc when set.
	Doc string
}

func (t *ErrorEnumAugmenter) Name() string { return "error_enum" }

func (t *ErrorEnumAugmenter) Transform(def ir.ModuleDefinition) (ir.ModuleDefinition, error) {
	if def.Error == nil || def.Error.Augmented() {
		return def, nil
	}

	out := def.Clone()
	spec := out.Error
	generics := def.TypeUseGenerics()

	variants := make([]ir.Variant, 0, len(spec.Variants)+1)
	variants = append(variants, sentinelVariant(generics, spec.Source))
	spec.Variants = append(variants, spec.Variants...)

	for _, d := range ErrorDirectives {
		if !spec.HasDirective(d) {
			spec.Directives = append(spec.Directives, d)
		}
	}
	spec.SkipTypeParams = generics
	spec.CaptureDocs = CaptureDocsAlways

	if len(spec.Docs) == 0 {
		doc := t.Doc
		if doc == "" {
			doc = DefaultErrorDoc
		}
		spec.Docs = []string{doc}
	}
	return out, nil
}

// sentinelVariant carries a phantom marker for every type parameter and a
// never field marking it as not to be constructed.
func sentinelVariant(generics []string, src ir.Span) ir.Variant {
	fields := make([]ir.Field, 0, len(generics)+1)
	for _, g := range generics {
		fields = append(fields, ir.Field{Type: ir.TypeRef{Kind: ir.KindPhantom, Param: g}})
	}
	fields = append(fields, ir.Field{Type: ir.TypeRef{Kind: ir.KindNever}})

	return ir.Variant{
		Name:      ir.SentinelName,
		Shape:     ir.FieldShape{Kind: ir.ShapePositional, Fields: fields},
		Source:    src,
		Sentinel:  true,
		CodecSkip: true,
		Hidden:    true,
	}
}
