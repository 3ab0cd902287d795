// Package ir defines the language-agnostic definition model of a module.
// It knows nothing about Go; emitters decide how a definition is rendered.
package ir

import (
	"fmt"
	"strings"
)

const (
	// DefaultModuleType is the module type name used when a definition omits it.
	DefaultModuleType = "Module"
	// DefaultConfigTrait is the configuration contract used when a definition omits it.
	DefaultConfigTrait = "Config"
	// SentinelName is the name of the reserved variant inserted by augmentation.
	SentinelName = "__Ignore"
)

// ModuleDefinition is the root of the IR tree: one module with its generics
// and optional error type.
type ModuleDefinition struct {
	Name        string
	Package     string
	ModuleType  string
	ConfigTrait string
	TypeParams  []TypeParam
	Where       []WherePredicate
	Error       *ErrorSpec
	Source      Span
}

// TypeParam is one generic parameter of the module.
type TypeParam struct {
	Name       string
	Constraint string
}

// WherePredicate adds a bound on a type parameter on top of its constraint.
type WherePredicate struct {
	Param string
	Bound string
}

// ErrorSpec describes the module's error type.
type ErrorSpec struct {
	Name     string
	Docs     []string
	Variants []Variant
	Source   Span

	// Set by augmentation.
	Directives     []Directive
	SkipTypeParams []string
	CaptureDocs    string
}

// Directive requests generation of one capability for the error type.
type Directive string

const (
	DirectiveEncode       Directive = "encode"
	DirectiveDecode       Directive = "decode"
	DirectiveTypeInfo     Directive = "type_info"
	DirectiveCompactError Directive = "compact_error"
)

// Variant is one member of the error union.
type Variant struct {
	Name   string
	Docs   []string
	Shape  FieldShape
	Source Span

	Sentinel  bool
	CodecSkip bool
	Hidden    bool
}

// ShapeKind tells how a variant carries its fields.
type ShapeKind string

const (
	ShapeUnit       ShapeKind = "unit"
	ShapePositional ShapeKind = "positional"
	ShapeNamed      ShapeKind = "named"
)

// FieldShape is the payload layout of a variant.
type FieldShape struct {
	Kind   ShapeKind
	Fields []Field
}

// Field is a variant field. Name is empty for positional fields.
type Field struct {
	Name string
	Type TypeRef
}

// TypeKind is the fundamental kind of a field type.
type TypeKind string

const (
	KindU8    TypeKind = "u8"
	KindU16   TypeKind = "u16"
	KindU32   TypeKind = "u32"
	KindU64   TypeKind = "u64"
	KindI8    TypeKind = "i8"
	KindI16   TypeKind = "i16"
	KindI32   TypeKind = "i32"
	KindI64   TypeKind = "i64"
	KindBool  TypeKind = "bool"
	KindBytes TypeKind = "bytes" // fixed-size byte array of Len bytes

	// Reserved for the sentinel variant.
	KindPhantom TypeKind = "phantom" // marker over the type parameter in Param
	KindNever   TypeKind = "never"   // uninhabited
)

// TypeRef is a language-agnostic field type.
type TypeRef struct {
	Kind  TypeKind
	Len   int
	Param string
}

func (t TypeRef) String() string {
	switch t.Kind {
	case KindBytes:
		return fmt.Sprintf("[%d]u8", t.Len)
	case KindPhantom:
		return "phantom<" + t.Param + ">"
	default:
		return string(t.Kind)
	}
}

// Size returns the encoded size of a value of this type.
func (t TypeRef) Size() (int, bool) {
	switch t.Kind {
	case KindU8, KindI8, KindBool:
		return 1, true
	case KindU16, KindI16:
		return 2, true
	case KindU32, KindI32:
		return 4, true
	case KindU64, KindI64:
		return 8, true
	case KindBytes:
		return t.Len, true
	default:
		return 0, false
	}
}

// Span locates a definition in its source file.
type Span struct {
	File   string
	Line   int
	Column int
}

func (s Span) IsValid() bool { return s.File != "" || s.Line > 0 }

func (s Span) String() string {
	if !s.IsValid() {
		return ""
	}
	if s.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// TypeUseGenerics returns the generic parameter names in declaration order.
func (d ModuleDefinition) TypeUseGenerics() []string {
	out := make([]string, 0, len(d.TypeParams))
	for _, p := range d.TypeParams {
		out = append(out, p.Name)
	}
	return out
}

// Bounds returns the where-clause bounds attached to param.
func (d ModuleDefinition) Bounds(param string) []string {
	var out []string
	for _, w := range d.Where {
		if w.Param == param {
			out = append(out, w.Bound)
		}
	}
	return out
}

// Clone returns a deep copy of the definition.
func (d ModuleDefinition) Clone() ModuleDefinition {
	out := d
	out.TypeParams = append([]TypeParam(nil), d.TypeParams...)
	out.Where = append([]WherePredicate(nil), d.Where...)
	if d.Error != nil {
		e := d.Error.Clone()
		out.Error = &e
	}
	return out
}

// Clone returns a deep copy of the error spec.
func (e ErrorSpec) Clone() ErrorSpec {
	out := e
	out.Docs = append([]string(nil), e.Docs...)
	out.Directives = append([]Directive(nil), e.Directives...)
	out.SkipTypeParams = append([]string(nil), e.SkipTypeParams...)
	out.Variants = make([]Variant, len(e.Variants))
	for i, v := range e.Variants {
		out.Variants[i] = v.Clone()
	}
	return out
}

// Clone returns a deep copy of the variant.
func (v Variant) Clone() Variant {
	out := v
	out.Docs = append([]string(nil), v.Docs...)
	out.Shape.Fields = append([]Field(nil), v.Shape.Fields...)
	return out
}

// Augmented reports whether the sentinel is already in place.
func (e ErrorSpec) Augmented() bool {
	return len(e.Variants) > 0 && e.Variants[0].Sentinel
}

// HasDirective reports whether d was requested for the error type.
func (e ErrorSpec) HasDirective(d Directive) bool {
	for _, have := range e.Directives {
		if have == d {
			return true
		}
	}
	return false
}

// Declared returns the variants that are not the sentinel, in declaration order.
func (e ErrorSpec) Declared() []Variant {
	out := make([]Variant, 0, len(e.Variants))
	for _, v := range e.Variants {
		if !v.Sentinel {
			out = append(out, v)
		}
	}
	return out
}

// Sentinel returns the reserved variant, if augmentation inserted one.
func (e ErrorSpec) Sentinel() (Variant, bool) {
	if e.Augmented() {
		return e.Variants[0], true
	}
	return Variant{}, false
}

// WireIndex returns the codec index of the named variant. Codec-skipped
// variants take no index, so the first declared variant encodes as 0.
func (e ErrorSpec) WireIndex(name string) (int, bool) {
	idx := 0
	for _, v := range e.Variants {
		if v.CodecSkip {
			if v.Name == name {
				return 0, false
			}
			continue
		}
		if v.Name == name {
			return idx, true
		}
		idx++
	}
	return 0, false
}

// MaxEncodedSize estimates the largest encoding of the error type: one index
// byte plus the largest variant payload. The second result is false when a
// field has no fixed size.
func (e ErrorSpec) MaxEncodedSize() (int, bool) {
	longest := 0
	encodable := false
	for _, v := range e.Variants {
		if v.CodecSkip {
			continue
		}
		encodable = true
		n := 0
		for _, f := range v.Shape.Fields {
			size, ok := f.Type.Size()
			if !ok {
				return 0, false
			}
			n += size
		}
		if n > longest {
			longest = n
		}
	}
	if !encodable {
		return 0, true
	}
	return 1 + longest, true
}

// DocText joins documentation lines into one paragraph.
func DocText(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
