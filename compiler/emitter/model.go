package emitter

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/ir"
	"github.com/strogmv/moderr/compiler/pkg/names"
)

// moduleView is the template context for one generated file.
type moduleView struct {
	Version    string
	Source     string
	Package    string
	Dispatch   string
	Module     string
	ModuleType string

	// TypeParams is the declaration list, e.g. "[T Config, I any]"; TypeArgs
	// the instantiation, e.g. "[T, I]". Both are empty for a non-generic module.
	TypeParams string
	TypeArgs   string
	// MarkerParams is the parameter list of the sealing method.
	MarkerParams string

	params []typeParamView
	Error  *errorView

	// Compact is set when the compactness self-test checks the error type.
	Compact bool
}

type typeParamView struct {
	Name       string
	Constraint string
}

type errorView struct {
	Name     string
	Docs     []string
	Marker   string
	Encode   bool
	Decode   bool
	Variants []variantView
	Sentinel sentinelView

	AsStr           string
	TypeInfo        string
	DecodeFunc      string
	IntoModuleError string
	Path            string
}

type variantView struct {
	Name   string
	GoName string
	Docs   []string
	Index  uint8
	Shape  ir.ShapeKind
	Fields []fieldView
}

func (v variantView) Unit() bool { return len(v.Fields) == 0 }

type sentinelView struct {
	Name    string
	GoName  string
	Phantom []string
	Panic   string
}

type fieldView struct {
	// Name is the declared name, empty for positional fields.
	Name      string
	GoName    string
	GoType    string
	Primitive string
	Len       int
	Encode    string
	Decode    string
}

var goTypes = map[ir.TypeKind]string{
	ir.KindU8: "uint8", ir.KindU16: "uint16", ir.KindU32: "uint32", ir.KindU64: "uint64",
	ir.KindI8: "int8", ir.KindI16: "int16", ir.KindI32: "int32", ir.KindI64: "int64",
	ir.KindBool: "bool",
}

// codecSuffix names the dispatch Writer/Reader method and Primitive constant
// for a kind.
var codecSuffix = map[ir.TypeKind]string{
	ir.KindU8: "U8", ir.KindU16: "U16", ir.KindU32: "U32", ir.KindU64: "U64",
	ir.KindI8: "I8", ir.KindI16: "I16", ir.KindI32: "I32", ir.KindI64: "I64",
	ir.KindBool: "Bool",
}

func (e *Emitter) buildView(def ir.ModuleDefinition, caps compiler.CapabilitySet) (moduleView, error) {
	view := moduleView{
		Version:    e.opts.Version,
		Source:     def.Source.File,
		Package:    def.Package,
		Dispatch:   e.opts.DispatchImport,
		Module:     def.Name,
		ModuleType: def.ModuleType,
	}
	if e.opts.Package != "" {
		view.Package = e.opts.Package
	}

	var decl, args, markers []string
	for _, p := range def.TypeParams {
		constraint := p.Constraint
		if bounds := def.Bounds(p.Name); len(bounds) > 0 {
			constraint = "interface{ " + strings.Join(append([]string{constraint}, bounds...), "; ") + " }"
		}
		view.params = append(view.params, typeParamView{Name: p.Name, Constraint: constraint})
		decl = append(decl, p.Name+" "+constraint)
		args = append(args, p.Name)
		markers = append(markers, "dispatch.Phantom["+p.Name+"]")
	}
	if len(decl) > 0 {
		view.TypeParams = "[" + strings.Join(decl, ", ") + "]"
		view.TypeArgs = "[" + strings.Join(args, ", ") + "]"
	}
	view.MarkerParams = strings.Join(markers, ", ")

	if def.Error == nil {
		return view, nil
	}
	if !def.Error.Augmented() {
		return moduleView{}, fmt.Errorf("module %s: error type %s has not been augmented", def.Name, def.Error.Name)
	}

	ev, err := buildErrorView(def, caps)
	if err != nil {
		return moduleView{}, err
	}
	ev.Path = view.Package + "." + ev.Name
	view.Error = ev
	view.Compact = caps.HasAll(compiler.CapabilityCompactError, compiler.CapabilityTypeInfo)
	return view, nil
}

func buildErrorView(def ir.ModuleDefinition, caps compiler.CapabilitySet) (*errorView, error) {
	spec := def.Error
	name := spec.Name
	ev := &errorView{
		Name:            name,
		Docs:            spec.Docs,
		Marker:          "is" + name,
		Encode:          caps.Has(compiler.CapabilityEncode),
		Decode:          caps.Has(compiler.CapabilityDecode),
		AsStr:           name + "AsStr",
		TypeInfo:        name + "TypeInfo",
		DecodeFunc:      "Decode" + name,
		IntoModuleError: name + "IntoModuleError",
	}

	sentinel, _ := spec.Sentinel()
	ev.Sentinel = sentinelView{
		Name:    sentinel.Name,
		GoName:  names.UnexportName(name) + "Ignore",
		Phantom: def.TypeUseGenerics(),
		Panic:   fmt.Sprintf("unreachable: %s.%s can never be constructed", name, sentinel.Name),
	}

	goNames := map[string]string{ev.Sentinel.GoName: sentinel.Name}
	for _, v := range spec.Declared() {
		wire, ok := spec.WireIndex(v.Name)
		if !ok {
			continue
		}
		idx, err := safecast.Conv[uint8](wire)
		if err != nil {
			return nil, fmt.Errorf("error type %s: variant %s index %d does not fit one byte: %w", name, v.Name, wire, err)
		}

		vv := variantView{
			Name:   v.Name,
			GoName: name + v.Name,
			Docs:   v.Docs,
			Index:  idx,
			Shape:  v.Shape.Kind,
		}
		if prev, dup := goNames[vv.GoName]; dup {
			return nil, fmt.Errorf("error type %s: variant %s and %s both render as %s", name, prev, v.Name, vv.GoName)
		}
		goNames[vv.GoName] = v.Name

		fieldNames := map[string]bool{}
		for i, f := range v.Shape.Fields {
			fv, err := buildFieldView(i, f)
			if err != nil {
				return nil, fmt.Errorf("error type %s variant %s: %w", name, v.Name, err)
			}
			if fieldNames[fv.GoName] {
				return nil, fmt.Errorf("error type %s variant %s: two fields render as %s", name, v.Name, fv.GoName)
			}
			fieldNames[fv.GoName] = true
			vv.Fields = append(vv.Fields, fv)
		}
		ev.Variants = append(ev.Variants, vv)
	}
	return ev, nil
}

func buildFieldView(pos int, f ir.Field) (fieldView, error) {
	fv := fieldView{Name: f.Name, GoName: fmt.Sprintf("F%d", pos)}
	if f.Name != "" {
		fv.GoName = names.ExportName(f.Name)
	}

	switch f.Type.Kind {
	case ir.KindBytes:
		fv.GoType = fmt.Sprintf("[%d]byte", f.Type.Len)
		fv.Primitive = "Bytes"
		fv.Len = f.Type.Len
		fv.Encode = fmt.Sprintf("w.PutFixed(e.%s[:])", fv.GoName)
		fv.Decode = fmt.Sprintf("err = r.Fixed(v.%s[:])", fv.GoName)
	default:
		goType, ok := goTypes[f.Type.Kind]
		if !ok {
			return fieldView{}, fmt.Errorf("field %s has unsupported type %s", fv.GoName, f.Type)
		}
		suffix := codecSuffix[f.Type.Kind]
		fv.GoType = goType
		fv.Primitive = suffix
		fv.Encode = fmt.Sprintf("w.Put%s(e.%s)", suffix, fv.GoName)
		fv.Decode = fmt.Sprintf("v.%s, err = r.%s()", fv.GoName, suffix)
	}
	return fv, nil
}
