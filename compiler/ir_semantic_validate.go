package compiler

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/strogmv/moderr/compiler/ir"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedVariantNames collide with declarations the emitters derive from
// the error type name.
var reservedVariantNames = map[string]bool{
	"AsStr":           true,
	"TypeInfo":        true,
	"IntoModuleError": true,
}

// ValidateDefinition performs fail-fast semantic validation on a module
// definition before augmentation and emitters run.
func ValidateDefinition(def ir.ModuleDefinition) error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	if !identRE.MatchString(def.Name) {
		add("module name %q is not a valid identifier", def.Name)
	}
	if !identRE.MatchString(def.ModuleType) {
		add("module %s: module type %q is not a valid identifier", def.Name, def.ModuleType)
	}
	if !identRE.MatchString(def.Package) || strings.ToLower(def.Package) != def.Package {
		add("module %s: package %q is not a valid Go package name", def.Name, def.Package)
	}

	// 1) Generics.
	params := make(map[string]bool, len(def.TypeParams))
	for _, p := range def.TypeParams {
		if !identRE.MatchString(p.Name) {
			add("module %s: type parameter %q is not a valid identifier", def.Name, p.Name)
			continue
		}
		if params[p.Name] {
			add("module %s: duplicate type parameter %s", def.Name, p.Name)
		}
		params[p.Name] = true
		if strings.TrimSpace(p.Constraint) == "" {
			add("module %s: type parameter %s has no constraint", def.Name, p.Name)
		}
	}
	for _, w := range def.Where {
		if !params[w.Param] {
			add("module %s: where clause references unknown type parameter %q", def.Name, w.Param)
		}
		if strings.TrimSpace(w.Bound) == "" {
			add("module %s: where clause on %s has no bound", def.Name, w.Param)
		}
	}

	// 2) Error type.
	if def.Error != nil {
		validateErrorSpec(add, def)
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Strings(errs)
	return fmt.Errorf("validation failed:\n - %s", strings.Join(errs, "\n - "))
}

func validateErrorSpec(add func(string, ...any), def ir.ModuleDefinition) {
	spec := def.Error
	where := fmt.Sprintf("module %s error %s", def.Name, spec.Name)

	if !identRE.MatchString(spec.Name) {
		add("module %s: error type name %q is not a valid identifier", def.Name, spec.Name)
	}
	if spec.Name == def.ModuleType {
		add("%s: error type and module type share the name %s", where, spec.Name)
	}

	seen := make(map[string]bool, len(spec.Variants))
	for i, v := range spec.Variants {
		if v.Sentinel {
			if i != 0 {
				add("%s: sentinel variant must be at index 0, found at %d", where, i)
			}
			continue
		}
		at := fmt.Sprintf("%s variant %s", where, v.Name)
		if v.Source.IsValid() {
			at = v.Source.String() + ": " + at
		}

		switch {
		case !identRE.MatchString(v.Name):
			add("%s: not a valid identifier", at)
		case v.Name == ir.SentinelName || strings.HasPrefix(v.Name, "__"):
			add("%s: names starting with __ are reserved", at)
		case reservedVariantNames[v.Name]:
			add("%s: name is reserved for generated declarations", at)
		}
		if seen[v.Name] {
			add("%s: duplicate variant name", at)
		}
		seen[v.Name] = true

		validateShape(add, at, v.Shape)
	}
}

func validateShape(add func(string, ...any), at string, shape ir.FieldShape) {
	switch shape.Kind {
	case ir.ShapeUnit:
		if len(shape.Fields) > 0 {
			add("%s: unit variant carries fields", at)
		}
		return
	case ir.ShapePositional, ir.ShapeNamed:
		if len(shape.Fields) == 0 {
			add("%s: %s variant has no fields", at, shape.Kind)
		}
	default:
		add("%s: unknown shape %q", at, shape.Kind)
		return
	}

	names := make(map[string]bool, len(shape.Fields))
	for i, f := range shape.Fields {
		label := fmt.Sprintf("field %d", i)
		if shape.Kind == ir.ShapeNamed {
			label = "field " + f.Name
			if !identRE.MatchString(f.Name) {
				add("%s: field name %q is not a valid identifier", at, f.Name)
			}
			key := strings.ToLower(f.Name)
			if names[key] {
				add("%s: duplicate field %s", at, f.Name)
			}
			names[key] = true
		} else if f.Name != "" {
			add("%s: positional field %d is named %q", at, i, f.Name)
		}

		switch f.Type.Kind {
		case ir.KindPhantom, ir.KindNever:
			add("%s %s: type %s is reserved for the sentinel variant", at, label, f.Type.Kind)
		case ir.KindBytes:
			if f.Type.Len <= 0 {
				add("%s %s: byte array needs a positive length", at, label)
			}
		default:
			if _, ok := f.Type.Size(); !ok {
				add("%s %s: unsupported type %q", at, label, f.Type.Kind)
			}
		}
	}
}
