package emitter

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/strogmv/moderr/compiler"
	"github.com/strogmv/moderr/compiler/ir"
	"github.com/strogmv/moderr/compiler/normalizer"
	"github.com/strogmv/moderr/compiler/transformers"
)

func balancesModule() ir.ModuleDefinition {
	return ir.ModuleDefinition{
		Name:        "Balances",
		Package:     "balances",
		ModuleType:  "Pallet",
		ConfigTrait: "Config",
		TypeParams:  []ir.TypeParam{{Name: "T", Constraint: "Config"}},
		Where:       []ir.WherePredicate{{Param: "T", Bound: "HasDeposit"}},
		Source:      ir.Span{File: "balances.cue", Line: 3},
		Error: &ir.ErrorSpec{
			Name: "Error",
			Variants: []ir.Variant{
				{Name: "InsufficientBalance", Docs: []string{"Account balance too low."}, Shape: ir.FieldShape{Kind: ir.ShapeUnit}},
				{Name: "Overflow", Shape: ir.FieldShape{Kind: ir.ShapePositional, Fields: []ir.Field{{Type: ir.TypeRef{Kind: ir.KindU8}}}}},
				{Name: "BadOrigin", Shape: ir.FieldShape{Kind: ir.ShapeNamed, Fields: []ir.Field{{Name: "who", Type: ir.TypeRef{Kind: ir.KindBytes, Len: 2}}}}},
			},
		},
	}
}

func augment(t *testing.T, def ir.ModuleDefinition) ir.ModuleDefinition {
	t.Helper()
	out, err := transformers.DefaultRegistry().Apply(def)
	if err != nil {
		t.Fatalf("augment: %v", err)
	}
	return out
}

func newTestEmitter(t *testing.T, opts Options) *Emitter {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	em, err := New(opts)
	if err != nil {
		t.Fatalf("new emitter: %v", err)
	}
	return em
}

func parseGenerated(t *testing.T, f File) *ast.File {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), f.Path, f.Content, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, f.Content)
	}
	return file
}

// declarations lists top-level names; methods are keyed Receiver.Method.
func declarations(file *ast.File) map[string]ast.Decl {
	out := map[string]ast.Decl{}
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					out[ts.Name.Name] = d
				}
			}
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil && len(d.Recv.List) == 1 {
				name = receiverName(d.Recv.List[0].Type) + "." + name
			}
			out[name] = d
		}
	}
	return out
}

func receiverName(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.IndexExpr:
		return receiverName(x.X)
	case *ast.IndexListExpr:
		return receiverName(x.X)
	case *ast.StarExpr:
		return receiverName(x.X)
	}
	return ""
}

func TestEmit_ErrorModule(t *testing.T) {
	em := newTestEmitter(t, Options{OutputDir: "out"})
	f, err := em.Emit(augment(t, balancesModule()))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if f.Path != filepath.Join("out", "error_gen.go") || f.Module != "Balances" {
		t.Fatalf("unexpected file %s for %s", f.Path, f.Module)
	}

	file := parseGenerated(t, f)
	if file.Name.Name != "balances" {
		t.Fatalf("unexpected package %s", file.Name.Name)
	}
	decls := declarations(file)
	for _, name := range []string{
		"Error", "ErrorInsufficientBalance", "ErrorOverflow", "ErrorBadOrigin", "errorIgnore",
		"ErrorAsStr", "DecodeError", "ErrorTypeInfo", "ErrorIntoModuleError",
		"Pallet.ErrorCompactnessTest",
		"ErrorOverflow.EncodeTo", "ErrorOverflow.String", "ErrorOverflow.Error", "ErrorOverflow.GoString",
		"errorIgnore.EncodeTo",
	} {
		if _, ok := decls[name]; !ok {
			t.Fatalf("missing declaration %s\n%s", name, f.Content)
		}
	}

	src := string(f.Content)
	for _, want := range []string{
		"// Code generated by moderr " + compiler.Version + ". DO NOT EDIT.",
		"// Source: balances.cue",
		"// Custom dispatch errors of this module.",
		"// Account balance too low.",
		`"github.com/strogmv/moderr/dispatch"`,
		"w.PutU8(1)",
		"w.PutU8(e.F0)",
		"w.PutFixed(e.Who[:])",
		"err = r.Fixed(v.Who[:])",
		`t.Fatalf("error type is not the most compact possible")`,
		"dispatch.NewModuleError[Pallet[T]](reg, dispatch.Encode(err), ErrorAsStr[T](err))",
		`panic("unreachable: Error.__Ignore can never be constructed")`,
		`dispatch.UnknownVariantError{Type: "balances.Error", Index: idx}`,
		"HasDeposit",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("generated source lacks %q\n%s", want, src)
		}
	}
}

func TestEmit_DescriptorArms(t *testing.T) {
	em := newTestEmitter(t, Options{})
	f, err := em.Emit(augment(t, balancesModule()))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	fn, ok := declarations(parseGenerated(t, f))["ErrorAsStr"].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("ErrorAsStr is not a function")
	}
	sw, ok := fn.Body.List[0].(*ast.TypeSwitchStmt)
	if !ok {
		t.Fatalf("ErrorAsStr does not start with a type switch")
	}

	var literals []string
	var panics int
	for _, stmt := range sw.Body.List {
		cc := stmt.(*ast.CaseClause)
		switch s := cc.Body[0].(type) {
		case *ast.ReturnStmt:
			lit := s.Results[0].(*ast.BasicLit)
			v, err := strconv.Unquote(lit.Value)
			if err != nil {
				t.Fatalf("unquote %s: %v", lit.Value, err)
			}
			literals = append(literals, v)
		case *ast.ExprStmt:
			panics++
		}
	}
	if got := strings.Join(literals, ","); got != "InsufficientBalance,Overflow,BadOrigin" {
		t.Fatalf("unexpected descriptor literals: %s", got)
	}
	// The sentinel case and the default case.
	if panics != 2 {
		t.Fatalf("expected 2 unreachable arms, got %d", panics)
	}
}

func TestEmit_ModuleWithoutErrorType(t *testing.T) {
	em := newTestEmitter(t, Options{OutputDir: "out", Package: "timestamp"})
	def := augment(t, ir.ModuleDefinition{Name: "Timestamp", Package: "ts", ModuleType: "Pallet"})
	f, err := em.Emit(def)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if filepath.Base(f.Path) != "module_gen.go" {
		t.Fatalf("unexpected file name %s", f.Path)
	}

	file := parseGenerated(t, f)
	if file.Name.Name != "timestamp" {
		t.Fatalf("package override ignored: %s", file.Name.Name)
	}
	decls := declarations(file)
	if len(decls) != 1 {
		t.Fatalf("expected only the self-test, got %d declarations\n%s", len(decls), f.Content)
	}
	fn, ok := decls["Pallet.ErrorCompactnessTest"].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("self-test missing\n%s", f.Content)
	}
	if len(fn.Body.List) != 0 {
		t.Fatalf("self-test of a module without error type must be empty")
	}
	for _, imp := range file.Imports {
		if imp.Path.Value == `"fmt"` {
			t.Fatalf("unused fmt import kept")
		}
	}
}

func TestEmit_MultipleTypeParams(t *testing.T) {
	def := balancesModule()
	def.TypeParams = append(def.TypeParams, ir.TypeParam{Name: "I", Constraint: "any"})
	em := newTestEmitter(t, Options{})
	f, err := em.Emit(augment(t, def))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	parseGenerated(t, f)
	src := string(f.Content)
	for _, want := range []string{
		"dispatch.NewModuleError[Pallet[T, I]](reg, dispatch.Encode(err), ErrorAsStr[T, I](err))",
		"dispatch.Phantom[I]",
		"func (Pallet[T, I]) ErrorCompactnessTest(t dispatch.TB)",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("generated source lacks %q\n%s", want, src)
		}
	}
}

func TestEmit_NonGenericModule(t *testing.T) {
	def := balancesModule()
	def.TypeParams = nil
	def.Where = nil
	em := newTestEmitter(t, Options{})
	f, err := em.Emit(augment(t, def))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	parseGenerated(t, f)
	src := string(f.Content)
	for _, want := range []string{
		"func DecodeError(r *dispatch.Reader) (Error, error)",
		"dispatch.NewModuleError[Pallet](reg, dispatch.Encode(err), ErrorAsStr(err))",
		"func (Pallet) ErrorCompactnessTest(t dispatch.TB)",
		"isError()",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("generated source lacks %q\n%s", want, src)
		}
	}
}

func TestEmit_RequiresAugmentation(t *testing.T) {
	em := newTestEmitter(t, Options{})
	_, err := em.Emit(balancesModule())
	var ce *compiler.ContractError
	if !errors.As(err, &ce) || ce.Stage != compiler.StageEmit || ce.Code != compiler.ErrCodeEmitterStep {
		t.Fatalf("expected emit step error, got %v", err)
	}
}

func TestGenerate_RejectsSharedOutputFile(t *testing.T) {
	a := augment(t, balancesModule())
	b := balancesModule()
	b.Name = "Vesting"
	em := newTestEmitter(t, Options{})
	_, err := em.Generate([]ir.ModuleDefinition{a, augment(t, b)})
	if err == nil || !strings.Contains(err.Error(), "both generate") {
		t.Fatalf("expected shared output error, got %v", err)
	}
}

func TestNew_RejectsBadPackage(t *testing.T) {
	_, err := New(Options{Package: "Not-A-Package"})
	var ce *compiler.ContractError
	if !errors.As(err, &ce) || ce.Code != compiler.ErrCodeEmitterOptions {
		t.Fatalf("expected options error, got %v", err)
	}
}

func TestBuild_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "sudo.yaml")
	content := "module:\n  name: Sudo\n  moduleType: Pallet\n  generics: [{name: T}]\n  error:\n    variants: [RequireSudo]\n"
	if err := os.WriteFile(def, []byte(content), 0o644); err != nil {
		t.Fatalf("write definition: %v", err)
	}
	out := filepath.Join(dir, "gen")

	res, err := Build([]string{def}, BuildOptions{
		Emitter:  Options{OutputDir: out, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
		Pipeline: compiler.PipelineOptions{WarningSink: func(normalizer.Warning) {}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Files) != 1 || len(res.Modules) != 1 || !res.Modules[0].Error.Augmented() {
		t.Fatalf("unexpected build result: %+v", res)
	}
	written, err := os.ReadFile(filepath.Join(out, "error_gen.go"))
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if string(written) != string(res.Files[0].Content) {
		t.Fatalf("written file differs from the build result")
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected the undocumented warning, got %+v", res.Diagnostics)
	}
}

func TestBuild_DryRun(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(dir, "sudo.yaml")
	if err := os.WriteFile(def, []byte("module:\n  name: Sudo\n"), 0o644); err != nil {
		t.Fatalf("write definition: %v", err)
	}
	out := filepath.Join(dir, "gen")
	res, err := Build([]string{def}, BuildOptions{Emitter: Options{OutputDir: out}, DryRun: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Files) != 1 || filepath.Base(res.Files[0].Path) != "module_gen.go" {
		t.Fatalf("unexpected files: %+v", res.Files)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create the output directory")
	}
}

// TestBuild_BalancesGolden regenerates the committed balances example the way
// go:generate does and requires the exact bytes on disk.
func TestBuild_BalancesGolden(t *testing.T) {
	t.Chdir(filepath.Join("..", "..", "examples", "balances"))

	res, err := Build([]string{"balances.cue"}, BuildOptions{
		Emitter:  Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
		Pipeline: compiler.PipelineOptions{WarningSink: func(normalizer.Warning) {}},
		DryRun:   true,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0].Path != "error_gen.go" {
		t.Fatalf("unexpected files: %+v", res.Files)
	}
	committed, err := os.ReadFile("error_gen.go")
	if err != nil {
		t.Fatalf("read committed file: %v", err)
	}
	if got := string(res.Files[0].Content); got != string(committed) {
		t.Fatalf("examples/balances/error_gen.go is stale; run go generate ./examples/balances\n%s", got)
	}
}

func TestNew_TemplatesDirOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	override := "{{- define \"compactness\" -}}\n// ErrorCompactnessTest is disabled locally.\n{{- end }}\n"
	if err := os.WriteFile(filepath.Join(dir, "compactness.tmpl"), []byte(override), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	extra := "{{ define \"banner\" }}local {{ .Module }}{{ end }}"
	if err := os.WriteFile(filepath.Join(dir, "banner.tmpl"), []byte(extra), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	em := newTestEmitter(t, Options{TemplatesDir: dir})
	f, err := em.Emit(augment(t, balancesModule()))
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	src := string(f.Content)
	if !strings.Contains(src, "// ErrorCompactnessTest is disabled locally.") {
		t.Fatalf("override not applied\n%s", src)
	}
	if _, ok := declarations(parseGenerated(t, f))["Pallet.ErrorCompactnessTest"]; ok {
		t.Fatalf("embedded compactness template still rendered")
	}
	// Templates without an override come from the embedded set.
	if !strings.Contains(src, "func ErrorAsStr[") || !strings.Contains(src, "func DecodeError[") {
		t.Fatalf("embedded templates missing\n%s", src)
	}
	got, err := em.render("banner", moduleView{Module: "Balances"})
	if err != nil || got != "local Balances" {
		t.Fatalf("extra template: %q, %v", got, err)
	}
}

func TestNew_TemplatesDirParseError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "envelope.tmpl"), []byte("{{ define }}"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	_, err := New(Options{TemplatesDir: dir})
	var ce *compiler.ContractError
	if !errors.As(err, &ce) || ce.Code != compiler.ErrCodeEmitterOptions || !strings.Contains(err.Error(), "envelope.tmpl") {
		t.Fatalf("expected template parse error, got %v", err)
	}
}

func TestDescriptorArms(t *testing.T) {
	spec := augment(t, balancesModule()).Error
	arms := DescriptorArms(*spec)
	want := []DescriptorArm{
		{Variant: "InsufficientBalance", Literal: "InsufficientBalance"},
		{Variant: "Overflow", Literal: "Overflow"},
		{Variant: "BadOrigin", Literal: "BadOrigin"},
	}
	if len(arms) != len(want) {
		t.Fatalf("expected %d arms, got %d", len(want), len(arms))
	}
	for i := range want {
		if arms[i] != want[i] {
			t.Fatalf("arm %d: want %+v, got %+v", i, want[i], arms[i])
		}
	}
}

func TestDocComment(t *testing.T) {
	got := docComment("Error is the error type.", []string{"First.", "", "Second."})
	want := "// Error is the error type.\n//\n// First.\n//\n// Second."
	if got != want {
		t.Fatalf("unexpected comment:\n%s", got)
	}
	if stringSlice(nil) != "nil" || stringSlice([]string{"a"}) != `[]string{"a"}` {
		t.Fatalf("unexpected string slice rendering")
	}
}
