package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuelang.org/go/cue"
)

const sudoCUE = `
module: {
	name:       "Sudo"
	moduleType: "Pallet"
	generics: [{name: "T"}]
	error: variants: [{name: "RequireSudo"}, {name: "Weight", fields: ["u16"]}]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		path string
		want Kind
	}{
		{dir, KindCUEPackage},
		{writeFile(t, dir, "sudo.cue", sudoCUE), KindCUEFile},
		{writeFile(t, dir, "sudo.yaml", "module: {}\n"), KindYAML},
		{writeFile(t, dir, "sudo.YML", "module: {}\n"), KindYAML},
	}
	for _, tc := range cases {
		got, err := Detect(tc.path)
		if err != nil || got != tc.want {
			t.Fatalf("Detect(%s) = %q, %v; want %q", tc.path, got, err, tc.want)
		}
	}

	if _, err := Detect(writeFile(t, dir, "sudo.json", "{}")); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
	if _, err := Detect(filepath.Join(dir, "missing.cue")); err == nil {
		t.Fatalf("expected error for a missing path")
	}
}

func TestValidateModuleAcceptsSchema(t *testing.T) {
	p := New()
	val, err := p.CompileString(sudoCUE, "sudo.cue")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := p.ValidateModule(val, "module"); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateModuleRejectsBadDefinitions(t *testing.T) {
	cases := map[string]string{
		"missing field":    `other: {}`,
		"bad package":      `module: {name: "Sudo", package: "Sudo"}`,
		"bad variant name": `module: {name: "Sudo", error: variants: [{name: "1st"}]}`,
		"missing name":     `module: {moduleType: "Pallet"}`,
	}
	p := New()
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			val, err := p.CompileString(src, "bad.cue")
			if err != nil {
				t.Fatalf("compile: %v", err)
			}
			if err := p.ValidateModule(val, "module"); err == nil {
				t.Fatalf("expected schema violation")
			}
		})
	}
}

func TestLoadFileAndDomain(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sudo.cue", "package sudo\n"+sudoCUE)
	p := New()

	val, err := p.LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if name, _ := val.LookupPath(cueModuleName).String(); name != "Sudo" {
		t.Fatalf("module name = %q", name)
	}

	val, err = p.LoadDomain(dir)
	if err != nil {
		t.Fatalf("load domain: %v", err)
	}
	if err := p.ValidateModule(val, "module"); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestFormatCUELocationError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.cue", "module: {name: \"A\"}\nmodule: {name: \"B\"}\n")

	_, err := New().LoadFile(path)
	if err == nil {
		t.Fatalf("expected conflicting values to fail")
	}
	msg := FormatCUELocationError(err)
	if !strings.Contains(msg, "CUE error:") || !strings.Contains(msg, "broken.cue") {
		t.Fatalf("unexpected message:\n%s", msg)
	}
	if FormatCUELocationError(nil) != "" {
		t.Fatalf("nil error must format as empty")
	}
}

var cueModuleName = cue.ParsePath("module.name")
