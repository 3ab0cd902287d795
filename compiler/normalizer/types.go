package normalizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strogmv/moderr/compiler/ir"
)

// rawModule is the shape shared by CUE and YAML module definitions.
type rawModule struct {
	Name       string         `json:"name" yaml:"name"`
	Package    string         `json:"package,omitempty" yaml:"package,omitempty"`
	ModuleType string         `json:"moduleType,omitempty" yaml:"moduleType,omitempty"`
	Config     string         `json:"config,omitempty" yaml:"config,omitempty"`
	Generics   []rawTypeParam `json:"generics,omitempty" yaml:"generics,omitempty"`
	Where      []rawWhere     `json:"where,omitempty" yaml:"where,omitempty"`
	Error      *rawError      `json:"error,omitempty" yaml:"error,omitempty"`

	span ir.Span
}

type rawTypeParam struct {
	Name       string `json:"name" yaml:"name"`
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

type rawWhere struct {
	Param string `json:"param" yaml:"param"`
	Bound string `json:"bound" yaml:"bound"`
}

type rawError struct {
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	Docs     []string     `json:"docs,omitempty" yaml:"docs,omitempty"`
	Variants []rawVariant `json:"variants" yaml:"variants"`

	span ir.Span
}

type rawVariant struct {
	Name   string          `json:"name" yaml:"name"`
	Docs   []string        `json:"docs,omitempty" yaml:"docs,omitempty"`
	Fields []string        `json:"fields,omitempty" yaml:"fields,omitempty"`
	Named  []rawNamedField `json:"named,omitempty" yaml:"named,omitempty"`

	span ir.Span
}

type rawNamedField struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

var primitiveKinds = map[string]ir.TypeKind{
	"u8": ir.KindU8, "uint8": ir.KindU8, "byte": ir.KindU8,
	"u16": ir.KindU16, "uint16": ir.KindU16,
	"u32": ir.KindU32, "uint32": ir.KindU32,
	"u64": ir.KindU64, "uint64": ir.KindU64,
	"i8": ir.KindI8, "int8": ir.KindI8,
	"i16": ir.KindI16, "int16": ir.KindI16,
	"i32": ir.KindI32, "int32": ir.KindI32,
	"i64": ir.KindI64, "int64": ir.KindI64,
	"bool": ir.KindBool,
}

// ParseTypeRef reads a field type. Accepted forms are the fixed-width
// integer names (u8, uint8, i32, ...), bool, and byte arrays written
// either as [N]u8 / [N]byte or [u8; N].
func ParseTypeRef(raw string) (ir.TypeRef, error) {
	s := strings.TrimSpace(raw)
	if k, ok := primitiveKinds[s]; ok {
		return ir.TypeRef{Kind: k}, nil
	}
	if strings.HasPrefix(s, "[") {
		if n, ok := parseByteArray(s); ok {
			return ir.TypeRef{Kind: ir.KindBytes, Len: n}, nil
		}
	}
	return ir.TypeRef{}, fmt.Errorf("unsupported field type %q", raw)
}

func parseByteArray(s string) (int, bool) {
	// [u8; N]
	if strings.HasSuffix(s, "]") && strings.Contains(s, ";") {
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		elem, count, _ := strings.Cut(inner, ";")
		if k, ok := primitiveKinds[strings.TrimSpace(elem)]; !ok || k != ir.KindU8 {
			return 0, false
		}
		return parseArrayLen(count)
	}
	// [N]u8
	count, elem, ok := strings.Cut(strings.TrimPrefix(s, "["), "]")
	if !ok {
		return 0, false
	}
	if k, ok := primitiveKinds[strings.TrimSpace(elem)]; !ok || k != ir.KindU8 {
		return 0, false
	}
	return parseArrayLen(count)
}

func parseArrayLen(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
