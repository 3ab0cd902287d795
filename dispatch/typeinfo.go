package dispatch

// Primitive names the fixed-width field types an error variant may carry.
type Primitive string

const (
	U8    Primitive = "u8"
	U16   Primitive = "u16"
	U32   Primitive = "u32"
	U64   Primitive = "u64"
	I8    Primitive = "i8"
	I16   Primitive = "i16"
	I32   Primitive = "i32"
	I64   Primitive = "i64"
	Bool  Primitive = "bool"
	Bytes Primitive = "bytes"
)

// TypeInfo describes a generated error type for metadata consumers.
// Type parameters of the owning module are not part of the description.
type TypeInfo struct {
	Path     string
	Docs     []string
	Variants []VariantInfo
}

// VariantInfo describes one encodable variant.
type VariantInfo struct {
	Name   string
	Index  uint8
	Docs   []string
	Fields []FieldInfo
}

// FieldInfo describes one variant field. Name is empty for positional fields;
// Len is only set for Bytes.
type FieldInfo struct {
	Name string
	Type Primitive
	Len  int
}

// EncodedLen returns the exact number of bytes the field encodes to.
func (f FieldInfo) EncodedLen() (int, bool) {
	switch f.Type {
	case U8, I8, Bool:
		return 1, true
	case U16, I16:
		return 2, true
	case U32, I32:
		return 4, true
	case U64, I64:
		return 8, true
	case Bytes:
		if f.Len < 0 {
			return 0, false
		}
		return f.Len, true
	default:
		return 0, false
	}
}

// MaxEncodedLen returns the largest encoding of any variant, index byte
// included. The second result is false if a field has no fixed size.
func (t TypeInfo) MaxEncodedLen() (int, bool) {
	longest := 0
	for _, v := range t.Variants {
		n := 1
		for _, f := range v.Fields {
			size, ok := f.EncodedLen()
			if !ok {
				return 0, false
			}
			n += size
		}
		if n > longest {
			longest = n
		}
	}
	return longest, true
}

// Lookup finds a variant by name.
func (t TypeInfo) Lookup(name string) (VariantInfo, bool) {
	for _, v := range t.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantInfo{}, false
}
