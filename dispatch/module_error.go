package dispatch

import (
	"fmt"
	"reflect"

	"fortio.org/safecast"
)

// MaxModuleErrorSize is the number of bytes a module error occupies inside a
// ModuleError. Encodings longer than this are truncated, shorter ones are
// zero padded.
const MaxModuleErrorSize = 4

// ModuleError is the cross-module dispatch envelope.
type ModuleError struct {
	// Index is the position of the module in the assembled system.
	Index uint8
	// Bytes is the module error encoding, normalized to MaxModuleErrorSize bytes.
	Bytes [MaxModuleErrorSize]byte
	// Message is the variant name. Empty means no message.
	Message string
}

func (e ModuleError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("module %d error %x", e.Index, e.Bytes)
	}
	return fmt.Sprintf("module %d error %x: %s", e.Index, e.Bytes, e.Message)
}

// FixedBytes normalizes an encoding to exactly MaxModuleErrorSize bytes.
// Compact error types never exceed the budget, so truncation only hides a
// failing compactness self-test.
func FixedBytes(encoded []byte) [MaxModuleErrorSize]byte {
	var out [MaxModuleErrorSize]byte
	copy(out[:], encoded)
	return out
}

// NewModuleError builds the envelope for an error raised by module type M.
//
// It panics if M has no index in reg: every active module has an index once
// the registry is populated, so a miss is an assembly defect, not an error to
// recover from.
func NewModuleError[M any](reg Registry, encoded []byte, message string) ModuleError {
	return ModuleError{
		Index:   IndexOf[M](reg),
		Bytes:   FixedBytes(encoded),
		Message: message,
	}
}

// IndexOf returns the byte index of module type M in reg and panics when the
// module is not registered or its index does not fit in a byte.
func IndexOf[M any](reg Registry) uint8 {
	typ := reflect.TypeFor[M]()
	if reg == nil {
		panic(fmt.Sprintf("every active module has an index in the registry: no registry to look up %s", typ))
	}
	idx, ok := reg.ModuleIndex(typ)
	if !ok {
		panic(fmt.Sprintf("every active module has an index in the registry: %s is not registered", typ))
	}
	b, err := safecast.Conv[uint8](idx)
	if err != nil {
		panic(fmt.Sprintf("module %s index %d does not fit in a byte: %v", typ, idx, err))
	}
	return b
}
