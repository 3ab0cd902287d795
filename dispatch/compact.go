package dispatch

import "fmt"

// CompactnessViolation explains why a type failed CheckCompactness.
type CompactnessViolation struct {
	Type   string
	Reason string
}

func (v CompactnessViolation) Error() string {
	return fmt.Sprintf("%s is not compact: %s", v.Type, v.Reason)
}

// CheckCompactness reports whether every value of the described type encodes
// within MaxModuleErrorSize bytes.
func CheckCompactness(info TypeInfo) bool {
	return Compactness(info) == nil
}

// Compactness is CheckCompactness with the reason for a failure.
func Compactness(info TypeInfo) error {
	if len(info.Variants) > 256 {
		return CompactnessViolation{Type: info.Path, Reason: fmt.Sprintf("%d variants do not fit a one byte index", len(info.Variants))}
	}
	seen := make(map[uint8]string, len(info.Variants))
	for _, v := range info.Variants {
		if prev, ok := seen[v.Index]; ok {
			return CompactnessViolation{Type: info.Path, Reason: fmt.Sprintf("variants %s and %s share index %d", prev, v.Name, v.Index)}
		}
		seen[v.Index] = v.Name
		for _, f := range v.Fields {
			if _, ok := f.EncodedLen(); !ok {
				return CompactnessViolation{Type: info.Path, Reason: fmt.Sprintf("variant %s field of type %q has no fixed size", v.Name, f.Type)}
			}
		}
	}
	n, _ := info.MaxEncodedLen()
	if n > MaxModuleErrorSize {
		return CompactnessViolation{Type: info.Path, Reason: fmt.Sprintf("largest variant encodes to %d bytes, budget is %d", n, MaxModuleErrorSize)}
	}
	return nil
}

// TB is the subset of testing.TB the compactness self-test needs.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// CompactnessTester is implemented by every generated module type, whether
// or not the module declares an error type.
type CompactnessTester interface {
	ErrorCompactnessTest(t TB)
}

// RunCompactnessTests runs the self-test of every module.
func RunCompactnessTests(t TB, modules ...CompactnessTester) {
	t.Helper()
	for _, m := range modules {
		m.ErrorCompactnessTest(t)
	}
}
