package compiler

import (
	"sort"

	"github.com/strogmv/moderr/compiler/ir"
)

// Capability describes a generation ability requested for a module.
type Capability string

const (
	// CapabilityErrorType is present when the module declares an error type.
	CapabilityErrorType Capability = "error_type"

	CapabilityEncode       Capability = Capability(ir.DirectiveEncode)
	CapabilityDecode       Capability = Capability(ir.DirectiveDecode)
	CapabilityTypeInfo     Capability = Capability(ir.DirectiveTypeInfo)
	CapabilityCompactError Capability = Capability(ir.DirectiveCompactError)
)

// CapabilitySet is the resolved capability matrix for a module.
type CapabilitySet map[Capability]bool

func (s CapabilitySet) Has(cap Capability) bool {
	return s[cap]
}

func (s CapabilitySet) HasAll(caps ...Capability) bool {
	for _, cap := range caps {
		if !s.Has(cap) {
			return false
		}
	}
	return true
}

func (s CapabilitySet) Missing(caps ...Capability) []Capability {
	var out []Capability
	for _, cap := range caps {
		if !s.Has(cap) {
			out = append(out, cap)
		}
	}
	return out
}

func (s CapabilitySet) StringSlice() []string {
	var out []string
	for cap, ok := range s {
		if ok {
			out = append(out, string(cap))
		}
	}
	sort.Strings(out)
	return out
}

// ResolveCapabilities derives the capability matrix from the directives that
// augmentation attached to the module's error type.
func ResolveCapabilities(def ir.ModuleDefinition) CapabilitySet {
	caps := CapabilitySet{}
	if def.Error == nil {
		return caps
	}
	caps[CapabilityErrorType] = true
	for _, d := range def.Error.Directives {
		caps[Capability(d)] = true
	}
	return caps
}
