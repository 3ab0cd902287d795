package normalizer

import (
	"fmt"
	"os"
	"strings"
)

// Warning is a non-fatal finding about a module definition.
type Warning struct {
	Kind     string `json:"kind" yaml:"kind"`
	Code     string `json:"code,omitempty" yaml:"code,omitempty"`
	Severity string `json:"severity,omitempty" yaml:"severity,omitempty"` // error, warn, info
	Message  string `json:"message" yaml:"message"`
	Module   string `json:"module,omitempty" yaml:"module,omitempty"`
	File     string `json:"file,omitempty" yaml:"file,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column   int    `json:"column,omitempty" yaml:"column,omitempty"`
	Hint     string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

const (
	WarnErrorOverBudget  = "ERROR_TYPE_OVER_BUDGET"
	WarnErrorNotSized    = "ERROR_TYPE_NOT_SIZED"
	WarnEmptyErrorType   = "ERROR_TYPE_EMPTY"
	WarnUndocumentedType = "ERROR_TYPE_UNDOCUMENTED"
)

// Normalizer turns loaded definition values into ir.ModuleDefinition.
type Normalizer struct {
	// ModuleErrorBudget is the byte budget used for the static size warning.
	ModuleErrorBudget int
	WarningSink       func(Warning)
}

func New() *Normalizer {
	return &Normalizer{
		ModuleErrorBudget: 4,
		WarningSink: func(w Warning) {
			label := strings.ToUpper(w.Kind)
			if label == "" {
				label = "WARNING"
			}
			if w.File != "" {
				fmt.Fprintf(os.Stderr, "%s WARNING: %s:%d: %s\n", label, w.File, w.Line, w.Message)
				return
			}
			fmt.Fprintf(os.Stderr, "%s WARNING: %s\n", label, w.Message)
		},
	}
}

func (n *Normalizer) Warn(w Warning) {
	if n.WarningSink != nil {
		n.WarningSink(w)
	}
}
