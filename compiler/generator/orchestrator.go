// Package generator runs emitter steps for one module under capability
// gating.
package generator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/strogmv/moderr/compiler"
)

// Step is an independent generator module unit.
// It declares required capabilities and a pure execution function.
type Step struct {
	Name string
	// ArtifactKey identifies the fragment the step produces, e.g. "go:descriptor".
	ArtifactKey string
	Requires    []compiler.Capability
	Run         func() error
}

// StepRegistry collects steps in registration order. Registration problems
// are kept and reported by Err so callers can register unconditionally.
type StepRegistry struct {
	steps []Step
	names map[string]bool
	keys  map[string]bool
	errs  []string
}

func NewStepRegistry() *StepRegistry {
	return &StepRegistry{
		names: make(map[string]bool),
		keys:  make(map[string]bool),
	}
}

// Register adds a step. Steps with an empty or duplicate name, a duplicate
// artifact key or no Run function are rejected.
func (r *StepRegistry) Register(step Step) {
	name := strings.TrimSpace(step.Name)
	switch {
	case name == "":
		r.errs = append(r.errs, "step with empty name")
		return
	case r.names[name]:
		r.errs = append(r.errs, fmt.Sprintf("duplicate step %q", name))
		return
	case step.ArtifactKey != "" && r.keys[step.ArtifactKey]:
		r.errs = append(r.errs, fmt.Sprintf("step %q: artifact %q is already produced by another step", name, step.ArtifactKey))
		return
	case step.Run == nil:
		r.errs = append(r.errs, fmt.Sprintf("step %q has no run function", name))
		return
	}
	r.names[name] = true
	if step.ArtifactKey != "" {
		r.keys[step.ArtifactKey] = true
	}
	r.steps = append(r.steps, step)
}

// Steps returns the accepted steps in registration order.
func (r *StepRegistry) Steps() []Step {
	return append([]Step(nil), r.steps...)
}

func (r *StepRegistry) Err() error {
	if len(r.errs) == 0 {
		return nil
	}
	return fmt.Errorf("step registry: %s", strings.Join(r.errs, "; "))
}

// Execute runs steps through capability gating.
// Missing capabilities skip the step with logger output.
func Execute(
	module string,
	caps compiler.CapabilitySet,
	steps []Step,
	logger *slog.Logger,
) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, step := range steps {
		if !caps.HasAll(step.Requires...) {
			missing := caps.Missing(step.Requires...)
			missingNames := make([]string, 0, len(missing))
			for _, c := range missing {
				missingNames = append(missingNames, string(c))
			}
			logger.Debug("skipping step",
				"module", module,
				"step", step.Name,
				"missing", strings.Join(missingNames, ", "),
			)
			continue
		}
		if err := step.Run(); err != nil {
			return fmt.Errorf("module=%s step=%s: %w", module, step.Name, err)
		}
	}
	return nil
}
