package sema

import (
	"fmt"

	"github.com/cwbudde/go-epoch/internal/diag"
)

// Pass is a single semantic analysis stage. The multi-pass architecture
// keeps compile-time execution, inference, and validation separable for
// drivers that want to observe or trace each stage.
type Pass interface {
	// Name returns the name of this pass for logging and debugging.
	Name() string

	// Run executes this pass against the analyzer's program. Semantic
	// errors accumulate in the analyzer's collector; an error return is
	// reserved for internal invariant violations.
	Run(a *Analyzer) error
}

// PassManager coordinates the execution of passes in order.
type PassManager struct {
	passes []Pass
}

// NewPassManager creates a pass manager with the given passes, executed in
// the order provided.
func NewPassManager(passes ...Pass) *PassManager {
	return &PassManager{passes: passes}
}

// AddPass appends a pass to the manager.
func (pm *PassManager) AddPass(pass Pass) {
	pm.passes = append(pm.passes, pass)
}

// RunAll executes every pass in sequence. Internal invariant violations
// raised as panics inside a pass are recovered and returned as errors;
// semantic errors stay in the collector and do not stop later passes.
func (pm *PassManager) RunAll(a *Analyzer) error {
	for _, pass := range pm.passes {
		if err := runRecovered(pass, a); err != nil {
			return err
		}
	}
	return nil
}

func runRecovered(pass Pass, a *Analyzer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if internal, ok := r.(diag.InternalError); ok {
				err = fmt.Errorf("%s: %w", pass.Name(), internal)
				return
			}
			panic(r)
		}
	}()
	return pass.Run(a)
}

// CompileTimePass executes compile-time code: alias constructor rewriting,
// template argument expansion, and compile helpers.
type CompileTimePass struct{}

func (CompileTimePass) Name() string { return "compile-time execution" }

func (CompileTimePass) Run(a *Analyzer) error {
	a.CompileTimeCodeExecution()
	return nil
}

// InferencePass performs type inference and overload resolution over every
// function.
type InferencePass struct{}

func (InferencePass) Name() string { return "type inference" }

func (InferencePass) Run(a *Analyzer) error {
	a.TypeInference()
	return nil
}

// ValidationPass verifies the fully typed IR.
type ValidationPass struct{}

func (ValidationPass) Name() string { return "validation" }

func (ValidationPass) Run(a *Analyzer) error {
	a.Validate()
	return nil
}

// DefaultPasses returns the standard pass sequence.
func DefaultPasses() []Pass {
	return []Pass{CompileTimePass{}, InferencePass{}, ValidationPass{}}
}
