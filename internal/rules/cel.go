package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// PredicateEvaluator compiles and runs CEL applicability predicates against a
// CaseFacts activation. Programs are compiled once and cached per expression;
// cost limits keep a pathological rule from stalling evaluation.
type PredicateEvaluator struct {
	env   *cel.Env
	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewPredicateEvaluator builds the CEL environment rule predicates run in.
// Predicates see a single `facts` variable: the nested activation map in
// which absent fields are omitted, so has() distinguishes false from unset.
func NewPredicateEvaluator() (*PredicateEvaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("facts", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &PredicateEvaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Eval runs expr against the activation and returns its boolean result.
// Compile and runtime failures are returned to the caller, which isolates
// them per rule - one malformed predicate never aborts the evaluation of the
// rest of the pack.
func (e *PredicateEvaluator) Eval(expr string, activation map[string]any) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(map[string]any{"facts": activation})
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("predicate result is %T, not bool", out.Value())
	}
	return result, nil
}

func (e *PredicateEvaluator) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, hit := e.cache[expr]
	e.mu.RUnlock()
	if hit {
		return prg, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, hit = e.cache[expr]; hit {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile: %w", issues.Err())
	}
	prg, err := e.env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	e.cache[expr] = prg
	return prg, nil
}

// PathPresent walks a dotted activation path (e.g. "derived.arrears_months")
// and reports whether every segment is present. Used to decide rule
// applicability before the predicate runs.
func PathPresent(activation map[string]any, path string) bool {
	current := any(activation)
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			segment := path[start:i]
			m, ok := current.(map[string]any)
			if !ok {
				return false
			}
			current, ok = m[segment]
			if !ok {
				return false
			}
			start = i + 1
		}
	}
	return true
}
