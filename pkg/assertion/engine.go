package assertion

import (
	"fmt"
	"sync"
)

// Engine defines the interface for query evaluation engines.
type Engine interface {
	// Evaluate checks a single condition against payload.
	Evaluate(c Condition, payload any) Result

	// Match checks every condition of q against payload and
	// returns one result per condition, in order.
	Match(q Query, payload any) []Result

	// Register adds a custom evaluator for the given condition
	// type. Returns an error if the type is already registered.
	Register(conditionType string, evaluator Evaluator) error
}

// DefaultEngine is the standard Engine implementation. It is
// safe for concurrent use.
type DefaultEngine struct {
	mu         sync.RWMutex
	evaluators map[string]Evaluator
}

// NewEngine creates a DefaultEngine with all built-in evaluators
// pre-registered.
func NewEngine() *DefaultEngine {
	e := &DefaultEngine{
		evaluators: make(map[string]Evaluator),
	}
	e.registerDefaults()
	return e
}

func (e *DefaultEngine) registerDefaults() {
	e.evaluators["exists"] = evaluateExists
	e.evaluators["not_empty"] = evaluateNotEmpty
	e.evaluators["equals"] = evaluateEquals
	e.evaluators["not_equals"] = evaluateNotEquals
	e.evaluators["one_of"] = evaluateOneOf
	e.evaluators["contains"] = evaluateContains
	e.evaluators["contains_any"] = evaluateContainsAny
	e.evaluators["regex"] = evaluateRegex
	e.evaluators["type"] = evaluateType
	e.evaluators["min_length"] = evaluateMinLength
	e.evaluators["max_length"] = evaluateMaxLength
	e.evaluators["min"] = evaluateMin
	e.evaluators["max"] = evaluateMax
	e.evaluators["min_count"] = evaluateMinCount
	e.evaluators["exact_count"] = evaluateExactCount
	e.evaluators["all_valid"] = evaluateAllValid
	e.evaluators["no_duplicates"] = evaluateNoDuplicates
}

// Register adds a custom evaluator for the given condition type.
// Returns an error if the type is already registered.
func (e *DefaultEngine) Register(
	conditionType string,
	evaluator Evaluator,
) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.evaluators[conditionType]; exists {
		return fmt.Errorf(
			"condition type already registered: %s",
			conditionType,
		)
	}

	e.evaluators[conditionType] = evaluator
	return nil
}

// HasEvaluator returns true if the given condition type has a
// registered evaluator.
func (e *DefaultEngine) HasEvaluator(conditionType string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.evaluators[conditionType]
	return exists
}

// Evaluate resolves the condition path inside payload and runs
// the registered evaluator on the addressed value. A path that
// cannot be resolved fails the condition whatever its type.
func (e *DefaultEngine) Evaluate(c Condition, payload any) Result {
	e.mu.RLock()
	evaluator, exists := e.evaluators[c.Type]
	e.mu.RUnlock()

	if !exists {
		return Result{
			Type: c.Type,
			Path: c.Path,
			Message: fmt.Sprintf(
				"unknown condition type: %s", c.Type,
			),
		}
	}

	value, found := Lookup(payload, c.Path)
	if !found {
		return Result{
			Type:     c.Type,
			Path:     c.Path,
			Expected: expected(c),
			Message:  fmt.Sprintf("path not found: %s", c.Path),
		}
	}

	passed, message := evaluator(c, value)

	return Result{
		Type:     c.Type,
		Path:     c.Path,
		Expected: expected(c),
		Actual:   value,
		Passed:   passed,
		Message:  message,
	}
}

// Match evaluates every condition of q against payload.
func (e *DefaultEngine) Match(q Query, payload any) []Result {
	results := make([]Result, 0, len(q))
	for _, c := range q {
		results = append(results, e.Evaluate(c, payload))
	}
	return results
}

func expected(c Condition) any {
	if c.Value != nil {
		return c.Value
	}
	if c.Values != nil {
		return c.Values
	}
	return nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *DefaultEngine
)

// Default returns the process-wide engine used by Matches.
// Custom evaluators registered on it are visible to every value
// assertion.
func Default() *DefaultEngine {
	defaultOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// Matches reports whether payload satisfies every condition of q
// using the default engine. On failure the message of the first
// failed condition is returned.
func Matches(q Query, payload any) (bool, string) {
	r := AllOf(Default(), q, payload)
	return r.Passed, r.Message
}
