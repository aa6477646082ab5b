// Package assertion evaluates query conditions against decoded
// payloads such as event data or response results. A Query is a
// list of Conditions that must all hold; each Condition addresses
// a value inside the payload by a dotted path and checks it with a
// named evaluator.
package assertion

// Condition describes a single check against one value of a
// payload.
type Condition struct {
	// Type is the evaluator type (e.g., "equals", "contains",
	// "min_length").
	Type string `json:"type" yaml:"type"`

	// Path addresses the checked value with dot separated map
	// keys, field names or slice indices. Empty means the whole
	// payload.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Value is the expected value for single-value conditions.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Values holds expected values for multi-value conditions
	// (e.g., "contains_any", "one_of").
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`
}

// Query is a conjunction of conditions.
type Query []Condition

// Result captures the outcome of evaluating a single condition.
type Result struct {
	// Type is the condition type that was evaluated.
	Type string `json:"type"`

	// Path is the payload path that was checked.
	Path string `json:"path,omitempty"`

	// Expected is the value the condition expected.
	Expected any `json:"expected,omitempty"`

	// Actual is the value that was observed.
	Actual any `json:"actual,omitempty"`

	// Passed indicates whether the condition held.
	Passed bool `json:"passed"`

	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
}

// Evaluator checks a single condition type against a concrete
// value. It returns whether the condition held and a short
// explanation.
type Evaluator func(c Condition, value any) (bool, string)
