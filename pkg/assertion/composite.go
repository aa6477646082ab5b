package assertion

import "fmt"

// AllOf evaluates q against payload and passes only when every
// condition holds. The message names the first failed condition.
func AllOf(engine Engine, q Query, payload any) Result {
	results := engine.Match(q, payload)

	for _, r := range results {
		if !r.Passed {
			return Result{
				Type:   "all_of",
				Actual: payload,
				Message: fmt.Sprintf(
					"condition '%s' on '%s' failed: %s",
					r.Type, displayPath(r.Path), r.Message,
				),
			}
		}
	}

	return Result{
		Type:    "all_of",
		Actual:  payload,
		Passed:  true,
		Message: fmt.Sprintf("all %d conditions passed", len(results)),
	}
}

// AnyOf evaluates q against payload and passes when at least one
// condition holds. An empty query never passes.
func AnyOf(engine Engine, q Query, payload any) Result {
	results := engine.Match(q, payload)

	for _, r := range results {
		if r.Passed {
			return Result{
				Type:   "any_of",
				Actual: payload,
				Passed: true,
				Message: fmt.Sprintf(
					"condition '%s' on '%s' passed",
					r.Type, displayPath(r.Path),
				),
			}
		}
	}

	return Result{
		Type:   "any_of",
		Actual: payload,
		Message: fmt.Sprintf(
			"none of %d conditions passed", len(results),
		),
	}
}

// AllOfEvaluator returns an Evaluator that runs a fixed query
// against the addressed value and requires all of it to hold.
// Register it to give a reusable query its own condition type.
func AllOfEvaluator(engine Engine, q Query) Evaluator {
	return func(_ Condition, value any) (bool, string) {
		r := AllOf(engine, q, value)
		return r.Passed, r.Message
	}
}

// AnyOfEvaluator returns an Evaluator that runs a fixed query
// against the addressed value and requires at least one condition
// to hold.
func AnyOfEvaluator(engine Engine, q Query) Evaluator {
	return func(_ Condition, value any) (bool, string) {
		r := AnyOf(engine, q, value)
		return r.Passed, r.Message
	}
}

func displayPath(path string) string {
	if path == "" {
		return "$"
	}
	return path
}
