package asserter

import (
	"fmt"

	"digital.vasic.livecheck/pkg/assertion"
	"digital.vasic.livecheck/pkg/entity"
	"digital.vasic.livecheck/pkg/failure"
)

// responseCheck verifies one response. subject is "Response" for a
// request sent by When and "Response: <i>" for standalone
// responses.
type responseCheck func(resp *entity.Response, subject string) error

func respInfo(resp *entity.Response) string {
	return "\n   " + resp.String()
}

func checkSuccessful(resp *entity.Response, subject string) error {
	if !resp.Successful {
		return failure.Fail(subject + " should be successful." + respInfo(resp))
	}
	return nil
}

func checkNotSuccessful(resp *entity.Response, subject string) error {
	if resp.Successful {
		return failure.Fail(subject + " should be not successful." + respInfo(resp))
	}
	return nil
}

func checkHasResult(resp *entity.Response, subject string) error {
	if resp.Result == nil {
		return failure.Fail(subject + " should have a result." + respInfo(resp))
	}
	return nil
}

func checkHasError(filter assertion.Query) responseCheck {
	return func(resp *entity.Response, subject string) error {
		if len(FilterBackErrors(resp.Errors, filter)) == 0 {
			return failure.Failf(
				"%s should have at least one back error that matches the filter: %s.%s",
				subject, filter, respInfo(resp))
		}
		return nil
	}
}

func checkErrorCount(count int, filter assertion.Query) responseCheck {
	return func(resp *entity.Response, subject string) error {
		if n := len(FilterBackErrors(resp.Errors, filter)); n != count {
			plural := "s"
			if count == 1 {
				plural = ""
			}
			return failure.Failf(
				"%s should have %d BackError%s that matches the filter: %s (got %d).%s",
				subject, count, plural, filter, n, respInfo(resp))
		}
		return nil
	}
}

// FilterBackErrors returns the back errors matching filter. An
// empty filter returns all of them. Conditions address the JSON
// field names of BackError, e.g. "name" or "info.length".
func FilterBackErrors(errs []entity.BackError, filter assertion.Query) []entity.BackError {
	if len(filter) == 0 {
		return errs
	}
	var out []entity.BackError
	for _, e := range errs {
		if ok, _ := assertion.Matches(filter, e); ok {
			out = append(out, e)
		}
	}
	return out
}

func resultSubject(subject string) string {
	return fmt.Sprintf("%s result", subject)
}
