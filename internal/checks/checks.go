package checks

import (
	"context"
	"fmt"
)

// Result holds the outcome of a single verification check.
type Result struct {
	// Name identifies the check that produced this result.
	Name string `json:"name"`

	// Passed indicates whether the checked condition held.
	Passed bool `json:"passed"`

	// Message is a human-readable summary of the result.
	Message string `json:"message"`

	// Details contains additional key-value diagnostic information.
	Details map[string]string `json:"details,omitempty"`
}

// Pass builds a passing Result.
func Pass(name, format string, args ...any) Result {
	return Result{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

// Fail builds a failing Result.
func Fail(name, format string, args ...any) Result {
	return Result{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// Check is the atomic unit of verification: a named predicate over some
// external fact. Run must return exactly one Result and must not panic past
// the suite boundary; the suite runner converts panics into failed results.
type Check struct {
	// Name is the unique identifier for this check within its suite.
	Name string

	// Advisory marks a check whose failure is logged but does not fail the
	// suite (e.g. image-size checks against images that may not be built yet).
	Advisory bool

	// Run executes the check.
	Run func(ctx context.Context) Result
}

// Status classifies a CheckResult for reporting.
const (
	StatusPass = "pass"
	StatusFail = "fail"
	StatusWarn = "warn"
)

// CheckResult is a Result as recorded in a SuiteReport, with its advisory
// handling already applied.
type CheckResult struct {
	Name    string            `json:"name"`
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Passed reports whether the result counts toward the pass tally. Advisory
// misses are warnings, which count as passed.
func (r CheckResult) Passed() bool {
	return r.Status != StatusFail
}

// SuiteReport holds the aggregate outcome of one suite run.
type SuiteReport struct {
	Suite   string        `json:"suite"`
	Results []CheckResult `json:"results"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
}

// Suite is an ordered collection of checks sharing a validation theme.
// Checks execute strictly in declaration order.
type Suite struct {
	Name   string
	Checks []Check
}

// Run executes every check in order and folds the results into a
// SuiteReport. A check that panics is recorded as a failed result carrying
// the cause; one bad check never terminates the run.
func (s Suite) Run(ctx context.Context) SuiteReport {
	report := SuiteReport{Suite: s.Name}

	for _, c := range s.Checks {
		result := runIsolated(ctx, c)

		status := StatusPass
		if !result.Passed {
			if c.Advisory {
				status = StatusWarn
				result.Message = "advisory: " + result.Message
			} else {
				status = StatusFail
			}
		}

		report.Results = append(report.Results, CheckResult{
			Name:    c.Name,
			Status:  status,
			Message: result.Message,
			Details: result.Details,
		})

		if status == StatusFail {
			report.Failed++
		} else {
			report.Passed++
		}
	}

	return report
}

// runIsolated invokes a check and downgrades panics to failed results.
func runIsolated(ctx context.Context, c Check) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Fail(c.Name, "check panicked: %v", r)
		}
	}()
	result = c.Run(ctx)
	result.Name = c.Name
	return result
}
