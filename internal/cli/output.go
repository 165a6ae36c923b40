package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stackcheck/stackcheck/internal/checks"
)

// FormatText writes a human-readable check-by-check trace and summary.
func FormatText(w io.Writer, report RunReport) {
	fmt.Fprintln(w, "STACKCHECK VERIFICATION RESULTS")
	fmt.Fprintln(w, "===============================")
	fmt.Fprintln(w)

	for _, suite := range report.Suites {
		fmt.Fprintf(w, "-- %s --\n", suite.Suite)
		for _, c := range suite.Results {
			fmt.Fprintf(w, "%s %s\n", marker(c.Status), c.Name)
			fmt.Fprintf(w, "       %s\n", c.Message)
		}
		fmt.Fprintln(w)
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped (no live deployment detected): %s\n", strings.Join(report.Skipped, ", "))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("-", 31))

	if report.Fatal != "" {
		fmt.Fprintf(w, "FATAL: %s\n", report.Fatal)
	}

	total := report.TotalPassed + report.TotalFailed
	if report.TotalFailed > 0 {
		fmt.Fprintf(w, "Results: %d/%d passed, %d failed\n", report.TotalPassed, total, report.TotalFailed)
	} else {
		fmt.Fprintf(w, "Results: %d/%d passed\n", report.TotalPassed, total)
	}

	if report.ExitCode() == 0 {
		fmt.Fprintln(w, "Verdict: PASS")
	} else {
		fmt.Fprintln(w, "Verdict: FAIL")
	}
}

// FormatJSON writes the report as indented JSON to the writer.
func FormatJSON(w io.Writer, report RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func marker(status string) string {
	switch status {
	case checks.StatusFail:
		return "[FAIL]"
	case checks.StatusWarn:
		return "[WARN]"
	default:
		return "[PASS]"
	}
}
