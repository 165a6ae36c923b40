package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stackcheck/stackcheck/internal/checks"
	"github.com/stackcheck/stackcheck/internal/checks/api"
	"github.com/stackcheck/stackcheck/internal/checks/container"
	"github.com/stackcheck/stackcheck/internal/checks/live"
	"github.com/stackcheck/stackcheck/internal/checks/surface"
	"github.com/stackcheck/stackcheck/internal/config"
	"github.com/stackcheck/stackcheck/internal/readiness"
)

// RunReport holds the aggregate result of running one or more suites.
// The orchestrator owns it exclusively; suites only contribute values.
type RunReport struct {
	Suites      []checks.SuiteReport `json:"suites"`
	TotalPassed int                  `json:"totalPassed"`
	TotalFailed int                  `json:"totalFailed"`

	// Fatal is set when the run aborted before its suites could execute
	// (readiness timeout). Distinct from a check failure.
	Fatal string `json:"fatal,omitempty"`

	// Skipped names live suites left out because no deployment was detected.
	Skipped []string `json:"skipped,omitempty"`
}

// ExitCode is the machine-readable verdict: 0 only when nothing failed and
// the run was not aborted.
func (r RunReport) ExitCode() int {
	if r.TotalFailed > 0 || r.Fatal != "" {
		return 1
	}
	return 0
}

// Aggregate folds suite reports into a RunReport.
func Aggregate(reports ...checks.SuiteReport) RunReport {
	var run RunReport
	for _, sr := range reports {
		run.Suites = append(run.Suites, sr)
		run.TotalPassed += sr.Passed
		run.TotalFailed += sr.Failed
	}
	return run
}

// merge combines two RunReports; the later fatal wins.
func merge(a, b RunReport) RunReport {
	out := Aggregate(append(a.Suites, b.Suites...)...)
	out.Fatal = a.Fatal
	if b.Fatal != "" {
		out.Fatal = b.Fatal
	}
	out.Skipped = append(a.Skipped, b.Skipped...)
	return out
}

// Orchestrator selects and sequences suites, gating live suites behind the
// readiness poll, and aggregates their reports.
type Orchestrator struct {
	cfg *config.Config
	log *slog.Logger
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(cfg *config.Config, log *slog.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, log: log}
}

// RunSuites executes registered suites by name, in the given order.
func (o *Orchestrator) RunSuites(ctx context.Context, names ...string) RunReport {
	var reports []checks.SuiteReport
	for _, name := range names {
		b, ok := checks.Get(name)
		if !ok {
			return RunReport{Fatal: fmt.Sprintf("unknown suite: %s", name)}
		}
		o.log.Debug("running suite", "suite", name)
		reports = append(reports, b().Run(ctx))
	}
	return Aggregate(reports...)
}

// RunLiveSuites waits for the deployment to become ready, then runs the
// named suites. A readiness timeout aborts the run with a fatal report.
func (o *Orchestrator) RunLiveSuites(ctx context.Context, names ...string) RunReport {
	url := o.healthURL()
	o.log.Debug("waiting for readiness", "url", url, "budget", o.cfg.Readiness.MaxWait)

	outcome := readiness.Wait(ctx, url, o.cfg.Readiness.MaxWait, o.cfg.Readiness.Interval)
	if !outcome.Ready {
		return RunReport{Fatal: fmt.Sprintf("deployment not ready: %s did not answer within %s",
			url, outcome.Elapsed.Round(o.cfg.Readiness.Interval))}
	}

	o.log.Debug("deployment ready", "elapsed", outcome.Elapsed)
	return o.RunSuites(ctx, names...)
}

// RunAll sequences every suite: static suites first, then the live suites
// when a deployment is detected. Without a detected deployment the live
// suites are skipped and the verdict comes from the static suites alone.
func (o *Orchestrator) RunAll(ctx context.Context) RunReport {
	static := o.RunSuites(ctx, surface.SuiteName, container.SuiteName)

	if !readiness.Probe(ctx, o.healthURL(), o.cfg.Readiness.ProbeTimeout) {
		o.log.Debug("no live deployment detected, skipping live suites")
		static.Skipped = []string{api.SuiteName, live.SuiteName}
		return static
	}

	return merge(static, o.RunLiveSuites(ctx, api.SuiteName, live.SuiteName))
}

func (o *Orchestrator) healthURL() string {
	return o.cfg.Gateway.URL + "/health"
}
