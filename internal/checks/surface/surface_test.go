package surface

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackcheck/stackcheck/internal/checks"
	"github.com/stackcheck/stackcheck/internal/execx"
)

const demoMakefile = `.PHONY: up down logs

COMPOSE := docker compose

up:
	$(COMPOSE) up -d

down:
	$(COMPOSE) down

logs:
	$(COMPOSE) logs -f

test:
	./scripts/verify.sh
`

type fakeRunner struct {
	failing map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (execx.Output, error) {
	key := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if err, ok := f.failing[key]; ok {
		return execx.Output{ExitCode: 2, Stderr: "no rule to make target"}, err
	}
	return execx.Output{Stdout: "ok"}, nil
}

func writeMakefile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Makefile")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDeclaredTargets(t *testing.T) {
	path := writeMakefile(t, demoMakefile)

	targets, err := declaredTargets(path)
	require.NoError(t, err)

	for _, want := range []string{"up", "down", "logs", "test"} {
		assert.True(t, targets[want], "expected target %q", want)
	}
	assert.False(t, targets["COMPOSE"], "variable assignment is not a target")
}

func TestSuite_AllPass(t *testing.T) {
	path := writeMakefile(t, demoMakefile)
	runner := &fakeRunner{}

	report := New(Options{
		MakefilePath: path,
		Targets:      []string{"up", "down", "logs", "test"},
		Runner:       runner,
	}).Run(context.Background())

	assert.Equal(t, 0, report.Failed, "report: %+v", report.Results)
	assert.Equal(t, report.Passed+report.Failed, len(report.Results))
}

func TestSuite_UndeclaredTarget(t *testing.T) {
	path := writeMakefile(t, demoMakefile)
	runner := &fakeRunner{failing: map[string]error{
		"make -n -f " + path + " deploy": errors.New("exit status 2"),
	}}

	report := New(Options{
		MakefilePath: path,
		Targets:      []string{"up", "deploy"},
		Runner:       runner,
	}).Run(context.Background())

	assert.Equal(t, 2, report.Failed, "declared + dry-run checks for the missing target must both fail")
	var failedNames []string
	for _, r := range report.Results {
		if r.Status == checks.StatusFail {
			failedNames = append(failedNames, r.Name)
		}
	}
	assert.Equal(t, []string{"target-declared-deploy", "target-dry-run-deploy"}, failedNames)
}

func TestSuite_MissingMakefile(t *testing.T) {
	report := New(Options{
		MakefilePath: filepath.Join(t.TempDir(), "Makefile"),
		Targets:      []string{"up"},
		Runner: &fakeRunner{failing: map[string]error{
			"make -n -f " + filepath.Join(t.TempDir(), "Makefile") + " up": errors.New("exit status 2"),
		}},
	}).Run(context.Background())

	// Readable and declared checks fail; the run continues regardless.
	assert.GreaterOrEqual(t, report.Failed, 2)
	assert.Equal(t, report.Passed+report.Failed, len(report.Results))
}

func TestSuite_ComposeCLIMissingIsAdvisory(t *testing.T) {
	path := writeMakefile(t, demoMakefile)
	runner := &fakeRunner{failing: map[string]error{
		"docker compose version": errors.New("executable file not found"),
	}}

	report := New(Options{
		MakefilePath: path,
		Targets:      []string{"up"},
		Runner:       runner,
	}).Run(context.Background())

	assert.Equal(t, 0, report.Failed)
	last := report.Results[len(report.Results)-1]
	assert.Equal(t, checks.StatusWarn, last.Status)
}
