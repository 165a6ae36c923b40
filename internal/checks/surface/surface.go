// Package surface validates the declared command surface of the deployment:
// the Makefile targets operators are told to run must exist and be
// invocable in dry-run form. Static only, no live deployment required.
package surface

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/stackcheck/stackcheck/internal/checks"
	"github.com/stackcheck/stackcheck/internal/execx"
)

// SuiteName identifies this suite in the registry and reports.
const SuiteName = "command-surface"

// Options configures the command-surface suite.
type Options struct {
	// MakefilePath locates the Makefile declaring the command surface.
	MakefilePath string

	// Targets is the expected target surface.
	Targets []string

	// Runner executes make for the dry-run checks.
	Runner execx.Runner
}

// New builds the command-surface suite.
func New(opts Options) checks.Suite {
	cs := []checks.Check{
		{Name: "makefile-readable", Run: func(ctx context.Context) checks.Result {
			return checkReadable(opts.MakefilePath)
		}},
	}

	for _, target := range opts.Targets {
		cs = append(cs,
			checks.Check{Name: "target-declared-" + target, Run: func(ctx context.Context) checks.Result {
				return checkDeclared(opts.MakefilePath, target)
			}},
			checks.Check{Name: "target-dry-run-" + target, Run: func(ctx context.Context) checks.Result {
				return checkDryRun(ctx, opts.Runner, opts.MakefilePath, target)
			}},
		)
	}

	cs = append(cs, checks.Check{Name: "compose-cli-available", Advisory: true, Run: func(ctx context.Context) checks.Result {
		return checkComposeCLI(ctx, opts.Runner)
	}})

	return checks.Suite{Name: SuiteName, Checks: cs}
}

func checkReadable(path string) checks.Result {
	info, err := os.Stat(path)
	if err != nil {
		return checks.Fail("", "cannot read %s: %v", path, err)
	}
	if info.IsDir() {
		return checks.Fail("", "%s is a directory", path)
	}
	return checks.Pass("", "%s readable (%d bytes)", path, info.Size())
}

func checkDeclared(path, target string) checks.Result {
	targets, err := declaredTargets(path)
	if err != nil {
		return checks.Fail("", "cannot parse %s: %v", path, err)
	}
	if !targets[target] {
		return checks.Fail("", "target %q not declared in %s", target, path)
	}
	return checks.Pass("", "target %q declared", target)
}

func checkDryRun(ctx context.Context, runner execx.Runner, path, target string) checks.Result {
	out, err := runner.Run(ctx, "make", "-n", "-f", path, target)
	if err != nil {
		msg := strings.TrimSpace(out.Stderr)
		if msg == "" {
			msg = err.Error()
		}
		return checks.Fail("", "make -n %s failed: %s", target, msg)
	}
	return checks.Pass("", "make -n %s succeeded", target)
}

func checkComposeCLI(ctx context.Context, runner execx.Runner) checks.Result {
	out, err := runner.Run(ctx, "docker", "compose", "version")
	if err != nil {
		return checks.Fail("", "docker compose unavailable: %v", err)
	}
	return checks.Pass("", "%s", strings.TrimSpace(out.Stdout))
}

// declaredTargets scans a Makefile for target declarations. Rule lines
// (`name: deps`) and .PHONY lists both count as declarations.
func declaredTargets(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	targets := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, ".PHONY:") {
			for _, name := range strings.Fields(strings.TrimPrefix(line, ".PHONY:")) {
				targets[name] = true
			}
			continue
		}

		colon := strings.Index(line, ":")
		if colon <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:colon])
		// Skip variable assignments (`X := y`) and special targets.
		if name == "" || strings.ContainsAny(name, " \t=$") || strings.HasPrefix(name, ".") {
			continue
		}
		targets[name] = true
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return targets, nil
}
