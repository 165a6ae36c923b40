// Package container validates the stack's build and compose descriptors:
// multi-stage builds, non-root execution, declared health checks, parseable
// compose variants, and required env-file keys. Image existence and size
// are advisory since images may not be built yet.
package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/stackcheck/stackcheck/internal/checks"
	"github.com/stackcheck/stackcheck/internal/dockercli"
	"github.com/stackcheck/stackcheck/internal/envfile"
)

// SuiteName identifies this suite in the registry and reports.
const SuiteName = "container-config"

// Options configures the container-configuration suite.
type Options struct {
	DockerfilePath  string
	ComposeDevPath  string
	ComposeProdPath string
	EnvFilePath     string

	// ExpectedServices must appear in the development compose variant.
	ExpectedServices []string

	// Project prefixes compose-managed volume names.
	Project string

	// Volume is the runtime name of the data volume (<project>_<short>).
	Volume string

	// RequiredEnvKeys must be present and non-empty in the env file.
	RequiredEnvKeys []string

	// ImageRef and ImageMaxBytes drive the advisory image checks.
	ImageRef      string
	ImageMaxBytes int64

	Docker *dockercli.Client
}

// New builds the container-configuration suite.
func New(opts Options) checks.Suite {
	cs := []checks.Check{
		{Name: "dockerfile-multi-stage", Run: func(ctx context.Context) checks.Result {
			facts, err := scanDockerfile(opts.DockerfilePath)
			if err != nil {
				return checks.Fail("", "cannot read %s: %v", opts.DockerfilePath, err)
			}
			if facts.fromCount < 2 {
				return checks.Fail("", "%s has %d build stage(s), expected a multi-stage build", opts.DockerfilePath, facts.fromCount)
			}
			return checks.Pass("", "multi-stage build with %d stages", facts.fromCount)
		}},
		{Name: "dockerfile-non-root-user", Run: func(ctx context.Context) checks.Result {
			facts, err := scanDockerfile(opts.DockerfilePath)
			if err != nil {
				return checks.Fail("", "cannot read %s: %v", opts.DockerfilePath, err)
			}
			if facts.lastUser == "" {
				return checks.Fail("", "no USER directive; container runs as root")
			}
			if rootUser(facts.lastUser) {
				return checks.Fail("", "USER %s resolves to root", facts.lastUser)
			}
			return checks.Pass("", "runs as USER %s", facts.lastUser)
		}},
		{Name: "dockerfile-healthcheck", Run: func(ctx context.Context) checks.Result {
			facts, err := scanDockerfile(opts.DockerfilePath)
			if err != nil {
				return checks.Fail("", "cannot read %s: %v", opts.DockerfilePath, err)
			}
			if !facts.healthcheck {
				return checks.Fail("", "no HEALTHCHECK directive in %s", opts.DockerfilePath)
			}
			return checks.Pass("", "HEALTHCHECK declared")
		}},
		{Name: "compose-dev-parses", Run: func(ctx context.Context) checks.Result {
			cf, err := parseCompose(opts.ComposeDevPath)
			if err != nil {
				return checks.Fail("", "%v", err)
			}
			if missing := cf.missingServices(opts.ExpectedServices); len(missing) > 0 {
				return checks.Fail("", "%s missing services: %s", opts.ComposeDevPath, strings.Join(missing, ", "))
			}
			return checks.Pass("", "%s declares %d services", opts.ComposeDevPath, len(cf.Services))
		}},
		{Name: "compose-prod-parses", Run: func(ctx context.Context) checks.Result {
			cf, err := parseCompose(opts.ComposeProdPath)
			if err != nil {
				return checks.Fail("", "%v", err)
			}
			return checks.Pass("", "%s declares %d services", opts.ComposeProdPath, len(cf.Services))
		}},
		{Name: "compose-volume-declared", Run: func(ctx context.Context) checks.Result {
			cf, err := parseCompose(opts.ComposeDevPath)
			if err != nil {
				return checks.Fail("", "%v", err)
			}
			short := strings.TrimPrefix(opts.Volume, opts.Project+"_")
			if !cf.declaresVolume(short) {
				return checks.Fail("", "volume %q not declared in %s", short, opts.ComposeDevPath)
			}
			return checks.Pass("", "volume %q declared", short)
		}},
		{Name: "env-file-keys", Run: func(ctx context.Context) checks.Result {
			src := envfile.Load(opts.EnvFilePath)
			if missing := src.Require(opts.RequiredEnvKeys...); len(missing) > 0 {
				return checks.Fail("", "%s missing keys: %s", opts.EnvFilePath, strings.Join(missing, ", "))
			}
			return checks.Pass("", "%d required keys present", len(opts.RequiredEnvKeys))
		}},
		{Name: "image-exists", Advisory: true, Run: func(ctx context.Context) checks.Result {
			if _, err := opts.Docker.ImageSize(ctx, opts.ImageRef); err != nil {
				return checks.Fail("", "image %s not built: %v", opts.ImageRef, err)
			}
			return checks.Pass("", "image %s present", opts.ImageRef)
		}},
		{Name: "image-size", Advisory: true, Run: func(ctx context.Context) checks.Result {
			size, err := opts.Docker.ImageSize(ctx, opts.ImageRef)
			if err != nil {
				return checks.Fail("", "image %s not built: %v", opts.ImageRef, err)
			}
			if size > opts.ImageMaxBytes {
				return checks.Fail("", "image %s is %s, ceiling %s", opts.ImageRef, formatBytes(size), formatBytes(opts.ImageMaxBytes))
			}
			return checks.Pass("", "image %s is %s", opts.ImageRef, formatBytes(size))
		}},
	}

	return checks.Suite{Name: SuiteName, Checks: cs}
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	return fmt.Sprintf("%.1fMB", float64(n)/mb)
}
