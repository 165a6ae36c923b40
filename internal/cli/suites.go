package cli

import (
	"time"

	"github.com/stackcheck/stackcheck/internal/checks"
	"github.com/stackcheck/stackcheck/internal/checks/api"
	"github.com/stackcheck/stackcheck/internal/checks/container"
	"github.com/stackcheck/stackcheck/internal/checks/live"
	"github.com/stackcheck/stackcheck/internal/checks/surface"
	"github.com/stackcheck/stackcheck/internal/config"
	"github.com/stackcheck/stackcheck/internal/dockercli"
	"github.com/stackcheck/stackcheck/internal/envfile"
	"github.com/stackcheck/stackcheck/internal/execx"
)

// commandTimeout bounds every external command a check issues.
const commandTimeout = 30 * time.Second

// RegisterSuites wires the four validator suites into the registry with
// their external collaborators. Call once per process.
func RegisterSuites(cfg *config.Config) {
	runner := execx.LocalRunner{Timeout: commandTimeout}
	docker := dockercli.New(runner)

	checks.Register(surface.SuiteName, func() checks.Suite {
		return surface.New(surface.Options{
			MakefilePath: cfg.Paths.Makefile,
			Targets:      cfg.Surface.Targets,
			Runner:       runner,
		})
	})

	checks.Register(container.SuiteName, func() checks.Suite {
		return container.New(container.Options{
			DockerfilePath:  cfg.Paths.Dockerfile,
			ComposeDevPath:  cfg.Paths.ComposeDev,
			ComposeProdPath: cfg.Paths.ComposeProd,
			EnvFilePath:     cfg.Paths.EnvFile,
			ExpectedServices: []string{
				cfg.Stack.GatewayService,
				cfg.Stack.APIService,
				cfg.Stack.DatastoreService,
			},
			Project: cfg.Stack.Project,
			Volume:  cfg.Stack.Volume,
			RequiredEnvKeys: []string{
				cfg.Datastore.UserKey,
				cfg.Datastore.PasswordKey,
				cfg.Datastore.DatabaseKey,
			},
			ImageRef:      cfg.Image.Ref,
			ImageMaxBytes: cfg.Image.MaxBytes,
			Docker:        docker,
		})
	})

	checks.Register(api.SuiteName, func() checks.Suite {
		return api.New(api.Options{
			GatewayURL:     cfg.Gateway.URL,
			BurstSize:      cfg.API.BurstSize,
			RequestTimeout: cfg.API.RequestTimeout,
		})
	})

	checks.Register(live.SuiteName, func() checks.Suite {
		return live.New(live.Options{
			GatewayURL:         cfg.Gateway.URL,
			ExpectedContainers: cfg.Stack.ExpectedContainers(),
			Host:               cfg.Stack.Host,
			APIPort:            cfg.Stack.APIPort,
			DatastorePort:      cfg.Stack.DatastorePort,
			Volume:             cfg.Stack.Volume,
			DatastoreContainer: cfg.Stack.ContainerName(cfg.Stack.DatastoreService),
			Env:                envfile.Load(cfg.Paths.EnvFile),
			UserKey:            cfg.Datastore.UserKey,
			PasswordKey:        cfg.Datastore.PasswordKey,
			DatabaseKey:        cfg.Datastore.DatabaseKey,
			Docker:             docker,
			RequestTimeout:     cfg.API.RequestTimeout,
			DialTimeout:        2 * time.Second,
		})
	})
}
