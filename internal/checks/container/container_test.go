package container

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
	"github.com/stackcheck/stackcheck/internal/dockercli"
	"github.com/stackcheck/stackcheck/internal/execx"
)

const goodDockerfile = `FROM node:20-alpine AS build
WORKDIR /app
COPY package.json .
RUN npm ci

FROM node:20-alpine
WORKDIR /app
COPY --from=build /app/node_modules ./node_modules
COPY . .
USER node
HEALTHCHECK --interval=30s CMD wget -qO- http://localhost:3000/health || exit 1
CMD ["node", "server.js"]
`

const devCompose = `
services:
  nginx:
    image: nginx:alpine
    ports:
      - "8080:80"
  api:
    build: .
  mongo:
    image: mongo:7
    volumes:
      - mongo-data:/data/db
volumes:
  mongo-data:
`

const prodCompose = `
services:
  nginx:
    image: nginx:alpine
  api:
    image: product-catalog-api:latest
  mongo:
    image: mongo:7
volumes:
  mongo-data:
`

type fakeRunner struct {
	imageSize string
	imageErr  error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (execx.Output, error) {
	if strings.Contains(strings.Join(args, " "), "image inspect") {
		if f.imageErr != nil {
			return execx.Output{ExitCode: 1}, f.imageErr
		}
		return execx.Output{Stdout: f.imageSize}, nil
	}
	return execx.Output{}, nil
}

type fixture struct {
	opts Options
	dir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}

	return &fixture{
		dir: dir,
		opts: Options{
			DockerfilePath:   write("Dockerfile", goodDockerfile),
			ComposeDevPath:   write("docker-compose.yml", devCompose),
			ComposeProdPath:  write("docker-compose.prod.yml", prodCompose),
			EnvFilePath:      write(".env", "MONGO_INITDB_ROOT_USERNAME=root\nMONGO_INITDB_ROOT_PASSWORD=pw\nMONGO_INITDB_DATABASE=catalog\n"),
			ExpectedServices: []string{"nginx", "api", "mongo"},
			Project:          "product-catalog",
			Volume:           "product-catalog_mongo-data",
			RequiredEnvKeys:  []string{"MONGO_INITDB_ROOT_USERNAME", "MONGO_INITDB_ROOT_PASSWORD", "MONGO_INITDB_DATABASE"},
			ImageRef:         "product-catalog-api:latest",
			ImageMaxBytes:    500 * 1024 * 1024,
			Docker:           dockercli.New(&fakeRunner{imageSize: "104857600"}),
		},
	}
}

func statusOf(report checks.SuiteReport, name string) string {
	for _, r := range report.Results {
		if r.Name == name {
			return r.Status
		}
	}
	return ""
}

func TestSuite_AllPass(t *testing.T) {
	report := New(newFixture(t).opts).Run(context.Background())

	assert.Equal(t, 0, report.Failed, "results: %+v", report.Results)
	assert.Equal(t, report.Passed+report.Failed, len(report.Results))
}

func TestSuite_Idempotent(t *testing.T) {
	opts := newFixture(t).opts

	first := New(opts).Run(context.Background())
	second := New(opts).Run(context.Background())

	assert.Equal(t, first, second)
}

func TestSuite_SingleStageDockerfile(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(fx.opts.DockerfilePath, []byte("FROM node:20\nUSER node\nHEALTHCHECK CMD true\n"), 0o600))

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, checks.StatusFail, statusOf(report, "dockerfile-multi-stage"))
	assert.Equal(t, checks.StatusPass, statusOf(report, "dockerfile-non-root-user"))
}

func TestSuite_RootUserFails(t *testing.T) {
	fx := newFixture(t)
	df := strings.Replace(goodDockerfile, "USER node", "USER root", 1)
	require.NoError(t, os.WriteFile(fx.opts.DockerfilePath, []byte(df), 0o600))

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, checks.StatusFail, statusOf(report, "dockerfile-non-root-user"))
}

func TestSuite_MissingHealthcheck(t *testing.T) {
	fx := newFixture(t)
	df := strings.Replace(goodDockerfile, "HEALTHCHECK --interval=30s CMD wget -qO- http://localhost:3000/health || exit 1\n", "", 1)
	require.NoError(t, os.WriteFile(fx.opts.DockerfilePath, []byte(df), 0o600))

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, checks.StatusFail, statusOf(report, "dockerfile-healthcheck"))
}

func TestSuite_MalformedCompose(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(fx.opts.ComposeProdPath, []byte("services:\n  api:\n   image: [broken\n"), 0o600))

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, checks.StatusFail, statusOf(report, "compose-prod-parses"))
}

func TestSuite_MissingService(t *testing.T) {
	fx := newFixture(t)
	fx.opts.ExpectedServices = []string{"nginx", "api", "mongo", "cache"}

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, checks.StatusFail, statusOf(report, "compose-dev-parses"))
}

func TestSuite_MissingEnvKey(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.WriteFile(fx.opts.EnvFilePath, []byte("MONGO_INITDB_ROOT_USERNAME=root\n"), 0o600))

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, checks.StatusFail, statusOf(report, "env-file-keys"))
}

func TestSuite_ImageChecksAreAdvisory(t *testing.T) {
	fx := newFixture(t)
	fx.opts.Docker = dockercli.New(&fakeRunner{imageErr: errors.New("No such image")})

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, checks.StatusWarn, statusOf(report, "image-exists"))
	assert.Equal(t, checks.StatusWarn, statusOf(report, "image-size"))
}

func TestSuite_OversizedImageIsAdvisory(t *testing.T) {
	fx := newFixture(t)
	fx.opts.ImageMaxBytes = 1024

	report := New(fx.opts).Run(context.Background())

	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, checks.StatusWarn, statusOf(report, "image-size"))
}
