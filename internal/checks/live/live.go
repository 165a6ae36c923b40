// Package live introspects the running deployment: container presence,
// health endpoints reached through the entry point, network isolation of
// private ports, the shared network, persistent volume, and declared
// container health. Requires a reachable deployment.
package live

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/stackcheck/stackcheck/internal/checks"
	"github.com/stackcheck/stackcheck/internal/dockercli"
	"github.com/stackcheck/stackcheck/internal/envfile"
)

// SuiteName identifies this suite in the registry and reports.
const SuiteName = "live-topology"

// Options configures the live-topology suite.
type Options struct {
	// GatewayURL is the public entry point base URL.
	GatewayURL string

	// ExpectedContainers must all be running.
	ExpectedContainers []string

	// Host and the private ports that must NOT be directly reachable.
	Host          string
	APIPort       int
	DatastorePort int

	// Volume is the named persistent volume of the data store.
	Volume string

	// DatastoreContainer hosts the authenticated ping.
	DatastoreContainer string

	// Env provides root credentials and the database name.
	Env         envfile.Source
	UserKey     string
	PasswordKey string
	DatabaseKey string

	Docker         *dockercli.Client
	RequestTimeout time.Duration
	DialTimeout    time.Duration
}

// New builds the live-topology suite.
func New(opts Options) checks.Suite {
	httpClient := &http.Client{Timeout: opts.RequestTimeout}
	base := strings.TrimRight(opts.GatewayURL, "/")

	cs := []checks.Check{
		{Name: "containers-running", Run: func(ctx context.Context) checks.Result {
			return checkContainers(ctx, opts)
		}},
		{Name: "gateway-health", Run: func(ctx context.Context) checks.Result {
			return checkEndpoint(ctx, httpClient, base+"/health")
		}},
		{Name: "downstream-health-via-gateway", Run: func(ctx context.Context) checks.Result {
			return checkEndpoint(ctx, httpClient, base+"/api/health")
		}},
		{Name: "api-port-isolated", Run: func(ctx context.Context) checks.Result {
			return checkPortIsolated(opts.Host, opts.APIPort, opts.DialTimeout, "downstream service")
		}},
		{Name: "datastore-port-isolated", Run: func(ctx context.Context) checks.Result {
			return checkPortIsolated(opts.Host, opts.DatastorePort, opts.DialTimeout, "data store")
		}},
		{Name: "shared-network", Run: func(ctx context.Context) checks.Result {
			return checkSharedNetwork(ctx, opts)
		}},
		{Name: "volume-exists", Run: func(ctx context.Context) checks.Result {
			if !opts.Docker.VolumeExists(ctx, opts.Volume) {
				return checks.Fail("", "volume %q not found", opts.Volume)
			}
			return checks.Pass("", "volume %q exists", opts.Volume)
		}},
		{Name: "container-health-status", Run: func(ctx context.Context) checks.Result {
			return checkHealthStatus(ctx, opts)
		}},
		{Name: "datastore-ping", Run: func(ctx context.Context) checks.Result {
			return checkDatastorePing(ctx, opts)
		}},
	}

	return checks.Suite{Name: SuiteName, Checks: cs}
}

func checkContainers(ctx context.Context, opts Options) checks.Result {
	running, err := opts.Docker.ContainerNames(ctx)
	if err != nil {
		return checks.Fail("", "cannot list containers: %v", err)
	}

	present := make(map[string]bool, len(running))
	for _, name := range running {
		present[name] = true
	}

	var missing []string
	for _, name := range opts.ExpectedContainers {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return checks.Fail("", "containers not running: %s", strings.Join(missing, ", "))
	}
	return checks.Pass("", "all %d expected containers running", len(opts.ExpectedContainers))
}

func checkEndpoint(ctx context.Context, client *http.Client, url string) checks.Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return checks.Fail("", "build request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return checks.Fail("", "GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return checks.Fail("", "GET %s returned %d", url, resp.StatusCode)
	}
	return checks.Pass("", "GET %s returned %d", url, resp.StatusCode)
}

// checkPortIsolated passes only when the dial fails: a private port that
// accepts a connection from outside the stack is a broken boundary.
func checkPortIsolated(host string, port int, timeout time.Duration, role string) checks.Result {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return checks.Pass("", "%s port %s not directly reachable", role, addr)
	}
	conn.Close()
	return checks.Fail("", "%s is directly reachable on %s; it must only be reachable through the gateway", role, addr)
}

func checkSharedNetwork(ctx context.Context, opts Options) checks.Result {
	shared := map[string]int{}
	for _, name := range opts.ExpectedContainers {
		ct, err := opts.Docker.Inspect(ctx, name)
		if err != nil {
			return checks.Fail("", "inspect %s: %v", name, err)
		}
		for _, network := range ct.Networks {
			shared[network]++
		}
	}

	for network, count := range shared {
		if count == len(opts.ExpectedContainers) {
			return checks.Pass("", "containers share network %q", network)
		}
	}
	return checks.Fail("", "no network is shared by all %d containers", len(opts.ExpectedContainers))
}

func checkHealthStatus(ctx context.Context, opts Options) checks.Result {
	var statuses []string
	for _, name := range opts.ExpectedContainers {
		ct, err := opts.Docker.Inspect(ctx, name)
		if err != nil {
			return checks.Fail("", "inspect %s: %v", name, err)
		}
		switch ct.HealthStatus {
		case "", "healthy":
			// Absent or healthy are both acceptable.
		default:
			return checks.Fail("", "%s health status is %q", name, ct.HealthStatus)
		}
		statuses = append(statuses, fmt.Sprintf("%s=%s", name, orAbsent(ct.HealthStatus)))
	}
	return checks.Pass("", "%s", strings.Join(statuses, ", "))
}

func checkDatastorePing(ctx context.Context, opts Options) checks.Result {
	user, okUser := opts.Env.Get(opts.UserKey)
	pass, okPass := opts.Env.Get(opts.PasswordKey)
	db, okDB := opts.Env.Get(opts.DatabaseKey)
	if !okUser || !okPass || !okDB {
		return checks.Fail("", "credentials missing from env file (%s, %s, %s required)",
			opts.UserKey, opts.PasswordKey, opts.DatabaseKey)
	}

	out, err := opts.Docker.Exec(ctx, opts.DatastoreContainer,
		"mongosh", "-u", user, "-p", pass, "--authenticationDatabase", "admin", "--quiet",
		"--eval", fmt.Sprintf("db.getSiblingDB(%q).runCommand({ping: 1})", db))
	if err != nil {
		msg := strings.TrimSpace(out.Stderr)
		if msg == "" {
			msg = err.Error()
		}
		return checks.Fail("", "authenticated ping failed: %s", msg)
	}
	return checks.Pass("", "data store answered authenticated ping for %q", db)
}

func orAbsent(status string) string {
	if status == "" {
		return "absent"
	}
	return status
}
