// Package dockercli introspects the container runtime through the docker
// CLI. Every call goes through an execx.Runner so the harness never binds to
// a daemon socket and tests can answer with canned output.
package dockercli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stackcheck/stackcheck/internal/execx"
)

// Container is the subset of `docker inspect` state the harness asserts on.
type Container struct {
	// Name is the container name without the leading slash.
	Name string

	// Running reports whether the container is currently running.
	Running bool

	// HealthStatus is the declared health-check status: "healthy",
	// "unhealthy", "starting", or empty when no health check is declared.
	HealthStatus string

	// Networks lists the names of the networks the container is attached to.
	Networks []string
}

// Client wraps the docker CLI.
type Client struct {
	runner execx.Runner
}

// New builds a Client over the given runner.
func New(runner execx.Runner) *Client {
	return &Client{runner: runner}
}

// ContainerNames lists the names of all running containers.
func (c *Client) ContainerNames(ctx context.Context) ([]string, error) {
	out, err := c.runner.Run(ctx, "docker", "ps", "--format", "{{.Names}}")
	if err != nil {
		return nil, fmt.Errorf("docker ps: %w", err)
	}

	var names []string
	for _, line := range strings.Split(out.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// inspectState mirrors the fields of `docker inspect` output we decode.
type inspectState struct {
	Name  string `json:"Name"`
	State struct {
		Running bool `json:"Running"`
		Health  *struct {
			Status string `json:"Status"`
		} `json:"Health"`
	} `json:"State"`
	NetworkSettings struct {
		Networks map[string]json.RawMessage `json:"Networks"`
	} `json:"NetworkSettings"`
}

// Inspect returns the state of one container by name.
func (c *Client) Inspect(ctx context.Context, name string) (Container, error) {
	out, err := c.runner.Run(ctx, "docker", "inspect", name)
	if err != nil {
		return Container{}, fmt.Errorf("docker inspect %s: %w", name, err)
	}

	var states []inspectState
	if err := json.Unmarshal([]byte(out.Stdout), &states); err != nil {
		return Container{}, fmt.Errorf("decode inspect output for %s: %w", name, err)
	}
	if len(states) == 0 {
		return Container{}, fmt.Errorf("no such container: %s", name)
	}

	st := states[0]
	ct := Container{
		Name:    strings.TrimPrefix(st.Name, "/"),
		Running: st.State.Running,
	}
	if st.State.Health != nil {
		ct.HealthStatus = st.State.Health.Status
	}
	for network := range st.NetworkSettings.Networks {
		ct.Networks = append(ct.Networks, network)
	}
	return ct, nil
}

// VolumeExists reports whether a named volume is known to the runtime.
func (c *Client) VolumeExists(ctx context.Context, name string) bool {
	_, err := c.runner.Run(ctx, "docker", "volume", "inspect", name)
	return err == nil
}

// ImageSize returns the size in bytes of a locally built image, or an error
// when the image does not exist.
func (c *Client) ImageSize(ctx context.Context, ref string) (int64, error) {
	out, err := c.runner.Run(ctx, "docker", "image", "inspect", ref, "--format", "{{.Size}}")
	if err != nil {
		return 0, fmt.Errorf("docker image inspect %s: %w", ref, err)
	}

	var size int64
	if _, err := fmt.Sscanf(strings.TrimSpace(out.Stdout), "%d", &size); err != nil {
		return 0, fmt.Errorf("parse image size %q: %w", out.Stdout, err)
	}
	return size, nil
}

// Exec runs a command inside a container and returns its captured output.
func (c *Client) Exec(ctx context.Context, container string, cmd ...string) (execx.Output, error) {
	args := append([]string{"exec", container}, cmd...)
	return c.runner.Run(ctx, "docker", args...)
}
