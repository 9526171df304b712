// Package sandbox launches containerized agent targets for the duration
// of a test run. A scenario that declares an image gets a fresh container
// with its port published on localhost, torn down when the run finishes.
package sandbox

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/network"
	"github.com/moby/moby/client"

	"github.com/Liquescent-Development/mcprobe/internal/scenario"
)

const startupTimeout = 30 * time.Second

// Target is a running containerized agent.
type Target struct {
	containerID string
	baseURL     string
	cli         *client.Client
}

// BaseURL is the localhost address the agent listens on.
func (t *Target) BaseURL() string { return t.baseURL }

// Start launches the scenario's target image and waits for its port to
// accept connections. Callers must Stop the target when done.
func Start(ctx context.Context, target *scenario.Target) (*Target, error) {
	if target == nil || target.Image == "" {
		return nil, fmt.Errorf("scenario has no container target")
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}

	hostPort, err := findFreePort()
	if err != nil {
		cli.Close()
		return nil, err
	}

	envSlice := make([]string, 0, len(target.Env))
	for k, v := range target.Env {
		envSlice = append(envSlice, k+"="+v)
	}

	exposed, bindings := portConfig(target.Port, hostPort)
	initTrue := true

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:        target.Image,
			Env:          envSlice,
			ExposedPorts: exposed,
			Labels:       map[string]string{"mcprobe": "true"},
		},
		HostConfig: &container.HostConfig{
			Init:         &initTrue,
			PortBindings: bindings,
		},
	})
	if err != nil {
		cli.Close()
		return nil, fmt.Errorf("creating container: %w", err)
	}

	t := &Target{
		containerID: createResp.ID,
		baseURL:     fmt.Sprintf("http://127.0.0.1:%d", hostPort),
		cli:         cli,
	}

	if _, err := cli.ContainerStart(ctx, t.containerID, client.ContainerStartOptions{}); err != nil {
		t.Stop()
		return nil, fmt.Errorf("starting container: %w", err)
	}
	if err := waitForPort(hostPort, startupTimeout); err != nil {
		t.Stop()
		return nil, fmt.Errorf("agent container did not become ready: %w", err)
	}
	return t, nil
}

// Stop kills and removes the container. Safe to call more than once.
func (t *Target) Stop() {
	if t.cli == nil {
		return
	}
	ctx := context.Background()
	t.cli.ContainerKill(ctx, t.containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
	t.cli.ContainerRemove(ctx, t.containerID, client.ContainerRemoveOptions{Force: true})
	t.cli.Close()
	t.cli = nil
}

// portConfig publishes the container's TCP port on the loopback interface
// at the given host port.
func portConfig(containerPort, hostPort int) (network.PortSet, network.PortMap) {
	port := network.MustParsePort(fmt.Sprintf("%d/tcp", containerPort))
	exposed := network.PortSet{port: struct{}{}}
	bindings := network.PortMap{
		port: []network.PortBinding{
			{HostIP: netip.MustParseAddr("127.0.0.1"), HostPort: fmt.Sprintf("%d", hostPort)},
		},
	}
	return exposed, bindings
}

func findFreePort() (int, error) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, fmt.Errorf("finding free port: %w", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port, nil
}

func waitForPort(port int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", fmt.Sprintf("localhost:%d", port), time.Second)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("port %d not ready after %s", port, timeout)
}
