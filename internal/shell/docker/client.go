package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// =============================================================================
// Docker Client Implementation
// =============================================================================

// DockerClient implements the Client interface using the Docker SDK.
type DockerClient struct {
	cli *client.Client
}

// NewDockerClient creates a new Docker client.
// If host is empty, it uses the default Docker host from environment.
// On macOS with Docker Desktop, it automatically detects the correct socket.
func NewDockerClient(host string) (*DockerClient, error) {
	var opts []client.Opt
	opts = append(opts, client.FromEnv)
	opts = append(opts, client.WithAPIVersionNegotiation())

	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewDockerError("NewDockerClient", "", "", "failed to create client", ErrConnectionFailed)
	}

	// Try to ping with default settings
	ctx := context.Background()
	if _, pingErr := cli.Ping(ctx); pingErr != nil {
		// If default socket fails, try Docker Desktop socket on macOS
		homeDir, _ := os.UserHomeDir()
		dockerDesktopSocket := "unix://" + homeDir + "/.docker/run/docker.sock"

		cli2, err2 := client.NewClientWithOpts(
			client.WithHost(dockerDesktopSocket),
			client.WithAPIVersionNegotiation(),
		)
		if err2 == nil {
			if _, pingErr2 := cli2.Ping(ctx); pingErr2 == nil {
				cli.Close()
				return &DockerClient{cli: cli2}, nil
			}
			cli2.Close()
		}
	}

	return &DockerClient{cli: cli}, nil
}

// Ping checks if the Docker daemon is reachable.
func (d *DockerClient) Ping(ctx context.Context) error {
	_, err := d.cli.Ping(ctx)
	if err != nil {
		return NewDockerError("Ping", "", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return nil
}

// Close closes the Docker client connection.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// =============================================================================
// Container Logs
// =============================================================================

// StreamLogs copies logs from a container into dst. Containers running
// without a TTY multiplex stdout and stderr into one stream, so the
// stream is demuxed before writing. Cancelling the context ends a
// follow cleanly.
func (d *DockerClient) StreamLogs(ctx context.Context, containerID string, opts LogOptions, dst io.Writer) error {
	inspect, err := d.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewDockerError("StreamLogs", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return NewDockerError("StreamLogs", "container", containerID, err.Error(), err)
	}

	reader, err := d.cli.ContainerLogs(ctx, containerID, logsOptions(opts))
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewDockerError("StreamLogs", "container", containerID, "container not found", ErrContainerNotFound)
		}
		return NewDockerError("StreamLogs", "container", containerID, err.Error(), err)
	}
	defer reader.Close()

	if inspect.Config != nil && inspect.Config.Tty {
		_, err = io.Copy(dst, reader)
	} else {
		_, err = stdcopy.StdCopy(dst, dst, reader)
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return NewDockerError("StreamLogs", "container", containerID, err.Error(), err)
	}
	return nil
}

// logsOptions maps LogOptions onto the SDK options, always capturing
// both output streams.
func logsOptions(opts LogOptions) container.LogsOptions {
	return container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     opts.Follow,
		Tail:       opts.Tail,
	}
}

// =============================================================================
// Global Cleanup
// =============================================================================

// RemoveImagesMatching removes local images whose reference matches one
// of the patterns. Images that cannot be removed (in use, shared
// layers) are skipped. Returns the references that were removed.
func (d *DockerClient) RemoveImagesMatching(ctx context.Context, patterns []string) ([]string, error) {
	var removed []string
	for _, pattern := range patterns {
		f := filters.NewArgs(filters.Arg("reference", pattern))
		images, err := d.cli.ImageList(ctx, image.ListOptions{Filters: f})
		if err != nil {
			if ctx.Err() != nil {
				return removed, NewDockerError("RemoveImagesMatching", "image", pattern, err.Error(), err)
			}
			continue
		}

		for _, img := range images {
			for _, tag := range img.RepoTags {
				if _, err := d.cli.ImageRemove(ctx, tag, image.RemoveOptions{}); err != nil {
					continue
				}
				removed = append(removed, tag)
			}
		}
	}
	return removed, nil
}

// PruneVolumes removes all unused local volumes. Returns the names of
// the volumes that were deleted.
func (d *DockerClient) PruneVolumes(ctx context.Context) ([]string, error) {
	report, err := d.cli.VolumesPrune(ctx, filters.NewArgs())
	if err != nil {
		return nil, NewDockerError("PruneVolumes", "volume", "", err.Error(), err)
	}
	return report.VolumesDeleted, nil
}
