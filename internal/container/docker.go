package container

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

type dockerRuntime struct {
	client     *client.Client
	clientOnce sync.Once
	clientErr  error
}

// NewDocker returns a Docker backed runtime. The client is created on first use
// so a missing daemon only surfaces as lookup failures.
func NewDocker() Runtime {
	return &dockerRuntime{}
}

func (r *dockerRuntime) getClient() (*client.Client, error) {
	r.clientOnce.Do(func() {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			r.clientErr = err
			return
		}
		r.client = cli
	})
	return r.client, r.clientErr
}

func (r *dockerRuntime) Running(ctx context.Context) ([]string, error) {
	cli, err := r.getClient()
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	containers, err := cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}

	ids := make([]string, 0, len(containers))
	for _, c := range containers {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *dockerRuntime) Processes(ctx context.Context, id string) ([]int, error) {
	cli, err := r.getClient()
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	top, err := cli.ContainerTop(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", id, err)
	}

	return topPIDs(top.Titles, top.Processes)
}

// topPIDs extracts the PID column of a `docker top` table.
func topPIDs(titles []string, rows [][]string) ([]int, error) {
	col := -1
	for i, title := range titles {
		if title == "PID" {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, errors.New("top output has no PID column")
	}

	pids := make([]int, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		pid, err := strconv.Atoi(row[col])
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

func (r *dockerRuntime) Name(ctx context.Context, id string) (string, error) {
	cli, err := r.getClient()
	if err != nil {
		return "", fmt.Errorf("create docker client: %w", err)
	}

	info, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", fmt.Errorf("inspect %s: %w", id, err)
	}
	if info.ContainerJSONBase == nil {
		return "", fmt.Errorf("inspect %s: empty response", id)
	}
	return info.Name, nil
}

func (r *dockerRuntime) Stop(ctx context.Context, id string, timeout time.Duration) error {
	cli, err := r.getClient()
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}

	sec := int(timeout.Seconds())
	if err := cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &sec}); err != nil {
		return fmt.Errorf("stop %s: %w", id, err)
	}
	return nil
}

func (r *dockerRuntime) Remove(ctx context.Context, id string) error {
	cli, err := r.getClient()
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}

	if err := cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}
