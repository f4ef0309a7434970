//go:build !windows

package process

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

type unixSignaler struct{}

func newPlatformSignaler() Signaler {
	return unixSignaler{}
}

func (unixSignaler) Terminate(pid int) error {
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return fmt.Errorf("send SIGTERM to %d: %w", pid, err)
	}
	return nil
}

func (unixSignaler) Kill(pid int) error {
	if err := unix.Kill(pid, unix.SIGKILL); err != nil {
		return fmt.Errorf("send SIGKILL to %d: %w", pid, err)
	}
	return nil
}

func (unixSignaler) Alive(ctx context.Context, pid int) bool {
	return alive(ctx, pid)
}
