package process

import (
	"context"

	gopsProcess "github.com/shirou/gopsutil/v4/process"
)

// Signaler delivers termination signals to host processes.
type Signaler interface {
	// Terminate asks the process to shut down cleanly.
	Terminate(pid int) error
	// Kill ends the process without giving it a chance to clean up.
	Kill(pid int) error
	// Alive reports whether pid is still present in the process table.
	Alive(ctx context.Context, pid int) bool
}

// NewSignaler returns the Signaler for the host platform.
func NewSignaler() Signaler {
	return newPlatformSignaler()
}

func alive(ctx context.Context, pid int) bool {
	exists, err := gopsProcess.PidExistsWithContext(ctx, int32(pid))
	if err != nil {
		return false
	}
	return exists
}
