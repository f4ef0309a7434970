// Package container maps host processes to the containers running them and
// tears those containers down.
package container

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/runtime.go -package=mocks . Runtime

// Runtime is the slice of a container engine the resolver needs. Every call
// is synchronous and may fail.
type Runtime interface {
	// Running lists the ids of running containers.
	Running(ctx context.Context) ([]string, error)
	// Processes lists the host pids inside a container.
	Processes(ctx context.Context, id string) ([]int, error)
	// Name resolves a container id to its name as the engine reports it.
	Name(ctx context.Context, id string) (string, error)
	// Stop stops a container, waiting up to timeout before the engine kills it.
	Stop(ctx context.Context, id string, timeout time.Duration) error
	// Remove force-removes a container.
	Remove(ctx context.Context, id string) error
}
