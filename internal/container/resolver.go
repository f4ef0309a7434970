package container

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultStopTimeout is how long a container gets to stop before the engine kills it.
const DefaultStopTimeout = 10 * time.Second

// Info identifies the container owning a process.
type Info struct {
	ID   string
	Name string
}

// Resolver answers which container, if any, runs a host process. Lookups are
// best-effort: any engine failure reads as "no container".
type Resolver struct {
	runtime     Runtime
	stopTimeout time.Duration
	log         *zap.Logger
}

// NewResolver creates a Resolver over rt.
func NewResolver(rt Runtime, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		runtime:     rt,
		stopTimeout: DefaultStopTimeout,
		log:         log.Named("container"),
	}
}

// Lookup returns the container running pid.
func (r *Resolver) Lookup(ctx context.Context, pid int) (Info, bool) {
	info, ok := r.Index(ctx, []int{pid})[pid]
	return info, ok
}

// Index maps each of pids to the container running it, omitting pids that
// run on the host. When several containers list the same pid the first one
// in the engine's listing order wins; that order is not guaranteed.
func (r *Resolver) Index(ctx context.Context, pids []int) map[int]Info {
	result := make(map[int]Info)
	if len(pids) == 0 {
		return result
	}

	wanted := make(map[int]bool, len(pids))
	for _, pid := range pids {
		wanted[pid] = true
	}

	ids, err := r.runtime.Running(ctx)
	if err != nil {
		r.log.Debug("container listing failed", zap.Error(err))
		return result
	}

	names := make(map[string]string)
	for _, id := range ids {
		members, err := r.runtime.Processes(ctx, id)
		if err != nil {
			r.log.Debug("container process listing failed", zap.String("container", id), zap.Error(err))
			continue
		}
		for _, pid := range members {
			if !wanted[pid] {
				continue
			}
			if _, taken := result[pid]; taken {
				continue
			}
			name, ok := names[id]
			if !ok {
				name = r.name(ctx, id)
				names[id] = name
			}
			result[pid] = Info{ID: id, Name: name}
		}
		if len(result) == len(wanted) {
			break
		}
	}

	return result
}

// name resolves a container name, falling back to the id.
func (r *Resolver) name(ctx context.Context, id string) string {
	name, err := r.runtime.Name(ctx, id)
	if err != nil || name == "" {
		return id
	}
	return strings.TrimPrefix(name, "/")
}

// Stop stops a container gracefully, bounded by the stop timeout.
func (r *Resolver) Stop(ctx context.Context, id string) error {
	// leave the engine room to kill the container itself before giving up
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout+5*time.Second)
	defer cancel()
	return r.runtime.Stop(ctx, id, r.stopTimeout)
}

// Remove force-removes a container.
func (r *Resolver) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()
	return r.runtime.Remove(ctx, id)
}
