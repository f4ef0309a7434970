// Package killer terminates the processes holding monitored ports.
package killer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/productdevbook/port-kill/internal/container"
	"github.com/productdevbook/port-kill/internal/ignore"
	"github.com/productdevbook/port-kill/internal/monitor"
	"github.com/productdevbook/port-kill/internal/process"
)

// DefaultGrace is how long a process gets to exit after the graceful signal.
const DefaultGrace = 500 * time.Millisecond

// Containers resolves and tears down the container running a process.
type Containers interface {
	Lookup(ctx context.Context, pid int) (container.Info, bool)
	Stop(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// Engine terminates one process at a time: ignore check, then either
// container teardown or a graceful signal escalated to a forceful one.
type Engine struct {
	signals    process.Signaler
	identity   process.Resolver
	containers Containers
	ignore     ignore.Config
	grace      time.Duration
	force      bool
	sleep      func(ctx context.Context, d time.Duration) error
	log        *zap.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithContainers enables container-aware termination.
func WithContainers(c Containers) Option {
	return func(e *Engine) { e.containers = c }
}

// WithGrace sets the wait between the graceful signal and the liveness check.
func WithGrace(d time.Duration) Option {
	return func(e *Engine) { e.grace = d }
}

// WithForce skips the graceful signal and kills outright.
func WithForce(force bool) Option {
	return func(e *Engine) { e.force = force }
}

// NewEngine creates an Engine.
func NewEngine(signals process.Signaler, identity process.Resolver, ig ignore.Config, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		signals:  signals,
		identity: identity,
		ignore:   ig,
		grace:    DefaultGrace,
		sleep:    sleep,
		log:      log.Named("killer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// KillAll terminates every process of snap in port order. A process bound to
// several ports is terminated once. Failures do not stop the batch.
func (e *Engine) KillAll(ctx context.Context, snap monitor.Snapshot) []Outcome {
	var (
		order []int
		ports = make(map[int][]uint16)
		names = make(map[int]string)
	)
	for _, b := range snap.Sorted() {
		if _, ok := ports[b.PID]; !ok {
			order = append(order, b.PID)
			names[b.PID] = b.Name
		}
		ports[b.PID] = append(ports[b.PID], b.Port)
	}

	outcomes := make([]Outcome, 0, len(order))
	for _, pid := range order {
		outcomes = append(outcomes, e.KillNamed(ctx, pid, ports[pid], names[pid]))
	}
	return outcomes
}

// KillOne terminates pid, known to hold ports.
func (e *Engine) KillOne(ctx context.Context, pid int, ports []uint16) Outcome {
	return e.KillNamed(ctx, pid, ports, "")
}

// KillNamed terminates pid, known to hold ports. seen is the name discovery
// reported for it; it stands in when the process table has no entry.
func (e *Engine) KillNamed(ctx context.Context, pid int, ports []uint16, seen string) Outcome {
	out := Outcome{PID: pid, Ports: slices.Clone(ports)}
	log := e.log.With(zap.Int("pid", pid))

	// The name is looked up again: the discovery-time name may be stale.
	out.Name = e.identity.Resolve(ctx, pid).Name
	if out.Name == process.Unknown && seen != "" {
		out.Name = seen
	}
	if e.ignore.Process(out.Name) {
		return e.skip(log, out, fmt.Sprintf("process name %q is ignored", out.Name))
	}
	for _, port := range ports {
		if e.ignore.Port(port) {
			return e.skip(log, out, fmt.Sprintf("port %d is ignored", port))
		}
	}

	if e.containers != nil {
		if info, ok := e.containers.Lookup(ctx, pid); ok {
			return e.teardown(ctx, log.With(zap.String("container", info.Name)), info, out)
		}
	}

	return e.signal(ctx, log, out)
}

func (e *Engine) skip(log *zap.Logger, out Outcome, reason string) Outcome {
	log.Info("not killing ignored process", zap.String("reason", reason))
	out.Status = Skipped
	out.Reason = reason
	return out
}

// teardown stops the container owning the process, force-removing it when
// the stop fails. The process itself is never signalled.
func (e *Engine) teardown(ctx context.Context, log *zap.Logger, info container.Info, out Outcome) Outcome {
	log.Info("process runs in a container, stopping container")

	stopErr := e.containers.Stop(ctx, info.ID)
	if stopErr == nil {
		log.Info("container stopped gracefully")
		out.Status = Killed
		return out
	}

	log.Warn("graceful stop failed, force removing container", zap.Error(stopErr))
	if err := e.containers.Remove(ctx, info.ID); err != nil {
		log.Error("failed to remove container", zap.Error(err))
		out.Status = Failed
		out.Err = fmt.Errorf("stop container %s: %v; remove: %w", info.ID, stopErr, err)
		return out
	}

	log.Info("container force removed")
	out.Status = Killed
	return out
}

func (e *Engine) signal(ctx context.Context, log *zap.Logger, out Outcome) Outcome {
	pid := out.PID

	if !e.force {
		if err := e.signals.Terminate(pid); err != nil {
			// the process may already be gone; the liveness check decides
			log.Warn("failed to send graceful terminate", zap.Error(err))
		} else {
			log.Info("sent graceful terminate")
		}

		if err := e.sleep(ctx, e.grace); err != nil {
			out.Status = Failed
			out.Err = err
			return out
		}

		if !e.signals.Alive(ctx, pid) {
			log.Info("process terminated gracefully")
			out.Status = Killed
			return out
		}
		log.Warn("process still running after graceful terminate, killing")
	}

	if err := e.signals.Kill(pid); err != nil {
		log.Error("failed to kill process", zap.Error(err))
		out.Status = Failed
		out.Err = err
		return out
	}

	log.Info("sent forceful terminate")
	out.Status = Killed
	return out
}
