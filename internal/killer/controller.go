package killer

import (
	"context"

	"go.uber.org/zap"

	"github.com/productdevbook/port-kill/internal/monitor"
)

// Targets supplies the processes a request may act on.
type Targets interface {
	// Scan performs a fresh, filtered discovery.
	Scan(ctx context.Context) monitor.Snapshot
	// Current is the last published snapshot.
	Current() monitor.Snapshot
}

// Controller runs kill requests through the Guard.
type Controller struct {
	engine  *Engine
	guard   *Guard
	targets Targets
	results chan Batch
	log     *zap.Logger
}

// NewController creates a Controller.
func NewController(engine *Engine, guard *Guard, targets Targets, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		engine:  engine,
		guard:   guard,
		targets: targets,
		results: make(chan Batch, 8),
		log:     log.Named("controller"),
	}
}

// Guard exposes the controller's guard so front ends can hold back refreshes.
func (c *Controller) Guard() *Guard {
	return c.guard
}

// Results delivers the batches started with Dispatch.
func (c *Controller) Results() <-chan Batch {
	return c.results
}

// Execute runs req and returns its batch. A request arriving while another
// batch is active returns a rejected batch without doing anything.
func (c *Controller) Execute(ctx context.Context, req Request) Batch {
	release, ok := c.guard.Acquire()
	if !ok {
		return c.rejected(req)
	}
	defer release()
	return c.run(ctx, req)
}

// Dispatch starts req in the background and reports whether it was
// admitted. Every call, admitted or not, produces one batch on Results.
func (c *Controller) Dispatch(ctx context.Context, req Request) bool {
	release, ok := c.guard.Acquire()
	if !ok {
		c.deliver(c.rejected(req))
		return false
	}

	go func() {
		defer release()
		c.deliver(c.run(ctx, req))
	}()
	return true
}

func (c *Controller) rejected(req Request) Batch {
	c.log.Info("kill request ignored, another batch is in flight", zap.Stringer("request", req))
	return Batch{Request: req, Rejected: true}
}

func (c *Controller) run(ctx context.Context, req Request) Batch {
	batch := Batch{Request: req}

	if req.All {
		snap := c.targets.Scan(ctx)
		c.log.Info("killing all monitored processes", zap.Int("processes", len(snap)))
		batch.Outcomes = c.engine.KillAll(ctx, snap)
	} else {
		ports, name := req.Ports, req.Name
		if len(ports) == 0 || name == "" {
			current := c.targets.Current()
			if len(ports) == 0 {
				ports = current.PortsOf(req.PID)
			}
			if name == "" {
				name = current.NameOf(req.PID)
			}
		}
		c.log.Info("killing single process", zap.Int("pid", req.PID), zap.Uint16s("ports", ports))
		batch.Outcomes = []Outcome{c.engine.KillNamed(ctx, req.PID, ports, name)}
	}

	if err := batch.Err(); err != nil {
		c.log.Error("kill request finished with failures", zap.Error(err))
	} else {
		c.log.Info("kill request finished", zap.Int("outcomes", len(batch.Outcomes)))
	}
	return batch
}

func (c *Controller) deliver(b Batch) {
	select {
	case c.results <- b:
	default:
		c.log.Warn("dropping kill result, nobody is reading", zap.Stringer("request", b.Request))
	}
}
