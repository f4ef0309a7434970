// Package monitor discovers which processes hold the monitored ports and
// publishes a new snapshot whenever that mapping changes.
package monitor

import (
	"cmp"
	"context"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/productdevbook/port-kill/internal/container"
	"github.com/productdevbook/port-kill/internal/ignore"
	"github.com/productdevbook/port-kill/internal/process"
	"github.com/productdevbook/port-kill/internal/scanner"
)

// Scan intervals of the two front ends.
const (
	ConsoleInterval     = 2 * time.Second
	InteractiveInterval = 5 * time.Second
)

// Containers maps pids to the containers running them.
type Containers interface {
	Index(ctx context.Context, pids []int) map[int]container.Info
}

// Config configures a Monitor.
type Config struct {
	Ports    scanner.PortSet
	Ignore   ignore.Config
	Interval time.Duration
	// Buffer is the number of unread snapshots kept for the subscriber.
	Buffer int
}

// Monitor periodically scans the monitored ports.
type Monitor struct {
	scanner    scanner.Scanner
	identity   process.Resolver
	containers Containers
	cfg        Config

	detector *Detector
	notifier *Notifier
	ignored  atomic.Int64
	log      *zap.Logger
}

// New creates a Monitor. containers may be nil to disable container lookups.
func New(s scanner.Scanner, identity process.Resolver, containers Containers, cfg Config, log *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = ConsoleInterval
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultBuffer
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		scanner:    s,
		identity:   identity,
		containers: containers,
		cfg:        cfg,
		detector:   NewDetector(),
		notifier:   NewNotifier(cfg.Buffer),
		log:        log.Named("monitor"),
	}
}

// Updates delivers each changed snapshot. Slow readers may miss intermediate ones.
func (m *Monitor) Updates() <-chan Snapshot {
	return m.notifier.Updates()
}

// Current returns the last published snapshot.
func (m *Monitor) Current() Snapshot {
	return m.detector.Current()
}

// Ignored is the number of listeners the ignore rules excluded in the last
// scan cycle. One-off scans made through Scan leave it untouched.
func (m *Monitor) Ignored() int {
	return int(m.ignored.Load())
}

// Run scans every interval until ctx is done. A scan never overlaps the
// previous one: the wait starts after publication.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("starting process monitoring",
		zap.Int("ports", m.cfg.Ports.Len()),
		zap.String("query", m.cfg.Ports.Arg()),
		zap.Duration("interval", m.cfg.Interval))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("process monitoring stopped")
			return nil
		case <-timer.C:
		}

		m.Tick(ctx)
		timer.Reset(m.cfg.Interval)
	}
}

// Tick runs one scan cycle and publishes the result if it changed.
func (m *Monitor) Tick(ctx context.Context) bool {
	snap, ignored := m.scan(ctx)
	m.ignored.Store(int64(ignored))
	if !m.detector.Observe(snap) {
		return false
	}
	m.log.Info("process update",
		zap.Int("processes", len(snap)),
		zap.Uint64("generation", m.detector.Generation()))
	m.notifier.Publish(snap)
	if dropped := m.notifier.Dropped(); dropped > 0 {
		m.log.Debug("subscriber is behind, oldest updates dropped", zap.Uint64("dropped", dropped))
	}
	return true
}

// Scan discovers the current bindings. Ignored ports are dropped before their
// process is looked up and ignored processes before their container is.
// Discovery failures yield an empty snapshot.
func (m *Monitor) Scan(ctx context.Context) Snapshot {
	snap, _ := m.scan(ctx)
	return snap
}

// scan returns the filtered bindings and how many listeners were ignored.
func (m *Monitor) scan(ctx context.Context) (Snapshot, int) {
	ports, err := m.scanner.Scan(ctx, m.cfg.Ports)
	if err != nil {
		m.log.Warn("failed to scan processes", zap.Error(err))
		return Snapshot{}, 0
	}

	slices.SortFunc(ports, func(a, b scanner.Port) int {
		return cmp.Or(cmp.Compare(a.Port, b.Port), cmp.Compare(a.PID, b.PID))
	})

	var (
		snap       = make(Snapshot)
		skipped    int
		identities = make(map[int]process.Identity)
	)
	for _, p := range ports {
		if _, dup := snap[p.Port]; dup || !m.cfg.Ports.Contains(p.Port) {
			continue
		}
		if m.cfg.Ignore.Port(p.Port) {
			skipped++
			m.log.Debug("ignoring port", zap.Uint16("port", p.Port), zap.Int("pid", p.PID))
			continue
		}

		id, ok := identities[p.PID]
		if !ok {
			id = m.resolve(ctx, p)
			identities[p.PID] = id
		}
		snap[p.Port] = Binding{Port: p.Port, PID: p.PID, Command: id.Command, Name: id.Name}
	}

	kept := Filter(snap, m.cfg.Ignore)
	ignored := skipped + len(snap) - len(kept)

	if m.containers != nil && len(kept) > 0 {
		pids := make([]int, 0, len(kept))
		for _, b := range kept {
			pids = append(pids, b.PID)
		}
		owners := m.containers.Index(ctx, pids)
		for port, b := range kept {
			if owner, ok := owners[b.PID]; ok {
				b.ContainerID, b.ContainerName = owner.ID, owner.Name
				kept[port] = b
			}
		}
	}
	return kept, ignored
}

// resolve looks up the identity of a listener, falling back to the name the
// scanner reported when the process table has nothing.
func (m *Monitor) resolve(ctx context.Context, p scanner.Port) process.Identity {
	id := m.identity.Resolve(ctx, p.PID)
	if id.Command == process.Unknown && p.Process != "" {
		return process.Identity{Command: p.Process, Name: process.DisplayName(p.Process)}
	}
	return id
}
