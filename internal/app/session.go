// Package app wires discovery and termination together and hosts the
// console and interactive front ends.
package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/productdevbook/port-kill/internal/config"
	"github.com/productdevbook/port-kill/internal/container"
	"github.com/productdevbook/port-kill/internal/ignore"
	"github.com/productdevbook/port-kill/internal/killer"
	"github.com/productdevbook/port-kill/internal/monitor"
	"github.com/productdevbook/port-kill/internal/process"
	"github.com/productdevbook/port-kill/internal/scanner"
)

// Session is one monitoring session: the monitor and the kill controller
// sharing a single ignore configuration.
type Session struct {
	opts       config.Options
	ignore     ignore.Config
	monitor    *monitor.Monitor
	controller *killer.Controller
	log        *zap.Logger
}

// NewSession builds a Session on the host platform's providers. stored holds
// the persisted ignore lists, merged with the ones in opts.
func NewSession(opts config.Options, stored ignore.Config, interval time.Duration, log *zap.Logger, engineOpts ...killer.Option) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	ig := opts.Ignore().Merge(stored)
	identity := process.NewResolver()

	var containers monitor.Containers
	if opts.Docker {
		resolver := container.NewResolver(container.NewDocker(), log)
		containers = resolver
		engineOpts = append([]killer.Option{killer.WithContainers(resolver)}, engineOpts...)
	}

	mon := monitor.New(scanner.New(), identity, containers, monitor.Config{
		Ports:    opts.PortSet(),
		Ignore:   ig,
		Interval: interval,
	}, log)
	engine := killer.NewEngine(process.NewSignaler(), identity, ig, log, engineOpts...)
	ctl := killer.NewController(engine, killer.NewGuard(killer.DefaultCooldown), mon, log)

	return newSession(opts, ig, mon, ctl, log)
}

func newSession(opts config.Options, ig ignore.Config, mon *monitor.Monitor, ctl *killer.Controller, log *zap.Logger) *Session {
	return &Session{opts: opts, ignore: ig, monitor: mon, controller: ctl, log: log}
}

// Options returns the session options.
func (s *Session) Options() config.Options { return s.opts }

// Ignore returns the effective ignore configuration.
func (s *Session) Ignore() ignore.Config { return s.ignore }

// Monitor returns the session's monitor.
func (s *Session) Monitor() *monitor.Monitor { return s.monitor }

// Controller returns the session's kill controller.
func (s *Session) Controller() *killer.Controller { return s.controller }
