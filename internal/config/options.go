package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/productdevbook/port-kill/internal/ignore"
	"github.com/productdevbook/port-kill/internal/scanner"
)

// ErrInvalidOptions is wrapped by every validation failure.
var ErrInvalidOptions = errors.New("invalid options")

// Log levels accepted by --log-level.
var LogLevels = []string{"info", "warn", "error", "none"}

// Options are the settings of one monitoring session.
type Options struct {
	StartPort uint16
	EndPort   uint16
	// Ports overrides the start/end range when PortsSet is true.
	Ports           []uint
	PortsSet        bool
	IgnorePorts     []uint
	IgnoreProcesses []string

	Console  bool
	Verbose  bool
	Docker   bool
	ShowPID  bool
	JSON     bool
	LogLevel string
	LogFile  string
}

// DefaultOptions mirrors the flag defaults.
func DefaultOptions() Options {
	return Options{StartPort: 2000, EndPort: 6000, LogLevel: "info"}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}

// Validate checks the options for consistency.
func (o Options) Validate() error {
	if o.StartPort > o.EndPort {
		return invalid("start port cannot be greater than end port")
	}

	if o.PortsSet {
		if len(o.Ports) == 0 {
			return invalid("at least one port must be specified")
		}
		for _, p := range o.Ports {
			if p == 0 || p > 65535 {
				return invalid("port %d is not valid", p)
			}
		}
	}

	for _, p := range o.IgnorePorts {
		if p == 0 || p > 65535 {
			return invalid("ignore port %d is not valid", p)
		}
	}

	for _, name := range o.IgnoreProcesses {
		if strings.TrimSpace(name) == "" {
			return invalid("ignore process names cannot be empty")
		}
	}

	if !slices.Contains(LogLevels, o.LogLevel) {
		return invalid("log level %q must be one of %s", o.LogLevel, strings.Join(LogLevels, ", "))
	}

	return nil
}

// PortsToMonitor lists the monitored ports, ascending.
func (o Options) PortsToMonitor() []uint16 {
	return o.PortSet().Ports()
}

// PortSet is the monitored port set.
func (o Options) PortSet() scanner.PortSet {
	if !o.PortsSet {
		return scanner.PortRange(o.StartPort, o.EndPort)
	}
	ports := make([]uint16, 0, len(o.Ports))
	for _, p := range o.Ports {
		ports = append(ports, uint16(p))
	}
	return scanner.NewPortSet(ports)
}

// Ignore is the ignore configuration given on the command line.
func (o Options) Ignore() ignore.Config {
	ports := make([]uint16, 0, len(o.IgnorePorts))
	for _, p := range o.IgnorePorts {
		ports = append(ports, uint16(p))
	}
	return ignore.New(ports, o.IgnoreProcesses)
}

// Description summarizes what is monitored, in the order the user gave it.
func (o Options) Description() string {
	var description string
	if o.PortsSet {
		description = "specific ports: " + joinUints(o.Ports)
	} else {
		description = fmt.Sprintf("port range: %d-%d", o.StartPort, o.EndPort)
	}

	var info []string
	if len(o.IgnorePorts) > 0 {
		info = append(info, "ignoring ports: "+joinUints(o.IgnorePorts))
	}
	if len(o.IgnoreProcesses) > 0 {
		info = append(info, "ignoring processes: "+strings.Join(o.IgnoreProcesses, ", "))
	}
	if len(info) > 0 {
		description += " (" + strings.Join(info, ", ") + ")"
	}
	return description
}

func joinUints(values []uint) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, ", ")
}
