// Package ignore holds the user-configured exclusions applied to discovered
// and targeted processes.
package ignore

import (
	"slices"
	"strconv"
	"strings"
)

// Config is the set of ports and process names that are never shown or killed.
// Process names match exactly and case-sensitively.
type Config struct {
	ports     map[uint16]struct{}
	processes map[string]struct{}
}

// New builds a Config. Blank process names are dropped.
func New(ports []uint16, processes []string) Config {
	c := Config{
		ports:     make(map[uint16]struct{}, len(ports)),
		processes: make(map[string]struct{}, len(processes)),
	}
	for _, p := range ports {
		c.ports[p] = struct{}{}
	}
	for _, name := range processes {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c.processes[name] = struct{}{}
	}
	return c
}

// Merge returns a Config ignoring everything either c or other ignores.
func (c Config) Merge(other Config) Config {
	return New(append(c.Ports(), other.Ports()...), append(c.Processes(), other.Processes()...))
}

// Port reports whether port is ignored.
func (c Config) Port(port uint16) bool {
	_, ok := c.ports[port]
	return ok
}

// Process reports whether the display name is ignored.
func (c Config) Process(name string) bool {
	_, ok := c.processes[name]
	return ok
}

// Ignores reports whether a binding of name on port must be excluded.
func (c Config) Ignores(port uint16, name string) bool {
	return c.Port(port) || c.Process(name)
}

// Empty reports whether nothing is ignored.
func (c Config) Empty() bool {
	return len(c.ports) == 0 && len(c.processes) == 0
}

// Ports returns the ignored ports in ascending order.
func (c Config) Ports() []uint16 {
	ports := make([]uint16, 0, len(c.ports))
	for p := range c.ports {
		ports = append(ports, p)
	}
	slices.Sort(ports)
	return ports
}

// Processes returns the ignored process names in lexical order.
func (c Config) Processes() []string {
	names := make([]string, 0, len(c.processes))
	for name := range c.processes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c Config) String() string {
	var parts []string
	if len(c.ports) > 0 {
		ports := c.Ports()
		s := make([]string, len(ports))
		for i, p := range ports {
			s[i] = strconv.Itoa(int(p))
		}
		parts = append(parts, "ignoring ports: "+strings.Join(s, ", "))
	}
	if len(c.processes) > 0 {
		parts = append(parts, "ignoring processes: "+strings.Join(c.Processes(), ", "))
	}
	return strings.Join(parts, ", ")
}
