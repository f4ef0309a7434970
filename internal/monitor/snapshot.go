package monitor

import (
	"maps"
	"slices"

	"github.com/productdevbook/port-kill/internal/ignore"
)

// Binding is the process bound to one monitored port.
type Binding struct {
	Port          uint16 `json:"port"`
	PID           int    `json:"pid"`
	Command       string `json:"command"`
	Name          string `json:"name"`
	ContainerID   string `json:"containerId,omitempty"`
	ContainerName string `json:"containerName,omitempty"`
}

// InContainer reports whether the process runs inside a container.
func (b Binding) InContainer() bool {
	return b.ContainerID != ""
}

// Snapshot maps each bound port to its process as of one scan.
type Snapshot map[uint16]Binding

// Equal reports whether s and other hold the same bindings.
func (s Snapshot) Equal(other Snapshot) bool {
	return maps.Equal(s, other)
}

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return maps.Clone(s)
}

// Sorted returns the bindings ordered by port.
func (s Snapshot) Sorted() []Binding {
	bindings := make([]Binding, 0, len(s))
	for _, port := range slices.Sorted(maps.Keys(s)) {
		bindings = append(bindings, s[port])
	}
	return bindings
}

// PortsOf returns the ports pid is bound to, ascending.
func (s Snapshot) PortsOf(pid int) []uint16 {
	var ports []uint16
	for port, b := range s {
		if b.PID == pid {
			ports = append(ports, port)
		}
	}
	slices.Sort(ports)
	return ports
}

// NameOf returns the display name of pid, or "" when pid holds no port.
func (s Snapshot) NameOf(pid int) string {
	for _, port := range slices.Sorted(maps.Keys(s)) {
		if b := s[port]; b.PID == pid {
			return b.Name
		}
	}
	return ""
}

// Filter returns the bindings of s that cfg does not ignore.
func Filter(s Snapshot, cfg ignore.Config) Snapshot {
	filtered := make(Snapshot, len(s))
	for port, b := range s {
		if cfg.Ignores(port, b.Name) {
			continue
		}
		filtered[port] = b
	}
	return filtered
}
