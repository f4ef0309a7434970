package scanner

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// explicitLimit is the largest port set still queried as an explicit list.
const explicitLimit = 10

// Port represents a listening port and its associated process
type Port struct {
	Port    uint16 `json:"port"`
	PID     int    `json:"pid"`
	Process string `json:"process"`
	User    string `json:"user,omitempty"`
	Address string `json:"address,omitempty"`
}

// Scanner interface for platform-specific implementations
type Scanner interface {
	// Scan lists the listening TCP ports within set. An empty set means every port.
	Scan(ctx context.Context, set PortSet) ([]Port, error)
}

// New returns a platform-specific scanner
func New() Scanner {
	return newPlatformScanner()
}

// PortSet is the set of ports a scan is asked about.
type PortSet struct {
	ports  []uint16
	lookup map[uint16]struct{}
}

// NewPortSet builds a set from ports, sorted and deduplicated.
func NewPortSet(ports []uint16) PortSet {
	sorted := slices.Clone(ports)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	lookup := make(map[uint16]struct{}, len(sorted))
	for _, p := range sorted {
		lookup[p] = struct{}{}
	}
	return PortSet{ports: sorted, lookup: lookup}
}

// PortRange builds the set of every port in [start, end].
func PortRange(start, end uint16) PortSet {
	if start > end {
		return NewPortSet(nil)
	}
	ports := make([]uint16, 0, int(end)-int(start)+1)
	for p := int(start); p <= int(end); p++ {
		ports = append(ports, uint16(p))
	}
	return NewPortSet(ports)
}

// Len returns the number of ports in the set.
func (s PortSet) Len() int { return len(s.ports) }

// Ports returns the sorted ports of the set.
func (s PortSet) Ports() []uint16 { return slices.Clone(s.ports) }

// Contains reports whether port is in the set. The empty set contains every port.
func (s PortSet) Contains(port uint16) bool {
	if len(s.ports) == 0 {
		return true
	}
	_, ok := s.lookup[port]
	return ok
}

// Arg renders the set for a port query: an explicit comma list for small sets,
// otherwise the min-max range covering it.
func (s PortSet) Arg() string {
	switch {
	case len(s.ports) == 0:
		return ""
	case len(s.ports) <= explicitLimit:
		parts := make([]string, len(s.ports))
		for i, p := range s.ports {
			parts[i] = strconv.Itoa(int(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%d-%d", s.ports[0], s.ports[len(s.ports)-1])
	}
}

// keep drops ports outside the requested set. A collapsed range query can
// report listeners the caller never asked about.
func keep(ports []Port, set PortSet) []Port {
	kept := ports[:0]
	for _, p := range ports {
		if set.Contains(p.Port) {
			kept = append(kept, p)
		}
	}
	return kept
}

// parsePort extracts the port from the last colon-delimited segment of addr.
func parsePort(addr string) (host string, port uint16, ok bool) {
	lastColon := strings.LastIndex(addr, ":")
	if lastColon == -1 {
		return "", 0, false
	}
	n, err := strconv.ParseUint(addr[lastColon+1:], 10, 16)
	if err != nil {
		return "", 0, false
	}
	return addr[:lastColon], uint16(n), true
}
