package scanner

import (
	"context"
	"fmt"

	gopsNet "github.com/shirou/gopsutil/v4/net"
)

// scanConnections reads listeners from the kernel connection table. Used
// where no listing tool is installed; process names are left to the caller.
func scanConnections(ctx context.Context, set PortSet) ([]Port, error) {
	conns, err := gopsNet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, fmt.Errorf("read connection table: %w", err)
	}
	return keep(listeners(conns), set), nil
}

func listeners(conns []gopsNet.ConnectionStat) []Port {
	var ports []Port
	seen := make(map[[2]int]bool)
	for _, c := range conns {
		if c.Status != "LISTEN" || c.Pid <= 0 || c.Laddr.Port == 0 || c.Laddr.Port > 65535 {
			continue
		}
		key := [2]int{int(c.Laddr.Port), int(c.Pid)}
		if seen[key] {
			continue
		}
		seen[key] = true
		ports = append(ports, Port{
			Port:    uint16(c.Laddr.Port),
			PID:     int(c.Pid),
			Address: c.Laddr.IP,
		})
	}
	return ports
}
