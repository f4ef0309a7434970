//go:build windows

package scanner

import (
	"context"
	"fmt"
	"os/exec"
)

type windowsScanner struct{}

func newPlatformScanner() Scanner {
	return &windowsScanner{}
}

func (s *windowsScanner) Scan(ctx context.Context, set PortSet) ([]Port, error) {
	// netstat -ano: all connections, numeric, owner PID
	output, err := exec.CommandContext(ctx, "netstat", "-ano", "-p", "TCP").Output()
	if err != nil {
		return nil, fmt.Errorf("netstat: %w", err)
	}

	return s.enrichWithProcessNames(ctx, keep(parseNetstatOutput(output), set)), nil
}

func (s *windowsScanner) enrichWithProcessNames(ctx context.Context, ports []Port) []Port {
	// Use tasklist to get process names
	output, err := exec.CommandContext(ctx, "tasklist", "/FO", "CSV", "/NH").Output()
	if err != nil {
		return ports // Return without names if tasklist fails
	}

	pidToName := parseTasklistOutput(output)
	for i := range ports {
		if name, ok := pidToName[ports[i].PID]; ok {
			ports[i].Process = name
		}
	}

	return ports
}
