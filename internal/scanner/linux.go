//go:build linux

package scanner

import (
	"context"
	"fmt"
	"os/exec"
)

type linuxScanner struct{}

func newPlatformScanner() Scanner {
	return &linuxScanner{}
}

func (s *linuxScanner) Scan(ctx context.Context, set PortSet) ([]Port, error) {
	// Try lsof first (same as macOS)
	if _, err := exec.LookPath("lsof"); err == nil {
		return runLsof(ctx, set)
	}
	// lsof might not be installed, try ss
	if _, err := exec.LookPath("ss"); err == nil {
		return s.scanWithSS(ctx, set)
	}
	return scanConnections(ctx, set)
}

func (s *linuxScanner) scanWithSS(ctx context.Context, set PortSet) ([]Port, error) {
	// ss -tlnp: TCP, listening, numeric, show process
	output, err := exec.CommandContext(ctx, "ss", "-tlnp").Output()
	if err != nil {
		return nil, fmt.Errorf("ss: %w", err)
	}

	return keep(parseSSOutput(output), set), nil
}
