//go:build !darwin && !linux && !windows

package scanner

import (
	"context"
	"os/exec"
)

type fallbackScanner struct{}

func newPlatformScanner() Scanner {
	return &fallbackScanner{}
}

func (s *fallbackScanner) Scan(ctx context.Context, set PortSet) ([]Port, error) {
	if _, err := exec.LookPath("lsof"); err == nil {
		return runLsof(ctx, set)
	}
	return scanConnections(ctx, set)
}
