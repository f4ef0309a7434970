//go:build darwin

package scanner

import "context"

type darwinScanner struct{}

func newPlatformScanner() Scanner {
	return &darwinScanner{}
}

func (s *darwinScanner) Scan(ctx context.Context, set PortSet) ([]Port, error) {
	// +c 0 keeps full command names instead of the 9 character default
	return runLsof(ctx, set, "+c", "0")
}
