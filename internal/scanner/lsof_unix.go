//go:build !windows

package scanner

import (
	"context"
	"errors"
	"os/exec"
)

// runLsof queries lsof for TCP listeners within set.
func runLsof(ctx context.Context, set PortSet, extra ...string) ([]Port, error) {
	spec := "-iTCP"
	if arg := set.Arg(); arg != "" {
		spec += ":" + arg
	}
	args := append([]string{spec, "-sTCP:LISTEN", "-P", "-n"}, extra...)

	output, err := exec.CommandContext(ctx, "lsof", args...).Output()
	if err != nil {
		// lsof returns exit code 1 when no results, that's ok
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return []Port{}, nil
		}
		return nil, err
	}

	return keep(parseLsofOutput(output), set), nil
}
