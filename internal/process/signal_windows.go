//go:build windows

package process

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"golang.org/x/sys/windows"
)

type windowsSignaler struct{}

func newPlatformSignaler() Signaler {
	return windowsSignaler{}
}

// Terminate uses taskkill without /F, which posts a close request to the process.
func (windowsSignaler) Terminate(pid int) error {
	output, err := exec.Command("taskkill", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill %d: %w: %s", pid, err, output)
	}
	return nil
}

func (windowsSignaler) Kill(pid int) error {
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(handle)

	if err := windows.TerminateProcess(handle, 1); err != nil {
		return fmt.Errorf("terminate process %d: %w", pid, err)
	}
	return nil
}

func (windowsSignaler) Alive(ctx context.Context, pid int) bool {
	return alive(ctx, pid)
}
