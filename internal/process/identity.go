// Package process resolves process identity and delivers termination signals.
package process

import (
	"context"
	"strings"

	gopsProcess "github.com/shirou/gopsutil/v4/process"
)

// Unknown is reported when a process identity cannot be looked up.
const Unknown = "unknown"

// Identity is the human-readable identity of a process.
type Identity struct {
	Command string
	Name    string
}

// Resolver maps a pid to its identity. It never fails; lookups that cannot
// be completed degrade to Unknown.
type Resolver interface {
	Resolve(ctx context.Context, pid int) Identity
}

type gopsResolver struct{}

// NewResolver returns a Resolver backed by the host process table.
func NewResolver() Resolver {
	return gopsResolver{}
}

func (gopsResolver) Resolve(ctx context.Context, pid int) Identity {
	proc, err := gopsProcess.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return Identity{Command: Unknown, Name: Unknown}
	}

	command, err := proc.ExeWithContext(ctx)
	if err != nil || command == "" {
		// Exe needs more privileges than Name on most platforms.
		command, err = proc.NameWithContext(ctx)
		if err != nil || command == "" {
			return Identity{Command: Unknown, Name: Unknown}
		}
	}

	return Identity{Command: command, Name: DisplayName(command)}
}

// DisplayName derives the display name of a command: the basename of its
// path with a Windows ".exe" suffix removed.
func DisplayName(command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return Unknown
	}
	name := command
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		name = name[:len(name)-4]
	}
	if name == "" {
		return Unknown
	}
	return name
}
