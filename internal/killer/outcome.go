package killer

import (
	"fmt"
	"strings"
)

// Status is the terminal state of one termination.
type Status int

const (
	Killed Status = iota
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Killed:
		return "killed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of terminating one process.
type Outcome struct {
	PID    int
	Ports  []uint16
	Name   string
	Status Status
	// Reason explains a Skipped outcome.
	Reason string
	// Err is the cause of a Failed outcome.
	Err error
}

func (o Outcome) String() string {
	switch o.Status {
	case Skipped:
		return fmt.Sprintf("pid %d skipped: %s", o.PID, o.Reason)
	case Failed:
		return fmt.Sprintf("pid %d failed: %v", o.PID, o.Err)
	default:
		return fmt.Sprintf("pid %d killed", o.PID)
	}
}

// Batch is the result of one kill request.
type Batch struct {
	Request Request
	// Rejected is set when another batch was already in flight; nothing was attempted.
	Rejected bool
	Outcomes []Outcome
}

// Succeeded reports whether every process was killed or deliberately skipped.
func (b Batch) Succeeded() bool {
	if b.Rejected {
		return false
	}
	for _, o := range b.Outcomes {
		if o.Status == Failed {
			return false
		}
	}
	return true
}

// Err summarizes the failed outcomes, or returns nil.
func (b Batch) Err() error {
	var failures []string
	for _, o := range b.Outcomes {
		if o.Status == Failed {
			failures = append(failures, fmt.Sprintf("pid %d: %v", o.PID, o.Err))
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("some processes failed to kill: %s", strings.Join(failures, "; "))
}

// Request targets every monitored process or a single pid.
type Request struct {
	All bool
	PID int
	// Ports are the ports the pid is known to hold, re-checked against the
	// ignore rules when the kill runs.
	Ports []uint16
	// Name is the display name discovery gave the pid, if known.
	Name string
}

// KillAll requests termination of every monitored process.
func KillAll() Request {
	return Request{All: true}
}

// KillOne requests termination of pid, known to hold ports.
func KillOne(pid int, ports ...uint16) Request {
	return Request{PID: pid, Ports: ports}
}

// Named records the display name discovery gave the target.
func (r Request) Named(name string) Request {
	r.Name = name
	return r
}

func (r Request) String() string {
	if r.All {
		return "kill all"
	}
	return fmt.Sprintf("kill pid %d", r.PID)
}
