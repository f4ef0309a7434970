package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/productdevbook/port-kill/internal/killer"
	"github.com/productdevbook/port-kill/internal/monitor"
)

var (
	forceKill bool
	killAll   bool
)

var killCmd = &cobra.Command{
	Use:   "kill [port...]",
	Short: "Kill processes listening on ports",
	Long: `Kill the processes listening on the given ports, or every monitored
process with --all. Sends a graceful terminate first and escalates to a
forceful kill if the process is still alive; --force kills outright.

Ignored ports and processes are never killed.`,
	RunE: runKill,
}

func init() {
	killCmd.Flags().BoolVarP(&forceKill, "force", "f", false, "Kill outright without the graceful terminate")
	killCmd.Flags().BoolVarP(&killAll, "all", "a", false, "Kill every monitored process")
}

type killResult struct {
	PID    int      `json:"pid"`
	Ports  []uint16 `json:"ports"`
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Reason string   `json:"reason,omitempty"`
	Error  string   `json:"error,omitempty"`
}

func runKill(cmd *cobra.Command, args []string) error {
	if killAll == (len(args) > 0) {
		return errors.New("specify ports to kill or --all, but not both")
	}

	targets, err := parsePorts(args)
	if err != nil {
		return err
	}
	if !killAll {
		// Narrow the session to exactly the requested ports.
		opts.Ports, opts.PortsSet = targets, true
	}

	s, _, closeLog, err := session(cmd, monitor.ConsoleInterval, true, killer.WithForce(forceKill))
	if err != nil {
		return err
	}
	defer closeLog()

	batch := s.Controller().Execute(cmd.Context(), killer.KillAll())
	missing := missingPorts(targets, batch.Outcomes)

	out := cmd.OutOrStdout()
	if opts.JSON {
		if err := printJSON(out, killResults(batch.Outcomes)); err != nil {
			return err
		}
	} else {
		printOutcomes(out, batch.Outcomes, forceKill)
	}

	for _, port := range missing {
		cmd.PrintErrf("no process found listening on port %d\n", port)
	}

	if err := killError(batch, missing); err != nil {
		return err
	}
	if killAll && len(batch.Outcomes) == 0 && !opts.JSON {
		fmt.Fprintln(out, "No processes to kill.")
	}
	return nil
}

// killError reports a batch that was refused or left processes alive, and
// requested ports nobody was listening on.
func killError(batch killer.Batch, missing []uint16) error {
	switch {
	case batch.Rejected:
		return errors.New("another kill is already in progress")
	case !batch.Succeeded():
		return batch.Err()
	case len(missing) > 0:
		return fmt.Errorf("%d port(s) had no process to kill", len(missing))
	}
	return nil
}

func parsePorts(args []string) ([]uint, error) {
	ports := make([]uint, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 16)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid port number: %s", arg)
		}
		ports = append(ports, uint(n))
	}
	return ports, nil
}

func missingPorts(targets []uint, outcomes []killer.Outcome) []uint16 {
	var missing []uint16
	for _, t := range targets {
		port := uint16(t)
		found := slices.ContainsFunc(outcomes, func(o killer.Outcome) bool {
			return slices.Contains(o.Ports, port)
		})
		if !found && !slices.Contains(missing, port) {
			missing = append(missing, port)
		}
	}
	return missing
}

func printOutcomes(out io.Writer, outcomes []killer.Outcome, force bool) {
	action := "Killed"
	if force {
		action = "Force killed"
	}
	for _, o := range outcomes {
		switch o.Status {
		case killer.Killed:
			fmt.Fprintf(out, "%s %s (PID %d) on port %s\n", action, o.Name, o.PID, joinPorts(o.Ports))
		case killer.Skipped:
			fmt.Fprintf(out, "Skipped %s (PID %d): %s\n", o.Name, o.PID, o.Reason)
		case killer.Failed:
			fmt.Fprintf(out, "Failed to kill %s (PID %d): %v\n", o.Name, o.PID, o.Err)
		}
	}
}

func killResults(outcomes []killer.Outcome) []killResult {
	results := make([]killResult, 0, len(outcomes))
	for _, o := range outcomes {
		r := killResult{PID: o.PID, Ports: o.Ports, Name: o.Name, Status: o.Status.String(), Reason: o.Reason}
		if o.Err != nil {
			r.Error = o.Err.Error()
		}
		results = append(results, r)
	}
	return results
}

func joinPorts(ports []uint16) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}
