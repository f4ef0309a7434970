package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/productdevbook/port-kill/internal/monitor"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the monitored listening ports",
	Long:  `List the processes listening on the monitored ports, after the ignore rules are applied.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	s, _, closeLog, err := session(cmd, monitor.ConsoleInterval, true)
	if err != nil {
		return err
	}
	defer closeLog()

	bindings := s.Monitor().Scan(cmd.Context()).Sorted()
	out := cmd.OutOrStdout()

	if opts.JSON {
		return printJSON(out, bindings)
	}
	if len(bindings) == 0 {
		fmt.Fprintln(out, "No listening ports found.")
		return nil
	}
	return printTable(out, bindings)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(out io.Writer, bindings []monitor.Binding) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPID\tPROCESS\tCOMMAND\tCONTAINER")
	fmt.Fprintln(w, "----\t---\t-------\t-------\t---------")

	for _, b := range bindings {
		name := b.ContainerName
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", b.Port, b.PID, b.Name, b.Command, name)
	}

	return w.Flush()
}
