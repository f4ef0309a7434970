package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/productdevbook/port-kill/internal/menu"
	"github.com/productdevbook/port-kill/internal/monitor"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// RunConsole prints every snapshot change to out until ctx is done. With
// JSON output each change is a single line holding the sorted bindings.
func RunConsole(ctx context.Context, s *Session, out io.Writer) error {
	if s.Options().JSON {
		return runJSON(ctx, s, json.NewEncoder(out))
	}

	fmt.Fprintln(out, headerStyle.Render("Port Kill console monitor started"))
	fmt.Fprintf(out, "Monitoring %s every %s\n", s.Options().Description(), monitor.ConsoleInterval)
	if ig := s.Ignore(); !ig.Empty() {
		fmt.Fprintln(out, mutedStyle.Render("Effective ignore rules: "+ig.String()))
	}
	fmt.Fprintln(out, mutedStyle.Render("Press Ctrl+C to quit"))
	fmt.Fprintln(out)

	done := make(chan error, 1)
	go func() { done <- s.Monitor().Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return <-done
		case snap := <-s.Monitor().Updates():
			fmt.Fprint(out, formatUpdate(snap, s.Monitor().Ignored(), s.Options().ShowPID))
		}
	}
}

func runJSON(ctx context.Context, s *Session, enc *json.Encoder) error {
	done := make(chan error, 1)
	go func() { done <- s.Monitor().Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return <-done
		case snap := <-s.Monitor().Updates():
			if err := enc.Encode(snap.Sorted()); err != nil {
				return fmt.Errorf("write update: %w", err)
			}
		}
	}
}

func formatUpdate(snap monitor.Snapshot, ignored int, showPID bool) string {
	var b strings.Builder

	status := menu.StatusFor(len(snap))
	fmt.Fprintf(&b, "%s %s - %s\n", headerStyle.Render("Port Status:"), status.Text, status.Tooltip)

	if len(snap) > 0 {
		b.WriteString("Detected Processes:\n")
		for _, p := range snap.Sorted() {
			switch {
			case p.InContainer() && p.ContainerName != "":
				fmt.Fprintf(&b, "   • Port %d: %s - %s [Docker: %s]\n", p.Port, p.Name, p.Command, p.ContainerName)
			case showPID:
				fmt.Fprintf(&b, "   • Port %d: %s (PID %d) - %s\n", p.Port, p.Name, p.PID, p.Command)
			default:
				fmt.Fprintf(&b, "   • Port %d: %s - %s\n", p.Port, p.Name, p.Command)
			}
		}
	}

	if ignored > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Ignored %d process(es) based on user configuration", ignored)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	return b.String()
}
