// Package menu turns a snapshot into the list of actions a front end offers.
// Each item carries its own action, so dispatch never depends on where the
// item happens to be displayed.
package menu

import (
	"fmt"

	"github.com/productdevbook/port-kill/internal/killer"
	"github.com/productdevbook/port-kill/internal/monitor"
)

// Kind tags an Action.
type Kind int

const (
	None Kind = iota
	KillAll
	KillOne
	Quit
)

// Action is what selecting an item does.
type Action struct {
	Kind  Kind
	PID   int
	Ports []uint16
	Name  string
}

// Request converts a kill action to a kill request.
func (a Action) Request() (killer.Request, bool) {
	switch a.Kind {
	case KillAll:
		return killer.KillAll(), true
	case KillOne:
		return killer.KillOne(a.PID, a.Ports...).Named(a.Name), true
	default:
		return killer.Request{}, false
	}
}

// Item is one menu entry.
type Item struct {
	ID        string
	Label     string
	Action    Action
	Separator bool
	Binding   monitor.Binding
}

// Build lays out the menu for snap: kill-all, a separator, one entry per
// process in port order, a separator when there are processes, and quit.
func Build(snap monitor.Snapshot, showPID bool) []Item {
	bindings := snap.Sorted()

	items := make([]Item, 0, len(bindings)+4)
	items = append(items,
		Item{ID: "kill-all", Label: "Kill All Processes", Action: Action{Kind: KillAll}},
		Item{ID: "sep-top", Separator: true},
	)
	for _, b := range bindings {
		items = append(items, Item{
			ID:      fmt.Sprintf("kill-%d-%d", b.Port, b.PID),
			Label:   Label(b, showPID),
			Action:  Action{Kind: KillOne, PID: b.PID, Ports: snap.PortsOf(b.PID), Name: b.Name},
			Binding: b,
		})
	}
	if len(bindings) > 0 {
		items = append(items, Item{ID: "sep-bottom", Separator: true})
	}
	items = append(items, Item{ID: "quit", Label: "Quit", Action: Action{Kind: Quit}})
	return items
}

// ActionAt resolves a positional selection. Separators and out of range
// indices do nothing.
func ActionAt(items []Item, index int) Action {
	if index < 0 || index >= len(items) {
		return Action{}
	}
	return items[index].Action
}

// Find returns the item with the given id.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Label renders the entry of one binding.
func Label(b monitor.Binding, showPID bool) string {
	switch {
	case b.InContainer() && b.ContainerName != "":
		return fmt.Sprintf("Kill: Port %d: %s [Docker: %s]", b.Port, b.Name, b.ContainerName)
	case showPID:
		return fmt.Sprintf("Kill: Port %d: %s (PID %d)", b.Port, b.Name, b.PID)
	default:
		return fmt.Sprintf("Kill: Port %d: %s", b.Port, b.Name)
	}
}

// Status is the short summary shown next to the menu.
type Status struct {
	Text    string
	Tooltip string
}

// StatusFor summarizes count monitored processes.
func StatusFor(count int) Status {
	tooltip := "No development processes running"
	switch {
	case count == 1:
		tooltip = "1 development process running"
	case count > 1:
		tooltip = fmt.Sprintf("%d development processes running", count)
	}
	return Status{Text: fmt.Sprintf("%d", count), Tooltip: tooltip}
}
