package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productdevbook/port-kill/internal/config"
	"github.com/productdevbook/port-kill/internal/ignore"
	"github.com/productdevbook/port-kill/internal/killer"
	"github.com/productdevbook/port-kill/internal/menu"
	"github.com/productdevbook/port-kill/internal/monitor"
	"github.com/productdevbook/port-kill/internal/process"
	"github.com/productdevbook/port-kill/internal/scanner"
)

type fakeScanner struct{ ports []scanner.Port }

func (f fakeScanner) Scan(context.Context, scanner.PortSet) ([]scanner.Port, error) {
	return append([]scanner.Port(nil), f.ports...), nil
}

type fakeResolver map[int]string

func (f fakeResolver) Resolve(_ context.Context, pid int) process.Identity {
	name, ok := f[pid]
	if !ok {
		return process.Identity{Command: process.Unknown, Name: process.Unknown}
	}
	return process.Identity{Command: "/usr/bin/" + name, Name: name}
}

type fakeSignaler struct {
	mu         sync.Mutex
	terminated []int
}

func (f *fakeSignaler) Terminate(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = append(f.terminated, pid)
	return nil
}

func (f *fakeSignaler) Kill(int) error                  { return nil }
func (f *fakeSignaler) Alive(context.Context, int) bool { return false }
func (f *fakeSignaler) pids() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.terminated...)
}

var threeProcesses = []scanner.Port{
	{Port: 3000, PID: 111},
	{Port: 5173, PID: 222},
	{Port: 8080, PID: 333},
}

func newTestSession(t *testing.T, ports []scanner.Port, cooldown time.Duration) (*Session, *fakeSignaler) {
	t.Helper()

	opts := config.DefaultOptions()
	names := fakeResolver{111: "node", 222: "vite", 333: "java"}
	mon := monitor.New(fakeScanner{ports: ports}, names, nil, monitor.Config{}, nil)
	sig := &fakeSignaler{}
	engine := killer.NewEngine(sig, names, ignore.Config{}, nil, killer.WithGrace(0))
	ctl := killer.NewController(engine, killer.NewGuard(cooldown), mon, nil)
	return newSession(opts, ignore.Config{}, mon, ctl, nil), sig
}

func TestNewSessionMergesStoredIgnoreLists(t *testing.T) {
	opts := config.DefaultOptions()
	opts.IgnorePorts = []uint{3000}

	s := NewSession(opts, ignore.New(nil, []string{"Chrome"}), monitor.InteractiveInterval, nil)

	assert.True(t, s.Ignore().Port(3000))
	assert.True(t, s.Ignore().Process("Chrome"))
	assert.NotNil(t, s.Monitor())
	assert.NotNil(t, s.Controller())
}

func TestFormatUpdate(t *testing.T) {
	snap := monitor.Snapshot{
		3000: {Port: 3000, PID: 111, Name: "node", Command: "/usr/bin/node"},
		5432: {Port: 5432, PID: 222, Name: "postgres", Command: "postgres", ContainerID: "abc", ContainerName: "db"},
	}

	out := formatUpdate(snap, 2, true)

	assert.Contains(t, out, "2 - 2 development processes running")
	assert.Contains(t, out, "Port 3000: node (PID 111) - /usr/bin/node")
	assert.Contains(t, out, "Port 5432: postgres - postgres [Docker: db]")
	assert.Contains(t, out, "Ignored 2 process(es)")
	assert.Less(t, strings.Index(out, "Port 3000"), strings.Index(out, "Port 5432"))
}

func TestFormatUpdateEmpty(t *testing.T) {
	out := formatUpdate(monitor.Snapshot{}, 0, false)

	assert.Contains(t, out, "0 - No development processes running")
	assert.NotContains(t, out, "Detected Processes")
	assert.NotContains(t, out, "Ignored")
}

func TestModelBuildsMenuFromSnapshot(t *testing.T) {
	s, _ := newTestSession(t, threeProcesses, 0)
	m := newModel(context.Background(), s)

	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))

	require.Len(t, m.visible, 7)
	assert.Equal(t, "kill-all", m.visible[0].ID)
	assert.Equal(t, "Kill: Port 5173: vite", m.visible[3].Label)
	assert.Equal(t, menu.Quit, m.visible[6].Action.Kind)
	assert.Equal(t, 0, m.cursor)
	assert.Contains(t, m.View(), "3 development processes running")
}

func TestModelCursorSkipsSeparators(t *testing.T) {
	s, _ := newTestSession(t, threeProcesses, 0)
	m := newModel(context.Background(), s)
	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.cursor)

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.cursor)
}

func TestModelEnterKillsSelectedProcess(t *testing.T) {
	s, sig := newTestSession(t, threeProcesses, 0)
	m := newModel(context.Background(), s)
	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	var batch killer.Batch
	select {
	case batch = <-s.Controller().Results():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for kill result")
	}
	require.Len(t, batch.Outcomes, 1)
	assert.Equal(t, 222, batch.Outcomes[0].PID)
	assert.Equal(t, []int{222}, sig.pids())

	m.Update(batchMsg(batch))
	assert.Contains(t, m.message, "Killed 1 process(es)")
}

func TestModelQuitItemQuits(t *testing.T) {
	s, _ := newTestSession(t, nil, 0)
	m := newModel(context.Background(), s)
	m.Update(snapshotMsg(monitor.Snapshot{}))

	require.Len(t, m.visible, 3)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.cursor)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModelHoldsSnapshotWhileKillActive(t *testing.T) {
	s, _ := newTestSession(t, threeProcesses, time.Hour)
	m := newModel(context.Background(), s)
	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))

	batch := s.Controller().Execute(context.Background(), killer.KillOne(111))
	require.False(t, batch.Rejected)
	require.True(t, s.Controller().Guard().Active())

	m.Update(snapshotMsg(monitor.Snapshot{}))

	assert.True(t, m.held)
	assert.Len(t, m.visible, 7, "menu is not rebuilt while a kill is active")

	m.Update(guardTickMsg{})
	assert.True(t, m.held)
}

func TestModelAppliesHeldSnapshotOnceGuardClears(t *testing.T) {
	s, _ := newTestSession(t, threeProcesses, 50*time.Millisecond)
	m := newModel(context.Background(), s)
	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))

	s.Controller().Execute(context.Background(), killer.KillOne(111))
	m.Update(snapshotMsg(monitor.Snapshot{}))
	require.True(t, m.held)

	require.Eventually(t, func() bool { return !s.Controller().Guard().Active() }, 2*time.Second, 10*time.Millisecond)
	m.Update(guardTickMsg{})

	assert.False(t, m.held)
	assert.Len(t, m.visible, 3)
}

func TestModelNewerSnapshotReplacesHeldOne(t *testing.T) {
	s, _ := newTestSession(t, threeProcesses, 50*time.Millisecond)
	m := newModel(context.Background(), s)
	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))

	s.Controller().Execute(context.Background(), killer.KillOne(111))
	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))
	require.True(t, m.held)

	require.Eventually(t, func() bool { return !s.Controller().Guard().Active() }, 2*time.Second, 10*time.Millisecond)
	m.Update(snapshotMsg(monitor.Snapshot{
		8080: {Port: 8080, PID: 333, Name: "java"},
	}))
	m.Update(guardTickMsg{})

	assert.False(t, m.held)
	assert.Len(t, m.snap, 1, "the held snapshot is stale once a newer one is applied")
	assert.Len(t, m.visible, 5)
}

func TestModelFilterNarrowsProcesses(t *testing.T) {
	s, _ := newTestSession(t, threeProcesses, 0)
	m := newModel(context.Background(), s)
	m.Update(snapshotMsg(s.Monitor().Scan(context.Background())))

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.True(t, m.filtering)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("vite")})

	require.Len(t, m.visible, 3)
	assert.Equal(t, menu.KillAll, m.visible[0].Action.Kind)
	assert.Equal(t, 222, m.visible[1].Action.PID)
	assert.Equal(t, menu.Quit, m.visible[2].Action.Kind)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filtering)
	assert.Len(t, m.visible, 7)
}

func TestDescribeBatch(t *testing.T) {
	assert.Contains(t, describeBatch(killer.Batch{Rejected: true}), "already in progress")
	assert.Contains(t, describeBatch(killer.Batch{}), "No processes to kill")
	assert.Contains(t, describeBatch(killer.Batch{Outcomes: []killer.Outcome{
		{PID: 3, Status: killer.Failed, Err: errors.New("operation not permitted")},
	}}), "operation not permitted")
	assert.Contains(t, describeBatch(killer.Batch{Outcomes: []killer.Outcome{
		{PID: 1, Status: killer.Killed},
		{PID: 2, Status: killer.Skipped},
	}}), "Killed 1 process(es), skipped 1")
}
