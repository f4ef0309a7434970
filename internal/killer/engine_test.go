package killer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productdevbook/port-kill/internal/container"
	"github.com/productdevbook/port-kill/internal/ignore"
	"github.com/productdevbook/port-kill/internal/monitor"
	"github.com/productdevbook/port-kill/internal/process"
)

type fakeSignaler struct {
	mu sync.Mutex
	// stubborn processes survive the graceful signal
	stubborn     map[int]bool
	terminateErr map[int]error
	killErr      map[int]error
	dead         map[int]bool
	calls        []string
	// block, when set, is waited on by Terminate
	block chan struct{}
}

func newFakeSignaler() *fakeSignaler {
	return &fakeSignaler{
		stubborn:     map[int]bool{},
		terminateErr: map[int]error{},
		killErr:      map[int]error{},
		dead:         map[int]bool{},
	}
}

func (f *fakeSignaler) Terminate(pid int) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "term")
	if err := f.terminateErr[pid]; err != nil {
		return err
	}
	if !f.stubborn[pid] {
		f.dead[pid] = true
	}
	return nil
}

func (f *fakeSignaler) Kill(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "kill")
	if err := f.killErr[pid]; err != nil {
		return err
	}
	f.dead[pid] = true
	return nil
}

func (f *fakeSignaler) Alive(_ context.Context, pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead[pid]
}

func (f *fakeSignaler) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeResolver map[int]string

func (f fakeResolver) Resolve(_ context.Context, pid int) process.Identity {
	if name, ok := f[pid]; ok {
		return process.Identity{Command: name, Name: name}
	}
	return process.Identity{Command: process.Unknown, Name: process.Unknown}
}

type fakeContainers struct {
	owners    map[int]container.Info
	stopErr   error
	removeErr error
	calls     []string
}

func (f *fakeContainers) Lookup(_ context.Context, pid int) (container.Info, bool) {
	info, ok := f.owners[pid]
	return info, ok
}

func (f *fakeContainers) Stop(_ context.Context, id string) error {
	f.calls = append(f.calls, "stop "+id)
	return f.stopErr
}

func (f *fakeContainers) Remove(_ context.Context, id string) error {
	f.calls = append(f.calls, "rm "+id)
	return f.removeErr
}

func newTestEngine(s process.Signaler, r process.Resolver, ig ignore.Config, opts ...Option) *Engine {
	e := NewEngine(s, r, ig, nil, opts...)
	e.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return e
}

func TestGracefulExitSendsNoForcefulSignal(t *testing.T) {
	s := newFakeSignaler()
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{})

	out := e.KillOne(context.Background(), 10, []uint16{3000})

	assert.Equal(t, Killed, out.Status)
	assert.Equal(t, "node", out.Name)
	assert.Equal(t, []string{"term"}, s.callLog())
}

func TestSurvivorGetsExactlyOneForcefulSignal(t *testing.T) {
	s := newFakeSignaler()
	s.stubborn[10] = true
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{})

	out := e.KillOne(context.Background(), 10, []uint16{3000})

	assert.Equal(t, Killed, out.Status)
	assert.Equal(t, []string{"term", "kill"}, s.callLog())
}

func TestGracefulSendFailureStillChecksLiveness(t *testing.T) {
	s := newFakeSignaler()
	s.terminateErr[10] = errors.New("operation not permitted")
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{})

	out := e.KillOne(context.Background(), 10, nil)

	assert.Equal(t, Killed, out.Status)
	assert.Equal(t, []string{"term", "kill"}, s.callLog())
}

func TestForcefulFailureIsFailedOutcome(t *testing.T) {
	s := newFakeSignaler()
	s.stubborn[10] = true
	s.killErr[10] = errors.New("operation not permitted")
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{})

	out := e.KillOne(context.Background(), 10, nil)

	assert.Equal(t, Failed, out.Status)
	assert.EqualError(t, out.Err, "operation not permitted")
}

func TestForceModeSkipsGracefulSignal(t *testing.T) {
	s := newFakeSignaler()
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{}, WithForce(true))

	out := e.KillOne(context.Background(), 10, nil)

	assert.Equal(t, Killed, out.Status)
	assert.Equal(t, []string{"kill"}, s.callLog())
}

func TestWaitsGracePeriodBeforeLivenessCheck(t *testing.T) {
	s := newFakeSignaler()
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{}, WithGrace(250*time.Millisecond))
	var waited time.Duration
	e.sleep = func(_ context.Context, d time.Duration) error {
		waited = d
		return nil
	}

	e.KillOne(context.Background(), 10, nil)

	assert.Equal(t, 250*time.Millisecond, waited)
}

func TestCancelledWaitIsFailedOutcome(t *testing.T) {
	s := newFakeSignaler()
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := e.KillOne(ctx, 10, nil)

	assert.Equal(t, Failed, out.Status)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestIgnoreRulesAreRecheckedAtKillTime(t *testing.T) {
	t.Run("by name", func(t *testing.T) {
		s := newFakeSignaler()
		e := newTestEngine(s, fakeResolver{10: "java"}, ignore.New(nil, []string{"java"}))

		out := e.KillOne(context.Background(), 10, []uint16{8080})

		assert.Equal(t, Skipped, out.Status)
		assert.Contains(t, out.Reason, "java")
		assert.Empty(t, s.callLog())
	})

	t.Run("by port", func(t *testing.T) {
		s := newFakeSignaler()
		e := newTestEngine(s, fakeResolver{10: "node"}, ignore.New([]uint16{5353}, nil))

		out := e.KillOne(context.Background(), 10, []uint16{3000, 5353})

		assert.Equal(t, Skipped, out.Status)
		assert.Equal(t, "port 5353 is ignored", out.Reason)
		assert.Empty(t, s.callLog())
	})

	t.Run("by discovery name when the process table has none", func(t *testing.T) {
		s := newFakeSignaler()
		e := newTestEngine(s, fakeResolver{}, ignore.New(nil, []string{"java"}))

		out := e.KillNamed(context.Background(), 10, []uint16{8080}, "java")

		assert.Equal(t, Skipped, out.Status)
		assert.Equal(t, "java", out.Name)
		assert.Empty(t, s.callLog())
	})

	t.Run("process table name wins over discovery name", func(t *testing.T) {
		s := newFakeSignaler()
		e := newTestEngine(s, fakeResolver{10: "node"}, ignore.New(nil, []string{"java"}))

		out := e.KillNamed(context.Background(), 10, []uint16{8080}, "java")

		assert.Equal(t, Killed, out.Status)
		assert.Equal(t, "node", out.Name)
	})
}

func TestKillAllUsesDiscoveryNameForIgnoreCheck(t *testing.T) {
	s := newFakeSignaler()
	e := newTestEngine(s, fakeResolver{}, ignore.New(nil, []string{"java"}))

	outcomes := e.KillAll(context.Background(), monitor.Snapshot{
		8080: {Port: 8080, PID: 10, Command: "java", Name: "java"},
	})

	require.Len(t, outcomes, 1)
	assert.Equal(t, Skipped, outcomes[0].Status)
	assert.Empty(t, s.callLog())
}

func TestContainerProcessIsStoppedNotSignalled(t *testing.T) {
	s := newFakeSignaler()
	c := &fakeContainers{owners: map[int]container.Info{10: {ID: "abc", Name: "web"}}}
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{}, WithContainers(c))

	out := e.KillOne(context.Background(), 10, []uint16{3000})

	assert.Equal(t, Killed, out.Status)
	assert.Equal(t, []string{"stop abc"}, c.calls)
	assert.Empty(t, s.callLog())
}

func TestContainerStopFailureEscalatesToRemove(t *testing.T) {
	s := newFakeSignaler()
	c := &fakeContainers{
		owners:  map[int]container.Info{10: {ID: "abc", Name: "web"}},
		stopErr: context.DeadlineExceeded,
	}
	e := newTestEngine(s, fakeResolver{10: "node"}, ignore.Config{}, WithContainers(c))

	out := e.KillOne(context.Background(), 10, nil)

	assert.Equal(t, Killed, out.Status)
	assert.Equal(t, []string{"stop abc", "rm abc"}, c.calls)

	c.calls = nil
	c.removeErr = errors.New("no such container")
	out = e.KillOne(context.Background(), 10, nil)

	assert.Equal(t, Failed, out.Status)
	assert.ErrorContains(t, out.Err, "no such container")
	assert.Empty(t, s.callLog())
}

func TestKillAllContinuesPastFailures(t *testing.T) {
	s := newFakeSignaler()
	s.stubborn[111] = true
	s.killErr[111] = errors.New("operation not permitted")
	e := newTestEngine(s, fakeResolver{111: "node", 222: "java"}, ignore.Config{})

	outcomes := e.KillAll(context.Background(), monitor.Snapshot{
		3000: {Port: 3000, PID: 111, Name: "node"},
		8080: {Port: 8080, PID: 222, Name: "java"},
		8081: {Port: 8081, PID: 222, Name: "java"},
	})

	require.Len(t, outcomes, 2, "pid 222 is killed once")
	assert.Equal(t, 111, outcomes[0].PID)
	assert.Equal(t, Failed, outcomes[0].Status)
	assert.Equal(t, 222, outcomes[1].PID)
	assert.Equal(t, Killed, outcomes[1].Status)
	assert.Equal(t, []uint16{8080, 8081}, outcomes[1].Ports)

	batch := Batch{Outcomes: outcomes}
	assert.False(t, batch.Succeeded())
	assert.ErrorContains(t, batch.Err(), "pid 111")
}

func TestBatchSucceeded(t *testing.T) {
	assert.True(t, Batch{}.Succeeded())
	assert.True(t, Batch{Outcomes: []Outcome{{Status: Killed}, {Status: Skipped}}}.Succeeded())
	assert.False(t, Batch{Rejected: true}.Succeeded())
	assert.NoError(t, Batch{Outcomes: []Outcome{{Status: Skipped}}}.Err())
}
