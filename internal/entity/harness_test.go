package entity

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/session"
	"github.com/iudanet/gophsync/internal/transport/loopback"
)

const frame = 10 * time.Millisecond

// node is one simulated process: its own loop, connection, bus and runtime.
type node struct {
	loop   *scheduler.Loop
	client *loopback.Client
	bus    *session.Bus
	rt     *Runtime
}

type world struct {
	t     *testing.T
	hub   *loopback.Hub
	clock *scheduler.ManualClock
	nodes []*node
	// afterFrame runs after every simulated frame.
	afterFrame func()
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newWorld(t *testing.T, opts ...loopback.HubOption) *world {
	t.Helper()
	clock := scheduler.NewManualClock()
	hub, err := loopback.NewHub(context.Background(), clock, append(opts, loopback.WithLogger(testLogger()))...)
	require.NoError(t, err)
	return &world{t: t, hub: hub, clock: clock}
}

func (w *world) join(name string) *node {
	w.t.Helper()
	loop := scheduler.NewLoop(w.clock)
	client := w.hub.Connect(loop, name)
	bus := session.NewBus(client, testLogger().With("peer", name))
	require.NoError(w.t, bus.Start())
	n := &node{
		loop:   loop,
		client: client,
		bus:    bus,
		rt:     NewRuntime(bus, loop, testLogger().With("peer", name)),
	}
	w.nodes = append(w.nodes, n)
	return n
}

// frames advances the shared clock and ticks every node n times.
func (w *world) frames(n int) {
	for i := 0; i < n; i++ {
		w.clock.Advance(frame)
		for _, node := range w.nodes {
			node.loop.Tick()
		}
		if w.afterFrame != nil {
			w.afterFrame()
		}
	}
}

// until runs frames until cond holds or the budget is exhausted.
func (w *world) until(budget int, cond func() bool) {
	w.t.Helper()
	for i := 0; i < budget; i++ {
		if cond() {
			return
		}
		w.frames(1)
	}
	require.True(w.t, cond(), "condition not reached in %d frames", budget)
}

func (n *node) local() *record.Participant {
	p := n.client.Local()
	return &p
}
