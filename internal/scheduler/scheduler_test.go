package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoop_TickOrder(t *testing.T) {
	clock := NewManualClock()
	loop := NewLoop(clock)

	var order []string
	loop.RunEveryTick(func() { order = append(order, "tick") })
	loop.RunAfter(0, func() { order = append(order, "timer") })
	loop.Post(func() { order = append(order, "posted") })

	loop.Tick()

	assert.Equal(t, []string{"posted", "timer", "tick"}, order)
}

func TestLoop_RunAfter(t *testing.T) {
	clock := NewManualClock()
	loop := NewLoop(clock)

	fired := 0
	loop.RunAfter(100*time.Millisecond, func() { fired++ })

	loop.Tick()
	assert.Equal(t, 0, fired)

	clock.Advance(99 * time.Millisecond)
	loop.Tick()
	assert.Equal(t, 0, fired)

	clock.Advance(time.Millisecond)
	loop.Tick()
	assert.Equal(t, 1, fired)

	clock.Advance(time.Second)
	loop.Tick()
	assert.Equal(t, 1, fired, "timer is one-shot")
}

func TestLoop_TimersFireByDueTime(t *testing.T) {
	clock := NewManualClock()
	loop := NewLoop(clock)

	var order []int
	loop.RunAfter(30*time.Millisecond, func() { order = append(order, 30) })
	loop.RunAfter(10*time.Millisecond, func() { order = append(order, 10) })
	loop.RunAfter(20*time.Millisecond, func() { order = append(order, 20) })

	clock.Advance(time.Second)
	loop.Tick()

	assert.Equal(t, []int{10, 20, 30}, order)
}

func TestLoop_Cancel(t *testing.T) {
	clock := NewManualClock()
	loop := NewLoop(clock)

	ticks := 0
	h := loop.RunEveryTick(func() { ticks++ })
	timerFired := false
	timer := loop.RunAfter(10*time.Millisecond, func() { timerFired = true })

	loop.Tick()
	h.Cancel()
	timer.Cancel()

	clock.Advance(time.Second)
	loop.Tick()

	assert.Equal(t, 1, ticks)
	assert.False(t, timerFired)
}

func TestLoop_CancelFromEarlierTimer(t *testing.T) {
	clock := NewManualClock()
	loop := NewLoop(clock)

	var second Handle
	secondFired := false
	loop.RunAfter(10*time.Millisecond, func() { second.Cancel() })
	second = loop.RunAfter(20*time.Millisecond, func() { secondFired = true })

	clock.Advance(time.Second)
	loop.Tick()

	assert.False(t, secondFired)
}

func TestLoop_PostDuringDrain(t *testing.T) {
	loop := NewLoop(NewManualClock())

	var order []int
	loop.Post(func() {
		order = append(order, 1)
		loop.Post(func() { order = append(order, 2) })
	})

	loop.Tick()
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, loop.Pending())
}

func TestLoop_Run(t *testing.T) {
	loop := NewLoop(NewWallClock())

	ticks := make(chan struct{}, 16)
	loop.RunEveryTick(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := loop.Run(ctx, 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, ticks)
}
