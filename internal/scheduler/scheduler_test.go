package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock jumps forward on every After call, minus skew to mimic early timer wake-ups.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	skew time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := d - c.skew
	if step < 0 {
		step = 0
	}
	c.now = c.now.Add(step)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func mustLoc(t *testing.T, tz string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	require.NoError(t, err)
	return loc
}

func runScheduler(t *testing.T, s *Scheduler) (context.CancelFunc, <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	return cancel, done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_FiresDailyAtLocalMidnight(t *testing.T) {
	loc := mustLoc(t, "Asia/Kolkata")
	clk := &fakeClock{now: time.Date(2025, time.May, 5, 19, 46, 0, 0, loc)}
	s := New(zap.NewNop(), clk, loc, 0)

	assert.Equal(t, time.Date(2025, time.May, 6, 0, 0, 0, 0, loc), s.Next())

	cancel, done := runScheduler(t, s)
	first := <-s.C()
	second := <-s.C()
	cancel()
	waitDone(t, done)

	assert.True(t, first.Equal(time.Date(2025, time.May, 6, 0, 0, 0, 0, loc)), first)
	assert.True(t, second.Equal(time.Date(2025, time.May, 7, 0, 0, 0, 0, loc)), second)
}

func TestScheduler_EarlyWakeDoesNotRepeatSlot(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")
	clk := &fakeClock{now: time.Date(2025, time.May, 5, 8, 0, 0, 0, loc), skew: time.Second}
	s := New(zap.NewNop(), clk, loc, 9*60)

	cancel, done := runScheduler(t, s)
	first := <-s.C()
	second := <-s.C()
	cancel()
	waitDone(t, done)

	assert.True(t, first.Equal(time.Date(2025, time.May, 5, 9, 0, 0, 0, loc)), first)
	assert.True(t, second.Equal(time.Date(2025, time.May, 6, 9, 0, 0, 0, loc)), second)
}

func TestScheduler_StopsWhileNobodyListens(t *testing.T) {
	loc := time.UTC
	clk := &fakeClock{now: time.Date(2025, time.May, 5, 8, 0, 0, 0, loc)}
	s := New(zap.NewNop(), clk, loc, 0)

	cancel, done := runScheduler(t, s)
	cancel()
	waitDone(t, done)
}
