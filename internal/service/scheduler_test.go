package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"levelup/internal/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	err     error
}

func (f *fakeTicker) Tick(ctx context.Context) (*TickResult, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &TickResult{}, nil
}

func TestScheduler_SuppressesOverlappingTicks(t *testing.T) {
	ticker := &fakeTicker{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewScheduler(ticker, SchedulerConfig{Location: time.UTC})
	ctx := context.Background()

	ran := make(chan bool)
	go func() { ran <- s.RunTick(ctx, "interval") }()
	<-ticker.entered

	assert.False(t, s.RunTick(ctx, "foreground"))

	close(ticker.release)
	assert.True(t, <-ran)
	assert.Equal(t, int32(1), ticker.calls.Load())

	ticker.entered = nil
	assert.True(t, s.RunTick(ctx, "foreground"))
	assert.Equal(t, int32(2), ticker.calls.Load())
}

func TestScheduler_StartRunsStartupTickAndListensForForeground(t *testing.T) {
	ticker := &fakeTicker{}
	s := NewScheduler(ticker, SchedulerConfig{Interval: "@every 1h", Location: time.UTC})

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, int32(1), ticker.calls.Load())

	s.NotifyForeground()
	require.Eventually(t, func() bool { return ticker.calls.Load() == 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()

	s.NotifyForeground()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(2), ticker.calls.Load())
}

func TestScheduler_TickFailureIsNotFatal(t *testing.T) {
	ticker := &fakeTicker{err: errors.New("store unavailable")}
	s := NewScheduler(ticker, SchedulerConfig{Location: time.UTC})

	assert.True(t, s.RunTick(context.Background(), "interval"))
	assert.True(t, s.RunTick(context.Background(), "interval"))
	assert.Equal(t, int32(2), ticker.calls.Load())
}

func TestScheduler_InvalidInterval(t *testing.T) {
	s := NewScheduler(&fakeTicker{}, SchedulerConfig{Interval: "every now and then"})

	assert.Error(t, s.Start(context.Background()))
	s.Stop()
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler(&fakeTicker{}, SchedulerConfig{})
	s.Stop()
}

func TestScheduler_DrivesMaintenance(t *testing.T) {
	env := seeded(t)
	s := NewScheduler(env.svc.Maintenance, SchedulerConfig{Location: time.UTC})

	env.setUser(t, func(u *model.User) { u.DailyRerollCount = 2 })
	env.clock.Advance(24 * time.Hour)

	assert.True(t, s.RunTick(context.Background(), "foreground"))
	assert.Equal(t, 0, env.user(t).DailyRerollCount)
}
