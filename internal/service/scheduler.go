package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"levelup/pkg/logger"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultTickInterval = "@every 1m"

type Ticker interface {
	Tick(ctx context.Context) (*TickResult, error)
}

type SchedulerConfig struct {
	Interval string
	Location *time.Location
}

// Scheduler runs maintenance ticks at startup, on a cron interval and
// whenever the client reports it came to the foreground. At most one tick
// runs at a time; a tick fired while another is running is dropped.
type Scheduler struct {
	ticker   Ticker
	interval string
	cron     *cron.Cron

	foreground chan struct{}
	stopChan   chan struct{}
	done       chan struct{}

	running  atomic.Bool
	started  atomic.Bool
	stopOnce sync.Once
}

func NewScheduler(ticker Ticker, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval == "" {
		cfg.Interval = DefaultTickInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Scheduler{
		ticker:   ticker,
		interval: cfg.Interval,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLogger{log: logger.Named("cron")}),
		),
		foreground: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start registers the interval job, starts the foreground listener and runs
// the startup tick before returning.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	if _, err := s.cron.AddFunc(s.interval, func() { s.RunTick(ctx, "interval") }); err != nil {
		close(s.done)
		return errors.Wrapf(err, "invalid scheduler interval %q", s.interval)
	}

	go s.listen(ctx)
	s.RunTick(ctx, "startup")
	s.cron.Start()

	logger.Logger().Info("Scheduler started", zap.String("interval", s.interval))

	return nil
}

// NotifyForeground requests a tick. It never blocks; requests made while
// one is pending collapse into it.
func (s *Scheduler) NotifyForeground() {
	select {
	case s.foreground <- struct{}{}:
	default:
	}
}

func (s *Scheduler) listen(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-s.foreground:
			s.RunTick(ctx, "foreground")
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunTick runs one tick unless another is in flight and reports whether it ran.
// Failures are logged; the next tick retries.
func (s *Scheduler) RunTick(ctx context.Context, trigger string) bool {
	log := logger.Logger()

	if !s.running.CompareAndSwap(false, true) {
		log.Debug("Tick suppressed, previous tick still running", zap.String("trigger", trigger))
		return false
	}
	defer s.running.Store(false)

	res, err := s.ticker.Tick(ctx)
	if err != nil {
		log.Error("Maintenance tick failed", zap.String("trigger", trigger), zap.Error(err))
		return true
	}

	log.Debug("Maintenance tick",
		zap.String("trigger", trigger),
		zap.Bool("newDay", res.NewDay),
		zap.Bool("newWeek", res.NewWeek))

	return true
}

// Stop unregisters the interval job and the foreground listener and waits
// for a running tick to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		close(s.stopChan)
		if s.started.Load() {
			<-s.done
		}
		logger.Logger().Info("Scheduler stopped")
	})
}

type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
