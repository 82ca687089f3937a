package acquisition

import (
	"context"
	"errors"
	"time"

	"github.com/raymondelooff/fermentation-monitor/reading"
	"go.uber.org/zap"
)

// Poller reads raw registers from a field bus device
type Poller interface {
	Poll(ctx context.Context, slaveID byte) ([]uint16, error)
}

// Relay forwards a reading to the collector
type Relay interface {
	Send(ctx context.Context, r reading.Reading) error
}

// Store writes a reading to the time-series store
type Store interface {
	Write(ctx context.Context, r reading.Reading) error
}

// Loop polls the sensor on a fixed cadence and dispatches every reading to
// the relay and the store
type Loop struct {
	config LoopConfig
	tags   reading.Tags
	poller Poller
	relay  Relay
	store  Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

// Run executes cycles until ctx is cancelled, sleeping Interval after each
// cycle regardless of its outcome
func (l *Loop) Run(ctx context.Context) {
	for {
		l.RunCycle(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.config.Interval):
		}
	}
}

// RunCycle polls once and dispatches the reading, if any. Failures are
// logged and never abort the cycle.
func (l *Loop) RunCycle(ctx context.Context) {
	raw, err := l.poller.Poll(ctx, l.config.SlaveID)
	if err != nil {
		if errors.Is(err, ErrDeviceUnavailable) {
			l.logger.Warnf("Loop: sensor not available: %v", err)
		} else {
			l.logger.Errorf("Loop: failed to read sensor: %v", err)
		}
		return
	}

	r, err := reading.Decode(raw, l.tags, l.now())
	if err != nil {
		l.logger.Warnw("Loop: incomplete data", "registers", raw, "error", err)
		return
	}

	l.logger.Info(r.Summary())

	if err := l.relay.Send(ctx, r); err != nil {
		l.logger.Errorf("Loop: failed to relay reading: %v", err)
	} else {
		l.logger.Infof("Loop: reading relayed to collector")
	}

	if err := l.store.Write(ctx, r); err != nil {
		l.logger.Errorf("Loop: failed to write reading: %v", err)
	} else {
		l.logger.Infof("Loop: reading written to store")
	}
}

// NewLoop creates a new Loop
func NewLoop(config LoopConfig, tags reading.Tags, poller Poller, relay Relay, store Store, logger *zap.SugaredLogger) *Loop {
	return &Loop{
		config: config,
		tags:   tags,
		poller: poller,
		relay:  relay,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}
