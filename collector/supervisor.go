package collector

import (
	"context"
	"errors"
	"math"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
)

// Server is the routine kept alive by the Supervisor
type Server interface {
	ListenAndServe(ctx context.Context) error
}

// errServerStopped is reported when the server returned without an error
var errServerStopped = errors.New("server stopped unexpectedly")

// Supervisor restarts the Server whenever it returns
type Supervisor struct {
	config SupervisorConfig
	server Server
	logger *zap.SugaredLogger
}

func (s *Supervisor) serve(ctx context.Context) error {
	if err := s.server.ListenAndServe(ctx); err != nil {
		return err
	}

	return errServerStopped
}

// Run keeps the Server running until ctx is cancelled, waiting RestartDelay
// between a failure and the next start
func (s *Supervisor) Run(ctx context.Context) {
	for {
		err := retry.Do(
			func() error { return s.serve(ctx) },
			retry.Context(ctx),
			retry.Attempts(math.MaxUint32),
			retry.Delay(s.config.RestartDelay),
			retry.DelayType(retry.FixedDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
			retry.OnRetry(func(n uint, err error) {
				s.logger.Errorf("Supervisor: server error: %v, restarting in %s (restart %d)", err, s.config.RestartDelay, n+1)
			}),
		)

		if ctx.Err() != nil {
			s.logger.Info("Supervisor: shutdown OK")
			return
		}

		s.logger.Errorf("Supervisor: restart attempts exhausted: %v", err)
	}
}

// NewSupervisor creates a new Supervisor
func NewSupervisor(config SupervisorConfig, server Server, logger *zap.SugaredLogger) *Supervisor {
	return &Supervisor{
		config: config,
		server: server,
		logger: logger,
	}
}
