package acquisition

import (
	"context"
	"net"

	"github.com/raymondelooff/fermentation-monitor/reading"
	"go.uber.org/zap"
)

// RelayClient pushes readings to the collector, one connection per reading
type RelayClient struct {
	config RelayConfig
	dialer *net.Dialer
	logger *zap.SugaredLogger
}

// Send writes the JSON record of r followed by a newline and closes the
// connection
func (c *RelayClient) Send(ctx context.Context, r reading.Reading) error {
	b, err := reading.EncodeJSON(r)
	if err != nil {
		return err
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", c.config.Address)
	if err != nil {
		return &TransportError{Address: c.config.Address, Op: "dial", Err: err}
	}
	defer conn.Close()

	if _, err := conn.Write(append(b, '\n')); err != nil {
		return &TransportError{Address: c.config.Address, Op: "write", Err: err}
	}

	c.logger.Debugf("RelayClient: sent %d bytes to %s", len(b)+1, c.config.Address)

	return nil
}

// NewRelayClient creates a new RelayClient
func NewRelayClient(config RelayConfig, logger *zap.SugaredLogger) *RelayClient {
	return &RelayClient{
		config: config,
		dialer: &net.Dialer{Timeout: config.DialTimeout},
		logger: logger,
	}
}
