// Package collector receives relayed readings over TCP and writes them to the
// time-series store.
package collector

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/raymondelooff/fermentation-monitor/reading"
	"go.uber.org/zap"
)

// LineSink accepts line protocol text for the store
type LineSink interface {
	WriteLine(ctx context.Context, line string) error
}

// Forwarder receives every decoded reading after the store write
type Forwarder interface {
	Name() string
	Forward(ctx context.Context, r reading.Reading, measuredAt time.Time) error
}

// Collector accepts relay connections and translates their records into
// store writes
type Collector struct {
	config     Config
	sink       LineSink
	forwarders []Forwarder
	metrics    *Metrics
	logger     *zap.SugaredLogger
	now        func() time.Time
}

// ListenAndServe binds the configured address and serves until ctx is
// cancelled or the listener fails
func (c *Collector) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", c.config.Server.BindAddress)
	if err != nil {
		return &ListenerError{Op: "bind", Address: c.config.Server.BindAddress, Err: err}
	}

	return c.Serve(ctx, ln)
}

// Serve accepts connections on ln, handling each one in its own goroutine.
// Handlers are not tracked and outlive Serve.
func (c *Collector) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	c.logger.Infof("Collector: listening on %s", ln.Addr())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &ListenerError{Op: "accept", Address: ln.Addr().String(), Err: err}
		}

		c.metrics.connections.Inc()
		c.logger.Infof("Collector: connection from %s", conn.RemoteAddr())

		go c.handleConnection(ctx, conn)
	}
}

// handleConnection processes newline-delimited records until the peer closes
// the stream or a read fails
func (c *Collector) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	c.metrics.activeConnections.Inc()
	defer c.metrics.activeConnections.Dec()

	peer := conn.RemoteAddr().String()
	br := bufio.NewReader(conn)

	for {
		line, err := br.ReadBytes('\n')
		if err == nil || len(line) > 0 {
			c.handleLine(ctx, peer, bytes.TrimRight(line, "\r\n"))
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				c.logger.Infof("Collector: connection from %s closed", peer)
			} else {
				c.logger.Warnf("Collector: read from %s: %v", peer, err)
			}
			return
		}
	}
}

// handleLine decodes one record and delivers it. No failure here ends the
// connection.
func (c *Collector) handleLine(ctx context.Context, peer string, line []byte) {
	r, err := reading.DecodeJSON(line)
	if err != nil {
		c.metrics.decodeErrors.Inc()
		c.logger.Errorf("Collector: invalid record from %s: %v", peer, err)
		return
	}

	c.metrics.readingsReceived.Inc()
	c.logger.Infow("Collector: reading received",
		"peer", peer,
		"sensor_id", r.SensorID,
		"timestamp", r.Timestamp,
		"temperature_celsius", r.TemperatureCelsius,
		"humidity_percent", r.HumidityPercent,
	)

	measuredAt, err := r.Time()
	if err != nil {
		measuredAt = c.now()
		c.logger.Warnf("Collector: %v, using current time", err)
	}

	body := reading.EncodeLineProtocol(c.config.Store.Measurement, r, measuredAt.Unix())

	err = c.sink.WriteLine(ctx, body)
	switch {
	case err == nil:
		c.metrics.storeWrites.WithLabelValues(resultOK).Inc()
		c.logger.Infof("Collector: reading from %s written to store", r.SensorID)
	case errors.Is(err, ErrStoreRejected):
		c.metrics.storeWrites.WithLabelValues(resultRejected).Inc()
		c.logger.Warnf("Collector: failed to write reading from %s: %v", r.SensorID, err)
	default:
		c.metrics.storeWrites.WithLabelValues(resultError).Inc()
		c.logger.Errorf("Collector: HTTP error writing reading from %s: %v", r.SensorID, err)
	}

	for _, f := range c.forwarders {
		if err := f.Forward(ctx, r, measuredAt); err != nil {
			c.metrics.forwardErrors.WithLabelValues(f.Name()).Inc()
			c.logger.Errorf("Collector: %s forward failed: %v", f.Name(), err)
		}
	}
}

// NewCollector creates a new Collector
func NewCollector(config Config, sink LineSink, forwarders []Forwarder, metrics *Metrics, logger *zap.SugaredLogger) *Collector {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Collector{
		config:     config,
		sink:       sink,
		forwarders: forwarders,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}
