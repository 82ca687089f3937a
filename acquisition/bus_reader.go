package acquisition

import (
	"context"
	"fmt"
	"os"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"
)

// registerCount is the number of input registers holding one measurement
const registerCount = 2

// session is an open Modbus session with one slave
type session interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
	Close() error
}

type openFunc func(config BusConfig, slaveID byte) (session, error)

type rtuSession struct {
	modbus.Client
	handler *modbus.RTUClientHandler
}

func (s *rtuSession) Close() error {
	return s.handler.Close()
}

// openRTU connects to the serial line with the configured framing
func openRTU(config BusConfig, slaveID byte) (session, error) {
	handler := modbus.NewRTUClientHandler(config.Device)
	handler.BaudRate = config.BaudRate
	handler.DataBits = config.DataBits
	handler.Parity = config.Parity
	handler.StopBits = config.StopBits
	handler.Timeout = config.Timeout
	handler.SlaveId = slaveID

	if err := handler.Connect(); err != nil {
		return nil, err
	}

	return &rtuSession{
		Client:  modbus.NewClient(handler),
		handler: handler,
	}, nil
}

// BusReader polls the sensor registers over Modbus RTU
type BusReader struct {
	config BusConfig
	open   openFunc
	logger *zap.SugaredLogger
}

// Poll reads the raw measurement registers of the given slave. A new serial
// session is opened and closed for every poll.
func (b *BusReader) Poll(ctx context.Context, slaveID byte) ([]uint16, error) {
	if _, err := os.Stat(b.config.Device); err != nil {
		return nil, fmt.Errorf("BusReader: %w: %s: %v", ErrDeviceUnavailable, b.config.Device, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := b.open(b.config, slaveID)
	if err != nil {
		return nil, &ReadError{Device: b.config.Device, SlaveID: slaveID, Err: err}
	}
	defer func() {
		if err := s.Close(); err != nil {
			b.logger.Debugf("BusReader: close %s: %v", b.config.Device, err)
		}
	}()

	data, err := s.ReadInputRegisters(b.config.RegisterAddress, registerCount)
	if err != nil {
		return nil, &ReadError{Device: b.config.Device, SlaveID: slaveID, Err: err}
	}

	return unpackRegisters(data), nil
}

// unpackRegisters splits big-endian register bytes into values
func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}

	return out
}

// NewBusReader creates a new BusReader
func NewBusReader(config BusConfig, logger *zap.SugaredLogger) *BusReader {
	return &BusReader{
		config: config,
		open:   openRTU,
		logger: logger,
	}
}
