package acquisition

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"net"
	"testing"
	"time"

	"github.com/raymondelooff/fermentation-monitor/reading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelaySendWritesOneLineAndCloses(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		b, _ := ioutil.ReadAll(conn)
		received <- b
	}()

	logger, _ := newObservedLogger()
	c := NewRelayClient(RelayConfig{Address: ln.Addr().String(), DialTimeout: time.Second}, logger)

	r := reading.Reading{
		Timestamp:          "2024-01-01T00:00:00Z",
		SensorID:           "S1",
		Location:           "Room A",
		ProcessStage:       "Dry",
		TemperatureCelsius: 21.3,
		HumidityPercent:    55,
	}
	require.NoError(t, c.Send(context.Background(), r))

	var b []byte
	select {
	case b = <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("collector side never saw EOF")
	}

	sc := bufio.NewScanner(bytes.NewReader(b))
	require.True(t, sc.Scan())
	got, err := reading.DecodeJSON(sc.Bytes())
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.False(t, sc.Scan(), "exactly one record expected")
	assert.Equal(t, byte('\n'), b[len(b)-1])
}

func TestRelaySendConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	logger, _ := newObservedLogger()
	c := NewRelayClient(RelayConfig{Address: addr, DialTimeout: time.Second}, logger)

	err = c.Send(context.Background(), reading.Reading{})
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, "dial", transportErr.Op)
	assert.Equal(t, addr, transportErr.Address)
}
