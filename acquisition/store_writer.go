package acquisition

import (
	"context"
	"math"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/raymondelooff/fermentation-monitor/reading"
	"go.uber.org/zap"
)

var (
	minNanoTime = time.Unix(0, math.MinInt64)
	maxNanoTime = time.Unix(0, math.MaxInt64)
)

// StoreWriter writes readings directly into the time-series store
type StoreWriter struct {
	config   StoreConfig
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	logger   *zap.SugaredLogger
}

// pointTime returns the capture time of r, or the zero epoch when it cannot
// be expressed in nanoseconds. The direct path and the relayed path share
// this instant, so no second clock read happens at write time.
func (w *StoreWriter) pointTime(r reading.Reading) time.Time {
	t, err := r.Time()
	if err != nil {
		w.logger.Warnf("StoreWriter: %v, falling back to 0", err)
		return time.Unix(0, 0)
	}

	if t.Before(minNanoTime) || t.After(maxNanoTime) {
		w.logger.Warnf("StoreWriter: timestamp %s out of nanosecond range, falling back to 0", r.Timestamp)
		return time.Unix(0, 0)
	}

	return t
}

// Write submits a single point for r
func (w *StoreWriter) Write(ctx context.Context, r reading.Reading) error {
	point := influxdb2.NewPoint(
		w.config.Measurement,
		map[string]string{
			"sensor_id": r.SensorID,
			"location":  r.Location,
			"stage":     r.ProcessStage,
		},
		map[string]interface{}{
			"temperature_celsius": r.TemperatureCelsius,
			"humidity_percent":    r.HumidityPercent,
		},
		w.pointTime(r),
	)

	if err := w.writeAPI.WritePoint(ctx, point); err != nil {
		return &WriteError{Bucket: w.config.Bucket, Err: err}
	}

	return nil
}

// Close releases the underlying client
func (w *StoreWriter) Close() {
	w.client.Close()
}

// NewStoreWriter creates a new StoreWriter
func NewStoreWriter(config StoreConfig, logger *zap.SugaredLogger) *StoreWriter {
	client := influxdb2.NewClient(config.URL, config.Token)

	return &StoreWriter{
		config:   config,
		client:   client,
		writeAPI: client.WriteAPIBlocking(config.Org, config.Bucket),
		logger:   logger,
	}
}
