// Package reading holds the Reading value shared by the acquisition and
// collector processes, together with its wire encodings.
package reading

import (
	"errors"
	"fmt"
	"time"
)

// ErrIncompleteData is returned by Decode when the poll did not yield exactly
// two registers
var ErrIncompleteData = errors.New("incomplete data")

// registerScale converts the decimal-scaled register value to its unit
const registerScale = 10.0

// Tags identifies the sensor a Reading was captured from
type Tags struct {
	SensorID     string `yaml:"sensor_id"`
	Location     string `yaml:"location"`
	ProcessStage string `yaml:"process_stage"`
}

// Reading represents a single temperature/humidity measurement
type Reading struct {
	Timestamp          string  `json:"timestamp"`
	SensorID           string  `json:"sensor_id"`
	Location           string  `json:"location"`
	ProcessStage       string  `json:"process_stage"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	HumidityPercent    float64 `json:"humidity_percent"`
}

// Decode builds a Reading from the raw temperature and humidity registers
func Decode(raw []uint16, tags Tags, now time.Time) (Reading, error) {
	if len(raw) != 2 {
		return Reading{}, fmt.Errorf("Reading: %w: got %d registers, want 2", ErrIncompleteData, len(raw))
	}

	return Reading{
		Timestamp:          now.UTC().Format(time.RFC3339Nano),
		SensorID:           tags.SensorID,
		Location:           tags.Location,
		ProcessStage:       tags.ProcessStage,
		TemperatureCelsius: float64(raw[0]) / registerScale,
		HumidityPercent:    float64(raw[1]) / registerScale,
	}, nil
}

// Time parses the RFC3339 capture timestamp
func (r Reading) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("Reading: invalid timestamp %q: %w", r.Timestamp, err)
	}

	return t, nil
}

// Tags returns the identifying tags of the Reading
func (r Reading) Tags() Tags {
	return Tags{
		SensorID:     r.SensorID,
		Location:     r.Location,
		ProcessStage: r.ProcessStage,
	}
}

// Summary renders the measurement for humans
func (r Reading) Summary() string {
	return fmt.Sprintf("Temp: %.1f °C | RH: %.1f %%", r.TemperatureCelsius, r.HumidityPercent)
}
