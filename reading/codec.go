package reading

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"
)

// ErrDecode is returned when a structured record cannot be turned into a Reading
var ErrDecode = errors.New("malformed reading record")

// record mirrors Reading with optional fields so missing keys can be detected
type record struct {
	Timestamp          *string  `json:"timestamp"`
	SensorID           *string  `json:"sensor_id"`
	Location           *string  `json:"location"`
	ProcessStage       *string  `json:"process_stage"`
	TemperatureCelsius *float64 `json:"temperature_celsius"`
	HumidityPercent    *float64 `json:"humidity_percent"`
}

// EncodeJSON renders the Reading as a flat JSON object
func EncodeJSON(r Reading) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("Reading: %v", err)
	}

	return b, nil
}

// DecodeJSON parses a flat JSON object produced by EncodeJSON
func DecodeJSON(b []byte) (Reading, error) {
	var rec record

	// field names are matched exactly
	rest, err := json.Parse(b, &rec, json.DontMatchCaseInsensitiveStructFields)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return Reading{}, fmt.Errorf("%w: trailing data after record", ErrDecode)
	}

	var missing []string
	if rec.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if rec.SensorID == nil {
		missing = append(missing, "sensor_id")
	}
	if rec.Location == nil {
		missing = append(missing, "location")
	}
	if rec.ProcessStage == nil {
		missing = append(missing, "process_stage")
	}
	if rec.TemperatureCelsius == nil {
		missing = append(missing, "temperature_celsius")
	}
	if rec.HumidityPercent == nil {
		missing = append(missing, "humidity_percent")
	}
	if len(missing) > 0 {
		return Reading{}, fmt.Errorf("%w: missing field(s) %s", ErrDecode, strings.Join(missing, ", "))
	}

	return Reading{
		Timestamp:          *rec.Timestamp,
		SensorID:           *rec.SensorID,
		Location:           *rec.Location,
		ProcessStage:       *rec.ProcessStage,
		TemperatureCelsius: *rec.TemperatureCelsius,
		HumidityPercent:    *rec.HumidityPercent,
	}, nil
}
