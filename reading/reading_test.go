package reading

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTags = Tags{
	SensorID:     "SHT20-PascaPanen-001",
	Location:     "Gudang Fermentasi 1",
	ProcessStage: "Fermentasi",
}

func TestDecode(t *testing.T) {
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	r, err := Decode([]uint16{255, 600}, testTags, now)
	require.NoError(t, err)

	assert.Equal(t, 25.5, r.TemperatureCelsius)
	assert.Equal(t, 60.0, r.HumidityPercent)
	assert.Equal(t, "2024-01-01T00:00:00Z", r.Timestamp)
	assert.Equal(t, testTags, r.Tags())
}

func TestDecodeScalesEveryRegister(t *testing.T) {
	for _, raw := range [][]uint16{{0, 0}, {1, 9}, {213, 550}, {65535, 1000}} {
		r, err := Decode(raw, testTags, time.Now())
		require.NoError(t, err)
		assert.Equal(t, float64(raw[0])/10, r.TemperatureCelsius)
		assert.Equal(t, float64(raw[1])/10, r.HumidityPercent)
	}
}

func TestDecodeIncompleteData(t *testing.T) {
	for _, raw := range [][]uint16{nil, {255}, {255, 600, 1}} {
		_, err := Decode(raw, testTags, time.Now())
		assert.True(t, errors.Is(err, ErrIncompleteData), "raw %v", raw)
	}
}

func TestTime(t *testing.T) {
	r := Reading{Timestamp: "2024-01-01T00:00:00Z"}
	ts, err := r.Time()
	require.NoError(t, err)
	assert.Equal(t, int64(1704067200), ts.Unix())

	r.Timestamp = "2024-01-01T07:00:00.123456789+07:00"
	ts, err = r.Time()
	require.NoError(t, err)
	assert.Equal(t, int64(1704067200), ts.Unix())

	r.Timestamp = "not-a-date"
	_, err = r.Time()
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	r := Reading{TemperatureCelsius: 25.5, HumidityPercent: 60}
	assert.Equal(t, "Temp: 25.5 °C | RH: 60.0 %", r.Summary())
}
