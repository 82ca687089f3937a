package reading

import (
	"strconv"
	"strings"
)

// escapeTag escapes spaces in a tag value.
// Commas and equals signs are passed through unchanged.
func escapeTag(v string) string {
	return strings.ReplaceAll(v, " ", `\ `)
}

func formatField(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// EncodeLineProtocol renders the Reading as a single line of the store's
// write format, stamped with the given epoch
func EncodeLineProtocol(measurement string, r Reading, epoch int64) string {
	var b strings.Builder

	b.WriteString(measurement)
	b.WriteString(",sensor_id=")
	b.WriteString(escapeTag(r.SensorID))
	b.WriteString(",location=")
	b.WriteString(escapeTag(r.Location))
	b.WriteString(",stage=")
	b.WriteString(escapeTag(r.ProcessStage))
	b.WriteString(" temperature=")
	b.WriteString(formatField(r.TemperatureCelsius))
	b.WriteString(",humidity=")
	b.WriteString(formatField(r.HumidityPercent))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(epoch, 10))

	return b.String()
}
