package collector

import (
	"regexp"
)

var nonWordRegex = regexp.MustCompile(`\W`)

// Topic represents an AMQP routing key for the readings of one sensor
type Topic struct {
	Value string
}

// NewTopic constructs the Topic for the given sensor; characters that are
// not allowed in a routing key segment are replaced by underscores
func NewTopic(sensorID string) *Topic {
	return &Topic{
		Value: nonWordRegex.ReplaceAllString(sensorID, "_") + ".reading",
	}
}
