package parser

import (
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// TimestampResult holds the parsed timestamp and any error.
type TimestampResult struct {
	Time  time.Time
	Error error
}

// ParseTimestamp parses a natural language timestamp expression, used by
// `snooze --until` ("3pm", "in 20 minutes", "14:30").
func ParseTimestamp(input string) TimestampResult {
	input = strings.TrimSpace(input)
	if input == "" || strings.ToLower(input) == "now" {
		return TimestampResult{Time: time.Now()}
	}

	cfg := &dateparser.Configuration{
		CurrentTime: time.Now(),
	}

	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return TimestampResult{Error: err}
	}

	return TimestampResult{Time: result.Time}
}
