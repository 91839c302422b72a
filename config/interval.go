package config

import (
	"fmt"
	"regexp"
	"strconv"

	"deliveroo/model"
)

var intervalPattern = regexp.MustCompile(`^(\d+)(ms|s|m|h)?$`)

var unitMillis = map[string]int64{
	"": 1, // default unit: ms
	"ms": 1,
	"s": 1000,
	"m": 60 * 1000,
	"h": 60 * 60 * 1000,
}

// ParseInterval decodes the compact `\d+(ms|s|m|h)?` (default unit ms) or
// literal `infinite` encoding used by GameConfig fields.
func ParseInterval(raw string) (model.Interval, error) {
	if raw == "infinite" {
		return model.Interval{IsInfinite: true}, nil
	}

	m := intervalPattern.FindStringSubmatch(raw)
	if m == nil {
		return model.Interval{}, fmt.Errorf("config: invalid interval %q", raw)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return model.Interval{}, fmt.Errorf("config: invalid interval %q: %w", raw, err)
	}
	return model.Interval{Duration: n * unitMillis[m[2]]}, nil
}
