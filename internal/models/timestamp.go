package models

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LocalDateTimeLayout is the zone-less date-time some clients send. It is read as UTC.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// ParseTimestamp accepts RFC 3339 or LocalDateTimeLayout (fractional seconds allowed).
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(LocalDateTimeLayout, raw, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected RFC 3339 or %s", raw, LocalDateTimeLayout)
}

// Timestamp decodes a JSON string with ParseTimestamp.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// TimePtr returns nil for a nil Timestamp.
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil {
		return nil
	}
	return &t.Time
}
