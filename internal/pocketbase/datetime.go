package pocketbase

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout is the layout PocketBase uses for datetime fields.
const DateTimeLayout = "2006-01-02 15:04:05.000Z"

// DateTime is a PocketBase datetime field. The zero value marshals to "".
type DateTime struct {
	time.Time
}

// NewDateTime truncates t to milliseconds in UTC.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(time.Millisecond)}
}

// String formats the value the way PocketBase stores it.
func (d DateTime) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("json.Unmarshal > %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{DateTimeLayout, "2006-01-02 15:04:05Z", time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid pocketbase datetime %q", raw)
}

// MarshalYAML keeps the PocketBase representation in YAML exports.
func (d DateTime) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
