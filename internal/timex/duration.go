// Package timex provides a time.Duration wrapper that can be decoded from
// configuration files either as a Go duration string ("30s", "5m") or as an
// integer number of nanoseconds.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDuration is returned when a value is neither a duration string
// nor an integer.
var ErrInvalidDuration = errors.New("invalid duration")

// Duration wraps time.Duration for JSON and YAML decoding.
type Duration struct {
	time.Duration
}

// MarshalJSON encodes the duration as a string, e.g. "1m30s".
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "3s" style strings and integer nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return d.set(v)
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	return d.set(v)
}

func (d *Duration) set(v any) error {
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case int:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDuration, value)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrInvalidDuration, v)
	}
}
