package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrIncorrectField = errors.New("field must be name=value")

// Record is an untyped JSON object as returned by the API.
type Record map[string]any

// RecordFromArgs parses "name=value" arguments. Values that are valid JSON
// scalars (numbers, true/false, null) keep their type; everything else is a
// string. Only the first "=" separates name from value.
func RecordFromArgs(args []string) (Record, error) {
	r := make(Record, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrIncorrectField, arg)
		}
		r[name] = parseScalar(value)
	}
	return r, nil
}

func parseScalar(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case float64, bool, nil:
			return v
		}
	}
	return s
}

// ID returns the "id" field, falling back to "_id".
func (r Record) ID() string {
	for _, k := range []string{"id", "_id"} {
		if v, ok := r[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Text returns field k rendered as text, "" when absent.
func (r Record) Text(k string) string {
	v, ok := r[k]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Keys returns the field names in sorted order.
func (r Record) Keys() []string {
	ks := make([]string, 0, len(r))
	for k := range r {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
