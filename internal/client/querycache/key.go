package querycache

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifies one unit of cached server state. It is an ordered sequence
// of segments, each stored in canonical JSON form so that deep-equal
// sequences (including maps with differently ordered keys) compare equal.
type Key struct {
	segs []string
}

// NewKey builds a Key from primitive or small-object segments.
//
//	querycache.NewKey("articles", "hangar74", "active")
//	querycache.NewKey("flights", "hangar74", map[string]any{"from": "2025-01-01"})
func NewKey(segments ...any) Key {
	k := Key{segs: make([]string, 0, len(segments))}
	for _, s := range segments {
		k.segs = append(k.segs, canonical(s))
	}
	return k
}

func canonical(v any) string {
	// encoding/json sorts map keys, which is all the canonicalisation needed.
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(fmt.Sprint(v))
	}
	return string(b)
}

// Append returns a new Key extended with segments.
func (k Key) Append(segments ...any) Key {
	out := Key{segs: make([]string, len(k.segs), len(k.segs)+len(segments))}
	copy(out.segs, k.segs)
	for _, s := range segments {
		out.segs = append(out.segs, canonical(s))
	}
	return out
}

func (k Key) Len() int { return len(k.segs) }

func (k Key) IsZero() bool { return len(k.segs) == 0 }

// HasPrefix reports whether the first p.Len() segments of k equal p. The
// empty key is a prefix of every key.
func (k Key) HasPrefix(p Key) bool {
	if len(p.segs) > len(k.segs) {
		return false
	}
	for i, s := range p.segs {
		if k.segs[i] != s {
			return false
		}
	}
	return true
}

func (k Key) Equal(o Key) bool {
	return len(k.segs) == len(o.segs) && k.HasPrefix(o)
}

// String renders the key as a JSON array, e.g. ["articles","hangar74"].
func (k Key) String() string {
	return "[" + strings.Join(k.segs, ",") + "]"
}
