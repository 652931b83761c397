// Package container wraps the Redis primitive data structures (set, list,
// sorted set, hash) used by the model package, plus the key-namespacing
// scheme shared by every layer above it.
package container

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is an immutable, hierarchical Redis key builder. Segments join with
// ":". It's a pure function of the segments appended to it; it holds no
// connection state and does no I/O.
type Key struct {
	segments []string
}

// NewKey starts a key rooted at root (typically a model name).
func NewKey(root string) Key {
	return Key{segments: []string{root}}
}

// At appends a segment and returns a new Key. Accepts strings, integers, and
// anything implementing fmt.Stringer.
func (k Key) At(seg any) Key {
	next := make([]string, len(k.segments)+1)
	copy(next, k.segments)
	next[len(k.segments)] = segmentString(seg)
	return Key{segments: next}
}

func segmentString(seg any) string {
	switch v := seg.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// String renders the full key.
func (k Key) String() string {
	return strings.Join(k.segments, ":")
}
